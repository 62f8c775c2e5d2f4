//go:build linux

package transport

import (
	"bytes"
	"strings"
	"syscall"
	"time"

	"github.com/synaptics-astra/astra-update/pkg"
)

// netlinkKObjectUEvent is NETLINK_KOBJECT_UEVENT, the kernel's udev
// broadcast protocol.
const netlinkKObjectUEvent = 15

// ueventBufferSize is large enough for any single udev message; the
// kernel never fragments these across multiple netlink reads.
const ueventBufferSize = 4096

// linuxSettlePoll is the fallback poll interval run alongside netlink
// events, covering any uevent this backend's minimal parser misses.
const linuxSettlePoll = 5 * time.Second

// netlinkBackend triggers Transport.enumerate on USB add/remove/bind
// uevents read from the kernel's netlink broadcast socket, adapted from
// ardnew-softusb's own host-controller hotplug monitor
// (host/hal/linux/hotplug.go), which opens the identical
// AF_NETLINK/NETLINK_KOBJECT_UEVENT socket to watch for the same kernel
// broadcasts. That monitor parses the full uevent into structured device
// info for its own device table; this backend only needs a trigger, so
// it reads far enough to filter on SUBSYSTEM=usb and then hands off to
// the shared §4.5 enumeration pass instead of building its own device
// model.
type netlinkBackend struct {
	fd   int
	stop chan struct{}
}

func newBackend() Backend {
	return &netlinkBackend{stop: make(chan struct{})}
}

func (b *netlinkBackend) Run(t *Transport, sink DeviceSink) {
	t.enumerate(sink)

	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC|syscall.SOCK_NONBLOCK, netlinkKObjectUEvent)
	if err != nil {
		pkg.LogWarn(pkg.ComponentTransport, "netlink socket unavailable, falling back to polling", "err", err)
		newPollBackend(libusbLinuxFallbackInterval).Run(t, sink)
		return
	}
	addr := &syscall.SockaddrNetlink{Family: syscall.AF_NETLINK, Groups: 1}
	if err := syscall.Bind(fd, addr); err != nil {
		syscall.Close(fd)
		pkg.LogWarn(pkg.ComponentTransport, "netlink bind failed, falling back to polling", "err", err)
		newPollBackend(libusbLinuxFallbackInterval).Run(t, sink)
		return
	}
	b.fd = fd

	events := make(chan struct{}, 1)
	go b.readLoop(events)

	ticker := time.NewTicker(linuxSettlePoll)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			syscall.Close(b.fd)
			return
		case <-ticker.C:
			t.enumerate(sink)
		case <-events:
			t.enumerate(sink)
		}
	}
}

func (b *netlinkBackend) Stop() {
	close(b.stop)
}

// readLoop blocks on the netlink socket, signalling events whenever a
// usb-subsystem uevent arrives. It exits once the socket is closed by
// Stop.
func (b *netlinkBackend) readLoop(events chan<- struct{}) {
	buf := make([]byte, ueventBufferSize)
	for {
		n, err := syscall.Read(b.fd, buf)
		if err != nil {
			return
		}
		if n <= 0 || !isUSBUevent(buf[:n]) {
			continue
		}
		select {
		case events <- struct{}{}:
		default:
		}
	}
}

// isUSBUevent reports whether a raw netlink uevent message concerns the
// usb subsystem, the only class of hotplug event this backend cares
// about.
func isUSBUevent(data []byte) bool {
	for _, line := range bytes.Split(data, []byte{0}) {
		if bytes.Equal(line, []byte("SUBSYSTEM=usb")) {
			return true
		}
		if idx := bytes.IndexByte(line, '='); idx < 0 && strings.HasPrefix(string(line), "usb") {
			return true
		}
	}
	return false
}

const libusbLinuxFallbackInterval = 500 * time.Millisecond
