package transport

import (
	"time"

	"github.com/google/gousb"

	"github.com/synaptics-astra/astra-update/pkg"
	"github.com/synaptics-astra/astra-update/session"
	"github.com/synaptics-astra/astra-update/transport/critsec"
)

// enumSettleDelay is the pause after a hotplug signal before walking the
// device list, giving the kernel/driver stack time to finish enumerating
// a freshly-attached device (§4.5).
const enumSettleDelay = 50 * time.Millisecond

// enumAttempts is the number of device-list walks tried per hotplug
// signal before giving up on that signal.
const enumAttempts = 3

// mutexTimeout bounds how long the cross-process critical section guard
// may be held waiting for another astra-update process to finish its own
// enumeration pass (§4.5, §7 MutexTimeout).
const mutexTimeout = 30 * time.Second

// DeviceSink receives newly-opened device handles as they are
// discovered. It is the transport package's half of the handoff into
// session.Open/orchestrator.Boot.
type DeviceSink interface {
	DeviceArrived(handle *session.DeviceHandle)
}

// DeviceSinkFunc adapts a function to a DeviceSink.
type DeviceSinkFunc func(*session.DeviceHandle)

// DeviceArrived implements DeviceSink.
func (f DeviceSinkFunc) DeviceArrived(h *session.DeviceHandle) { f(h) }

// Backend is the platform-specific half of discovery: it watches for
// hotplug signals and invokes the shared enumeration pass when one
// fires. hotplug_linux.go, hotplug_libusb.go and hotplug_windows.go each
// provide one.
type Backend interface {
	// Run blocks until Stop is called, delivering discovered devices to
	// sink as they appear.
	Run(t *Transport, sink DeviceSink)
	// Stop releases platform resources and unblocks Run.
	Stop()
}

// VendorProduct identifies the VID/PID pair Transport watches for.
type VendorProduct struct {
	Vendor  gousb.ID
	Product gousb.ID
}

// Transport owns the libusb context, the platform hotplug Backend, and
// the port filter restricting which physical ports are considered
// (component C5).
type Transport struct {
	ctx     *gousb.Context
	match   VendorProduct
	filter  PortFilter
	backend Backend
	mutex   critsec.Mutex

	known map[string]*gousb.Device
}

// New creates a Transport watching for match on ports accepted by
// filter. The libusb context is created eagerly; Start wires up the
// platform-specific hotplug backend.
func New(match VendorProduct, filter PortFilter) (*Transport, error) {
	ctx := gousb.NewContext()
	if ctx == nil {
		return nil, pkg.ErrFatal
	}
	return &Transport{
		ctx:    ctx,
		match:  match,
		filter: filter,
		mutex:  critsec.New("AstraManagerCriticalSection"),
		known:  make(map[string]*gousb.Device),
	}, nil
}

// Start begins hotplug discovery, delivering every device already
// attached and every device attached afterward to sink, until Stop is
// called. It blocks for the lifetime of the Backend's event pump, so
// callers run it in its own goroutine.
func (t *Transport) Start(sink DeviceSink) {
	t.backend = newBackend()
	pkg.LogInfo(pkg.ComponentTransport, "starting USB discovery", "vendor", t.match.Vendor, "product", t.match.Product)
	t.backend.Run(t, sink)
}

// Stop tears down the hotplug backend and the libusb context. It does
// not close devices already handed off to sessions; callers that opened
// sessions own their lifetime independently of Transport.
func (t *Transport) Stop() {
	if t.backend != nil {
		t.backend.Stop()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	pkg.LogInfo(pkg.ComponentTransport, "USB discovery stopped")
}

// enumerate walks the attached device list, reporting the VID/PID match
// under t.filter that Transport has not already opened. It implements
// §4.5's "cross-process critical section, settle, 3-attempt walk"
// sequence, shared by both hotplug backends.
func (t *Transport) enumerate(sink DeviceSink) {
	if err := t.mutex.Lock(mutexTimeout); err != nil {
		pkg.LogWarn(pkg.ComponentTransport, "cross-process mutex acquisition failed", "err", err)
		return
	}
	defer t.mutex.Unlock()

	time.Sleep(enumSettleDelay)

	var lastErr error
	for attempt := 0; attempt < enumAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(enumSettleDelay)
		}
		found, err := t.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
			return desc.Vendor == t.match.Vendor && desc.Product == t.match.Product
		})
		if err != nil {
			lastErr = err
			pkg.LogWarn(pkg.ComponentTransport, "device enumeration attempt failed", "attempt", attempt, "err", err)
			continue
		}
		t.handleFound(found, sink)
		return
	}
	pkg.LogError(pkg.ComponentTransport, "device enumeration exhausted retries", "err", lastErr)
}

// handleFound diffs found against t.known, closing devices this
// Transport is not handling and handing off newly-seen ones whose
// usb_path passes the port filter.
func (t *Transport) handleFound(found []*gousb.Device, sink DeviceSink) {
	seen := make(map[string]bool, len(found))
	for _, dev := range found {
		path := usbPathOf(dev)
		seen[path] = true
		if _, already := t.known[path]; already {
			continue
		}
		if !t.filter.Passes(path) {
			dev.Close()
			continue
		}
		t.known[path] = dev
		handle := session.NewDeviceHandle(dev, path)
		pkg.LogInfo(pkg.ComponentTransport, "device discovered", "usb_path", path)
		sink.DeviceArrived(handle)
	}
	for path, dev := range t.known {
		if !seen[path] {
			delete(t.known, path)
			dev.Close()
		}
	}
}

// usbPathOf derives a usb_path token from a *gousb.Device. gousb's
// DeviceDesc exposes Bus and Address but no port-number chain in any
// example this module was grounded on (see DESIGN.md); bus and address
// together are unique for the life of one enumeration cycle, so they
// stand in for the full dotted port chain usbPath formats.
func usbPathOf(dev *gousb.Device) string {
	return usbPath(dev.Desc.Bus, []int{dev.Desc.Address})
}
