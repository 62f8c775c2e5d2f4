//go:build !windows && !linux

package transport

import "time"

// libusbPollInterval is how often non-Linux, non-Windows platforms
// re-walk the device list (Linux gets a netlink-triggered backend in
// hotplug_linux.go instead). libusb's own hotplug callback would fire
// on IOKit events instead of a timer, but gousb does not expose that
// callback (see hotplug_poll.go); this interval keeps discovery
// latency low without burning a full libusb_get_device_list() call too
// often.
const libusbPollInterval = 500 * time.Millisecond

func newBackend() Backend {
	return newPollBackend(libusbPollInterval)
}
