package session

import (
	"fmt"
	"sync"

	"github.com/google/gousb"
)

// Endpoints is the endpoint set discovered at open time. It is immutable
// once Session.Open returns successfully (§3 invariant 1).
type Endpoints struct {
	InterruptInAddr  uint8
	InterruptOutAddr uint8
	BulkOutAddr      uint8

	InterruptInMPS  int
	InterruptOutMPS int
	BulkOutMPS      int
}

// DeviceHandle is an opaque identifier referencing an opened USB device.
// It is produced by the transport package's discovery/hotplug logic and
// handed to a Session, which fills in Endpoints during Open.
type DeviceHandle struct {
	Device  *gousb.Device
	UsbPath string

	once      sync.Once
	endpoints Endpoints
}

// NewDeviceHandle wraps an already-opened *gousb.Device for handoff to a
// Session. usbPath is the dotted bus-port identifier (§6 "usb_path").
func NewDeviceHandle(dev *gousb.Device, usbPath string) *DeviceHandle {
	return &DeviceHandle{Device: dev, UsbPath: usbPath}
}

// Endpoints returns the endpoint set discovered during Open. Calling it
// before Open completes returns the zero value.
func (h *DeviceHandle) Endpoints() Endpoints {
	return h.endpoints
}

func (h *DeviceHandle) setEndpoints(ep Endpoints) {
	h.once.Do(func() {
		h.endpoints = ep
	})
}

// String implements fmt.Stringer for log messages.
func (h *DeviceHandle) String() string {
	return fmt.Sprintf("usb:%s", h.UsbPath)
}
