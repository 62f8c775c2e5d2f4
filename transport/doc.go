// Package transport implements USB context lifetime, hotplug discovery,
// port filtering, and device-handle handoff (component C5). The platform
// split described in Design Note 4 ("Platform-varying Transport") is
// expressed as the Backend interface. hotplug_linux.go re-runs the
// enumeration pass on usb netlink uevents (plus a periodic poll);
// hotplug_libusb.go (other non-Windows platforms) and hotplug_windows.go
// re-run it on a fixed timer through pollBackend. No backend registers a
// libusb hotplug callback or a Windows device-notification window.
package transport
