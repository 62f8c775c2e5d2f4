package session

import "sync"

// registry maps a usb_path token to its live Session, replacing the
// teacher's index-based device table (ardnew-softusb/host.Host keeps
// devices in a map keyed by address) with a sync.Map keyed by the opaque
// session token described in SPEC_FULL.md's Design Note 1: the dotted
// usb_path string, since it is already unique per physical port and
// stable across the life of a single boot/update session.
var registry sync.Map // usb_path -> *Session

func register(usbPath string, s *Session) {
	registry.Store(usbPath, s)
}

func unregister(usbPath string) {
	registry.Delete(usbPath)
}

// Lookup returns the live Session for usb_path, if one is open.
func Lookup(usbPath string) (*Session, bool) {
	v, ok := registry.Load(usbPath)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Count returns the number of currently open sessions.
func Count() int {
	n := 0
	registry.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
