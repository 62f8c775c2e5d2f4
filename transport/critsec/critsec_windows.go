//go:build windows

package critsec

import (
	"time"

	"golang.org/x/sys/windows"

	"github.com/synaptics-astra/astra-update/pkg"
)

// windowsMutex wraps a named Win32 mutex. A WAIT_ABANDONED result is
// treated as a successful acquisition (§7, "WAIT_ABANDONED-acceptable"):
// the previous holder died without releasing, but the protected resource
// (libusb's device list) is not left in a half-updated state by that.
type windowsMutex struct {
	handle windows.Handle
}

func newPlatformMutex(name string) Mutex {
	h, err := windows.CreateMutex(nil, false, windows.StringToUTF16Ptr("Global\\"+name))
	if err != nil {
		pkg.LogError(pkg.ComponentCritSec, "CreateMutex failed", "name", name, "err", err)
	}
	return &windowsMutex{handle: h}
}

func (m *windowsMutex) Lock(timeout time.Duration) error {
	if m.handle == 0 {
		return pkg.ErrFatal
	}
	event, err := windows.WaitForSingleObject(m.handle, uint32(timeout/time.Millisecond))
	if err != nil {
		return err
	}
	switch event {
	case windows.WAIT_OBJECT_0, windows.WAIT_ABANDONED:
		return nil
	case uint32(windows.WAIT_TIMEOUT):
		pkg.LogWarn(pkg.ComponentCritSec, "named mutex acquisition timed out")
		return timeoutErr()
	default:
		return pkg.ErrFatal
	}
}

func (m *windowsMutex) Unlock() {
	if m.handle != 0 {
		windows.ReleaseMutex(m.handle)
	}
}
