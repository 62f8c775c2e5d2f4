//go:build !windows

package critsec

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/synaptics-astra/astra-update/pkg"
)

// unixMutex is an flock(2)-based cross-process mutex. Acquisition is
// polled rather than blocking on LOCK_EX directly so Lock can honor its
// timeout deadline.
type unixMutex struct {
	path string
	fd   int
}

func newPlatformMutex(name string) Mutex {
	return &unixMutex{path: filepath.Join(os.TempDir(), name+".lock"), fd: -1}
}

func (m *unixMutex) Lock(timeout time.Duration) error {
	fd, err := unix.Open(m.path, unix.O_CREAT|unix.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			m.fd = fd
			return nil
		}
		if time.Now().After(deadline) {
			unix.Close(fd)
			pkg.LogWarn(pkg.ComponentCritSec, "flock acquisition timed out", "path", m.path)
			return timeoutErr()
		}
		time.Sleep(pollInterval)
	}
}

func (m *unixMutex) Unlock() {
	if m.fd < 0 {
		return
	}
	unix.Flock(m.fd, unix.LOCK_UN)
	unix.Close(m.fd)
	m.fd = -1
}
