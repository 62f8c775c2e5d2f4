package critsec

import (
	"time"

	"github.com/synaptics-astra/astra-update/pkg"
)

// Mutex is a cross-process critical section. Lock blocks until acquired
// or timeout elapses, returning pkg.ErrMutexTimeout on the latter.
type Mutex interface {
	Lock(timeout time.Duration) error
	Unlock()
}

// New returns the platform Mutex implementation for name, a short token
// identifying the shared resource (turned into a lock file path on POSIX
// and a mutex name on Windows).
func New(name string) Mutex {
	return newPlatformMutex(name)
}

// pollInterval is how often Lock retries acquisition while waiting.
const pollInterval = 100 * time.Millisecond

func timeoutErr() error {
	return pkg.ErrMutexTimeout
}
