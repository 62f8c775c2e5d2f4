//go:build windows

package transport

import "time"

// windowsPollInterval is slightly longer than the POSIX interval: a
// real message-only window backed by RegisterDeviceNotification would
// be event-driven with effectively zero added latency, so this gap is
// the direct cost of the polling fallback documented in hotplug_poll.go.
const windowsPollInterval = time.Second

func newBackend() Backend {
	return newPollBackend(windowsPollInterval)
}
