package pkg

import "errors"

// Session and transport error kinds, per the error handling design (§7):
// TransientDeviceState, EndpointHalted, NoDevice, TransferError,
// ImageMissing, Timeout, MutexTimeout, Fatal.
var (
	// ErrTransientDeviceState indicates the device's configuration
	// descriptor was unusable (e.g. reports zero interfaces) while still
	// settling after enumeration. Retried a bounded number of times before
	// being treated as terminal.
	ErrTransientDeviceState = errors.New("transient device state")

	// ErrEndpointMissing indicates a required endpoint (interrupt-IN,
	// interrupt-OUT, or bulk-OUT) was not found, or an interrupt endpoint
	// reported a zero max-packet-size.
	ErrEndpointMissing = errors.New("required endpoint missing")

	// ErrEndpointHalted indicates a bulk or interrupt endpoint returned a
	// STALL/pipe-error condition.
	ErrEndpointHalted = errors.New("endpoint halted")

	// ErrNoDevice indicates the device vanished (unplugged or reset)
	// during a transfer or session operation.
	ErrNoDevice = errors.New("device not present")

	// ErrTransferCancelled indicates a transfer was cancelled as part of
	// session teardown, not because the device vanished.
	ErrTransferCancelled = errors.New("transfer cancelled")

	// ErrTransferError indicates a transfer completed with an
	// unrecognized or otherwise unhandled completion status.
	ErrTransferError = errors.New("transfer error")

	// ErrImageMissing indicates the device requested an image name that
	// is not present in the session's catalog.
	ErrImageMissing = errors.New("image not found in catalog")

	// ErrTimeout indicates the image-request worker waited 10s with no
	// request while boot was in progress.
	ErrTimeout = errors.New("timeout waiting for image request")

	// ErrMutexTimeout indicates the cross-process critical section could
	// not be acquired within its deadline.
	ErrMutexTimeout = errors.New("cross-process mutex acquisition timed out")

	// ErrFatal indicates the USB library itself could not be initialized;
	// the Transport refuses to start.
	ErrFatal = errors.New("fatal transport initialization failure")

	// ErrAlreadyRunning indicates a Start/open call on an object that is
	// already running/open.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNotRunning indicates an operation requiring a running session or
	// transport was attempted after shutdown.
	ErrNotRunning = errors.New("not running")

	// ErrClosed indicates the session or transport has already been
	// closed; close() is idempotent and this is informational, not fatal.
	ErrClosed = errors.New("already closed")
)

// TransferStatus represents the completion status of a USB transfer, in
// the vocabulary of §4.1's endpoint callback. The session package does not
// use it; it classifies gousb errors into the sentinels above directly.
type TransferStatus int

// Transfer status values.
const (
	TransferStatusCompleted TransferStatus = iota // Transfer completed successfully
	TransferStatusError                           // Unrecognized/other status
	TransferStatusStall                           // Endpoint stalled
	TransferStatusNoDevice                        // Device vanished
	TransferStatusCancelled                       // Cancelled by close()
)

// String returns a string representation of the transfer status.
func (s TransferStatus) String() string {
	switch s {
	case TransferStatusCompleted:
		return "completed"
	case TransferStatusError:
		return "error"
	case TransferStatusStall:
		return "stall"
	case TransferStatusNoDevice:
		return "no_device"
	case TransferStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the transfer status, or nil
// for a successful completion.
func (s TransferStatus) Error() error {
	switch s {
	case TransferStatusCompleted:
		return nil
	case TransferStatusStall:
		return ErrEndpointHalted
	case TransferStatusNoDevice:
		return ErrNoDevice
	case TransferStatusCancelled:
		return ErrTransferCancelled
	default:
		return ErrTransferError
	}
}
