package session

// EventKind identifies the kind of low-level USB event the session
// reports to its EventSink.
type EventKind int

// Event kinds, per the endpoint callback dispatch table (§4.1).
const (
	// EventInterrupt carries a completed interrupt-IN packet. The
	// orchestrator dispatches the payload to the image-request protocol
	// or the console multiplexer depending on whether it matches the
	// image-request sentinel.
	EventInterrupt EventKind = iota
	// EventNoDevice indicates the device vanished (unplug or reset).
	EventNoDevice
	// EventTransferCancelled indicates a transfer was cancelled as part
	// of an orchestrator-initiated close(), not a device disconnect.
	EventTransferCancelled
	// EventTransferError indicates a transfer completed with an
	// unrecognized status.
	EventTransferError
)

// String returns a human-readable event kind name.
func (k EventKind) String() string {
	switch k {
	case EventInterrupt:
		return "Interrupt"
	case EventNoDevice:
		return "NoDevice"
	case EventTransferCancelled:
		return "TransferCancelled"
	case EventTransferError:
		return "TransferError"
	default:
		return "Unknown"
	}
}

// Event is a single notification delivered to an EventSink by the
// session's callback worker. Only Data is populated for EventInterrupt.
type Event struct {
	Kind EventKind
	Data []byte
}

// EventSink receives Events from a Session's callback worker, always on
// the same single goroutine and always in FIFO order (§3 invariant 4).
// The orchestrator implements this interface; the session is never aware
// of image requests or console text, only raw interrupt bytes.
type EventSink interface {
	HandleSessionEvent(Event)
}

// EventSinkFunc adapts a function to an EventSink.
type EventSinkFunc func(Event)

// HandleSessionEvent implements EventSink.
func (f EventSinkFunc) HandleSessionEvent(e Event) { f(e) }
