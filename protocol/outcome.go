package protocol

// Outcome tells the orchestrator what, if anything, just happened to the
// Boot/Update state machine as a result of serving one image request.
type Outcome int

const (
	// OutcomeNone means the request was served and nothing terminal
	// happened; the session keeps waiting for the next request.
	OutcomeNone Outcome = iota
	// OutcomeBootComplete means the terminal boot image was just sent and
	// bootOnly is false, or the boot-only size reply was just served.
	OutcomeBootComplete
	// OutcomeUpdateComplete means the terminal update image (or the
	// 07_IMAGE size-reply file) was just served.
	OutcomeUpdateComplete
	// OutcomeMissingImage means the requested name was not in the
	// catalog; the caller ends the session with a Fail status.
	OutcomeMissingImage
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "None"
	case OutcomeBootComplete:
		return "BootComplete"
	case OutcomeUpdateComplete:
		return "UpdateComplete"
	case OutcomeMissingImage:
		return "MissingImage"
	default:
		return "Unknown"
	}
}
