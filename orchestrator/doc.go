// Package orchestrator implements the per-device session orchestrator
// (component C4): catalog assembly, the Boot/Update/WaitForCompletion
// state machine, USB-event-driven status promotion, and the 10s
// image-request timeout. It owns a session.Session, a console.Console,
// and a protocol.Worker, translating their low-level events into the
// Status stream defined by the status package.
//
// The request-processing loop is its own goroutine (T4 in the
// concurrency model), separate from the session's own callback worker
// (T5): the session only ever calls HandleSessionEvent, which hands
// interrupt bytes off to an internal channel so the callback worker is
// never blocked waiting on image I/O or console condvars.
package orchestrator
