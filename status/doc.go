// Package status defines the event vocabulary published by a device
// session to its external observer (§6): per-device Status transitions
// and progress, plus the coarser process-level ManagerEvent stream.
//
// Status values are monotonic within one session, following the DAG in
// the design: Added -> Opened -> BootStart -> BootProgress ->
// (BootComplete | BootFail) -> [UpdateStart -> UpdateProgress ->
// (UpdateComplete | UpdateFail)], with ImageSend* events orthogonal to
// that spine.
package status
