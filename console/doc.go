// Package console implements the U-Boot console multiplexer (component
// C3): it accumulates interrupt bytes that are not image-request packets
// into an unbounded transcript, mirrors them to a per-device log file,
// and signals waiters when the transcript ends in the literal U-Boot
// prompt "=>". Outbound keystrokes are plain interrupt-OUT writes on the
// owning session.
//
// The wait/notify shape follows ardnew-softusb/host.Host's
// monitorDisconnection pattern of a condition guarded by a mutex, here
// realized as a sync.Cond broadcast on a prompt-seen generation counter
// instead of a device-removal signal.
package console
