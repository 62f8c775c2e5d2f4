// Package session implements the per-device USB session state machine
// (component C1): opening and configuring a just-arrived device, running
// three long-lived in-flight transfers (interrupt-IN, interrupt-OUT,
// bulk-OUT), multiplexing those transfers' completions onto a
// single-consumer callback queue, and tearing the session down safely in
// the face of concurrent disconnects, cancellations, and shutdown.
//
// A Session owns exactly one *gousb.Device and exposes it through three
// operations: Write (synchronous bulk-OUT, one in flight at a time),
// WriteInterrupt (fire-and-forget interrupt-OUT), and an EventSink
// callback fed by the continuously-resubmitted interrupt-IN pump. The
// protocol and console packages consume that EventSink; this package
// knows nothing about image requests or U-Boot prompts.
//
// Session is built in the image of ardnew-softusb's host.TransferManager
// and host.Host.monitorDevices/monitorDisconnection goroutine patterns,
// adapted from a simulated host-controller HAL to github.com/google/gousb
// talking to real hardware.
package session
