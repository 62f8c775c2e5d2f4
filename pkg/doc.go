// Package pkg provides shared utilities for astra-update's USB device
// session stack.
//
// This package contains common functionality used across the transport,
// session, protocol, console, and orchestrator packages:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error kinds for the USB session error model
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with USB-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentSession, "device configured", "vendor", 0x1234)
//
// A caller wanting its own log sink calls [SetLogger] with a *slog.Logger
// built from any [slog.Handler]; astra-update never owns the destination.
//
// [DeviceLogger] binds a Component and a usb_path once per session or
// orchestrator instance, so call sites threading a device identity
// through every log line (session, orchestrator) don't repeat it as a
// key-value pair on every call:
//
//	log := pkg.DeviceLogger(pkg.ComponentSession, handle.UsbPath)
//	log.Warn("bulk-out write failed", "err", err)
//
// # Errors
//
// Session error kinds are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrNoDevice) {
//	    // device vanished mid-transfer
//	}
package pkg
