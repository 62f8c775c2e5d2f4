// Package usbproto implements the wire-level helpers for the image-request
// protocol: parsing inbound interrupt packets into image requests, and
// framing outbound bulk payloads with the 8-byte length header the device
// expects.
//
// These are pure functions deliberately kept free of any USB I/O so the
// round-trip laws in the design's testable-properties section can be
// checked directly: ParseHeader(EmitHeader(n)) == (n, 0) for any
// representable n, and ParseRequest correctly rejects any interrupt packet
// that is not a request (console bytes).
package usbproto
