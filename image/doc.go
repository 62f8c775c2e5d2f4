// Package image describes the immutable image descriptors and the boot and
// flash manifests that drive a USB device session.
//
// An [Image] never owns open file handles across the lifetime of a session;
// it is opened lazily the first time the device requests it and yields
// byte blocks of up to [MaxBlockSize] bytes. A [Catalog] holds an ordered
// sequence of Images and supports exact-name lookup, mirroring the way the
// device addresses images by name over the interrupt endpoint.
//
// [BootImage] and [FlashImage] are the two manifests the session orchestrator
// consumes; both are built by an external collaborator (manifest/YAML
// loading is out of scope for this module) and handed in fully formed.
package image
