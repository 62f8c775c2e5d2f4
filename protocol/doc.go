// Package protocol implements the image-request side of the USB
// recovery protocol (component C2): given a parsed request (see
// usbproto), it looks the named image up in a catalog, streams it over a
// session's bulk-OUT endpoint behind the 8-byte length header, maintains
// the size-reply side-channel file used to signal end-of-eMMC-update, and
// evaluates the three-step terminal-image rule that tells the
// orchestrator whether boot or update just completed.
//
// protocol.Worker holds only the per-session request-processing state
// (final_boot_image, final_update_image, wait_for_size_reply, bootOnly);
// it knows nothing about Status or the broader Boot/Update state machine,
// which belongs to the orchestrator.
package protocol
