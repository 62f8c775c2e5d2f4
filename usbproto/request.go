package usbproto

import "strings"

// Magic is the sentinel prefix that marks an inbound interrupt packet as
// an image request rather than console output.
const Magic = "i*m*g*r*q*"

// SizeReplyThreshold is the image_type value above which the session
// must, after sending the requested image, record its size into the
// 07_IMAGE side-channel file.
const SizeReplyThreshold = 0x79

// Request is a parsed inbound image-request interrupt packet.
type Request struct {
	// ImageType is the raw type byte. Values greater than
	// SizeReplyThreshold request a trailing size-reply write.
	ImageType byte

	// Name is the normalized catalog lookup key: trailing NULs trimmed,
	// and if the raw name contained a '/', only the suffix after the
	// first '/'.
	Name string

	// Prefix is the informational directory component preceding the
	// first '/' in the raw name, or empty if the raw name had none.
	Prefix string
}

// WantsSizeReply reports whether this request's image_type signals that
// the previous payload's size should be recorded into 07_IMAGE after this
// image is sent.
func (r Request) WantsSizeReply() bool {
	return r.ImageType > SizeReplyThreshold
}

// ParseRequest attempts to parse packet as an image-request interrupt
// packet. It returns ok == false if packet does not begin with Magic, in
// which case the caller should treat the bytes as console output (§4.3).
func ParseRequest(packet []byte) (Request, bool) {
	if len(packet) < len(Magic)+1 {
		return Request{}, false
	}
	if string(packet[:len(Magic)]) != Magic {
		return Request{}, false
	}

	imageType := packet[len(Magic)]
	rawName := packet[len(Magic)+1:]

	name := normalizeName(rawName)
	prefix := ""
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		prefix = name[:idx]
		name = name[idx+1:]
	}

	return Request{ImageType: imageType, Name: name, Prefix: prefix}, true
}

// normalizeName trims trailing NUL padding from a raw, fixed-width name
// field.
func normalizeName(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}
