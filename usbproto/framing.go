package usbproto

import "encoding/binary"

// HeaderSize is the length in bytes of the reply header written before
// the file payload: a little-endian u32 size followed by four zero bytes.
const HeaderSize = 8

// EmitHeader returns the 8-byte reply header for a payload of size
// bytes: size as little-endian u32, followed by four zero bytes.
func EmitHeader(size uint32) [HeaderSize]byte {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], size)
	// hdr[4:8] already zero.
	return hdr
}

// ParseHeader parses an 8-byte reply header, returning the encoded size
// and the second (reserved, always-zero) word. ok is false if buf is
// shorter than HeaderSize.
func ParseHeader(buf []byte) (size uint32, reserved uint32, ok bool) {
	if len(buf) < HeaderSize {
		return 0, 0, false
	}
	size = binary.LittleEndian.Uint32(buf[0:4])
	reserved = binary.LittleEndian.Uint32(buf[4:8])
	return size, reserved, true
}

// EmitSizeReply returns the 4-byte little-endian encoding of size, the
// contents written to the 07_IMAGE side-channel file.
func EmitSizeReply(size uint32) [4]byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], size)
	return buf
}
