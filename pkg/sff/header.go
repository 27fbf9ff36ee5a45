package sff

import (
	"encoding/binary"
	"fmt"
)

// Header is the fixed 68-byte container preamble.
type Header struct {
	// Identification (16 bytes)
	Signature [12]byte
	Version   [4]byte

	// Bytes 16..36 are reserved and always zero

	// Region locations (32 bytes)
	SpriteOffset  uint32 // Offset of the sprite node table
	SpriteCount   uint32 // Number of sprite nodes
	PaletteOffset uint32 // Offset of the palette node table
	PaletteCount  uint32 // Number of palette nodes
	LDataOffset   uint32 // Offset of the literal data region
	LDataLength   uint32 // Length of the literal data region
	TDataOffset   uint32 // Offset of the translated data region
	TDataLength   uint32 // Length of the translated data region
}

// Pack serializes the header to exactly HeaderSize bytes
func (h *Header) Pack() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:12], h.Signature[:])
	copy(buf[12:16], h.Version[:])

	binary.LittleEndian.PutUint32(buf[36:40], h.SpriteOffset)
	binary.LittleEndian.PutUint32(buf[40:44], h.SpriteCount)
	binary.LittleEndian.PutUint32(buf[44:48], h.PaletteOffset)
	binary.LittleEndian.PutUint32(buf[48:52], h.PaletteCount)
	binary.LittleEndian.PutUint32(buf[52:56], h.LDataOffset)
	binary.LittleEndian.PutUint32(buf[56:60], h.LDataLength)
	binary.LittleEndian.PutUint32(buf[60:64], h.TDataOffset)
	binary.LittleEndian.PutUint32(buf[64:68], h.TDataLength)

	return buf
}

// Unpack deserializes the header from bytes
func (h *Header) Unpack(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, HeaderSize, len(data))
	}

	copy(h.Signature[:], data[0:12])
	copy(h.Version[:], data[12:16])

	h.SpriteOffset = binary.LittleEndian.Uint32(data[36:40])
	h.SpriteCount = binary.LittleEndian.Uint32(data[40:44])
	h.PaletteOffset = binary.LittleEndian.Uint32(data[44:48])
	h.PaletteCount = binary.LittleEndian.Uint32(data[48:52])
	h.LDataOffset = binary.LittleEndian.Uint32(data[52:56])
	h.LDataLength = binary.LittleEndian.Uint32(data[56:60])
	h.TDataOffset = binary.LittleEndian.Uint32(data[60:64])
	h.TDataLength = binary.LittleEndian.Uint32(data[64:68])

	if h.Signature != Signature {
		return fmt.Errorf("%w: %q", ErrInvalidSignature, h.Signature[:])
	}
	if h.Version != Version {
		return fmt.Errorf("%w: got %d.%d%d%d", ErrUnsupportedVersion, h.Version[3], h.Version[2], h.Version[1], h.Version[0])
	}
	return nil
}
