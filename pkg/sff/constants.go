package sff

// Core format constants. These are protocol values checked by the engine.

var (
	// Signature opens every container, NUL padded to 12 bytes.
	Signature = [12]byte{'E', 'l', 'e', 'c', 'b', 'y', 't', 'e', 'S', 'p', 'r', 0x00}

	// Version is stored as verlo3, verlo2, verlo1, verhi: 2.01, the first
	// revision with PNG sprite formats.
	Version = [4]byte{0x00, 0x01, 0x00, 0x02}
)

const (
	// Fixed sizes - part of the format
	HeaderSize      = 68
	SpriteNodeSize  = 28
	PaletteNodeSize = 16

	// Byte offset of the first (offset, count) pair in the header
	TableOffsetsStart = 36

	// Sprite formats
	FormatRaw   = 0
	FormatRLE8  = 2
	FormatRLE5  = 3
	FormatLZ5   = 4
	FormatPNG8  = 10
	FormatPNG24 = 11
	FormatPNG32 = 12

	// Color depth tags matching the PNG formats
	DepthPNG24 = 24
	DepthPNG32 = 32

	// NotLinked marks a sprite whose payload is its own
	NotLinked = 0xFFFF

	// Sprite flags: bit 0 selects the data region
	FlagLiteral    = 0x0000
	FlagTranslated = 0x0001

	// Largest width/height representable alongside signed 16-bit axes
	MaxDimension = 32767

	// Size of the per-sprite declared-uncompressed-size prefix in ldata
	SizePrefixLen = 4
)

// placeholderPalette is the one palette every container carries: a single
// fully transparent black entry. Engines refuse containers without it.
var placeholderPalette = []byte{0x00, 0x00, 0x00, 0x00}
