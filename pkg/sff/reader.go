package sff

import (
	"encoding/binary"
	"fmt"
)

// File is a decoded container. Payload slices alias the input buffer.
type File struct {
	Header   Header
	Sprites  []SpriteNode
	Palettes []PaletteNode
	LData    []byte
	size     int
}

// Decode parses a container produced by Encode or any SFF v2.01 writer
// that stores its payloads in the literal data region.
func Decode(data []byte) (*File, error) {
	f := &File{size: len(data)}
	if err := f.Header.Unpack(data); err != nil {
		return nil, err
	}
	h := &f.Header

	spriteEnd, err := region(h.SpriteOffset, uint64(h.SpriteCount)*SpriteNodeSize, len(data), "sprite table")
	if err != nil {
		return nil, err
	}
	for i := uint64(h.SpriteOffset); i < spriteEnd; i += SpriteNodeSize {
		n, err := UnpackSpriteNode(data[i : i+SpriteNodeSize])
		if err != nil {
			return nil, err
		}
		f.Sprites = append(f.Sprites, *n)
	}

	paletteEnd, err := region(h.PaletteOffset, uint64(h.PaletteCount)*PaletteNodeSize, len(data), "palette table")
	if err != nil {
		return nil, err
	}
	for i := uint64(h.PaletteOffset); i < paletteEnd; i += PaletteNodeSize {
		n, err := UnpackPaletteNode(data[i : i+PaletteNodeSize])
		if err != nil {
			return nil, err
		}
		f.Palettes = append(f.Palettes, *n)
	}

	ldataEnd, err := region(h.LDataOffset, uint64(h.LDataLength), len(data), "literal data")
	if err != nil {
		return nil, err
	}
	f.LData = data[h.LDataOffset:ldataEnd]

	if _, err := region(h.TDataOffset, uint64(h.TDataLength), len(data), "translated data"); err != nil {
		return nil, err
	}

	return f, nil
}

func region(offset uint32, length uint64, total int, name string) (uint64, error) {
	end := uint64(offset) + length
	if end > uint64(total) {
		return 0, fmt.Errorf("%w: %s [%d, %d) beyond %d bytes", ErrTruncated, name, offset, end, total)
	}
	return end, nil
}

// SpritePayload returns the declared uncompressed size and the encoded
// image bytes of sprite i.
func (f *File) SpritePayload(i int) (uint32, []byte, error) {
	if i < 0 || i >= len(f.Sprites) {
		return 0, nil, fmt.Errorf("%w: %d of %d", ErrSpriteIndex, i, len(f.Sprites))
	}
	n := f.Sprites[i]
	if n.Flags&FlagTranslated != 0 {
		return 0, nil, fmt.Errorf("%w: sprite %d stored in translated data", ErrLayout, i)
	}
	end := uint64(n.DataOffset) + uint64(n.DataLength)
	if n.DataLength < SizePrefixLen || end > uint64(len(f.LData)) {
		return 0, nil, fmt.Errorf("%w: sprite %d payload [%d, %d)", ErrTruncated, i, n.DataOffset, end)
	}
	chunk := f.LData[n.DataOffset:end]
	return binary.LittleEndian.Uint32(chunk[:SizePrefixLen]), chunk[SizePrefixLen:], nil
}

// PalettePayload returns the raw color bytes of palette i.
func (f *File) PalettePayload(i int) ([]byte, error) {
	if i < 0 || i >= len(f.Palettes) {
		return nil, fmt.Errorf("palette index %d out of range", i)
	}
	n := f.Palettes[i]
	end := uint64(n.DataOffset) + uint64(n.DataLength)
	if end > uint64(len(f.LData)) {
		return nil, fmt.Errorf("%w: palette %d payload [%d, %d)", ErrTruncated, i, n.DataOffset, end)
	}
	return f.LData[n.DataOffset:end], nil
}

// ToSprites rebuilds the Sprite values stored in the container.
func (f *File) ToSprites() ([]Sprite, error) {
	sprites := make([]Sprite, len(f.Sprites))
	for i, n := range f.Sprites {
		_, payload, err := f.SpritePayload(i)
		if err != nil {
			return nil, err
		}
		sprites[i] = Sprite{
			Group:    n.Group,
			Item:     n.Item,
			Width:    int(n.Width),
			Height:   int(n.Height),
			AxisX:    n.AxisX,
			AxisY:    n.AxisY,
			HasAlpha: n.HasAlpha(),
			Data:     payload,
		}
	}
	return sprites, nil
}

// Verify checks the invariants every exported container holds: regions
// tile the file from the end of the header without gaps or overlap, there
// is exactly one palette, and every sprite payload is in range.
func (f *File) Verify() error {
	h := f.Header
	cursor := uint64(HeaderSize)
	regions := []struct {
		name   string
		offset uint32
		length uint64
	}{
		{"sprite table", h.SpriteOffset, uint64(h.SpriteCount) * SpriteNodeSize},
		{"palette table", h.PaletteOffset, uint64(h.PaletteCount) * PaletteNodeSize},
		{"literal data", h.LDataOffset, uint64(h.LDataLength)},
		{"translated data", h.TDataOffset, uint64(h.TDataLength)},
	}
	for _, r := range regions {
		if uint64(r.offset) != cursor {
			return fmt.Errorf("%w: %s starts at %d, expected %d", ErrLayout, r.name, r.offset, cursor)
		}
		cursor += r.length
	}
	if cursor != uint64(f.size) {
		return fmt.Errorf("%w: regions end at %d, file is %d bytes", ErrLayout, cursor, f.size)
	}

	if h.PaletteCount != 1 {
		return fmt.Errorf("%w: %d palettes, expected 1", ErrLayout, h.PaletteCount)
	}
	if _, err := f.PalettePayload(0); err != nil {
		return err
	}
	for i := range f.Sprites {
		if _, _, err := f.SpritePayload(i); err != nil {
			return err
		}
	}
	return nil
}
