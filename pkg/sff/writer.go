package sff

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Writer builds containers in memory.
type Writer struct {
	logger hclog.Logger
}

// NewWriter creates a writer. A nil logger discards output.
func NewWriter(logger hclog.Logger) *Writer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Writer{logger: logger}
}

// Encode serializes sprites, in order, plus the placeholder palette.
func Encode(sprites []Sprite) ([]byte, error) {
	return NewWriter(nil).Encode(sprites)
}

// Encode serializes sprites, in order, plus the placeholder palette.
// Regions follow each other without padding: header, sprite table,
// palette table, literal data, then an empty translated data region.
func (w *Writer) Encode(sprites []Sprite) ([]byte, error) {
	for _, s := range sprites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if err := CheckUnique(sprites); err != nil {
		return nil, err
	}

	spriteTableOffset := uint32(HeaderSize)
	paletteTableOffset := spriteTableOffset + uint32(len(sprites))*SpriteNodeSize
	ldataOffset := paletteTableOffset + PaletteNodeSize

	// Literal data: palette payload first, then each sprite as
	// size prefix + encoded bytes.
	var ldata bytes.Buffer
	ldata.Write(placeholderPalette)

	palette := PaletteNode{
		Group:      0,
		Item:       0,
		NumColors:  1,
		DataOffset: 0,
		DataLength: uint32(len(placeholderPalette)),
	}

	nodes := make([]SpriteNode, len(sprites))
	for i, s := range sprites {
		format, depth := s.FormatCode()
		offset := uint32(ldata.Len())

		var prefix [SizePrefixLen]byte
		binary.LittleEndian.PutUint32(prefix[:], s.DeclaredSize())
		ldata.Write(prefix[:])
		ldata.Write(s.Data)

		nodes[i] = SpriteNode{
			Group:        s.Group,
			Item:         s.Item,
			Width:        uint16(s.Width),
			Height:       uint16(s.Height),
			AxisX:        s.AxisX,
			AxisY:        s.AxisY,
			LinkedIndex:  NotLinked,
			Format:       format,
			ColorDepth:   depth,
			DataOffset:   offset,
			DataLength:   uint32(ldata.Len()) - offset,
			PaletteIndex: 0,
			Flags:        FlagLiteral,
		}
		w.logger.Trace("Sprite laid out",
			"group", s.Group, "item", s.Item,
			"size", fmt.Sprintf("%dx%d", s.Width, s.Height),
			"format", format, "offset", offset, "length", nodes[i].DataLength)
	}

	if uint64(ldataOffset)+uint64(ldata.Len()) > 1<<32-1 {
		return nil, fmt.Errorf("%w: literal data exceeds 4 GiB", ErrLayout)
	}

	header := Header{
		Signature:     Signature,
		Version:       Version,
		SpriteOffset:  spriteTableOffset,
		SpriteCount:   uint32(len(sprites)),
		PaletteOffset: paletteTableOffset,
		PaletteCount:  1,
		LDataOffset:   ldataOffset,
		LDataLength:   uint32(ldata.Len()),
		TDataOffset:   ldataOffset + uint32(ldata.Len()),
		TDataLength:   0,
	}

	out := bytes.NewBuffer(make([]byte, 0, int(header.TDataOffset)))
	out.Write(header.Pack())
	for i := range nodes {
		out.Write(nodes[i].Pack())
	}
	out.Write(palette.Pack())
	out.Write(ldata.Bytes())

	w.logger.Debug("Container encoded",
		"sprites", len(sprites),
		"ldata_length", header.LDataLength,
		"size", out.Len())

	return out.Bytes(), nil
}
