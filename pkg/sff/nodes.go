package sff

import (
	"encoding/binary"
	"fmt"
)

// SpriteNode is the 28-byte sprite descriptor.
type SpriteNode struct {
	Group        uint16
	Item         uint16
	Width        uint16
	Height       uint16
	AxisX        int16
	AxisY        int16
	LinkedIndex  uint16 // NotLinked unless the payload is shared
	Format       uint8  // FormatPNG24 or FormatPNG32 for this pipeline
	ColorDepth   uint8
	DataOffset   uint32 // Relative to the start of the data region
	DataLength   uint32 // Includes the size prefix
	PaletteIndex uint16
	Flags        uint16 // FlagLiteral: payload lives in ldata
}

// Pack serializes the node to exactly SpriteNodeSize bytes
func (n *SpriteNode) Pack() []byte {
	buf := make([]byte, SpriteNodeSize)

	binary.LittleEndian.PutUint16(buf[0:2], n.Group)
	binary.LittleEndian.PutUint16(buf[2:4], n.Item)
	binary.LittleEndian.PutUint16(buf[4:6], n.Width)
	binary.LittleEndian.PutUint16(buf[6:8], n.Height)
	binary.LittleEndian.PutUint16(buf[8:10], uint16(n.AxisX))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(n.AxisY))
	binary.LittleEndian.PutUint16(buf[12:14], n.LinkedIndex)
	buf[14] = n.Format
	buf[15] = n.ColorDepth
	binary.LittleEndian.PutUint32(buf[16:20], n.DataOffset)
	binary.LittleEndian.PutUint32(buf[20:24], n.DataLength)
	binary.LittleEndian.PutUint16(buf[24:26], n.PaletteIndex)
	binary.LittleEndian.PutUint16(buf[26:28], n.Flags)

	return buf
}

// UnpackSpriteNode deserializes a node from SpriteNodeSize bytes
func UnpackSpriteNode(data []byte) (*SpriteNode, error) {
	if len(data) != SpriteNodeSize {
		return nil, fmt.Errorf("invalid sprite node size: expected %d, got %d", SpriteNodeSize, len(data))
	}

	return &SpriteNode{
		Group:        binary.LittleEndian.Uint16(data[0:2]),
		Item:         binary.LittleEndian.Uint16(data[2:4]),
		Width:        binary.LittleEndian.Uint16(data[4:6]),
		Height:       binary.LittleEndian.Uint16(data[6:8]),
		AxisX:        int16(binary.LittleEndian.Uint16(data[8:10])),
		AxisY:        int16(binary.LittleEndian.Uint16(data[10:12])),
		LinkedIndex:  binary.LittleEndian.Uint16(data[12:14]),
		Format:       data[14],
		ColorDepth:   data[15],
		DataOffset:   binary.LittleEndian.Uint32(data[16:20]),
		DataLength:   binary.LittleEndian.Uint32(data[20:24]),
		PaletteIndex: binary.LittleEndian.Uint16(data[24:26]),
		Flags:        binary.LittleEndian.Uint16(data[26:28]),
	}, nil
}

// HasAlpha reports whether the node declares an alpha-bearing format.
func (n *SpriteNode) HasAlpha() bool {
	return n.Format == FormatPNG32
}

// PaletteNode is the 16-byte palette descriptor.
type PaletteNode struct {
	Group       uint16
	Item        uint16
	NumColors   uint16
	LinkedIndex uint16
	DataOffset  uint32
	DataLength  uint32
}

// Pack serializes the node to exactly PaletteNodeSize bytes
func (n *PaletteNode) Pack() []byte {
	buf := make([]byte, PaletteNodeSize)

	binary.LittleEndian.PutUint16(buf[0:2], n.Group)
	binary.LittleEndian.PutUint16(buf[2:4], n.Item)
	binary.LittleEndian.PutUint16(buf[4:6], n.NumColors)
	binary.LittleEndian.PutUint16(buf[6:8], n.LinkedIndex)
	binary.LittleEndian.PutUint32(buf[8:12], n.DataOffset)
	binary.LittleEndian.PutUint32(buf[12:16], n.DataLength)

	return buf
}

// UnpackPaletteNode deserializes a node from PaletteNodeSize bytes
func UnpackPaletteNode(data []byte) (*PaletteNode, error) {
	if len(data) != PaletteNodeSize {
		return nil, fmt.Errorf("invalid palette node size: expected %d, got %d", PaletteNodeSize, len(data))
	}

	return &PaletteNode{
		Group:       binary.LittleEndian.Uint16(data[0:2]),
		Item:        binary.LittleEndian.Uint16(data[2:4]),
		NumColors:   binary.LittleEndian.Uint16(data[4:6]),
		LinkedIndex: binary.LittleEndian.Uint16(data[6:8]),
		DataOffset:  binary.LittleEndian.Uint32(data[8:12]),
		DataLength:  binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}
