package sff

import (
	"fmt"
	"math"

	"github.com/provide-io/stagepack/pkg/codec"
)

// Sprite is one raster ready to be written into a container. Data holds
// the already-encoded lossless image and is opaque to the writer.
type Sprite struct {
	Group    uint16
	Item     uint16
	Width    int
	Height   int
	AxisX    int16
	AxisY    int16
	HasAlpha bool
	Data     []byte
}

// NewSprite encodes r with c and returns a sprite numbered group,item.
// Rasters the container cannot represent are rejected here rather than
// truncated by the writer.
func NewSprite(group, item uint16, r codec.Raster, axisX, axisY int, c codec.Codec) (Sprite, error) {
	if err := r.Validate(); err != nil {
		return Sprite{}, fmt.Errorf("%w %d,%d: %v", ErrInvalidSprite, group, item, err)
	}
	if r.Width > MaxDimension || r.Height > MaxDimension {
		return Sprite{}, fmt.Errorf("%w %d,%d: %dx%d exceeds %d", ErrInvalidSprite, group, item, r.Width, r.Height, MaxDimension)
	}
	if !fitsInt16(axisX) || !fitsInt16(axisY) {
		return Sprite{}, fmt.Errorf("%w %d,%d: axis %d,%d out of range", ErrInvalidSprite, group, item, axisX, axisY)
	}

	data, err := c.Encode(r)
	if err != nil {
		return Sprite{}, fmt.Errorf("encoding sprite %d,%d: %w", group, item, err)
	}

	s := Sprite{
		Group:    group,
		Item:     item,
		Width:    r.Width,
		Height:   r.Height,
		AxisX:    int16(axisX),
		AxisY:    int16(axisY),
		HasAlpha: r.HasAlpha,
		Data:     data,
	}
	return s, s.Validate()
}

// Validate checks the sprite against the container's representable range.
func (s Sprite) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width > MaxDimension || s.Height > MaxDimension {
		return fmt.Errorf("%w %d,%d: dimensions %dx%d", ErrInvalidSprite, s.Group, s.Item, s.Width, s.Height)
	}
	if len(s.Data) == 0 {
		return fmt.Errorf("%w %d,%d: empty payload", ErrInvalidSprite, s.Group, s.Item)
	}
	if uint64(len(s.Data))+SizePrefixLen > math.MaxUint32 {
		return fmt.Errorf("%w %d,%d: payload too large", ErrInvalidSprite, s.Group, s.Item)
	}
	return nil
}

// FormatCode returns the format byte and color depth tag for the sprite.
func (s Sprite) FormatCode() (format, depth uint8) {
	if s.HasAlpha {
		return FormatPNG32, DepthPNG32
	}
	return FormatPNG24, DepthPNG24
}

// DeclaredSize is the informational uncompressed size stored before the
// payload: width * height * 4.
func (s Sprite) DeclaredSize() uint32 {
	return uint32(s.Width) * uint32(s.Height) * 4
}

// CheckUnique returns ErrDuplicateSprite if two sprites share a number.
func CheckUnique(sprites []Sprite) error {
	seen := make(map[[2]uint16]int, len(sprites))
	for i, s := range sprites {
		key := [2]uint16{s.Group, s.Item}
		if j, ok := seen[key]; ok {
			return fmt.Errorf("%w: %d,%d used by sprites %d and %d", ErrDuplicateSprite, s.Group, s.Item, j, i)
		}
		seen[key] = i
	}
	return nil
}

func fitsInt16(v int) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}
