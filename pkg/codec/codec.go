// Package codec adapts raster image decoding and lossless encoding for the
// export pipeline. The pipeline only ever sees Raster values; any Codec that
// round-trips pixels without loss can be substituted.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// Registered decoders
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

var (
	ErrEmptyImage    = errors.New("codec: image has zero width or height")
	ErrInvalidRaster = errors.New("codec: pixel buffer does not match dimensions")
	ErrDecodeFailed  = errors.New("codec: failed to decode image")
	ErrEncodeFailed  = errors.New("codec: failed to encode image")
)

// Raster is a decoded image: non-premultiplied RGBA, 4 bytes per pixel,
// rows packed without padding.
type Raster struct {
	Width    int
	Height   int
	HasAlpha bool
	Pix      []byte
}

// Codec decodes arbitrary image bytes to a Raster and encodes a Raster to
// lossless bytes.
type Codec interface {
	Decode(data []byte) (Raster, error)
	Encode(r Raster) ([]byte, error)
}

// Empty reports whether the raster has no pixels.
func (r Raster) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Validate checks that the pixel buffer matches the dimensions.
func (r Raster) Validate() error {
	if r.Empty() {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, r.Width, r.Height)
	}
	if want := r.Width * r.Height * 4; len(r.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrInvalidRaster, r.Width, r.Height, want, len(r.Pix))
	}
	return nil
}

// Clone returns a raster that shares no memory with r.
func (r Raster) Clone() Raster {
	c := r
	if r.Pix != nil {
		c.Pix = bytes.Clone(r.Pix)
	}
	return c
}

// FromImage converts any image.Image to a Raster. HasAlpha is set when at
// least one pixel is not fully opaque.
func FromImage(img image.Image) Raster {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		// Straight row copy keeps color under zero alpha intact.
		for y := 0; y < b.Dy(); y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[start:start+dst.Stride])
		}
	} else {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	}
	return Raster{
		Width:    b.Dx(),
		Height:   b.Dy(),
		HasAlpha: hasTransparency(dst.Pix),
		Pix:      dst.Pix,
	}
}

// ToImage wraps the raster pixels in an *image.NRGBA without copying.
func ToImage(r Raster) *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

func hasTransparency(pix []byte) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xFF {
			return true
		}
	}
	return false
}

// PNG decodes PNG, JPEG, GIF, BMP, TIFF and WebP input and encodes PNG.
type PNG struct {
	Level png.CompressionLevel
}

// NewPNG returns a PNG codec using best compression.
func NewPNG() *PNG {
	return &PNG{Level: png.BestCompression}
}

func (c *PNG) Decode(data []byte) (Raster, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Raster{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	r := FromImage(img)
	if r.Empty() {
		return Raster{}, fmt.Errorf("%w: %s source", ErrEmptyImage, format)
	}
	return r, nil
}

// Encode writes r as PNG. Rasters without alpha are forced opaque so the
// encoder emits a truecolor image without an alpha channel.
func (c *PNG) Encode(r Raster) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !r.HasAlpha && hasTransparency(r.Pix) {
		r = r.Clone()
		for i := 3; i < len(r.Pix); i += 4 {
			r.Pix[i] = 0xFF
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: c.Level}
	if err := enc.Encode(&buf, ToImage(r)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}
