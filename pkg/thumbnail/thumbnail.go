// Package thumbnail derives the stage-select preview image from a
// background.
package thumbnail

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/provide-io/stagepack/pkg/codec"
)

// Default preview size, 16:9
const (
	DefaultWidth  = 160
	DefaultHeight = 90
)

// Generator crops and resamples sources to a fixed size.
type Generator struct {
	Width  int
	Height int
	Interp resize.InterpolationFunction
}

// New returns a generator for the default preview size.
func New() *Generator {
	return &Generator{Width: DefaultWidth, Height: DefaultHeight, Interp: resize.Lanczos3}
}

// CropRect returns the window of a srcW x srcH image that has the aspect
// ratio of dstW x dstH. Wider sources are cropped evenly on both sides.
// Taller sources keep a window whose top sits a tenth of the way into the
// excess, so most of the cut comes off the bottom.
func CropRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW*dstH > dstW*srcH {
		cropW := max(1, srcH*dstW/dstH)
		x := max(0, (srcW-cropW)/2)
		return image.Rect(x, 0, x+cropW, srcH)
	}
	cropH := max(1, srcW*dstH/dstW)
	y := max(0, (srcH-cropH)/10)
	return image.Rect(0, y, srcW, y+cropH)
}

// Generate returns the preview for src, always carrying alpha. It returns
// false when src has no pixels.
func (g *Generator) Generate(src codec.Raster) (codec.Raster, bool) {
	if src.Empty() || src.Validate() != nil {
		return codec.Raster{}, false
	}

	rect := CropRect(src.Width, src.Height, g.Width, g.Height)
	window := codec.FromImage(codec.ToImage(src).SubImage(rect))
	scaled := resize.Resize(uint(g.Width), uint(g.Height), codec.ToImage(window), g.Interp)

	out := codec.FromImage(scaled)
	out.HasAlpha = true
	return out, true
}
