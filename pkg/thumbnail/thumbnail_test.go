package thumbnail

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/stagepack/pkg/codec"
)

func gradient(w, h int) codec.Raster {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = byte(x), byte(y), 0x40, 0xFF
		}
	}
	return codec.Raster{Width: w, Height: h, Pix: pix}
}

func TestCropRect(t *testing.T) {
	testCases := []struct {
		name       string
		srcW, srcH int
		want       image.Rectangle
	}{
		{"same aspect", 320, 180, image.Rect(0, 0, 320, 180)},
		{"wider crops sides", 400, 180, image.Rect(40, 0, 360, 180)},
		{"taller keeps top", 320, 280, image.Rect(0, 10, 320, 190)},
		{"4:3 source", 640, 480, image.Rect(0, 12, 640, 372)},
		{"tiny", 1, 1, image.Rect(0, 0, 1, 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CropRect(tc.srcW, tc.srcH, DefaultWidth, DefaultHeight)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.In(image.Rect(0, 0, tc.srcW, tc.srcH)))
		})
	}
}

func TestGenerateSize(t *testing.T) {
	g := New()
	for _, size := range [][2]int{{1920, 1080}, {640, 480}, {300, 1000}} {
		out, ok := g.Generate(gradient(size[0], size[1]))
		require.True(t, ok)
		assert.Equal(t, DefaultWidth, out.Width)
		assert.Equal(t, DefaultHeight, out.Height)
		assert.True(t, out.HasAlpha)
		assert.NoError(t, out.Validate())
	}
}

func TestGenerateDeterministic(t *testing.T) {
	src := gradient(500, 400)
	a, ok := New().Generate(src)
	require.True(t, ok)
	b, ok := New().Generate(src)
	require.True(t, ok)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestGenerateDoesNotModifySource(t *testing.T) {
	src := gradient(320, 240)
	before := src.Clone()
	_, ok := New().Generate(src)
	require.True(t, ok)
	assert.Equal(t, before.Pix, src.Pix)
}

func TestGenerateEmpty(t *testing.T) {
	_, ok := New().Generate(codec.Raster{Width: 0, Height: 10})
	assert.False(t, ok)
}
