package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/stagepack/pkg/codec"
)

func raster(w, h int) codec.Raster {
	return codec.Raster{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

func TestDeriveHDScenario(t *testing.T) {
	g := Derive(Size{1920, 1080}, Res1280x720, nil)

	assert.Equal(t, 320, g.PanX)
	assert.Equal(t, -320, g.BoundLeft)
	assert.Equal(t, 320, g.BoundRight)
	assert.Equal(t, 360, g.PanY)
	assert.Equal(t, -360, g.BoundHigh)
	assert.Equal(t, 0, g.BoundLow)
	assert.Equal(t, 720-FloorMarginViewport, g.GroundY)
	assert.Equal(t, Point{X: -960, Y: -360}, g.BGStart)
	assert.Equal(t, -640+PlayerMargin, g.PlayerLeft)
	assert.Equal(t, 640-PlayerMargin, g.PlayerRight)
	assert.Equal(t, -PlayerSpacing, g.P1StartX)
	assert.Equal(t, PlayerSpacing, g.P2StartX)
	assert.True(t, g.Fixed)
}

func TestDeriveIsPure(t *testing.T) {
	a := Derive(Size{2000, 900}, Res640x480, nil)
	b := Derive(Size{2000, 900}, Res640x480, nil)
	assert.Equal(t, a, b)
}

func TestDeriveBoundsSigns(t *testing.T) {
	resolutions := []Resolution{Res320x240, Res640x480, Res1280x720, Res1920x1080, ResCustom}
	for _, res := range resolutions {
		for _, w := range []int{320, 641, 1280, 1921, 4096} {
			img := Size{w, 720}
			screen := res.Screen(img, nil)
			if w < screen.Width {
				continue
			}
			g := Derive(img, res, nil)
			assert.LessOrEqual(t, g.BoundLeft, 0, "%s %d", res, w)
			assert.GreaterOrEqual(t, g.BoundRight, 0, "%s %d", res, w)
			assert.Equal(t, -g.BoundLeft, g.BoundRight)
		}
	}
}

func TestDeriveSmallImageClampsPan(t *testing.T) {
	g := Derive(Size{800, 400}, Res1280x720, nil)
	assert.Equal(t, 0, g.PanX)
	assert.Equal(t, 0, g.PanY)
	assert.Equal(t, Point{X: -400, Y: 320}, g.BGStart)
}

func TestDeriveCustom(t *testing.T) {
	g := Derive(Size{1000, 500}, ResCustom, nil)
	assert.False(t, g.Fixed)
	assert.Equal(t, Size{1000, 500}, g.Screen)
	assert.Equal(t, 500-FloorMarginImage, g.GroundY)
	assert.Equal(t, Point{X: -500, Y: 0}, g.BGStart)

	g = Derive(Size{1000, 500}, ResCustom, &Size{800, 450})
	assert.Equal(t, 100, g.PanX)
	assert.Equal(t, 50, g.PanY)
}

func TestPlayerSpacingClamp(t *testing.T) {
	g := Derive(Size{320, 240}, Res320x240, nil)
	assert.Equal(t, -70, g.P1StartX)

	g = Derive(Size{200, 240}, ResCustom, nil)
	assert.Equal(t, -50, g.P1StartX)
	assert.LessOrEqual(t, 2*g.P2StartX, g.Screen.Width/2)
}

func TestOverridesSurviveResolutionChange(t *testing.T) {
	s := NewStageSpec("arena")
	s.AddLayer(NewLayer("bg", "Background", raster(1920, 1080)))
	require.Equal(t, -320, s.Camera.BoundLeft)

	s.SetGroundY(600)
	s.SetResolution(Res640x480)

	assert.Equal(t, 600, s.GroundY, "manual ground line is kept")
	assert.Equal(t, -640, s.Camera.BoundLeft, "defaulted bounds follow the resolution")
	assert.Equal(t, -600, s.Camera.BoundHigh)

	s.ResetOverrides()
	assert.Equal(t, 480-FloorMarginViewport, s.GroundY)
}

func TestUnrelatedEditsDoNotRederive(t *testing.T) {
	s := NewStageSpec("arena")
	s.AddLayer(NewLayer("bg", "Background", raster(1920, 1080)))
	s.Camera.BoundLeft = -10

	s.Shadow.Intensity = 50
	s.AddLayer(NewLayer("fg", "Foreground", raster(400, 300)))
	s.SetLayerImage(1, raster(500, 300))

	assert.Equal(t, -10, s.Camera.BoundLeft)

	s.SetLayerImage(0, raster(1280, 1080))
	assert.Equal(t, 0, s.Camera.BoundLeft)
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewStageSpec("arena")
	s.AddLayer(NewLayer("bg", "Background", raster(320, 240)))
	s.Camera.Zoom = &ZoomRange{In: 1, Out: 0.8}

	snap := s.Snapshot()
	s.Layers[0].Image.Pix[0] = 0xAB
	s.Layers[0].Name = "changed"
	s.Camera.Zoom.Out = 0.5
	s.Layers = append(s.Layers, NewLayer("x", "x", raster(1, 1)))

	assert.Equal(t, byte(0), snap.Layers[0].Image.Pix[0])
	assert.Equal(t, "Background", snap.Layers[0].Name)
	assert.Equal(t, 0.8, snap.Camera.Zoom.Out)
	assert.Len(t, snap.Layers, 1)
}

func TestParseNames(t *testing.T) {
	r, err := ParseResolution("1920x1080")
	require.NoError(t, err)
	assert.Equal(t, Res1920x1080, r)

	e, err := ParseEngine("IKEMEN")
	require.NoError(t, err)
	assert.Equal(t, EngineIkemen, e)
	assert.True(t, e.Capabilities().SupportsZoom)
	assert.False(t, EngineMugen10.Capabilities().SupportsZoom)

	var tile TileMode
	require.NoError(t, tile.UnmarshalText([]byte("both")))
	x, y := tile.Axes()
	assert.Equal(t, [2]int{1, 1}, [2]int{x, y})

	_, err = ParseResolution("800x600")
	assert.Error(t, err)
}
