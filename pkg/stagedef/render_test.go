package stagedef

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/provide-io/stagepack/pkg/codec"
	"github.com/provide-io/stagepack/pkg/stage"
)

func testRaster(w, h int) codec.Raster {
	return codec.Raster{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

func testSpec(t *testing.T, engine stage.EngineVariant) (*stage.StageSpec, stage.DerivedGeometry) {
	t.Helper()
	s := stage.NewStageSpec("Temple")
	s.DisplayName = "Old Temple"
	s.Author = "tester"
	s.Engine = engine
	s.VersionDate = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	s.AddLayer(stage.NewLayer("bg", "Sky", testRaster(1600, 900)))
	g, ok := s.Derived()
	require.True(t, ok)
	return s, g
}

func parse(t *testing.T, text string) *ini.File {
	t.Helper()
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, []byte(text))
	require.NoError(t, err)
	return f
}

func value(f *ini.File, section, key string) string {
	return strings.Trim(f.Section(section).Key(key).String(), `"`)
}

func TestRenderSectionOrder(t *testing.T) {
	s, g := testSpec(t, stage.EngineMugen11)
	s.AddLayer(stage.NewLayer("fg", "Pillars", testRaster(1600, 900)))

	f := parse(t, Render(s, g, Options{SpriteFile: "Temple.sff"}))

	want := []string{
		ini.DefaultSection,
		"Info", "Camera", "PlayerInfo", "Bound", "StageInfo", "Shadow", "BGdef",
		"BG Sky", "BG Pillars",
		"Begin Action 9000",
	}
	assert.Equal(t, want, f.SectionStrings())
}

func TestRenderValues(t *testing.T) {
	s, g := testSpec(t, stage.EngineMugen11)

	f := parse(t, Render(s, g, Options{SpriteFile: "Temple.sff"}))

	assert.Equal(t, "Old Temple", value(f, "Info", "name"))
	assert.Equal(t, "03,09,2024", value(f, "Info", "versiondate"))
	assert.Equal(t, "1.1", value(f, "Info", "mugenversion"))
	assert.Equal(t, "tester", value(f, "Info", "author"))
	assert.False(t, f.Section("Info").HasKey("ikemenversion"))

	assert.Equal(t, "-160", value(f, "Camera", "boundleft"))
	assert.Equal(t, "160", value(f, "Camera", "boundright"))
	assert.Equal(t, "-180", value(f, "Camera", "boundhigh"))
	assert.Equal(t, "0", value(f, "Camera", "boundlow"))
	assert.Equal(t, "0.2", value(f, "Camera", "verticalfollow"))

	assert.Equal(t, "-70", value(f, "PlayerInfo", "p1startx"))
	assert.Equal(t, "70", value(f, "PlayerInfo", "p2startx"))
	assert.Equal(t, "-1", value(f, "PlayerInfo", "p2facing"))

	assert.Equal(t, "15", value(f, "Bound", "screenleft"))
	assert.Equal(t, "645", value(f, "StageInfo", "zoffset"))
	assert.Equal(t, "1280, 720", value(f, "StageInfo", "localcoord"))

	assert.Equal(t, "128", value(f, "Shadow", "intensity"))
	assert.Equal(t, "Temple.sff", value(f, "BGdef", "spr"))

	bg := "BG Sky"
	assert.Equal(t, "0, 0", value(f, bg, "spriteno"))
	assert.Equal(t, "-800, -180", value(f, bg, "start"))
	assert.Equal(t, "1, 1", value(f, bg, "delta"))
	assert.Equal(t, "0, 0", value(f, bg, "tile"))

	assert.True(t, f.Section("Begin Action 9000").HasKey("9000,0, 0,0, -1"))
}

func TestRenderZoomByEngine(t *testing.T) {
	testCases := []struct {
		engine  stage.EngineVariant
		zoom    bool
		ikemen  bool
		version string
	}{
		{stage.EngineMugen10, false, false, "1.0"},
		{stage.EngineMugen11, true, false, "1.1"},
		{stage.EngineIkemen, true, true, "1.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.engine.String(), func(t *testing.T) {
			s, g := testSpec(t, tc.engine)
			s.Camera.Zoom = &stage.ZoomRange{In: 1.5, Out: 0.75}

			f := parse(t, Render(s, g, Options{SpriteFile: "Temple.sff"}))

			cam := f.Section("Camera")
			assert.Equal(t, tc.zoom, cam.HasKey("zoomout"))
			assert.Equal(t, tc.zoom, cam.HasKey("zoomin"))
			if tc.zoom {
				assert.Equal(t, "0.75", value(f, "Camera", "zoomout"))
				assert.Equal(t, "1.5", value(f, "Camera", "zoomin"))
			}
			assert.Equal(t, tc.ikemen, f.Section("Info").HasKey("ikemenversion"))
			assert.Equal(t, tc.version, value(f, "Info", "mugenversion"))
		})
	}
}

func TestRenderNoZoomWhenUnset(t *testing.T) {
	s, g := testSpec(t, stage.EngineIkemen)
	f := parse(t, Render(s, g, Options{}))
	assert.False(t, f.Section("Camera").HasKey("zoomout"))
}

func TestRenderShadowDisabled(t *testing.T) {
	s, g := testSpec(t, stage.EngineMugen11)
	s.Shadow.Enabled = false
	f := parse(t, Render(s, g, Options{}))
	assert.Equal(t, "0", value(f, "Shadow", "intensity"))
}

func TestRenderSkipsHiddenLayers(t *testing.T) {
	s, g := testSpec(t, stage.EngineMugen11)
	hidden := stage.NewLayer("h", "Hidden", testRaster(1600, 900))
	hidden.Visible = false
	s.AddLayer(hidden)
	fg := stage.NewLayer("fg", "Front", testRaster(800, 400))
	fg.Offset = stage.Point{X: 10, Y: -5}
	fg.Delta = stage.Vec{X: 1.25, Y: 1}
	fg.Tile = stage.TileHorizontal
	fg.LayerNo = 1
	s.AddLayer(fg)

	f := parse(t, Render(s, g, Options{}))

	assert.False(t, f.HasSection("BG Hidden"))
	assert.Equal(t, "0, 1", value(f, "BG Front", "spriteno"))
	assert.Equal(t, "-390, 315", value(f, "BG Front", "start"))
	assert.Equal(t, "1.25, 1", value(f, "BG Front", "delta"))
	assert.Equal(t, "1, 0", value(f, "BG Front", "tile"))
	assert.Equal(t, "1", value(f, "BG Front", "layerno"))
}

func TestRenderDuplicateLayerNames(t *testing.T) {
	s, g := testSpec(t, stage.EngineMugen11)
	s.AddLayer(stage.NewLayer("b", "Sky", testRaster(1600, 900)))
	s.AddLayer(stage.NewLayer("c", "", testRaster(1600, 900)))

	f := parse(t, Render(s, g, Options{}))
	assert.True(t, f.HasSection("BG Sky"))
	assert.True(t, f.HasSection("BG Sky 2"))
	assert.True(t, f.HasSection("BG c"))
}

func TestRenderQuotesInNames(t *testing.T) {
	s, g := testSpec(t, stage.EngineMugen11)
	s.DisplayName = `The "Best" Stage`
	out := Render(s, g, Options{})
	assert.Contains(t, out, `name = "The 'Best' Stage"`)
}

func TestRenderDeterministic(t *testing.T) {
	s, g := testSpec(t, stage.EngineIkemen)
	assert.Equal(t, Render(s, g, Options{SpriteFile: "a.sff"}), Render(s, g, Options{SpriteFile: "a.sff"}))
}
