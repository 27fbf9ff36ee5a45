// Package stagedef renders the engine's text stage definition.
package stagedef

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/provide-io/stagepack/pkg/stage"
)

// Sprite numbering shared with the container
const (
	BackgroundGroup = 0
	ThumbnailGroup  = 9000
	ThumbnailItem   = 0
	ThumbnailAction = 9000
)

// Fixed values the model does not expose
const (
	PlayerLeftBound  = -1000
	PlayerRightBound = 1000
	versionDateFmt   = "01,02,2006"
)

// Options carries values that depend on packaging.
type Options struct {
	SpriteFile string // file name of the container, relative to the .def
}

// LayerSprite returns the sprite number of the i-th visible layer.
func LayerSprite(i int) (group, item uint16) {
	return BackgroundGroup, uint16(i)
}

type writer struct {
	b        strings.Builder
	sections int
}

func (w *writer) section(name string) {
	if w.sections > 0 {
		w.b.WriteByte('\n')
	}
	w.sections++
	fmt.Fprintf(&w.b, "[%s]\n", name)
}

func (w *writer) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) str(key, value string) {
	fmt.Fprintf(&w.b, "%s = \"%s\"\n", key, cleanValue(value))
}

func (w *writer) int(key string, v int) {
	w.raw(key, strconv.Itoa(v))
}

func (w *writer) float(key string, v float64) {
	w.raw(key, formatFloat(v))
}

func (w *writer) pair(key string, a, b string) {
	w.raw(key, a+", "+b)
}

func (w *writer) raw(key, value string) {
	fmt.Fprintf(&w.b, "%s = %s\n", key, value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cleanValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"':
			return '\''
		case '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

// Render produces the definition text for s using geometry g. It performs
// no I/O and returns identical text for identical input.
func Render(s *stage.StageSpec, g stage.DerivedGeometry, opts Options) string {
	caps := s.Engine.Capabilities()
	w := &writer{}

	w.line("; " + cleanValue(s.Title()))
	w.line("; Generated by stagepack")
	w.line("")

	w.section("Info")
	w.str("name", s.Title())
	w.str("displayname", s.Title())
	w.raw("versiondate", s.VersionDate.Format(versionDateFmt))
	w.raw("mugenversion", caps.MugenVersion)
	if caps.VersionMarkerKey != "" {
		w.raw(caps.VersionMarkerKey, caps.VersionMarker)
	}
	w.str("author", s.Author)

	cam := s.Camera
	w.section("Camera")
	w.int("startx", 0)
	w.int("starty", 0)
	w.int("boundleft", cam.BoundLeft)
	w.int("boundright", cam.BoundRight)
	w.int("boundhigh", cam.BoundHigh)
	w.int("boundlow", cam.BoundLow)
	w.int("tension", cam.Tension)
	w.float("verticalfollow", cam.VerticalFollow)
	w.int("floortension", cam.FloorTension)
	if caps.SupportsZoom && cam.Zoom != nil {
		w.float("zoomout", cam.Zoom.Out)
		w.float("zoomin", cam.Zoom.In)
	}

	w.section("PlayerInfo")
	w.int("p1startx", s.Players.P1StartX)
	w.int("p1starty", 0)
	w.int("p1startz", 0)
	w.int("p1facing", 1)
	w.int("p2startx", s.Players.P2StartX)
	w.int("p2starty", 0)
	w.int("p2startz", 0)
	w.int("p2facing", -1)
	w.int("leftbound", PlayerLeftBound)
	w.int("rightbound", PlayerRightBound)

	w.section("Bound")
	w.int("screenleft", stage.PlayerMargin)
	w.int("screenright", stage.PlayerMargin)

	w.section("StageInfo")
	w.int("zoffset", s.GroundY)
	w.int("autoturn", 1)
	w.int("resetBG", 1)
	w.pair("localcoord", strconv.Itoa(g.Screen.Width), strconv.Itoa(g.Screen.Height))
	w.int("xscale", 1)
	w.int("yscale", 1)

	intensity := 0
	if s.Shadow.Enabled {
		intensity = s.Shadow.Intensity
	}
	w.section("Shadow")
	w.int("intensity", intensity)
	w.raw("color", "0,0,0")
	w.float("yscale", s.Shadow.YScale)

	w.section("BGdef")
	w.raw("spr", opts.SpriteFile)
	w.int("debugbg", 0)

	names := make(map[string]int)
	for i, l := range s.VisibleLayers() {
		group, item := LayerSprite(i)
		start := layerStart(l, g)
		tx, ty := l.Tile.Axes()

		w.section(sectionName(l, names))
		w.raw("type", "normal")
		w.pair("spriteno", strconv.Itoa(int(group)), strconv.Itoa(int(item)))
		w.int("layerno", l.LayerNo)
		w.pair("start", strconv.Itoa(start.X), strconv.Itoa(start.Y))
		w.pair("delta", formatFloat(l.Delta.X), formatFloat(l.Delta.Y))
		w.pair("tile", strconv.Itoa(tx), strconv.Itoa(ty))
		w.int("mask", boolInt(l.Image.HasAlpha))
	}

	w.section(fmt.Sprintf("Begin Action %d", ThumbnailAction))
	w.line(fmt.Sprintf("%d,%d, 0,0, -1", ThumbnailGroup, ThumbnailItem))

	return w.b.String()
}

// layerStart centers a layer horizontally and rests its bottom edge on the
// bottom of the screen, then applies the layer's own offset.
func layerStart(l stage.BackgroundLayer, g stage.DerivedGeometry) stage.Point {
	return stage.Point{
		X: -l.Image.Width/2 + l.Offset.X,
		Y: -(l.Image.Height - g.Screen.Height) + l.Offset.Y,
	}
}

func sectionName(l stage.BackgroundLayer, seen map[string]int) string {
	label := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '\n', '\r':
			return '_'
		}
		return r
	}, strings.TrimSpace(l.Name))
	if label == "" {
		label = l.ID
	}
	if label == "" {
		label = "Layer"
	}

	name := "BG " + label
	seen[name]++
	if n := seen[name]; n > 1 {
		name = fmt.Sprintf("%s %d", name, n)
	}
	return name
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
