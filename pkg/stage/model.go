// Package stage holds the stage document model together with the pure
// functions the export pipeline runs on it: geometry derivation, name
// sanitizing and validation.
package stage

import (
	"time"

	"github.com/provide-io/stagepack/pkg/codec"
)

// Defaults for a new stage
const (
	DefaultTension        = 50
	DefaultVerticalFollow = 0.2
	DefaultFloorTension   = 0
	DefaultShadowStrength = 128
	DefaultShadowYScale   = 0.4
	MaxShadowIntensity    = 256
)

// Point is an integer offset in local coordinates.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Vec is a per-axis factor.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ZoomRange bounds camera zoom for engines that support it.
type ZoomRange struct {
	In  float64 `yaml:"in"`
	Out float64 `yaml:"out"`
}

type Camera struct {
	BoundLeft      int
	BoundRight     int
	BoundHigh      int
	BoundLow       int
	Tension        int
	VerticalFollow float64
	FloorTension   int
	Zoom           *ZoomRange
}

// Players holds the start offsets. Y and facing are fixed by the engine
// convention and are not part of the model.
type Players struct {
	P1StartX int
	P2StartX int
}

type Shadow struct {
	Enabled   bool
	Intensity int
	YScale    float64
}

// BackgroundLayer is one background image and how it is placed. The layer
// owns its raster exclusively.
type BackgroundLayer struct {
	ID      string
	Name    string
	Image   codec.Raster
	Offset  Point
	Delta   Vec
	Tile    TileMode
	LayerNo int // 0 draws behind characters
	Visible bool
}

// NewLayer returns a visible layer without parallax.
func NewLayer(id, name string, img codec.Raster) BackgroundLayer {
	return BackgroundLayer{
		ID:      id,
		Name:    name,
		Image:   img,
		Delta:   Vec{X: 1, Y: 1},
		Visible: true,
	}
}

// StageSpec is the full description of one stage.
type StageSpec struct {
	Name             string
	DisplayName      string
	Author           string
	VersionDate      time.Time
	Resolution       Resolution
	CustomLocalCoord *Size
	Engine           EngineVariant
	Camera           Camera
	Players          Players
	Shadow           Shadow
	GroundY          int
	Layers           []BackgroundLayer

	// Overrides records fields edited by hand; ApplyDefaults leaves them.
	Overrides FieldSet
}

// NewStageSpec returns a spec with engine defaults and no layers.
func NewStageSpec(name string) *StageSpec {
	return &StageSpec{
		Name:       name,
		Resolution: Res1280x720,
		Engine:     EngineMugen11,
		Camera: Camera{
			Tension:        DefaultTension,
			VerticalFollow: DefaultVerticalFollow,
			FloorTension:   DefaultFloorTension,
		},
		Shadow: Shadow{
			Enabled:   true,
			Intensity: DefaultShadowStrength,
			YScale:    DefaultShadowYScale,
		},
	}
}

// Snapshot returns a deep copy that shares no mutable state with s,
// pixel buffers included.
func (s *StageSpec) Snapshot() StageSpec {
	c := *s
	if s.CustomLocalCoord != nil {
		lc := *s.CustomLocalCoord
		c.CustomLocalCoord = &lc
	}
	if s.Camera.Zoom != nil {
		z := *s.Camera.Zoom
		c.Camera.Zoom = &z
	}
	if s.Layers != nil {
		c.Layers = make([]BackgroundLayer, len(s.Layers))
		for i, l := range s.Layers {
			l.Image = l.Image.Clone()
			c.Layers[i] = l
		}
	}
	return c
}

// ImageSize returns the size of the first layer's image.
func (s *StageSpec) ImageSize() (Size, bool) {
	if len(s.Layers) == 0 {
		return Size{}, false
	}
	img := s.Layers[0].Image
	return Size{Width: img.Width, Height: img.Height}, true
}

// Screen returns the viewport size for the current resolution.
func (s *StageSpec) Screen() Size {
	img, _ := s.ImageSize()
	return s.Resolution.Screen(img, s.CustomLocalCoord)
}

// VisibleLayers returns the visible layers in stacking order of the list.
func (s *StageSpec) VisibleLayers() []BackgroundLayer {
	var out []BackgroundLayer
	for _, l := range s.Layers {
		if l.Visible {
			out = append(out, l)
		}
	}
	return out
}

// Title returns the display name, falling back to the name.
func (s *StageSpec) Title() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}
