package stage

import (
	"fmt"
	"strings"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Resolution is the engine-local coordinate space a stage targets.
type Resolution int

const (
	Res1280x720 Resolution = iota
	Res320x240
	Res640x480
	Res1920x1080
	// ResCustom has no fixed output size; the full image is the viewport
	// unless StageSpec.CustomLocalCoord says otherwise.
	ResCustom
)

var resolutionNames = map[Resolution]string{
	Res320x240:   "320x240",
	Res640x480:   "640x480",
	Res1280x720:  "1280x720",
	Res1920x1080: "1920x1080",
	ResCustom:    "custom",
}

var resolutionSizes = map[Resolution]Size{
	Res320x240:   {320, 240},
	Res640x480:   {640, 480},
	Res1280x720:  {1280, 720},
	Res1920x1080: {1920, 1080},
}

func (r Resolution) String() string {
	if name, ok := resolutionNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// Fixed reports whether the resolution has a fixed screen size.
func (r Resolution) Fixed() bool {
	_, ok := resolutionSizes[r]
	return ok
}

// Screen returns the viewport for an image of size img. Custom targets use
// custom when set, otherwise the image itself.
func (r Resolution) Screen(img Size, custom *Size) Size {
	if s, ok := resolutionSizes[r]; ok {
		return s
	}
	if custom != nil && custom.Width > 0 && custom.Height > 0 {
		return *custom
	}
	return img
}

// ParseResolution accepts the names produced by String.
func ParseResolution(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range resolutionNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown resolution %q", s)
}

func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Resolution) UnmarshalText(text []byte) error {
	v, err := ParseResolution(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// EngineVariant is the engine the exported stage targets.
type EngineVariant int

const (
	EngineMugen11 EngineVariant = iota
	EngineMugen10
	EngineIkemen
)

// Capabilities lists what the stage definition may contain for a variant.
type Capabilities struct {
	SupportsZoom bool
	// VersionMarkerKey/VersionMarker form an [Info] key only the variant
	// defines; empty when the variant has none.
	VersionMarkerKey string
	VersionMarker    string
	MugenVersion     string
}

var engineNames = map[EngineVariant]string{
	EngineMugen10: "mugen1.0",
	EngineMugen11: "mugen1.1",
	EngineIkemen:  "ikemen",
}

var engineCapabilities = map[EngineVariant]Capabilities{
	EngineMugen10: {SupportsZoom: false, MugenVersion: "1.0"},
	EngineMugen11: {SupportsZoom: true, MugenVersion: "1.1"},
	EngineIkemen: {
		SupportsZoom:     true,
		VersionMarkerKey: "ikemenversion",
		VersionMarker:    "0.99",
		MugenVersion:     "1.1",
	},
}

func (e EngineVariant) String() string {
	if name, ok := engineNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EngineVariant(%d)", int(e))
}

// Capabilities returns the capability row for e.
func (e EngineVariant) Capabilities() Capabilities {
	return engineCapabilities[e]
}

// ParseEngine accepts the names produced by String.
func ParseEngine(s string) (EngineVariant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for e, name := range engineNames {
		if name == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown engine %q", s)
}

func (e EngineVariant) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EngineVariant) UnmarshalText(text []byte) error {
	v, err := ParseEngine(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// TileMode selects on which axes a background layer repeats.
type TileMode int

const (
	TileNone TileMode = iota
	TileHorizontal
	TileVertical
	TileBoth
)

var tileNames = map[TileMode]string{
	TileNone:       "none",
	TileHorizontal: "horizontal",
	TileVertical:   "vertical",
	TileBoth:       "both",
}

func (t TileMode) String() string {
	if name, ok := tileNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TileMode(%d)", int(t))
}

// Axes returns the x and y tile flags.
func (t TileMode) Axes() (x, y int) {
	switch t {
	case TileHorizontal:
		return 1, 0
	case TileVertical:
		return 0, 1
	case TileBoth:
		return 1, 1
	default:
		return 0, 0
	}
}

func (t TileMode) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TileMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for m, name := range tileNames {
		if name == s {
			*t = m
			return nil
		}
	}
	return fmt.Errorf("unknown tile mode %q", s)
}
