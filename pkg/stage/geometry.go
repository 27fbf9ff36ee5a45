package stage

import "github.com/provide-io/stagepack/pkg/codec"

const (
	// Distance from the bottom of the viewport to the ground line when the
	// target has a fixed resolution.
	FloorMarginViewport = 75
	// Distance from the bottom of the image to the ground line for custom
	// targets, where the full image is exported.
	FloorMarginImage = 60
	// Inset of the recommended player area from each screen edge.
	PlayerMargin = 15
	// Default distance of each player from the center.
	PlayerSpacing = 70
)

// DerivedGeometry holds the default playable and camera parameters for an
// image/resolution pair.
type DerivedGeometry struct {
	Screen Size
	Fixed  bool

	GroundY int

	PanX       int
	PanY       int
	BoundLeft  int
	BoundRight int
	BoundHigh  int
	BoundLow   int

	PlayerLeft  int
	PlayerRight int
	P1StartX    int
	P2StartX    int

	// Placement of a centered, bottom-anchored background
	BGStart Point
}

// Derive computes geometry defaults. It is a pure function of its inputs.
func Derive(img Size, res Resolution, custom *Size) DerivedGeometry {
	screen := res.Screen(img, custom)
	g := DerivedGeometry{
		Screen: screen,
		Fixed:  res.Fixed(),
	}

	if g.Fixed {
		g.GroundY = screen.Height - FloorMarginViewport
	} else {
		g.GroundY = img.Height - FloorMarginImage
	}

	g.PanX = max(0, (img.Width-screen.Width)/2)
	g.PanY = max(0, img.Height-screen.Height)
	g.BoundLeft = -g.PanX
	g.BoundRight = g.PanX
	g.BoundHigh = -g.PanY
	g.BoundLow = 0

	g.PlayerLeft = -(screen.Width / 2) + PlayerMargin
	g.PlayerRight = screen.Width/2 - PlayerMargin

	spacing := min(PlayerSpacing, screen.Width/4)
	g.P1StartX = -spacing
	g.P2StartX = spacing

	g.BGStart = Point{
		X: -img.Width / 2,
		Y: -(img.Height - screen.Height),
	}
	return g
}

// Derived returns the geometry defaults for the spec's first image, or
// false when the spec has no layers.
func (s *StageSpec) Derived() (DerivedGeometry, bool) {
	img, ok := s.ImageSize()
	if !ok {
		return DerivedGeometry{}, false
	}
	return Derive(img, s.Resolution, s.CustomLocalCoord), true
}

// Field names an editable value that has a derived default.
type Field uint16

const (
	FieldGroundY Field = 1 << iota
	FieldBoundLeft
	FieldBoundRight
	FieldBoundHigh
	FieldBoundLow
	FieldP1StartX
	FieldP2StartX
)

// FieldSet is a set of Fields.
type FieldSet uint16

func (s FieldSet) Has(f Field) bool { return s&FieldSet(f) != 0 }

func (s *FieldSet) Add(f Field) { *s |= FieldSet(f) }

// ApplyDefaults writes derived values into every editable field that has
// not been overridden. It runs only on image import, resolution change and
// explicit reset.
func (s *StageSpec) ApplyDefaults() {
	g, ok := s.Derived()
	if !ok {
		return
	}
	set := func(f Field, dst *int, v int) {
		if !s.Overrides.Has(f) {
			*dst = v
		}
	}
	set(FieldGroundY, &s.GroundY, g.GroundY)
	set(FieldBoundLeft, &s.Camera.BoundLeft, g.BoundLeft)
	set(FieldBoundRight, &s.Camera.BoundRight, g.BoundRight)
	set(FieldBoundHigh, &s.Camera.BoundHigh, g.BoundHigh)
	set(FieldBoundLow, &s.Camera.BoundLow, g.BoundLow)
	set(FieldP1StartX, &s.Players.P1StartX, g.P1StartX)
	set(FieldP2StartX, &s.Players.P2StartX, g.P2StartX)
}

// SetResolution changes the target resolution and re-derives defaults.
func (s *StageSpec) SetResolution(r Resolution) {
	s.Resolution = r
	s.ApplyDefaults()
}

// SetLayerImage replaces a layer's image. Replacing the first layer's
// image re-derives defaults.
func (s *StageSpec) SetLayerImage(i int, img codec.Raster) {
	s.Layers[i].Image = img
	if i == 0 {
		s.ApplyDefaults()
	}
}

// AddLayer appends a layer; the first layer added derives defaults.
func (s *StageSpec) AddLayer(l BackgroundLayer) {
	s.Layers = append(s.Layers, l)
	if len(s.Layers) == 1 {
		s.ApplyDefaults()
	}
}

// SetGroundY sets the ground line by hand.
func (s *StageSpec) SetGroundY(y int) {
	s.GroundY = y
	s.Overrides.Add(FieldGroundY)
}

// SetCameraBounds sets the camera bounds by hand.
func (s *StageSpec) SetCameraBounds(left, right, high, low int) {
	s.Camera.BoundLeft, s.Camera.BoundRight = left, right
	s.Camera.BoundHigh, s.Camera.BoundLow = high, low
	s.Overrides.Add(FieldBoundLeft)
	s.Overrides.Add(FieldBoundRight)
	s.Overrides.Add(FieldBoundHigh)
	s.Overrides.Add(FieldBoundLow)
}

// SetPlayerStarts sets both player start offsets by hand.
func (s *StageSpec) SetPlayerStarts(p1, p2 int) {
	s.Players.P1StartX, s.Players.P2StartX = p1, p2
	s.Overrides.Add(FieldP1StartX)
	s.Overrides.Add(FieldP2StartX)
}

// ResetOverrides forgets manual edits and re-derives every field.
func (s *StageSpec) ResetOverrides() {
	s.Overrides = 0
	s.ApplyDefaults()
}
