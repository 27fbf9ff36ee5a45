// Package manifest loads stage documents: YAML files naming the background
// images and any camera, player or shadow values that differ from the
// derived defaults.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/provide-io/stagepack/pkg/codec"
	"github.com/provide-io/stagepack/pkg/stage"
)

var (
	ErrInvalidDocument = errors.New("manifest: invalid document")
	ErrImage           = errors.New("manifest: cannot load image")
)

const dateLayout = "2006-01-02"

// Document is the on-disk form of a stage. Pointer fields are optional;
// when present they override the derived default.
type Document struct {
	Name        string               `yaml:"name"`
	DisplayName string               `yaml:"displayname,omitempty"`
	Author      string               `yaml:"author,omitempty"`
	VersionDate string               `yaml:"versiondate,omitempty"`
	Resolution  *stage.Resolution    `yaml:"resolution,omitempty"`
	LocalCoord  *stage.Size          `yaml:"localcoord,omitempty"`
	Engine      *stage.EngineVariant `yaml:"engine,omitempty"`
	GroundY     *int                 `yaml:"ground_y,omitempty"`
	Camera      CameraSpec           `yaml:"camera,omitempty"`
	Players     PlayersSpec          `yaml:"players,omitempty"`
	Shadow      ShadowSpec           `yaml:"shadow,omitempty"`
	Layers      []LayerSpec          `yaml:"layers"`
}

type CameraSpec struct {
	BoundLeft      *int             `yaml:"bound_left,omitempty"`
	BoundRight     *int             `yaml:"bound_right,omitempty"`
	BoundHigh      *int             `yaml:"bound_high,omitempty"`
	BoundLow       *int             `yaml:"bound_low,omitempty"`
	Tension        *int             `yaml:"tension,omitempty"`
	VerticalFollow *float64         `yaml:"vertical_follow,omitempty"`
	FloorTension   *int             `yaml:"floor_tension,omitempty"`
	Zoom           *stage.ZoomRange `yaml:"zoom,omitempty"`
}

type PlayersSpec struct {
	P1StartX *int `yaml:"p1_start_x,omitempty"`
	P2StartX *int `yaml:"p2_start_x,omitempty"`
}

type ShadowSpec struct {
	Enabled   *bool    `yaml:"enabled,omitempty"`
	Intensity *int     `yaml:"intensity,omitempty"`
	YScale    *float64 `yaml:"yscale,omitempty"`
}

// LayerSpec is one background layer. Image is relative to the document.
type LayerSpec struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name,omitempty"`
	Image   string         `yaml:"image"`
	Offset  stage.Point    `yaml:"offset,omitempty"`
	Delta   *stage.Vec     `yaml:"delta,omitempty"`
	Tile    stage.TileMode `yaml:"tile,omitempty"`
	LayerNo int            `yaml:"layerno,omitempty"`
	Visible *bool          `yaml:"visible,omitempty"`
}

// Decode parses a document, rejecting unknown keys.
func Decode(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Load reads the document at path and builds its stage with c.
func Load(path string, c codec.Codec) (*stage.StageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: load %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: load %s: %w", path, err)
	}
	return doc.Build(filepath.Dir(path), c)
}

// ImagePaths returns the layer image paths resolved against baseDir.
func (d *Document) ImagePaths(baseDir string) []string {
	paths := make([]string, len(d.Layers))
	for i, l := range d.Layers {
		paths[i] = resolve(baseDir, l.Image)
	}
	return paths
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, filepath.FromSlash(p))
}

// Build decodes the layer images and assembles a spec. Derived defaults
// are applied first; values the document sets are then written and marked
// as overrides so later re-derivation keeps them.
func (d *Document) Build(baseDir string, c codec.Codec) (*stage.StageSpec, error) {
	if c == nil {
		c = codec.NewPNG()
	}

	s := stage.NewStageSpec(d.Name)
	s.DisplayName = d.DisplayName
	s.Author = d.Author
	if d.VersionDate != "" {
		t, err := time.Parse(dateLayout, d.VersionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: versiondate %q: want YYYY-MM-DD", ErrInvalidDocument, d.VersionDate)
		}
		s.VersionDate = t
	}
	if d.Resolution != nil {
		s.Resolution = *d.Resolution
	}
	if d.LocalCoord != nil {
		lc := *d.LocalCoord
		s.CustomLocalCoord = &lc
	}
	if d.Engine != nil {
		s.Engine = *d.Engine
	}

	for i, ls := range d.Layers {
		if ls.Image == "" {
			return nil, fmt.Errorf("%w: layer %d has no image", ErrInvalidDocument, i)
		}
		path := resolve(baseDir, ls.Image)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrImage, path, err)
		}
		img, err := c.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrImage, path, err)
		}

		id := ls.ID
		if id == "" {
			id = fmt.Sprintf("layer%d", i)
		}
		l := stage.NewLayer(id, ls.Name, img)
		l.Offset = ls.Offset
		if ls.Delta != nil {
			l.Delta = *ls.Delta
		}
		l.Tile = ls.Tile
		l.LayerNo = ls.LayerNo
		if ls.Visible != nil {
			l.Visible = *ls.Visible
		}
		s.AddLayer(l)
	}

	d.applyOverrides(s)
	return s, nil
}

func (d *Document) applyOverrides(s *stage.StageSpec) {
	set := func(f stage.Field, dst *int, v *int) {
		if v != nil {
			*dst = *v
			s.Overrides.Add(f)
		}
	}
	set(stage.FieldGroundY, &s.GroundY, d.GroundY)
	set(stage.FieldBoundLeft, &s.Camera.BoundLeft, d.Camera.BoundLeft)
	set(stage.FieldBoundRight, &s.Camera.BoundRight, d.Camera.BoundRight)
	set(stage.FieldBoundHigh, &s.Camera.BoundHigh, d.Camera.BoundHigh)
	set(stage.FieldBoundLow, &s.Camera.BoundLow, d.Camera.BoundLow)
	set(stage.FieldP1StartX, &s.Players.P1StartX, d.Players.P1StartX)
	set(stage.FieldP2StartX, &s.Players.P2StartX, d.Players.P2StartX)

	if v := d.Camera.Tension; v != nil {
		s.Camera.Tension = *v
	}
	if v := d.Camera.VerticalFollow; v != nil {
		s.Camera.VerticalFollow = *v
	}
	if v := d.Camera.FloorTension; v != nil {
		s.Camera.FloorTension = *v
	}
	if v := d.Camera.Zoom; v != nil {
		z := *v
		s.Camera.Zoom = &z
	}

	if v := d.Shadow.Enabled; v != nil {
		s.Shadow.Enabled = *v
	}
	if v := d.Shadow.Intensity; v != nil {
		s.Shadow.Intensity = *v
	}
	if v := d.Shadow.YScale; v != nil {
		s.Shadow.YScale = *v
	}
}
