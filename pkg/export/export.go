// Package export turns a stage into its published artifacts: the sprite
// container and the stage definition, written through a private staging
// directory and published in one step.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/stagepack/internal/workenv"
	"github.com/provide-io/stagepack/pkg/codec"
	"github.com/provide-io/stagepack/pkg/sff"
	"github.com/provide-io/stagepack/pkg/stage"
	"github.com/provide-io/stagepack/pkg/stagedef"
	"github.com/provide-io/stagepack/pkg/thumbnail"
)

const DefaultFileMode os.FileMode = 0o644

// Options control one export run.
type Options struct {
	OutputDir      string
	Format         Format
	AcceptWarnings bool
	FileMode       os.FileMode
}

// Result describes a published export.
type Result struct {
	Name        string // sanitized stage name shared by both files
	Path        string // published directory or archive
	Format      Format
	DefFile     string
	SFFFile     string
	SpriteCount int
	DefSize     int
	SFFSize     int
	ArchiveSize int
	Checksums   map[string]string // file name to "sha256:<hex>"
	Warnings    []stage.Issue
}

// Exporter runs exports. The zero value uses the PNG codec and discards
// logs.
type Exporter struct {
	Codec     codec.Codec
	Logger    hclog.Logger
	Thumbnail *thumbnail.Generator
	// WorkDir moves staging into a DirName directory inside it; it must
	// be on the output's volume.
	WorkDir string
}

// New returns an exporter with default components.
func New(logger hclog.Logger) *Exporter {
	return &Exporter{Codec: codec.NewPNG(), Logger: logger, Thumbnail: thumbnail.New()}
}

func (e *Exporter) logger() hclog.Logger {
	if e.Logger == nil {
		return hclog.NewNullLogger()
	}
	return e.Logger
}

func (e *Exporter) codec() codec.Codec {
	if e.Codec == nil {
		return codec.NewPNG()
	}
	return e.Codec
}

func (e *Exporter) generator() *thumbnail.Generator {
	if e.Thumbnail == nil {
		return thumbnail.New()
	}
	return e.Thumbnail
}

// artifact is one file of the export, in publish order.
type artifact struct {
	name string
	data []byte
}

// Export validates spec and publishes it. spec is copied first and never
// modified. On error nothing is left at the destination.
func (e *Exporter) Export(ctx context.Context, spec *stage.StageSpec, opts Options) (*Result, error) {
	logger := e.logger().With("stage", spec.Name)
	snap := spec.Snapshot()
	s := &snap

	result := stage.Validate(s)
	if result.HasErrors() {
		for _, issue := range result.Errors {
			logger.Error("Validation failed", "code", issue.Code, "message", issue.Message)
		}
		return nil, &Error{
			Kind:   KindValidation,
			Detail: fmt.Sprintf("%d error(s), first: %s", len(result.Errors), result.Errors[0].Message),
			Issues: result.Errors,
			Err:    ErrValidationFailed,
		}
	}
	if result.HasWarnings() && !opts.AcceptWarnings {
		return nil, &Error{
			Kind:   KindValidation,
			Detail: fmt.Sprintf("%d warning(s), first: %s", len(result.Warnings), result.Warnings[0].Message),
			Issues: result.Warnings,
			Err:    ErrWarningsNotConfirmed,
		}
	}
	for _, issue := range result.Warnings {
		logger.Warn("Exporting with warning", "code", issue.Code, "message", issue.Message)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	built := BuildTime()
	if s.VersionDate.IsZero() {
		s.VersionDate = built
	}
	geom, _ := s.Derived()
	name := stage.SanitizeName(s.Name)

	sprites, err := e.buildSprites(ctx, s)
	if err != nil {
		return nil, err
	}

	container, err := sff.NewWriter(logger.Named("sff")).Encode(sprites)
	if err != nil {
		return nil, newError(KindEncoding, "container", err, "encoding %d sprites", len(sprites))
	}
	if err := verifyContainer(container, len(sprites)); err != nil {
		return nil, newError(KindEncoding, "container", err, "post-encode check")
	}

	defFile := name + ".def"
	sffFile := name + ".sff"
	def := stagedef.Render(s, geom, stagedef.Options{SpriteFile: sffFile})
	logger.Debug("Rendered stage definition", "bytes", len(def))

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	files := []artifact{
		{name: defFile, data: []byte(def)},
		{name: sffFile, data: container},
	}

	res := &Result{
		Name:        name,
		Format:      opts.Format,
		DefFile:     defFile,
		SFFFile:     sffFile,
		SpriteCount: len(sprites),
		DefSize:     len(def),
		SFFSize:     len(container),
		Checksums:   make(map[string]string, len(files)),
		Warnings:    result.Warnings,
	}
	for _, f := range files {
		res.Checksums[f.name] = Checksum(f.data)
	}

	path, size, err := e.publish(s.Name, name, files, opts, built)
	if err != nil {
		return nil, err
	}
	res.Path = path
	if opts.Format.Archive() {
		res.ArchiveSize = size
	}

	logger.Info("✅ Stage exported",
		"path", res.Path,
		"format", res.Format,
		"sprites", res.SpriteCount,
		"sff_bytes", res.SFFSize,
		"def_bytes", res.DefSize)
	return res, nil
}

// buildSprites encodes one sprite per visible layer, numbered by ordinal,
// followed by the thumbnail.
func (e *Exporter) buildSprites(ctx context.Context, s *stage.StageSpec) ([]sff.Sprite, error) {
	c := e.codec()
	layers := s.VisibleLayers()

	sprites := make([]sff.Sprite, 0, len(layers)+1)
	for i, l := range layers {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		group, item := stagedef.LayerSprite(i)
		sp, err := sff.NewSprite(group, item, l.Image, 0, 0, c)
		if err != nil {
			return nil, newError(KindEncoding, "layer "+l.ID, err, "layer %q (%dx%d)", l.Name, l.Image.Width, l.Image.Height)
		}
		sprites = append(sprites, sp)
	}

	thumb, ok := e.generator().Generate(layers[0].Image)
	if !ok {
		return nil, newError(KindEncoding, "thumbnail", ErrNoThumbnail, "source layer %q", layers[0].ID)
	}
	sp, err := sff.NewSprite(stagedef.ThumbnailGroup, stagedef.ThumbnailItem, thumb, 0, 0, c)
	if err != nil {
		return nil, newError(KindEncoding, "thumbnail", err, "%dx%d preview", thumb.Width, thumb.Height)
	}
	return append(sprites, sp), nil
}

func verifyContainer(data []byte, sprites int) error {
	f, err := sff.Decode(data)
	if err != nil {
		return err
	}
	if err := f.Verify(); err != nil {
		return err
	}
	if len(f.Sprites) != sprites {
		return fmt.Errorf("%w: %d sprites written, %d read back", ErrVerifyFailed, sprites, len(f.Sprites))
	}
	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindCanceled, Err: err}
	}
	return nil
}

// BuildTime returns SOURCE_DATE_EPOCH when set and valid, else now.
func BuildTime() time.Time {
	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Now().UTC()
}

// OutputPath returns where a stage named name is published.
func OutputPath(outputDir, name string, format Format) string {
	base := stage.SanitizeName(name)
	if format.Archive() {
		return filepath.Join(outputDir, base+"."+format.String())
	}
	return filepath.Join(outputDir, base)
}

func (e *Exporter) stagingRoot(outputDir string) string {
	if e.WorkDir != "" {
		return workenv.RootIn(e.WorkDir)
	}
	return workenv.Root(outputDir)
}
