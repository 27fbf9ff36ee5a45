package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/stagepack/internal/workenv"
	"github.com/provide-io/stagepack/pkg/codec"
	"github.com/provide-io/stagepack/pkg/operations"
	"github.com/provide-io/stagepack/pkg/sff"
	"github.com/provide-io/stagepack/pkg/stage"
	"github.com/provide-io/stagepack/pkg/stagedef"
)

func testLogger(t *testing.T) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   t.Name(),
		Level:  hclog.Debug,
		Output: hclog.DefaultOutput,
	})
}

func gradient(w, h int) codec.Raster {
	r := codec.Raster{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3] = byte(x), byte(y), byte(x+y), 0xFF
		}
	}
	return r
}

func validSpec() *stage.StageSpec {
	s := stage.NewStageSpec("Temple")
	s.Author = "tester"
	s.SetResolution(stage.Res320x240)
	s.AddLayer(stage.NewLayer("bg", "Sky", gradient(400, 300)))
	return s
}

func newTestExporter(t *testing.T) *Exporter {
	t.Setenv("STAGEPACK_WORK_DIR", "")
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	return New(testLogger(t))
}

func TestExportDirectory(t *testing.T) {
	e := newTestExporter(t)
	out := t.TempDir()

	res, err := e.Export(context.Background(), validSpec(), Options{OutputDir: out})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "Temple"), res.Path)
	assert.Equal(t, "Temple.def", res.DefFile)
	assert.Equal(t, "Temple.sff", res.SFFFile)
	assert.Equal(t, 2, res.SpriteCount, "background plus thumbnail")

	entries, err := os.ReadDir(res.Path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	container, err := os.ReadFile(filepath.Join(res.Path, res.SFFFile))
	require.NoError(t, err)
	assert.Equal(t, res.SFFSize, len(container))
	assert.Equal(t, res.Checksums[res.SFFFile], Checksum(container))

	f, err := sff.Decode(container)
	require.NoError(t, err)
	require.NoError(t, f.Verify())
	require.Len(t, f.Sprites, 2)
	assert.Equal(t, uint16(stagedef.BackgroundGroup), f.Sprites[0].Group)
	assert.Equal(t, uint16(400), f.Sprites[0].Width)
	assert.Equal(t, uint16(stagedef.ThumbnailGroup), f.Sprites[1].Group)
	assert.Equal(t, uint16(160), f.Sprites[1].Width)
	assert.Equal(t, uint8(sff.FormatPNG32), f.Sprites[1].Format)

	def, err := os.ReadFile(filepath.Join(res.Path, res.DefFile))
	require.NoError(t, err)
	assert.Contains(t, string(def), "spr = Temple.sff")
	assert.Contains(t, string(def), "versiondate = 11,14,2023")

	assert.NoDirExists(t, filepath.Join(out, workenv.DirName), "staging is removed")
}

func TestExportLeavesWorkDirContentsAlone(t *testing.T) {
	e := newTestExporter(t)
	work := t.TempDir()
	e.WorkDir = work

	project := filepath.Join(work, "my-project")
	keep := filepath.Join(project, "src", "keep.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(keep), 0o755))
	require.NoError(t, os.WriteFile(keep, []byte("mine"), 0o644))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(project, past, past))

	_, err := e.Export(context.Background(), validSpec(), Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	assert.FileExists(t, keep)
	assert.DirExists(t, work)
	assert.NoDirExists(t, workenv.RootIn(work))
}

func TestExportReplacesPreviousDirectory(t *testing.T) {
	e := newTestExporter(t)
	out := t.TempDir()
	old := filepath.Join(out, "Temple")
	require.NoError(t, os.MkdirAll(old, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(old, "stale.txt"), []byte("x"), 0o644))

	res, err := e.Export(context.Background(), validSpec(), Options{OutputDir: out})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(res.Path, "stale.txt"))
	assert.FileExists(t, filepath.Join(res.Path, "Temple.def"))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1, "backup is removed")
}

func TestExportArchives(t *testing.T) {
	for _, format := range []Format{FormatTarGz, FormatTarBz2, FormatTarXz} {
		t.Run(format.String(), func(t *testing.T) {
			e := newTestExporter(t)
			out := t.TempDir()

			res, err := e.Export(context.Background(), validSpec(), Options{OutputDir: out, Format: format})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(out, "Temple."+format.String()), res.Path)

			data, err := os.ReadFile(res.Path)
			require.NoError(t, err)
			assert.Equal(t, res.ArchiveSize, len(data))

			ops, err := format.Operations()
			require.NoError(t, err)
			entries, err := operations.ExtractArchive(data, ops)
			require.NoError(t, err)
			require.Len(t, entries, 2, "archive holds exactly the two artifacts")
			assert.Equal(t, "Temple.def", entries[0].Name)
			assert.Equal(t, "Temple.sff", entries[1].Name)
			assert.Equal(t, res.Checksums["Temple.sff"], Checksum(entries[1].Data))

			entriesOut, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Len(t, entriesOut, 1)
		})
	}
}

func TestExportArchiveNonASCIIName(t *testing.T) {
	e := newTestExporter(t)
	s := validSpec()
	s.Name = "Estadio Ñoño"

	res, err := e.Export(context.Background(), s, Options{OutputDir: t.TempDir(), Format: FormatTarGz})
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	entries, err := operations.ExtractArchive(data, []uint8{operations.OP_TAR, operations.OP_GZIP})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Estadio Ñoño.def", entries[0].Name)
	assert.Equal(t, "Estadio Ñoño.sff", entries[1].Name)
}

func TestExportArchiveIsReproducible(t *testing.T) {
	e := newTestExporter(t)
	a, b := t.TempDir(), t.TempDir()

	ra, err := e.Export(context.Background(), validSpec(), Options{OutputDir: a, Format: FormatTarGz})
	require.NoError(t, err)
	rb, err := e.Export(context.Background(), validSpec(), Options{OutputDir: b, Format: FormatTarGz})
	require.NoError(t, err)

	da, err := os.ReadFile(ra.Path)
	require.NoError(t, err)
	db, err := os.ReadFile(rb.Path)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestExportBlockedByErrors(t *testing.T) {
	e := newTestExporter(t)
	out := t.TempDir()

	s := stage.NewStageSpec("Tiny")
	s.AddLayer(stage.NewLayer("bg", "Sky", gradient(300, 200)))

	_, err := e.Export(context.Background(), s, Options{OutputDir: out, AcceptWarnings: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, KindValidation, KindOf(err))

	var exportErr *Error
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, stage.CodeImageTooSmall, exportErr.Issues[0].Code)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written")
}

func TestExportRejectsUnusableNamesBeforeEncoding(t *testing.T) {
	for _, name := range []string{strings.Repeat("c", 300), "CON"} {
		t.Run(name[:3], func(t *testing.T) {
			e := newTestExporter(t)
			e.Codec = failingCodec{codec.NewPNG()}
			out := t.TempDir()

			s := validSpec()
			s.Name = name
			_, err := e.Export(context.Background(), s, Options{OutputDir: out})
			assert.Equal(t, KindValidation, KindOf(err))
			assert.ErrorIs(t, err, ErrValidationFailed)

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestExportWarningsNeedConfirmation(t *testing.T) {
	e := newTestExporter(t)
	out := t.TempDir()

	s := validSpec()
	s.SetPlayerStarts(-1000, 70)

	_, err := e.Export(context.Background(), s, Options{OutputDir: out})
	assert.ErrorIs(t, err, ErrWarningsNotConfirmed)
	assert.NoDirExists(t, filepath.Join(out, "Temple"))

	res, err := e.Export(context.Background(), s, Options{OutputDir: out, AcceptWarnings: true})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, stage.CodePlayerOutOfBounds, res.Warnings[0].Code)
}

type failingCodec struct{ codec.Codec }

func (failingCodec) Encode(codec.Raster) ([]byte, error) {
	return nil, codec.ErrEncodeFailed
}

func TestExportEncodingFailureLeavesNothing(t *testing.T) {
	e := newTestExporter(t)
	e.Codec = failingCodec{codec.NewPNG()}
	out := t.TempDir()

	_, err := e.Export(context.Background(), validSpec(), Options{OutputDir: out})
	require.Error(t, err)
	assert.Equal(t, KindEncoding, KindOf(err))
	assert.ErrorIs(t, err, codec.ErrEncodeFailed)

	var exportErr *Error
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "layer bg", exportErr.Role)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportPublishFailureLeavesNothing(t *testing.T) {
	e := newTestExporter(t)
	out := t.TempDir()
	// A regular file where the directory should go blocks the publish.
	blocker := filepath.Join(out, "Temple")
	require.NoError(t, os.WriteFile(blocker, []byte("keep"), 0o644))

	_, err := e.Export(context.Background(), validSpec(), Options{OutputDir: out})
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))

	data, err := os.ReadFile(blocker)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
	assert.NoDirExists(t, filepath.Join(out, workenv.DirName))
}

func TestExportDoesNotModifySpec(t *testing.T) {
	e := newTestExporter(t)
	s := validSpec()
	before := s.Snapshot()

	_, err := e.Export(context.Background(), s, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, before, *s)
}

func TestExportCanceled(t *testing.T) {
	e := newTestExporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Export(ctx, validSpec(), Options{OutputDir: t.TempDir()})
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportSkipsHiddenLayers(t *testing.T) {
	e := newTestExporter(t)
	s := validSpec()
	hidden := stage.NewLayer("h", "Hidden", gradient(400, 300))
	hidden.Visible = false
	s.AddLayer(hidden)
	s.AddLayer(stage.NewLayer("fg", "Front", gradient(400, 100)))

	res, err := e.Export(context.Background(), s, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 3, res.SpriteCount)
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in   string
		want Format
	}{
		{"", FormatDir},
		{"dir", FormatDir},
		{"tar.gz", FormatTarGz},
		{"tgz", FormatTarGz},
		{"TAR.BZ2", FormatTarBz2},
		{"tar|xz", FormatTarXz},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseFormat("tar")
	assert.Error(t, err)
	_, err = ParseFormat("zip")
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	err := newError(KindIO, "output", os.ErrPermission, "publishing %s", "x")
	assert.Equal(t, "export io [output]: publishing x: permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
}
