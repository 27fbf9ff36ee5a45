package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/ini.v1"

	"github.com/provide-io/stagepack/pkg/operations"
	"github.com/provide-io/stagepack/pkg/sff"
	"github.com/provide-io/stagepack/pkg/stagedef"
)

// Report is the outcome of checking a published export.
type Report struct {
	Path      string
	DefFile   string
	SFFFile   string
	Sprites   int
	Checksums map[string]string
	Problems  []string
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify checks a published directory or archive: it holds exactly one
// definition and one container, the definition points at the container,
// the container is well formed, and every sprite the definition uses
// exists. The returned error covers unreadable input only; findings are in
// the report.
func Verify(path string, logger hclog.Logger) (*Report, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	files, err := loadPublished(path)
	if err != nil {
		return nil, err
	}

	r := &Report{Path: path, Checksums: make(map[string]string, len(files))}
	var defs, sffs []string
	for name, data := range files {
		r.Checksums[name] = Checksum(data)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".def":
			defs = append(defs, name)
		case ".sff":
			sffs = append(sffs, name)
		default:
			r.problem("unexpected file %s", name)
		}
	}
	sort.Strings(defs)
	sort.Strings(sffs)
	if len(defs) != 1 || len(sffs) != 1 {
		r.problem("expected one .def and one .sff, found %d and %d", len(defs), len(sffs))
		return r, nil
	}
	r.DefFile, r.SFFFile = defs[0], sffs[0]

	container, err := sff.Decode(files[r.SFFFile])
	if err != nil {
		r.problem("container: %v", err)
		return r, nil
	}
	if err := container.Verify(); err != nil {
		r.problem("container: %v", err)
	}
	r.Sprites = len(container.Sprites)
	logger.Info("✓ Container decoded", "file", r.SFFFile, "sprites", r.Sprites)

	numbers := make(map[[2]uint16]bool, len(container.Sprites))
	for _, n := range container.Sprites {
		numbers[[2]uint16{n.Group, n.Item}] = true
	}

	def, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, files[r.DefFile])
	if err != nil {
		r.problem("definition: %v", err)
		return r, nil
	}
	if spr := def.Section("BGdef").Key("spr").String(); spr != r.SFFFile {
		r.problem("definition references sprite file %q, archive holds %q", spr, r.SFFFile)
	}
	if !numbers[[2]uint16{stagedef.ThumbnailGroup, stagedef.ThumbnailItem}] {
		r.problem("thumbnail sprite %d,%d missing", stagedef.ThumbnailGroup, stagedef.ThumbnailItem)
	}

	layers := 0
	for _, sec := range def.Sections() {
		if !strings.HasPrefix(sec.Name(), "BG ") {
			continue
		}
		layers++
		num, ok := parseSpriteNo(sec.Key("spriteno").String())
		if !ok {
			r.problem("[%s] has an invalid spriteno", sec.Name())
			continue
		}
		if !numbers[num] {
			r.problem("[%s] uses sprite %d,%d which the container lacks", sec.Name(), num[0], num[1])
		}
	}
	if layers == 0 {
		r.problem("definition has no background sections")
	}

	if r.OK() {
		logger.Info("✓ Export verification passed", "path", path)
	} else {
		logger.Error("✗ Export verification failed", "problems", len(r.Problems))
	}
	return r, nil
}

func parseSpriteNo(v string) ([2]uint16, bool) {
	a, b, ok := strings.Cut(v, ",")
	if !ok {
		return [2]uint16{}, false
	}
	group, err1 := strconv.ParseUint(strings.TrimSpace(a), 10, 16)
	item, err2 := strconv.ParseUint(strings.TrimSpace(b), 10, 16)
	if err1 != nil || err2 != nil {
		return [2]uint16{}, false
	}
	return [2]uint16{uint16(group), uint16(item)}, true
}

// loadPublished reads every file of a published directory or archive.
func loadPublished(path string) (map[string][]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte)
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(path, e.Name()))
			if err != nil {
				return nil, err
			}
			files[e.Name()] = data
		}
		return files, nil
	}

	format, ok := archiveFormat(path)
	if !ok {
		return nil, fmt.Errorf("%s is neither a directory nor a known archive", path)
	}
	ops, err := format.Operations()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := operations.ExtractArchive(data, ops)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		files[e.Name] = e.Data
	}
	return files, nil
}

func archiveFormat(path string) (Format, bool) {
	lower := strings.ToLower(path)
	for _, f := range []Format{FormatTarGz, FormatTarBz2, FormatTarXz} {
		if strings.HasSuffix(lower, "."+f.String()) {
			return f, true
		}
	}
	return 0, false
}
