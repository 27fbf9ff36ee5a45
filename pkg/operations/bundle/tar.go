// Package bundle packs named files into a POSIX TAR stream.
package bundle

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Upper bound on a single extracted entry
const MaxEntrySize = 1 << 30

var (
	ErrEmptyArchive = errors.New("empty tar archive")
	ErrInvalidEntry = errors.New("invalid tar entry")
)

// Entry is one regular file in a bundle.
type Entry struct {
	Name string
	Mode int64
	Data []byte
}

// Pack writes entries in order as PAX, so names may be long or non-ASCII.
// Ownership is zeroed and every entry gets modTime (the epoch when zero),
// whole seconds only, so identical input yields identical bytes.
func Pack(entries []Entry, modTime time.Time) ([]byte, error) {
	if modTime.IsZero() {
		modTime = time.Unix(0, 0)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, e := range entries {
		if err := checkName(e.Name); err != nil {
			return nil, err
		}
		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}
		header := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Name,
			Mode:     mode,
			Size:     int64(len(e.Data)),
			ModTime:  modTime.UTC().Truncate(time.Second),
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("writing tar header for %s: %w", e.Name, err)
		}
		if _, err := tw.Write(e.Data); err != nil {
			return nil, fmt.Errorf("writing tar data for %s: %w", e.Name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack reads every regular file from a TAR stream.
func Unpack(data []byte) ([]Entry, error) {
	tr := tar.NewReader(bytes.NewReader(data))

	var entries []Entry
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := checkName(header.Name); err != nil {
			return nil, err
		}
		if header.Size < 0 || header.Size > MaxEntrySize {
			return nil, fmt.Errorf("%w: %s has size %d", ErrInvalidEntry, header.Name, header.Size)
		}

		buf := make([]byte, header.Size)
		if _, err := io.ReadFull(tr, buf); err != nil {
			return nil, fmt.Errorf("reading tar data for %s: %w", header.Name, err)
		}
		entries = append(entries, Entry{Name: header.Name, Mode: header.Mode, Data: buf})
	}

	if len(entries) == 0 {
		return nil, ErrEmptyArchive
	}
	return entries, nil
}

func checkName(name string) error {
	if name == "" || path.IsAbs(name) || strings.Contains(name, `\`) {
		return fmt.Errorf("%w: name %q", ErrInvalidEntry, name)
	}
	clean := path.Clean(name)
	if clean != name || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: name %q", ErrInvalidEntry, name)
	}
	return nil
}
