// Package workenv manages the private staging directories an export writes
// into before publishing.
package workenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"
)

const (
	// DirName is the staging root created next to the output.
	DirName = ".stagepack-work"

	dirPerms = 0o755
)

var ErrInvalidName = errors.New("workenv: invalid file name")

// Root returns the staging root for an export into outputDir: a DirName
// directory inside STAGEPACK_WORK_DIR when set, else inside outputDir.
func Root(outputDir string) string {
	if dir := os.Getenv("STAGEPACK_WORK_DIR"); dir != "" {
		return RootIn(dir)
	}
	return RootIn(outputDir)
}

// RootIn returns the staging root inside base. base itself is never
// written to or removed; it must be on the output volume so publishing
// stays a rename.
func RootIn(base string) string {
	return filepath.Join(base, DirName)
}

// Staging is one process-private staging directory.
type Staging struct {
	Dir    string
	root   string
	logger hclog.Logger
}

// New creates a staging directory under root named after the current PID,
// so CleanupStale can tell when its owner has died.
func New(root, stage string, logger hclog.Logger) (*Staging, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	dir, err := makeStagingDir(root)
	if err != nil {
		return nil, err
	}
	if err := writeMarker(dir, stage); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	logger.Debug("📁 Created staging directory", "path", dir)
	return &Staging{Dir: dir, root: root, logger: logger}, nil
}

// makeStagingDir creates root and a PID-named directory inside it. A
// finishing export removes an empty root, so a root that vanishes between
// the two calls is created once more.
func makeStagingDir(root string) (string, error) {
	prefix := strconv.Itoa(os.Getpid()) + "-"
	for attempt := 0; ; attempt++ {
		if err := os.MkdirAll(root, dirPerms); err != nil {
			return "", fmt.Errorf("failed to create staging root: %w", err)
		}
		dir, err := os.MkdirTemp(root, prefix)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrNotExist) || attempt > 0 {
			return "", fmt.Errorf("failed to create staging directory: %w", err)
		}
	}
}

// Path returns the staged path of a published file name.
func (s *Staging) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// WriteFile writes data to name inside the staging directory and syncs it.
func (s *Staging) WriteFile(name string, data []byte, mode os.FileMode) error {
	if name == "" || name != filepath.Base(name) || name == MarkerName {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := s.Path(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	s.logger.Trace("Staged file", "name", name, "bytes", len(data))
	return nil
}

// Seal removes the ownership marker so the directory holds only published
// content.
func (s *Staging) Seal() error {
	if err := os.Remove(filepath.Join(s.Dir, MarkerName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staging marker: %w", err)
	}
	return nil
}

// Remove deletes the staging directory and, when no other export is
// staging there, the DirName root. The directory holding the root is left
// alone.
func (s *Staging) Remove() {
	if err := os.RemoveAll(s.Dir); err != nil {
		s.logger.Debug("⚠️ Failed to remove staging directory", "path", s.Dir, "error", err)
	}
	if filepath.Base(s.root) == DirName {
		_ = os.Remove(s.root)
	}
}
