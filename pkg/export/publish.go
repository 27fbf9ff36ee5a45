package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/stagepack/internal/workenv"
	"github.com/provide-io/stagepack/pkg/operations"
	"github.com/provide-io/stagepack/pkg/operations/bundle"
	_ "github.com/provide-io/stagepack/pkg/operations/compress"
)

const publishedDirPerms = 0o755

// publish stages files privately and moves them to the destination in one
// rename. It returns the published path and, for archives, the archive
// size. The staging directory is removed on every path.
func (e *Exporter) publish(stageName, name string, files []artifact, opts Options, modTime time.Time) (string, int, error) {
	logger := e.logger()
	mode := opts.FileMode
	if mode == 0 {
		mode = DefaultFileMode
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, publishedDirPerms); err != nil {
		return "", 0, newError(KindIO, "output", err, "creating %s", outDir)
	}

	var need int64
	for _, f := range files {
		need += int64(len(f.data))
	}
	if err := workenv.CheckDiskSpace(outDir, need, logger); err != nil {
		return "", 0, newError(KindIO, "output", err, "checking space in %s", outDir)
	}

	root := e.stagingRoot(outDir)
	if err := workenv.CleanupStale(root, logger); err != nil {
		logger.Debug("Stale staging cleanup failed", "root", root, "error", err)
	}
	staging, err := workenv.New(root, stageName, logger)
	if err != nil {
		return "", 0, newError(KindIO, "output", err, "creating staging directory")
	}
	defer staging.Remove()

	final := OutputPath(outDir, name, opts.Format)

	if !opts.Format.Archive() {
		for _, f := range files {
			if err := staging.WriteFile(f.name, f.data, mode); err != nil {
				return "", 0, newError(KindIO, roleOf(f.name), err, "staging %s", f.name)
			}
		}
		if err := staging.Seal(); err != nil {
			return "", 0, newError(KindIO, "output", err, "sealing staging directory")
		}
		if err := publishDir(staging.Dir, final, logger); err != nil {
			return "", 0, newError(KindIO, "output", err, "publishing %s", final)
		}
		return final, 0, nil
	}

	ops, err := opts.Format.Operations()
	if err != nil {
		return "", 0, newError(KindEncoding, "output", err, "format %s", opts.Format)
	}
	entries := make([]bundle.Entry, len(files))
	for i, f := range files {
		entries[i] = bundle.Entry{Name: f.name, Mode: int64(mode.Perm()), Data: f.data}
	}
	archive, err := operations.BuildArchive(entries, ops, modTime)
	if err != nil {
		return "", 0, newError(KindEncoding, "output", err, "building %s archive", operations.ChainName(ops))
	}

	archiveName := name + "." + opts.Format.String()
	if err := staging.WriteFile(archiveName, archive, mode); err != nil {
		return "", 0, newError(KindIO, "output", err, "staging %s", archiveName)
	}
	if err := atomicReplace(staging.Path(archiveName), final, logger); err != nil {
		return "", 0, newError(KindIO, "output", err, "publishing %s", final)
	}
	return final, len(archive), nil
}

// publishDir moves the staged directory to dst. An existing dst is first
// renamed aside and restored if the move fails, so dst always holds either
// the previous or the new export.
func publishDir(src, dst string, logger hclog.Logger) error {
	if err := os.Chmod(src, publishedDirPerms); err != nil {
		return fmt.Errorf("failed to set directory permissions: %w", err)
	}

	info, err := os.Lstat(dst)
	switch {
	case os.IsNotExist(err):
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to rename directory: %w", err)
		}
		logger.Debug("Published directory", "dest", dst)
		return nil
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("destination %s exists and is not a directory", dst)
	}

	backup := dst + ".old-" + strconv.Itoa(os.Getpid())
	if err := os.Rename(dst, backup); err != nil {
		return fmt.Errorf("failed to move previous export aside: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if rerr := os.Rename(backup, dst); rerr != nil {
			logger.Error("Failed to restore previous export", "backup", backup, "error", rerr)
		}
		return fmt.Errorf("failed to rename directory: %w", err)
	}
	if err := os.RemoveAll(backup); err != nil {
		logger.Warn("Failed to remove previous export", "path", backup, "error", err)
	}
	logger.Debug("Replaced directory", "dest", dst)
	return nil
}

func roleOf(file string) string {
	if strings.HasSuffix(file, ".sff") {
		return "container"
	}
	return "definition"
}
