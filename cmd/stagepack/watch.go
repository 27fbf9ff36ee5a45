package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/provide-io/stagepack/pkg/manifest"
)

func newWatchCmd() *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-export whenever the stage document or its images change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// watchedFiles returns the document and, when it parses, its images.
func watchedFiles(document string) []string {
	files := []string{document}
	data, err := os.ReadFile(document)
	if err != nil {
		return files
	}
	doc, err := manifest.Decode(data)
	if err != nil {
		return files
	}
	return append(files, doc.ImagePaths(filepath.Dir(document))...)
}

func runWatch(ctx context.Context, out io.Writer, flags *exportFlags) error {
	docPath, err := filepath.Abs(flags.document)
	if err != nil {
		return err
	}

	exportOnce := func() {
		if err := runExport(ctx, out, flags); err != nil && !errors.Is(err, errInvalidStage) {
			logger.Error("Export failed", "error", err)
		}
	}

	for {
		w, err := manifest.NewWatcher(watchedFiles(flags.document)...)
		if err != nil {
			return err
		}
		logger.Info("👀 Watching stage document", "document", flags.document)
		exportOnce()

		reload, err := watchLoop(ctx, w, docPath, exportOnce)
		w.Close()
		if err != nil || !reload {
			return err
		}
	}
}

// watchLoop re-exports on image changes. It returns true when the document
// itself changed, since its image list may differ.
func watchLoop(ctx context.Context, w *manifest.Watcher, docPath string, exportOnce func()) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping watch")
			return false, nil
		case name, ok := <-w.Events:
			if !ok {
				return false, nil
			}
			logger.Info("🔄 Change detected", "file", name)
			if name == docPath {
				return true, nil
			}
			exportOnce()
		case err, ok := <-w.Errors:
			if !ok {
				return false, nil
			}
			logger.Warn("Watcher error", "error", err)
		}
	}
}
