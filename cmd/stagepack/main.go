package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/stagepack/pkg/export"
	"github.com/provide-io/stagepack/pkg/logging"
	"github.com/provide-io/stagepack/pkg/manifest"
)

const version = "0.1.0"

// Exit codes
const (
	ExitOK            = 0
	ExitInvalidStage  = 1 // validation errors, unaccepted warnings, failed verification
	ExitPanic         = 101
	ExitEncodingError = 102
	ExitInvalidArgs   = 105
	ExitIOError       = 106
)

var (
	logLevel  string
	logger    hclog.Logger = hclog.NewNullLogger()
	logCloser io.Closer
	rootCmd   *cobra.Command
)

func getBuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// errInvalidStage marks a run that completed but found the stage unusable;
// the details have already been printed.
var errInvalidStage = errors.New("stage is not valid")

func init() {
	rootCmd = newRootCmd()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stagepack",
		Short:         "Package fighting-game stages",
		Long:          `Build engine-ready stage definitions and sprite containers from stage documents.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger, logCloser = logging.Setup("stagepack", logLevel)
			logger.Debug("stagepack starting", "version", version, "command", cmd.Name())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("stagepack {{.Version}}\nBuilt: %s\n", getBuildTimestamp()))
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error; json:<level> for JSON)")

	cmd.AddCommand(
		newExportCmd(),
		newValidateCmd(),
		newInspectCmd(),
		newVerifyCmd(),
		newWatchCmd(),
	)
	return cmd
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(ExitPanic)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalidStage) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errInvalidStage):
		return ExitInvalidStage
	case errors.Is(err, manifest.ErrInvalidDocument), errors.Is(err, manifest.ErrImage):
		return ExitInvalidArgs
	}

	switch export.KindOf(err) {
	case export.KindValidation:
		return ExitInvalidStage
	case export.KindEncoding:
		return ExitEncodingError
	case export.KindIO, export.KindCanceled:
		return ExitIOError
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return ExitIOError
	}
	return ExitInvalidArgs
}
