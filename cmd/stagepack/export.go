package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/provide-io/stagepack/pkg/codec"
	"github.com/provide-io/stagepack/pkg/export"
	"github.com/provide-io/stagepack/pkg/manifest"
	"github.com/provide-io/stagepack/pkg/stage"
	"github.com/provide-io/stagepack/pkg/utils/permissions"
)

// exportFlags are shared by export and watch.
type exportFlags struct {
	document   string
	output     string
	format     string
	resolution string
	engine     string
	fileMode   string
	workDir    string
	yes        bool
}

// registerDocument adds the flags that select and adjust the stage.
func (f *exportFlags) registerDocument(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.document, "document", "d", "", "Path to the stage document (required)")
	cmd.Flags().StringVar(&f.resolution, "resolution", "", "Override the target resolution (320x240, 640x480, 1280x720, 1920x1080, custom)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Override the target engine (mugen1.0, mugen1.1, ikemen)")
	if err := cmd.MarkFlagRequired("document"); err != nil {
		panic(err)
	}
}

func (f *exportFlags) register(cmd *cobra.Command) {
	f.registerDocument(cmd)
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "Output directory")
	cmd.Flags().StringVar(&f.format, "format", "dir", "Output format: dir, tar.gz, tar.bz2, tar.xz")
	cmd.Flags().StringVar(&f.fileMode, "file-mode", "", "Mode of published files (default 0644)")
	cmd.Flags().StringVar(&f.workDir, "work-dir", "", "Directory to stage in (a .stagepack-work subdirectory is used), on the output volume")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Export even when validation reports warnings")
}

// options turns the flags into export options.
func (f *exportFlags) options() (export.Options, error) {
	format, err := export.ParseFormat(f.format)
	if err != nil {
		return export.Options{}, err
	}
	mode, err := permissions.ParseOctalString(f.fileMode)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		OutputDir:      f.output,
		Format:         format,
		AcceptWarnings: f.yes,
		FileMode:       mode,
	}, nil
}

// load reads the document and applies command-line overrides.
func (f *exportFlags) load(c codec.Codec) (*stage.StageSpec, error) {
	s, err := manifest.Load(f.document, c)
	if err != nil {
		return nil, err
	}
	if f.resolution != "" {
		r, err := stage.ParseResolution(f.resolution)
		if err != nil {
			return nil, err
		}
		s.SetResolution(r)
	}
	if f.engine != "" {
		e, err := stage.ParseEngine(f.engine)
		if err != nil {
			return nil, err
		}
		s.Engine = e
	}
	return s, nil
}

func newExportCmd() *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Validate a stage document and publish its .def and .sff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runExport(ctx context.Context, out io.Writer, flags *exportFlags) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}

	exporter := export.New(logger.Named("export"))
	exporter.WorkDir = flags.workDir

	s, err := flags.load(exporter.Codec)
	if err != nil {
		return err
	}

	res, err := exporter.Export(ctx, s, opts)
	if err != nil {
		var exportErr *export.Error
		if errors.As(err, &exportErr) && exportErr.Kind == export.KindValidation {
			printIssues(out, exportErr.Issues)
			fmt.Fprintln(out, "Export blocked:", exportErr.Err)
			if errors.Is(err, export.ErrWarningsNotConfirmed) {
				fmt.Fprintln(out, "Re-run with --yes to export anyway.")
			}
			return errInvalidStage
		}
		return err
	}

	printIssues(out, res.Warnings)
	fmt.Fprintf(out, "Exported %s (%d sprites) to %s\n", res.Name, res.SpriteCount, res.Path)
	names := make([]string, 0, len(res.Checksums))
	for name := range res.Checksums {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-24s %s\n", name, res.Checksums[name])
	}
	return nil
}

func printIssues(out io.Writer, issues []stage.Issue) {
	for _, i := range issues {
		fmt.Fprintln(out, " ", i)
	}
}
