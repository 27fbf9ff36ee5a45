package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/stagepack/pkg/export"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify PATH",
		Short: "Check a published stage directory or archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report, err := export.Verify(args[0], logger.Named("verify"))
			if err != nil {
				return err
			}

			for _, p := range report.Problems {
				fmt.Fprintln(out, "  ✗", p)
			}
			if !report.OK() {
				fmt.Fprintf(out, "%s: %d problem(s)\n", report.Path, len(report.Problems))
				return errInvalidStage
			}
			fmt.Fprintf(out, "%s: ok (%s, %s, %d sprites)\n", report.Path, report.DefFile, report.SFFFile, report.Sprites)
			return nil
		},
	}
}
