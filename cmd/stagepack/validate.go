package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/stagepack/pkg/codec"
	"github.com/provide-io/stagepack/pkg/stage"
)

func newValidateCmd() *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a stage document without exporting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s, err := flags.load(codec.NewPNG())
			if err != nil {
				return err
			}

			result := stage.Validate(s)
			printIssues(out, result.Errors)
			printIssues(out, result.Warnings)
			fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(result.Errors), len(result.Warnings))

			if g, ok := s.Derived(); ok {
				logger.Debug("Derived geometry",
					"screen", fmt.Sprintf("%dx%d", g.Screen.Width, g.Screen.Height),
					"ground_y", g.GroundY,
					"bounds", fmt.Sprintf("%d..%d, %d..%d", g.BoundLeft, g.BoundRight, g.BoundHigh, g.BoundLow))
			}
			if result.HasErrors() {
				return errInvalidStage
			}
			return nil
		},
	}
	flags.registerDocument(cmd)
	return cmd
}
