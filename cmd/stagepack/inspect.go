package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/provide-io/stagepack/pkg/sff"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.sff",
		Short: "Print the header and records of a sprite container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := sff.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			printContainer(cmd.OutOrStdout(), args[0], f)

			if err := f.Verify(); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Layout check failed:", err)
				return errInvalidStage
			}
			return nil
		},
	}
}

func printContainer(out io.Writer, name string, f *sff.File) {
	h := f.Header
	fmt.Fprintf(out, "%s: SFF v%d.%d%d\n", name, h.Version[3], h.Version[2], h.Version[1])
	fmt.Fprintf(out, "  sprites   %4d at %d\n", h.SpriteCount, h.SpriteOffset)
	fmt.Fprintf(out, "  palettes  %4d at %d\n", h.PaletteCount, h.PaletteOffset)
	fmt.Fprintf(out, "  ldata     %d bytes at %d\n", h.LDataLength, h.LDataOffset)
	fmt.Fprintf(out, "  tdata     %d bytes at %d\n\n", h.TDataLength, h.TDataOffset)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tGROUP,ITEM\tSIZE\tAXIS\tFORMAT\tOFFSET\tLENGTH\tDECLARED")
	for i, n := range f.Sprites {
		declared, _, err := f.SpritePayload(i)
		declaredCol := fmt.Sprint(declared)
		if err != nil {
			declaredCol = "error: " + err.Error()
		}
		fmt.Fprintf(tw, "%d\t%d,%d\t%dx%d\t%d,%d\t%s\t%d\t%d\t%s\n",
			i, n.Group, n.Item, n.Width, n.Height, n.AxisX, n.AxisY,
			formatName(n.Format, n.ColorDepth), n.DataOffset, n.DataLength, declaredCol)
	}
	tw.Flush()

	for i, p := range f.Palettes {
		fmt.Fprintf(out, "\npalette %d: %d,%d colors=%d offset=%d length=%d\n",
			i, p.Group, p.Item, p.NumColors, p.DataOffset, p.DataLength)
	}
}

func formatName(format, depth uint8) string {
	switch format {
	case sff.FormatPNG32:
		return fmt.Sprintf("png32/%d", depth)
	case sff.FormatPNG24:
		return fmt.Sprintf("png24/%d", depth)
	case sff.FormatPNG8:
		return fmt.Sprintf("png8/%d", depth)
	default:
		return fmt.Sprintf("%d/%d", format, depth)
	}
}
