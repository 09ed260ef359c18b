package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/render"
)

// Graph output formats, besides formatJSON.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		tf       targetFlags
		format   string
		output   string
		detailed bool
		losers   bool
		scale    float64
	)
	cmd := &cobra.Command{
		Use:   "graph [coordinate]",
		Short: "Render the dependency graph with Graphviz",
		Long: `Graph draws every resolved artifact version once, with an edge from each
dependent. JSON lists the same vertices and edges. SVG is laid out
in-process; PDF and PNG additionally need rsvg-convert from librsvg.`,
		Example: `  bee graph -o deps.svg
  bee graph --format dot junit:junit:4.13.2 | dot -Tpng > junit.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatDOT, formatJSON, formatSVG, formatPDF, formatPNG:
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (dot, json, svg, pdf, png)", format)
			}
			res, err := c.collectTarget(cmd, &tf, args, losers)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if format == formatJSON {
				var buf bytes.Buffer
				if err := render.WriteJSON(res.Root, &buf); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "write json")
				}
				return c.writeOutput(cmd, output, buf.Bytes())
			}
			dot := render.ToDOT(res.Root, render.DOTOptions{Detailed: detailed})
			data := []byte(dot)
			if format != formatDOT {
				if data, err = render.RenderSVG(ctx, dot); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
				}
			}
			switch format {
			case formatPDF:
				data, err = render.ToPDF(ctx, data)
			case formatPNG:
				data, err = render.ToPNG(ctx, data, scale)
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "convert to %s", format)
			}

			return c.writeOutput(cmd, output, data)
		},
	}
	tf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, json, svg, pdf, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show group, classifier and scope in vertices")
	cmd.Flags().BoolVar(&losers, "losers", false, "draw versions that lost a conflict")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG scale factor")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatDOT, formatJSON, formatSVG, formatPDF, formatPNG}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) writeOutput(cmd *cobra.Command, output string, data []byte) error {
	if output == "" || output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
	}
	printFile(cmd.ErrOrStderr(), output)
	return nil
}
