package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor/transform"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

var dotFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG}

type dotOpts struct {
	format     string
	output     string
	contracted bool
	all        bool
	detailed   bool
	scale      float64
}

// dotCommand draws the divisor graph of an example.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{format: formatDOT, scale: 2}
	cmd := &cobra.Command{
		Use:   "dot <file> <index>",
		Short: "Draw the divisor graph of an example",
		Long: `Draw the divisor graph of an example with Graphviz. Base curves are boxes and
exceptional curves are ellipses labelled with their self-intersection.

By default only the curves of the example are drawn. With --contracted the
graph after the example's blow-downs is drawn instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(dotFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want %s)", opts.format, strings.Join(dotFormats, ", "))
			}
			path, index, err := exampleArgs(args)
			if err != nil {
				return err
			}
			return c.runDot(cmd, path, index, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.contracted, "contracted", false, "draw the graph after the example's blow-downs")
	cmd.Flags().BoolVar(&opts.all, "all", false, "draw every curve, greying those the example does not use")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add curve indices and all self-intersections")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "png scale factor")
	return cmd
}

func (c *CLI) runDot(cmd *cobra.Command, path string, index int, opts dotOpts) error {
	ctx := cmd.Context()
	g, ex, err := loadExample(path, index)
	if err != nil {
		return err
	}
	if err := analysis.ValidateGraph(g); err != nil {
		return err
	}

	draw := g
	nopts := nodelink.Options{Used: ex.Used, Detailed: opts.detailed}
	if opts.contracted {
		res, err := transform.Blowdown(g, ex.Selection())
		if err != nil {
			return analysis.Classify(err)
		}
		draw = res.Graph
		nopts.Hide = append(slices.Clone(res.Deleted), contractedCurves(g, res.Graph)...)
		switch {
		case res.StoppedAt >= 0:
			printWarning(cmd.ErrOrStderr(), "not normal crossing at %s, stopped contracting", g.Name(res.StoppedAt))
		case !res.NormalCrossing:
			printWarning(cmd.ErrOrStderr(), "surviving exceptional curves meet, not normal crossing")
		}
	}
	if !opts.all {
		nopts.Hide = append(nopts.Hide, unusedCurves(g, ex.Used)...)
	}

	dot := nodelink.ToDOT(draw, nopts)
	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		data, err = nodelink.RenderPNG(ctx, dot, opts.scale)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "render %s", opts.format)
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := errors.ValidatePath(opts.output); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	printSuccess(cmd.ErrOrStderr(), "Rendered example %d", ex.Index)
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

// contractedCurves lists the exceptional curves of before that are no longer
// exceptional in after.
func contractedCurves(before, after *divisor.Graph) []int {
	var out []int
	for _, e := range before.Exceptional {
		if !after.IsExceptional(e) {
			out = append(out, e)
		}
	}
	return out
}

// unusedCurves lists the base curves of g missing from used. Exceptional
// curves are always drawn.
func unusedCurves(g *divisor.Graph, used []int) []int {
	var out []int
	for _, c := range g.Base() {
		if !slices.Contains(used, c) {
			out = append(out, c)
		}
	}
	return out
}
