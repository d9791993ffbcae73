package cli

import (
	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/render/text"
)

type showOpts struct {
	raw       bool
	precision int
}

// showCommand prints the text report of an example.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts
	cmd := &cobra.Command{
		Use:   "show <file> <index>",
		Short: "Print the full report of an example",
		Long: `Print the used curves, blow-ups, resulting chains or fork with their
self-intersections and discrepancies, the intersection matrix of the base
curves and the invariants after contraction.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, index, err := exampleArgs(args)
			if err != nil {
				return err
			}
			return c.runShow(cmd, path, index, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "only print the record, without matrix and invariants")
	cmd.Flags().IntVar(&opts.precision, "precision", -1, "decimals of the rounded c1²/c2 (default from config)")
	return cmd
}

func (c *CLI) runShow(cmd *cobra.Command, path string, index int, opts showOpts) error {
	ctx := cmd.Context()
	g, ex, err := loadExample(path, index)
	if err != nil {
		return err
	}
	prec, err := c.precision(opts.precision)
	if err != nil {
		return err
	}

	var res *analysis.Result
	if !opts.raw {
		runner, err := c.newRunner(ctx)
		if err != nil {
			return err
		}
		defer runner.Close()
		aopts, err := c.analysisOptions(ctx, false, 0)
		if err != nil {
			return err
		}
		aopts.Logger = exampleLogger(ctx, ex)
		if res, err = runner.Analyze(ctx, g, ex, aopts); err != nil {
			return err
		}
	}
	return text.Render(cmd.OutOrStdout(), g, ex, res, text.Options{Precision: prec})
}
