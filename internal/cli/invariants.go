package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

type invariantsOpts struct {
	precision int
	json      bool
}

// invariantsCommand blows down an example and prints its invariants.
func (c *CLI) invariantsCommand() *cobra.Command {
	var opts invariantsOpts
	cmd := &cobra.Command{
		Use:   "invariants <file> <index>",
		Short: "Blow down an example and print its invariants",
		Long: `Contract the exceptional curves of an example in reverse creation order and
print the revised K², the double points, the multiplicity histogram of the
surviving exceptional curves, P, K and the orbifold Chern numbers.

The invariants are undefined when a contraction would break normal crossings.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, index, err := exampleArgs(args)
			if err != nil {
				return err
			}
			return c.runInvariants(cmd, path, index, opts)
		},
	}
	cmd.Flags().IntVar(&opts.precision, "precision", -1, "decimals of the rounded c1²/c2 (default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

func (c *CLI) runInvariants(cmd *cobra.Command, path string, index int, opts invariantsOpts) error {
	ctx := cmd.Context()
	g, ex, err := loadExample(path, index)
	if err != nil {
		return err
	}
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
	res, hit, err := runner.AnalyzeWithCacheInfo(ctx, g, ex, aopts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	prec, err := c.precision(opts.precision)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("Example %d", ex.Index))+" "+StyleDim.Render(res.Shape)+" "+cacheStatus(hit))
	printInvariants(out, g, res, prec)
	return nil
}

func printInvariants(out io.Writer, g *divisor.Graph, res *analysis.Result, prec int) {
	bd := res.Blowdown
	printKeyValue(out, "Contracted", strconv.Itoa(bd.Contracted))
	printKeyValue(out, "K²", strconv.FormatInt(bd.RevisedK2, 10))
	if len(bd.Deleted) > 0 {
		printKeyValue(out, "Deleted", strings.Join(curveNames(g, bd.Deleted), ", "))
	}
	if !bd.NormalCrossing {
		msg := "not normal crossing, invariants undefined"
		if bd.StoppedAt >= 0 {
			msg = fmt.Sprintf("not normal crossing at %s, invariants undefined", g.Name(bd.StoppedAt))
		}
		printWarning(out, "%s", msg)
		return
	}

	inv := res.Invariants
	if len(inv.Surviving) > 0 {
		printKeyValue(out, "Surviving", strings.Join(curveNames(g, inv.Surviving), ", "))
	}
	printKeyValue(out, "Double points", strconv.FormatInt(inv.DoublePoints2/2, 10))
	if keys := inv.HistogramKeys(); len(keys) > 0 {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%d×m%d", inv.Histogram[k], k)
		}
		printKeyValue(out, "Multiplicities", strings.Join(parts, " "))
	}
	printKeyValue(out, "P, K", fmt.Sprintf("%d, %d", inv.P, inv.K))
	printKeyValue(out, "c1², c2", fmt.Sprintf("%d, %d", inv.C1Sq, inv.C2))
	ratio := res.Ratio
	if r, ok := inv.Rounded(prec); ok {
		ratio += " ≈ " + r
	}
	printKeyValue(out, "c1²/c2", StyleNumber.Render(ratio))
}

// precision returns flag when set, the configured summary precision
// otherwise.
func (c *CLI) precision(flag int) (int, error) {
	if flag >= 0 {
		return flag, errors.ValidatePrecision(flag)
	}
	cfg, err := c.config()
	if err != nil {
		return 0, err
	}
	return cfg.Summary.Precision, nil
}
