package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/intmat"
)

// exampleArgs parses the "<file> <index>" arguments shared by the example
// commands.
func exampleArgs(args []string) (string, int, error) {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, errors.New(errors.ErrCodeInvalidInput, "example index %q is not a number", args[1])
	}
	return args[0], index, nil
}

type matrixOpts struct {
	verify bool
	json   bool
}

// matrixCommand prints the projected intersection matrix of an example.
func (c *CLI) matrixCommand() *cobra.Command {
	var opts matrixOpts
	cmd := &cobra.Command{
		Use:   "matrix <file> <index>",
		Short: "Print the intersection matrix of the base curves of an example",
		Long: `Print the intersection matrix of the base curves used by an example, after
every exceptional curve of the graph has been blown down, and its determinant.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, index, err := exampleArgs(args)
			if err != nil {
				return err
			}
			return c.runMatrix(cmd, path, index, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.verify, "verify", false, fmt.Sprintf("cross-check the determinant by cofactor expansion (up to %dx%d)", analysis.MaxVerifySize, analysis.MaxVerifySize))
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

func (c *CLI) runMatrix(cmd *cobra.Command, path string, index int, opts matrixOpts) error {
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
	aopts, err := c.analysisOptions(ctx, opts.verify, 0)
	if err != nil {
		return err
	}
	aopts.Logger = exampleLogger(ctx, ex)

	proj, err := runner.Project(ctx, g, ex.Used, aopts)
	if err != nil {
		return err
	}
	det, err := intmat.DeterminantChecked(proj.Matrix)
	if err != nil {
		return analysis.Classify(err)
	}
	verified := false
	if opts.verify && proj.Matrix.Size() <= analysis.MaxVerifySize {
		if cof := intmat.Cofactor(proj.Matrix); cof != det {
			return errors.Wrap(errors.ErrCodeInternal, analysis.ErrDeterminantMismatch, "bareiss %d, cofactor %d", det, cof)
		}
		verified = true
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			BaseUsed    []int         `json:"base_used"`
			Names       []string      `json:"names"`
			Matrix      intmat.Matrix `json:"matrix"`
			Determinant int64         `json:"determinant"`
			Verified    bool          `json:"verified"`
		}{proj.BaseUsed, curveNames(g, proj.BaseUsed), proj.Matrix, det, verified})
	}

	fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("Example %d", ex.Index))+" "+StyleDim.Render(ex.Shape.String()))
	if len(proj.BaseUsed) == 0 {
		printInfo(out, "no base curves used")
	} else {
		fmt.Fprintln(out, matrixTable(g, proj.BaseUsed, proj.Matrix))
	}
	printKeyValue(out, "Determinant", StyleNumber.Render(strconv.FormatInt(det, 10)))
	if verified {
		printSuccess(out, "determinant verified by cofactor expansion")
	} else if opts.verify {
		printWarning(out, "matrix larger than %d, not verified", analysis.MaxVerifySize)
	}
	return nil
}

func curveNames(g *divisor.Graph, curves []int) []string {
	names := make([]string, len(curves))
	for i, c := range curves {
		names[i] = g.Name(c)
	}
	return names
}
