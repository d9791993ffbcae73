package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/invariant"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
	"github.com/jereyes4/Wahl-Chains/pkg/render/latex"
)

type realizableOpts struct {
	k2        int64
	dir       string
	stdout    bool
	precision int
	workers   int
}

// realizableCommand writes the realizable-configuration tables of one or
// more files.
func (c *CLI) realizableCommand() *cobra.Command {
	opts := realizableOpts{k2: 5, dir: ".", precision: -1}
	cmd := &cobra.Command{
		Use:   "realizable <file>...",
		Short: "Write LaTeX tables of realizable configurations for one K²",
		Long: `Blow down every example with the given K² and tabulate the used base curves by
their type downstairs (e columns), the points of the surviving exceptional
curves (t columns) and c1²/c2. Rows repeating the previous row's values are
dropped.

One table is written per number of chains, to Found_K<k2>P<chains>.tex in
--dir, or all of them to standard output with --stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRealizable(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.k2, "k2", opts.k2, "K² of the examples to tabulate")
	f.StringVarP(&opts.dir, "dir", "d", opts.dir, "output directory")
	f.BoolVar(&opts.stdout, "stdout", false, "write the tables to standard output")
	f.IntVar(&opts.precision, "precision", opts.precision, "decimals of c1²/c2 (default from config)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "parallel analyses (default from config, else CPU count)")
	return cmd
}

func (c *CLI) runRealizable(cmd *cobra.Command, paths []string, opts realizableOpts) error {
	ctx := cmd.Context()
	sw := newStopwatch(loggerFromContext(ctx))
	status := cmd.ErrOrStderr()

	prec, err := c.precision(opts.precision)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()
	aopts, err := c.analysisOptions(ctx, false, opts.workers)
	if err != nil {
		return err
	}

	var rows []latex.RealizableRow
	for _, path := range paths {
		f, err := loadFile(path)
		if err != nil {
			return err
		}
		sub := &record.File{Graph: f.Graph}
		for _, ex := range f.Examples {
			if ex.K2 == opts.k2 {
				sub.Examples = append(sub.Examples, ex)
			}
		}
		if len(sub.Examples) == 0 {
			continue
		}
		batch, err := runner.Batch(ctx, sub, aopts)
		if err != nil {
			return err
		}
		canonical := invariant.DownstairsCanonical(f.Graph)
		source := filepath.Base(path)
		for i, res := range batch.Results {
			if res.Err != nil {
				continue
			}
			row, ok, err := latex.NewRealizableRow(source, sub.Examples[i], res.Result.Invariants, canonical)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidRecord, err, "%s", path)
			}
			if ok {
				rows = append(rows, row)
			}
		}
	}
	sw.lap("analyze")

	written := 0
	for chains := 1; chains <= 2; chains++ {
		if !hasChains(rows, chains) {
			continue
		}
		ropts := latex.RealizableOptions{Chains: chains, K2: opts.k2, Precision: prec}
		var buf bytes.Buffer
		if err := latex.WriteRealizable(&buf, rows, ropts); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write table")
		}
		written++
		if opts.stdout {
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
			continue
		}
		name := filepath.Join(opts.dir, fmt.Sprintf("Found_K%dP%d.tex", opts.k2, chains))
		if err := errors.ValidatePath(name); err != nil {
			return err
		}
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", name)
		}
		printFile(status, name)
	}
	if written == 0 {
		printWarning(status, "no realizable configurations with K² = %d", opts.k2)
	}
	sw.done("realizable complete", "rows", len(rows), "tables", written)
	return nil
}

func hasChains(rows []latex.RealizableRow, chains int) bool {
	for _, r := range rows {
		if r.Chains == chains {
			return true
		}
	}
	return false
}
