package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/config"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/observability"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
	"github.com/jereyes4/Wahl-Chains/pkg/render/latex"
	"github.com/jereyes4/Wahl-Chains/pkg/store"
)

const defaultSummaryOutput = "OUT.tex"

type summaryOpts struct {
	all        bool
	columns    config.Summary
	output     string
	workers    int
	verify     bool
	store      bool
	mongoURI   string
	precision  int
	noProgress bool
}

// summaryCommand writes the LaTeX summary of a file.
func (c *CLI) summaryCommand() *cobra.Command {
	opts := summaryOpts{output: defaultSummaryOutput, precision: -1}
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Write a LaTeX longtable summary of every example",
		Long: `Write one longtable per run of examples sharing the number of singularities
and K². Column flags add to the columns enabled in the [summary] section of the
config file. Nef, obstruction and effective columns are only written when the
graph record says the search performed that check.

With --store the analysis results are also saved to MongoDB under a new run ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSummary(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.all, "all", "a", false, "enable every column and subsections")
	f.BoolVarP(&opts.columns.Subsection, "subsection", "s", false, "write a subsection before each table")
	f.BoolVarP(&opts.columns.Nef, "nef", "n", false, "nef column")
	f.BoolVarP(&opts.columns.Obstruction, "obstruction", "b", false, "obstruction column")
	f.BoolVarP(&opts.columns.Effective, "effective", "e", false, "Q-effective column")
	f.BoolVarP(&opts.columns.GCD, "gcd", "g", false, "gcd of the denominators (two singularities)")
	f.BoolVarP(&opts.columns.Chern, "chern", "c", false, "orbifold Chern numbers column")
	f.BoolVarP(&opts.columns.PK, "pk", "p", false, "(P,K) column")
	f.BoolVarP(&opts.columns.LengthSort, "length-sort", "l", false, "order the two chains by length first")
	f.BoolVarP(&opts.columns.Fraction, "fraction", "f", false, "print c1²/c2 instead of (c1², c2)")
	f.BoolVarP(&opts.columns.Determinant, "determinant", "d", false, "determinant column")
	f.BoolVarP(&opts.columns.Base, "base", "B", false, "sort by used base curves and add their code")
	f.StringVarP(&opts.output, "output", "o", opts.output, "output file, - for stdout")
	f.IntVar(&opts.precision, "precision", opts.precision, "decimals of c1²/c2 with --fraction (default from config)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "parallel analyses (default from config, else CPU count)")
	f.BoolVar(&opts.verify, "verify", false, "cross-check determinants by cofactor expansion")
	f.BoolVar(&opts.store, "store", false, "save the analysis results to MongoDB")
	f.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI (default from config)")
	f.BoolVar(&opts.noProgress, "no-progress", false, "do not show the progress spinner")
	return cmd
}

// latexOptions merges the config file columns with the flags.
func (c *CLI) latexOptions(opts summaryOpts) (latex.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return latex.Options{}, err
	}
	s, f := cfg.Summary, opts.columns
	out := latex.Options{
		Nef:         s.Nef || f.Nef,
		Obstruction: s.Obstruction || f.Obstruction,
		Effective:   s.Effective || f.Effective,
		GCD:         s.GCD || f.GCD,
		Chern:       s.Chern || f.Chern,
		PK:          s.PK || f.PK,
		Determinant: s.Determinant || f.Determinant,
		Fraction:    s.Fraction || f.Fraction,
		LengthSort:  s.LengthSort || f.LengthSort,
		Base:        s.Base || f.Base,
		Subsection:  s.Subsection || f.Subsection,
		Precision:   s.Precision,
	}
	if opts.all {
		all := latex.All()
		all.Fraction, all.LengthSort, all.Base = out.Fraction, out.LengthSort, out.Base
		all.Precision = out.Precision
		out = all
	}
	if opts.precision >= 0 {
		if err := errors.ValidatePrecision(opts.precision); err != nil {
			return latex.Options{}, err
		}
		out.Precision = opts.precision
	}
	return out, nil
}

func (c *CLI) runSummary(cmd *cobra.Command, path string, opts summaryOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	status := cmd.ErrOrStderr()
	sw := newStopwatch(logger)

	f, err := loadFile(path)
	if err != nil {
		return err
	}
	sw.lap("load")
	lopts, err := c.latexOptions(opts)
	if err != nil {
		return err
	}
	lopts, dropped := lopts.Resolve(f.Graph.Meta)
	for _, msg := range dropped {
		printWarning(status, "%s", msg)
	}

	var batch *analysis.BatchResult
	if lopts.NeedsAnalysis() || opts.store {
		if batch, err = c.runBatch(ctx, cmd, f, opts); err != nil {
			return err
		}
		sw.lap("analyze")
	}

	var buf bytes.Buffer
	var results []analysis.ExampleResult
	if batch != nil {
		results = batch.Results
	}
	if err := latex.Write(&buf, f, results, lopts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write summary")
	}
	sw.lap("render")
	if opts.output == "-" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
	} else {
		if err := errors.ValidatePath(opts.output); err != nil {
			return err
		}
		if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
		}
		printSuccess(status, "Wrote summary of %d examples", len(f.Examples))
		printFile(status, opts.output)
	}

	if opts.store {
		if err := c.storeResults(ctx, batch, opts.mongoURI); err != nil {
			return err
		}
		printSuccess(status, "Stored run %s", batch.RunID)
	}
	sw.done("summary complete", "examples", len(f.Examples))
	return nil
}

// runBatch analyzes every example of f behind a progress spinner.
func (c *CLI) runBatch(ctx context.Context, cmd *cobra.Command, f *record.File, opts summaryOpts) (*analysis.BatchResult, error) {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	aopts, err := c.analysisOptions(ctx, opts.verify, opts.workers)
	if err != nil {
		return nil, err
	}

	var sp *Spinner
	if !opts.noProgress {
		sp = newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("analyzing %d examples", len(f.Examples)))
		hooks := &batchProgress{spinner: sp}
		prev := observability.Analysis()
		observability.SetAnalysisHooks(hooks)
		defer observability.SetAnalysisHooks(prev)
		sp.Start()
		defer sp.Stop()
	}

	batch, err := runner.Batch(ctx, f, aopts)
	if err != nil {
		if sp != nil {
			sp.StopWithError("analysis stopped")
		}
		return nil, err
	}
	if sp != nil {
		sp.StopWithSuccess("analyzed %d examples in %s", batch.Stats.Examples, batch.Stats.Duration.Round(time.Millisecond))
	}
	if s := batch.Stats; s.Failed > 0 {
		printWarning(cmd.ErrOrStderr(), "%d of %d examples failed, their columns are left undefined", s.Failed, s.Examples)
	}
	return batch, nil
}

func (c *CLI) storeResults(ctx context.Context, batch *analysis.BatchResult, uri string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if uri == "" {
		uri = cfg.Store.MongoURI
	}
	if uri == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "--store needs --mongo-uri or store.mongo_uri in the config file")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	s, err := store.NewMongoStore(connectCtx, store.MongoOptions{
		URI:        uri,
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
	})
	if err != nil {
		return err
	}
	defer s.Close(context.WithoutCancel(ctx))
	return s.Save(ctx, batch.RunID, batch.Results)
}

// batchProgress reports batch progress on a spinner.
type batchProgress struct {
	observability.NoopAnalysisHooks
	spinner *Spinner
	total   atomic.Int64
	done    atomic.Int64
}

func (p *batchProgress) OnBatchStart(_ context.Context, _ string, examples int) {
	p.total.Store(int64(examples))
}

func (p *batchProgress) OnAnalyzeComplete(context.Context, int, time.Duration, error) {
	p.spinner.SetMessage("analyzed %d/%d examples", p.done.Add(1), p.total.Load())
}
