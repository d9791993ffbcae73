// Package cli implements the wahl command-line interface.
//
// Every command reads a JSONL file produced by the chain search: a graph
// record followed by one example record per line. Examples are addressed by
// their 1-based position after the graph line.
//
// # Commands
//
//   - matrix: projected intersection matrix and determinant of an example
//   - invariants: blow-down and invariants of an example
//   - show: full text report of an example
//   - summary: LaTeX longtable of every example
//   - realizable: LaTeX tables of realizable configurations for one K²
//   - stats: surface, singularity and configuration counts per K²
//   - dot: Graphviz diagram of the (contracted) divisor graph
//   - browse: interactive example viewer
//   - serve: HTTP API
//   - cache, config: manage the analysis cache and the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context.
package cli

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/buildinfo"
	"github.com/jereyes4/Wahl-Chains/pkg/cache"
	"github.com/jereyes4/Wahl-Chains/pkg/config"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

const appName = "wahl"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	refresh    bool

	cfg *config.Config
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Wahl inspects divisor configurations found by the chain search",
		Long: `Wahl reads the JSONL output of the Wahl chain search and computes, for each
example, the intersection matrix of the base curves it uses, the blow-downs of
its exceptional curves and the resulting orbifold invariants.`,
		Version:      buildinfo.Resolved(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wahl/config.toml)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the analysis cache")
	pf.BoolVar(&c.refresh, "refresh", false, "recompute cached results")

	root.AddCommand(c.matrixCommand())
	root.AddCommand(c.invariantsCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.summaryCommand())
	root.AddCommand(c.realizableCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration file once.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// newRunner creates an analysis runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*analysis.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	var store cache.Cache = cache.NewNullCache()
	if !c.noCache {
		if store, err = cfg.Cache.Open(ctx); err != nil {
			return nil, err
		}
	}
	runner := analysis.NewRunner(store, nil, loggerFromContext(ctx))
	runner.TTL = cfg.Cache.TTL
	return runner, nil
}

// analysisOptions builds runner options from the configuration and flags.
func (c *CLI) analysisOptions(ctx context.Context, verify bool, workers int) (analysis.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return analysis.Options{}, err
	}
	if workers == 0 {
		workers = cfg.Analysis.Workers
	}
	opts := analysis.Options{
		Verify:  verify || cfg.Analysis.Verify,
		Refresh: c.refresh,
		Workers: workers,
		Logger:  loggerFromContext(ctx),
	}
	return opts, opts.ValidateAndSetDefaults()
}

// loadFile reads a whole JSONL file.
func loadFile(path string) (*record.File, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := record.ImportJSONL(path)
	if err != nil {
		return nil, recordError(err, path)
	}
	return f, nil
}

// loadExample reads the graph of path and its example at index.
func loadExample(path string, index int) (*divisor.Graph, *record.Example, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, nil, err
	}
	if err := errors.ValidateIndex(index); err != nil {
		return nil, nil, err
	}
	g, ex, err := record.ReadExample(path, index)
	if err != nil {
		return nil, nil, recordError(err, path)
	}
	return g, ex, nil
}

func recordError(err error, path string) error {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	case stderrors.Is(err, record.ErrExampleNotFound):
		return errors.Wrap(errors.ErrCodeExampleNotFound, err, "%s", path)
	default:
		return errors.Wrap(errors.ErrCodeInvalidRecord, err, "read %s", path)
	}
}
