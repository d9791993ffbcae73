package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/observability"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// Batch analyzes every example of f with at most opts.Workers running at
// once. The full projected matrix is computed once and shared. Per-example
// failures are recorded on the example's result; Batch itself fails only on
// invalid options, an invalid graph or context cancellation.
func (r *Runner) Batch(ctx context.Context, f *record.File, opts Options) (*BatchResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := f.Graph.Validate(); err != nil {
		return nil, invalidGraph(err)
	}
	hash, err := GraphHash(f.Graph)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}

	runID := uuid.New().String()
	logger := r.logger(opts).With("run", runID[:8])
	hooks := observability.Analysis()
	hooks.OnBatchStart(ctx, runID, len(f.Examples))
	start := time.Now()

	full := r.fullMatrix(ctx, f.Graph, hash, opts.Refresh)
	results := make([]ExampleResult, len(f.Examples))

	var eg errgroup.Group
	eg.SetLimit(opts.Workers)
	for i, ex := range f.Examples {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			res, hit, err := r.analyzeExample(ctx, f.Graph, hash, ex, full, logger, opts)
			results[i] = ExampleResult{Index: ex.Index, Result: res, Err: err, CacheHit: hit}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch %s: %w", runID, err)
	}

	out := &BatchResult{RunID: runID, Results: results}
	out.Stats = summarize(results)
	out.Stats.Duration = time.Since(start)
	hooks.OnBatchComplete(ctx, runID, out.Stats.Failed, out.Stats.Duration)

	for _, res := range results {
		if res.Err != nil {
			logger.Warn("example failed", "index", res.Index, "err", errors.UserMessage(res.Err))
		}
	}
	logger.Info("batch complete",
		"examples", out.Stats.Examples,
		"failed", out.Stats.Failed,
		"singular", out.Stats.Singular,
		"non_normal", out.Stats.NonNormal,
		"cache_hits", out.Stats.CacheHits,
		"duration", out.Stats.Duration)
	return out, nil
}

func summarize(results []ExampleResult) Stats {
	s := Stats{Examples: len(results)}
	for _, res := range results {
		switch {
		case res.Err != nil:
			s.Failed++
			continue
		case res.CacheHit:
			s.CacheHits++
		}
		if res.Result.Singular() {
			s.Singular++
		}
		if !res.Result.Blowdown.NormalCrossing {
			s.NonNormal++
		}
	}
	return s
}
