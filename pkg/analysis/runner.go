package analysis

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jereyes4/Wahl-Chains/pkg/cache"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/divisor/transform"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/intmat"
	"github.com/jereyes4/Wahl-Chains/pkg/invariant"
	"github.com/jereyes4/Wahl-Chains/pkg/observability"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// Runner analyzes examples with caching. It holds no per-run state, so one
// Runner can serve concurrent callers with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default expiration of cached entries when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer means cache.DefaultKeyer, a nil
// cache disables caching and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// matrixFunc yields the full projected matrix of a graph, computed once.
type matrixFunc func() (intmat.Matrix, error)

// GraphHash hashes the parts of g the engine reads. Names, fibers and check
// flags do not change any result and are left out.
func GraphHash(g *divisor.Graph) (string, error) {
	return cache.HashJSON(struct {
		Adjacency   [][]int `json:"graph"`
		SelfInt     []int64 `json:"selfint"`
		Exceptional []int   `json:"blps"`
		K2          int64   `json:"K2"`
	}{g.Adjacency, g.SelfInt, g.Exceptional, g.K2})
}

// Analyze runs one example of g.
func (r *Runner) Analyze(ctx context.Context, g *divisor.Graph, ex *record.Example, opts Options) (*Result, error) {
	res, _, err := r.AnalyzeWithCacheInfo(ctx, g, ex, opts)
	return res, err
}

// AnalyzeWithCacheInfo runs one example and reports whether the result came
// from the cache.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *divisor.Graph, ex *record.Example, opts Options) (*Result, bool, error) {
	if err := g.Validate(); err != nil {
		return nil, false, invalidGraph(err)
	}
	hash, err := GraphHash(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	full := r.fullMatrix(ctx, g, hash, opts.Refresh)
	return r.analyzeExample(ctx, g, hash, ex, full, r.logger(opts), opts)
}

// AnalyzeSelection runs an arbitrary selection of g. It backs the HTTP API,
// where no example record exists.
func (r *Runner) AnalyzeSelection(ctx context.Context, g *divisor.Graph, sel divisor.Selection, opts Options) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, invalidGraph(err)
	}
	hash, err := GraphHash(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	res, _, err := r.run(ctx, g, hash, sel, r.fullMatrix(ctx, g, hash, opts.Refresh), opts)
	return res, err
}

// Project returns the projected intersection matrix of the base curves in
// used, reading the full matrix of g from the cache when possible.
func (r *Runner) Project(ctx context.Context, g *divisor.Graph, used []int, opts Options) (*transform.Projection, error) {
	if err := g.Validate(); err != nil {
		return nil, invalidGraph(err)
	}
	hash, err := GraphHash(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	full, err := r.fullMatrix(ctx, g, hash, opts.Refresh)()
	if err != nil {
		return nil, Classify(err)
	}
	p, err := transform.Restrict(g, full, used)
	if err != nil {
		return nil, Classify(err)
	}
	return p, nil
}

func (r *Runner) analyzeExample(ctx context.Context, g *divisor.Graph, hash string, ex *record.Example,
	full matrixFunc, logger *log.Logger, opts Options) (*Result, bool, error) {
	hooks := observability.Analysis()
	hooks.OnAnalyzeStart(ctx, ex.Index)
	start := time.Now()

	res, hit, err := r.run(ctx, g, hash, ex.Selection(), full, opts)
	hooks.OnAnalyzeComplete(ctx, ex.Index, time.Since(start), err)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Message = fmt.Sprintf("example %d: %s", ex.Index, e.Message)
		}
		return nil, false, err
	}
	res.Index = ex.Index
	res.Shape = ex.Shape.String()

	logger.Debug("analyzed example",
		"index", ex.Index,
		"shape", res.Shape,
		"det", res.Determinant,
		"normal_crossing", res.Blowdown.NormalCrossing,
		"cached", hit,
		"duration", time.Since(start))
	return res, hit, nil
}

// run looks the selection up in the cache and computes it on a miss.
func (r *Runner) run(ctx context.Context, g *divisor.Graph, hash string, sel divisor.Selection,
	full matrixFunc, opts Options) (*Result, bool, error) {
	selHash, err := cache.HashJSON(sel)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash selection")
	}
	key := r.Keyer.AnalysisKey(hash, selHash, opts.keyOpts())

	if !opts.Refresh {
		var res Result
		if r.lookup(ctx, key, "analysis", &res) {
			return &res, true, nil
		}
	}

	res, err := compute(g, sel, full, opts)
	if err != nil {
		return nil, false, Classify(err)
	}
	r.store(ctx, key, "analysis", res, cache.TTLAnalysis)
	return res, false, nil
}

func compute(g *divisor.Graph, sel divisor.Selection, full matrixFunc, opts Options) (*Result, error) {
	if err := sel.Validate(g); err != nil {
		return nil, err
	}
	m, err := full()
	if err != nil {
		return nil, err
	}
	proj, err := transform.Restrict(g, m, sel.Used)
	if err != nil {
		return nil, err
	}
	det, err := intmat.DeterminantChecked(proj.Matrix)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BaseUsed:    proj.BaseUsed,
		Matrix:      proj.Matrix,
		Determinant: det,
	}
	if opts.Verify && proj.Matrix.Size() <= MaxVerifySize {
		if c := intmat.Cofactor(proj.Matrix); c != det {
			return nil, fmt.Errorf("%w: bareiss %d, cofactor %d", ErrDeterminantMismatch, det, c)
		}
		res.Verified = true
	}

	bd, err := transform.Blowdown(g, sel)
	if err != nil {
		return nil, err
	}
	res.Blowdown = Contraction{
		NormalCrossing: bd.NormalCrossing,
		RevisedK2:      bd.RevisedK2,
		Contracted:     bd.Contracted,
		StoppedAt:      bd.StoppedAt,
		Surviving:      bd.Surviving(),
		Deleted:        bd.Deleted,
	}
	res.Invariants = invariant.Compute(bd, sel.Used)
	res.Ratio = res.Invariants.Ratio().String()
	return res, nil
}

// fullMatrix returns a function computing the full projected matrix of g at
// most once, going through the projection cache.
func (r *Runner) fullMatrix(ctx context.Context, g *divisor.Graph, hash string, refresh bool) matrixFunc {
	return sync.OnceValues(func() (intmat.Matrix, error) {
		key := r.Keyer.ProjectionKey(hash)
		if !refresh {
			var m intmat.Matrix
			if r.lookup(ctx, key, "projection", &m) && m.Size() == g.Len() {
				return m, nil
			}
		}

		m, err := transform.ProjectFull(g)
		if err != nil {
			return nil, err
		}
		r.store(ctx, key, "projection", m, cache.TTLProjection)
		return m, nil
	})
}

// lookup decodes the entry under key into v. Entries that no longer decode
// are deleted and count as misses.
func (r *Runner) lookup(ctx context.Context, key, kind string, v any) bool {
	hooks := observability.Cache()
	hit, err := cache.GetJSON(ctx, r.Cache, key, v)
	if stderrors.Is(err, cache.ErrCorrupt) {
		r.Logger.Warn("dropping corrupt cache entry", "kind", kind, "err", err)
		if err := r.Cache.Delete(ctx, key); err != nil {
			r.Logger.Debug("delete cache entry", "kind", kind, "err", err)
		}
	}
	if hit {
		hooks.OnCacheHit(ctx, kind)
	} else {
		hooks.OnCacheMiss(ctx, kind)
	}
	return hit
}

func (r *Runner) store(ctx context.Context, key, kind string, v any, ttl time.Duration) {
	if n, err := cache.SetJSON(ctx, r.Cache, key, v, r.ttl(ttl)); err == nil {
		observability.Cache().OnCacheSet(ctx, kind, n)
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
