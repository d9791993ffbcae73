package analysis

import (
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/jereyes4/Wahl-Chains/pkg/cache"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

const (
	// MaxVerifySize is the largest matrix cross-checked by cofactor
	// expansion. Laplace expansion is factorial in the size.
	MaxVerifySize = 9
)

// DefaultWorkers returns the worker count used when Options.Workers is 0.
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 16)
}

// Options controls a single analysis or a batch.
type Options struct {
	// Verify recomputes the determinant by cofactor expansion and fails
	// the example when the two disagree. Matrices larger than
	// MaxVerifySize are not verified.
	Verify bool

	// Refresh skips cache reads. Results are still written.
	Refresh bool

	// Workers bounds batch parallelism. Zero means DefaultWorkers.
	Workers int

	Logger *log.Logger
}

// ValidateAndSetDefaults fills defaults and checks ranges.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Workers == 0 {
		o.Workers = DefaultWorkers()
	}
	return errors.ValidateWorkers(o.Workers)
}

func (o Options) keyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{Verify: o.Verify}
}
