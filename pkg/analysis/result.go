package analysis

import (
	"time"

	"github.com/jereyes4/Wahl-Chains/pkg/intmat"
	"github.com/jereyes4/Wahl-Chains/pkg/invariant"
)

// Result is the outcome of analyzing one selection.
type Result struct {
	Index int    `json:"index,omitempty"`
	Shape string `json:"shape,omitempty"`

	// BaseUsed indexes the rows of Matrix.
	BaseUsed    []int         `json:"base_used"`
	Matrix      intmat.Matrix `json:"matrix"`
	Determinant int64         `json:"determinant"`
	Verified    bool          `json:"verified,omitempty"`

	Blowdown   Contraction      `json:"blowdown"`
	Invariants invariant.Record `json:"invariants"`

	// Ratio is c1²/c2 as a reduced fraction, "undefined" when it has none.
	Ratio string `json:"ratio"`
}

// Singular reports whether the projected matrix has determinant zero.
func (r *Result) Singular() bool { return r.Determinant == 0 }

// Contraction summarizes a blow-down result without its working graph.
type Contraction struct {
	NormalCrossing bool  `json:"normal_crossing"`
	RevisedK2      int64 `json:"revised_k2"`
	Contracted     int   `json:"contracted"`
	StoppedAt      int   `json:"stopped_at"`
	Surviving      []int `json:"surviving"`
	Deleted        []int `json:"deleted"`
}

// ExampleResult is one entry of a batch. Exactly one of Result and Err is
// set.
type ExampleResult struct {
	Index    int
	Result   *Result
	Err      error
	CacheHit bool
}

// Stats aggregates a batch run.
type Stats struct {
	Examples  int
	Failed    int
	Singular  int
	NonNormal int
	CacheHits int
	Duration  time.Duration
}

// BatchResult is the outcome of [Runner.Batch].
type BatchResult struct {
	RunID   string
	Results []ExampleResult
	Stats   Stats
}
