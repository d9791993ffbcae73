// Package store persists batch analysis results.
//
// [MongoStore] writes one document per example of a run; [NullStore] is
// used when no database is configured.
package store

import (
	"context"
	"time"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

// Store saves the results of a batch run.
type Store interface {
	Save(ctx context.Context, runID string, results []analysis.ExampleResult) error
	Close(ctx context.Context) error
}

// Document is the stored form of one example result.
type Document struct {
	RunID     string    `bson:"run_id" json:"run_id"`
	Index     int       `bson:"index" json:"index"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	Shape       string    `bson:"shape,omitempty" json:"shape,omitempty"`
	BaseUsed    []int     `bson:"base_used,omitempty" json:"base_used,omitempty"`
	Determinant int64     `bson:"determinant" json:"determinant"`
	Matrix      [][]int64 `bson:"matrix,omitempty" json:"matrix,omitempty"`

	NormalCrossing bool        `bson:"normal_crossing" json:"normal_crossing"`
	RevisedK2      int64       `bson:"revised_k2" json:"revised_k2"`
	Invariants     *Invariants `bson:"invariants,omitempty" json:"invariants,omitempty"`

	ErrorCode string `bson:"error_code,omitempty" json:"error_code,omitempty"`
	Error     string `bson:"error,omitempty" json:"error,omitempty"`
}

// Invariants is the stored form of an invariant record. It is only set
// when the record is defined.
type Invariants struct {
	P     int64  `bson:"p" json:"p"`
	K     int64  `bson:"k" json:"k"`
	C1Sq  int64  `bson:"c1sq" json:"c1sq"`
	C2    int64  `bson:"c2" json:"c2"`
	Ratio string `bson:"ratio" json:"ratio"`
}

// Documents converts batch results into documents stamped with at.
func Documents(runID string, results []analysis.ExampleResult, at time.Time) []Document {
	docs := make([]Document, 0, len(results))
	for _, r := range results {
		d := Document{RunID: runID, Index: r.Index, CreatedAt: at.UTC()}
		if r.Err != nil {
			d.ErrorCode = string(errors.GetCode(r.Err))
			d.Error = errors.UserMessage(r.Err)
			docs = append(docs, d)
			continue
		}
		res := r.Result
		d.Shape = res.Shape
		d.BaseUsed = res.BaseUsed
		d.Determinant = res.Determinant
		d.Matrix = res.Matrix
		d.NormalCrossing = res.Blowdown.NormalCrossing
		d.RevisedK2 = res.Blowdown.RevisedK2
		if inv := res.Invariants; inv.Defined() {
			d.Invariants = &Invariants{P: inv.P, K: inv.K, C1Sq: inv.C1Sq, C2: inv.C2, Ratio: res.Ratio}
		}
		docs = append(docs, d)
	}
	return docs
}

// NullStore discards everything.
type NullStore struct{}

// Save implements Store.
func (NullStore) Save(context.Context, string, []analysis.ExampleResult) error { return nil }

// Close implements Store.
func (NullStore) Close(context.Context) error { return nil }

var _ Store = NullStore{}
