// Package invariant computes the numerical invariants of a contracted
// divisor configuration: the double-point count, the multiplicity histogram
// of surviving exceptional curves, the P and K counts, and the orbifold
// Chern numbers c1² and c2.
//
// All values are exact integers. The ratio c1²/c2 is only ever reported as a
// [Fraction].
package invariant

import (
	"maps"
	"slices"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor/transform"
)

// Record holds the invariants of one contracted example.
//
// When NormalCrossing is false the formulas do not apply: the numeric fields
// are zero and must not be displayed. Check [Record.Defined] first.
type Record struct {
	NormalCrossing bool

	// Used is used ∪ surviving exceptional curves, sorted.
	Used      []int
	Surviving []int

	DoublePoints2 int64
	Histogram     map[int]int // degree -> number of surviving exceptional curves

	P, K     int64
	C1Sq, C2 int64
}

// Defined reports whether the record carries meaningful values.
func (r Record) Defined() bool { return r.NormalCrossing }

// Ratio returns c1²/c2 as a reduced fraction. It is undefined when the record
// is undefined or c2 is zero.
func (r Record) Ratio() Fraction {
	if !r.Defined() {
		return Fraction{Undefined: true}
	}
	return NewFraction(r.C1Sq, r.C2)
}

// Rounded returns c1²/c2 rounded to prec decimal places, for display only.
func (r Record) Rounded(prec int) (string, bool) {
	return r.Ratio().Decimal(prec)
}

// HistogramKeys returns the degrees present in the histogram in increasing
// order.
func (r Record) HistogramKeys() []int {
	return slices.Sorted(maps.Keys(r.Histogram))
}

// Compute derives the invariants of a blow-down result. used is the
// selection's used list; the surviving exceptional curves of res are added
// to it.
func Compute(res *transform.BlowdownResult, used []int) Record {
	if !res.NormalCrossing {
		return Record{}
	}
	g := res.Graph
	surv := slices.Clone(res.Surviving())

	all := append(slices.Clone(used), surv...)
	slices.Sort(all)
	all = slices.Compact(all)

	rec := Record{
		NormalCrossing: true,
		Used:           all,
		Surviving:      surv,
		Histogram:      make(map[int]int),
	}
	for _, c := range all {
		rec.DoublePoints2 += int64(g.Degree(c))
	}
	for _, e := range surv {
		rec.Histogram[g.Degree(e)]++
	}

	dp2 := rec.DoublePoints2
	nSurv, nUsed := int64(len(surv)), int64(len(all))

	rec.P = -dp2
	rec.K = res.RevisedK2 - dp2/2
	rec.C1Sq = -nSurv - 4*nUsed + dp2
	rec.C2 = 12 + nSurv - 2*nUsed + dp2/2

	for _, c := range all {
		rec.P += g.SelfInt[c] + 5
		rec.K += 2
		rec.C1Sq -= g.SelfInt[c]
	}
	rec.K -= rec.P

	for m, count := range rec.Histogram {
		rec.P += int64(2*m-4) * int64(count)
		rec.K += int64(2-m) * int64(count)
	}
	return rec
}
