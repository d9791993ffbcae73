package transform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
)

var (
	// ErrStaleReference is returned when a curve scheduled for contraction
	// meets a curve that has already been deleted or contracted.
	ErrStaleReference = errors.New("neighbor was already removed")

	// ErrOrderViolation is returned when a curve is scheduled for contraction
	// before an exceptional neighbor created after it that is itself
	// scheduled later. Contractions must run from the most recent blow-up
	// backwards.
	ErrOrderViolation = errors.New("contraction order violates blow-up order")

	// ErrSelfLoop is returned when a curve scheduled for contraction meets
	// itself. A (-1)-curve with a node cannot be blown down.
	ErrSelfLoop = errors.New("curve scheduled for contraction meets itself")
)

// BlowdownResult is the outcome of [Blowdown].
type BlowdownResult struct {
	// Graph is the working copy after all performed contractions. Deleted
	// and contracted curves keep their index but have no neighbors, and
	// Graph.Exceptional lists only the surviving exceptional curves.
	Graph *divisor.Graph

	// NormalCrossing is false if a contraction would have produced a point
	// where more than two components meet, or if two surviving exceptional
	// curves intersect.
	NormalCrossing bool

	// RevisedK2 is the input K2 plus one for every performed contraction.
	RevisedK2 int64

	// Contracted counts the performed contractions.
	Contracted int

	// StoppedAt is the curve whose contraction was refused by the
	// normal-crossing check, or -1. When set, that curve and every later
	// entry of the order are left uncontracted.
	StoppedAt int

	// Deleted lists the unused base curves removed before contracting.
	Deleted []int
}

// Surviving returns the exceptional curves that were not contracted.
func (r *BlowdownResult) Surviving() []int {
	return r.Graph.Exceptional
}

// Blowdown contracts the exceptional curves of sel.BlowdownOrder, in that
// order, on a clone of g.
//
// Base curves not in sel.Used are deleted first. Contracting e removes it
// from each of its neighbors, raises each neighbor's self-intersection by
// one, and joins every pair of neighbors that met e with a new edge. If e
// meets more than one exceptional curve and at least one base curve, the
// point it contracts to would not be normal crossing: the loop stops there
// and e is left in place.
//
// g and sel are validated first. Before each contraction Blowdown also checks
// that e has no self-loop, that none of its neighbors was removed earlier
// (ErrStaleReference), and that no exceptional neighbor created after e is
// still waiting in the order (ErrOrderViolation).
func Blowdown(g *divisor.Graph, sel divisor.Selection) (*BlowdownResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := sel.Validate(g); err != nil {
		return nil, err
	}
	return contract(g.Clone(), sel)
}

// contract runs the deletion and contraction steps of [Blowdown] on w in
// place. w and sel are assumed valid.
func contract(w *divisor.Graph, sel divisor.Selection) (*BlowdownResult, error) {
	n := w.Len()
	res := &BlowdownResult{
		Graph:          w,
		NormalCrossing: true,
		RevisedK2:      w.K2,
		StoppedAt:      -1,
	}

	alive := make([]bool, n)
	used := make([]bool, n)
	for _, c := range sel.Used {
		used[c] = true
	}
	exc := make([]bool, n)
	for _, e := range w.Exceptional {
		exc[e] = true
	}
	// pending[c] is true while c is still waiting in the order.
	pending := make([]bool, n)
	for _, e := range sel.BlowdownOrder {
		pending[e] = true
	}

	for c := range n {
		alive[c] = used[c] || exc[c]
		if !alive[c] {
			res.Deleted = append(res.Deleted, c)
		}
	}
	for _, c := range res.Deleted {
		for _, b := range w.Adjacency[c] {
			if b != c {
				w.Adjacency[b] = removeAll(w.Adjacency[b], c)
			}
		}
		w.Adjacency[c] = nil
	}

	for _, e := range sel.BlowdownOrder {
		pending[e] = false
		neighbors := slices.Clone(w.Adjacency[e])

		otherExc := 0
		for _, c := range neighbors {
			switch {
			case c == e:
				return nil, fmt.Errorf("curve %d: %w", e, ErrSelfLoop)
			case !alive[c]:
				// Deletion and contraction strip every back-reference, so
				// this only fires on an asymmetric adjacency that skipped
				// Validate.
				return nil, fmt.Errorf("curve %d: neighbor %d: %w", e, c, ErrStaleReference)
			case exc[c] && c > e && pending[c]:
				return nil, fmt.Errorf("curve %d: neighbor %d: %w", e, c, ErrOrderViolation)
			}
			if exc[c] {
				otherExc++
			}
		}

		if otherExc > 1 && len(neighbors) != otherExc {
			res.NormalCrossing = false
			res.StoppedAt = e
			break
		}

		for i, c := range neighbors {
			w.Adjacency[c] = removeOne(w.Adjacency[c], e)
			w.SelfInt[c]++
			for _, c2 := range neighbors[i+1:] {
				w.Adjacency[c] = append(w.Adjacency[c], c2)
				w.Adjacency[c2] = append(w.Adjacency[c2], c)
			}
		}
		w.Adjacency[e] = nil
		alive[e] = false
		exc[e] = false
		res.RevisedK2++
		res.Contracted++
	}

	w.Exceptional = slices.DeleteFunc(w.Exceptional, func(e int) bool { return !exc[e] })

	if res.NormalCrossing {
		res.NormalCrossing = !exceptionalCurvesMeet(w)
	}
	return res, nil
}

// exceptionalCurvesMeet reports whether any two exceptional curves of g are
// adjacent.
func exceptionalCurvesMeet(g *divisor.Graph) bool {
	for _, e := range g.Exceptional {
		for _, c := range g.Adjacency[e] {
			if g.IsExceptional(c) {
				return true
			}
		}
	}
	return false
}

func removeOne(s []int, v int) []int {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}

func removeAll(s []int, v int) []int {
	return slices.DeleteFunc(s, func(x int) bool { return x == v })
}
