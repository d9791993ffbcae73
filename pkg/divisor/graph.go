package divisor

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrCurveOutOfRange is returned when a curve index lies outside [0, N).
	// Errors are wrapped with the offending index, use errors.Is to match.
	ErrCurveOutOfRange = errors.New("curve index out of range")

	// ErrDuplicateCurve is returned when a curve appears twice in a list that
	// must behave like a set (exceptional list, used list, blow-down order).
	ErrDuplicateCurve = errors.New("duplicate curve")

	// ErrNotExceptional is returned by [Selection.Validate] when the
	// blow-down order names a base curve. Only exceptional curves can be
	// contracted.
	ErrNotExceptional = errors.New("curve is not exceptional")

	// ErrExceptionalOrder is returned by [Graph.Validate] when the exceptional
	// list is not strictly increasing. Blow-up order is encoded by index.
	ErrExceptionalOrder = errors.New("exceptional curves must be strictly increasing")

	// ErrSelfIntLength is returned by [Graph.Validate] when the
	// self-intersection vector and the adjacency list disagree on N.
	ErrSelfIntLength = errors.New("self-intersection vector length does not match curve count")

	// ErrAsymmetricAdjacency is returned by [Graph.Validate] when curve b
	// appears k times among the neighbors of a but a does not appear k times
	// among the neighbors of b.
	ErrAsymmetricAdjacency = errors.New("adjacency is not symmetric")
)

// Metadata holds descriptive data carried by a graph record. None of it
// influences the contraction or intersection-form algorithms; it exists for
// display code and for fiber-based bookkeeping in summaries.
type Metadata struct {
	Names      []string       // display name per curve
	IDs        map[string]int // name -> curve index, as produced upstream
	Fibers     [][]int        // groups of curves forming singular fibers
	FiberTypes []string       // Kodaira type label per fiber

	// Flags reporting which optional checks the upstream search performed.
	NefCheck         bool
	EffectiveCheck   bool
	ObstructionCheck bool
}

// Graph is an exceptional divisor graph.
//
// Curves are indexed 0..N-1. Adjacency[i] lists the neighbors of curve i with
// multiplicity; SelfInt[i] is its self-intersection number. Exceptional lists
// the exceptional curves in strictly increasing index order, which is also
// their order of creation. K2 is the K² of the surface before any of the
// contractions performed by this module.
//
// The zero value is an empty graph with no curves.
type Graph struct {
	Adjacency   [][]int
	SelfInt     []int64
	Exceptional []int
	K2          int64
	Meta        Metadata
}

// Len returns the number of curves N.
func (g *Graph) Len() int { return len(g.Adjacency) }

// Degree returns the number of adjacency entries of curve c, counting
// multiplicity. A self-loop stored twice counts twice. Returns 0 for an index
// outside the graph.
func (g *Graph) Degree(c int) int {
	if c < 0 || c >= len(g.Adjacency) {
		return 0
	}
	return len(g.Adjacency[c])
}

// Multiplicity returns how many times b appears among the neighbors of a.
func (g *Graph) Multiplicity(a, b int) int {
	if a < 0 || a >= len(g.Adjacency) {
		return 0
	}
	n := 0
	for _, x := range g.Adjacency[a] {
		if x == b {
			n++
		}
	}
	return n
}

// IsExceptional reports whether c is an exceptional curve.
// Runs in O(log E) using the sorted exceptional list.
func (g *Graph) IsExceptional(c int) bool {
	_, ok := slices.BinarySearch(g.Exceptional, c)
	return ok
}

// ExceptionalRank returns the position of c in the blow-up order (0 for the
// first exceptional curve created) and true, or -1 and false if c is a base
// curve.
func (g *Graph) ExceptionalRank(c int) (int, bool) {
	i, ok := slices.BinarySearch(g.Exceptional, c)
	if !ok {
		return -1, false
	}
	return i, true
}

// Base returns the base (non-exceptional) curves in increasing order.
func (g *Graph) Base() []int {
	base := make([]int, 0, g.Len()-len(g.Exceptional))
	for c := range g.Len() {
		if !g.IsExceptional(c) {
			base = append(base, c)
		}
	}
	return base
}

// Name returns the display name of curve c, falling back to "C<c>" when the
// record carried no names.
func (g *Graph) Name(c int) string {
	if c >= 0 && c < len(g.Meta.Names) && g.Meta.Names[c] != "" {
		return g.Meta.Names[c]
	}
	return fmt.Sprintf("C%d", c)
}

// Clone returns a deep copy of the graph. Algorithms that mutate adjacency or
// self-intersections operate on clones so callers never observe partial
// mutation.
func (g *Graph) Clone() *Graph {
	adj := make([][]int, len(g.Adjacency))
	for i, nb := range g.Adjacency {
		adj[i] = slices.Clone(nb)
	}
	fibers := make([][]int, len(g.Meta.Fibers))
	for i, f := range g.Meta.Fibers {
		fibers[i] = slices.Clone(f)
	}
	var ids map[string]int
	if g.Meta.IDs != nil {
		ids = make(map[string]int, len(g.Meta.IDs))
		for k, v := range g.Meta.IDs {
			ids[k] = v
		}
	}
	return &Graph{
		Adjacency:   adj,
		SelfInt:     slices.Clone(g.SelfInt),
		Exceptional: slices.Clone(g.Exceptional),
		K2:          g.K2,
		Meta: Metadata{
			Names:            slices.Clone(g.Meta.Names),
			IDs:              ids,
			Fibers:           fibers,
			FiberTypes:       slices.Clone(g.Meta.FiberTypes),
			NefCheck:         g.Meta.NefCheck,
			EffectiveCheck:   g.Meta.EffectiveCheck,
			ObstructionCheck: g.Meta.ObstructionCheck,
		},
	}
}

// Validate checks structural integrity and returns nil if the graph is
// usable by the algorithms in this module. It verifies that:
//
//  1. SelfInt has one entry per curve
//  2. every neighbor index and every exceptional index lies in [0, N)
//  3. the exceptional list is strictly increasing
//  4. adjacency is symmetric as a multiset relation
//
// Validate does not check geometric realizability.
func (g *Graph) Validate() error {
	n := g.Len()
	if len(g.SelfInt) != n {
		return fmt.Errorf("%w: %d curves, %d self-intersections", ErrSelfIntLength, n, len(g.SelfInt))
	}
	for a, nb := range g.Adjacency {
		for _, b := range nb {
			if b < 0 || b >= n {
				return fmt.Errorf("neighbor %d of curve %d: %w", b, a, ErrCurveOutOfRange)
			}
		}
	}
	for i, e := range g.Exceptional {
		if e < 0 || e >= n {
			return fmt.Errorf("exceptional curve %d: %w", e, ErrCurveOutOfRange)
		}
		if i > 0 && g.Exceptional[i-1] >= e {
			return fmt.Errorf("exceptional curve %d: %w", e, ErrExceptionalOrder)
		}
	}
	return g.validateSymmetry()
}

func (g *Graph) validateSymmetry() error {
	n := g.Len()
	counts := make([]map[int]int, n)
	for a, nb := range g.Adjacency {
		counts[a] = make(map[int]int, len(nb))
		for _, b := range nb {
			counts[a][b]++
		}
	}
	for a := range n {
		for b, k := range counts[a] {
			if a == b {
				continue
			}
			if counts[b][a] != k {
				return fmt.Errorf("%w: curve %d meets %d %d times, reverse count %d",
					ErrAsymmetricAdjacency, a, b, k, counts[b][a])
			}
		}
	}
	return nil
}

// CheckCurve returns an error wrapping ErrCurveOutOfRange if c is not a
// valid curve index of g.
func (g *Graph) CheckCurve(c int) error {
	if c < 0 || c >= g.Len() {
		return fmt.Errorf("curve %d (graph has %d curves): %w", c, g.Len(), ErrCurveOutOfRange)
	}
	return nil
}
