package divisor

import (
	"fmt"
	"slices"
)

// Selection picks the part of a graph relevant to one example.
//
// Used lists the curves that take part in the example and may contain both
// base and exceptional curves. BlowdownOrder lists the exceptional curves to
// contract, in contraction order: the first entry is contracted first, so a
// topologically sound order starts from the most recently created curve.
type Selection struct {
	Used          []int
	BlowdownOrder []int
}

// Validate checks the selection against g and fails fast on the first
// problem, naming the offending curve:
//
//   - any index outside [0, N) wraps ErrCurveOutOfRange
//   - a curve listed twice in Used or BlowdownOrder wraps ErrDuplicateCurve
//   - a base curve in BlowdownOrder wraps ErrNotExceptional
//
// Validate never clamps or drops entries.
func (s Selection) Validate(g *Graph) error {
	seen := make(map[int]bool, len(s.Used))
	for _, c := range s.Used {
		if err := g.CheckCurve(c); err != nil {
			return fmt.Errorf("used: %w", err)
		}
		if seen[c] {
			return fmt.Errorf("used: curve %d: %w", c, ErrDuplicateCurve)
		}
		seen[c] = true
	}

	clear(seen)
	for _, e := range s.BlowdownOrder {
		if err := g.CheckCurve(e); err != nil {
			return fmt.Errorf("blowdown order: %w", err)
		}
		if seen[e] {
			return fmt.Errorf("blowdown order: curve %d: %w", e, ErrDuplicateCurve)
		}
		if !g.IsExceptional(e) {
			return fmt.Errorf("blowdown order: curve %d: %w", e, ErrNotExceptional)
		}
		seen[e] = true
	}
	return nil
}

// BaseUsed returns the base curves of Used sorted by index. This is the index
// set of the projected intersection matrix.
func (s Selection) BaseUsed(g *Graph) []int {
	return BaseUsed(g, s.Used)
}

// BaseUsed returns the members of used that are not exceptional in g, sorted
// in increasing order with duplicates removed.
func BaseUsed(g *Graph, used []int) []int {
	out := make([]int, 0, len(used))
	for _, c := range used {
		if !g.IsExceptional(c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
