// Package transform derives new data from a [divisor.Graph] by contracting
// its exceptional curves.
//
// # Two Views of a Contraction
//
// The package offers two independent algorithms over the same input:
//
//   - [Project] computes the intersection form of the base curves after
//     every exceptional curve has been contracted, using the projection
//     formula on a dense multiplicity table. The graph itself is never
//     rewritten.
//   - [Blowdown] contracts a chosen subset of exceptional curves on a working
//     copy of the graph, one at a time, and reports whether the result is
//     still a normal-crossing configuration. The surviving adjacency feeds
//     the invariant calculation in package invariant.
//
// On a configuration where every exceptional curve is contracted in a valid
// order, both agree: the diagonal of the projected matrix equals the
// surviving self-intersections and the off-diagonal entries equal the
// surviving edge multiplicities.
//
// # Ownership
//
// Neither function mutates its argument. [Blowdown] clones the graph before
// the first change and returns the clone in [BlowdownResult].
//
// # Errors
//
// Invalid input is reported before any work is done, with sentinel errors
// from package divisor ([divisor.ErrCurveOutOfRange] and friends) or from
// this package ([ErrStaleReference], [ErrOrderViolation], [ErrSelfLoop]).
// A singular matrix or a non-normal-crossing result is a value, not an
// error.
package transform
