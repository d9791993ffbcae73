// Package divisor provides the data model for exceptional divisor graphs
// produced by sequences of point blow-ups on a surface.
//
// # Overview
//
// A configuration of curves is stored as an undirected multigraph. Each
// vertex is a curve, identified by an integer index in [0, N). Base curves
// come first; exceptional curves follow in the order they were created by
// blow-ups. Two curves may meet more than once, so neighbor lists are
// multisets: curve b appears k times in Adjacency[a] exactly when a appears
// k times in Adjacency[b].
//
// Every curve carries its self-intersection number in the total
// configuration (all blow-ups applied). The graph also carries the K² value
// of the surface the configuration lives on, which is the starting point of
// the invariant computations performed after blowing curves down.
//
// # Ownership
//
// A [Graph] handed to this module is treated as immutable input. Algorithms
// that need to mutate adjacency or self-intersections work on a private copy
// obtained from [Graph.Clone]; the caller's graph is never modified.
//
// # Selections
//
// A [Selection] names the curves relevant to one example (Used) and the order
// in which exceptional curves are contracted (BlowdownOrder). Use
// [Selection.Validate] to reject malformed selections before running any
// algorithm; validation fails fast and names the offending curve.
//
// # Concurrency
//
// Graph and Selection values have no internal synchronization. Concurrent
// readers are safe as long as nobody mutates them; algorithms in
// [github.com/jereyes4/Wahl-Chains/pkg/divisor/transform] only read them.
package divisor
