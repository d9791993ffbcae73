package record

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
)

var (
	// ErrUnknownShape is returned when an example line matches none of the
	// known shapes.
	ErrUnknownShape = errors.New("unknown example shape")

	// ErrMissingField is returned when a field required by the example's
	// shape is absent.
	ErrMissingField = errors.New("missing field")

	// ErrMalformedFork is returned by [Example.Fork] when the fork does not
	// consist of three branches around its frame curve.
	ErrMalformedFork = errors.New("malformed fork")

	// ErrExampleNotFound is returned by [ReadExample] for an index outside
	// the file.
	ErrExampleNotFound = errors.New("example not found")

	// ErrEmptyFile is returned when the input has no graph line.
	ErrEmptyFile = errors.New("empty file")
)

// Shape identifies which kind of configuration an example describes.
type Shape int

const (
	ShapeSingleChain Shape = iota + 1 // one cyclic quotient chain
	ShapeDoubleChain                  // two disjoint chains
	ShapePExtremal                    // two chains from a P-extremal resolution
	ShapeSingleQHD                    // one QHD fork
	ShapeDoubleQHD                    // a QHD fork and a chain
)

var shapeNames = map[Shape]string{
	ShapeSingleChain: "single-chain",
	ShapeDoubleChain: "double-chain",
	ShapePExtremal:   "p-extremal",
	ShapeSingleQHD:   "single-qhd",
	ShapeDoubleQHD:   "double-qhd",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ChainCount returns how many singularities an example of this shape has.
func (s Shape) ChainCount() int {
	if s == ShapeSingleChain || s == ShapeSingleQHD {
		return 1
	}
	return 2
}

// HasFork reports whether the shape carries a QHD fork.
func (s Shape) HasFork() bool {
	return s == ShapeSingleQHD || s == ShapeDoubleQHD
}

// File is a decoded JSONL file: one graph and its examples in file order.
type File struct {
	Graph    *divisor.Graph
	Examples []*Example
}

// Chain is a linear chain of curves. Curves are local indices: values below
// len(Example.Used) name the used curve at that position, larger values are
// the extra curves *A_1, *A_2, ... created by extra blow-ups.
type Chain struct {
	Curves []int
	N      int64 // denominator of the singularity
}

// Len returns the number of curves in the chain.
func (c Chain) Len() int { return len(c.Curves) }

// ExtraBlowup records Count additional blow-ups at the intersection of the
// used-local curves A and B.
type ExtraBlowup struct {
	Count int
	A, B  int
}

// QHD describes a quotient singularity of type (Type; P, Q, R) with
// denominator N.
type QHD struct {
	Type    string
	P, Q, R int64
	N       int64
	Perm    []int
}

// Wormhole describes the wormhole data of a two-singularity example.
type Wormhole struct {
	// Kind is 0 for no P-extremal data, 1 for P-extremal without wormhole
	// and 2 for a wormhole.
	Kind           int
	ID             int
	HasID          bool // the record carried an ID
	Counterexample bool
}

// Example is one configuration found in a graph.
type Example struct {
	Index int // 1-based position in the file
	Shape Shape
	K2    int64

	Used        []int    // curves of the graph taking part
	Blowdowns   []int    // contracted exceptional curves, increasing
	Connections [][2]int // blow-ups at intersections of used-local curves
	Extra       [2]ExtraBlowup

	// Chains holds the resulting chains: one for a single chain or a
	// double QHD, two for a double chain or a P-extremal example.
	Chains []Chain

	// Original is the chain before the P-extremal resolution, with its own
	// self-intersections.
	Original        *Chain
	OriginalSelfInt []int64

	RawFork []int
	QHD     *QHD

	SelfInt       []int64 // local self-intersections
	Discrepancies []int64 // local discrepancy numerators

	Wormhole     Wormhole
	Delta, Omega int64

	Nef, NefWarning, NoObstruction, Effective bool
}

// Selection returns the curves used by the example and the order in which
// its exceptional curves are contracted: most recently created first.
func (e *Example) Selection() divisor.Selection {
	order := slices.Clone(e.Blowdowns)
	slices.Reverse(order)
	return divisor.Selection{Used: slices.Clone(e.Used), BlowdownOrder: order}
}

// Singularity is the (n, a) pair of a cyclic quotient chain.
type Singularity struct {
	N, A   int64
	Length int
}

// Singularity returns the (n, a) pair of chain c, where a is the smaller of
// the negated discrepancies at its two ends.
func (e *Example) Singularity(c Chain) Singularity {
	if len(c.Curves) == 0 {
		return Singularity{N: c.N}
	}
	first := -e.Discrepancies[c.Curves[0]]
	last := -e.Discrepancies[c.Curves[len(c.Curves)-1]]
	return Singularity{N: c.N, A: min(first, last), Length: len(c.Curves)}
}

// Singularities returns the (n, a) pair of every chain, in order.
func (e *Example) Singularities() []Singularity {
	out := make([]Singularity, len(e.Chains))
	for i, c := range e.Chains {
		out[i] = e.Singularity(c)
	}
	return out
}

// ForkLength is the number of curves in the QHD fork.
func (e *Example) ForkLength() int {
	return max(len(e.RawFork)-2, 0)
}

// Fork splits the raw fork into its three branches. The raw form lists the
// frame curve first and repeats it before each branch; the first and last
// branches drop that repeated frame.
func (e *Example) Fork() ([3][]int, error) {
	var fork [3][]int
	if len(e.RawFork) == 0 {
		return fork, fmt.Errorf("%w: empty", ErrMalformedFork)
	}
	frame := e.RawFork[0]
	branch := -1
	for _, c := range e.RawFork {
		if c == frame {
			branch++
			if branch > 2 {
				return fork, fmt.Errorf("%w: frame %d repeated more than three times", ErrMalformedFork, frame)
			}
		}
		fork[branch] = append(fork[branch], c)
	}
	if branch != 2 {
		return fork, fmt.Errorf("%w: %d branches", ErrMalformedFork, branch+1)
	}
	fork[0] = fork[0][1:]
	fork[2] = fork[2][1:]
	return fork, nil
}

// ExtraBlowups returns the extra blow-ups that apply to the example's shape
// and are non-empty.
func (e *Example) ExtraBlowups() []ExtraBlowup {
	var slots []int
	switch e.Shape {
	case ShapeSingleChain, ShapeSingleQHD:
		slots = []int{0}
	case ShapePExtremal:
		slots = []int{1}
	default:
		slots = []int{0, 1}
	}
	var out []ExtraBlowup
	for _, s := range slots {
		if e.Extra[s].Count != 0 {
			out = append(out, e.Extra[s])
		}
	}
	return out
}

// Label returns the display name of a local curve index.
func (e *Example) Label(g *divisor.Graph, local int) string {
	if local >= 0 && local < len(e.Used) {
		return g.Name(e.Used[local])
	}
	return fmt.Sprintf("*A_%d", local-len(e.Used)+1)
}

// CompleteFibers counts the fibers of g whose curves are all used by the
// example.
func (e *Example) CompleteFibers(g *divisor.Graph) int {
	n := 0
	for _, fiber := range g.Meta.Fibers {
		if !slices.ContainsFunc(fiber, func(c int) bool { return !slices.Contains(e.Used, c) }) {
			n++
		}
	}
	return n
}
