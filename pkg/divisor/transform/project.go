package transform

import (
	"fmt"

	"github.com/jereyes4/Wahl-Chains/pkg/divisor"
	"github.com/jereyes4/Wahl-Chains/pkg/intmat"
)

// Projection is the intersection form of a set of base curves after all
// exceptional curves have been contracted.
type Projection struct {
	// BaseUsed are the base curves the matrix is indexed by, in increasing
	// order. Row i of Matrix belongs to curve BaseUsed[i].
	BaseUsed []int
	Matrix   intmat.Matrix
}

// Determinant returns the exact determinant of the projected matrix.
// A zero determinant marks a degenerate configuration and is not an error.
func (p *Projection) Determinant() int64 {
	return intmat.Determinant(p.Matrix)
}

// Project computes the intersection matrix of the base curves in used after
// contracting every exceptional curve of g. Exceptional members of used are
// ignored.
//
// g is validated first. The returned matrix is symmetric.
func Project(g *divisor.Graph, used []int) (*Projection, error) {
	full, err := ProjectFull(g)
	if err != nil {
		return nil, err
	}
	return Restrict(g, full, used)
}

// Restrict selects the rows and columns of a full projected matrix, as
// returned by [ProjectFull], that belong to the base curves in used. Batch
// callers compute the full matrix once per graph and restrict it per example.
func Restrict(g *divisor.Graph, full intmat.Matrix, used []int) (*Projection, error) {
	for _, c := range used {
		if err := g.CheckCurve(c); err != nil {
			return nil, fmt.Errorf("used: %w", err)
		}
	}
	base := divisor.BaseUsed(g, used)
	m, err := full.Restrict(base)
	if err != nil {
		return nil, err
	}
	return &Projection{BaseUsed: base, Matrix: m}, nil
}

// ProjectFull returns the N×N intersection matrix of g after contracting
// every exceptional curve. Rows of exceptional curves are zero.
//
// Exceptional curves are absorbed in reverse creation order. Absorbing e
// adds the square of its multiplicity with every curve to that curve's
// self-intersection, and the product of multiplicities to every pair of
// curves that both met e. Runs in O(E·N²).
func ProjectFull(g *divisor.Graph) (intmat.Matrix, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	n := g.Len()
	m := intmat.New(n)
	for a, nb := range g.Adjacency {
		for _, b := range nb {
			m[a][b]++
		}
	}
	// A self-loop is stored twice in its own list; the diagonal carries
	// self-intersections instead.
	for a := range n {
		m[a][a] = g.SelfInt[a]
	}

	row := make([]int64, n)
	for i := len(g.Exceptional) - 1; i >= 0; i-- {
		e := g.Exceptional[i]
		copy(row, m[e])
		row[e] = 0
		for a := range n {
			if a != e {
				m[a][a] += row[a] * row[a]
			}
		}
		for a := range n {
			if a == e || row[a] == 0 {
				continue
			}
			for b := a + 1; b < n; b++ {
				if b == e || row[b] == 0 {
					continue
				}
				m[a][b] += row[a] * row[b]
				m[b][a] = m[a][b]
			}
		}
		for a := range n {
			m[a][e] = 0
			m[e][a] = 0
		}
	}
	return m, nil
}
