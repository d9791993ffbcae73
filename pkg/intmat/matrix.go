// Package intmat provides square integer matrices and exact determinants.
//
// All arithmetic is on int64. There is no floating point anywhere in this
// package: determinants are computed with fraction-free Gaussian elimination
// (the Bareiss algorithm), whose intermediate divisions are always exact.
package intmat

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotSquare is returned when an operation requires a square matrix.
	ErrNotSquare = errors.New("matrix is not square")

	// ErrIndexOutOfRange is returned by [Matrix.Restrict] for an index
	// outside the matrix.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInexactDivision is returned by [DeterminantChecked] if a Bareiss
	// step produced a non-exact division. For integer input this indicates
	// overflow of intermediate values.
	ErrInexactDivision = errors.New("inexact division in elimination step")
)

// Matrix is a dense integer matrix stored row-major. Operations in this
// package never modify their argument.
type Matrix [][]int64

// New returns an n×n zero matrix.
func New(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int64, n)
	}
	return m
}

// FromRows builds a matrix from int rows, converting entries to int64.
func FromRows(rows [][]int) Matrix {
	m := make(Matrix, len(rows))
	for i, r := range rows {
		m[i] = make([]int64, len(r))
		for j, v := range r {
			m[i][j] = int64(v)
		}
	}
	return m
}

// Size returns the number of rows.
func (m Matrix) Size() int { return len(m) }

// IsSquare reports whether every row has exactly Size() entries.
func (m Matrix) IsSquare() bool {
	for _, r := range m {
		if len(r) != len(m) {
			return false
		}
	}
	return true
}

// IsSymmetric reports whether m is square and equal to its transpose.
func (m Matrix) IsSymmetric() bool {
	if !m.IsSquare() {
		return false
	}
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if m[i][j] != m[j][i] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, r := range m {
		c[i] = slices.Clone(r)
	}
	return c
}

// Equal reports whether m and o have the same shape and entries.
func (m Matrix) Equal(o Matrix) bool {
	return slices.EqualFunc(m, o, func(a, b []int64) bool { return slices.Equal(a, b) })
}

// Restrict returns the principal submatrix of m on the given indices, in the
// order given. The result has len(idx) rows and columns.
func (m Matrix) Restrict(idx []int) (Matrix, error) {
	for _, i := range idx {
		if i < 0 || i >= len(m) {
			return nil, fmt.Errorf("restrict to %d in %dx%d matrix: %w", i, len(m), len(m), ErrIndexOutOfRange)
		}
	}
	out := New(len(idx))
	for a, i := range idx {
		for b, j := range idx {
			out[a][b] = m[i][j]
		}
	}
	return out, nil
}
