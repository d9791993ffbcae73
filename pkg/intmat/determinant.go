package intmat

import "fmt"

// Determinant returns the exact determinant of the square matrix m using
// Bareiss fraction-free elimination. m is not modified.
//
// A zero pivot is replaced by the first later row with a nonzero entry in the
// pivot column, flipping the sign. If no such row exists the determinant is
// exactly zero and Determinant returns immediately. The empty matrix has
// determinant 1.
//
// Runs in O(n³) integer operations. The caller must pass a square matrix;
// use [DeterminantChecked] for validated input.
func Determinant(m Matrix) int64 {
	d, _ := bareiss(m, false)
	return d
}

// DeterminantChecked is [Determinant] with input validation and an
// exactness assertion on every elimination step. It returns ErrNotSquare for
// ragged or rectangular input and ErrInexactDivision if the Bareiss
// invariant is violated.
func DeterminantChecked(m Matrix) (int64, error) {
	if !m.IsSquare() {
		return 0, fmt.Errorf("determinant of %d-row matrix: %w", len(m), ErrNotSquare)
	}
	return bareiss(m, true)
}

func bareiss(src Matrix, check bool) (int64, error) {
	n := len(src)
	if n == 0 {
		return 1, nil
	}
	m := src.Clone()
	sign, prev := int64(1), int64(1)

	for i := 0; i < n-1; i++ {
		if m[i][i] == 0 {
			swap := -1
			for j := i + 1; j < n; j++ {
				if m[j][i] != 0 {
					swap = j
					break
				}
			}
			if swap < 0 {
				return 0, nil
			}
			m[i], m[swap] = m[swap], m[i]
			sign = -sign
		}
		for j := i + 1; j < n; j++ {
			for k := i + 1; k < n; k++ {
				num := m[j][k]*m[i][i] - m[j][i]*m[i][k]
				if check && num%prev != 0 {
					return 0, fmt.Errorf("row %d col %d: %d / %d: %w", j, k, num, prev, ErrInexactDivision)
				}
				m[j][k] = num / prev
			}
		}
		prev = m[i][i]
	}
	return sign * m[n-1][n-1], nil
}

// Cofactor returns the determinant of m by Laplace expansion along the first
// row. It is exponential in the size of m and exists as an independent
// reference for small matrices.
func Cofactor(m Matrix) int64 {
	n := len(m)
	switch n {
	case 0:
		return 1
	case 1:
		return m[0][0]
	case 2:
		return m[0][0]*m[1][1] - m[0][1]*m[1][0]
	}
	var det int64
	sign := int64(1)
	minor := New(n - 1)
	for col := range n {
		if m[0][col] != 0 {
			for i := 1; i < n; i++ {
				c := 0
				for j := range n {
					if j == col {
						continue
					}
					minor[i-1][c] = m[i][j]
					c++
				}
			}
			det += sign * m[0][col] * Cofactor(minor)
		}
		sign = -sign
	}
	return det
}
