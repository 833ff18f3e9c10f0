package gf2

import (
	"errors"
	"fmt"
)

// ErrSingular is returned when inverting a matrix that has no inverse over
// GF(2).
var ErrSingular = errors.New("gf2: matrix is singular")

// rowCopy returns a deep copy of the packed rows of m so elimination can
// work in place without touching m.
func (m Matrix) rowCopy() [][]uint64 {
	rows := make([][]uint64, m.rows)
	for i, r := range m.data {
		rows[i] = append([]uint64(nil), r.words...)
	}

	return rows
}

// clone returns an independent copy of v.
func (v Vector) clone() Vector {
	return Vector{n: v.n, words: append([]uint64(nil), v.words...)}
}

func bitAt(row []uint64, j int) bool {
	return (row[j/wordBits]>>(j%wordBits))&1 == 1
}

func xorInto(dst, src []uint64) {
	for w := range dst {
		dst[w] ^= src[w]
	}
}

// eliminate reduces rows to row echelon form over the first cols columns and
// returns the rank. Every row operation is mirrored on aux when it is not
// nil.
func eliminate(rows, aux [][]uint64, cols int) int {
	rank := 0
	for col := 0; col < cols && rank < len(rows); col++ {
		pivot := -1
		for r := rank; r < len(rows); r++ {
			if bitAt(rows[r], col) {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			continue
		}

		rows[rank], rows[pivot] = rows[pivot], rows[rank]
		if aux != nil {
			aux[rank], aux[pivot] = aux[pivot], aux[rank]
		}

		for r := range rows {
			if r == rank || !bitAt(rows[r], col) {
				continue
			}
			xorInto(rows[r], rows[rank])
			if aux != nil {
				xorInto(aux[r], aux[rank])
			}
		}
		rank++
	}

	return rank
}

// Rank returns the rank of m over GF(2).
func Rank(m Matrix) int {
	return eliminate(m.rowCopy(), nil, m.cols)
}

// DeterminantParity returns the determinant of the square matrix m reduced
// modulo 2. The result is 1 exactly when m is invertible over GF(2).
func DeterminantParity(m Matrix) uint8 {
	if !m.IsSquare() {
		panic(fmt.Sprintf("gf2: determinant of non-square %dx%d "+
			"matrix", m.rows, m.cols))
	}

	if Rank(m) == m.rows {
		return 1
	}

	return 0
}

// Inverse returns the inverse of the square matrix m, or ErrSingular.
func Inverse(m Matrix) (Matrix, error) {
	if !m.IsSquare() {
		panic(fmt.Sprintf("gf2: inverse of non-square %dx%d matrix",
			m.rows, m.cols))
	}

	rows := m.rowCopy()
	aux := Identity(m.rows).rowCopy()
	if rank := eliminate(rows, aux, m.cols); rank != m.rows {
		return Matrix{}, fmt.Errorf("%w: rank %d of %d", ErrSingular,
			rank, m.rows)
	}

	inv := Matrix{rows: m.rows, cols: m.cols, data: make([]Vector, m.rows)}
	for i, words := range aux {
		inv.data[i] = Vector{n: m.cols, words: words}
	}

	return inv, nil
}
