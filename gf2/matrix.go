package gf2

import (
	"fmt"
	"math/rand"
	"strings"
)

// Matrix is a rows x cols boolean matrix. Products and sums are always taken
// modulo 2. Like Vector, a Matrix is immutable once built.
type Matrix struct {
	rows, cols int

	// data holds one packed Vector of length cols per row.
	data []Vector
}

// newMatrix allocates a zero matrix.
func newMatrix(rows, cols int) Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("gf2: invalid matrix dimensions %dx%d",
			rows, cols))
	}

	data := make([]Vector, rows)
	for i := range data {
		data[i] = newVector(cols)
	}

	return Matrix{rows: rows, cols: cols, data: data}
}

// Zero returns the rows x cols zero matrix.
func Zero(rows, cols int) Matrix {
	return newMatrix(rows, cols)
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := newMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i].set(i)
	}

	return m
}

// NewMatrix builds a matrix from a row-major literal of 0/1 values.
func NewMatrix(literal [][]uint8) (Matrix, error) {
	if len(literal) == 0 || len(literal[0]) == 0 {
		return Matrix{}, ErrEmpty
	}

	m := newMatrix(len(literal), len(literal[0]))
	for i, row := range literal {
		if len(row) != m.cols {
			return Matrix{}, fmt.Errorf("%w: row %d has %d "+
				"columns, want %d", ErrRagged, i, len(row),
				m.cols)
		}

		v, err := NewVector(row)
		if err != nil {
			return Matrix{}, fmt.Errorf("row %d: %w", i, err)
		}
		m.data[i] = v
	}

	return m, nil
}

// FromRows stacks the given vectors as the rows of a matrix. All rows must
// have the same length.
func FromRows(rows []Vector) Matrix {
	if len(rows) == 0 {
		return Matrix{}
	}

	m := Matrix{rows: len(rows), cols: rows[0].n, data: make([]Vector, len(rows))}
	for i, r := range rows {
		if r.n != m.cols {
			panic(fmt.Sprintf("gf2: row %d has length %d, want %d",
				i, r.n, m.cols))
		}
		m.data[i] = r.clone()
	}

	return m
}

// FromColumns builds a matrix whose j-th column is cols[j].
func FromColumns(cols []Vector) Matrix {
	if len(cols) == 0 {
		return Matrix{}
	}

	m := newMatrix(cols[0].n, len(cols))
	for j, c := range cols {
		if c.n != m.rows {
			panic(fmt.Sprintf("gf2: column %d has length %d, "+
				"want %d", j, c.n, m.rows))
		}
		for i := 0; i < m.rows; i++ {
			if c.Bit(i) == 1 {
				m.data[i].set(j)
			}
		}
	}

	return m
}

// Random draws a matrix with independent uniform bits from rng.
func Random(rows, cols int, rng *rand.Rand) Matrix {
	m := newMatrix(rows, cols)
	for i := range m.data {
		m.data[i] = RandomVector(cols, rng)
	}

	return m
}

// RandomVector draws a vector of n independent uniform bits from rng.
func RandomVector(n int, rng *rand.Rand) Vector {
	v := newVector(n)
	for i := range v.words {
		v.words[i] = rng.Uint64()
	}
	if rem := n % wordBits; rem != 0 {
		v.words[len(v.words)-1] &= (1 << rem) - 1
	}

	return v
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	return m.cols
}

// IsSquare reports whether m has as many rows as columns.
func (m Matrix) IsSquare() bool {
	return m.rows == m.cols
}

// At returns the element in row i, column j.
func (m Matrix) At(i, j int) uint8 {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("gf2: row index %d out of range [0, %d)",
			i, m.rows))
	}

	return m.data[i].Bit(j)
}

// Row returns row i as a vector.
func (m Matrix) Row(i int) Vector {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("gf2: row index %d out of range [0, %d)",
			i, m.rows))
	}

	return m.data[i].clone()
}

// Col returns column j as a vector.
func (m Matrix) Col(j int) Vector {
	col := newVector(m.rows)
	for i := 0; i < m.rows; i++ {
		if m.data[i].Bit(j) == 1 {
			col.set(i)
		}
	}

	return col
}

// Mul returns the product m·b. It panics unless m.Cols() == b.Rows().
func (m Matrix) Mul(b Matrix) Matrix {
	if m.cols != b.rows {
		panic(fmt.Sprintf("gf2: cannot multiply %dx%d by %dx%d",
			m.rows, m.cols, b.rows, b.cols))
	}

	out := newMatrix(m.rows, b.cols)
	for i := 0; i < m.rows; i++ {
		acc := out.data[i].words
		for k := 0; k < m.cols; k++ {
			if m.data[i].Bit(k) == 0 {
				continue
			}
			for w, word := range b.data[k].words {
				acc[w] ^= word
			}
		}
	}

	return out
}

// MulVec returns the product m·x. It panics unless m.Cols() == x.Len().
func (m Matrix) MulVec(x Vector) Vector {
	if m.cols != x.n {
		panic(fmt.Sprintf("gf2: cannot multiply %dx%d matrix by "+
			"vector of length %d", m.rows, m.cols, x.n))
	}

	out := newVector(m.rows)
	for i, row := range m.data {
		if Dot(row, x) == 1 {
			out.set(i)
		}
	}

	return out
}

// Add returns m + b. Both matrices must have the same dimensions.
func (m Matrix) Add(b Matrix) Matrix {
	if m.rows != b.rows || m.cols != b.cols {
		panic(fmt.Sprintf("gf2: cannot add %dx%d and %dx%d",
			m.rows, m.cols, b.rows, b.cols))
	}

	out := Matrix{rows: m.rows, cols: m.cols, data: make([]Vector, m.rows)}
	for i := range m.data {
		out.data[i] = m.data[i].Xor(b.data[i])
	}

	return out
}

// Transpose returns the transpose of m.
func (m Matrix) Transpose() Matrix {
	out := newMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if m.data[i].Bit(j) == 1 {
				out.data[j].set(i)
			}
		}
	}

	return out
}

// Equal reports whether m and b have the same dimensions and elements.
func (m Matrix) Equal(b Matrix) bool {
	if m.rows != b.rows || m.cols != b.cols {
		return false
	}
	for i := range m.data {
		if !m.data[i].Equal(b.data[i]) {
			return false
		}
	}

	return true
}

// String renders one row of 0/1 characters per line.
func (m Matrix) String() string {
	var b strings.Builder
	for i, row := range m.data {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(row.String())
	}

	return b.String()
}

// Multiply returns a·b over GF(2).
func Multiply(a, b Matrix) Matrix {
	return a.Mul(b)
}

// Apply computes the affine image m·x + v. A zero vector may be passed as v
// when no offset is needed. It panics unless m.Cols() == x.Len() and
// v.Len() == m.Rows().
func Apply(m Matrix, x, v Vector) Vector {
	if v.n != m.rows {
		panic(fmt.Sprintf("gf2: offset of length %d for matrix with "+
			"%d rows", v.n, m.rows))
	}

	return m.MulVec(x).Xor(v)
}

// Power returns m raised to the non-negative exponent n. Power(m, 0) is the
// identity of matching dimension.
func Power(m Matrix, n int) Matrix {
	if !m.IsSquare() {
		panic(fmt.Sprintf("gf2: power of non-square %dx%d matrix",
			m.rows, m.cols))
	}
	if n < 0 {
		panic(fmt.Sprintf("gf2: negative exponent %d", n))
	}

	result := Identity(m.rows)
	base := m
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}

	return result
}
