package gf2

import (
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// drawMatrix draws a random rows x cols matrix from a rapid-chosen seed.
func drawMatrix(t *rapid.T, rows, cols int, label string) Matrix {
	seed := rapid.Int64().Draw(t, label)

	return Random(rows, cols, rand.New(rand.NewSource(seed)))
}

// drawVector draws a random vector of length n from a rapid-chosen seed.
func drawVector(t *rapid.T, n int, label string) Vector {
	seed := rapid.Int64().Draw(t, label)

	return RandomVector(n, rand.New(rand.NewSource(seed)))
}

func mustMatrix(t *testing.T, literal [][]uint8) Matrix {
	t.Helper()

	m, err := NewMatrix(literal)
	require.NoError(t, err)

	return m
}

// TestNewMatrixValidation checks that malformed literals are rejected.
func TestNewMatrixValidation(t *testing.T) {
	t.Parallel()

	_, err := NewMatrix([][]uint8{{1, 0}, {1}})
	require.ErrorIs(t, err, ErrRagged)

	_, err = NewMatrix([][]uint8{{1, 2}, {0, 1}})
	require.ErrorIs(t, err, ErrNotBit)

	_, err = NewMatrix(nil)
	require.ErrorIs(t, err, ErrEmpty)

	_, err = NewVector([]uint8{0, 1, 3})
	require.ErrorIs(t, err, ErrNotBit)
}

// TestMulKnownProducts checks products against hand computed results.
func TestMulKnownProducts(t *testing.T) {
	t.Parallel()

	shear := mustMatrix(t, [][]uint8{
		{1, 1},
		{0, 1},
	})
	require.True(t, shear.Mul(shear).Equal(Identity(2)),
		"shear squared should vanish mod 2")

	a := mustMatrix(t, [][]uint8{
		{1, 0, 1},
		{1, 1, 0},
	})
	b := mustMatrix(t, [][]uint8{
		{1, 1},
		{0, 1},
		{1, 1},
	})
	want := mustMatrix(t, [][]uint8{
		{0, 0},
		{1, 0},
	})
	got := Multiply(a, b)
	require.Equal(t, 2, got.Rows())
	require.Equal(t, 2, got.Cols())
	require.True(t, got.Equal(want), "got:\n%v", got)

	x, err := NewVector([]uint8{1, 1, 1})
	require.NoError(t, err)
	v, err := NewVector([]uint8{1, 0})
	require.NoError(t, err)
	require.Equal(t, "10", Apply(a, x, v).String())
}

// TestDimensionMismatchPanics asserts that contract violations fail fast.
func TestDimensionMismatchPanics(t *testing.T) {
	t.Parallel()

	a := Zero(2, 3)
	require.Panics(t, func() { a.Mul(Zero(2, 3)) })
	require.Panics(t, func() { a.MulVec(ZeroVector(2)) })
	require.Panics(t, func() { Apply(a, ZeroVector(3), ZeroVector(3)) })
	require.Panics(t, func() { Power(a, 2) })
	require.Panics(t, func() { Power(Identity(2), -1) })
	require.Panics(t, func() { DeterminantParity(a) })
	require.Panics(t, func() { ZeroVector(3).Xor(ZeroVector(4)) })
}

// TestAffineApplyMatchesProduct checks that applying a matrix to a vector is
// the same as multiplying by the vector viewed as a single column.
func TestAffineApplyMatchesProduct(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 70).Draw(t, "rows")
		cols := rapid.IntRange(1, 70).Draw(t, "cols")
		m := drawMatrix(t, rows, cols, "m")
		x := drawVector(t, cols, "x")

		col := m.Mul(FromColumns([]Vector{x})).Col(0)
		require.True(t, col.Equal(m.MulVec(x)))
	})
}

// TestPowerConsistency checks M^(a+b) == M^a·M^b.
func TestPowerConsistency(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		a := rapid.IntRange(0, 20).Draw(t, "a")
		b := rapid.IntRange(0, 20).Draw(t, "b")
		m := drawMatrix(t, n, n, "m")

		lhs := Power(m, a+b)
		rhs := Multiply(Power(m, a), Power(m, b))
		require.True(t, lhs.Equal(rhs), "matrix: %v", spew.Sdump(m))
	})
}

// TestPowerMatchesRepeatedMultiplication compares the fast exponentiation
// with the naive chain of products.
func TestPowerMatchesRepeatedMultiplication(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	m := Random(16, 16, rng)

	chained := Identity(16)
	for k := 0; k <= 14; k++ {
		require.True(t, Power(m, k).Equal(chained), "exponent %d", k)
		chained = chained.Mul(m)
	}

	require.True(t, Power(m, 0).Equal(Identity(16)))
}

// TestTransposeOfProduct checks (AB)^T == B^T A^T.
func TestTransposeOfProduct(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		r := rapid.IntRange(1, 30).Draw(t, "r")
		k := rapid.IntRange(1, 30).Draw(t, "k")
		c := rapid.IntRange(1, 30).Draw(t, "c")
		a := drawMatrix(t, r, k, "a")
		b := drawMatrix(t, k, c, "b")

		lhs := a.Mul(b).Transpose()
		rhs := b.Transpose().Mul(a.Transpose())
		require.True(t, lhs.Equal(rhs))
	})
}

// TestDeterminantParity covers singular and invertible matrices.
func TestDeterminantParity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		literal [][]uint8
		want    uint8
	}{
		{
			name:    "identity",
			literal: [][]uint8{{1, 0}, {0, 1}},
			want:    1,
		},
		{
			name:    "all ones",
			literal: [][]uint8{{1, 1}, {1, 1}},
			want:    0,
		},
		{
			// det = 2 over the integers, 0 mod 2.
			name:    "even integer determinant",
			literal: [][]uint8{{1, 1, 0}, {0, 1, 1}, {1, 0, 1}},
			want:    0,
		},
		{
			name:    "permutation",
			literal: [][]uint8{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
			want:    1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := mustMatrix(t, test.literal)
			require.Equal(t, test.want, DeterminantParity(m))
		})
	}
}

// TestInverse checks that DeterminantParity agrees with Inverse and that a
// returned inverse really is one.
func TestInverse(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 70).Draw(t, "n")
		m := drawMatrix(t, n, n, "m")

		inv, err := Inverse(m)
		if DeterminantParity(m) == 0 {
			require.ErrorIs(t, err, ErrSingular)
			require.Less(t, Rank(m), n)

			return
		}

		require.NoError(t, err)
		require.True(t, m.Mul(inv).Equal(Identity(n)))
		require.True(t, inv.Mul(m).Equal(Identity(n)))
	})
}

// TestRowsAreCopied checks that FromRows and Row never share storage with
// their caller.
func TestRowsAreCopied(t *testing.T) {
	t.Parallel()

	src := ZeroVector(70)
	m := FromRows([]Vector{src, UnitVector(70, 3)})

	src.set(69)
	require.True(t, m.Row(0).IsZero())

	row := m.Row(1)
	row.set(0)
	require.Equal(t, 1, m.Row(1).Weight())
	require.Equal(t, uint8(0), m.At(1, 0))

	c := row.clone()
	require.True(t, c.Equal(row))
	c.set(5)
	require.False(t, c.Equal(row))
}
