package sbox

import (
	"context"
	"math/rand"
	"testing"

	"github.com/snovvcrash/aes256m-cracker/affine"
	"github.com/snovvcrash/aes256m-cracker/gf2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestGenerator(t *testing.T, width, maxAttempts int,
	seed int64) *Generator {

	t.Helper()

	g, err := NewGenerator(GeneratorConfig{
		Width:       width,
		MaxAttempts: maxAttempts,
		Rand:        rand.New(rand.NewSource(seed)),
	})
	require.NoError(t, err)

	return g
}

// TestGeneratorEightBit runs a thousand 8-bit attempts and checks every
// accepted candidate.
func TestGeneratorEightBit(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, 8, 0, 42)

	for i := 0; i < 1000; i++ {
		g.Attempt().WhenSome(func(c Candidate) {
			require.True(t, c.Table.Bijective())
			require.True(t, AcceptsDifferential(c.Table))
			require.Equal(t, 256, c.Table.Len())

			for x := 0; x < 256; x++ {
				bits := gf2.VectorFromUint(uint64(x), 8)
				want := c.Affine.Apply(bits).Uint()
				require.EqualValues(
					t, want, c.Table.Lookup(uint16(x)),
				)
			}
		})
	}

	stats := g.Stats()
	require.EqualValues(t, 1000, stats.Attempts)
	require.Equal(
		t, stats.Attempts,
		stats.Accepted+stats.Rejected+stats.NotBijective,
	)

	// An invertible affine map never collides.
	require.Zero(t, stats.NotBijective)
	require.NotZero(t, stats.Accepted)
}

// TestGenerateBounded checks the retry bound and cancellation.
func TestGenerateBounded(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, 4, 50, 7)
	c, err := g.Generate(context.Background())
	require.NoError(t, err)
	require.True(t, c.Table.Bijective())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestGenerator(t, 4, 0, 7).Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, err = NewGenerator(GeneratorConfig{Width: 0})
	require.ErrorIs(t, err, ErrInvalidWidth)
	_, err = NewGenerator(GeneratorConfig{Width: MaxWidth + 1})
	require.ErrorIs(t, err, ErrInvalidWidth)
}

// TestDifferentialLaw checks the acceptance law on affine tables of every
// small width and rejects a table that is not affine.
func TestDifferentialLaw(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 7).Draw(t, "width")
		seed := rapid.Int64().Draw(t, "seed")
		rng := rand.New(rand.NewSource(seed))

		m := gf2.Random(width, width, rng)
		for gf2.DeterminantParity(m) != 1 {
			m = gf2.Random(width, width, rng)
		}
		f, err := affine.New(m, gf2.RandomVector(width, rng))
		require.NoError(t, err)

		table, err := FromAffine(f)
		require.NoError(t, err)
		require.True(t, AcceptsDifferential(table))

		d := ComputeDifferenceTable(table)
		require.Equal(t, table.Len(), d.Count(0, 0))
		require.Equal(t, table.Len(), d.Uniformity())

		// Every input difference maps to exactly one output difference.
		for a := 0; a < table.Len(); a++ {
			bits := gf2.VectorFromUint(uint64(a), width)
			out := int(m.MulVec(bits).Uint())
			require.Equal(t, table.Len(), d.Count(a, out))
		}
	})

	// A 3-bit permutation that is not affine.
	table, err := NewTable([]uint16{0, 1, 3, 6, 7, 4, 5, 2})
	require.NoError(t, err)
	require.True(t, table.Bijective())
	require.False(t, AcceptsDifferential(table))

	_, err = table.Affine()
	require.ErrorIs(t, err, ErrNotAffine)
}

// TestTable checks construction, inversion and affine recovery.
func TestTable(t *testing.T) {
	t.Parallel()

	_, err := NewTable([]uint16{0, 1, 2})
	require.ErrorIs(t, err, ErrInvalidTable)
	_, err = NewTable([]uint16{0, 4, 1, 2})
	require.ErrorIs(t, err, ErrInvalidTable)

	collide, err := NewTable([]uint16{1, 1, 2, 3})
	require.NoError(t, err)
	require.False(t, collide.Bijective())
	_, err = collide.Inverse()
	require.ErrorIs(t, err, ErrNotBijective)

	g := newTestGenerator(t, 8, 0, 99)
	c, err := g.Generate(context.Background())
	require.NoError(t, err)

	inv, err := c.Table.Inverse()
	require.NoError(t, err)
	for x := uint16(0); x < 256; x++ {
		require.Equal(t, x, inv.Lookup(c.Table.Lookup(x)))
	}

	f, err := c.Table.Affine()
	require.NoError(t, err)
	require.True(t, f.Equal(c.Affine))

	fromBytes, err := FromBytes(c.Table.Bytes())
	require.NoError(t, err)
	require.True(t, fromBytes.Equal(c.Table))
}

// TestEmulate checks that the XOR closure yields affine tables whenever it
// yields anything.
func TestEmulate(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	var accepted int
	for i := 0; i < 200; i++ {
		Emulate(8, rng).WhenSome(func(table Table) {
			accepted++
			require.True(t, table.Bijective())

			f, err := table.Affine()
			require.NoError(t, err)

			again, err := FromAffine(f)
			require.NoError(t, err)
			require.True(t, again.Equal(table))
		})
	}
	require.NotZero(t, accepted)

	require.False(t, Emulate(0, rng).IsSome())
}
