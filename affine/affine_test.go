package affine

import (
	"math/rand"
	"testing"

	"github.com/snovvcrash/aes256m-cracker/gf2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawMap(t *rapid.T, out, in int, label string) Map {
	seed := rapid.Int64().Draw(t, label)
	rng := rand.New(rand.NewSource(seed))

	f, err := New(gf2.Random(out, in, rng), gf2.RandomVector(out, rng))
	require.NoError(t, err)

	return f
}

func drawVector(t *rapid.T, n int, label string) gf2.Vector {
	seed := rapid.Int64().Draw(t, label)

	return gf2.RandomVector(n, rand.New(rand.NewSource(seed)))
}

// permutation returns the n x n matrix that moves bit i to position perm[i].
func permutation(perm []int) gf2.Matrix {
	cols := make([]gf2.Vector, len(perm))
	for i, p := range perm {
		cols[i] = gf2.UnitVector(len(perm), p)
	}

	return gf2.FromColumns(cols)
}

// TestCompositionLaw checks g(f(x)) == (M2·M1)·x + (M2·v1 + v2) for random
// maps and inputs.
func TestCompositionLaw(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(1, 48).Draw(t, "a")
		b := rapid.IntRange(1, 48).Draw(t, "b")
		c := rapid.IntRange(1, 48).Draw(t, "c")
		f := drawMap(t, b, a, "f")
		g := drawMap(t, c, b, "g")
		x := drawVector(t, a, "x")

		want := g.Apply(f.Apply(x))

		m := gf2.Multiply(g.Matrix(), f.Matrix())
		v := g.Matrix().MulVec(f.Offset()).Xor(g.Offset())
		require.True(t, gf2.Apply(m, x, v).Equal(want))

		require.True(t, f.Then(g).Apply(x).Equal(want))

		composed, err := Compose(f, g)
		require.NoError(t, err)
		require.True(t, composed.Equal(f.Then(g)))
	})
}

// TestComposeChain checks a longer chain against step by step evaluation and
// the error paths.
func TestComposeChain(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	steps := make([]Map, 5)
	for i := range steps {
		f, err := New(gf2.Random(24, 24, rng), gf2.RandomVector(24, rng))
		require.NoError(t, err)
		steps[i] = f
	}

	chain, err := Compose(steps...)
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		x := gf2.RandomVector(24, rng)
		want := x
		for _, s := range steps {
			want = s.Apply(want)
		}
		require.True(t, chain.Apply(x).Equal(want))
	}

	_, err = Compose()
	require.ErrorIs(t, err, ErrEmptyChain)

	_, err = Compose(Identity(8), Identity(9))
	require.ErrorIs(t, err, ErrWidthMismatch)

	_, err = New(gf2.Identity(4), gf2.ZeroVector(5))
	require.ErrorIs(t, err, ErrOffsetSize)
}

// TestFromFuncRecoversMap checks that probing an affine function yields the
// map it was built from.
func TestFromFuncRecoversMap(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		f := drawMap(t, n, n, "f")

		got := FromFunc(n, f.Apply)
		require.True(t, got.Equal(f))
		require.True(t, got.Agrees(f.Apply, []gf2.Vector{
			drawVector(t, n, "x"),
		}))
	})
}

// TestPow checks n-fold composition against repeated application.
func TestPow(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	f, err := New(gf2.Random(16, 16, rng), gf2.RandomVector(16, rng))
	require.NoError(t, err)

	x := gf2.RandomVector(16, rng)
	want := x
	for n := 0; n < 15; n++ {
		require.True(t, f.Pow(n).Apply(x).Equal(want), "n=%d", n)
		want = f.Apply(want)
	}
	require.True(t, f.Pow(0).Equal(Identity(16)))
	require.True(t, Identity(16).IsLinear())
}

// TestMergeInvariant checks that the offset shortcut agrees with the full
// composition when it applies and refuses to run when it does not.
func TestMergeInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(5))
	const n = 32

	// The all-ones vector is fixed by every permutation matrix.
	ones := gf2.ZeroVector(n)
	for i := 0; i < n; i++ {
		ones = ones.Xor(gf2.UnitVector(n, i))
	}
	first, err := New(gf2.Random(n, n, rng), ones)
	require.NoError(t, err)

	p1 := permutation(rng.Perm(n))
	p2 := permutation(rng.Perm(n))
	require.True(t, OffsetInvariant(p1, ones))

	merged, err := MergeInvariant(first, p1, p2)
	require.NoError(t, err)

	full, err := Compose(first, Linear(p1), Linear(p2))
	require.NoError(t, err)
	require.True(t, merged.Equal(full))
	require.True(t, merged.Offset().Equal(ones))

	// A shift that moves bit 0 does not fix a single set bit.
	single, err := New(gf2.Identity(n), gf2.UnitVector(n, 0))
	require.NoError(t, err)
	shift := make([]int, n)
	for i := range shift {
		shift[i] = (i + 1) % n
	}
	require.False(t, OffsetInvariant(permutation(shift), single.Offset()))

	_, err = MergeInvariant(single, permutation(shift))
	require.ErrorIs(t, err, ErrOffsetNotInvariant)

	_, err = MergeInvariant(single, gf2.Identity(n+1))
	require.ErrorIs(t, err, ErrWidthMismatch)
}
