package kpa

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/gf2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestCracker(t *testing.T, mode aesm.Mode) *Cracker {
	t.Helper()

	c, err := New(Config{
		InvL: aesm.InvL(),
		L:    fn.Some(aesm.L()),
		Mode: mode,
	})
	require.NoError(t, err)

	return c
}

func newTestCipher(t require.TestingT, seed int64) *aesm.Cipher {
	key := make([]byte, aesm.KeySize)
	rand.New(rand.NewSource(seed)).Read(key)

	c, err := aesm.NewCipher(key)
	require.NoError(t, err)

	return c
}

func firstBlock(b []byte) aesm.Block {
	var blk aesm.Block
	copy(blk[:], b)

	return blk
}

// TestPowerCache checks the chained powers against Power.
func TestPowerCache(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	m := gf2.Random(24, 24, rng)
	cache := NewPowerCache(m, 14)

	require.Equal(t, 14, cache.Len())
	require.True(t, cache.At(0).Equal(gf2.Identity(24)))
	for k := 1; k <= 14; k++ {
		require.True(t, cache.At(k).Equal(gf2.Power(m, k)), "k=%d", k)
	}

	require.Panics(t, func() { cache.At(15) })
	require.Panics(t, func() { NewPowerCache(gf2.Zero(2, 3), 2) })
}

// TestNewValidates checks the configuration errors.
func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New(Config{InvL: gf2.Identity(64)})
	require.ErrorIs(t, err, ErrBadDimension)

	_, err = New(Config{InvL: aesm.InvL(), Rounds: -1})
	require.ErrorIs(t, err, ErrInvalidRounds)

	_, err = New(Config{
		InvL: aesm.InvL(),
		L:    fn.Some(gf2.Identity(aesm.StateBits)),
	})
	require.ErrorIs(t, err, ErrBadInverse)

	c, err := New(Config{InvL: aesm.InvL()})
	require.NoError(t, err)
	require.True(t, c.Power(aesm.Nr).Equal(gf2.Power(aesm.InvL(), aesm.Nr)))
}

// TestRecoverECB encrypts random plaintext with a random key and recovers it
// from the first block pair only.
func TestRecoverECB(t *testing.T) {
	t.Parallel()

	cr := newTestCracker(t, aesm.ModeECB)

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "key")
		size := rapid.IntRange(1, 20).Draw(t, "blocks") * aesm.BlockSize
		plaintext := rapid.SliceOfN(rapid.Byte(), size, size).Draw(
			t, "plaintext",
		)

		ciphertext := aesm.EncryptECB(newTestCipher(t, seed), plaintext)
		want := aesm.Pad(plaintext)

		var out bytes.Buffer
		stats, err := cr.RecoverStream(
			context.Background(), firstBlock(want),
			bytes.NewReader(ciphertext), &out,
		)
		require.NoError(t, err)
		require.Equal(t, want, out.Bytes())
		require.EqualValues(t, len(want)/aesm.BlockSize, stats.Blocks)
	})
}

// TestRecoverCBC does the same for the chained mode.
func TestRecoverCBC(t *testing.T) {
	t.Parallel()

	cr := newTestCracker(t, aesm.ModeCBC)
	rng := rand.New(rand.NewSource(9))

	plaintext := make([]byte, 40*aesm.BlockSize+5)
	rng.Read(plaintext)
	var iv aesm.Block
	rng.Read(iv[:])

	ciphertext := aesm.EncryptCBC(newTestCipher(t, 10), iv, plaintext)
	want := aesm.Pad(plaintext)

	var out bytes.Buffer
	_, err := cr.RecoverStream(
		context.Background(), firstBlock(want),
		bytes.NewReader(ciphertext), &out,
	)
	require.NoError(t, err)
	require.Equal(t, want, out.Bytes())

	// The iterator form gives the same blocks.
	br := NewBlockReader(bytes.NewReader(ciphertext))
	gotIV, err := br.Required("IV")
	require.NoError(t, err)
	c0, err := br.Required("C0")
	require.NoError(t, err)

	var got []byte
	for pi, err := range cr.RecoverCBC(firstBlock(want), gotIV, c0,
		br.Blocks()) {

		require.NoError(t, err)
		got = append(got, pi[:]...)
	}
	require.Equal(t, want, got)
}

// TestKnownPairInvariance checks that any known pair yields the same
// plaintext for every other block.
func TestKnownPairInvariance(t *testing.T) {
	t.Parallel()

	cr := newTestCracker(t, aesm.ModeECB)
	cipher := newTestCipher(t, 5)
	rng := rand.New(rand.NewSource(6))

	const n = 12
	var p, c [n]aesm.Block
	for i := range p {
		rng.Read(p[i][:])
		c[i] = cipher.EncryptBlock(p[i])
	}

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			require.Equal(
				t, p[i], cr.RecoverBlock(p[j], c[j], c[i]),
				"known pair %d, target %d", j, i,
			)
		}
	}
}

// TestRepeatedBlock checks that a ciphertext block equal to C0 decodes to
// P0, whatever invL is.
func TestRepeatedBlock(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	m := gf2.Random(aesm.StateBits, aesm.StateBits, rng)
	cr, err := New(Config{InvL: m})
	require.NoError(t, err)

	var p0, c0 aesm.Block
	rng.Read(p0[:])
	rng.Read(c0[:])
	require.Equal(t, p0, cr.RecoverBlock(p0, c0, c0))
}

// TestRecoverErrors checks the input errors.
func TestRecoverErrors(t *testing.T) {
	t.Parallel()

	cr := newTestCracker(t, aesm.ModeECB)
	ctx := context.Background()
	p0 := aesm.Block{1}

	_, err := cr.RecoverStream(ctx, p0, bytes.NewReader(nil), io.Discard)
	require.ErrorIs(t, err, ErrNoKnownBlock)

	// Two whole blocks and a partial one. P0 and P1 are still written.
	var out bytes.Buffer
	input := make([]byte, 2*aesm.BlockSize+3)
	stats, err := cr.RecoverStream(ctx, p0, bytes.NewReader(input), &out)
	require.ErrorIs(t, err, ErrShortBlock)
	require.EqualValues(t, 2, stats.Blocks)
	require.Equal(t, 2*aesm.BlockSize, out.Len())

	cbc := newTestCracker(t, aesm.ModeCBC)
	_, err = cbc.RecoverStream(
		ctx, p0, bytes.NewReader(make([]byte, aesm.BlockSize)),
		io.Discard,
	)
	require.ErrorIs(t, err, ErrNoKnownBlock)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = cr.RecoverStream(
		cancelled, p0, bytes.NewReader(make([]byte, 4*aesm.BlockSize)),
		io.Discard,
	)
	require.ErrorIs(t, err, context.Canceled)
}

// TestRecoverParallel checks that the parallel path writes the same bytes in
// the same order as the sequential one, errors included.
func TestRecoverParallel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    aesm.Mode
		blocks  int
		extra   int
		workers int
		wantErr error
	}{
		{name: "ecb single window", mode: aesm.ModeECB, blocks: 100,
			workers: 4},
		{name: "ecb many windows", mode: aesm.ModeECB, blocks: 5000,
			workers: 3},
		{name: "cbc many windows", mode: aesm.ModeCBC, blocks: 3000,
			workers: 2},
		{name: "one worker", mode: aesm.ModeCBC, blocks: 10,
			workers: 1},
		{name: "short tail", mode: aesm.ModeECB, blocks: 1500,
			extra: 7, workers: 2, wantErr: ErrShortBlock},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(int64(test.blocks)))
			input := make(
				[]byte, test.blocks*aesm.BlockSize+test.extra,
			)
			rng.Read(input)

			cr := newTestCracker(t, test.mode)
			p0 := aesm.Block{0xde, 0xad}
			ctx := context.Background()

			var seq, par bytes.Buffer
			seqStats, seqErr := cr.RecoverStream(
				ctx, p0, bytes.NewReader(input), &seq,
			)
			parStats, parErr := cr.RecoverParallel(
				ctx, p0, bytes.NewReader(input), &par,
				test.workers,
			)

			if test.wantErr != nil {
				require.ErrorIs(t, seqErr, test.wantErr)
				require.ErrorIs(t, parErr, test.wantErr)
			} else {
				require.NoError(t, seqErr)
				require.NoError(t, parErr)
			}
			require.Equal(t, seqStats.Blocks, parStats.Blocks)
			require.True(t, bytes.Equal(seq.Bytes(), par.Bytes()))
		})
	}
}

// TestParseBlockHex checks hex validation before any computation.
func TestParseBlockHex(t *testing.T) {
	t.Parallel()

	b, err := ParseBlockHex("00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	require.Equal(t, byte(0xff), b[15])

	for _, s := range []string{
		"",
		"0011",
		strings.Repeat("0", 33),
		strings.Repeat("g", 32),
	} {
		_, err := ParseBlockHex(s)
		require.ErrorIs(t, err, ErrMalformedBlock, "input %q", s)
	}
}

// TestRecoverStats checks the block count and that the run is timed by the
// configured clock.
func TestRecoverStats(t *testing.T) {
	t.Parallel()

	testClock := clock.NewTestClock(time.Unix(1700000000, 0))
	cr, err := New(Config{
		InvL:  aesm.InvL(),
		Clock: testClock,
	})
	require.NoError(t, err)

	input := make([]byte, 9*aesm.BlockSize)
	rand.New(rand.NewSource(9)).Read(input)

	var out bytes.Buffer
	stats, err := cr.RecoverParallel(
		context.Background(), aesm.Block{}, bytes.NewReader(input), &out,
		2,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(9), stats.Blocks)
	require.Zero(t, stats.Elapsed)
	require.Equal(t, len(input), out.Len())
}
