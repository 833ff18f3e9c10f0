package kpa

import (
	"errors"
	"fmt"
	"iter"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/gf2"
)

var (
	// ErrBadInverse is returned when the supplied L and invL do not
	// multiply to the identity.
	ErrBadInverse = errors.New("kpa: invL is not the inverse of L")

	// ErrBadDimension is returned for an invL that is not 128x128.
	ErrBadDimension = errors.New("kpa: invL must be 128x128")

	// ErrInvalidRounds is returned for a negative round count.
	ErrInvalidRounds = errors.New("kpa: invalid number of rounds")
)

// Config describes the cipher instance under attack.
type Config struct {
	// InvL is the inverse of the round matrix L.
	InvL gf2.Matrix

	// L is optional. When set it is checked against InvL.
	L fn.Option[gf2.Matrix]

	// Rounds defaults to aesm.Nr when zero.
	Rounds int

	// Mode selects the chaining relation used by RecoverStream and
	// RecoverParallel.
	Mode aesm.Mode

	// Clock times the streaming runs. It defaults to the wall clock.
	Clock clock.Clock
}

// Cracker recovers plaintext blocks from one known plaintext/ciphertext
// pair without any key material.
type Cracker struct {
	cfg   Config
	cache *PowerCache

	// invLr is invL^Rounds, the only power used per block.
	invLr gf2.Matrix
}

// New validates cfg and precomputes the powers of invL.
func New(cfg Config) (*Cracker, error) {
	if cfg.Rounds == 0 {
		cfg.Rounds = aesm.Nr
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.Rounds < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRounds, cfg.Rounds)
	}

	if cfg.InvL.Rows() != aesm.StateBits ||
		cfg.InvL.Cols() != aesm.StateBits {

		return nil, fmt.Errorf("%w: got %dx%d", ErrBadDimension,
			cfg.InvL.Rows(), cfg.InvL.Cols())
	}

	var err error
	cfg.L.WhenSome(func(l gf2.Matrix) {
		if l.Rows() != aesm.StateBits || l.Cols() != aesm.StateBits {
			err = fmt.Errorf("%w: L is %dx%d", ErrBadInverse,
				l.Rows(), l.Cols())
			return
		}
		if !l.Mul(cfg.InvL).Equal(gf2.Identity(aesm.StateBits)) {
			err = ErrBadInverse
		}
	})
	if err != nil {
		return nil, err
	}

	c := &Cracker{
		cfg:   cfg,
		cache: NewPowerCache(cfg.InvL, cfg.Rounds),
	}
	c.invLr = c.cache.At(cfg.Rounds)

	log.Debugf("Cracker ready: mode=%v, rounds=%d", cfg.Mode, cfg.Rounds)

	return c, nil
}

// Power returns invL^k for k in [0, Rounds].
func (c *Cracker) Power(k int) gf2.Matrix {
	return c.cache.At(k)
}

// Mode returns the configured chaining mode.
func (c *Cracker) Mode() aesm.Mode {
	return c.cfg.Mode
}

// RecoverBlock returns Pi = P0 XOR invL^Rounds·(C0 XOR Ci).
func (c *Cracker) RecoverBlock(p0, c0, ci aesm.Block) aesm.Block {
	diff := aesm.StateFromBlock(c0.Xor(ci))

	return aesm.BlockFromState(c.invLr.MulVec(diff)).Xor(p0)
}

// Recover is the ECB relation over a sequence of ciphertext blocks that
// follow C0. P0 is yielded first, then one Pi per Ci in order. An error from
// blocks is passed on and ends the sequence.
func (c *Cracker) Recover(p0, c0 aesm.Block,
	blocks iter.Seq2[aesm.Block, error]) iter.Seq2[aesm.Block, error] {

	return c.run(newChain(aesm.ModeECB, p0, aesm.Block{}, c0), blocks)
}

// RecoverCBC is Recover for a CBC ciphertext whose IV is known. With
// X0 = P0 XOR IV every Xi = X0 XOR invL^Rounds·(C0 XOR Ci) is the input of
// the block cipher and Pi = Xi XOR C(i-1).
func (c *Cracker) RecoverCBC(p0, iv, c0 aesm.Block,
	blocks iter.Seq2[aesm.Block, error]) iter.Seq2[aesm.Block, error] {

	return c.run(newChain(aesm.ModeCBC, p0, iv, c0), blocks)
}

func (c *Cracker) run(ch *chain,
	blocks iter.Seq2[aesm.Block, error]) iter.Seq2[aesm.Block, error] {

	return func(yield func(aesm.Block, error) bool) {
		if !yield(ch.p0, nil) {
			return
		}

		for ci, err := range blocks {
			if err != nil {
				yield(aesm.Block{}, err)
				return
			}

			mask := ch.advance(ci)
			if !yield(c.RecoverBlock(ch.base, ch.c0, ci).Xor(mask), nil) {
				return
			}
		}
	}
}

// chain tracks the per-mode state of a recovery run. For ECB the base is P0
// and the mask is always zero; for CBC the base is P0 XOR IV and the mask is
// the previous ciphertext block.
type chain struct {
	mode aesm.Mode
	p0   aesm.Block
	c0   aesm.Block
	base aesm.Block
	prev aesm.Block
}

func newChain(mode aesm.Mode, p0, iv, c0 aesm.Block) *chain {
	ch := &chain{mode: mode, p0: p0, c0: c0, base: p0}
	if mode == aesm.ModeCBC {
		ch.base = p0.Xor(iv)
		ch.prev = c0
	}

	return ch
}

// advance returns the mask for ci and moves the chain past it.
func (ch *chain) advance(ci aesm.Block) aesm.Block {
	if ch.mode != aesm.ModeCBC {
		return aesm.Block{}
	}

	mask := ch.prev
	ch.prev = ci

	return mask
}
