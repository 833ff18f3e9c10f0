package sbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/snovvcrash/aes256m-cracker/affine"
	"github.com/snovvcrash/aes256m-cracker/gf2"
	"github.com/snovvcrash/aes256m-cracker/logutil"
)

// ErrAttemptsExhausted is returned by Generate when MaxAttempts candidates
// were drawn and none was accepted.
var ErrAttemptsExhausted = errors.New("sbox: generation attempts " +
	"exhausted")

// Candidate is an accepted S-box together with the affine map it tabulates.
type Candidate struct {
	Table  Table
	Affine affine.Map
}

// Stats counts the outcome of the attempts made by a Generator.
type Stats struct {
	Attempts     uint64
	Accepted     uint64
	NotBijective uint64
	Rejected     uint64
}

// GeneratorConfig parameterises a Generator.
type GeneratorConfig struct {
	// Width is the bit width of the S-box.
	Width int

	// MaxAttempts bounds Generate. Zero means no bound.
	MaxAttempts int

	// Rand is the randomness source. When nil a time-seeded source is
	// used.
	Rand *rand.Rand
}

// Generator draws random invertible affine S-boxes and screens them. A
// Generator is not safe for concurrent use.
type Generator struct {
	cfg   GeneratorConfig
	rng   *rand.Rand
	stats Stats
}

// NewGenerator validates cfg and returns a Generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := checkWidth(cfg.Width); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts < 0 {
		return nil, fmt.Errorf("sbox: negative max attempts %d",
			cfg.MaxAttempts)
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Generator{cfg: cfg, rng: rng}, nil
}

// Stats returns the counters accumulated so far.
func (g *Generator) Stats() Stats {
	return g.stats
}

// drawInvertible resamples until it hits a full rank matrix. Roughly 29% of
// uniform square matrices over GF(2) are invertible so this terminates
// quickly.
func (g *Generator) drawInvertible() gf2.Matrix {
	for {
		m := gf2.Random(g.cfg.Width, g.cfg.Width, g.rng)
		if gf2.DeterminantParity(m) == 1 {
			return m
		}
	}
}

// Attempt draws one candidate. It returns None when the table has a
// collision or fails the differential law.
func (g *Generator) Attempt() fn.Option[Candidate] {
	g.stats.Attempts++

	m := g.drawInvertible()
	v := gf2.RandomVector(g.cfg.Width, g.rng)

	f, err := affine.New(m, v)
	if err != nil {
		// RandomVector always matches the matrix rows.
		panic(err)
	}

	table, err := FromAffine(f)
	if err != nil {
		panic(err)
	}

	log.Tracef("Attempt %d: M=%v, v=%v", g.stats.Attempts,
		logutil.NewLogClosure(m.String), v)

	if !table.Bijective() {
		g.stats.NotBijective++
		log.Tracef("Attempt %d rejected: table has a collision",
			g.stats.Attempts)

		return fn.None[Candidate]()
	}

	if !AcceptsDifferential(table) {
		g.stats.Rejected++
		log.Tracef("Attempt %d rejected by differential law",
			g.stats.Attempts)

		return fn.None[Candidate]()
	}

	g.stats.Accepted++

	return fn.Some(Candidate{Table: table, Affine: f})
}

// Generate calls Attempt until a candidate is accepted, ctx is done or
// MaxAttempts is reached.
func (g *Generator) Generate(ctx context.Context) (Candidate, error) {
	for i := 0; g.cfg.MaxAttempts == 0 || i < g.cfg.MaxAttempts; i++ {
		select {
		case <-ctx.Done():
			return Candidate{}, ctx.Err()
		default:
		}

		candidate := g.Attempt()
		if candidate.IsSome() {
			log.Debugf("Accepted %d-bit S-box after %d attempt(s)",
				g.cfg.Width, i+1)

			return candidate.UnwrapOrErr(ErrAttemptsExhausted)
		}
	}

	return Candidate{}, fmt.Errorf("%w: %d", ErrAttemptsExhausted,
		g.cfg.MaxAttempts)
}
