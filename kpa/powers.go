package kpa

import (
	"fmt"

	"github.com/snovvcrash/aes256m-cracker/gf2"
)

// PowerCache holds invL^1 through invL^k, each obtained from the previous one
// by a single multiplication.
type PowerCache struct {
	n      int
	powers []gf2.Matrix
}

// NewPowerCache builds the chain invL^k = invL^(k-1)·invL up to k = depth.
func NewPowerCache(invL gf2.Matrix, depth int) *PowerCache {
	if !invL.IsSquare() {
		panic(fmt.Sprintf("kpa: power cache needs a square matrix, "+
			"got %dx%d", invL.Rows(), invL.Cols()))
	}
	if depth < 1 {
		panic(fmt.Sprintf("kpa: power cache size %d", depth))
	}

	powers := make([]gf2.Matrix, depth)
	powers[0] = invL
	for k := 1; k < depth; k++ {
		powers[k] = powers[k-1].Mul(invL)
	}

	return &PowerCache{n: invL.Rows(), powers: powers}
}

// Len returns the highest exponent held.
func (p *PowerCache) Len() int {
	return len(p.powers)
}

// At returns invL^k. At(0) is the identity. It panics for k outside
// [0, Len()].
func (p *PowerCache) At(k int) gf2.Matrix {
	switch {
	case k == 0:
		return gf2.Identity(p.n)

	case k < 0 || k > len(p.powers):
		panic(fmt.Sprintf("kpa: exponent %d not in cache of %d", k,
			len(p.powers)))
	}

	return p.powers[k-1]
}
