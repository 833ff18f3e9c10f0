package sbox

import (
	"math/rand"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Emulate builds a w-bit table by closing random images under XOR. S(0) and
// S(2^j) are drawn as distinct random values and every other entry is forced
// by S(a^b^c) = S(a)^S(b)^S(c) with a = i without its lowest set bit, b that
// bit and c = 0. The result is affine by construction. It is returned only
// when it is bijective and passes AcceptsDifferential, so a dependent set of
// basis images yields None.
func Emulate(width int, rng *rand.Rand) fn.Option[Table] {
	if checkWidth(width) != nil {
		return fn.None[Table]()
	}

	n := 1 << width
	pool := rng.Perm(n)
	used := make(map[uint16]struct{}, width+1)

	// nextUnique pops from the pool until it finds a value not handed out
	// yet. The pool is a permutation so it never runs dry for width+1
	// draws.
	nextUnique := func() uint16 {
		for {
			last := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			if _, ok := used[uint16(last)]; !ok {
				used[uint16(last)] = struct{}{}
				return uint16(last)
			}
		}
	}

	entries := make([]uint16, n)
	entries[0] = nextUnique()
	for j := 0; j < width; j++ {
		entries[1<<j] = nextUnique()
	}

	for i := 1; i < n; i++ {
		low := i & -i
		if low == i {
			continue
		}
		entries[i] = entries[i^low] ^ entries[low] ^ entries[0]
	}

	table := Table{width: width, entries: entries}
	if !table.Bijective() {
		log.Tracef("Emulated %d-bit table is not bijective", width)
		return fn.None[Table]()
	}
	if !AcceptsDifferential(table) {
		log.Tracef("Emulated %d-bit table rejected by differential "+
			"law", width)
		return fn.None[Table]()
	}

	return fn.Some(table)
}
