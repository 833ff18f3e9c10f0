package affine

import (
	"fmt"

	"github.com/snovvcrash/aes256m-cracker/gf2"
)

// OffsetInvariant reports whether the linear step m leaves v in place, i.e.
// m·v == v over GF(2).
func OffsetInvariant(m gf2.Matrix, v gf2.Vector) bool {
	if !m.IsSquare() || m.Cols() != v.Len() {
		return false
	}

	return m.MulVec(v).Equal(v)
}

// MergeInvariant composes first with the linear steps that follow it while
// carrying first's offset through unchanged, so the offset is added once at
// the end instead of being pushed through every step. The shortcut is only
// valid when every step fixes the offset and that is verified here; a step
// that moves it yields ErrOffsetNotInvariant. The result always equals
// Compose(first, Linear(steps[0]), ...).
func MergeInvariant(first Map, steps ...gf2.Matrix) (Map, error) {
	linear := first.m
	for i, step := range steps {
		if step.Cols() != linear.Rows() {
			return Map{}, fmt.Errorf("%w: step %d expects %d bits, "+
				"got %d", ErrWidthMismatch, i, step.Cols(),
				linear.Rows())
		}
		if !OffsetInvariant(step, first.v) {
			return Map{}, fmt.Errorf("%w: step %d", ErrOffsetNotInvariant,
				i)
		}
		linear = step.Mul(linear)
	}

	return Map{m: linear, v: first.v}, nil
}
