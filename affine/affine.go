package affine

import (
	"errors"
	"fmt"

	"github.com/snovvcrash/aes256m-cracker/gf2"
)

var (
	// ErrOffsetSize is returned when the offset vector does not match the
	// output dimension of the linear part.
	ErrOffsetSize = errors.New("affine: offset length does not match " +
		"matrix rows")

	// ErrEmptyChain is returned when composing an empty list of maps.
	ErrEmptyChain = errors.New("affine: empty chain")

	// ErrWidthMismatch is returned when two neighbouring maps of a chain do
	// not agree on the width of the value passed between them.
	ErrWidthMismatch = errors.New("affine: width mismatch in chain")

	// ErrOffsetNotInvariant is returned by MergeInvariant when a linear
	// step moves the offset it is supposed to leave alone.
	ErrOffsetNotInvariant = errors.New("affine: offset is not invariant " +
		"under linear step")
)

// Map is the affine transformation x -> M·x + v over GF(2).
type Map struct {
	m gf2.Matrix
	v gf2.Vector
}

// New pairs a linear part with an offset. The offset length must equal the
// number of rows of m.
func New(m gf2.Matrix, v gf2.Vector) (Map, error) {
	if v.Len() != m.Rows() {
		return Map{}, fmt.Errorf("%w: %d vs %d", ErrOffsetSize,
			v.Len(), m.Rows())
	}

	return Map{m: m, v: v}, nil
}

// Linear wraps a matrix as an affine map with a zero offset.
func Linear(m gf2.Matrix) Map {
	return Map{m: m, v: gf2.ZeroVector(m.Rows())}
}

// Identity returns the identity map on n-bit vectors.
func Identity(n int) Map {
	return Linear(gf2.Identity(n))
}

// Matrix returns the linear part.
func (f Map) Matrix() gf2.Matrix {
	return f.m
}

// Offset returns the constant part.
func (f Map) Offset() gf2.Vector {
	return f.v
}

// InWidth is the length of the vectors the map accepts.
func (f Map) InWidth() int {
	return f.m.Cols()
}

// OutWidth is the length of the vectors the map produces.
func (f Map) OutWidth() int {
	return f.m.Rows()
}

// Apply evaluates the map at x.
func (f Map) Apply(x gf2.Vector) gf2.Vector {
	return gf2.Apply(f.m, x, f.v)
}

// IsLinear reports whether the offset is zero.
func (f Map) IsLinear() bool {
	return f.v.IsZero()
}

// Then returns the map that applies f first and g second:
//
//	g(f(x)) = (M2·M1)·x + (M2·v1 + v2)
//
// It panics if the output width of f differs from the input width of g.
func (f Map) Then(g Map) Map {
	return Map{
		m: g.m.Mul(f.m),
		v: g.m.MulVec(f.v).Xor(g.v),
	}
}

// Equal reports whether both maps have the same linear part and offset.
func (f Map) Equal(g Map) bool {
	return f.m.Equal(g.m) && f.v.Equal(g.v)
}

// Pow composes f with itself n times. Pow(0) is the identity.
func (f Map) Pow(n int) Map {
	if n < 0 {
		panic(fmt.Sprintf("affine: negative exponent %d", n))
	}

	result := Identity(f.InWidth())
	for i := 0; i < n; i++ {
		result = result.Then(f)
	}

	return result
}

// Compose folds an ordered chain of round steps into one equivalent map. The
// first map is applied first.
func Compose(maps ...Map) (Map, error) {
	if len(maps) == 0 {
		return Map{}, ErrEmptyChain
	}

	result := maps[0]
	for i, next := range maps[1:] {
		if next.InWidth() != result.OutWidth() {
			return Map{}, fmt.Errorf("%w: step %d produces %d "+
				"bits, step %d expects %d", ErrWidthMismatch,
				i, result.OutWidth(), i+1, next.InWidth())
		}
		result = result.Then(next)
	}

	return result, nil
}

// FromFunc recovers the affine map that f implements on inWidth-bit inputs by
// probing it at zero and at every unit vector. The result only agrees with f
// everywhere when f really is affine; callers that cannot vouch for that
// should check with Agrees.
func FromFunc(inWidth int, f func(gf2.Vector) gf2.Vector) Map {
	offset := f(gf2.ZeroVector(inWidth))

	cols := make([]gf2.Vector, inWidth)
	for j := range cols {
		cols[j] = f(gf2.UnitVector(inWidth, j)).Xor(offset)
	}

	return Map{m: gf2.FromColumns(cols), v: offset}
}

// Agrees reports whether g and the map give the same image for every input in
// xs.
func (f Map) Agrees(g func(gf2.Vector) gf2.Vector, xs []gf2.Vector) bool {
	for _, x := range xs {
		if !f.Apply(x).Equal(g(x)) {
			return false
		}
	}

	return true
}
