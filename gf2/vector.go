package gf2

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	// ErrNotBit is returned when a literal contains a value other than 0
	// or 1.
	ErrNotBit = errors.New("gf2: value is not a bit")

	// ErrRagged is returned when the rows of a matrix literal do not all
	// have the same length.
	ErrRagged = errors.New("gf2: ragged matrix literal")

	// ErrEmpty is returned when a literal has no elements.
	ErrEmpty = errors.New("gf2: empty literal")
)

const wordBits = 64

// Vector is a fixed length vector over GF(2). Element 0 is the first bit of
// the vector. A Vector is never modified after construction, every operation
// returns a fresh value.
type Vector struct {
	n     int
	words []uint64
}

// numWords returns the number of 64-bit words needed to hold n bits.
func numWords(n int) int {
	return (n + wordBits - 1) / wordBits
}

// newVector allocates a zero vector of length n.
func newVector(n int) Vector {
	if n < 0 {
		panic(fmt.Sprintf("gf2: negative vector length %d", n))
	}

	return Vector{n: n, words: make([]uint64, numWords(n))}
}

// ZeroVector returns the all zero vector of length n.
func ZeroVector(n int) Vector {
	return newVector(n)
}

// NewVector builds a vector from a literal of 0/1 values.
func NewVector(literal []uint8) (Vector, error) {
	if len(literal) == 0 {
		return Vector{}, ErrEmpty
	}

	v := newVector(len(literal))
	for i, b := range literal {
		switch b {
		case 0:
		case 1:
			v.set(i)
		default:
			return Vector{}, fmt.Errorf("%w: element %d is %d",
				ErrNotBit, i, b)
		}
	}

	return v, nil
}

// UnitVector returns the vector of length n that has only bit i set.
func UnitVector(n, i int) Vector {
	v := newVector(n)
	v.checkIndex(i)
	v.set(i)

	return v
}

// VectorFromBytes converts bytes into a bit-vector of length 8*len(b). Bytes
// are taken in order and the most significant bit of every byte comes first.
func VectorFromBytes(b []byte) Vector {
	v := newVector(8 * len(b))
	for k, octet := range b {
		for j := 0; j < 8; j++ {
			if octet&(0x80>>j) != 0 {
				v.set(8*k + j)
			}
		}
	}

	return v
}

// VectorFromUint converts the low n bits of x into a vector of length n, most
// significant bit first. n must be in [1, 64].
func VectorFromUint(x uint64, n int) Vector {
	if n < 1 || n > wordBits {
		panic(fmt.Sprintf("gf2: integer width %d out of range", n))
	}

	v := newVector(n)
	for i := 0; i < n; i++ {
		if (x>>(n-1-i))&1 == 1 {
			v.set(i)
		}
	}

	return v
}

// set flips bit i on. It is only used while a vector is being built.
func (v Vector) set(i int) {
	v.words[i/wordBits] |= 1 << (i % wordBits)
}

func (v Vector) checkIndex(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("gf2: bit index %d out of range [0, %d)",
			i, v.n))
	}
}

// Len returns the number of bits in the vector.
func (v Vector) Len() int {
	return v.n
}

// Bit returns bit i as 0 or 1.
func (v Vector) Bit(i int) uint8 {
	v.checkIndex(i)

	return uint8((v.words[i/wordBits] >> (i % wordBits)) & 1)
}

// Bits returns the vector as a slice of 0/1 values.
func (v Vector) Bits() []uint8 {
	out := make([]uint8, v.n)
	for i := range out {
		out[i] = v.Bit(i)
	}

	return out
}

// Bytes packs the vector back into bytes, the inverse of VectorFromBytes.
// The length of the vector must be a multiple of 8.
func (v Vector) Bytes() []byte {
	if v.n%8 != 0 {
		panic(fmt.Sprintf("gf2: vector of %d bits is not byte "+
			"aligned", v.n))
	}

	return v.paddedBytes()
}

// paddedBytes packs the vector MSB first, padding the final byte with zero
// bits.
func (v Vector) paddedBytes() []byte {
	out := make([]byte, (v.n+7)/8)
	for i := 0; i < v.n; i++ {
		if v.Bit(i) == 1 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}

	return out
}

// Uint returns the vector read as an unsigned integer, most significant bit
// first. The vector must be at most 64 bits long.
func (v Vector) Uint() uint64 {
	if v.n > wordBits {
		panic(fmt.Sprintf("gf2: vector of %d bits does not fit in "+
			"uint64", v.n))
	}

	var x uint64
	for i := 0; i < v.n; i++ {
		x = x<<1 | uint64(v.Bit(i))
	}

	return x
}

// Xor returns v + w over GF(2).
func (v Vector) Xor(w Vector) Vector {
	mustSameLen("xor", v, w)

	out := newVector(v.n)
	for i := range out.words {
		out.words[i] = v.words[i] ^ w.words[i]
	}

	return out
}

// Dot returns the GF(2) inner product of v and w.
func Dot(v, w Vector) uint8 {
	mustSameLen("dot", v, w)

	var acc uint64
	for i := range v.words {
		acc ^= v.words[i] & w.words[i]
	}

	return uint8(bits.OnesCount64(acc) & 1)
}

// Weight returns the number of set bits.
func (v Vector) Weight() int {
	var n int
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}

	return n
}

// IsZero reports whether every bit of v is zero.
func (v Vector) IsZero() bool {
	for _, w := range v.words {
		if w != 0 {
			return false
		}
	}

	return true
}

// Equal reports whether v and w have the same length and bits.
func (v Vector) Equal(w Vector) bool {
	if v.n != w.n {
		return false
	}
	for i := range v.words {
		if v.words[i] != w.words[i] {
			return false
		}
	}

	return true
}

// String renders the vector as a string of 0 and 1 characters.
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(v.n)
	for i := 0; i < v.n; i++ {
		b.WriteByte('0' + v.Bit(i))
	}

	return b.String()
}

func mustSameLen(op string, v, w Vector) {
	if v.n != w.n {
		panic(fmt.Sprintf("gf2: %s of vectors with lengths %d and %d",
			op, v.n, w.n))
	}
}
