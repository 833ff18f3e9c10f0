package sbox

import (
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/snovvcrash/aes256m-cracker/affine"
	"github.com/snovvcrash/aes256m-cracker/gf2"
)

// MaxWidth is the widest substitution handled here. The difference table of a
// w-bit S-box has 4^w cells, so anything wider is out of reach anyway.
const MaxWidth = 12

var (
	// ErrInvalidWidth is returned for widths outside [1, MaxWidth].
	ErrInvalidWidth = errors.New("sbox: invalid bit width")

	// ErrInvalidTable is returned when a lookup table does not have 2^w
	// entries all below 2^w.
	ErrInvalidTable = errors.New("sbox: invalid lookup table")

	// ErrNotBijective is returned when two inputs share an output.
	ErrNotBijective = errors.New("sbox: table is not bijective")

	// ErrNotAffine is returned when a table cannot be written as
	// x -> M·x + v.
	ErrNotAffine = errors.New("sbox: table is not affine")
)

// Table is a substitution on w-bit values stored as a lookup table of 2^w
// entries. Values are read and written with the most significant bit first
// when viewed as bit-vectors.
type Table struct {
	width   int
	entries []uint16
}

func checkWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWidth,
			width, MaxWidth)
	}

	return nil
}

// NewTable validates and copies a lookup table. Its length must be a power of
// two no larger than 2^MaxWidth and every entry must be in range. Bijectivity
// is not required here, use Bijective to check for it.
func NewTable(entries []uint16) (Table, error) {
	n := len(entries)
	if n < 2 || n&(n-1) != 0 {
		return Table{}, fmt.Errorf("%w: length %d is not a power of "+
			"two", ErrInvalidTable, n)
	}

	width := 0
	for 1<<width < n {
		width++
	}
	if err := checkWidth(width); err != nil {
		return Table{}, err
	}

	for i, e := range entries {
		if int(e) >= n {
			return Table{}, fmt.Errorf("%w: entry %d is %d, want "+
				"< %d", ErrInvalidTable, i, e, n)
		}
	}

	return Table{width: width, entries: append([]uint16(nil), entries...)}, nil
}

// FromBytes builds an 8-bit table from 256 byte entries.
func FromBytes(entries []byte) (Table, error) {
	wide := make([]uint16, len(entries))
	for i, e := range entries {
		wide[i] = uint16(e)
	}

	return NewTable(wide)
}

// FromAffine tabulates x -> f(x) for every w-bit input where w is the width of
// f, which must be square.
func FromAffine(f affine.Map) (Table, error) {
	width := f.InWidth()
	if err := checkWidth(width); err != nil {
		return Table{}, err
	}
	if f.OutWidth() != width {
		return Table{}, fmt.Errorf("%w: map is %dx%d", ErrInvalidWidth,
			f.OutWidth(), width)
	}

	entries := make([]uint16, 1<<width)
	for i := range entries {
		x := gf2.VectorFromUint(uint64(i), width)
		entries[i] = uint16(f.Apply(x).Uint())
	}

	return Table{width: width, entries: entries}, nil
}

// Width returns the bit width w.
func (s Table) Width() int {
	return s.width
}

// Len returns the number of entries, 2^w.
func (s Table) Len() int {
	return len(s.entries)
}

// Lookup returns the image of x.
func (s Table) Lookup(x uint16) uint16 {
	return s.entries[x]
}

// Entries returns a copy of the lookup table.
func (s Table) Entries() []uint16 {
	return append([]uint16(nil), s.entries...)
}

// Bytes returns the table as bytes. It panics for widths above 8.
func (s Table) Bytes() []byte {
	if s.width > 8 {
		panic(fmt.Sprintf("sbox: %d-bit table does not fit in bytes",
			s.width))
	}

	out := make([]byte, len(s.entries))
	for i, e := range s.entries {
		out[i] = byte(e)
	}

	return out
}

// Bijective reports whether no two distinct inputs map to the same output.
func (s Table) Bijective() bool {
	return s.width > 0 && !fn.HasDuplicates(s.entries)
}

// Inverse returns the inverse substitution.
func (s Table) Inverse() (Table, error) {
	if !s.Bijective() {
		return Table{}, ErrNotBijective
	}

	inv := make([]uint16, len(s.entries))
	for i, e := range s.entries {
		inv[e] = uint16(i)
	}

	return Table{width: s.width, entries: inv}, nil
}

// Affine recovers (M, v) such that s(x) = M·x + v, verifying every entry.
func (s Table) Affine() (affine.Map, error) {
	lookup := func(x gf2.Vector) gf2.Vector {
		return gf2.VectorFromUint(
			uint64(s.entries[x.Uint()]), s.width,
		)
	}
	f := affine.FromFunc(s.width, lookup)

	for i := range s.entries {
		x := gf2.VectorFromUint(uint64(i), s.width)
		if f.Apply(x).Uint() != uint64(s.entries[i]) {
			return affine.Map{}, fmt.Errorf("%w: entry %d",
				ErrNotAffine, i)
		}
	}

	return f, nil
}

// Equal reports whether both tables have the same entries.
func (s Table) Equal(o Table) bool {
	if s.width != o.width {
		return false
	}
	for i := range s.entries {
		if s.entries[i] != o.entries[i] {
			return false
		}
	}

	return true
}
