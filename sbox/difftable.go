package sbox

// DifferenceTable counts, for every input difference a and output difference
// b, the ordered pairs (c, d) with c^d == a and s(c)^s(d) == b.
type DifferenceTable struct {
	size   int
	counts []uint32
}

// ComputeDifferenceTable walks all 4^w ordered pairs of inputs.
func ComputeDifferenceTable(s Table) DifferenceTable {
	n := s.Len()
	d := DifferenceTable{
		size:   n,
		counts: make([]uint32, n*n),
	}

	for c := 0; c < n; c++ {
		sc := int(s.entries[c])
		for e := 0; e < n; e++ {
			in := c ^ e
			out := sc ^ int(s.entries[e])
			d.counts[in*n+out]++
		}
	}

	return d
}

// Size returns 2^w, the number of rows and columns.
func (d DifferenceTable) Size() int {
	return d.size
}

// Count returns the number of pairs with input difference in and output
// difference out.
func (d DifferenceTable) Count(in, out int) int {
	return int(d.counts[in*d.size+out])
}

// CellsEqualTo returns how many cells hold exactly n.
func (d DifferenceTable) CellsEqualTo(n int) int {
	var total int
	for _, c := range d.counts {
		if int(c) == n {
			total++
		}
	}

	return total
}

// Uniformity is the largest count over rows with a non-zero input
// difference. An affine table always scores 2^w here.
func (d DifferenceTable) Uniformity() int {
	var best uint32
	for _, c := range d.counts[d.size:] {
		if c > best {
			best = c
		}
	}

	return int(best)
}

// AcceptsDifferential applies the acceptance law on s: the number of
// difference table cells equal to 2^w must itself be 2^w. An affine
// bijection satisfies it because every input difference a is carried to the
// single output difference M·a.
func AcceptsDifferential(s Table) bool {
	n := s.Len()

	return ComputeDifferenceTable(s).CellsEqualTo(n) == n
}
