package aesm

import (
	"math/rand"
	"sync"
	"time"

	"github.com/snovvcrash/aes256m-cracker/affine"
	"github.com/snovvcrash/aes256m-cracker/gf2"
)

// stateFunc lifts a byte-oriented step to the bit-vector state.
func stateFunc(step func(Block) Block) func(gf2.Vector) gf2.Vector {
	return func(v gf2.Vector) gf2.Vector {
		return StateFromBlock(step(BlockFromState(v)))
	}
}

// deriveMap probes a byte-oriented step and returns its affine form.
func deriveMap(step func(Block) Block) affine.Map {
	return affine.FromFunc(StateBits, stateFunc(step))
}

// roundForms holds everything derived from the byte-oriented steps. It is
// computed once on first use.
type roundForms struct {
	subBytes   affine.Map
	shiftRows  gf2.Matrix
	mixColumns gf2.Matrix
	round      affine.Map
	invL       gf2.Matrix
}

var forms = sync.OnceValue(func() roundForms {
	start := time.Now()

	f := roundForms{
		subBytes:   deriveMap(SubBytes),
		shiftRows:  deriveMap(ShiftRows).Matrix(),
		mixColumns: deriveMap(MixColumns).Matrix(),
	}

	// V = 0x2b in every byte is fixed by both ShiftRows and MixColumns
	// so the round offset is V itself.
	round, err := affine.MergeInvariant(
		f.subBytes, f.shiftRows, f.mixColumns,
	)
	if err != nil {
		panic(err)
	}
	f.round = round

	f.invL, err = gf2.Inverse(round.Matrix())
	if err != nil {
		panic(err)
	}

	log.Debugf("Derived round matrices in %v", time.Since(start))

	return f
})

// SubBytesMap is SubBytes as a 128-bit affine map: the S-box matrix on the
// diagonal and V as offset.
func SubBytesMap() affine.Map {
	return forms().subBytes
}

// ShiftRowsMatrix is the permutation matrix of ShiftRows.
func ShiftRowsMatrix() gf2.Matrix {
	return forms().shiftRows
}

// MixColumnsMatrix is the matrix of MixColumns.
func MixColumnsMatrix() gf2.Matrix {
	return forms().mixColumns
}

// RoundMap is one keyless round x -> L·x + V.
func RoundMap() affine.Map {
	return forms().round
}

// L returns MC·SR·SB.
func L() gf2.Matrix {
	return forms().round.Matrix()
}

// InvL returns the inverse of L.
func InvL() gf2.Matrix {
	return forms().invL
}

// V returns the round offset, SboxMOffset in every byte.
func V() gf2.Vector {
	return forms().round.Offset()
}

// SboxMAffine is the 8-bit S-box as x -> M·x + 0x2b.
func SboxMAffine() affine.Map {
	f, err := affine.New(SboxMMatrix(), gf2.VectorFromUint(SboxMOffset, 8))
	if err != nil {
		panic(err)
	}

	return f
}

// Step pairs a byte-oriented transform with the affine map claimed to
// implement it.
type Step struct {
	Name  string
	Bytes func(Block) Block
	Map   affine.Map
}

// Steps lists the round steps and one full keyless round.
func Steps() []Step {
	f := forms()

	return []Step{
		{Name: "SubBytes", Bytes: SubBytes, Map: f.subBytes},
		{
			Name:  "ShiftRows",
			Bytes: ShiftRows,
			Map:   affine.Linear(f.shiftRows),
		},
		{
			Name:  "MixColumns",
			Bytes: MixColumns,
			Map:   affine.Linear(f.mixColumns),
		},
		{Name: "Round", Bytes: Round, Map: f.round},
	}
}

// CipherStep models a keyed cipher as C = L^Nr·P + K' where K' is the
// encryption of the all-zero block.
func CipherStep(c *Cipher) Step {
	k := c.EncryptBlock(Block{})
	f, err := affine.New(gf2.Power(L(), Nr), StateFromBlock(k))
	if err != nil {
		panic(err)
	}

	return Step{Name: "Cipher", Bytes: c.EncryptBlock, Map: f}
}

// Comparison is the outcome of checking a Step on random blocks.
type Comparison struct {
	Step       string
	Samples    int
	Mismatches int
}

// OK reports whether no sample disagreed.
func (c Comparison) OK() bool {
	return c.Mismatches == 0
}

// CompareRound evaluates every step on the same random blocks through both
// its byte-oriented and its matrix form.
func CompareRound(rng *rand.Rand, samples int, steps ...Step) []Comparison {
	blocks := make([]Block, samples)
	for i := range blocks {
		rng.Read(blocks[i][:])
	}

	results := make([]Comparison, 0, len(steps))
	for _, step := range steps {
		res := Comparison{Step: step.Name, Samples: samples}
		for _, b := range blocks {
			want := step.Bytes(b)
			got := BlockFromState(step.Map.Apply(StateFromBlock(b)))
			if got != want {
				res.Mismatches++
				log.Debugf("%s mismatch on %v: bytes=%v matrix=%v",
					step.Name, b, want, got)
			}
		}
		results = append(results, res)
	}

	return results
}
