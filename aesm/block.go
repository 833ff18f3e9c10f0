package aesm

import (
	"encoding/hex"

	"github.com/snovvcrash/aes256m-cracker/gf2"
)

// Block is one 16-byte cipher block in its column-major byte order.
type Block [BlockSize]byte

// String returns the block as lower case hex.
func (b Block) String() string {
	return hex.EncodeToString(b[:])
}

// Xor returns b ^ o.
func (b Block) Xor(o Block) Block {
	var out Block
	for i := range out {
		out[i] = b[i] ^ o[i]
	}

	return out
}

// at addresses state[r][c] inside the block layout.
func at(r, c int) int {
	return r + 4*c
}

// StateFromBlock maps a block onto the 128-bit state vector. Byte
// state[r][c] = b[r+4c] lands at row-major position 4r+c and each byte is
// expanded most significant bit first.
func StateFromBlock(b Block) gf2.Vector {
	var flat [BlockSize]byte
	for r := 0; r < 4; r++ {
		for c := 0; c < Nb; c++ {
			flat[4*r+c] = b[at(r, c)]
		}
	}

	return gf2.VectorFromBytes(flat[:])
}

// BlockFromState is the inverse of StateFromBlock. It panics if v is not 128
// bits long.
func BlockFromState(v gf2.Vector) Block {
	if v.Len() != StateBits {
		panic("aesm: state vector must be 128 bits")
	}

	flat := v.Bytes()

	var b Block
	for r := 0; r < 4; r++ {
		for c := 0; c < Nb; c++ {
			b[at(r, c)] = flat[4*r+c]
		}
	}

	return b
}
