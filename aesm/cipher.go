package aesm

import (
	"errors"
	"fmt"
)

// ErrKeySize is returned for keys that are not KeySize bytes long.
var ErrKeySize = errors.New("aesm: invalid key size")

// SubBytes substitutes every byte of b through the S-box.
func SubBytes(b Block) Block {
	for i := range b {
		b[i] = sboxM[b[i]]
	}

	return b
}

// InvSubBytes is the inverse of SubBytes.
func InvSubBytes(b Block) Block {
	for i := range b {
		b[i] = invSboxM[b[i]]
	}

	return b
}

// ShiftRows rotates row r of the state left by r positions.
func ShiftRows(b Block) Block {
	var out Block
	for r := 0; r < 4; r++ {
		for c := 0; c < Nb; c++ {
			out[at(r, c)] = b[at(r, (c+r)%Nb)]
		}
	}

	return out
}

// InvShiftRows is the inverse of ShiftRows.
func InvShiftRows(b Block) Block {
	var out Block
	for r := 0; r < 4; r++ {
		for c := 0; c < Nb; c++ {
			out[at(r, c)] = b[at(r, (c-r+Nb)%Nb)]
		}
	}

	return out
}

// mixColumn multiplies one column by the circulant built from coeffs.
func mixColumn(col [4]byte, coeffs [4]byte) [4]byte {
	var out [4]byte
	for r := 0; r < 4; r++ {
		for k := 0; k < 4; k++ {
			out[r] ^= mul(coeffs[(k-r+4)%4], col[k])
		}
	}

	return out
}

var (
	mixCoeffs    = [4]byte{0x02, 0x03, 0x01, 0x01}
	invMixCoeffs = [4]byte{0x0e, 0x0b, 0x0d, 0x09}
)

func mixColumns(b Block, coeffs [4]byte) Block {
	for c := 0; c < Nb; c++ {
		var col [4]byte
		copy(col[:], b[4*c:4*c+4])

		col = mixColumn(col, coeffs)
		copy(b[4*c:4*c+4], col[:])
	}

	return b
}

// MixColumns multiplies every column by 3x^3 + x^2 + x + 2 mod x^4 + 1.
func MixColumns(b Block) Block {
	return mixColumns(b, mixCoeffs)
}

// InvMixColumns multiplies every column by 11x^3 + 13x^2 + 9x + 14 mod
// x^4 + 1.
func InvMixColumns(b Block) Block {
	return mixColumns(b, invMixCoeffs)
}

// Round is one keyless round, MixColumns(ShiftRows(SubBytes(b))). Unlike AES
// the last round keeps its MixColumns.
func Round(b Block) Block {
	return MixColumns(ShiftRows(SubBytes(b)))
}

// Cipher is AES-256-M keyed with one expanded key. It implements
// crypto/cipher.Block.
type Cipher struct {
	roundKeys [Nr + 1]Block
}

// NewCipher expands a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrKeySize,
			len(key), KeySize)
	}

	const words = Nb * (Nr + 1)
	var w [words][4]byte
	for i := 0; i < Nk; i++ {
		copy(w[i][:], key[4*i:4*i+4])
	}

	for i := Nk; i < words; i++ {
		tmp := w[i-1]
		switch {
		case i%Nk == 0:
			tmp = [4]byte{tmp[1], tmp[2], tmp[3], tmp[0]}
			for j := range tmp {
				tmp[j] = sboxM[tmp[j]]
			}
			tmp[0] ^= rcon[i/Nk]

		case i%Nk == 4:
			for j := range tmp {
				tmp[j] = sboxM[tmp[j]]
			}
		}

		for j := range tmp {
			w[i][j] = w[i-Nk][j] ^ tmp[j]
		}
	}

	c := &Cipher{}
	for rnd := range c.roundKeys {
		for col := 0; col < Nb; col++ {
			copy(c.roundKeys[rnd][4*col:], w[Nb*rnd+col][:])
		}
	}

	return c, nil
}

// BlockSize returns the cipher's block size.
func (c *Cipher) BlockSize() int {
	return BlockSize
}

// EncryptBlock runs the initial AddRoundKey followed by Nr full rounds.
func (c *Cipher) EncryptBlock(b Block) Block {
	b = b.Xor(c.roundKeys[0])
	for rnd := 1; rnd <= Nr; rnd++ {
		b = Round(b).Xor(c.roundKeys[rnd])
	}

	return b
}

// DecryptBlock undoes EncryptBlock, peeling the rounds from the last one.
func (c *Cipher) DecryptBlock(b Block) Block {
	b = b.Xor(c.roundKeys[Nr])
	for rnd := Nr; rnd >= 1; rnd-- {
		b = InvMixColumns(b)
		b = InvShiftRows(b)
		b = InvSubBytes(b)
		b = b.Xor(c.roundKeys[rnd-1])
	}

	return b
}

// Encrypt encrypts the first block in src into dst.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic("aesm: input not full block")
	}

	var b Block
	copy(b[:], src)
	b = c.EncryptBlock(b)
	copy(dst, b[:])
}

// Decrypt decrypts the first block in src into dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic("aesm: input not full block")
	}

	var b Block
	copy(b[:], src)
	b = c.DecryptBlock(b)
	copy(dst, b[:])
}
