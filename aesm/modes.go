package aesm

import (
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotBlockAligned is returned when ciphertext is not a whole number
	// of blocks.
	ErrNotBlockAligned = errors.New("aesm: ciphertext is not block " +
		"aligned")

	// ErrBadPadding is returned when the last block does not end with valid
	// padding.
	ErrBadPadding = errors.New("aesm: invalid padding")

	// ErrPasswordCharset is returned for passwords with characters outside
	// the printable, non-space ASCII range.
	ErrPasswordCharset = errors.New("aesm: password must only contain " +
		"printable non-space ASCII")

	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("aesm: unknown cipher mode")
)

// Mode is a block chaining mode.
type Mode uint8

const (
	// ModeECB encrypts every block independently.
	ModeECB Mode = iota

	// ModeCBC chains blocks and prefixes the output with the IV.
	ModeCBC
)

// String returns the upper case name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeECB:
		return "ECB"
	case ModeCBC:
		return "CBC"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode accepts "ecb" or "cbc" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "ecb":
		return ModeECB, nil
	case "cbc":
		return ModeCBC, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// KeyFromPassword derives the 256-bit key as the SHA-256 digest of the
// password.
func KeyFromPassword(password string) ([KeySize]byte, error) {
	if password == "" {
		return [KeySize]byte{}, fmt.Errorf("%w: empty password",
			ErrPasswordCharset)
	}
	for i := 0; i < len(password); i++ {
		if password[i] <= 0x20 || password[i] >= 0x7f {
			return [KeySize]byte{}, fmt.Errorf("%w: byte %d",
				ErrPasswordCharset, i)
		}
	}

	return sha256.Sum256([]byte(password)), nil
}

// Pad appends zero bytes and a final length byte up to the next block
// boundary. Aligned input gets a whole padding block.
func Pad(data []byte) []byte {
	n := BlockSize - len(data)%BlockSize

	out := make([]byte, len(data)+n)
	copy(out, data)
	out[len(out)-1] = byte(n)

	return out
}

// Unpad strips the padding added by Pad.
func Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, ErrNotBlockAligned
	}

	n := int(data[len(data)-1])
	if n == 0 || n > BlockSize {
		return nil, fmt.Errorf("%w: length byte %d", ErrBadPadding, n)
	}
	for _, b := range data[len(data)-n : len(data)-1] {
		if b != 0 {
			return nil, fmt.Errorf("%w: non-zero fill", ErrBadPadding)
		}
	}

	return data[:len(data)-n], nil
}

// EncryptECB pads and encrypts plaintext block by block.
func EncryptECB(c *Cipher, plaintext []byte) []byte {
	out := Pad(plaintext)
	for i := 0; i < len(out); i += BlockSize {
		c.Encrypt(out[i:], out[i:])
	}

	log.Tracef("ECB encrypted %d bytes into %d blocks", len(plaintext),
		len(out)/BlockSize)

	return out
}

// DecryptECB decrypts and unpads ciphertext.
func DecryptECB(c *Cipher, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, ErrNotBlockAligned
	}

	out := make([]byte, len(ciphertext))
	for i := 0; i < len(out); i += BlockSize {
		c.Decrypt(out[i:], ciphertext[i:])
	}

	return Unpad(out)
}

// EncryptCBC pads and encrypts plaintext chained from iv. The output is
// IV || C0 || C1 ...
func EncryptCBC(c *Cipher, iv Block, plaintext []byte) []byte {
	padded := Pad(plaintext)

	out := make([]byte, BlockSize+len(padded))
	copy(out, iv[:])
	cipher.NewCBCEncrypter(c, iv[:]).CryptBlocks(out[BlockSize:], padded)

	return out
}

// DecryptCBC splits the leading IV off data, decrypts the rest and unpads
// it.
func DecryptCBC(c *Cipher, data []byte) ([]byte, error) {
	if len(data) < 2*BlockSize || len(data)%BlockSize != 0 {
		return nil, ErrNotBlockAligned
	}

	iv, body := data[:BlockSize], data[BlockSize:]
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(c, iv).CryptBlocks(out, body)

	return Unpad(out)
}
