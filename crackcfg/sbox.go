package crackcfg

import (
	"fmt"

	"github.com/snovvcrash/aes256m-cracker/sbox"
)

const (
	// DefaultSBoxWidth is the width of generated S-boxes.
	DefaultSBoxWidth = 8

	// DefaultSBoxMaxAttempts bounds the generator.
	DefaultSBoxMaxAttempts = 1000
)

// SBox configures the affine S-box generator.
type SBox struct {
	Width       int   `long:"width" description:"Bit width of the generated S-box."`
	MaxAttempts int   `long:"maxattempts" description:"Give up after this many rejected candidates, 0 means never."`
	Seed        int64 `long:"seed" description:"Seed for the generator, 0 picks one from the clock."`
	Emulate     bool  `long:"emulate" description:"Use the XOR closure construction instead of drawing a matrix."`
}

// DefaultSBox returns the generator defaults.
func DefaultSBox() *SBox {
	return &SBox{
		Width:       DefaultSBoxWidth,
		MaxAttempts: DefaultSBoxMaxAttempts,
	}
}

// Validate checks the width and attempt bound.
func (s *SBox) Validate() error {
	if s.Width < 1 || s.Width > sbox.MaxWidth {
		return fmt.Errorf("sbox width %d must be in [1, %d]", s.Width,
			sbox.MaxWidth)
	}
	if s.MaxAttempts < 0 {
		return fmt.Errorf("sbox max attempts %d must not be negative",
			s.MaxAttempts)
	}

	return nil
}

// Compile-time constraint to ensure SBox implements the Validator interface.
var _ Validator = (*SBox)(nil)
