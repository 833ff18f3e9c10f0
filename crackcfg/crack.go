package crackcfg

import (
	"errors"
	"fmt"

	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/kpa"
)

// DefaultOutputFilename is where recovered plaintext is written when no
// output is given.
const DefaultOutputFilename = "cracked"

// Crack holds the inputs of one known-plaintext run.
type Crack struct {
	Known  string `long:"known" description:"Known first plaintext block as 32 hex characters."`
	Input  string `long:"input" description:"Path to the ciphertext file."`
	Output string `long:"output" description:"Path the recovered plaintext is written to."`
	Mode   string `long:"mode" description:"Chaining mode the ciphertext was produced with." choice:"ecb" choice:"cbc"`
	InvL   string `long:"invl" description:"Optional path to a text encoded inverse round matrix. Derived from the cipher when empty."`
	Rounds int    `long:"rounds" description:"Number of cipher rounds."`
	Unpad  bool   `long:"unpad" description:"Strip the padding from the last recovered block."`
}

// DefaultCrack returns the defaults of a run.
func DefaultCrack() *Crack {
	return &Crack{
		Output: DefaultOutputFilename,
		Mode:   "ecb",
		Rounds: aesm.Nr,
	}
}

// KnownBlock decodes the known plaintext block.
func (c *Crack) KnownBlock() (aesm.Block, error) {
	return kpa.ParseBlockHex(c.Known)
}

// ChainMode parses the mode name.
func (c *Crack) ChainMode() (aesm.Mode, error) {
	return aesm.ParseMode(c.Mode)
}

// Validate checks every field that can be checked before touching any file.
func (c *Crack) Validate() error {
	if _, err := c.KnownBlock(); err != nil {
		return fmt.Errorf("--crack.known: %w", err)
	}
	if c.Input == "" {
		return errors.New("--crack.input is required")
	}
	if c.Output == "" {
		return errors.New("--crack.output must not be empty")
	}
	if _, err := c.ChainMode(); err != nil {
		return err
	}
	if c.Rounds < 1 {
		return fmt.Errorf("--crack.rounds %d must be positive", c.Rounds)
	}

	return nil
}

// Compile-time constraint to ensure Crack implements the Validator interface.
var _ Validator = (*Crack)(nil)
