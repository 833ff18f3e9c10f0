package kpa

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/snovvcrash/aes256m-cracker/aesm"
)

var (
	// ErrShortBlock is returned when the input ends in the middle of a
	// block.
	ErrShortBlock = errors.New("kpa: trailing partial block")

	// ErrNoKnownBlock is returned when the input ends before a block that
	// the attack needs, such as C0 or the CBC IV.
	ErrNoKnownBlock = errors.New("kpa: missing required block")

	// ErrMalformedBlock is returned by ParseBlockHex.
	ErrMalformedBlock = errors.New("kpa: block must be 32 hex " +
		"characters")
)

// ParseBlockHex decodes exactly one block written as 32 hex characters.
func ParseBlockHex(s string) (aesm.Block, error) {
	var b aesm.Block
	if len(s) != 2*aesm.BlockSize {
		return b, fmt.Errorf("%w: got %d characters", ErrMalformedBlock,
			len(s))
	}

	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return aesm.Block{}, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}

	return b, nil
}

// BlockReader splits a byte stream into whole blocks. It never pads or
// truncates.
type BlockReader struct {
	r    io.Reader
	read uint64
}

// NewBlockReader wraps r.
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{r: r}
}

// Consumed returns the number of whole blocks read so far.
func (b *BlockReader) Consumed() uint64 {
	return b.read
}

// Next returns the next block, io.EOF at a clean end of input or
// ErrShortBlock if the input stops inside a block.
func (b *BlockReader) Next() (aesm.Block, error) {
	var blk aesm.Block
	n, err := io.ReadFull(b.r, blk[:])
	switch {
	case err == io.EOF:
		return aesm.Block{}, io.EOF

	case errors.Is(err, io.ErrUnexpectedEOF):
		return aesm.Block{}, fmt.Errorf("%w: %d byte(s) after block "+
			"%d", ErrShortBlock, n, b.read)

	case err != nil:
		return aesm.Block{}, err
	}

	b.read++

	return blk, nil
}

// Required is Next for a block that must exist. A clean end of input is
// reported as ErrNoKnownBlock.
func (b *BlockReader) Required(name string) (aesm.Block, error) {
	blk, err := b.Next()
	if err == io.EOF {
		return aesm.Block{}, fmt.Errorf("%w: %s", ErrNoKnownBlock,
			name)
	}

	return blk, err
}

// Blocks yields the remaining blocks. It stops silently at io.EOF and yields
// any other error once as the last element.
func (b *BlockReader) Blocks() iter.Seq2[aesm.Block, error] {
	return func(yield func(aesm.Block, error) bool) {
		for {
			blk, err := b.Next()
			switch {
			case err == io.EOF:
				return

			case err != nil:
				yield(aesm.Block{}, err)
				return
			}

			if !yield(blk, nil) {
				return
			}
		}
	}
}
