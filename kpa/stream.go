package kpa

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/logutil"
	"golang.org/x/sync/errgroup"
)

// chunkBlocks is the number of blocks one worker handles per window.
const chunkBlocks = 512

// Stats summarises a recovery run.
type Stats struct {
	// Blocks counts every block written, P0 included.
	Blocks uint64

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// open reads the blocks the configured mode needs before the body: C0 for
// ECB, IV and C0 for CBC.
func (c *Cracker) open(ctx context.Context, p0 aesm.Block,
	br *BlockReader) (*chain, error) {

	var iv aesm.Block
	if c.cfg.Mode == aesm.ModeCBC {
		var err error
		iv, err = br.Required("IV")
		if err != nil {
			return nil, err
		}
	}

	c0, err := br.Required("C0")
	if err != nil {
		return nil, err
	}

	log.DebugS(ctx, "Known pair loaded",
		logutil.LogBlock("p0", p0[:]),
		logutil.LogBlock("c0", c0[:]),
		"mode", c.cfg.Mode)

	return newChain(c.cfg.Mode, p0, iv, c0), nil
}

// RecoverStream reads the ciphertext from r, C0 first (behind the IV in CBC
// mode), and writes P0 followed by every recovered block to w. It stops
// between blocks when ctx is done.
func (c *Cracker) RecoverStream(ctx context.Context, p0 aesm.Block,
	r io.Reader, w io.Writer) (Stats, error) {

	start := c.cfg.Clock.Now()
	br := NewBlockReader(r)

	ch, err := c.open(ctx, p0, br)
	if err != nil {
		return Stats{}, err
	}

	var (
		stats Stats
		bw    = bufio.NewWriter(w)
	)
	for pi, err := range c.run(ch, br.Blocks()) {
		if err != nil {
			// Keep what was recovered before the bad block.
			if ferr := bw.Flush(); ferr != nil {
				return stats, ferr
			}

			return stats, err
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if _, err := bw.Write(pi[:]); err != nil {
			return stats, fmt.Errorf("write block %d: %w",
				stats.Blocks, err)
		}
		stats.Blocks++
	}

	if err := bw.Flush(); err != nil {
		return stats, err
	}
	stats.Elapsed = c.cfg.Clock.Now().Sub(start)

	log.Infof("Recovered %d block(s) from %d input block(s) in %v",
		stats.Blocks, br.Consumed(), stats.Elapsed)

	return stats, nil
}

// job is one ciphertext block with the mask its mode adds after recovery.
type job struct {
	ci   aesm.Block
	mask aesm.Block
}

// window pulls up to n jobs from next. A read error is kept as the last
// element so blocks before it are still written.
func window(next func() (aesm.Block, error, bool), ch *chain,
	n int) []fn.Result[job] {

	jobs := make([]fn.Result[job], 0, n)
	for len(jobs) < n {
		ci, err, ok := next()
		if !ok {
			break
		}
		if err != nil {
			jobs = append(jobs, fn.Err[job](err))
			break
		}

		jobs = append(jobs, fn.Ok(job{ci: ci, mask: ch.advance(ci)}))
	}

	return jobs
}

// RecoverParallel is RecoverStream with the block arithmetic spread over
// workers goroutines. Input is consumed in windows, each window is split
// into chunks recovered concurrently and the window is written in input
// order before the next one is read.
func (c *Cracker) RecoverParallel(ctx context.Context, p0 aesm.Block,
	r io.Reader, w io.Writer, workers int) (Stats, error) {

	if workers <= 1 {
		return c.RecoverStream(ctx, p0, r, w)
	}

	start := c.cfg.Clock.Now()
	br := NewBlockReader(r)

	ch, err := c.open(ctx, p0, br)
	if err != nil {
		return Stats{}, err
	}

	var (
		stats Stats
		bw    = bufio.NewWriter(w)
	)
	if _, err := bw.Write(p0[:]); err != nil {
		return stats, fmt.Errorf("write block 0: %w", err)
	}
	stats.Blocks++

	next, stop := iter.Pull2(br.Blocks())
	defer stop()

	out := make([]aesm.Block, workers*chunkBlocks)
	for {
		jobs := window(next, ch, workers*chunkBlocks)
		if len(jobs) == 0 {
			break
		}

		// Only the last job of a window can carry an error.
		_, readErr := jobs[len(jobs)-1].Unpack()
		if readErr != nil {
			jobs = jobs[:len(jobs)-1]
		}

		g, gctx := errgroup.WithContext(ctx)
		for lo := 0; lo < len(jobs); lo += chunkBlocks {
			hi := min(lo+chunkBlocks, len(jobs))
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if i%64 == 0 {
						if err := gctx.Err(); err != nil {
							return err
						}
					}

					j, err := jobs[i].Unpack()
					if err != nil {
						return err
					}
					out[i] = c.RecoverBlock(
						ch.base, ch.c0, j.ci,
					).Xor(j.mask)
				}

				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}

		for i := range jobs {
			if _, err := bw.Write(out[i][:]); err != nil {
				return stats, fmt.Errorf("write block %d: %w",
					stats.Blocks, err)
			}
			stats.Blocks++
		}

		log.Tracef("Window of %d block(s) written", len(jobs))

		if readErr != nil {
			if err := bw.Flush(); err != nil {
				return stats, err
			}

			return stats, readErr
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, err
	}
	stats.Elapsed = c.cfg.Clock.Now().Sub(start)

	log.Infof("Recovered %d block(s) from %d input block(s) in %v with "+
		"%d workers", stats.Blocks, br.Consumed(), stats.Elapsed,
		workers)

	return stats, nil
}
