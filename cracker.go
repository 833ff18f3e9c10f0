package cracker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/build"
	"github.com/snovvcrash/aes256m-cracker/gf2"
	"github.com/snovvcrash/aes256m-cracker/kpa"
	"github.com/snovvcrash/aes256m-cracker/logutil"
	"github.com/snovvcrash/aes256m-cracker/monitoring"
	"github.com/snovvcrash/aes256m-cracker/signal"
)

// Main is the true entry point for aesmcrack. It recovers the plaintext of
// cfg.Crack.Input into cfg.Crack.Output and returns once the file is written
// or the interceptor requested a shutdown.
func Main(cfg *Config, interceptor signal.Interceptor) error {
	defer func() {
		log.Info("Shutdown complete")
		if cfg.LogRotator != nil {
			if err := cfg.LogRotator.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Could not close log "+
					"rotator: %v\n", err)
			}
		}
	}()

	ctx, cancel := interceptor.Context(context.Background())
	defer cancel()

	log.Infof("Version: %s commit=%s, build=%s, logging=%s",
		build.Version(), build.Commit, build.Deployment,
		build.LoggingType)

	if cfg.Prometheus.Enabled() {
		if err := monitoring.ExportPrometheusMetrics(
			cfg.Prometheus,
		); err != nil {
			return fmt.Errorf("unable to start prometheus "+
				"exporter: %w", err)
		}
	}

	cracker, err := newCracker(cfg)
	if err != nil {
		return err
	}

	stats, err := Crack(ctx, cracker, cfg)
	if err != nil {
		return err
	}

	monitoring.AddRecoveredBlocks(stats.Blocks)
	monitoring.ObserveRun(stats.Elapsed)

	log.Infof("Recovered file: %v", cfg.Crack.Output)

	return nil
}

// newCracker builds the attack for the configured instance. Without an
// explicit matrix file the round matrix is derived from the cipher and its
// inverse is checked against it.
func newCracker(cfg *Config) (*kpa.Cracker, error) {
	mode, err := cfg.Crack.ChainMode()
	if err != nil {
		return nil, err
	}

	kcfg := kpa.Config{
		Rounds: cfg.Crack.Rounds,
		Mode:   mode,
	}

	if cfg.Crack.InvL == "" {
		start := time.Now()
		kcfg.InvL = aesm.InvL()
		kcfg.L = fn.Some(aesm.L())
		log.Debugf("Derived invL from the cipher in %v",
			time.Since(start))
	} else {
		kcfg.InvL, err = ReadMatrix(cfg.Crack.InvL)
		if err != nil {
			return nil, err
		}
		log.Infof("Loaded invL from %v", cfg.Crack.InvL)
	}

	log.Tracef("Cracker config: %v", logutil.SpewLogClosure(cfg.Crack))

	return kpa.New(kcfg)
}

// ReadMatrix loads a text encoded matrix.
func ReadMatrix(path string) (gf2.Matrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return gf2.Matrix{}, err
	}

	var m gf2.Matrix
	if err := m.UnmarshalText(raw); err != nil {
		return gf2.Matrix{}, fmt.Errorf("%v: %w", path, err)
	}

	return m, nil
}

// Crack runs one recovery from cfg.Crack.Input to cfg.Crack.Output.
func Crack(ctx context.Context, cracker *kpa.Cracker,
	cfg *Config) (kpa.Stats, error) {

	p0, err := cfg.Crack.KnownBlock()
	if err != nil {
		return kpa.Stats{}, err
	}

	in, err := os.Open(cfg.Crack.Input)
	if err != nil {
		return kpa.Stats{}, err
	}
	defer in.Close()

	// Refuse a trailing partial block before anything is written.
	info, err := in.Stat()
	if err != nil {
		return kpa.Stats{}, err
	}
	if rem := info.Size() % aesm.BlockSize; rem != 0 {
		return kpa.Stats{}, fmt.Errorf("%v: %w: %d byte(s) after block "+
			"%d", cfg.Crack.Input, kpa.ErrShortBlock, rem,
			info.Size()/aesm.BlockSize)
	}

	out, err := os.OpenFile(
		cfg.Crack.Output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600,
	)
	if err != nil {
		return kpa.Stats{}, err
	}
	defer out.Close()

	log.Infof("Cracking %v (%v) with %d worker(s)", cfg.Crack.Input,
		cracker.Mode(), cfg.Workers.Recover)
	log.Debugf("Known plaintext block: %v", logutil.HexLogClosure(p0[:]))

	stats, err := cracker.RecoverParallel(
		ctx, p0, bufio.NewReader(in), out, cfg.Workers.Recover,
	)
	if err != nil {
		// Do not leave a partially recovered file behind.
		out.Close()
		if rerr := os.Remove(cfg.Crack.Output); rerr != nil {
			log.Warnf("Unable to remove %v: %v", cfg.Crack.Output,
				rerr)
		}

		return stats, fmt.Errorf("recover %v: %w", cfg.Crack.Input, err)
	}

	if cfg.Crack.Unpad {
		if err := stripPadding(out); err != nil {
			return stats, err
		}
	}

	return stats, out.Sync()
}

// stripPadding removes the padding of the last block in place.
func stripPadding(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}

	size := info.Size()
	if size < aesm.BlockSize {
		return aesm.ErrNotBlockAligned
	}

	last := make([]byte, aesm.BlockSize)
	if _, err := f.ReadAt(last, size-aesm.BlockSize); err != nil &&
		err != io.EOF {

		return err
	}

	kept, err := aesm.Unpad(last)
	if err != nil {
		return err
	}

	return f.Truncate(size - aesm.BlockSize + int64(len(kept)))
}
