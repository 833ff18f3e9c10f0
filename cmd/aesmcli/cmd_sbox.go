package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/crackcfg"
	"github.com/snovvcrash/aes256m-cracker/sbox"
	"github.com/urfave/cli"
)

var genSBoxCommand = cli.Command{
	Name:     "gensbox",
	Category: "S-box",
	Usage:    "Generate a random affine S-box.",
	Description: `
	Draws random invertible affine maps x -> M·x + v of the given bit
	width until one passes the bijectivity and differential checks,
	then prints its table and affine form. With --emulate the table is
	built by closing random basis images under XOR instead.
	`,
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: crackcfg.DefaultSBoxWidth,
			Usage: "the bit width of the S-box",
		},
		cli.IntFlag{
			Name:  "maxattempts",
			Value: crackcfg.DefaultSBoxMaxAttempts,
			Usage: "give up after this many candidates, 0 means " +
				"never",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "the generator seed, 0 picks one from the clock",
		},
		cli.BoolFlag{
			Name:  "emulate",
			Usage: "use the XOR closure construction",
		},
	},
	Action: genSBox,
}

func genSBox(ctx *cli.Context) error {
	cfg := &crackcfg.SBox{
		Width:       ctx.Int("width"),
		MaxAttempts: ctx.Int("maxattempts"),
		Seed:        ctx.Int64("seed"),
		Emulate:     ctx.Bool("emulate"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		s        sbox.Table
		attempts int
		err      error
	)
	if cfg.Emulate {
		s, attempts, err = emulateSBox(getContext(ctx), cfg, rng)
	} else {
		s, attempts, err = generateSBox(getContext(ctx), cfg, rng)
	}
	if err != nil {
		return err
	}

	f, err := s.Affine()
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "Accepted %d-bit S-box after %d "+
		"attempt(s), seed %d\n", cfg.Width, attempts, seed)
	printSBox(ctx, s)
	printAffine(ctx, f.Matrix().String(), f.Offset().Uint(), s)

	return nil
}

func generateSBox(ctx context.Context, cfg *crackcfg.SBox,
	rng *rand.Rand) (sbox.Table, int, error) {

	gen, err := sbox.NewGenerator(sbox.GeneratorConfig{
		Width:       cfg.Width,
		MaxAttempts: cfg.MaxAttempts,
		Rand:        rng,
	})
	if err != nil {
		return sbox.Table{}, 0, err
	}

	candidate, err := gen.Generate(ctx)
	stats := gen.Stats()
	if err != nil {
		return sbox.Table{}, int(stats.Attempts), fmt.Errorf("%w "+
			"(%d not bijective, %d rejected)", err,
			stats.NotBijective, stats.Rejected)
	}

	return candidate.Table, int(stats.Attempts), nil
}

func emulateSBox(ctx context.Context, cfg *crackcfg.SBox,
	rng *rand.Rand) (sbox.Table, int, error) {

	for i := 0; cfg.MaxAttempts == 0 || i < cfg.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return sbox.Table{}, i, err
		}

		s := sbox.Emulate(cfg.Width, rng)
		if s.IsSome() {
			table, err := s.UnwrapOrErr(sbox.ErrAttemptsExhausted)
			return table, i + 1, err
		}
	}

	return sbox.Table{}, cfg.MaxAttempts, fmt.Errorf("%w: %d",
		sbox.ErrAttemptsExhausted, cfg.MaxAttempts)
}

var sboxMCommand = cli.Command{
	Name:     "sboxm",
	Category: "S-box",
	Usage:    "Print the AES-256-M S-box and check that it is affine.",
	Action:   sboxM,
}

func sboxM(ctx *cli.Context) error {
	raw := aesm.SboxM()
	s, err := sbox.FromBytes(raw[:])
	if err != nil {
		return err
	}

	f, err := s.Affine()
	if err != nil {
		return err
	}
	if !f.Equal(aesm.SboxMAffine()) {
		return fmt.Errorf("S-box does not match M·x + %#02x",
			aesm.SboxMOffset)
	}

	printSBox(ctx, s)
	printAffine(ctx, f.Matrix().String(), f.Offset().Uint(), s)

	return nil
}

// printSBox renders the table sixteen entries per row.
func printSBox(ctx *cli.Context, s sbox.Table) {
	cols := min(16, s.Len())
	digits := (s.Width() + 3) / 4

	t := newTable(ctx)
	header := table.Row{""}
	for c := 0; c < cols; c++ {
		header = append(header, fmt.Sprintf("%x", c))
	}
	t.AppendHeader(header)

	entries := s.Entries()
	for r := 0; r < len(entries); r += cols {
		row := table.Row{fmt.Sprintf("%0*x", digits, r)}
		for _, e := range entries[r : r+cols] {
			row = append(row, fmt.Sprintf("%0*x", digits, e))
		}
		t.AppendRow(row)
	}

	t.Render()
}

// printAffine writes the affine form and the differential summary.
func printAffine(ctx *cli.Context, m string, v uint64, s sbox.Table) {
	d := sbox.ComputeDifferenceTable(s)

	fmt.Fprintf(ctx.App.Writer, "M =\n%s\nv = %#x\n", m, v)
	fmt.Fprintf(ctx.App.Writer, "differential uniformity %d, %d cells "+
		"equal to %d\n", d.Uniformity(), d.CellsEqualTo(d.Size()),
		d.Size())
}
