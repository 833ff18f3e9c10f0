package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/gf2"
	"github.com/urfave/cli"
)

// stepMatrices maps the names accepted by --name to the 128x128 linear part
// of the corresponding step.
var stepMatrices = map[string]func() gf2.Matrix{
	"l":    aesm.L,
	"invl": aesm.InvL,
	"sb": func() gf2.Matrix {
		return aesm.SubBytesMap().Matrix()
	},
	"sr": aesm.ShiftRowsMatrix,
	"mc": aesm.MixColumnsMatrix,
}

var matrixCommand = cli.Command{
	Name:     "matrix",
	Category: "Analysis",
	Usage:    "Export a round matrix in the text form aesmcrack reads.",
	Description: `
	Writes the linear part of a round step raised to --power. The names
	are l (the keyless round MC·SR·SB), invl (its inverse), sb, sr and
	mc. Exporting invl with --power 1 gives a file suitable for the
	--crack.invl option of aesmcrack.
	`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "name",
			Value: "invl",
			Usage: "the matrix to export: l, invl, sb, sr or mc",
		},
		cli.IntFlag{
			Name:  "power",
			Value: 1,
			Usage: "the exponent to raise the matrix to",
		},
		cli.StringFlag{
			Name:      "output",
			Usage:     "the file to write, stdout when empty",
			TakesFile: true,
		},
	},
	Action: exportMatrix,
}

func exportMatrix(ctx *cli.Context) error {
	name := strings.ToLower(ctx.String("name"))
	get, ok := stepMatrices[name]
	if !ok {
		return fmt.Errorf("unknown matrix %q", ctx.String("name"))
	}

	power := ctx.Int("power")
	if power < 0 {
		return fmt.Errorf("power %d must not be negative", power)
	}

	text, err := gf2.Power(get(), power).MarshalText()
	if err != nil {
		return err
	}

	if ctx.String("output") == "" {
		_, err = ctx.App.Writer.Write(text)
		return err
	}

	return os.WriteFile(ctx.String("output"), text, 0644)
}

var compareCommand = cli.Command{
	Name:     "compare",
	Category: "Analysis",
	Usage:    "Check the matrix form of every round step on random blocks.",
	Description: `
	Evaluates SubBytes, ShiftRows, MixColumns and the keyless round both
	byte-wise and through their affine maps and reports any block on
	which the two disagree. When --password is set the full keyed
	cipher is checked against L^14·P + E(0) as well.
	`,
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "samples",
			Value: 1000,
			Usage: "the number of random blocks",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "the sampling seed, 0 picks one from the clock",
		},
		cli.StringFlag{
			Name:  passwordFlag.Name,
			Usage: "also check the cipher keyed with this password",
		},
	},
	Action: compare,
}

func compare(ctx *cli.Context) error {
	samples := ctx.Int("samples")
	if samples < 1 {
		return fmt.Errorf("samples %d must be positive", samples)
	}

	seed := ctx.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	steps := aesm.Steps()
	if ctx.IsSet(passwordFlag.Name) {
		c, err := getKey(ctx)
		if err != nil {
			return err
		}
		steps = append(steps, aesm.CipherStep(c))
	}

	results := aesm.CompareRound(
		rand.New(rand.NewSource(seed)), samples, steps...,
	)

	t := newTable(ctx)
	t.AppendHeader(table.Row{"Step", "Samples", "Mismatches", "Status"})

	var failed []string
	for _, res := range results {
		status := "ok"
		if !res.OK() {
			status = "FAIL"
			failed = append(failed, res.Step)
		}
		t.AppendRow(table.Row{
			res.Step, res.Samples, res.Mismatches, status,
		})
	}
	t.Render()

	if len(failed) > 0 {
		return fmt.Errorf("matrix form disagrees for %s (seed %d)",
			strings.Join(failed, ", "), seed)
	}

	return nil
}
