package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/kpa"
	"github.com/urfave/cli"
)

var ioFlags = []cli.Flag{
	cli.StringFlag{
		Name:      "input",
		Usage:     "the file to read",
		TakesFile: true,
	},
	cli.StringFlag{
		Name:      "output",
		Usage:     "the file to write",
		TakesFile: true,
	},
}

var encryptCommand = cli.Command{
	Name:      "encrypt",
	Category:  "Cipher",
	Usage:     "Encrypt a file with AES-256-M.",
	ArgsUsage: "",
	Description: `
	Pads the input and encrypts it under the key derived from the
	password. In cbc mode the IV is written in front of the first
	ciphertext block. A random IV is used unless --iv is given.
	`,
	Flags: append([]cli.Flag{
		modeFlag,
		passwordFlag,
		cli.StringFlag{
			Name:  "iv",
			Usage: "the 32 hex digit IV for cbc mode",
		},
	}, ioFlags...),
	Action: encrypt,
}

func encrypt(ctx *cli.Context) error {
	mode, input, err := readCipherArgs(ctx)
	if err != nil {
		return err
	}

	c, err := getKey(ctx)
	if err != nil {
		return err
	}

	var out []byte
	switch mode {
	case aesm.ModeECB:
		if ctx.IsSet("iv") {
			return fmt.Errorf("--iv is only used in cbc mode")
		}
		out = aesm.EncryptECB(c, input)

	case aesm.ModeCBC:
		var iv aesm.Block
		if ctx.IsSet("iv") {
			iv, err = kpa.ParseBlockHex(ctx.String("iv"))
			if err != nil {
				return fmt.Errorf("unable to parse iv: %w", err)
			}
		} else if _, err := rand.Read(iv[:]); err != nil {
			return err
		}
		out = aesm.EncryptCBC(c, iv, input)
	}

	return os.WriteFile(ctx.String("output"), out, 0600)
}

var decryptCommand = cli.Command{
	Name:     "decrypt",
	Category: "Cipher",
	Usage:    "Decrypt a file encrypted with AES-256-M.",
	Description: `
	Decrypts the input under the key derived from the password and
	removes the padding. In cbc mode the first block of the input is
	taken as the IV.
	`,
	Flags:  append([]cli.Flag{modeFlag, passwordFlag}, ioFlags...),
	Action: decrypt,
}

func decrypt(ctx *cli.Context) error {
	mode, input, err := readCipherArgs(ctx)
	if err != nil {
		return err
	}

	c, err := getKey(ctx)
	if err != nil {
		return err
	}

	var out []byte
	switch mode {
	case aesm.ModeECB:
		out, err = aesm.DecryptECB(c, input)
	case aesm.ModeCBC:
		out, err = aesm.DecryptCBC(c, input)
	}
	if err != nil {
		return fmt.Errorf("unable to decrypt %v: %w",
			ctx.String("input"), err)
	}

	return os.WriteFile(ctx.String("output"), out, 0600)
}

// readCipherArgs parses the mode and loads the input shared by encrypt and
// decrypt.
func readCipherArgs(ctx *cli.Context) (aesm.Mode, []byte, error) {
	if ctx.NArg() > 0 {
		return 0, nil, fmt.Errorf("unexpected arguments: %v",
			ctx.Args())
	}

	mode, err := aesm.ParseMode(ctx.String(modeFlag.Name))
	if err != nil {
		return 0, nil, err
	}

	switch {
	case ctx.String("input") == "":
		return 0, nil, fmt.Errorf("--input must be set")
	case ctx.String("output") == "":
		return 0, nil, fmt.Errorf("--output must be set")
	}

	input, err := os.ReadFile(ctx.String("input"))
	if err != nil {
		return 0, nil, err
	}

	return mode, input, nil
}
