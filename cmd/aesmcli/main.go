package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	cracker "github.com/snovvcrash/aes256m-cracker"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/build"
	"github.com/snovvcrash/aes256m-cracker/signal"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

// ctxKey is the App.Metadata key holding the shutdown-aware context.
const ctxKey = "ctx"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[aesmcli] %v\n", err)
	os.Exit(1)
}

// getContext returns the context installed by main, or a background context
// when the app runs without one.
func getContext(ctx *cli.Context) context.Context {
	if c, ok := ctx.App.Metadata[ctxKey].(context.Context); ok {
		return c
	}

	return context.Background()
}

var passwordFlag = cli.StringFlag{
	Name: "password",
	Usage: "the password the key is derived from, prompted for " +
		"when not set",
}

var modeFlag = cli.StringFlag{
	Name:  "mode",
	Value: aesm.ModeECB.String(),
	Usage: "the chaining mode, ecb or cbc",
}

// getKey derives the cipher key from the --password flag or, failing that,
// a password read from the terminal.
func getKey(ctx *cli.Context) (*aesm.Cipher, error) {
	password := ctx.String(passwordFlag.Name)
	if !ctx.IsSet(passwordFlag.Name) {
		pw, err := readPassword("Password: ")
		if err != nil {
			return nil, err
		}
		password = string(pw)
	}

	key, err := aesm.KeyFromPassword(password)
	if err != nil {
		return nil, err
	}

	return aesm.NewCipher(key[:])
}

// newTable returns a table writer that renders to the app's writer.
func newTable(ctx *cli.Context) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(ctx.App.Writer)
	t.SetStyle(table.StyleLight)

	return t
}

func newApp(ctx context.Context) *cli.App {
	app := cli.NewApp()
	app.Name = "aesmcli"
	app.Version = build.Version()
	app.Usage = "toolbox for the AES-256-M cipher and its affine S-boxes"
	app.Metadata = map[string]interface{}{ctxKey: ctx}
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "debuglevel",
			Value: "info",
			Usage: "logging level for all subsystems {trace, debug, " +
				"info, warn, error, critical} or " +
				"<subsystem>=<level>,... pairs",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		mgr := build.NewSubLoggerManager(os.Stderr)
		cracker.SetupLoggers(mgr)

		return build.ParseAndSetDebugLevels(
			ctx.String("debuglevel"), mgr,
		)
	}
	app.Commands = []cli.Command{
		encryptCommand,
		decryptCommand,
		genSBoxCommand,
		sboxMCommand,
		matrixCommand,
		compareCommand,
	}

	return app
}

func main() {
	shutdownInterceptor, err := signal.Intercept()
	if err != nil {
		fatal(err)
	}
	ctx, cancel := shutdownInterceptor.Context(context.Background())
	defer cancel()

	if err := newApp(ctx).Run(os.Args); err != nil {
		fatal(err)
	}
}

// readPassword reads a password from the terminal. This requires there to be an
// actual TTY so passing in a password from stdin won't work.
func readPassword(text string) ([]byte, error) {
	fmt.Print(text)

	// The variable syscall.Stdin is of a different type in the Windows API
	// that's why we need the explicit cast. And of course the linter
	// doesn't like it either.
	pw, err := term.ReadPassword(int(syscall.Stdin)) // nolint:unconvert
	fmt.Println()
	return pw, err
}
