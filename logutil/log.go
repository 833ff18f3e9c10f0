package logutil

import (
	"encoding/hex"
	"log/slog"

	"github.com/btcsuite/btclog/v2"
	"github.com/davecgh/go-spew/spew"
)

// LogClosure is used to provide a closure over expensive logging operations so
// don't have to be performed when the logging level doesn't warrant it.
type LogClosure func() string

// String invokes the underlying function and returns the result.
func (c LogClosure) String() string {
	return c()
}

// NewLogClosure returns a new closure over a function that returns a string
// which itself provides a Stringer interface so that it can be used with the
// logging system.
func NewLogClosure(c func() string) LogClosure {
	return LogClosure(c)
}

// SpewLogClosure takes an interface and returns the string of it created from
// `spew.Sdump` in a LogClosure.
func SpewLogClosure(a any) LogClosure {
	return func() string {
		return spew.Sdump(a)
	}
}

// HexLogClosure renders b as lower case hex only when the line is emitted.
func HexLogClosure(b []byte) LogClosure {
	return func() string {
		return hex.EncodeToString(b)
	}
}

// LogBlock returns a slog attribute carrying the first bytes of a cipher block
// in hex, enough to recognise it in a log without dumping whole streams.
func LogBlock(key string, block []byte) slog.Attr {
	if len(block) == 0 {
		return btclog.Fmt(key, "<empty>")
	}

	return btclog.Hex6(key, block)
}
