package crackcfg

import (
	"fmt"
	"runtime"
)

// MaxRecoverWorkers caps the recovery pool.
const MaxRecoverWorkers = 256

// DefaultRecoverWorkers is the default number of goroutines used to recover
// blocks in parallel.
var DefaultRecoverWorkers = runtime.NumCPU()

// Workers exposes CLI configuration for the resources consumed by the
// recovery pool.
type Workers struct {
	// Recover is the maximum number of concurrent recovery workers. One
	// worker means plain sequential streaming.
	Recover int `long:"recover" description:"Maximum number of concurrent block recovery workers."`
}

// Validate checks that the worker count is positive and bounded.
func (w *Workers) Validate() error {
	if w.Recover <= 0 || w.Recover > MaxRecoverWorkers {
		return fmt.Errorf("number of recover workers %d must be in "+
			"[1, %d]", w.Recover, MaxRecoverWorkers)
	}

	return nil
}

// Compile-time constraint to ensure Workers implements the Validator
// interface.
var _ Validator = (*Workers)(nil)
