package build

import (
	"io"
	"sort"
	"sync"

	"github.com/btcsuite/btclog/v2"
)

// SubLoggerManager hands out one logger per subsystem, all writing to the same
// output, and keeps track of them so their levels can be changed at runtime.
// Every subsystem gets its own handler so levels are independent.
type SubLoggerManager struct {
	out  io.Writer
	opts []btclog.HandlerOption

	loggers SubLoggers
	mu      sync.Mutex
}

// A compile time check to ensure SubLoggerManager implements the
// LeveledSubLogger interface.
var _ LeveledSubLogger = (*SubLoggerManager)(nil)

// NewSubLoggerManager constructs a SubLoggerManager that writes to out using
// the given handler options.
func NewSubLoggerManager(out io.Writer,
	opts ...btclog.HandlerOption) *SubLoggerManager {

	return &SubLoggerManager{
		out:     out,
		opts:    opts,
		loggers: make(SubLoggers),
	}
}

// GenSubLogger creates a logger tagged with the given subsystem. It matches
// the genSubLogger argument of NewSubLogger.
func (r *SubLoggerManager) GenSubLogger(subsystem string) btclog.Logger {
	handler := btclog.NewDefaultHandler(r.out, r.opts...)

	return btclog.NewSLogger(handler.SubSystem(subsystem))
}

// RegisterSubLogger records a subsystem logger so its level can be managed.
func (r *SubLoggerManager) RegisterSubLogger(subsystem string,
	logger btclog.Logger) {

	r.mu.Lock()
	defer r.mu.Unlock()

	r.loggers[subsystem] = logger
}

// SubLoggers returns all currently registered subsystem loggers.
//
// NOTE: this is part of the LeveledSubLogger interface.
func (r *SubLoggerManager) SubLoggers() SubLoggers {
	r.mu.Lock()
	defer r.mu.Unlock()

	loggers := make(SubLoggers, len(r.loggers))
	for k, v := range r.loggers {
		loggers[k] = v
	}

	return loggers
}

// SupportedSubsystems returns a sorted slice of the registered subsystems.
//
// NOTE: this is part of the LeveledSubLogger interface.
func (r *SubLoggerManager) SupportedSubsystems() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	subsystems := make([]string, 0, len(r.loggers))
	for subsysID := range r.loggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)

	return subsystems
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored.
//
// NOTE: this is part of the LeveledSubLogger interface.
func (r *SubLoggerManager) SetLogLevel(subsystemID string, logLevel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger, ok := r.loggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
//
// NOTE: this is part of the LeveledSubLogger interface.
func (r *SubLoggerManager) SetLogLevels(logLevel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	level, _ := btclog.LevelFromString(logLevel)
	for _, logger := range r.loggers {
		logger.SetLevel(level)
	}
}
