package build

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btclog/v2"
)

// LogType is an indicating the type of logging specified by the build flag.
type LogType byte

const (
	// LogTypeNone indicates no logging.
	LogTypeNone LogType = iota

	// LogTypeStdOut all logging is written directly to stdout.
	LogTypeStdOut

	// LogTypeDefault logs to both stdout and the rotating log file.
	LogTypeDefault
)

// String returns a human readable identifier for the logging type.
func (t LogType) String() string {
	switch t {
	case LogTypeNone:
		return "none"
	case LogTypeStdOut:
		return "stdout"
	case LogTypeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// NewSubLogger constructs a new subsystem log. When genSubLogger is nil, as it
// is for the package level defaults installed by init functions, logging is
// disabled unless the binary was built with the stdlog tag in which case
// lines go straight to stdout.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	switch LoggingType {
	// A configured backend takes precedence. Without one we stay silent
	// until the subsystem is handed a real logger.
	case LogTypeDefault:
		if genSubLogger != nil {
			return genSubLogger(subsystem)
		}

	// Logging to stdout is used in unit tests. It is not important that
	// they share the same backend, since all output is written to std
	// out.
	case LogTypeStdOut:
		handler := btclog.NewDefaultHandler(os.Stdout)
		logger := btclog.NewSLogger(handler.SubSystem(subsystem))

		// Set the logging level of the stdout logger to use the
		// configured logging level specified by build flags.
		level, _ := btclog.LevelFromString(LogLevel)
		logger.SetLevel(level)

		return logger
	}

	// For any other configurations, we'll disable logging.
	return btclog.Disabled
}

// SubLoggers is a type that holds a map of subsystem loggers keyed by their
// subsystem name.
type SubLoggers map[string]btclog.Logger

// LeveledSubLogger provides the ability to retrieve the subsystem loggers of
// a logger and set their log levels individually or all at once.
type LeveledSubLogger interface {
	// SubLoggers returns the map of all registered subsystem loggers.
	SubLoggers() SubLoggers

	// SupportedSubsystems returns a slice of strings containing the names
	// of the supported subsystems. Should ideally correspond to the keys
	// of the subsystem logger map and be sorted.
	SupportedSubsystems() []string

	// SetLogLevel assigns an individual subsystem logger a new log level.
	SetLogLevel(subsystemID string, logLevel string)

	// SetLogLevels assigns all subsystem loggers the same new log level.
	SetLogLevels(logLevel string)
}

// ParseAndSetDebugLevels parses level, either a global level optionally
// followed by subsystem=level pairs or only such pairs, and applies it to
// logger.
func ParseAndSetDebugLevels(level string, logger LeveledSubLogger) error {
	levels := strings.Split(level, ",")

	// A leading entry without = sets every subsystem.
	if !strings.Contains(levels[0], "=") {
		if err := checkLevel(levels[0]); err != nil {
			return err
		}
		logger.SetLogLevels(levels[0])
		levels = levels[1:]
	}

	subLoggers := logger.SubLoggers()
	for _, pair := range levels {
		subsystem, lvl, ok := strings.Cut(pair, "=")
		if !ok || strings.Contains(lvl, "=") {
			return fmt.Errorf("invalid subsystem/level pair %q, use "+
				"subsystem1=level1,subsystem2=level2", pair)
		}
		if _, exists := subLoggers[subsystem]; !exists {
			return fmt.Errorf("unknown subsystem %q, supported "+
				"subsystems are %v", subsystem,
				logger.SupportedSubsystems())
		}
		if err := checkLevel(lvl); err != nil {
			return err
		}

		logger.SetLogLevel(subsystem, lvl)
	}

	return nil
}

// checkLevel rejects anything btclog cannot parse.
func checkLevel(level string) error {
	if _, ok := btclog.LevelFromString(level); !ok {
		return fmt.Errorf("invalid debug level %q", level)
	}

	return nil
}
