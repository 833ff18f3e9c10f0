package cracker

import (
	"github.com/btcsuite/btclog/v2"
	"github.com/snovvcrash/aes256m-cracker/aesm"
	"github.com/snovvcrash/aes256m-cracker/build"
	"github.com/snovvcrash/aes256m-cracker/kpa"
	"github.com/snovvcrash/aes256m-cracker/monitoring"
	"github.com/snovvcrash/aes256m-cracker/sbox"
	"github.com/snovvcrash/aes256m-cracker/signal"
)

// Subsystem defines the logging code for this subsystem.
const Subsystem = "CRCK"

// log is the root logger. It writes through the build defaults until
// SetupLoggers replaces it.
var log = build.NewSubLogger(Subsystem, nil)

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager) {
	AddSubLogger(root, Subsystem, UseLogger)
	AddSubLogger(root, sbox.Subsystem, sbox.UseLogger)
	AddSubLogger(root, kpa.Subsystem, kpa.UseLogger)
	AddSubLogger(root, aesm.Subsystem, aesm.UseLogger)
	AddSubLogger(root, monitoring.Subsystem, monitoring.UseLogger)
	AddSubLogger(root, signal.Subsystem, signal.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	useLoggers ...func(btclog.Logger)) {

	// Create and register just a single logger to prevent them from
	// overwriting each other internally.
	logger := root.GenSubLogger(subsystem)
	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
