package cracker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"
	"github.com/snovvcrash/aes256m-cracker/build"
	"github.com/snovvcrash/aes256m-cracker/crackcfg"
)

const (
	defaultLogLevel    = "info"
	defaultLogDirname  = "logs"
	defaultLogFilename = "aesmcrack.log"
)

var (
	// DefaultAppDir is the default directory holding the config file and
	// logs.
	DefaultAppDir = btcutil.AppDataDir("aesmcrack", false)

	// DefaultConfigFile is the default full path of the config file.
	DefaultConfigFile = filepath.Join(
		DefaultAppDir, crackcfg.DefaultConfigFilename,
	)

	defaultLogDir = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Config defines the configuration options for aesmcrack.
//
// See LoadConfig for further details regarding the configuration loading+
// parsing process.
//
//nolint:lll
type Config struct {
	ShowVersion bool `short:"V" long:"version" description:"Display version information and exit"`

	AppDir     string `long:"appdir" description:"The base directory that contains the config file and logs."`
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir     string `long:"logdir" description:"Directory to log output."`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <global-level>,<subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	Crack *crackcfg.Crack `group:"crack" namespace:"crack"`

	Workers *crackcfg.Workers `group:"workers" namespace:"workers"`

	Prometheus crackcfg.Prometheus `group:"prometheus" namespace:"prometheus"`

	LogConfig *build.LogConfig `group:"logging" namespace:"logging"`

	// SubLogMgr is the root logger that all the daemon's subloggers are
	// hooked up to.
	SubLogMgr *build.SubLoggerManager

	// LogRotator is the file output of SubLogMgr. It is nil when the file
	// logger is disabled.
	LogRotator *build.RotatingLogWriter
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		AppDir:     DefaultAppDir,
		ConfigFile: DefaultConfigFile,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
		Crack:      crackcfg.DefaultCrack(),
		Workers: &crackcfg.Workers{
			Recover: crackcfg.DefaultRecoverWorkers,
		},
		Prometheus: crackcfg.DefaultPrometheus(),
		LogConfig:  build.DefaultLogConfig(),
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(args []string) (*Config, error) {
	// Pre-parse the command line options to pick up an alternative config
	// file.
	preCfg := DefaultConfig()
	if _, err := flags.NewParser(&preCfg, flags.Default).ParseArgs(
		args,
	); err != nil {
		return nil, err
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", build.Version(),
			"commit="+build.Commit)
		os.Exit(0)
	}

	// If the config file path has not been modified by the user, then
	// we'll use the default config file path. However, if the user has
	// modified their appdir, then we should assume they intend to use the
	// config file within it.
	configFileDir := CleanAndExpandPath(preCfg.AppDir)
	configFilePath := CleanAndExpandPath(preCfg.ConfigFile)
	if configFileDir != DefaultAppDir {
		if configFilePath == DefaultConfigFile {
			configFilePath = filepath.Join(
				configFileDir, crackcfg.DefaultConfigFilename,
			)
		}
	}

	// Next, load any additional configuration options from the file.
	var configFileError error
	cfg := preCfg
	if err := flags.IniParse(configFilePath, &cfg); err != nil {
		// If it's a parsing related error, then we'll return
		// immediately, otherwise we can proceed as possibly the config
		// file doesn't exist which is OK.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}

		configFileError = err
	}

	// Finally, parse the remaining command line options again to ensure
	// they take precedence.
	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(
		args,
	); err != nil {
		return nil, err
	}

	// Make sure everything we just loaded makes sense.
	cleanCfg, err := ValidateConfig(cfg, usageMessage)
	if err != nil {
		return nil, err
	}

	// Warn about missing config file only after all other configuration is
	// done. This prevents the warning on help messages and invalid
	// options. Note this should go directly before the return.
	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	return cleanCfg, nil
}

// ValidateConfig check the given configuration to be sane. This makes sure no
// illegal values or combination of values are set. All file system paths are
// normalized. The cleaned up config is returned on success and its loggers
// are set up.
func ValidateConfig(cfg Config, usageMessage string) (*Config, error) {
	// If the provided app directory is not the default, we'll modify the
	// path to all of the files and directories that will live within it.
	appDir := CleanAndExpandPath(cfg.AppDir)
	if appDir != DefaultAppDir && cfg.LogDir == defaultLogDir {
		cfg.LogDir = filepath.Join(appDir, defaultLogDirname)
	}

	cfg.LogDir = CleanAndExpandPath(cfg.LogDir)
	cfg.Crack.Input = CleanAndExpandPath(cfg.Crack.Input)
	cfg.Crack.Output = CleanAndExpandPath(cfg.Crack.Output)
	cfg.Crack.InvL = CleanAndExpandPath(cfg.Crack.InvL)

	// Special show command to list supported subsystems and exit, before
	// anything touches the file system.
	if cfg.DebugLevel == "show" {
		mgr := build.NewSubLoggerManager(os.Stdout)
		SetupLoggers(mgr)
		fmt.Println("Supported subsystems",
			mgr.SupportedSubsystems())
		os.Exit(0)
	}

	err := crackcfg.Validate(
		cfg.Crack, cfg.Workers, &cfg.Prometheus, cfg.LogConfig,
	)
	if err != nil {
		return nil, mkErr(usageMessage, err)
	}

	// Initialize logging at the default logging level.
	if !cfg.LogConfig.File.Disable {
		cfg.LogRotator = build.NewRotatingLogWriter()
		err := cfg.LogRotator.InitLogRotator(
			cfg.LogConfig.File,
			filepath.Join(cfg.LogDir, defaultLogFilename),
		)
		if err != nil {
			return nil, mkErr(usageMessage, err)
		}
	}

	out, opts := build.LogOutput(cfg.LogConfig, os.Stdout, cfg.LogRotator)
	cfg.SubLogMgr = build.NewSubLoggerManager(out, opts...)
	SetupLoggers(cfg.SubLogMgr)

	// Parse, validate, and set debug log level(s).
	err = build.ParseAndSetDebugLevels(cfg.DebugLevel, cfg.SubLogMgr)
	if err != nil {
		return nil, mkErr(usageMessage, err)
	}

	return &cfg, nil
}

// mkErr prefixes err with the usage hint.
func mkErr(usageMessage string, err error) error {
	return fmt.Errorf("%w; %s", err, usageMessage)
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func CleanAndExpandPath(path string) string {
	return crackcfg.CleanAndExpandPath(path)
}
