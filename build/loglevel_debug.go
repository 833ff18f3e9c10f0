//go:build debug

package build

// LogLevel specifies a log level of debug.
var LogLevel = "debug"
