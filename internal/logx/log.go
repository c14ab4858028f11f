package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the shared logger used throughout the project. It always writes to
// stderr; stdout is reserved for relayed MCP traffic.
var Log = log.Logger

// Configure sets the global log level and output format.
// The level string is tolerant of case and common synonyms.
func Configure(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	Log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// VerbosityLevel maps a -v repetition count to a level string.
// 0 is quiet (errors only); each extra -v reveals one more tier.
func VerbosityLevel(n int) string {
	switch {
	case n <= 0:
		return "error"
	case n == 1:
		return "warn"
	case n == 2:
		return "info"
	case n == 3:
		return "debug"
	default:
		return "trace"
	}
}

// parseLevel converts a string to a zerolog level.
// Accepts: all, debug, info, warn, warning, error, fatal, none.
// Unknown values default to error so relay sessions stay quiet.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "all", "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "none", "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.ErrorLevel
	}
}

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "error"
	}
	Configure(level)
}
