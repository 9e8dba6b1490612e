// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Fetched pages (offset, result count)
//   - Price cache operations (hit/miss, key, TTL)
//   - Admission gate decisions
//
// Info: Normal operation events
//   - Crawl session start/completion with totals
//   - Catalog size probe results
//   - Service recovery after degraded operation
//   - Periodic crawl progress
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts with backoff
//   - Pages abandoned with partial results
//   - Cache errors (fallback to live request)
//   - Retry budget exhaustion
//
// Error: Error conditions requiring attention
//   - Rate limited responses (429)
//   - Degraded service detection
//   - Aborted crawl sessions
//   - Configuration errors
//
// Context Fields:
//   - endpoint: market endpoint path
//   - status_code: HTTP status code
//   - error_class: error classification (client, server, rate_limit, network)
//   - attempt: retry attempt number
//   - backoff: computed backoff duration
//   - offset: listing feed offset
//   - gathered: listings accumulated so far
//   - total_known: advisory catalog size from the probe
//   - hash_name: market hash name of an item
//   - consecutive_failures: current failure streak
