package httpapi

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// zlog is the package logger. Handlers fall back to a disabled logger when
// none was installed, so tests need no setup.
var zlog = zerolog.Nop()

// SetLogger installs the logger used by the HTTP handlers.
func SetLogger(l zerolog.Logger) {
	zlog = l
}

// requestLogLevel returns the level used for per-request log lines. Defaults
// to info; REMBGD_REQUEST_LOG_LEVEL=debug demotes them for noisy deployments.
func requestLogLevel() zerolog.Level {
	switch strings.ToLower(os.Getenv("REMBGD_REQUEST_LOG_LEVEL")) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps a config log level string onto a zerolog level, defaulting
// to info on unknown input.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
