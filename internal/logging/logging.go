// Package logging builds the zerolog loggers used by the command line tool.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps DEBUG, INFO, WARN, ERROR and TRACE (any case) to zerolog
// levels. Anything else is INFO.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a console logger writing to w with RFC3339 timestamps.
func New(w io.Writer, level string, color bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}
	return zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// UseUTC makes every logger stamp events in UTC.
func UseUTC() {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
}
