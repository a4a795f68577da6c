package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a stderr logger for the given format and level.
// format can be "text" (human-friendly console) or "json" (structured).
func Setup(format, level string) zerolog.Logger {
	return New(os.Stderr, format, level)
}

// New builds the logger on w. Unknown or empty levels fall back to info.
func New(w io.Writer, format, level string) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().Timestamp().Str("service", "readmitrisk").
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
