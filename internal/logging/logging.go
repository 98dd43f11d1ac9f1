package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns the process logger on stderr. format is "text" for a
// human-friendly console or anything else for JSON lines.
func Setup(format string) zerolog.Logger {
	return New(os.Stderr, format)
}

// New builds a timestamped logger writing to w in the given format.
func New(w io.Writer, format string) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(w).With().Timestamp().Str("app", "scuoleload").Logger()
}
