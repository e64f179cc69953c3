// Package logger provides the process-wide structured logger used across
// frameidx: per-directory scan errors, worker lifecycle events, lock
// conflicts, and the end-of-run summary.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// L is the process-wide logger, initialized by Init. Until Init is called
// it defaults to a JSON logger on stderr so packages that log at init
// time never see a nil logger.
var L = New(os.Stderr, false)

// New builds a zerolog.Logger writing to w. When pretty is true, output is
// rendered through zerolog's ConsoleWriter (for interactive runs); otherwise
// it's newline-delimited JSON (for log collection).
func New(w io.Writer, pretty bool) zerolog.Logger {
	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// Init replaces the package-level logger, e.g. once CLI flags are parsed
// and the caller knows whether stderr is a terminal.
func Init(w io.Writer, pretty bool) {
	L = New(w, pretty)
}
