package pkspawn

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger writing to w: a human-readable,
// colorized console writer if w is a terminal, otherwise plain JSON lines.
// Mirrors the teacher's own dependency trio (rs/zerolog, mattn/go-isatty,
// mattn/go-colorable), wired directly here in place of the logport
// adapters the teacher's example/ uses.
func NewLogger(w io.Writer) zerolog.Logger {
	var out io.Writer = w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = zerolog.ConsoleWriter{Out: colorable.NewColorable(f)}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// nopLogger is used when a Supervisor is constructed without WithLogger.
func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
