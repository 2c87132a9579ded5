package report

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ansiRed/ansiReset bracket an error line when the logging channel is
// attached to a terminal; non-terminal output stays plain.
const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Logger is the stderr logging channel: one line per planned action,
// `<gerund>: `<source>` -> `<dest>`` unless quiet.
type Logger struct {
	w     io.Writer
	color bool
	quiet bool
}

// NewLogger wraps w (typically os.Stderr). Colorization is auto-detected
// via isatty and only applied to w if w is an *os.File.
func NewLogger(w io.Writer, quiet bool) *Logger {
	color := false

	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &Logger{w: w, color: color, quiet: quiet}
}

// Action logs one planned placement: "<gerund>: `<source>` -> `<dest>`".
func (l *Logger) Action(gerund, source, dest string) {
	if l.quiet {
		return
	}

	fmt.Fprintf(l.w, "%s: `%s` -> `%s`\n", gerund, source, dest)
}

// Error logs a fatal or skipped-record diagnostic, colorized red on a
// terminal.
func (l *Logger) Error(msg string) {
	if l.color {
		fmt.Fprintf(l.w, "%s%s%s\n", ansiRed, msg, ansiReset)

		return
	}

	fmt.Fprintln(l.w, msg)
}
