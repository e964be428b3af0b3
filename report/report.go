// Package report formats and emits compiler diagnostics. Every error and
// warning produced by the front end carries a source position and is
// rendered as "<file>:<line>:<col>: error: <message>". Components return
// diagnostics as plain error values; only the CLI layer decides to abort.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/jonashpro/lang/token"
)

// Error is a positioned compile-time diagnostic. A zero Pos means the
// diagnostic is not tied to a location (the "no entry point" case).
type Error struct {
	Pos     token.Position
	Message string
}

// Errorf builds an Error at the given position with a formatted message.
func Errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Pos == (token.Position{}) {
		return fmt.Sprintf("error: %s", e.Message)
	}
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Message)
}

// Warning is a positioned non-fatal diagnostic. Warnings are accumulated
// by the semantic analyzer and printed by the caller; compilation
// continues.
type Warning struct {
	Pos     token.Position
	Message string
}

// Warningf builds a Warning at the given position with a formatted
// message.
func Warningf(pos token.Position, format string, args ...any) Warning {
	return Warning{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// Fprint writes a diagnostic error to w with the "error" label
// highlighted. Non-Error values are printed as-is.
func Fprint(w io.Writer, err error) {
	e, ok := err.(*Error)
	if !ok {
		fmt.Fprintln(w, err)
		return
	}

	label := color.New(color.FgRed, color.Bold).Sprint("error")
	if e.Pos == (token.Position{}) {
		fmt.Fprintf(w, "%s: %s\n", label, e.Message)
		return
	}
	fmt.Fprintf(w, "%s: %s: %s\n", e.Pos, label, e.Message)
}

// FprintWarning writes a warning to w with the "warning" label
// highlighted.
func FprintWarning(w io.Writer, warning Warning) {
	label := color.New(color.FgMagenta, color.Bold).Sprint("warning")
	fmt.Fprintf(w, "%s: %s: %s\n", warning.Pos, label, warning.Message)
}
