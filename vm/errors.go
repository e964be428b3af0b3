package vm

import (
	"fmt"
	"strings"
)

// TraceFrame is one record of the call-stack trace attached to a panic.
type TraceFrame struct {
	File     string
	Line     int32
	Function string
}

// PanicError is a fatal runtime diagnostic. It carries the position of
// the nearest call site and the call-stack trace at the point of failure;
// the process exits with code 1 after printing it.
type PanicError struct {
	File    string
	Line    int32
	Message string
	Trace   []TraceFrame
}

func (e *PanicError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d: panic: %s", e.File, e.Line, e.Message)
	for _, frame := range e.Trace {
		fmt.Fprintf(&sb, "\n%s:%d: call function %s", frame.File, frame.Line, frame.Function)
	}
	return sb.String()
}

// ExitError reports that the program requested termination with the given
// exit code. It is not a failure; the caller exits the process with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
