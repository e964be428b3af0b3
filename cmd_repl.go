package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/jonashpro/lang/report"
	"github.com/jonashpro/lang/vm"
)

// replCmd implements the REPL command.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. fn and let lines accumulate as program
  text; any other statement runs immediately against what has been
  entered so far.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	declarations := []string{}

	for {
		line, err := rl.Readline()
		if err != nil {
			// interrupt and end of input both end the session cleanly
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return subcommands.ExitSuccess
			}
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "exit":
			return subcommands.ExitSuccess
		}

		if strings.HasPrefix(line, "fn ") || strings.HasPrefix(line, "let ") {
			// validate the declaration before keeping it
			candidate := append(append([]string{}, declarations...), line)
			if _, _, err := compileSource("repl", replProgram(candidate, "")); err != nil {
				report.Fprint(os.Stderr, err)
				continue
			}
			declarations = candidate
			continue
		}

		runLine(declarations, line)
	}
}

// replProgram assembles the accumulated declarations and one statement
// into a compilable program. The statement becomes the body of a
// synthetic main.
func replProgram(declarations []string, statement string) string {
	var sb strings.Builder
	for _, declaration := range declarations {
		sb.WriteString(declaration)
		sb.WriteByte('\n')
	}
	sb.WriteString("fn main() { ")
	sb.WriteString(statement)
	sb.WriteString(" }\n")
	return sb.String()
}

// runLine compiles and executes a single statement against the
// accumulated declarations.
func runLine(declarations []string, statement string) {
	image, _, err := compileSource("repl", replProgram(declarations, statement))
	if err != nil {
		report.Fprint(os.Stderr, err)
		return
	}

	machine, err := vm.New("repl", image)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	err = machine.Run()
	if err == nil {
		return
	}

	var exit *vm.ExitError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	fmt.Fprintln(os.Stderr, err)
}
