package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/subcommands"

	"github.com/jonashpro/lang/vm"
)

// runCmd implements the run command.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a compiled program image" }
func (*runCmd) Usage() string {
	return `run <file.vm>:
  Execute a program image produced by build.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run need <file>")
		return subcommands.ExitUsageError
	}
	fileName := args[0]

	raw, err := os.ReadFile(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no such file %s\n", fileName)
		return subcommands.ExitFailure
	}

	machine, err := vm.New(fileName, raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// an interrupt is a clean exit, not a failure
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		os.Exit(0)
	}()

	err = machine.Run()
	if err == nil {
		return subcommands.ExitSuccess
	}

	var exit *vm.ExitError
	if errors.As(err, &exit) {
		return subcommands.ExitStatus(exit.Code)
	}

	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
