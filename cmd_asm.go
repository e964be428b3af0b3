package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jonashpro/lang/disasm"
	"github.com/jonashpro/lang/report"
)

// asmCmd implements the asm command.
type asmCmd struct{}

func (*asmCmd) Name() string     { return "asm" }
func (*asmCmd) Synopsis() string { return "Compile a source file and print its disassembly" }
func (*asmCmd) Usage() string {
	return `asm <file>:
  Compile <file> and print a human-readable disassembly to stdout.
`
}
func (*asmCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *asmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "asm need <file>")
		return subcommands.ExitUsageError
	}
	fileName := args[0]

	image, _, err := compileFile(fileName)
	if err != nil {
		report.Fprint(os.Stderr, err)
		return subcommands.ExitFailure
	}

	disassembler, err := disasm.New(image)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := disassembler.Disassemble(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
