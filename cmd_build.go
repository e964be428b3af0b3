package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jonashpro/lang/parser"
	"github.com/jonashpro/lang/report"
)

// buildCmd implements the build command.
type buildCmd struct {
	dumpAST bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Compile a source file into a program image" }
func (*buildCmd) Usage() string {
	return `build <file>:
  Compile <file>, writing the program image to <file>.vm.
`
}

func (cmd *buildCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpAST, "ast", false, "write the parsed AST as JSON to <file>.ast.json")
}

func (cmd *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "build need <file>")
		return subcommands.ExitUsageError
	}
	fileName := args[0]

	image, declarations, err := compileFile(fileName)
	if err != nil {
		report.Fprint(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := os.WriteFile(fileName+".vm", image, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if cmd.dumpAST {
		if err := parser.WriteASTJSON(declarations, fileName+".ast.json"); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
