package main

import (
	"fmt"
	"os"

	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/compiler"
	"github.com/jonashpro/lang/lexer"
	"github.com/jonashpro/lang/parser"
	"github.com/jonashpro/lang/report"
	"github.com/jonashpro/lang/semantic"
)

// compileSource runs the whole front end over one source text: lexing,
// parsing, semantic analysis, and code generation. Warnings go to stderr;
// the first error aborts the pipeline.
func compileSource(fileName string, source string) ([]byte, []ast.Stmt, error) {
	tokens, err := lexer.New(fileName, source).Lex()
	if err != nil {
		return nil, nil, err
	}

	declarations, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, nil, err
	}

	analyzer := semantic.New(declarations)
	err = analyzer.Analyze()
	for _, warning := range analyzer.Warnings {
		report.FprintWarning(os.Stderr, warning)
	}
	if err != nil {
		return nil, nil, err
	}

	image, err := compiler.New(declarations).Generate()
	if err != nil {
		return nil, nil, err
	}

	return image, declarations, nil
}

// compileFile reads and compiles a source file.
func compileFile(fileName string) ([]byte, []ast.Stmt, error) {
	source, err := os.ReadFile(fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("no such file %s", fileName)
	}
	return compileSource(fileName, string(source))
}
