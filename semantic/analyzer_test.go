package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/lexer"
	"github.com/jonashpro/lang/parser"
)

// parse builds the AST for a source snippet.
func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	tokens, err := lexer.New("test.lng", source).Lex()
	require.NoError(t, err)
	declarations, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	return declarations
}

// analyze runs the semantic pass and returns the analyzer and its error.
func analyze(t *testing.T, source string) (*Analyzer, error) {
	t.Helper()
	analyzer := New(parse(t, source))
	return analyzer, analyzer.Analyze()
}

func TestValidProgram(t *testing.T) {
	_, err := analyze(t, `
let g = 1;

fn add(a, b) {
	return a + b;
}

fn main() {
	let x = add(g, 2);
	write(x);
	return 0;
}
`)
	assert.NoError(t, err)
}

func TestForwardCallResolves(t *testing.T) {
	_, err := analyze(t, `
fn main() {
	return f();
}

fn f() {
	return 1;
}
`)
	assert.NoError(t, err)
}

func TestRedeclaration(t *testing.T) {
	_, err := analyze(t, "fn main() { let x = 1; let x = 2; return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redeclaration of x")
}

func TestUndefinedVariable(t *testing.T) {
	_, err := analyze(t, "fn main() { write(x); return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x is undefined")
}

func TestUndefinedAssignment(t *testing.T) {
	_, err := analyze(t, "fn main() { x = 1; return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x is undefined")
}

func TestUndefinedFunction(t *testing.T) {
	_, err := analyze(t, "fn main() { foo(); return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foo is undefined")
}

func TestVariableIsNotCallable(t *testing.T) {
	_, err := analyze(t, "fn main() { let x = 1; x(); return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variable x is not callable")
}

func TestBuiltinArity(t *testing.T) {
	_, err := analyze(t, "fn main() { write(1, 2); return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function write expected 1 argument(s), but 2 are given")
}

func TestUserFunctionArity(t *testing.T) {
	_, err := analyze(t, `
fn add(a, b) {
	return a + b;
}

fn main() {
	return add(1);
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function add expected 2 argument(s), but 1 are given")
}

func TestNoEntryPoint(t *testing.T) {
	_, err := analyze(t, "fn f() { return 0; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry point")
}

func TestInnerScopeNameVanishes(t *testing.T) {
	// a name declared inside a block is gone when the block ends
	_, err := analyze(t, `
fn main() {
	{
		let x = 1;
	}
	write(x);
	return 0;
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x is undefined")
}

func TestParametersAreInScope(t *testing.T) {
	_, err := analyze(t, `
fn f(a) {
	return a + 1;
}

fn main() {
	return f(1);
}
`)
	assert.NoError(t, err)
}

func TestUninitializedUseWarns(t *testing.T) {
	analyzer, err := analyze(t, `
fn main() {
	let x;
	write(x);
	return 0;
}
`)
	require.NoError(t, err)
	require.Len(t, analyzer.Warnings, 1)
	assert.Contains(t, analyzer.Warnings[0].String(), "variable x was used but not initialized")
}

func TestAssignmentInitializes(t *testing.T) {
	analyzer, err := analyze(t, `
fn main() {
	let x;
	x = 1;
	write(x);
	return 0;
}
`)
	require.NoError(t, err)
	assert.Empty(t, analyzer.Warnings)
}
