package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/lexer"
	"github.com/jonashpro/lang/token"
)

// ignorePositions compares ASTs structurally, without their source
// positions.
var ignorePositions = cmp.Comparer(func(a, b token.Position) bool { return true })

// parse lexes and parses the source, failing the test on any error.
func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	tokens, err := lexer.New("test.lng", source).Lex()
	require.NoError(t, err)
	declarations, err := New(tokens).Parse()
	require.NoError(t, err)
	return declarations
}

// parseError lexes and parses the source and returns the parse error.
func parseError(t *testing.T, source string) error {
	t.Helper()
	tokens, err := lexer.New("test.lng", source).Lex()
	require.NoError(t, err)
	_, err = New(tokens).Parse()
	require.Error(t, err)
	return err
}

// body unwraps the block body of the first declaration, which must be a
// function.
func body(t *testing.T, declarations []ast.Stmt) []ast.Stmt {
	t.Helper()
	fn, ok := declarations[0].(ast.Fn)
	require.True(t, ok, "first declaration is not a function")
	block, ok := fn.Body.(ast.Block)
	require.True(t, ok, "function body is not a block")
	return block.Statements
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	declarations := parse(t, "let x = 1 + 2 * 3;")

	want := []ast.Stmt{
		ast.Let{
			Name: "x",
			Value: ast.Binary{
				Operator: token.ADD,
				Left:     ast.Int{Value: 1},
				Right: ast.Binary{
					Operator: token.MUL,
					Left:     ast.Int{Value: 2},
					Right:    ast.Int{Value: 3},
				},
			},
		},
	}

	if diff := cmp.Diff(want, declarations, ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestComparisonBindsTighterThanLogical(t *testing.T) {
	declarations := parse(t, "let x = 1 < 2 && 3;")

	want := []ast.Stmt{
		ast.Let{
			Name: "x",
			Value: ast.Binary{
				Operator: token.AND,
				Left: ast.Binary{
					Operator: token.LT,
					Left:     ast.Int{Value: 1},
					Right:    ast.Int{Value: 2},
				},
				Right: ast.Int{Value: 3},
			},
		},
	}

	if diff := cmp.Diff(want, declarations, ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestUnaryMinusBindsToFactor(t *testing.T) {
	declarations := parse(t, "let x = -y * 2;")

	want := []ast.Stmt{
		ast.Let{
			Name: "x",
			Value: ast.Binary{
				Operator: token.MUL,
				Left: ast.Unary{
					Operator: token.SUB,
					Operand:  ast.Identifier{Name: "y"},
				},
				Right: ast.Int{Value: 2},
			},
		},
	}

	if diff := cmp.Diff(want, declarations, ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestBangNegatesWholeExpression(t *testing.T) {
	declarations := parse(t, "let x = !y == 1;")

	want := []ast.Stmt{
		ast.Let{
			Name: "x",
			Value: ast.Unary{
				Operator: token.NOT,
				Operand: ast.Binary{
					Operator: token.EQ,
					Left:     ast.Identifier{Name: "y"},
					Right:    ast.Int{Value: 1},
				},
			},
		},
	}

	if diff := cmp.Diff(want, declarations, ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestCompoundAssignmentLowering(t *testing.T) {
	declarations := parse(t, "fn f() { x += 2; }")

	want := []ast.Stmt{
		ast.Assign{
			Name: "x",
			Value: ast.Binary{
				Operator: token.ADD,
				Left:     ast.Identifier{Name: "x"},
				Right:    ast.Int{Value: 2},
			},
		},
	}

	if diff := cmp.Diff(want, body(t, declarations), ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestCallStatement(t *testing.T) {
	declarations := parse(t, `fn f() { write("hi"); g(); }`)

	want := []ast.Stmt{
		ast.ExpressionStmt{
			Expression: ast.Call{
				Name:      "write",
				Arguments: []ast.Expression{ast.String{Value: "hi"}},
			},
		},
		ast.ExpressionStmt{
			Expression: ast.Call{Name: "g", Arguments: []ast.Expression{}},
		},
	}

	if diff := cmp.Diff(want, body(t, declarations), ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestListLiteralAndChainedAccess(t *testing.T) {
	declarations := parse(t, "let x = xs[0][1];")

	want := []ast.Stmt{
		ast.Let{
			Name: "x",
			Value: ast.ListAccess{
				Target: ast.ListAccess{
					Target: ast.Identifier{Name: "xs"},
					Index:  ast.Int{Value: 0},
				},
				Index: ast.Int{Value: 1},
			},
		},
	}

	if diff := cmp.Diff(want, declarations, ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}

	declarations = parse(t, "let xs = [1, 2.5, \"s\"];")
	want = []ast.Stmt{
		ast.Let{
			Name: "xs",
			Value: ast.List{
				Elements: []ast.Expression{
					ast.Int{Value: 1},
					ast.Float{Value: 2.5},
					ast.String{Value: "s"},
				},
			},
		},
	}

	if diff := cmp.Diff(want, declarations, ignorePositions); diff != "" {
		t.Errorf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestIfElseAndLoops(t *testing.T) {
	declarations := parse(t, `
fn f(n) {
	if (n < 1) return 1; else return 2;
}

fn g() {
	while (1) x = 1;
	do x = 2; while (x);
}

let x = 0;
`)

	require.Len(t, declarations, 3)

	f := declarations[0].(ast.Fn)
	assert.Equal(t, "f", f.Name)
	require.Len(t, f.Parameters, 1)
	assert.Equal(t, "n", f.Parameters[0].Name)

	ifStmt, ok := f.Body.(ast.Block).Statements[0].(ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Else)

	g := declarations[1].(ast.Fn)
	statements := g.Body.(ast.Block).Statements
	require.Len(t, statements, 2)

	_, isWhile := statements[0].(ast.While)
	assert.True(t, isWhile)
	_, isDoWhile := statements[1].(ast.DoWhile)
	assert.True(t, isDoWhile)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source  string
		message string
	}{
		{"let x = 1", `";" expected`},
		{"fn f() { return 1; let x; }", "unreachable statement"},
		{"write(1);", `unexpected "write"`},
		{"let x = ;", `invalid syntax: ";"`},
		{"fn f() { x 2; }", `"= += -= *= or /=" expected`},
		{"fn f( { }", `"identifier" expected`},
		{"fn f() { if 1 return 1; }", `"(" expected`},
	}

	for _, tt := range tests {
		err := parseError(t, tt.source)
		assert.Contains(t, err.Error(), tt.message, "source %q", tt.source)
	}
}

func TestEmptyArgumentListIsLegal(t *testing.T) {
	declarations := parse(t, "fn main() { f(); }")
	call := body(t, declarations)[0].(ast.ExpressionStmt).Expression.(ast.Call)
	assert.Empty(t, call.Arguments)
}
