// Package semantic validates a parsed program before code generation. It
// walks the AST once, maintaining a scope stack for variables and a flat
// function table, and checks scoping, callability, arity, and the
// presence of the main entry point.
//
// Scopes use a copy-on-push model: entering a block or function body
// duplicates the current top scope, so lookups never need parent links.
// A name declared in an inner scope disappears again when the scope ends.
package semantic

import (
	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/opcode"
	"github.com/jonashpro/lang/report"
	"github.com/jonashpro/lang/token"
)

// variable is the record kept per declared name in a scope.
type variable struct {
	pos         token.Position
	name        string
	used        bool
	initialized bool
}

// function is the record kept per user-defined function.
type function struct {
	pos        token.Position
	name       string
	parameters []ast.Identifier
}

// Analyzer walks the AST and validates it. Calls to user functions are
// collected during the walk and checked in a second pass, once every
// function is known, so that forward calls resolve.
type Analyzer struct {
	declarations []ast.Stmt

	// stack of scopes; each scope is the list of variables visible there
	scopes [][]*variable

	functions []*function
	callSites []ast.Call

	// Warnings accumulates non-fatal diagnostics; the caller decides how
	// to print them.
	Warnings []report.Warning

	err error
}

// Initializes and returns a new Analyzer instance for the given
// top-level declarations.
func New(declarations []ast.Stmt) *Analyzer {
	return &Analyzer{
		declarations: declarations,
		scopes:       [][]*variable{{}},
	}
}

// Analyze validates the whole program. It returns the first error found;
// warnings are available in Warnings afterwards regardless.
func (sa *Analyzer) Analyze() error {
	for _, declaration := range sa.declarations {
		declaration.Accept(sa)
		if sa.err != nil {
			return sa.err
		}
	}

	// user function calls are checked once all functions are known
	for _, call := range sa.callSites {
		fn := sa.lookupFunction(call.Name)
		if fn == nil {
			return report.Errorf(call.Pos, "%s is undefined", call.Name)
		}
		if len(fn.parameters) != len(call.Arguments) {
			return report.Errorf(call.Pos,
				"function %s expected %d argument(s), but %d are given",
				call.Name, len(fn.parameters), len(call.Arguments))
		}
	}

	if sa.lookupFunction("main") == nil {
		return report.Errorf(token.Position{}, "no entry point")
	}

	return nil
}

func (sa *Analyzer) pushScope() {
	top := sa.scopes[len(sa.scopes)-1]
	copied := make([]*variable, len(top))
	copy(copied, top)
	sa.scopes = append(sa.scopes, copied)
}

func (sa *Analyzer) popScope() {
	sa.scopes = sa.scopes[:len(sa.scopes)-1]
}

func (sa *Analyzer) addVariable(v *variable) {
	top := len(sa.scopes) - 1
	sa.scopes[top] = append(sa.scopes[top], v)
}

func (sa *Analyzer) lookupVariable(name string) *variable {
	// newest binding wins
	top := sa.scopes[len(sa.scopes)-1]
	for i := len(top) - 1; i >= 0; i-- {
		if top[i].name == name {
			return top[i]
		}
	}
	return nil
}

func (sa *Analyzer) lookupFunction(name string) *function {
	for _, fn := range sa.functions {
		if fn.name == name {
			return fn
		}
	}
	return nil
}

// markUsed records that a variable was read, warning when it has not been
// initialized yet.
func (sa *Analyzer) markUsed(pos token.Position, v *variable) {
	if !v.initialized {
		sa.Warnings = append(sa.Warnings, report.Warningf(pos,
			"variable %s was used but not initialized", v.name))
	}
	v.used = true
}

// fail records the first error; later visits become no-ops.
func (sa *Analyzer) fail(pos token.Position, format string, args ...any) {
	if sa.err == nil {
		sa.err = report.Errorf(pos, format, args...)
	}
}

func (sa *Analyzer) analyzeExpression(expression ast.Expression) {
	if sa.err == nil && expression != nil {
		expression.Accept(sa)
	}
}

func (sa *Analyzer) analyzeStatement(statement ast.Stmt) {
	if sa.err == nil && statement != nil {
		statement.Accept(sa)
	}
}

func (sa *Analyzer) VisitInt(n ast.Int) any       { return nil }
func (sa *Analyzer) VisitFloat(n ast.Float) any   { return nil }
func (sa *Analyzer) VisitString(n ast.String) any { return nil }
func (sa *Analyzer) VisitNil(n ast.Nil) any       { return nil }

func (sa *Analyzer) VisitIdentifier(n ast.Identifier) any {
	v := sa.lookupVariable(n.Name)
	if v == nil {
		sa.fail(n.Pos, "%s is undefined", n.Name)
		return nil
	}
	sa.markUsed(n.Pos, v)
	return nil
}

func (sa *Analyzer) VisitUnary(n ast.Unary) any {
	sa.analyzeExpression(n.Operand)
	return nil
}

func (sa *Analyzer) VisitBinary(n ast.Binary) any {
	sa.analyzeExpression(n.Left)
	sa.analyzeExpression(n.Right)
	return nil
}

func (sa *Analyzer) VisitCall(n ast.Call) any {
	for _, argument := range n.Arguments {
		sa.analyzeExpression(argument)
	}
	if sa.err != nil {
		return nil
	}

	if builtin, ok := opcode.Builtins[n.Name]; ok {
		if len(n.Arguments) != builtin.Arity {
			sa.fail(n.Pos,
				"function %s expected %d argument(s), but %d are given",
				n.Name, builtin.Arity, len(n.Arguments))
		}
		return nil
	}

	if sa.lookupFunction(n.Name) == nil && sa.lookupVariable(n.Name) != nil {
		sa.fail(n.Pos, "variable %s is not callable", n.Name)
		return nil
	}

	sa.callSites = append(sa.callSites, n)
	return nil
}

func (sa *Analyzer) VisitList(n ast.List) any {
	for _, element := range n.Elements {
		sa.analyzeExpression(element)
	}
	return nil
}

func (sa *Analyzer) VisitListAccess(n ast.ListAccess) any {
	sa.analyzeExpression(n.Target)
	sa.analyzeExpression(n.Index)
	return nil
}

func (sa *Analyzer) VisitLet(n ast.Let) any {
	sa.analyzeExpression(n.Value)
	if sa.err != nil {
		return nil
	}

	if sa.lookupVariable(n.Name) != nil {
		sa.fail(n.Pos, "redeclaration of %s", n.Name)
		return nil
	}

	sa.addVariable(&variable{
		pos:         n.Pos,
		name:        n.Name,
		initialized: n.Value != nil,
	})
	return nil
}

func (sa *Analyzer) VisitAssign(n ast.Assign) any {
	sa.analyzeExpression(n.Value)
	if sa.err != nil {
		return nil
	}

	v := sa.lookupVariable(n.Name)
	if v == nil {
		sa.fail(n.Pos, "%s is undefined", n.Name)
		return nil
	}
	v.initialized = true
	return nil
}

func (sa *Analyzer) VisitBlock(n ast.Block) any {
	sa.pushScope()
	for _, statement := range n.Statements {
		sa.analyzeStatement(statement)
	}
	sa.popScope()
	return nil
}

func (sa *Analyzer) VisitIf(n ast.If) any {
	sa.analyzeExpression(n.Condition)
	sa.analyzeStatement(n.Then)
	sa.analyzeStatement(n.Else)
	return nil
}

func (sa *Analyzer) VisitWhile(n ast.While) any {
	sa.analyzeExpression(n.Condition)
	sa.analyzeStatement(n.Body)
	return nil
}

func (sa *Analyzer) VisitDoWhile(n ast.DoWhile) any {
	sa.analyzeExpression(n.Condition)
	sa.analyzeStatement(n.Body)
	return nil
}

func (sa *Analyzer) VisitFn(n ast.Fn) any {
	sa.functions = append(sa.functions, &function{
		pos:        n.Pos,
		name:       n.Name,
		parameters: n.Parameters,
	})

	sa.pushScope()
	for _, parameter := range n.Parameters {
		sa.addVariable(&variable{
			pos:         parameter.Pos,
			name:        parameter.Name,
			initialized: true,
		})
	}
	sa.analyzeStatement(n.Body)
	sa.popScope()
	return nil
}

func (sa *Analyzer) VisitReturn(n ast.Return) any {
	sa.analyzeExpression(n.Value)
	return nil
}

func (sa *Analyzer) VisitExpressionStmt(n ast.ExpressionStmt) any {
	sa.analyzeExpression(n.Expression)
	return nil
}
