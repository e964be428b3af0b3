package ast

import (
	"github.com/jonashpro/lang/token"
)

// Let declares a new variable in the current scope. Value is nil when the
// declaration has no initializer; the variable then starts out as nil.
type Let struct {
	Pos   token.Position
	Name  string
	Value Expression
}

func (n Let) Accept(v StmtVisitor) any { return v.VisitLet(n) }

// Assign mutates an existing binding. Compound assignments are lowered by
// the parser, so "x += e" arrives here as Assign(x, Binary(+, x, e)).
type Assign struct {
	Pos   token.Position
	Name  string
	Value Expression
}

func (n Assign) Accept(v StmtVisitor) any { return v.VisitAssign(n) }

// Block is a braced list of statements. It opens a new lexical scope.
type Block struct {
	Pos        token.Position
	Statements []Stmt
}

func (n Block) Accept(v StmtVisitor) any { return v.VisitBlock(n) }

// If executes Then when the condition is truthy, otherwise Else. Else may
// be nil.
type If struct {
	Pos       token.Position
	Condition Expression
	Then      Stmt
	Else      Stmt
}

func (n If) Accept(v StmtVisitor) any { return v.VisitIf(n) }

// While is a pre-tested loop.
type While struct {
	Pos       token.Position
	Condition Expression
	Body      Stmt
}

func (n While) Accept(v StmtVisitor) any { return v.VisitWhile(n) }

// DoWhile is a post-tested loop; the body always runs at least once.
type DoWhile struct {
	Pos       token.Position
	Condition Expression
	Body      Stmt
}

func (n DoWhile) Accept(v StmtVisitor) any { return v.VisitDoWhile(n) }

// Fn declares a function. Parameters keep their own positions so the
// semantic analyzer can point at them in diagnostics.
type Fn struct {
	Pos        token.Position
	Name       string
	Parameters []Identifier
	Body       Stmt
}

func (n Fn) Accept(v StmtVisitor) any { return v.VisitFn(n) }

// Return leaves the enclosing function with the given value.
type Return struct {
	Pos   token.Position
	Value Expression
}

func (n Return) Accept(v StmtVisitor) any { return v.VisitReturn(n) }

// ExpressionStmt wraps an expression used in statement position. The
// parser only produces it for bare function calls.
type ExpressionStmt struct {
	Expression Expression
}

func (n ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(n) }
