package ast

import (
	"github.com/jonashpro/lang/token"
)

// Int is an integer literal.
type Int struct {
	Pos   token.Position
	Value int64
}

func (n Int) Accept(v ExpressionVisitor) any { return v.VisitInt(n) }

// Float is a floating-point literal.
type Float struct {
	Pos   token.Position
	Value float64
}

func (n Float) Accept(v ExpressionVisitor) any { return v.VisitFloat(n) }

// String is a string literal. The value holds the decoded bytes, with all
// escape sequences already resolved by the lexer.
type String struct {
	Pos   token.Position
	Value string
}

func (n String) Accept(v ExpressionVisitor) any { return v.VisitString(n) }

// Nil is the nil literal. The parser never produces it; an uninitialized
// declaration compiles straight to the same ldn instruction instead.
type Nil struct {
	Pos token.Position
}

func (n Nil) Accept(v ExpressionVisitor) any { return v.VisitNil(n) }

// Identifier is a reference to a variable by name.
type Identifier struct {
	Pos  token.Position
	Name string
}

func (n Identifier) Accept(v ExpressionVisitor) any { return v.VisitIdentifier(n) }

// Unary applies a prefix operator ("+", "-", "!", "~") to an operand.
type Unary struct {
	Pos      token.Position
	Operator token.Type
	Operand  Expression
}

func (n Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(n) }

// Binary applies an infix operator to two operands.
type Binary struct {
	Pos      token.Position
	Operator token.Type
	Left     Expression
	Right    Expression
}

func (n Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(n) }

// Call invokes a built-in or user-defined function by name.
type Call struct {
	Pos       token.Position
	Name      string
	Arguments []Expression
}

func (n Call) Accept(v ExpressionVisitor) any { return v.VisitCall(n) }

// List is a list literal "[e1, e2, ...]".
type List struct {
	Pos      token.Position
	Elements []Expression
}

func (n List) Accept(v ExpressionVisitor) any { return v.VisitList(n) }

// ListAccess subscripts a list-valued expression with an index
// expression. Chained subscripts ("xs[i][j]") nest ListAccess nodes.
type ListAccess struct {
	Pos    token.Position
	Target Expression
	Index  Expression
}

func (n ListAccess) Accept(v ExpressionVisitor) any { return v.VisitListAccess(n) }
