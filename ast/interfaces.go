// interfaces.go contains the visitor interfaces that any code traversing
// expression and statement AST nodes must implement, together with the
// interfaces all statement and expression nodes satisfy. The layout follows
// the visitor design pattern so that the semantic analyzer, the code
// generator, and the AST printer can each walk the tree without the node
// types knowing about any of them.

package ast

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. Any type that wants to perform an operation on expressions (the
// semantic analyzer, the code generator, the printer) must implement this
// interface.
//
// Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	// VisitInt is called when visiting an integer literal.
	VisitInt(n Int) any

	// VisitFloat is called when visiting a floating-point literal.
	VisitFloat(n Float) any

	// VisitString is called when visiting a string literal.
	VisitString(n String) any

	// VisitNil is called when visiting the nil literal.
	VisitNil(n Nil) any

	// VisitIdentifier is called when visiting a variable reference.
	VisitIdentifier(n Identifier) any

	// VisitUnary is called when visiting a unary expression (e.g. "-x",
	// "!ok", "~mask").
	VisitUnary(n Unary) any

	// VisitBinary is called when visiting a binary expression (e.g.
	// "a + b").
	VisitBinary(n Binary) any

	// VisitCall is called when visiting a function call.
	VisitCall(n Call) any

	// VisitList is called when visiting a list literal "[a, b, c]".
	VisitList(n List) any

	// VisitListAccess is called when visiting a list subscript "xs[i]".
	VisitListAccess(n ListAccess) any
}

// StmtVisitor is the interface for operating on all statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
type StmtVisitor interface {
	// VisitLet is called when visiting a variable declaration.
	VisitLet(n Let) any

	// VisitAssign is called when visiting a mutation of an existing
	// binding.
	VisitAssign(n Assign) any

	// VisitBlock is called when visiting a braced statement list.
	VisitBlock(n Block) any

	VisitIf(n If) any

	VisitWhile(n While) any

	VisitDoWhile(n DoWhile) any

	// VisitFn is called when visiting a function declaration.
	VisitFn(n Fn) any

	VisitReturn(n Return) any

	// VisitExpressionStmt is called when visiting an expression used in
	// statement position (a bare call followed by ';').
	VisitExpressionStmt(n ExpressionStmt) any
}

// Stmt is the base interface for all statement nodes in the AST. A
// statement represents an action in a program and, unlike an expression,
// does not produce a value.
type Stmt interface {
	// Accept dispatches this statement to the appropriate Visit method of
	// the provided StmtVisitor implementation.
	Accept(v StmtVisitor) any
}

// Expression is the core interface for all expression nodes in the AST.
// The Accept method dispatches the node to the appropriate method on a
// visitor, so operations can be added without changing the node types
// themselves.
type Expression interface {
	Accept(v ExpressionVisitor) any
}
