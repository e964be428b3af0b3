package parser

import (
	"encoding/json"
	"os"

	"github.com/jonashpro/lang/ast"
)

// astPrinter implements the visitor interfaces and builds a JSON-friendly
// representation of the AST using maps and slices. Each Visit method
// returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitInt(n ast.Int) any {
	return map[string]any{"type": "Int", "value": n.Value}
}

func (p astPrinter) VisitFloat(n ast.Float) any {
	return map[string]any{"type": "Float", "value": n.Value}
}

func (p astPrinter) VisitString(n ast.String) any {
	return map[string]any{"type": "String", "value": n.Value}
}

func (p astPrinter) VisitNil(n ast.Nil) any {
	return map[string]any{"type": "Nil"}
}

func (p astPrinter) VisitIdentifier(n ast.Identifier) any {
	return map[string]any{"type": "Identifier", "name": n.Name}
}

func (p astPrinter) VisitUnary(n ast.Unary) any {
	return map[string]any{
		"type":     "Unary",
		"operator": string(n.Operator),
		"operand":  n.Operand.Accept(p),
	}
}

func (p astPrinter) VisitBinary(n ast.Binary) any {
	return map[string]any{
		"type":     "Binary",
		"operator": string(n.Operator),
		"left":     n.Left.Accept(p),
		"right":    n.Right.Accept(p),
	}
}

func (p astPrinter) VisitCall(n ast.Call) any {
	arguments := make([]any, 0, len(n.Arguments))
	for _, argument := range n.Arguments {
		arguments = append(arguments, argument.Accept(p))
	}
	return map[string]any{
		"type":      "Call",
		"name":      n.Name,
		"arguments": arguments,
	}
}

func (p astPrinter) VisitList(n ast.List) any {
	elements := make([]any, 0, len(n.Elements))
	for _, element := range n.Elements {
		elements = append(elements, element.Accept(p))
	}
	return map[string]any{
		"type":     "List",
		"elements": elements,
	}
}

func (p astPrinter) VisitListAccess(n ast.ListAccess) any {
	return map[string]any{
		"type":   "ListAccess",
		"target": n.Target.Accept(p),
		"index":  n.Index.Accept(p),
	}
}

func (p astPrinter) VisitLet(n ast.Let) any {
	return map[string]any{
		"type":  "Let",
		"name":  n.Name,
		"value": acceptOrNil(n.Value, p),
	}
}

func (p astPrinter) VisitAssign(n ast.Assign) any {
	return map[string]any{
		"type":  "Assign",
		"name":  n.Name,
		"value": n.Value.Accept(p),
	}
}

func (p astPrinter) VisitBlock(n ast.Block) any {
	statements := make([]any, 0, len(n.Statements))
	for _, statement := range n.Statements {
		statements = append(statements, statement.Accept(p))
	}
	return map[string]any{
		"type":       "Block",
		"statements": statements,
	}
}

func (p astPrinter) VisitIf(n ast.If) any {
	var elseBody any
	if n.Else != nil {
		elseBody = n.Else.Accept(p)
	}
	return map[string]any{
		"type":      "If",
		"condition": n.Condition.Accept(p),
		"then":      n.Then.Accept(p),
		"else":      elseBody,
	}
}

func (p astPrinter) VisitWhile(n ast.While) any {
	return map[string]any{
		"type":      "While",
		"condition": n.Condition.Accept(p),
		"body":      n.Body.Accept(p),
	}
}

func (p astPrinter) VisitDoWhile(n ast.DoWhile) any {
	return map[string]any{
		"type":      "DoWhile",
		"condition": n.Condition.Accept(p),
		"body":      n.Body.Accept(p),
	}
}

func (p astPrinter) VisitFn(n ast.Fn) any {
	parameters := make([]any, 0, len(n.Parameters))
	for _, parameter := range n.Parameters {
		parameters = append(parameters, parameter.Name)
	}
	return map[string]any{
		"type":       "Fn",
		"name":       n.Name,
		"parameters": parameters,
		"body":       n.Body.Accept(p),
	}
}

func (p astPrinter) VisitReturn(n ast.Return) any {
	return map[string]any{
		"type":  "Return",
		"value": n.Value.Accept(p),
	}
}

func (p astPrinter) VisitExpressionStmt(n ast.ExpressionStmt) any {
	return map[string]any{
		"type":       "ExpressionStmt",
		"expression": n.Expression.Accept(p),
	}
}

func acceptOrNil(expression ast.Expression, p astPrinter) any {
	if expression == nil {
		return nil
	}
	return expression.Accept(p)
}

// MarshalASTJSON renders the given declarations as prettified JSON.
func MarshalASTJSON(declarations []ast.Stmt) ([]byte, error) {
	printer := astPrinter{}
	tree := make([]any, 0, len(declarations))
	for _, declaration := range declarations {
		tree = append(tree, declaration.Accept(printer))
	}
	return json.MarshalIndent(tree, "", "  ")
}

// WriteASTJSON writes the AST for the provided declarations to a .json
// file at the given path.
func WriteASTJSON(declarations []ast.Stmt, path string) error {
	data, err := MarshalASTJSON(declarations)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
