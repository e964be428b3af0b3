package parser

import (
	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/report"
	"github.com/jonashpro/lang/token"
)

// expression is the entry point for parsing expressions. It begins at the
// rule with the least precedence.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.bitwiseOrXorExpression()
}

// bitwiseOrXorExpression parses a binary expression with '|' or '^'.
func (parser *Parser) bitwiseOrXorExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.bitwiseAndExpression,
		token.BITWISE_OR,
		token.BITWISE_XOR,
	)
}

// bitwiseAndExpression parses a binary expression with '&'.
func (parser *Parser) bitwiseAndExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.shiftExpression,
		token.BITWISE_AND,
	)
}

// shiftExpression parses a binary expression with '<<' or '>>'.
func (parser *Parser) shiftExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.logicalExpression,
		token.SHL,
		token.SHR,
	)
}

// logicalExpression parses a binary expression with '&&' or '||'.
func (parser *Parser) logicalExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.comparisonExpression,
		token.AND,
		token.OR,
	)
}

// comparisonExpression parses a binary expression with '==', '!=', '<',
// '<=', '>' or '>='.
func (parser *Parser) comparisonExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.additiveExpression,
		token.EQ,
		token.NE,
		token.LT,
		token.LE,
		token.GT,
		token.GE,
	)
}

// additiveExpression parses a binary expression with '+' or '-'.
func (parser *Parser) additiveExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.multiplicativeExpression,
		token.ADD,
		token.SUB,
	)
}

// multiplicativeExpression parses a binary expression with '*' or '/'.
func (parser *Parser) multiplicativeExpression() (ast.Expression, error) {
	return parser.binaryOperation(parser.factor,
		token.MUL,
		token.DIV,
	)
}

// binaryOperation builds a left-associative chain of Binary nodes for the
// given operator set, delegating operands to the next precedence level.
//
//	<binary_operation> ::= <next> (<operator> <next>)*
func (parser *Parser) binaryOperation(next func() (ast.Expression, error), operators ...token.Type) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		current := parser.peek()
		matched := false
		for _, operator := range operators {
			if current.Type == operator {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}

		parser.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{
			Pos:      current.Pos,
			Operator: current.Type,
			Left:     left,
			Right:    right,
		}
	}
}

// factor parses the most basic forms of expressions.
//
//	<factor> ::= <int>
//	          |  <float>
//	          |  <string>
//	          |  <identifier>
//	          |  '(' <expression> ')'
//	          |  '+' <factor>
//	          |  '-' <factor>
//	          |  '!' <expression>
//	          |  '~' <factor>
//	          |  <function_call>
//	          |  <list_declaration>
//	          |  <list_access>
func (parser *Parser) factor() (ast.Expression, error) {
	current := parser.peek()

	switch current.Type {
	case token.INT:
		parser.advance()
		return ast.Int{Pos: current.Pos, Value: current.Value.(int64)}, nil

	case token.FLOAT:
		parser.advance()
		return ast.Float{Pos: current.Pos, Value: current.Value.(float64)}, nil

	case token.STRING:
		parser.advance()
		return ast.String{Pos: current.Pos, Value: current.Value.(string)}, nil

	case token.LPAREN:
		parser.advance()
		expression, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expression, nil

	case token.ADD, token.SUB:
		parser.advance()
		operand, err := parser.factor()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Pos: current.Pos, Operator: current.Type, Operand: operand}, nil

	// '!' negates the truth of a whole expression, not just a factor
	case token.NOT:
		parser.advance()
		operand, err := parser.expression()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Pos: current.Pos, Operator: current.Type, Operand: operand}, nil

	case token.BITWISE_NOT:
		parser.advance()
		operand, err := parser.factor()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Pos: current.Pos, Operator: current.Type, Operand: operand}, nil

	case token.IDENTIFIER:
		switch parser.peekNext().Type {
		case token.LPAREN:
			return parser.functionCall()
		case token.LBRACKET:
			return parser.listAccess()
		default:
			parser.advance()
			return ast.Identifier{Pos: current.Pos, Name: current.Value.(string)}, nil
		}

	case token.LBRACKET:
		return parser.listDeclaration()

	default:
		return nil, report.Errorf(current.Pos, "invalid syntax: %q", current.Value)
	}
}

// listDeclaration parses a list literal.
//
//	<list_declaration> ::= '[' (<expression> (',' <expression>)*)? ']'
func (parser *Parser) listDeclaration() (ast.Expression, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.LBRACKET); err != nil {
		return nil, err
	}

	elements := []ast.Expression{}
	for !parser.checkType(token.RBRACKET) {
		element, err := parser.expression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)

		if !parser.isMatch(token.COMMA) {
			break
		}
	}

	if _, err := parser.expect(token.RBRACKET); err != nil {
		return nil, err
	}

	return ast.List{Pos: pos, Elements: elements}, nil
}

// functionCall parses a call with an optional argument list.
//
//	<function_call> ::=
//		<identifier> '(' (<expression> (',' <expression>)*)? ')'
func (parser *Parser) functionCall() (ast.Expression, error) {
	pos := parser.peek().Pos

	name, err := parser.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.LPAREN); err != nil {
		return nil, err
	}

	arguments := []ast.Expression{}
	for !parser.checkType(token.RPAREN) {
		argument, err := parser.expression()
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, argument)

		if !parser.isMatch(token.COMMA) {
			break
		}
	}

	if _, err := parser.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return ast.Call{
		Pos:       pos,
		Name:      name.Value.(string),
		Arguments: arguments,
	}, nil
}

// listAccess parses one or more chained subscripts on an identifier.
//
//	<list_access> ::= <identifier> ('[' <expression> ']')+
func (parser *Parser) listAccess() (ast.Expression, error) {
	pos := parser.peek().Pos

	name, err := parser.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var node ast.Expression = ast.Identifier{Pos: pos, Name: name.Value.(string)}

	for parser.checkType(token.LBRACKET) {
		bracket := parser.advance()
		index, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		node = ast.ListAccess{Pos: bracket.Pos, Target: node, Index: index}
	}

	return node, nil
}
