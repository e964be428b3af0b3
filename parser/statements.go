package parser

import (
	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/report"
	"github.com/jonashpro/lang/token"
)

// statement parses a single statement.
//
//	<statement> ::= <block_statement>
//	             |  <let_statement>
//	             |  <if_statement>
//	             |  <while_statement>
//	             |  <function_call> ';'
//	             |  <return_statement>
//	             |  <assign_statement>
//	             |  <do_while_statement>
func (parser *Parser) statement() (ast.Stmt, error) {
	switch parser.peek().Type {
	case token.LET:
		return parser.letStatement()

	case token.LBRACE:
		return parser.blockStatement()

	case token.IF:
		return parser.ifStatement()

	case token.WHILE:
		return parser.whileStatement()

	case token.RETURN:
		return parser.returnStatement()

	case token.DO:
		return parser.doWhileStatement()

	case token.IDENTIFIER:
		if parser.peekNext().Type == token.LPAREN {
			call, err := parser.functionCall()
			if err != nil {
				return nil, err
			}
			if _, err := parser.expect(token.SEMICOLON); err != nil {
				return nil, err
			}
			return ast.ExpressionStmt{Expression: call}, nil
		}
		return parser.assignStatement()

	default:
		current := parser.peek()
		return nil, report.Errorf(current.Pos, "unexpected %q", current.Value)
	}
}

// letStatement parses a variable declaration; the initializer is
// optional.
//
//	<let_statement> ::= 'let' <identifier> ('=' <expression>)? ';'
func (parser *Parser) letStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.LET); err != nil {
		return nil, err
	}
	name, err := parser.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var value ast.Expression
	if parser.isMatch(token.ASSIGN) {
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := parser.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ast.Let{
		Pos:   pos,
		Name:  name.Value.(string),
		Value: value,
	}, nil
}

// assignStatement parses a mutation of an existing binding. Compound
// assignments lower to a plain assignment of a binary expression.
//
//	<assign_statement> ::=
//		<identifier> ('=' | '+=' | '-=' | '*=' | '/=') <expression> ';'
func (parser *Parser) assignStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	name, err := parser.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var value ast.Expression
	current := parser.peek()

	switch {
	case current.Type == token.ASSIGN:
		parser.advance()
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}

	case assignOperators[current.Type] != "":
		parser.advance()
		right, err := parser.expression()
		if err != nil {
			return nil, err
		}
		value = ast.Binary{
			Pos:      pos,
			Operator: assignOperators[current.Type],
			Left:     ast.Identifier{Pos: pos, Name: name.Value.(string)},
			Right:    right,
		}

	default:
		return nil, report.Errorf(pos, "%q expected", "= += -= *= or /=")
	}

	if _, err := parser.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ast.Assign{
		Pos:   pos,
		Name:  name.Value.(string),
		Value: value,
	}, nil
}

// blockStatement parses a braced statement list. A statement that follows
// a return inside the same block can never execute, so it is rejected.
//
//	<block_statement> ::= '{' <statement>* '}'
func (parser *Parser) blockStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.LBRACE); err != nil {
		return nil, err
	}

	statements := []ast.Stmt{}
	for !parser.checkType(token.RBRACE) {
		if parser.isFinished() {
			return nil, report.Errorf(parser.peek().Pos, "%q expected", string(token.RBRACE))
		}

		statement, err := parser.statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)

		if _, isReturn := statement.(ast.Return); isReturn && !parser.checkType(token.RBRACE) {
			return nil, report.Errorf(parser.peek().Pos, "unreachable statement")
		}
	}

	if _, err := parser.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return ast.Block{Pos: pos, Statements: statements}, nil
}

// condition parses the parenthesized condition shared by if, while and
// do-while.
//
//	<condition> ::= '(' <expression> ')'
func (parser *Parser) condition() (ast.Expression, error) {
	if _, err := parser.expect(token.LPAREN); err != nil {
		return nil, err
	}
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return condition, nil
}

// ifStatement parses a conditional with an optional else branch.
//
//	<if_statement> ::= 'if' <condition> <statement> ('else' <statement>)?
func (parser *Parser) ifStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.IF); err != nil {
		return nil, err
	}
	condition, err := parser.condition()
	if err != nil {
		return nil, err
	}
	then, err := parser.statement()
	if err != nil {
		return nil, err
	}

	var elseBody ast.Stmt
	if parser.isMatch(token.ELSE) {
		elseBody, err = parser.statement()
		if err != nil {
			return nil, err
		}
	}

	return ast.If{
		Pos:       pos,
		Condition: condition,
		Then:      then,
		Else:      elseBody,
	}, nil
}

// whileStatement parses a pre-tested loop.
//
//	<while_statement> ::= 'while' <condition> <statement>
func (parser *Parser) whileStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.WHILE); err != nil {
		return nil, err
	}
	condition, err := parser.condition()
	if err != nil {
		return nil, err
	}
	body, err := parser.statement()
	if err != nil {
		return nil, err
	}

	return ast.While{
		Pos:       pos,
		Condition: condition,
		Body:      body,
	}, nil
}

// doWhileStatement parses a post-tested loop.
//
//	<do_while_statement> ::= 'do' <statement> 'while' <condition> ';'
func (parser *Parser) doWhileStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := parser.statement()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.WHILE); err != nil {
		return nil, err
	}
	condition, err := parser.condition()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ast.DoWhile{
		Pos:       pos,
		Condition: condition,
		Body:      body,
	}, nil
}

// returnStatement parses a return with its value.
//
//	<return_statement> ::= 'return' <expression> ';'
func (parser *Parser) returnStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.RETURN); err != nil {
		return nil, err
	}
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	return ast.Return{Pos: pos, Value: value}, nil
}

// fnStatement parses a function declaration.
//
//	<fn_statement> ::=
//		'fn' <identifier> '(' (<identifier> (',' <identifier>)*)? ')'
//			<statement>
func (parser *Parser) fnStatement() (ast.Stmt, error) {
	pos := parser.peek().Pos

	if _, err := parser.expect(token.FN); err != nil {
		return nil, err
	}
	name, err := parser.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(token.LPAREN); err != nil {
		return nil, err
	}

	parameters := []ast.Identifier{}
	for !parser.checkType(token.RPAREN) {
		parameter, err := parser.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, ast.Identifier{
			Pos:  parameter.Pos,
			Name: parameter.Value.(string),
		})

		if !parser.isMatch(token.COMMA) {
			break
		}
	}

	if _, err := parser.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := parser.statement()
	if err != nil {
		return nil, err
	}

	return ast.Fn{
		Pos:        pos,
		Name:       name.Value.(string),
		Parameters: parameters,
		Body:       body,
	}, nil
}
