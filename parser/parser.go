// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A recursive descent parser is a top-down parser: it starts from the top
// grammar rule and works its way down into the nested sub-expressions
// before reaching the leaves of the syntax tree (terminal rules).
package parser

import (
	"github.com/jonashpro/lang/ast"
	"github.com/jonashpro/lang/report"
	"github.com/jonashpro/lang/token"
)

// assignOperators maps a compound assignment operator to the binary
// operator it lowers to: "x += e" becomes Assign(x, Binary(+, x, e)).
var assignOperators = map[token.Type]token.Type{
	token.ADD_ASSIGN: token.ADD,
	token.SUB_ASSIGN: token.SUB,
	token.MUL_ASSIGN: token.MUL,
	token.DIV_ASSIGN: token.DIV,
}

type Parser struct {
	tokens   []token.Token
	position int
}

// Initializes and returns a new Parser instance.
//
// Parameters:
//   - tokens: The tokens created by the lexer, terminated by an EOF token.
//
// Returns:
//   - *Parser: A pointer to a newly created Parser instance.
func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
	}
}

// Peeks the token at the parser's current position, without advancing.
func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

// peekNext returns the token one past the current position, or the EOF
// token when the input ends there.
func (parser *Parser) peekNext() token.Token {
	if parser.position+1 < len(parser.tokens) {
		return parser.tokens[parser.position+1]
	}
	return parser.tokens[len(parser.tokens)-1]
}

// Consumes the current token by advancing the parser's position by one.
//
// Returns:
//   - token.Token: The token that was consumed.
func (parser *Parser) advance() token.Token {
	tok := parser.peek()
	if !parser.isFinished() {
		parser.position++
	}
	return tok
}

// Determines if the parser has consumed all the tokens.
func (parser *Parser) isFinished() bool {
	return parser.peek().Type == token.EOF
}

// Determines if the provided tokenType matches the type of the token at
// the parser's current position.
func (parser *Parser) checkType(tokenType token.Type) bool {
	return parser.peek().Type == tokenType
}

// Determines if the type of the current token matches any of the provided
// tokenTypes. If a match is found the parser consumes the token.
func (parser *Parser) isMatch(tokenTypes ...token.Type) bool {
	for _, tokenType := range tokenTypes {
		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// Consumes the current token if its type matches tokenType; otherwise it
// reports `"<tokenType>" expected` at the current position.
func (parser *Parser) expect(tokenType token.Type) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	current := parser.peek()
	return token.Token{}, report.Errorf(current.Pos, "%q expected", string(tokenType))
}

// Parse parses the entire token stream into the list of top-level
// declarations. Parsing fails fast: the first token mismatch aborts with
// a positioned diagnostic.
//
// Returns:
//   - []ast.Stmt: the parsed declarations.
//   - error: the first error encountered, or nil.
func (parser *Parser) Parse() ([]ast.Stmt, error) {
	declarations := []ast.Stmt{}

	for !parser.isFinished() {
		declaration, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		declarations = append(declarations, declaration)
	}

	return declarations, nil
}

// declaration parses a top-level declaration.
//
//	<declaration> ::= <fn_statement> | <let_statement>
func (parser *Parser) declaration() (ast.Stmt, error) {
	switch parser.peek().Type {
	case token.LET:
		return parser.letStatement()
	case token.FN:
		return parser.fnStatement()
	default:
		current := parser.peek()
		return nil, report.Errorf(current.Pos, "unexpected %q", current.Value)
	}
}
