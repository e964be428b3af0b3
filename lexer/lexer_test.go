package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonashpro/lang/token"
)

// lex scans the source and fails the test on a lexing error.
func lex(t *testing.T, source string) []token.Token {
	t.Helper()
	tokens, err := New("test.lng", source).Lex()
	require.NoError(t, err)
	return tokens
}

// kinds extracts the token types for compact comparison.
func kinds(tokens []token.Token) []token.Type {
	types := make([]token.Type, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	return types
}

func TestOperators(t *testing.T) {
	tokens := lex(t, "== / = * + > - < != <= >= ! ~ & | ^ << >> && || += -= *= /= ; ,")

	assert.Equal(t, []token.Type{
		token.EQ, token.DIV, token.ASSIGN, token.MUL, token.ADD, token.GT,
		token.SUB, token.LT, token.NE, token.LE, token.GE, token.NOT,
		token.BITWISE_NOT, token.BITWISE_AND, token.BITWISE_OR,
		token.BITWISE_XOR, token.SHL, token.SHR, token.AND, token.OR,
		token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN,
		token.DIV_ASSIGN, token.SEMICOLON, token.COMMA, token.EOF,
	}, kinds(tokens))
}

func TestBracketsAndBraces(t *testing.T) {
	tokens := lex(t, "(){}[]")

	assert.Equal(t, []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.EOF,
	}, kinds(tokens))
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tokens := lex(t, "fn while if else do for let return break continue main x_1")

	assert.Equal(t, []token.Type{
		token.FN, token.WHILE, token.IF, token.ELSE, token.DO, token.FOR,
		token.LET, token.RETURN, token.BREAK, token.CONTINUE,
		token.IDENTIFIER, token.IDENTIFIER, token.EOF,
	}, kinds(tokens))

	assert.Equal(t, "main", tokens[10].Value)
	assert.Equal(t, "x_1", tokens[11].Value)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		source string
		typ    token.Type
		value  any
	}{
		{"0", token.INT, int64(0)},
		{"42", token.INT, int64(42)},
		{"0b101", token.INT, int64(5)},
		{"0o17", token.INT, int64(15)},
		{"0x1F", token.INT, int64(31)},
		{"3.14", token.FLOAT, 3.14},
		{"0.5", token.FLOAT, 0.5},
	}

	for _, tt := range tests {
		tokens := lex(t, tt.source)
		require.Len(t, tokens, 2, "source %q", tt.source)
		assert.Equal(t, tt.typ, tokens[0].Type, "source %q", tt.source)
		assert.Equal(t, tt.value, tokens[0].Value, "source %q", tt.source)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		source string
		value  string
	}{
		{`"hi"`, "hi"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote \" inside"`, `quote " inside`},
		{`"back\\slash"`, `back\slash`},
		{`"bell\a"`, "bell\a"},

		// unknown escapes pass through with their backslash
		{`"\q"`, `\q`},
	}

	for _, tt := range tests {
		tokens := lex(t, tt.source)
		require.Len(t, tokens, 2, "source %q", tt.source)
		assert.Equal(t, token.Type(token.STRING), tokens[0].Type)
		assert.Equal(t, tt.value, tokens[0].Value, "source %q", tt.source)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	tokens := lex(t, "// a comment\n1 // trailing\n")

	assert.Equal(t, []token.Type{token.INT, token.EOF}, kinds(tokens))
}

func TestPositions(t *testing.T) {
	tokens := lex(t, "let x = 5;\n")

	positions := []struct {
		line   int32
		column int
	}{
		{1, 1},  // let
		{1, 5},  // x
		{1, 7},  // =
		{1, 9},  // 5
		{1, 10}, // ;
		{2, 1},  // eof
	}

	require.Len(t, tokens, len(positions))
	for i, want := range positions {
		assert.Equal(t, "test.lng", tokens[i].Pos.File)
		assert.Equal(t, want.line, tokens[i].Pos.Line, "token %d", i)
		assert.Equal(t, want.column, tokens[i].Pos.Column, "token %d", i)
	}
}

func TestIllegalCharacter(t *testing.T) {
	_, err := New("test.lng", "let @ = 1;").Lex()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `illegal character "@"`)
	assert.True(t, strings.HasPrefix(err.Error(), "test.lng:1:5:"))
}

func TestUnclosedString(t *testing.T) {
	_, err := New("test.lng", "let s = \"abc\nlet t = 1;").Lex()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed string")
}

func TestUnclosedStringAtEOF(t *testing.T) {
	_, err := New("test.lng", `let s = "abc`).Lex()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed string")
}

func TestEmptyInput(t *testing.T) {
	tokens := lex(t, "")
	assert.Equal(t, []token.Type{token.EOF}, kinds(tokens))
}
