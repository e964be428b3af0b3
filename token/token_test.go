package token

import (
	"testing"
)

func TestPositionString(t *testing.T) {
	pos := Position{File: "main.lng", Line: 3, Column: 14}
	got := pos.String()
	want := "main.lng:3:14"
	if got != want {
		t.Errorf("pos.String() = %q, want %q", got, want)
	}
}

func TestNewKeepsLexemeAsValue(t *testing.T) {
	tests := []struct {
		typ   Type
		value string
	}{
		{ADD, "+"},
		{SHL, "<<"},
		{WHILE, "while"},
		{EOF, "eof"},
	}

	for _, tt := range tests {
		tok := New(Position{}, tt.typ)
		if tok.Value != tt.value {
			t.Errorf("New(%q).Value = %v, want %q", tt.typ, tok.Value, tt.value)
		}
	}
}

func TestNewLiteral(t *testing.T) {
	pos := Position{File: "main.lng", Line: 1, Column: 5}
	tok := NewLiteral(pos, INT, int64(42))

	if tok.Type != INT {
		t.Errorf("tok.Type = %q, want %q", tok.Type, INT)
	}
	if tok.Value != int64(42) {
		t.Errorf("tok.Value = %v, want 42", tok.Value)
	}
	if tok.Pos != pos {
		t.Errorf("tok.Pos = %v, want %v", tok.Pos, pos)
	}
}

func TestKeywordsAreReserved(t *testing.T) {
	reserved := []string{"fn", "while", "if", "else", "do", "for", "let", "return", "break", "continue"}

	for _, word := range reserved {
		if _, ok := Keywords[word]; !ok {
			t.Errorf("keyword %q missing from Keywords", word)
		}
	}
}

func TestOperatorsPreferLongestMatch(t *testing.T) {
	// every two-character operator must also exist so the lexer can
	// look it up before falling back to one character
	doubles := []string{"==", "!=", "<=", ">=", "<<", ">>", "&&", "||", "+=", "-=", "*=", "/="}

	for _, lexeme := range doubles {
		if _, ok := Operators[lexeme]; !ok {
			t.Errorf("operator %q missing from Operators", lexeme)
		}
	}
}
