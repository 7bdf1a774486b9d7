package lexer

import (
	"testing"
)

func TestToken_String(t *testing.T) {
	tests := []struct {
		name     string
		token    Token
		expected string
	}{
		{
			name: "identifier token",
			token: Token{
				Type:     TokenIdentifier,
				Lexeme:   "foo",
				Position: Position{Filename: "a.kt", Line: 1, Column: 1},
			},
			expected: "IDENTIFIER(foo) at a.kt:1:1",
		},
		{
			name: "float token",
			token: Token{
				Type:     TokenFloat,
				Lexeme:   "0.5f",
				Position: Position{Filename: "a.kt", Line: 5, Column: 10},
			},
			expected: "FLOAT(0.5f) at a.kt:5:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.String(); got != tt.expected {
				t.Errorf("Token.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestToken_Span(t *testing.T) {
	token := Token{
		Type:     TokenIdentifier,
		Lexeme:   "hello",
		Position: Position{Filename: "a.kt", Line: 1, Column: 5, Offset: 4},
		Length:   5,
	}

	span := token.Span()
	if span.Start.Offset != 4 {
		t.Errorf("start offset = %d, want 4", span.Start.Offset)
	}
	if span.End.Offset != 9 {
		t.Errorf("end offset = %d, want 9", span.End.Offset)
	}
	if span.End.Column != 10 {
		t.Errorf("end column = %d, want 10", span.End.Column)
	}
}

func TestTokenType_String(t *testing.T) {
	tests := []struct {
		tt   TokenType
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenIdentical, "IDENTICAL"},
		{TokenDotDot, "DOTDOT"},
		{TokenNotIn, "NOTIN"},
		{TokenComma, "COMMA"},
		{TokenType(-1), "UNKNOWN"},
		{TokenType(9999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tt.String(); got != tt.want {
				t.Errorf("TokenType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word string
		want TokenType
	}{
		{"val", TokenVal},
		{"var", TokenVar},
		{"fun", TokenFun},
		{"class", TokenClass},
		{"in", TokenIn},
		{"this", TokenThis},
		{"true", TokenTrue},
		{"println", TokenIdentifier},
		{"until", TokenIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := LookupKeyword(tt.word); got != tt.want {
				t.Errorf("LookupKeyword(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestTokenType_Categories(t *testing.T) {
	tests := []struct {
		tt         TokenType
		keyword    bool
		operator   bool
		literal    bool
		assignment bool
	}{
		{TokenFun, true, false, false, false},
		{TokenThis, true, false, false, false},
		{TokenPlus, false, true, false, false},
		{TokenPlusEq, false, true, false, true},
		{TokenAssign, false, true, false, true},
		{TokenColon, false, true, false, false},
		{TokenFloat, false, false, true, false},
		{TokenFalse, false, false, true, false},
		{TokenIdentifier, false, false, false, false},
		{TokenLeftParen, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.tt.String(), func(t *testing.T) {
			if got := tt.tt.IsKeyword(); got != tt.keyword {
				t.Errorf("IsKeyword() = %v, want %v", got, tt.keyword)
			}
			if got := tt.tt.IsOperator(); got != tt.operator {
				t.Errorf("IsOperator() = %v, want %v", got, tt.operator)
			}
			if got := tt.tt.IsLiteral(); got != tt.literal {
				t.Errorf("IsLiteral() = %v, want %v", got, tt.literal)
			}
			if got := tt.tt.IsAssignment(); got != tt.assignment {
				t.Errorf("IsAssignment() = %v, want %v", got, tt.assignment)
			}
		})
	}
}
