package parser

import (
	"testing"

	"github.com/hassan/kotlinc/internal/lexer"
)

func TestGetPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		token    lexer.Token
		expected Precedence
	}{
		{"assign", lexer.Token{Type: lexer.TokenAssign}, PrecAssignment},
		{"plus equals", lexer.Token{Type: lexer.TokenPlusEq}, PrecAssignment},
		{"percent equals", lexer.Token{Type: lexer.TokenPercentEq}, PrecAssignment},

		{"logical or", lexer.Token{Type: lexer.TokenOr}, PrecOr},
		{"logical and", lexer.Token{Type: lexer.TokenAnd}, PrecAnd},

		{"equal", lexer.Token{Type: lexer.TokenEqual}, PrecEquality},
		{"identical", lexer.Token{Type: lexer.TokenIdentical}, PrecEquality},
		{"not identical", lexer.Token{Type: lexer.TokenNotIdentical}, PrecEquality},

		{"less than", lexer.Token{Type: lexer.TokenLess}, PrecComparison},
		{"greater equal", lexer.Token{Type: lexer.TokenGreaterEqual}, PrecComparison},

		{"in", lexer.Token{Type: lexer.TokenIn}, PrecNamedCheck},
		{"not in", lexer.Token{Type: lexer.TokenNotIn}, PrecNamedCheck},

		{"until", lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "until"}, PrecInfix},
		{"downTo", lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "downTo"}, PrecInfix},
		{"step", lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "step"}, PrecInfix},

		{"range", lexer.Token{Type: lexer.TokenDotDot}, PrecRange},

		{"plus", lexer.Token{Type: lexer.TokenPlus}, PrecTerm},
		{"minus", lexer.Token{Type: lexer.TokenMinus}, PrecTerm},

		{"star", lexer.Token{Type: lexer.TokenStar}, PrecFactor},
		{"percent", lexer.Token{Type: lexer.TokenPercent}, PrecFactor},

		{"dot", lexer.Token{Type: lexer.TokenDot}, PrecPostfix},
		{"left bracket", lexer.Token{Type: lexer.TokenLeftBracket}, PrecPostfix},
		{"left paren", lexer.Token{Type: lexer.TokenLeftParen}, PrecPostfix},
		{"increment", lexer.Token{Type: lexer.TokenPlusPlus}, PrecPostfix},

		{"plain identifier", lexer.Token{Type: lexer.TokenIdentifier, Lexeme: "x"}, PrecNone},
		{"number", lexer.Token{Type: lexer.TokenInt}, PrecNone},
		{"semicolon", lexer.Token{Type: lexer.TokenSemicolon}, PrecNone},
		{"not", lexer.Token{Type: lexer.TokenNot}, PrecNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getPrecedence(tt.token)
			if result != tt.expected {
				t.Errorf("getPrecedence(%v) = %v, want %v", tt.token, result, tt.expected)
			}
		})
	}
}

func TestIsRightAssociative(t *testing.T) {
	tests := []struct {
		name     string
		token    lexer.TokenType
		expected bool
	}{
		{"assign", lexer.TokenAssign, true},
		{"plus equals", lexer.TokenPlusEq, true},
		{"slash equals", lexer.TokenSlashEq, true},

		{"plus", lexer.TokenPlus, false},
		{"star", lexer.TokenStar, false},
		{"equal", lexer.TokenEqual, false},
		{"and", lexer.TokenAnd, false},
		{"range", lexer.TokenDotDot, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRightAssociative(tt.token)
			if result != tt.expected {
				t.Errorf("isRightAssociative(%v) = %v, want %v", tt.token, result, tt.expected)
			}
		})
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	order := []Precedence{
		PrecNone, PrecAssignment, PrecOr, PrecAnd, PrecEquality,
		PrecComparison, PrecNamedCheck, PrecInfix, PrecRange, PrecTerm,
		PrecFactor, PrecUnary, PrecPostfix, PrecPrimary,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("precedence %d (%d) should be lower than %d (%d)", i-1, order[i-1], i, order[i])
		}
	}
}

func TestContinuesAcrossNewline(t *testing.T) {
	for _, tt := range []lexer.TokenType{lexer.TokenDot, lexer.TokenAnd, lexer.TokenOr} {
		if !continuesAcrossNewline(tt) {
			t.Errorf("continuesAcrossNewline(%v) = false, want true", tt)
		}
	}
	for _, tt := range []lexer.TokenType{lexer.TokenPlus, lexer.TokenMinus, lexer.TokenLeftParen, lexer.TokenPlusPlus} {
		if continuesAcrossNewline(tt) {
			t.Errorf("continuesAcrossNewline(%v) = true, want false", tt)
		}
	}
}
