package parser

import (
	"github.com/hassan/kotlinc/internal/lexer"
)

// Precedence represents operator precedence levels, lowest first.
//
// The levels follow Kotlin's grammar:
//  1. Assignment (=, +=, -=, *=, /=, %=)
//  2. Disjunction (||)
//  3. Conjunction (&&)
//  4. Equality (==, !=, ===, !==)
//  5. Comparison (<, <=, >, >=)
//  6. Named checks (in, !in)
//  7. Infix function calls (until, downTo, step)
//  8. Range (..)
//  9. Additive (+, -)
//  10. Multiplicative (*, /, %)
//  11. Prefix (-, +, !, ++, --)
//  12. Postfix (++, --, ., (), [])
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =, +=, -=, *=, /=, %=
	PrecOr                    // ||
	PrecAnd                   // &&
	PrecEquality              // ==, !=, ===, !==
	PrecComparison            // <, <=, >, >=
	PrecNamedCheck            // in, !in
	PrecInfix                 // until, downTo, step
	PrecRange                 // ..
	PrecTerm                  // +, -
	PrecFactor                // *, /, %
	PrecUnary                 // -, +, !, ++, --
	PrecPostfix               // ++, --, ., (), []
	PrecPrimary               // literals, identifiers, grouping
)

// infixFunctions are the identifiers usable as infix operators.
var infixFunctions = map[string]bool{
	"until":  true,
	"downTo": true,
	"step":   true,
}

// IsInfixFunction reports whether name can be called in infix form.
func IsInfixFunction(name string) bool {
	return infixFunctions[name]
}

// getPrecedence returns the binding power of tok when it follows an
// operand. Infix functions are plain identifiers, so the whole token is
// needed rather than just its type.
func getPrecedence(tok lexer.Token) Precedence {
	switch tok.Type {
	case lexer.TokenAssign,
		lexer.TokenPlusEq,
		lexer.TokenMinusEq,
		lexer.TokenStarEq,
		lexer.TokenSlashEq,
		lexer.TokenPercentEq:
		return PrecAssignment

	case lexer.TokenOr:
		return PrecOr

	case lexer.TokenAnd:
		return PrecAnd

	case lexer.TokenEqual, lexer.TokenNotEqual,
		lexer.TokenIdentical, lexer.TokenNotIdentical:
		return PrecEquality

	case lexer.TokenLess, lexer.TokenLessEqual,
		lexer.TokenGreater, lexer.TokenGreaterEqual:
		return PrecComparison

	case lexer.TokenIn, lexer.TokenNotIn:
		return PrecNamedCheck

	case lexer.TokenIdentifier:
		if infixFunctions[tok.Lexeme] {
			return PrecInfix
		}
		return PrecNone

	case lexer.TokenDotDot:
		return PrecRange

	case lexer.TokenPlus, lexer.TokenMinus:
		return PrecTerm

	case lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		return PrecFactor

	case lexer.TokenPlusPlus, lexer.TokenMinusMinus,
		lexer.TokenDot, lexer.TokenLeftParen, lexer.TokenLeftBracket:
		return PrecPostfix

	default:
		return PrecNone
	}
}

// isRightAssociative reports whether the operator groups to the right.
// Only the assignment family does.
func isRightAssociative(tokenType lexer.TokenType) bool {
	return tokenType.IsAssignment()
}

// continuesAcrossNewline reports whether an operator at the start of a
// line still extends the expression on the previous line.
func continuesAcrossNewline(tokenType lexer.TokenType) bool {
	switch tokenType {
	case lexer.TokenDot, lexer.TokenAnd, lexer.TokenOr:
		return true
	}
	return false
}
