package parser

import (
	"errors"
	"fmt"

	"github.com/hassan/kotlinc/internal/lexer"
)

// ErrSyntax is matched by every *SyntaxError through errors.Is.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first grammar violation in a token stream.
//
// Expected and Found are set when a specific token was required; Msg
// carries the free-form description otherwise, or context for the
// expectation.
type SyntaxError struct {
	Pos      lexer.Position
	Expected string
	Found    string
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Message())
}

// Message is the error text without the position prefix.
func (e *SyntaxError) Message() string {
	if e.Expected == "" {
		return e.Msg
	}
	msg := "expected " + e.Expected + ", found " + e.Found
	if e.Msg != "" {
		msg = e.Msg + ": " + msg
	}
	return msg
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// describe renders a token for the Found field of a SyntaxError.
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of file"
	case lexer.TokenString, lexer.TokenTemplate:
		return "string literal"
	}
	return "'" + tok.Lexeme + "'"
}

// bailout carries the first error up to the entry point through panic.
// It holds a *SyntaxError or a *lexer.LexError from a template part.
type bailout struct {
	err error
}
