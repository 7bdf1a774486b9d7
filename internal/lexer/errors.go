package lexer

import "errors"

// ErrLex is matched by errors.Is for every *LexError.
var ErrLex = errors.New("lex error")

// LexError reports a malformed token.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return e.Pos.String() + ": lex error: " + e.Msg
}

func (e *LexError) Unwrap() error { return ErrLex }
