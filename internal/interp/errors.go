package interp

import (
	"errors"
	"fmt"

	"github.com/hassan/kotlinc/internal/lexer"
)

// ErrRuntime is matched by every *RuntimeError through errors.Is.
var ErrRuntime = errors.New("runtime error")

// ErrDivisionByZero is returned by the arithmetic helpers for integer
// division or remainder by zero.
var ErrDivisionByZero = errors.New("/ by zero")

// RuntimeError aborts evaluation.
type RuntimeError struct {
	Pos lexer.Position
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: runtime error: %s", e.Pos, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return ErrRuntime }

func runtimeErrorf(pos lexer.Position, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Control flow travels up the statement visitors as errors.

type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

type returnSignal struct {
	value Value
}

func (r returnSignal) Error() string { return "return" }
