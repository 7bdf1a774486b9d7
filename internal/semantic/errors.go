package semantic

import (
	"errors"
	"fmt"

	"github.com/hassan/kotlinc/internal/lexer"
)

// ErrSemantic is matched by every *SemanticError through errors.Is.
var ErrSemantic = errors.New("semantic error")

// SemanticError reports the first static error found in a program.
type SemanticError struct {
	Pos lexer.Position
	Msg string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s: semantic error: %s", e.Pos, e.Msg)
}

func (e *SemanticError) Unwrap() error { return ErrSemantic }

// Diagnostic is a warning that does not stop analysis.
type Diagnostic struct {
	Pos lexer.Position
	Msg string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: warning: %s", d.Pos, d.Msg)
}

// ShadowingPolicy selects how a local declaration hiding an outer local
// or parameter is reported.
type ShadowingPolicy int

const (
	ShadowWarn ShadowingPolicy = iota
	ShadowError
	ShadowIgnore
)

// ParseShadowingPolicy maps the configuration spelling to a policy.
func ParseShadowingPolicy(s string) (ShadowingPolicy, error) {
	switch s {
	case "", "warn":
		return ShadowWarn, nil
	case "error":
		return ShadowError, nil
	case "ignore":
		return ShadowIgnore, nil
	}
	return ShadowWarn, fmt.Errorf("unknown shadowing policy %q (want warn, error or ignore)", s)
}

func (p ShadowingPolicy) String() string {
	switch p {
	case ShadowError:
		return "error"
	case ShadowIgnore:
		return "ignore"
	default:
		return "warn"
	}
}

// bailout carries the first error up to Analyze through panic.
type bailout struct {
	err *SemanticError
}
