package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
)

// The operator helpers are shared with the constant folder, so folded
// and evaluated programs compute the same values. Operands have already
// been type checked; a mismatch is reported as an error, never a panic.

// LiteralValue returns the runtime value of a literal.
func LiteralValue(lit *ast.LiteralExpr) Value {
	switch lit.Kind {
	case ast.LiteralInt:
		return IntValue{Val: lit.Value.(int32)}
	case ast.LiteralDouble:
		return DoubleValue{Val: lit.Value.(float64)}
	case ast.LiteralFloat:
		return FloatValue{Val: lit.Value.(float32)}
	case ast.LiteralBool:
		return BoolValue{Val: lit.Value.(bool)}
	default:
		return StringValue{Val: lit.Value.(string)}
	}
}

// numeric rank: Int < Float < Double.
func rank(v Value) int {
	switch v.(type) {
	case IntValue:
		return 1
	case FloatValue:
		return 2
	case DoubleValue:
		return 3
	}
	return 0
}

func asFloat64(v Value) float64 {
	switch n := v.(type) {
	case IntValue:
		return float64(n.Val)
	case FloatValue:
		return float64(n.Val)
	case DoubleValue:
		return n.Val
	}
	return 0
}

func asFloat32(v Value) float32 {
	switch n := v.(type) {
	case IntValue:
		return float32(n.Val)
	case FloatValue:
		return n.Val
	case DoubleValue:
		return float32(n.Val)
	}
	return 0
}

// Arithmetic applies + - * / % to two values. Mixed numeric operands
// are widened to the larger kind. A String left operand concatenates.
func Arithmetic(op lexer.TokenType, left, right Value) (Value, error) {
	if s, ok := left.(StringValue); ok && op == lexer.TokenPlus {
		return StringValue{Val: s.Val + Format(right)}, nil
	}

	lr, rr := rank(left), rank(right)
	if lr == 0 || rr == 0 {
		return nil, fmt.Errorf("operator %s is not defined for %s and %s", op, left.Kind(), right.Kind())
	}

	switch max(lr, rr) {
	case 1:
		return intArithmetic(op, left.(IntValue).Val, right.(IntValue).Val)
	case 2:
		a, b := asFloat32(left), asFloat32(right)
		var r float32
		switch op {
		case lexer.TokenPlus:
			r = a + b
		case lexer.TokenMinus:
			r = a - b
		case lexer.TokenStar:
			r = a * b
		case lexer.TokenSlash:
			r = a / b
		case lexer.TokenPercent:
			r = float32(math.Mod(float64(a), float64(b)))
		default:
			return nil, fmt.Errorf("unknown arithmetic operator %s", op)
		}
		return FloatValue{Val: r}, nil
	default:
		a, b := asFloat64(left), asFloat64(right)
		var r float64
		switch op {
		case lexer.TokenPlus:
			r = a + b
		case lexer.TokenMinus:
			r = a - b
		case lexer.TokenStar:
			r = a * b
		case lexer.TokenSlash:
			r = a / b
		case lexer.TokenPercent:
			r = math.Mod(a, b)
		default:
			return nil, fmt.Errorf("unknown arithmetic operator %s", op)
		}
		return DoubleValue{Val: r}, nil
	}
}

// intArithmetic wraps on overflow, like the JVM.
func intArithmetic(op lexer.TokenType, a, b int32) (Value, error) {
	switch op {
	case lexer.TokenPlus:
		return IntValue{Val: a + b}, nil
	case lexer.TokenMinus:
		return IntValue{Val: a - b}, nil
	case lexer.TokenStar:
		return IntValue{Val: a * b}, nil
	case lexer.TokenSlash:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return IntValue{Val: a / b}, nil
	case lexer.TokenPercent:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return IntValue{Val: a % b}, nil
	}
	return nil, fmt.Errorf("unknown arithmetic operator %s", op)
}

// Compare applies < <= > >= to two numbers or two strings.
func Compare(op lexer.TokenType, left, right Value) (Value, error) {
	var c int
	if ls, ok := left.(StringValue); ok {
		rs, ok := right.(StringValue)
		if !ok {
			return nil, fmt.Errorf("cannot compare String with %s", right.Kind())
		}
		c = strings.Compare(ls.Val, rs.Val)
	} else {
		lr, rr := rank(left), rank(right)
		if lr == 0 || rr == 0 {
			return nil, fmt.Errorf("cannot compare %s with %s", left.Kind(), right.Kind())
		}
		if lr == 1 && rr == 1 {
			a, b := left.(IntValue).Val, right.(IntValue).Val
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
		} else {
			// NaN compares false with everything.
			a, b := asFloat64(left), asFloat64(right)
			if max(lr, rr) == 2 {
				a, b = float64(asFloat32(left)), float64(asFloat32(right))
			}
			if math.IsNaN(a) || math.IsNaN(b) {
				return BoolValue{Val: false}, nil
			}
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			}
		}
	}

	switch op {
	case lexer.TokenLess:
		return BoolValue{Val: c < 0}, nil
	case lexer.TokenLessEqual:
		return BoolValue{Val: c <= 0}, nil
	case lexer.TokenGreater:
		return BoolValue{Val: c > 0}, nil
	case lexer.TokenGreaterEqual:
		return BoolValue{Val: c >= 0}, nil
	}
	return nil, fmt.Errorf("unknown comparison operator %s", op)
}

// Equal reports == for two values of the same static type. Scalars and
// strings compare by content, objects and arrays by identity.
func Equal(left, right Value) bool {
	switch l := left.(type) {
	case *ObjectValue:
		r, ok := right.(*ObjectValue)
		return ok && l == r
	case *ArrayValue:
		r, ok := right.(*ArrayValue)
		return ok && l == r
	}
	return left == right
}

// Negate applies unary minus.
func Negate(v Value) (Value, error) {
	switch n := v.(type) {
	case IntValue:
		return IntValue{Val: -n.Val}, nil
	case DoubleValue:
		return DoubleValue{Val: -n.Val}, nil
	case FloatValue:
		return FloatValue{Val: -n.Val}, nil
	}
	return nil, fmt.Errorf("unary minus is not defined for %s", v.Kind())
}

// Not applies logical negation.
func Not(v Value) (Value, error) {
	b, ok := v.(BoolValue)
	if !ok {
		return nil, fmt.Errorf("'!' is not defined for %s", v.Kind())
	}
	return BoolValue{Val: !b.Val}, nil
}

// Increment adds delta (1 or -1) in the value's own kind.
func Increment(v Value, delta int32) (Value, error) {
	switch n := v.(type) {
	case IntValue:
		return IntValue{Val: n.Val + delta}, nil
	case DoubleValue:
		return DoubleValue{Val: n.Val + float64(delta)}, nil
	case FloatValue:
		return FloatValue{Val: n.Val + float32(delta)}, nil
	}
	return nil, fmt.Errorf("cannot increment %s", v.Kind())
}

// ToInt truncates toward zero, saturating at the Int bounds. NaN is 0.
func ToInt(v Value) IntValue {
	switch n := v.(type) {
	case IntValue:
		return n
	case FloatValue, DoubleValue:
		f := asFloat64(n)
		switch {
		case math.IsNaN(f):
			return IntValue{}
		case f >= math.MaxInt32:
			return IntValue{Val: math.MaxInt32}
		case f <= math.MinInt32:
			return IntValue{Val: math.MinInt32}
		}
		return IntValue{Val: int32(math.Trunc(f))}
	}
	return IntValue{}
}

func ToDouble(v Value) DoubleValue { return DoubleValue{Val: asFloat64(v)} }
func ToFloat(v Value) FloatValue   { return FloatValue{Val: asFloat32(v)} }

// Progressions

// Until returns start until end, which excludes end.
func Until(start, end int32) RangeValue {
	if end == math.MinInt32 {
		return RangeValue{Start: 1, End: 0, Step: 1}
	}
	return RangeValue{Start: start, End: end - 1, Step: 1}
}

// DownTo returns the descending progression from start to end.
func DownTo(start, end int32) RangeValue {
	return RangeValue{Start: start, End: end, Step: -1}
}

// Step returns r with a step of n in r's direction. n must be positive.
func Step(r RangeValue, n int32) (RangeValue, error) {
	if n <= 0 {
		return RangeValue{}, fmt.Errorf("Step must be positive, was: %d.", n)
	}
	step := n
	if r.Step < 0 {
		step = -n
	}
	return RangeValue{Start: r.Start, End: lastElement(r.Start, r.End, step), Step: step}, nil
}

// lastElement returns the last member of start..end by step, as the
// Kotlin standard library computes it.
func lastElement(start, end, step int32) int32 {
	a, b, s := int64(start), int64(end), int64(step)
	if s > 0 {
		if a >= b {
			return end
		}
		return int32(b - mod(b-a, s))
	}
	if a <= b {
		return end
	}
	return int32(b + mod(a-b, -s))
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
