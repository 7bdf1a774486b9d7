package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/hassan/kotlinc/internal/lexer"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		bits int
		want string
	}{
		{1, 64, "1.0"},
		{100, 64, "100.0"},
		{3.5, 64, "3.5"},
		{math.Float64frombits(0x3FD3333333333334), 64, "0.30000000000000004"},
		{1e7, 64, "1.0E7"},
		{9999999, 64, "9999999.0"},
		{1.25e-4, 64, "1.25E-4"},
		{0.001, 64, "0.001"},
		{123456789.5, 64, "1.234567895E8"},
		{-2.5, 64, "-2.5"},
		{0, 64, "0.0"},
		{math.Copysign(0, -1), 64, "-0.0"},
		{math.NaN(), 64, "NaN"},
		{math.Inf(1), 64, "Infinity"},
		{math.Inf(-1), 64, "-Infinity"},
		{float64(float32(1) / 3), 32, "0.33333334"},
		{float64(float32(0.1)), 32, "0.1"},
		{float64(float32(1e10)), 32, "1.0E10"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatFloat(tt.in, tt.bits); got != tt.want {
				t.Errorf("FormatFloat(%v, %d) = %q, want %q", tt.in, tt.bits, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{UnitValue{}, "kotlin.Unit"},
		{BoolValue{Val: true}, "true"},
		{IntValue{Val: -42}, "-42"},
		{DoubleValue{Val: 2}, "2.0"},
		{FloatValue{Val: 0.5}, "0.5"},
		{StringValue{Val: "hi"}, "hi"},
		{RangeValue{Start: 1, End: 3, Step: 1}, "1..3"},
		{RangeValue{Start: 5, End: 1, Step: -2}, "5 downTo 1 step 2"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name        string
		op          lexer.TokenType
		left, right Value
		want        Value
	}{
		{"int wraps", lexer.TokenPlus, IntValue{Val: math.MaxInt32}, IntValue{Val: 1}, IntValue{Val: math.MinInt32}},
		{"int multiply wraps", lexer.TokenStar, IntValue{Val: 65536}, IntValue{Val: 65536}, IntValue{Val: 0}},
		{"int division truncates", lexer.TokenSlash, IntValue{Val: -7}, IntValue{Val: 2}, IntValue{Val: -3}},
		{"remainder takes dividend sign", lexer.TokenPercent, IntValue{Val: -7}, IntValue{Val: 3}, IntValue{Val: -1}},
		{"min int divided by -1", lexer.TokenSlash, IntValue{Val: math.MinInt32}, IntValue{Val: -1}, IntValue{Val: math.MinInt32}},
		{"int and double", lexer.TokenSlash, IntValue{Val: 1}, DoubleValue{Val: 4}, DoubleValue{Val: 0.25}},
		{"int and float", lexer.TokenStar, IntValue{Val: 3}, FloatValue{Val: 0.5}, FloatValue{Val: 1.5}},
		{"float and double", lexer.TokenPlus, FloatValue{Val: 0.5}, DoubleValue{Val: 0.25}, DoubleValue{Val: 0.75}},
		{"float rounds to 32 bits", lexer.TokenPlus, FloatValue{Val: 0.1}, FloatValue{Val: 0.2}, FloatValue{Val: float32(0.3)}},
		{"double remainder", lexer.TokenPercent, DoubleValue{Val: -5.5}, DoubleValue{Val: 2}, DoubleValue{Val: -1.5}},
		{"double division by zero", lexer.TokenSlash, DoubleValue{Val: 1}, DoubleValue{Val: 0}, DoubleValue{Val: math.Inf(1)}},
		{"string concatenation", lexer.TokenPlus, StringValue{Val: "a"}, DoubleValue{Val: 1}, StringValue{Val: "a1.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arithmetic(tt.op, tt.left, tt.right)
			if err != nil {
				t.Fatalf("Arithmetic() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Arithmetic(%v, %#v, %#v) = %#v, want %#v", tt.op, tt.left, tt.right, got, tt.want)
			}
		})
	}

	for _, op := range []lexer.TokenType{lexer.TokenSlash, lexer.TokenPercent} {
		if _, err := Arithmetic(op, IntValue{Val: 1}, IntValue{Val: 0}); !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("%v by zero: got %v, want ErrDivisionByZero", op, err)
		}
	}
	if _, err := Arithmetic(lexer.TokenMinus, BoolValue{}, IntValue{}); err == nil {
		t.Error("Boolean arithmetic should fail")
	}
}

func TestCompareAndEqual(t *testing.T) {
	lt := func(a, b Value) bool {
		v, err := Compare(lexer.TokenLess, a, b)
		if err != nil {
			t.Fatalf("Compare(%#v, %#v): %v", a, b, err)
		}
		return v.(BoolValue).Val
	}
	if !lt(IntValue{Val: 1}, DoubleValue{Val: 1.5}) {
		t.Error("1 < 1.5")
	}
	if lt(DoubleValue{Val: math.NaN()}, DoubleValue{Val: 1}) {
		t.Error("NaN < 1 should be false")
	}
	if !lt(StringValue{Val: "abc"}, StringValue{Val: "abd"}) {
		t.Error(`"abc" < "abd"`)
	}

	a := &ArrayValue{Elements: []Value{IntValue{Val: 1}}}
	b := &ArrayValue{Elements: []Value{IntValue{Val: 1}}}
	switch {
	case !Equal(a, a):
		t.Error("an array equals itself")
	case Equal(a, b):
		t.Error("distinct arrays with equal contents are not equal")
	case !Equal(StringValue{Val: "x"}, StringValue{Val: "x"}):
		t.Error("strings compare by content")
	case Equal(DoubleValue{Val: math.NaN()}, DoubleValue{Val: math.NaN()}):
		t.Error("NaN != NaN")
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   Value
		want int32
	}{
		{DoubleValue{Val: 2.9}, 2},
		{DoubleValue{Val: -2.9}, -2},
		{FloatValue{Val: 7.5}, 7},
		{DoubleValue{Val: 1e20}, math.MaxInt32},
		{DoubleValue{Val: -1e20}, math.MinInt32},
		{DoubleValue{Val: math.NaN()}, 0},
		{IntValue{Val: 5}, 5},
	}
	for _, tt := range tests {
		if got := ToInt(tt.in); got.Val != tt.want {
			t.Errorf("ToInt(%#v) = %d, want %d", tt.in, got.Val, tt.want)
		}
	}
	if got := ToFloat(DoubleValue{Val: 0.1}); got.Val != float32(0.1) {
		t.Errorf("ToFloat(0.1) = %v", got.Val)
	}
}

func collect(r RangeValue) []int32 {
	var xs []int32
	r.Each(func(x int32) bool {
		xs = append(xs, x)
		return true
	})
	return xs
}

func TestProgressions(t *testing.T) {
	step := func(r RangeValue, n int32) RangeValue {
		s, err := Step(r, n)
		if err != nil {
			t.Fatalf("Step(%v, %d): %v", r, n, err)
		}
		return s
	}

	tests := []struct {
		name string
		r    RangeValue
		want []int32
	}{
		{"inclusive", RangeValue{Start: 0, End: 3, Step: 1}, []int32{0, 1, 2, 3}},
		{"empty", RangeValue{Start: 3, End: 1, Step: 1}, nil},
		{"until", Until(0, 3), []int32{0, 1, 2}},
		{"until min int", Until(0, math.MinInt32), nil},
		{"downTo", DownTo(3, 1), []int32{3, 2, 1}},
		{"step", step(RangeValue{Start: 1, End: 10, Step: 1}, 4), []int32{1, 5, 9}},
		{"downTo step", step(DownTo(10, 1), 3), []int32{10, 7, 4, 1}},
		{"max int end", RangeValue{Start: math.MaxInt32 - 1, End: math.MaxInt32, Step: 1}, []int32{math.MaxInt32 - 1, math.MaxInt32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.r)
			if len(got) != len(tt.want) {
				t.Fatalf("elements = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("elements = %v, want %v", got, tt.want)
				}
			}
			for _, x := range tt.want {
				if !tt.r.Contains(x) {
					t.Errorf("Contains(%d) = false", x)
				}
			}
		})
	}

	if r := step(RangeValue{Start: 1, End: 10, Step: 1}, 4); r.Contains(4) || r.End != 9 {
		t.Errorf("1..10 step 4 = %v", r)
	}
	if _, err := Step(RangeValue{Start: 0, End: 1, Step: 1}, -1); err == nil {
		t.Error("negative step should fail")
	}
}
