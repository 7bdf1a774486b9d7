package interp

import (
	"fmt"

	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindDouble
	KindFloat
	KindString
	KindRange
	KindArray
	KindObject

	// Functions and classes are bound in environments but are never
	// program values.
	KindFunction
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindRange:
		return "IntProgression"
	case KindArray:
		return "Array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

// Scalars are copied on assignment.

type UnitValue struct{}

func (UnitValue) Kind() Kind { return KindUnit }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntValue struct {
	Val int32
}

func (v IntValue) Kind() Kind { return KindInt }

type DoubleValue struct {
	Val float64
}

func (v DoubleValue) Kind() Kind { return KindDouble }

type FloatValue struct {
	Val float32
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// RangeValue is an arithmetic progression from Start to End inclusive.
// Step is never zero; a negative Step counts down. End is always a
// member of the progression unless it is empty.
type RangeValue struct {
	Start, End, Step int32
}

func (v RangeValue) Kind() Kind { return KindRange }

// Empty reports whether the progression has no elements.
func (v RangeValue) Empty() bool {
	if v.Step > 0 {
		return v.Start > v.End
	}
	return v.Start < v.End
}

// Contains reports whether x is one of the progression's elements.
func (v RangeValue) Contains(x int32) bool {
	if v.Empty() {
		return false
	}
	lo, hi := v.Start, v.End
	if v.Step < 0 {
		lo, hi = hi, lo
	}
	if x < lo || x > hi {
		return false
	}
	return (int64(x)-int64(v.Start))%int64(v.Step) == 0
}

// Each calls fn for every element in order until fn returns false.
func (v RangeValue) Each(fn func(int32) bool) {
	if v.Empty() {
		return
	}
	for x := int64(v.Start); ; x += int64(v.Step) {
		if !fn(int32(x)) || int32(x) == v.End {
			return
		}
	}
}

// References share identity between all bindings that hold them.

type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// ObjectValue is a class instance. Class is fixed at construction, so
// an instance keeps its behaviour when a later declaration shadows the
// class name.
type ObjectValue struct {
	Class  *Class
	Fields []Value
}

func (v *ObjectValue) Kind() Kind { return KindObject }

// Class is the runtime form of a class declaration. A local class
// declared in a loop yields a new Class per iteration, each closing
// over its own environment.
type Class struct {
	Symbol  *symtab.Symbol
	Type    *types.ClassType
	Decl    *ast.ClassDecl
	Closure *Env
}

func (c *Class) Kind() Kind { return KindClass }

// Function is a function declaration closed over its environment.
type Function struct {
	Symbol  *symtab.Symbol
	Decl    *ast.FunDecl
	Closure *Env
}

func (f *Function) Kind() Kind { return KindFunction }
