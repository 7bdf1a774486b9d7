// Package types implements the static type system of the Kotlin subset.
//
// Types are compared with Equals. Primitive types are singletons, arrays
// compare structurally by element type, and class types compare by
// identity: two local classes named A declared in different places are
// different types.
//
// There is no subtyping and no implicit numeric conversion, so
// AssignableTo is the same relation as Equals. Operators mix numeric
// kinds through Promote instead.
package types

import (
	"strings"

	"github.com/hassan/kotlinc/internal/lexer"
)

// Type is the interface that all types implement.
type Type interface {
	// String returns the Kotlin spelling of the type.
	String() string

	// Equals reports whether both types are identical.
	Equals(other Type) bool

	// AssignableTo reports whether a value of this type may be stored
	// in a location of type other.
	AssignableTo(other Type) bool

	kind() TypeKind
}

// TypeKind is a coarse classification used for quick checks.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindUnit
	KindInt
	KindDouble
	KindFloat
	KindBoolean
	KindString
	KindArray
	KindRange
	KindClass
	KindFunction
)

// Kind returns the classification of t. A nil type is invalid.
func Kind(t Type) TypeKind {
	if t == nil {
		return KindInvalid
	}
	return t.kind()
}

// InvalidType stands for the type of an expression that failed to check.
type InvalidType struct{}

func (i *InvalidType) String() string         { return "<invalid>" }
func (i *InvalidType) Equals(Type) bool       { return false }
func (i *InvalidType) AssignableTo(Type) bool { return false }
func (i *InvalidType) kind() TypeKind         { return KindInvalid }

// UnitType is the type of statements and of functions without a result.
type UnitType struct{}

func (u *UnitType) String() string               { return "Unit" }
func (u *UnitType) Equals(other Type) bool       { _, ok := other.(*UnitType); return ok }
func (u *UnitType) AssignableTo(other Type) bool { return u.Equals(other) }
func (u *UnitType) kind() TypeKind               { return KindUnit }

// IntType is the 32-bit signed integer.
type IntType struct{}

func (i *IntType) String() string               { return "Int" }
func (i *IntType) Equals(other Type) bool       { _, ok := other.(*IntType); return ok }
func (i *IntType) AssignableTo(other Type) bool { return i.Equals(other) }
func (i *IntType) kind() TypeKind               { return KindInt }

// DoubleType is the 64-bit IEEE 754 float.
type DoubleType struct{}

func (d *DoubleType) String() string               { return "Double" }
func (d *DoubleType) Equals(other Type) bool       { _, ok := other.(*DoubleType); return ok }
func (d *DoubleType) AssignableTo(other Type) bool { return d.Equals(other) }
func (d *DoubleType) kind() TypeKind               { return KindDouble }

// FloatType is the 32-bit IEEE 754 float.
type FloatType struct{}

func (f *FloatType) String() string               { return "Float" }
func (f *FloatType) Equals(other Type) bool       { _, ok := other.(*FloatType); return ok }
func (f *FloatType) AssignableTo(other Type) bool { return f.Equals(other) }
func (f *FloatType) kind() TypeKind               { return KindFloat }

type BooleanType struct{}

func (b *BooleanType) String() string               { return "Boolean" }
func (b *BooleanType) Equals(other Type) bool       { _, ok := other.(*BooleanType); return ok }
func (b *BooleanType) AssignableTo(other Type) bool { return b.Equals(other) }
func (b *BooleanType) kind() TypeKind               { return KindBoolean }

type StringType struct{}

func (s *StringType) String() string               { return "String" }
func (s *StringType) Equals(other Type) bool       { _, ok := other.(*StringType); return ok }
func (s *StringType) AssignableTo(other Type) bool { return s.Equals(other) }
func (s *StringType) kind() TypeKind               { return KindString }

// RangeType is IntRange and the progressions built by until, downTo and
// step.
type RangeType struct{}

func (r *RangeType) String() string               { return "IntRange" }
func (r *RangeType) Equals(other Type) bool       { _, ok := other.(*RangeType); return ok }
func (r *RangeType) AssignableTo(other Type) bool { return r.Equals(other) }
func (r *RangeType) kind() TypeKind               { return KindRange }

// ArrayType is Array<Elem>.
type ArrayType struct {
	Elem Type
}

func (a *ArrayType) String() string {
	return "Array<" + a.Elem.String() + ">"
}

func (a *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && a.Elem.Equals(o.Elem)
}

func (a *ArrayType) AssignableTo(other Type) bool { return a.Equals(other) }
func (a *ArrayType) kind() TypeKind               { return KindArray }

// ClassType is a user-declared class. Every declaration creates its own
// ClassType value.
type ClassType struct {
	Name string

	// Pos is the position of the class declaration.
	Pos lexer.Position

	// Local is set for classes declared inside a function body.
	Local bool
}

func (c *ClassType) String() string { return c.Name }

func (c *ClassType) Equals(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && o == c
}

func (c *ClassType) AssignableTo(other Type) bool { return c.Equals(other) }
func (c *ClassType) kind() TypeKind               { return KindClass }

// FunctionType is the signature of a function, method or built-in.
type FunctionType struct {
	Params []Type
	Return Type
}

func (f *FunctionType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return "(" + strings.Join(params, ", ") + ") -> " + f.Return.String()
}

func (f *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || !f.Return.Equals(o.Return) {
		return false
	}
	return SameParams(f.Params, o.Params)
}

func (f *FunctionType) AssignableTo(other Type) bool { return f.Equals(other) }
func (f *FunctionType) kind() TypeKind               { return KindFunction }

// Predefined type instances.
var (
	Invalid = &InvalidType{}
	Unit    = &UnitType{}
	Int     = &IntType{}
	Double  = &DoubleType{}
	Float   = &FloatType{}
	Boolean = &BooleanType{}
	String  = &StringType{}
	Range   = &RangeType{}
)

// builtinNames maps the non-generic type names usable in annotations.
var builtinNames = map[string]Type{
	"Int":      Int,
	"Double":   Double,
	"Float":    Float,
	"Boolean":  Boolean,
	"String":   String,
	"Unit":     Unit,
	"IntRange": Range,
}

// Builtin returns the predefined type spelled name, or nil.
func Builtin(name string) Type {
	return builtinNames[name]
}

// NewArray creates an array type.
func NewArray(elem Type) *ArrayType {
	return &ArrayType{Elem: elem}
}

// NewFunction creates a function type.
func NewFunction(params []Type, ret Type) *FunctionType {
	return &FunctionType{Params: params, Return: ret}
}

// Helper functions

// IsNumeric reports whether t is Int, Double or Float.
func IsNumeric(t Type) bool {
	switch Kind(t) {
	case KindInt, KindDouble, KindFloat:
		return true
	}
	return false
}

// IsValid reports whether t is a usable type.
func IsValid(t Type) bool {
	return Kind(t) != KindInvalid
}

// numericRank orders the numeric kinds by the widening Kotlin applies in
// mixed arithmetic.
func numericRank(t Type) int {
	switch Kind(t) {
	case KindInt:
		return 1
	case KindFloat:
		return 2
	case KindDouble:
		return 3
	}
	return 0
}

// Promote returns the result type of an arithmetic operator applied to a
// and b: Int∘Int is Int, Int∘Float is Float, anything with a Double is
// Double. It returns Invalid when either operand is not numeric.
func Promote(a, b Type) Type {
	ra, rb := numericRank(a), numericRank(b)
	if ra == 0 || rb == 0 {
		return Invalid
	}
	if ra >= rb {
		return a
	}
	return b
}

// Ordered reports whether a < b type-checks: two numeric operands of any
// kind, or two strings.
func Ordered(a, b Type) bool {
	if IsNumeric(a) && IsNumeric(b) {
		return true
	}
	return Kind(a) == KindString && Kind(b) == KindString
}

// SameParams reports whether two parameter lists are identical.
func SameParams(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Printable reports whether println and print accept a value of type t.
func Printable(t Type) bool {
	switch Kind(t) {
	case KindInt, KindDouble, KindFloat, KindBoolean, KindString, KindUnit:
		return true
	}
	return false
}
