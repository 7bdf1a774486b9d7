package semantic

import (
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

// Names of the built-in functions and members. The evaluator dispatches
// on these for symbols of kind symtab.SymbolBuiltin.
const (
	BuiltinPrintln  = "println"
	BuiltinPrint    = "print"
	BuiltinToInt    = "toInt"
	BuiltinToDouble = "toDouble"
	BuiltinToFloat  = "toFloat"
	BuiltinToString = "toString"
	BuiltinSize     = "size"
	BuiltinIndices  = "indices"
	BuiltinLength   = "length"
	BuiltinUntil    = "until"
	BuiltinDownTo   = "downTo"
	BuiltinStep     = "step"
)

// newUniverse builds the outermost scope holding the println and print
// overloads. Each analyzer gets its own copy.
func newUniverse() *symtab.Scope {
	universe := symtab.NewScope(symtab.ScopeUniverse, nil)
	printable := []types.Type{types.Int, types.Double, types.Float, types.String, types.Boolean, types.Unit}

	universe.DefineFunction(builtinFunc(BuiltinPrintln))
	for _, t := range printable {
		universe.DefineFunction(builtinFunc(BuiltinPrintln, t))
	}
	for _, t := range printable {
		universe.DefineFunction(builtinFunc(BuiltinPrint, t))
	}
	return universe
}

func builtinFunc(name string, params ...types.Type) *symtab.Symbol {
	return &symtab.Symbol{
		Name:  name,
		Kind:  symtab.SymbolBuiltin,
		Type:  types.NewFunction(params, types.Unit),
		State: symtab.Resolved,
	}
}

func builtinMember(name string, ret types.Type) *symtab.Symbol {
	return &symtab.Symbol{
		Name:  name,
		Kind:  symtab.SymbolBuiltin,
		Type:  types.NewFunction(nil, ret),
		State: symtab.Resolved,
	}
}

func builtinProperty(name string, t types.Type) *symtab.Symbol {
	return &symtab.Symbol{Name: name, Kind: symtab.SymbolBuiltin, Type: t, State: symtab.Resolved}
}

// Member built-ins are shared by all receivers of a kind and never
// mutated.
var (
	memberToInt    = builtinMember(BuiltinToInt, types.Int)
	memberToDouble = builtinMember(BuiltinToDouble, types.Double)
	memberToFloat  = builtinMember(BuiltinToFloat, types.Float)
	memberToString = builtinMember(BuiltinToString, types.String)

	propSize    = builtinProperty(BuiltinSize, types.Int)
	propIndices = builtinProperty(BuiltinIndices, types.Range)
	propLength  = builtinProperty(BuiltinLength, types.Int)

	infixUntil  = &symtab.Symbol{Name: BuiltinUntil, Kind: symtab.SymbolBuiltin, Type: types.NewFunction([]types.Type{types.Int, types.Int}, types.Range), State: symtab.Resolved}
	infixDownTo = &symtab.Symbol{Name: BuiltinDownTo, Kind: symtab.SymbolBuiltin, Type: types.NewFunction([]types.Type{types.Int, types.Int}, types.Range), State: symtab.Resolved}
	infixStep   = &symtab.Symbol{Name: BuiltinStep, Kind: symtab.SymbolBuiltin, Type: types.NewFunction([]types.Type{types.Range, types.Int}, types.Range), State: symtab.Resolved}
)

// builtinMethod returns the no-argument member function name on a
// receiver of type recv, or nil.
func builtinMethod(recv types.Type, name string) *symtab.Symbol {
	switch types.Kind(recv) {
	case types.KindInt, types.KindDouble, types.KindFloat:
		switch name {
		case BuiltinToInt:
			return memberToInt
		case BuiltinToDouble:
			return memberToDouble
		case BuiltinToFloat:
			return memberToFloat
		case BuiltinToString:
			return memberToString
		}
	case types.KindBoolean, types.KindString:
		if name == BuiltinToString {
			return memberToString
		}
	}
	return nil
}

// builtinPropertyOf returns the read-only member property name on a
// receiver of type recv, or nil.
func builtinPropertyOf(recv types.Type, name string) *symtab.Symbol {
	switch types.Kind(recv) {
	case types.KindArray:
		switch name {
		case BuiltinSize:
			return propSize
		case BuiltinIndices:
			return propIndices
		}
	case types.KindString:
		if name == BuiltinLength {
			return propLength
		}
	}
	return nil
}

func infixBuiltin(name string) *symtab.Symbol {
	switch name {
	case BuiltinUntil:
		return infixUntil
	case BuiltinDownTo:
		return infixDownTo
	case BuiltinStep:
		return infixStep
	}
	return nil
}
