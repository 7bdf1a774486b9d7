package semantic

import (
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

// Info holds the results of analysis in side tables keyed by node.
type Info struct {
	// Types records the static type of every checked expression.
	Types map[ast.Expr]types.Type

	// Refs maps identifiers, calls, member accesses, infix calls and
	// declarations (including parameters and loop headers) to their
	// symbols.
	Refs map[ast.Node]*symtab.Symbol

	// Classes maps each class type to the symbol holding its members.
	Classes map[*types.ClassType]*symtab.Symbol

	Warnings []Diagnostic

	// Main is the top-level main() function, or nil.
	Main *symtab.Symbol

	// Globals lists the top-level properties in declaration order.
	Globals []*symtab.Symbol

	Universe *symtab.Scope
	Global   *symtab.Scope
}

func newInfo() *Info {
	return &Info{
		Types:   make(map[ast.Expr]types.Type),
		Refs:    make(map[ast.Node]*symtab.Symbol),
		Classes: make(map[*types.ClassType]*symtab.Symbol),
	}
}

// TypeOf returns the static type of expr, or types.Invalid if expr was
// never checked.
func (info *Info) TypeOf(expr ast.Expr) types.Type {
	if t, ok := info.Types[expr]; ok {
		return t
	}
	return types.Invalid
}

// SymbolOf returns the symbol node resolves to, or nil.
func (info *Info) SymbolOf(node ast.Node) *symtab.Symbol {
	return info.Refs[node]
}

// Function returns the top-level function called name that takes no
// parameters, or nil.
func (info *Info) Function(name string) *symtab.Symbol {
	if info.Global == nil {
		return nil
	}
	for _, fn := range info.Global.Functions[name] {
		if sig := fn.Signature(); sig != nil && len(sig.Params) == 0 {
			return fn
		}
	}
	return nil
}

// Fields returns the property symbols of class in declaration order.
func (info *Info) Fields(class *types.ClassType) []*symtab.Symbol {
	sym := info.Classes[class]
	if sym == nil {
		return nil
	}
	var fields []*symtab.Symbol
	for _, m := range sym.Members.LocalSymbols() {
		if m.Kind == symtab.SymbolField {
			fields = append(fields, m)
		}
	}
	return fields
}
