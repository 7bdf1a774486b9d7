// Package symtab implements scopes and symbols for name resolution.
//
// Scopes form a tree through parent pointers. Variables, fields and
// classes live in one namespace per scope; functions and methods live in
// a separate overload set so that several functions may share a name as
// long as their parameter types differ.
package symtab

import (
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
)

// SymbolKind represents the kind of symbol.
type SymbolKind int

const (
	// SymbolVariable is a val or var: top-level property, local or loop
	// variable.
	SymbolVariable SymbolKind = iota

	// SymbolParameter is a function parameter. Parameters are read-only.
	SymbolParameter

	// SymbolFunction is a top-level or local function.
	SymbolFunction

	// SymbolClass is a class name; calling it constructs an instance.
	SymbolClass

	// SymbolField is a class property.
	SymbolField

	// SymbolMethod is a function declared inside a class.
	SymbolMethod

	// SymbolBuiltin is a predefined function such as println.
	SymbolBuiltin
)

func (sk SymbolKind) String() string {
	switch sk {
	case SymbolVariable:
		return "variable"
	case SymbolParameter:
		return "parameter"
	case SymbolFunction:
		return "function"
	case SymbolClass:
		return "class"
	case SymbolField:
		return "property"
	case SymbolMethod:
		return "method"
	case SymbolBuiltin:
		return "built-in"
	default:
		return "unknown"
	}
}

// ResolveState tracks lazy type resolution of a declaration.
type ResolveState int

const (
	Unresolved ResolveState = iota
	Resolving
	Resolved
)

// Symbol represents a named entity in the program.
type Symbol struct {
	Name string
	Kind SymbolKind

	// Type is the variable type, or *types.FunctionType for functions,
	// methods and built-ins, or *types.ClassType for classes. It is nil
	// until the declaration is resolved.
	Type types.Type

	// Pos is where this symbol was declared.
	Pos lexer.Position

	// Scope is the scope where this symbol was declared.
	Scope *Scope

	// Mutable is set for var declarations.
	Mutable bool

	// Decl is the declaring node: *ast.PropertyDecl, *ast.FunDecl,
	// *ast.ClassDecl, *ast.Param or *ast.ForStmt.
	Decl ast.Node

	// Owner is the class declaring a field or method.
	Owner *types.ClassType

	// Members is the member scope of a class symbol.
	Members *Scope

	// Index is the position of a field in its class, or of a parameter
	// in its function.
	Index int

	// State is the lazy resolution state of Type.
	State ResolveState

	// Used is set once the symbol has been referenced.
	Used bool
}

// String returns "kind name: type at position".
func (s *Symbol) String() string {
	typ := "?"
	if s.Type != nil {
		typ = s.Type.String()
	}
	return s.Kind.String() + " " + s.Name + ": " + typ + " at " + s.Pos.String()
}

// IsGlobal reports whether the symbol is declared at the top level.
func (s *Symbol) IsGlobal() bool {
	return s.Scope != nil && s.Scope.IsGlobal()
}

// IsCallable reports whether the symbol names something that can be
// invoked with an argument list.
func (s *Symbol) IsCallable() bool {
	switch s.Kind {
	case SymbolFunction, SymbolMethod, SymbolBuiltin, SymbolClass:
		return true
	}
	return false
}

// CanAssign reports whether the symbol may appear on the left of an
// assignment.
func (s *Symbol) CanAssign() bool {
	switch s.Kind {
	case SymbolVariable, SymbolField:
		return s.Mutable
	default:
		return false
	}
}

// Signature returns the function type of a callable symbol, or nil.
func (s *Symbol) Signature() *types.FunctionType {
	fn, _ := s.Type.(*types.FunctionType)
	return fn
}

// MarkUsed marks this symbol as referenced.
func (s *Symbol) MarkUsed() {
	s.Used = true
}
