package symtab

import (
	"fmt"
	"strings"

	"github.com/hassan/kotlinc/internal/semantic/types"
)

// ScopeKind represents the kind of scope.
type ScopeKind int

const (
	// ScopeUniverse holds the built-in functions.
	ScopeUniverse ScopeKind = iota

	// ScopeGlobal is the top level of a program.
	ScopeGlobal

	// ScopeFunction holds the parameters of a function.
	ScopeFunction

	// ScopeBlock is a { ... } block.
	ScopeBlock

	// ScopeLoop is the body of a loop; break and continue are allowed
	// below it.
	ScopeLoop

	// ScopeClass holds the members of a class.
	ScopeClass
)

func (sk ScopeKind) String() string {
	switch sk {
	case ScopeUniverse:
		return "universe"
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	case ScopeClass:
		return "class"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope

	// Symbols maps variable, field and class names declared here.
	Symbols map[string]*Symbol

	// Functions maps a name to its overloads declared here.
	Functions map[string][]*Symbol

	Children []*Scope

	// Function is the enclosing function or method symbol, or nil at
	// the top level.
	Function *Symbol

	// Class is set on class scopes.
	Class *types.ClassType

	Depth int

	// order keeps declarations in source order.
	order []*Symbol
}

// NewScope creates a scope nested in parent.
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	scope := &Scope{
		Kind:      kind,
		Parent:    parent,
		Symbols:   make(map[string]*Symbol),
		Functions: make(map[string][]*Symbol),
	}
	if parent != nil {
		scope.Depth = parent.Depth + 1
		parent.Children = append(parent.Children, scope)
		if kind != ScopeClass {
			scope.Function = parent.Function
		}
	}
	return scope
}

// RedeclarationError reports a name declared twice in one scope.
type RedeclarationError struct {
	Symbol   *Symbol
	Existing *Symbol
}

func (e *RedeclarationError) Error() string {
	if e.Symbol.IsCallable() && e.Existing.IsCallable() && e.Symbol.Kind != SymbolClass {
		return fmt.Sprintf("conflicting overloads: %s is already declared at %s", e.Symbol.Name, e.Existing.Pos)
	}
	return fmt.Sprintf("conflicting declarations: %s is already declared at %s", e.Symbol.Name, e.Existing.Pos)
}

// Define adds a variable, field or class symbol. It fails if the name is
// already declared in this scope; names in outer scopes may be
// shadowed.
func (s *Scope) Define(symbol *Symbol) error {
	if existing, ok := s.Symbols[symbol.Name]; ok {
		return &RedeclarationError{Symbol: symbol, Existing: existing}
	}
	s.Symbols[symbol.Name] = symbol
	s.order = append(s.order, symbol)
	symbol.Scope = s
	return nil
}

// DefineFunction adds an overload. Signatures are compared later, once
// the parameter types are resolved; see CheckOverloads.
func (s *Scope) DefineFunction(symbol *Symbol) {
	s.Functions[symbol.Name] = append(s.Functions[symbol.Name], symbol)
	s.order = append(s.order, symbol)
	symbol.Scope = s
}

// CheckOverloads reports two overloads of symbol's name in this scope
// whose resolved parameter types are identical.
func (s *Scope) CheckOverloads(symbol *Symbol) error {
	sig := symbol.Signature()
	if sig == nil {
		return nil
	}
	for _, other := range s.Functions[symbol.Name] {
		if other == symbol {
			break
		}
		if osig := other.Signature(); osig != nil && types.SameParams(sig.Params, osig.Params) {
			return &RedeclarationError{Symbol: symbol, Existing: other}
		}
	}
	return nil
}

// Lookup finds a variable, field or class by name in this scope or any
// parent scope.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if symbol, ok := scope.Symbols[name]; ok {
			symbol.MarkUsed()
			return symbol
		}
	}
	return nil
}

// LookupLocal finds a symbol declared in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.Symbols[name]
}

// FunctionCandidates returns the overload sets for name, innermost
// scope first. Each element holds the overloads declared in one scope.
func (s *Scope) FunctionCandidates(name string) [][]*Symbol {
	var sets [][]*Symbol
	for scope := s; scope != nil; scope = scope.Parent {
		if fns := scope.Functions[name]; len(fns) > 0 {
			sets = append(sets, fns)
		}
	}
	return sets
}

func (s *Scope) IsGlobal() bool   { return s.Kind == ScopeGlobal }
func (s *Scope) IsFunction() bool { return s.Kind == ScopeFunction }
func (s *Scope) IsLoop() bool     { return s.Kind == ScopeLoop }

// FindEnclosingFunction returns the nearest function scope, or nil.
func (s *Scope) FindEnclosingFunction() *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.IsFunction() {
			return scope
		}
		if scope.Kind == ScopeClass {
			return nil
		}
	}
	return nil
}

// FindEnclosingLoop returns the nearest loop scope inside the current
// function, or nil. Loops outside a local function's body do not count.
func (s *Scope) FindEnclosingLoop() *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.IsLoop() {
			return scope
		}
		if scope.IsFunction() || scope.Kind == ScopeClass {
			return nil
		}
	}
	return nil
}

// FindEnclosingClass returns the nearest class scope, or nil.
func (s *Scope) FindEnclosingClass() *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind == ScopeClass {
			return scope
		}
	}
	return nil
}

// LocalSymbols returns the symbols declared in this scope in source
// order.
func (s *Scope) LocalSymbols() []*Symbol {
	return append([]*Symbol(nil), s.order...)
}

// UnusedSymbols returns the variables declared in this scope that were
// never referenced.
func (s *Scope) UnusedSymbols() []*Symbol {
	var unused []*Symbol
	for _, symbol := range s.order {
		if symbol.Kind == SymbolVariable && !symbol.Used {
			unused = append(unused, symbol)
		}
	}
	return unused
}

func (s *Scope) String() string {
	return fmt.Sprintf("%s scope (depth %d, %d symbols)", s.Kind, s.Depth, len(s.order))
}

// DebugString renders the scope tree, one symbol per line.
func (s *Scope) DebugString() string {
	var b strings.Builder
	s.debugString(&b, 0)
	return b.String()
}

func (s *Scope) debugString(b *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	b.WriteString(prefix + s.String() + "\n")
	for _, symbol := range s.order {
		b.WriteString(prefix + "  " + symbol.String() + "\n")
	}
	for _, child := range s.Children {
		child.debugString(b, indent+1)
	}
}
