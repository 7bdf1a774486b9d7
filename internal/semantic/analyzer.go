// Package semantic implements name resolution and type checking.
//
// The analyzer walks the syntax tree once, building the scope chain as
// it enters each frame and recording the results in an Info value: the
// static type of every expression and the symbol every name resolves
// to. It stops at the first error.
//
// Top-level declarations and class members are hoisted: they are
// declared before any body is checked, so functions may call functions
// declared later and methods may use members declared below them. The
// types of hoisted properties and of expression-bodied functions
// without a declared result are resolved on first use. Declarations
// inside function bodies are sequential and become visible at their
// declaration point, which is what makes a local class shadow an outer
// class of the same name only for the code after it.
package semantic

import (
	"fmt"

	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

// Analyzer performs semantic analysis on a program.
type Analyzer struct {
	info      *Info
	shadowing ShadowingPolicy
	ctx       context

	// checked records bodies, properties and class declarations already
	// checked, so lazy resolution and the sequential pass do not repeat
	// work. Local properties are marked as they are declared and are
	// never resolved lazily.
	checked map[ast.Node]bool

	// flow tracks the assignment state of locals declared without an
	// initializer on the path being checked.
	flow flow
}

// context is the part of the analyzer state that changes when checking
// jumps to another declaration.
type context struct {
	scope *symtab.Scope
	fn    *funcContext
	init  *initContext
}

type funcContext struct {
	sym *symtab.Symbol

	// ret is the declared or implied result type. It is nil while the
	// result of an expression body is being inferred.
	ret types.Type
}

// initContext is set while a property initializer is checked. Direct
// references to properties of the same frame at or after index are
// uninitialized reads.
type initContext struct {
	scope *symtab.Scope
	index int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithShadowing sets how shadowed locals are reported.
func WithShadowing(policy ShadowingPolicy) Option {
	return func(a *Analyzer) { a.shadowing = policy }
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze checks prog and returns its side tables. The error is a
// *SemanticError.
func (a *Analyzer) Analyze(prog *ast.Program) (info *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			info, err = nil, b.err
		}
	}()

	a.info = newInfo()
	a.checked = make(map[ast.Node]bool)
	a.flow = flow{}
	a.info.Universe = newUniverse()
	global := symtab.NewScope(symtab.ScopeGlobal, a.info.Universe)
	a.info.Global = global
	a.ctx = context{scope: global}

	for _, decl := range prog.Decls {
		a.declare(decl, global)
	}
	for _, decl := range prog.Decls {
		a.checkTopLevel(decl)
	}

	a.info.Main = a.info.Function("main")
	return a.info, nil
}

// Declarations

// declare hoists a top-level declaration into the global scope.
func (a *Analyzer) declare(decl ast.Decl, scope *symtab.Scope) {
	switch d := decl.(type) {
	case *ast.PropertyDecl:
		sym := &symtab.Symbol{
			Name:    d.Name.Name,
			Kind:    symtab.SymbolVariable,
			Pos:     d.Name.Pos(),
			Mutable: d.Mutable(),
			Decl:    d,
			Index:   len(a.info.Globals),
		}
		a.define(scope, sym)
		a.info.Globals = append(a.info.Globals, sym)
		a.info.Refs[d] = sym

	case *ast.FunDecl:
		scope.DefineFunction(a.funcSymbol(d, symtab.SymbolFunction, nil))

	case *ast.ClassDecl:
		a.declareClass(d, scope, false)
	}
}

func (a *Analyzer) funcSymbol(decl *ast.FunDecl, kind symtab.SymbolKind, owner *types.ClassType) *symtab.Symbol {
	sym := &symtab.Symbol{
		Name:  decl.Name.Name,
		Kind:  kind,
		Pos:   decl.Name.Pos(),
		Decl:  decl,
		Owner: owner,
	}
	a.info.Refs[decl] = sym
	return sym
}

// declareClass creates a new class type with its member scope. Members
// are hoisted within the class.
func (a *Analyzer) declareClass(decl *ast.ClassDecl, scope *symtab.Scope, local bool) *symtab.Symbol {
	class := &types.ClassType{Name: decl.Name.Name, Pos: decl.Name.Pos(), Local: local}
	sym := &symtab.Symbol{
		Name:  class.Name,
		Kind:  symtab.SymbolClass,
		Type:  class,
		Pos:   class.Pos,
		Decl:  decl,
		State: symtab.Resolved,
	}
	a.define(scope, sym)

	members := symtab.NewScope(symtab.ScopeClass, scope)
	members.Class = class
	sym.Members = members
	a.info.Classes[class] = sym
	a.info.Refs[decl] = sym

	for i, prop := range decl.Properties {
		field := &symtab.Symbol{
			Name:    prop.Name.Name,
			Kind:    symtab.SymbolField,
			Pos:     prop.Name.Pos(),
			Mutable: prop.Mutable(),
			Decl:    prop,
			Owner:   class,
			Index:   i,
		}
		a.define(members, field)
		a.info.Refs[prop] = field
	}
	for _, method := range decl.Methods {
		members.DefineFunction(a.funcSymbol(method, symtab.SymbolMethod, class))
	}
	return sym
}

func (a *Analyzer) checkTopLevel(decl ast.Decl) {
	sym := a.info.Refs[decl]
	switch d := decl.(type) {
	case *ast.PropertyDecl:
		a.resolveVariable(sym, d.Pos())
	case *ast.FunDecl:
		a.resolveFunction(sym, d.Pos())
		a.checkOverloads(sym)
		a.checkFunctionBody(sym)
	case *ast.ClassDecl:
		a.checkClass(sym)
	}
}

func (a *Analyzer) checkOverloads(sym *symtab.Symbol) {
	if err := sym.Scope.CheckOverloads(sym); err != nil {
		a.errorf(sym.Pos, "%s", err.Error())
	}
}

// checkClass checks property initializers in declaration order, then
// method bodies.
func (a *Analyzer) checkClass(sym *symtab.Symbol) {
	decl := sym.Decl.(*ast.ClassDecl)
	if a.checked[decl] {
		return
	}
	a.checked[decl] = true

	for _, prop := range decl.Properties {
		a.resolveVariable(a.info.Refs[prop], prop.Pos())
	}
	for _, method := range decl.Methods {
		msym := a.info.Refs[method]
		a.resolveFunction(msym, method.Pos())
		a.checkOverloads(msym)
		a.checkFunctionBody(msym)
	}
}

// Lazy resolution
//
// Hoisting makes every top-level name visible at once, so a use can be
// reached before its declaration has been checked:
//
//	fun f() = g() + 1
//	fun g() = limit
//	val limit = 10
//
// Checking f needs the type of g, which needs the type of limit. The
// resolve functions check a declaration on demand, the first time it
// is needed, and mark it checked so the pass over the declarations
// does not check it again. A declaration met again while it is still
// in progress is a cycle and is reported.
//
// DESIGN CHOICE: On-demand checking instead of a separate pass that
// sorts declarations by dependency because:
//   - The dependencies are only known by type checking the bodies.
//   - Declared types stop the recursion early. A function with a
//     result type never needs its body checked to be called.

// resolveVariable returns the type of a hoisted property or field,
// checking its initializer on first use. Local properties never come
// through here; they are checked where they are declared.
func (a *Analyzer) resolveVariable(sym *symtab.Symbol, use lexer.Position) types.Type {
	decl, ok := sym.Decl.(*ast.PropertyDecl)
	if !ok || a.checked[decl] {
		if sym.State == symtab.Resolving {
			a.errorf(use, "type checking has run into a recursive problem")
		}
		return sym.Type
	}
	if sym.State == symtab.Resolving {
		a.errorf(use, "type checking has run into a recursive problem")
	}
	a.checked[decl] = true
	if decl.Value == nil {
		a.errorf(decl.Name.Pos(), "property must be initialized")
	}

	var declared types.Type
	if decl.Type != nil {
		declared = a.resolveType(decl.Type, sym.Scope)
		sym.Type = declared
		sym.State = symtab.Resolved
	} else {
		sym.State = symtab.Resolving
	}

	saved := a.ctx
	a.ctx = context{scope: sym.Scope, init: &initContext{scope: sym.Scope, index: sym.Index}}
	value := a.check(decl.Value)
	a.ctx = saved

	if declared != nil {
		a.requireAssignable(value, declared, decl.Value.Pos())
	} else {
		sym.Type = value
	}
	sym.State = symtab.Resolved
	return sym.Type
}

// resolveFunction computes the signature of a function or method. An
// expression body without a declared result type is checked to infer
// it.
func (a *Analyzer) resolveFunction(sym *symtab.Symbol, use lexer.Position) *types.FunctionType {
	switch sym.State {
	case symtab.Resolved:
		return sym.Signature()
	case symtab.Resolving:
		a.errorf(use, "type checking has run into a recursive problem")
	}
	if sym.Kind == symtab.SymbolBuiltin {
		return sym.Signature()
	}

	decl := sym.Decl.(*ast.FunDecl)
	sym.State = symtab.Resolving

	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = a.resolveType(p.Type, sym.Scope)
	}

	var ret types.Type
	switch {
	case decl.ReturnType != nil:
		ret = a.resolveType(decl.ReturnType, sym.Scope)
	case decl.Body != nil:
		ret = types.Unit
	}
	if ret == nil {
		a.checked[decl] = true
		ret = a.checkBody(sym, params, nil)
	}

	sym.Type = types.NewFunction(params, ret)
	sym.State = symtab.Resolved
	return sym.Signature()
}

func (a *Analyzer) checkFunctionBody(sym *symtab.Symbol) {
	decl := sym.Decl.(*ast.FunDecl)
	if a.checked[decl] {
		return
	}
	a.checked[decl] = true
	sig := sym.Signature()
	a.checkBody(sym, sig.Params, sig.Return)
}

// checkBody checks a function body in a fresh function scope and
// returns the body's result type. ret is nil when it is to be inferred.
func (a *Analyzer) checkBody(sym *symtab.Symbol, params []types.Type, ret types.Type) types.Type {
	decl := sym.Decl.(*ast.FunDecl)

	saved, savedFlow := a.ctx, a.flow
	defer func() { a.ctx, a.flow = saved, savedFlow }()
	a.flow = savedFlow.clone()

	scope := symtab.NewScope(symtab.ScopeFunction, sym.Scope)
	scope.Function = sym
	a.ctx = context{scope: scope, fn: &funcContext{sym: sym, ret: ret}}

	for i, p := range decl.Params {
		param := &symtab.Symbol{
			Name:  p.Name.Name,
			Kind:  symtab.SymbolParameter,
			Type:  params[i],
			Pos:   p.Name.Pos(),
			Decl:  p,
			Index: i,
			State: symtab.Resolved,
		}
		a.warnShadowing(param)
		a.define(scope, param)
		a.info.Refs[p] = param
	}

	if decl.Body != nil {
		a.checkBlock(decl.Body)
		if !ret.Equals(types.Unit) && !terminates(decl.Body) {
			a.errorf(decl.Body.RightBrace.Position, "a 'return' expression is required in a function with a block body and return type %s", ret)
		}
		return ret
	}

	value := a.check(decl.ExprBody)
	if ret != nil {
		a.requireAssignable(value, ret, decl.ExprBody.Pos())
		return ret
	}
	return value
}

// resolveType maps a type annotation to a type, looking class names up
// from scope.
func (a *Analyzer) resolveType(ref *ast.TypeRef, scope *symtab.Scope) types.Type {
	name := ref.Name.Lexeme
	if name == "Array" {
		if len(ref.Args) != 1 {
			a.errorf(ref.Pos(), "one type argument expected for Array<T>")
		}
		return types.NewArray(a.resolveType(ref.Args[0], scope))
	}

	var t types.Type
	if builtin := types.Builtin(name); builtin != nil {
		t = builtin
	} else if class := lookupClass(scope, name); class != nil {
		class.MarkUsed()
		t = class.Type
	} else {
		a.errorf(ref.Pos(), "unresolved reference: %s", name)
	}
	if len(ref.Args) > 0 {
		a.errorf(ref.Pos(), "no type arguments expected for %s", name)
	}
	return t
}

// lookupClass finds the innermost class named name, skipping other
// kinds of symbols.
func lookupClass(scope *symtab.Scope, name string) *symtab.Symbol {
	for s := scope; s != nil; s = s.Parent {
		if sym := s.LookupLocal(name); sym != nil && sym.Kind == symtab.SymbolClass {
			return sym
		}
	}
	return nil
}

// Helper methods

func (a *Analyzer) define(scope *symtab.Scope, sym *symtab.Symbol) {
	if err := scope.Define(sym); err != nil {
		a.errorf(sym.Pos, "%s", err.Error())
	}
}

// warnShadowing reports a local or parameter hiding another local or
// parameter of an enclosing frame in the same function nest.
func (a *Analyzer) warnShadowing(sym *symtab.Symbol) {
	if a.shadowing == ShadowIgnore || a.ctx.fn == nil {
		return
	}
	for s := a.ctx.scope.Parent; s != nil; s = s.Parent {
		if s.Kind == symtab.ScopeClass || s.Kind == symtab.ScopeGlobal {
			return
		}
		outer := s.LookupLocal(sym.Name)
		if outer == nil {
			continue
		}
		if outer.Kind != symtab.SymbolVariable && outer.Kind != symtab.SymbolParameter {
			return
		}
		msg := fmt.Sprintf("name shadowed: %s", sym.Name)
		if a.shadowing == ShadowError {
			a.errorf(sym.Pos, "%s", msg)
		}
		a.info.Warnings = append(a.info.Warnings, Diagnostic{Pos: sym.Pos, Msg: msg})
		return
	}
}

func (a *Analyzer) enterScope(kind symtab.ScopeKind) {
	a.ctx.scope = symtab.NewScope(kind, a.ctx.scope)
}

func (a *Analyzer) exitScope() {
	a.ctx.scope = a.ctx.scope.Parent
}

func (a *Analyzer) requireAssignable(value, target types.Type, pos lexer.Position) {
	if !value.AssignableTo(target) {
		a.errorf(pos, "type mismatch: inferred type is %s but %s was expected", value, target)
	}
}

func (a *Analyzer) errorf(pos lexer.Position, format string, args ...interface{}) {
	panic(bailout{err: &SemanticError{Pos: pos, Msg: fmt.Sprintf(format, args...)}})
}
