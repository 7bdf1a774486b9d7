package semantic

import (
	"strings"

	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

func (a *Analyzer) VisitCallExpr(expr *ast.CallExpr) (interface{}, error) {
	switch callee := expr.Callee.(type) {
	case *ast.IdentifierExpr:
		return a.checkNamedCall(expr, callee), nil
	case *ast.MemberExpr:
		return a.checkMethodCall(expr, callee), nil
	}
	a.errorf(expr.Callee.Pos(), "expression cannot be invoked as a function")
	return nil, nil
}

func (a *Analyzer) checkArgs(args []ast.Expr) []types.Type {
	ts := make([]types.Type, len(args))
	for i, arg := range args {
		ts[i] = a.check(arg)
	}
	return ts
}

// checkNamedCall resolves f(args) by walking the scopes outward. At
// each level a class of that name acts as a no-argument constructor;
// otherwise the first overload whose parameters match the argument
// types exactly wins.
//
// DESIGN CHOICE: Matching is exact and there is no "most specific"
// ranking. Int does not widen to Double and there is no subtyping
// between classes, so at most one overload in a scope can accept a
// given argument list.
//
// EXAMPLE:
//
//	fun show(x: Int) = println(x)
//	fun main() {
//	    fun show(s: String) = println(s)
//	    show(1)
//	}
//
// The inner scope has show(String), which does not accept Int, so the
// search continues outward and finds show(Int).
func (a *Analyzer) checkNamedCall(expr *ast.CallExpr, callee *ast.IdentifierExpr) types.Type {
	args := a.checkArgs(expr.Args)
	name := callee.Name

	var candidates []*symtab.Symbol
	for scope := a.ctx.scope; scope != nil; scope = scope.Parent {
		if class := scope.LookupLocal(name); class != nil && class.Kind == symtab.SymbolClass {
			if len(args) == 0 {
				return a.bind(expr, callee, class, class.Type)
			}
			candidates = append(candidates, class)
		}
		for _, fn := range scope.Functions[name] {
			sig := a.resolveFunction(fn, callee.Pos())
			if types.SameParams(sig.Params, args) {
				return a.bind(expr, callee, fn, sig.Return)
			}
			candidates = append(candidates, fn)
		}
	}

	if len(candidates) == 0 {
		if sym := a.ctx.scope.Lookup(name); sym != nil {
			a.errorf(callee.Pos(), "expression '%s' of type %s cannot be invoked as a function", name, a.typeOfSymbol(sym, callee.Pos()))
		}
		a.errorf(callee.Pos(), "unresolved reference: %s", name)
	}
	a.noMatch(expr, candidates, args)
	return nil
}

func (a *Analyzer) checkMethodCall(expr *ast.CallExpr, member *ast.MemberExpr) types.Type {
	recv := a.check(member.Object)
	args := a.checkArgs(expr.Args)
	name := member.Member.Name

	if class, ok := recv.(*types.ClassType); ok {
		members := a.info.Classes[class].Members
		methods := members.Functions[name]
		for _, m := range methods {
			sig := a.resolveFunction(m, member.Member.Pos())
			if types.SameParams(sig.Params, args) {
				return a.bind(expr, member, m, sig.Return)
			}
		}
		if len(methods) == 0 {
			if field := members.LookupLocal(name); field != nil {
				a.errorf(member.Member.Pos(), "expression '%s' of type %s cannot be invoked as a function", name, a.resolveVariable(field, member.Member.Pos()))
			}
			a.errorf(member.Member.Pos(), "unresolved reference: %s", name)
		}
		a.noMatch(expr, methods, args)
	}

	if m := builtinMethod(recv, name); m != nil {
		if len(args) > 0 {
			a.errorf(expr.Args[0].Pos(), "too many arguments for %s", describe(m))
		}
		return a.bind(expr, member, m, m.Signature().Return)
	}
	if prop := builtinPropertyOf(recv, name); prop != nil {
		a.errorf(member.Member.Pos(), "expression '%s' of type %s cannot be invoked as a function", name, prop.Type)
	}
	a.errorf(member.Member.Pos(), "unresolved reference: %s", name)
	return nil
}

func (a *Analyzer) bind(expr *ast.CallExpr, callee ast.Node, sym *symtab.Symbol, ret types.Type) types.Type {
	sym.MarkUsed()
	a.info.Refs[expr] = sym
	a.info.Refs[callee] = sym
	return ret
}

// noMatch reports why no candidate accepted the arguments. With a
// single candidate the first mismatching argument is named.
func (a *Analyzer) noMatch(expr *ast.CallExpr, candidates []*symtab.Symbol, args []types.Type) {
	if len(candidates) > 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = describe(c)
		}
		a.errorf(expr.Pos(), "none of the following candidates is applicable: %s", strings.Join(names, ", "))
	}

	cand := candidates[0]
	var params []types.Type
	if cand.Kind != symtab.SymbolClass {
		params = cand.Signature().Params
	}
	switch {
	case len(args) > len(params):
		a.errorf(expr.Args[len(params)].Pos(), "too many arguments for %s", describe(cand))
	case len(args) < len(params):
		a.errorf(expr.RightParen.Position, "no value passed for parameter '%s'", paramName(cand, len(args)))
	}
	for i, arg := range args {
		if !arg.Equals(params[i]) {
			a.errorf(expr.Args[i].Pos(), "type mismatch: inferred type is %s but %s was expected", arg, params[i])
		}
	}
}

// describe renders a callable as name(T1, T2).
func describe(sym *symtab.Symbol) string {
	if sym.Kind == symtab.SymbolClass {
		return sym.Name + "()"
	}
	sig := sym.Signature()
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.String()
	}
	return sym.Name + "(" + strings.Join(params, ", ") + ")"
}

func paramName(sym *symtab.Symbol, i int) string {
	if decl, ok := sym.Decl.(*ast.FunDecl); ok && i < len(decl.Params) {
		return decl.Params[i].Name.Name
	}
	return "value"
}
