package semantic

import (
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	_ = stmt.Accept(a)
}

// checkBlock checks the statements of block in a new block scope.
func (a *Analyzer) checkBlock(block *ast.BlockStmt) {
	a.enterScope(symtab.ScopeBlock)
	for _, stmt := range block.Statements {
		a.checkStmt(stmt)
	}
	a.exitScope()
}

// checkNested checks a control-flow body. A non-block body still gets
// its own scope so declarations in it do not leak.
func (a *Analyzer) checkNested(body ast.Stmt) {
	if block, ok := body.(*ast.BlockStmt); ok {
		a.checkBlock(block)
		return
	}
	a.enterScope(symtab.ScopeBlock)
	a.checkStmt(body)
	a.exitScope()
}

func (a *Analyzer) VisitExprStmt(stmt *ast.ExprStmt) error {
	switch e := stmt.Expression.(type) {
	case *ast.AssignmentExpr:
		a.checkAssignment(e)
	case *ast.IfExpr:
		a.checkIf(e, false)
		a.info.Types[e] = types.Unit
	default:
		a.check(e)
	}
	return nil
}

func (a *Analyzer) VisitBlockStmt(stmt *ast.BlockStmt) error {
	a.checkBlock(stmt)
	return nil
}

func (a *Analyzer) VisitForStmt(stmt *ast.ForStmt) error {
	iterable := a.check(stmt.Iterable)

	var elem types.Type
	switch t := iterable.(type) {
	case *types.RangeType:
		elem = types.Int
	case *types.ArrayType:
		elem = t.Elem
	default:
		a.errorf(stmt.Iterable.Pos(), "for-loop range must have an 'iterator()' method: %s is not iterable", iterable)
	}
	if stmt.VarType != nil {
		declared := a.resolveType(stmt.VarType, a.ctx.scope)
		if !elem.Equals(declared) {
			a.errorf(stmt.VarType.Pos(), "type mismatch: loop variable of type %s cannot iterate over elements of type %s", declared, elem)
		}
	}

	a.enterScope(symtab.ScopeLoop)
	v := &symtab.Symbol{
		Name:  stmt.Variable.Name,
		Kind:  symtab.SymbolVariable,
		Type:  elem,
		Pos:   stmt.Variable.Pos(),
		Decl:  stmt,
		State: symtab.Resolved,
	}
	a.warnShadowing(v)
	a.define(a.ctx.scope, v)
	a.info.Refs[stmt] = v
	a.info.Refs[stmt.Variable] = v

	a.checkLoopBody(stmt.Body)
	a.exitScope()
	return nil
}

func (a *Analyzer) VisitWhileStmt(stmt *ast.WhileStmt) error {
	a.requireBoolean(stmt.Condition)
	a.enterScope(symtab.ScopeLoop)
	a.checkLoopBody(stmt.Body)
	a.exitScope()
	return nil
}

// checkLoopBody checks the body of a loop that may run zero times.
func (a *Analyzer) checkLoopBody(body ast.Stmt) {
	before := a.flow
	inside := a.branch(func() { a.checkNested(body) })
	a.flow = afterLoop(before, inside)
}

// VisitDoWhileStmt checks the body statements directly in the loop
// scope: the condition can see variables declared in the body.
func (a *Analyzer) VisitDoWhileStmt(stmt *ast.DoWhileStmt) error {
	a.enterScope(symtab.ScopeLoop)
	if block, ok := stmt.Body.(*ast.BlockStmt); ok {
		for _, s := range block.Statements {
			a.checkStmt(s)
		}
	} else {
		a.checkStmt(stmt.Body)
	}
	a.requireBoolean(stmt.Condition)
	a.exitScope()
	return nil
}

func (a *Analyzer) VisitReturnStmt(stmt *ast.ReturnStmt) error {
	fn := a.ctx.fn
	if fn == nil {
		a.errorf(stmt.Pos(), "'return' is not allowed here")
	}
	if fn.ret == nil {
		a.errorf(stmt.Pos(), "'return' is not allowed in a function with an expression body and no declared return type")
	}
	if stmt.Value == nil {
		if !fn.ret.Equals(types.Unit) {
			a.errorf(stmt.Pos(), "this function must return a value of type %s", fn.ret)
		}
		return nil
	}
	a.requireAssignable(a.check(stmt.Value), fn.ret, stmt.Value.Pos())
	return nil
}

func (a *Analyzer) VisitBreakStmt(stmt *ast.BreakStmt) error {
	a.requireLoop(stmt)
	return nil
}

func (a *Analyzer) VisitContinueStmt(stmt *ast.ContinueStmt) error {
	a.requireLoop(stmt)
	return nil
}

func (a *Analyzer) requireLoop(stmt ast.Stmt) {
	if a.ctx.scope.FindEnclosingLoop() == nil {
		a.errorf(stmt.Pos(), "'break' and 'continue' are only allowed inside a loop")
	}
}

// Local declarations. Top-level declarations go through declare and
// checkTopLevel instead.

// VisitPropertyDecl declares a local. A local without an initializer
// is tracked until it is definitely assigned.
func (a *Analyzer) VisitPropertyDecl(decl *ast.PropertyDecl) error {
	var t types.Type
	if decl.Value != nil {
		t = a.check(decl.Value)
	}
	if decl.Type != nil {
		declared := a.resolveType(decl.Type, a.ctx.scope)
		if decl.Value != nil {
			a.requireAssignable(t, declared, decl.Value.Pos())
		}
		t = declared
	}

	sym := &symtab.Symbol{
		Name:    decl.Name.Name,
		Kind:    symtab.SymbolVariable,
		Type:    t,
		Pos:     decl.Name.Pos(),
		Mutable: decl.Mutable(),
		Decl:    decl,
		State:   symtab.Resolved,
	}
	a.checked[decl] = true
	a.warnShadowing(sym)
	a.define(a.ctx.scope, sym)
	a.info.Refs[decl] = sym
	if decl.Value == nil {
		a.flow[sym] = 0
	}
	return nil
}

// VisitFunDecl defines a local function before checking its body so it
// can call itself.
func (a *Analyzer) VisitFunDecl(decl *ast.FunDecl) error {
	sym := a.funcSymbol(decl, symtab.SymbolFunction, nil)
	a.ctx.scope.DefineFunction(sym)
	a.resolveFunction(sym, decl.Pos())
	a.checkOverloads(sym)
	a.checkFunctionBody(sym)
	return nil
}

func (a *Analyzer) VisitClassDecl(decl *ast.ClassDecl) error {
	a.checkClass(a.declareClass(decl, a.ctx.scope, true))
	return nil
}

// terminates reports whether control never falls off the end of stmt.
func terminates(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	case *ast.BlockStmt:
		for _, st := range s.Statements {
			if terminates(st) {
				return true
			}
		}
	case *ast.ExprStmt:
		if ifx, ok := s.Expression.(*ast.IfExpr); ok && ifx.Else != nil {
			return terminates(ifx.Then) && terminates(ifx.Else)
		}
	case *ast.WhileStmt:
		return isTrue(s.Condition) && !breaks(s.Body)
	case *ast.DoWhileStmt:
		return (isTrue(s.Condition) || returns(s.Body)) && !breaks(s.Body)
	}
	return false
}

// returns reports whether every path through stmt ends in a return.
func returns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		for _, st := range s.Statements {
			if returns(st) {
				return true
			}
			if terminates(st) {
				return false
			}
		}
	case *ast.ExprStmt:
		if ifx, ok := s.Expression.(*ast.IfExpr); ok && ifx.Else != nil {
			return returns(ifx.Then) && returns(ifx.Else)
		}
	}
	return false
}

// breaks reports whether stmt contains a break that exits the loop
// whose body it is.
func breaks(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.BreakStmt:
		return true
	case *ast.BlockStmt:
		for _, st := range s.Statements {
			if breaks(st) {
				return true
			}
		}
	case *ast.ExprStmt:
		if ifx, ok := s.Expression.(*ast.IfExpr); ok {
			return breaks(ifx.Then) || (ifx.Else != nil && breaks(ifx.Else))
		}
	}
	return false
}

func isTrue(expr ast.Expr) bool {
	for {
		g, ok := expr.(*ast.GroupingExpr)
		if !ok {
			break
		}
		expr = g.Expr
	}
	lit, ok := expr.(*ast.LiteralExpr)
	return ok && lit.Kind == ast.LiteralBool && lit.Value == true
}
