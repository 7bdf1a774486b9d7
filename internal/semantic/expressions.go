package semantic

import (
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

// check computes and records the type of expr.
func (a *Analyzer) check(expr ast.Expr) types.Type {
	result, _ := expr.Accept(a)
	t := result.(types.Type)
	a.info.Types[expr] = t
	return t
}

func (a *Analyzer) requireBoolean(expr ast.Expr) {
	if t := a.check(expr); !t.Equals(types.Boolean) {
		a.errorf(expr.Pos(), "type mismatch: inferred type is %s but Boolean was expected", t)
	}
}

func (a *Analyzer) operatorError(op lexer.Token, left, right types.Type) {
	a.errorf(op.Position, "operator '%s' cannot be applied to '%s' and '%s'", op.Lexeme, left, right)
}

func (a *Analyzer) VisitLiteralExpr(expr *ast.LiteralExpr) (interface{}, error) {
	switch expr.Kind {
	case ast.LiteralInt:
		return types.Int, nil
	case ast.LiteralDouble:
		return types.Double, nil
	case ast.LiteralFloat:
		return types.Float, nil
	case ast.LiteralBool:
		return types.Boolean, nil
	default:
		return types.String, nil
	}
}

func (a *Analyzer) VisitTemplateExpr(expr *ast.TemplateExpr) (interface{}, error) {
	for _, part := range expr.Parts {
		if t := a.check(part); !types.Printable(t) {
			a.errorf(part.Pos(), "values of type %s cannot be used in a string template", t)
		}
	}
	return types.String, nil
}

func (a *Analyzer) VisitIdentifierExpr(expr *ast.IdentifierExpr) (interface{}, error) {
	sym := a.resolveName(expr)
	a.requireInitialized(sym, expr.Pos())
	return a.typeOfSymbol(sym, expr.Pos()), nil
}

// resolveName binds a name used as a value to its symbol.
func (a *Analyzer) resolveName(expr *ast.IdentifierExpr) *symtab.Symbol {
	sym := a.ctx.scope.Lookup(expr.Name)
	if sym == nil {
		if a.ctx.scope.FunctionCandidates(expr.Name) != nil {
			a.errorf(expr.Pos(), "function references are not supported: %s", expr.Name)
		}
		a.errorf(expr.Pos(), "unresolved reference: %s", expr.Name)
	}
	if sym.Kind == symtab.SymbolClass {
		a.errorf(expr.Pos(), "classifier '%s' cannot be used as a value", expr.Name)
	}

	if init := a.ctx.init; init != nil && sym.Scope == init.scope && sym.Index >= init.index &&
		(sym.Kind == symtab.SymbolVariable || sym.Kind == symtab.SymbolField) {
		a.errorf(expr.Pos(), "variable '%s' must be initialized", expr.Name)
	}

	a.info.Refs[expr] = sym
	return sym
}

func (a *Analyzer) typeOfSymbol(sym *symtab.Symbol, use lexer.Position) types.Type {
	if sym.Kind == symtab.SymbolVariable || sym.Kind == symtab.SymbolField {
		return a.resolveVariable(sym, use)
	}
	return sym.Type
}

func (a *Analyzer) VisitThisExpr(expr *ast.ThisExpr) (interface{}, error) {
	class := a.ctx.scope.FindEnclosingClass()
	if class == nil {
		a.errorf(expr.Pos(), "'this' is not defined in this context")
	}
	return class.Class, nil
}

func (a *Analyzer) VisitGroupingExpr(expr *ast.GroupingExpr) (interface{}, error) {
	return a.check(expr.Expr), nil
}

func (a *Analyzer) VisitUnaryExpr(expr *ast.UnaryExpr) (interface{}, error) {
	switch expr.Operator.Type {
	case lexer.TokenNot:
		a.requireBoolean(expr.Operand)
		return types.Boolean, nil

	case lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		t := a.checkTarget(expr.Operand)
		if !types.IsNumeric(t) {
			a.errorf(expr.Operator.Position, "operator '%s' cannot be applied to '%s'", expr.Operator.Lexeme, t)
		}
		return t, nil

	default:
		t := a.check(expr.Operand)
		if !types.IsNumeric(t) {
			a.errorf(expr.Operator.Position, "operator '%s' cannot be applied to '%s'", expr.Operator.Lexeme, t)
		}
		return t, nil
	}
}

func (a *Analyzer) VisitBinaryExpr(expr *ast.BinaryExpr) (interface{}, error) {
	op := expr.Operator
	left := a.check(expr.Left)
	right := a.check(expr.Right)

	switch op.Type {
	case lexer.TokenPlus:
		if left.Equals(types.String) {
			if !types.Printable(right) {
				a.operatorError(op, left, right)
			}
			return types.String, nil
		}
		return a.arithmetic(op, left, right), nil

	case lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		return a.arithmetic(op, left, right), nil

	case lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenGreater, lexer.TokenGreaterEqual:
		if !types.Ordered(left, right) {
			a.operatorError(op, left, right)
		}
		return types.Boolean, nil

	case lexer.TokenEqual, lexer.TokenNotEqual, lexer.TokenIdentical, lexer.TokenNotIdentical:
		if !left.Equals(right) {
			a.operatorError(op, left, right)
		}
		return types.Boolean, nil

	case lexer.TokenAnd, lexer.TokenOr:
		if !left.Equals(types.Boolean) || !right.Equals(types.Boolean) {
			a.operatorError(op, left, right)
		}
		return types.Boolean, nil

	case lexer.TokenIn, lexer.TokenNotIn:
		switch r := right.(type) {
		case *types.RangeType:
			if !left.Equals(types.Int) {
				a.operatorError(op, left, right)
			}
		case *types.ArrayType:
			if !left.Equals(r.Elem) {
				a.operatorError(op, left, right)
			}
		default:
			a.operatorError(op, left, right)
		}
		return types.Boolean, nil
	}

	a.operatorError(op, left, right)
	return nil, nil
}

func (a *Analyzer) arithmetic(op lexer.Token, left, right types.Type) types.Type {
	t := types.Promote(left, right)
	if !types.IsValid(t) {
		a.operatorError(op, left, right)
	}
	return t
}

func (a *Analyzer) VisitRangeExpr(expr *ast.RangeExpr) (interface{}, error) {
	low := a.check(expr.Low)
	high := a.check(expr.High)
	if !low.Equals(types.Int) || !high.Equals(types.Int) {
		a.operatorError(expr.Operator, low, high)
	}
	return types.Range, nil
}

func (a *Analyzer) VisitInfixCallExpr(expr *ast.InfixCallExpr) (interface{}, error) {
	sym := infixBuiltin(expr.Function.Name)
	if sym == nil {
		a.errorf(expr.Function.Pos(), "unresolved reference: %s", expr.Function.Name)
	}
	left := a.check(expr.Left)
	right := a.check(expr.Right)
	sig := sym.Signature()
	if !left.Equals(sig.Params[0]) || !right.Equals(sig.Params[1]) {
		a.errorf(expr.Function.Pos(), "infix function '%s' cannot be applied to '%s' and '%s'", sym.Name, left, right)
	}
	a.info.Refs[expr] = sym
	return sig.Return, nil
}

func (a *Analyzer) VisitMemberExpr(expr *ast.MemberExpr) (interface{}, error) {
	recv := a.check(expr.Object)
	name := expr.Member.Name

	if class, ok := recv.(*types.ClassType); ok {
		members := a.info.Classes[class].Members
		if field := members.LookupLocal(name); field != nil {
			field.MarkUsed()
			a.info.Refs[expr] = field
			return a.resolveVariable(field, expr.Member.Pos()), nil
		}
		if members.Functions[name] != nil {
			a.errorf(expr.Member.Pos(), "function invocation '%s()' expected", name)
		}
		a.errorf(expr.Member.Pos(), "unresolved reference: %s", name)
	}

	if prop := builtinPropertyOf(recv, name); prop != nil {
		a.info.Refs[expr] = prop
		return prop.Type, nil
	}
	if builtinMethod(recv, name) != nil {
		a.errorf(expr.Member.Pos(), "function invocation '%s()' expected", name)
	}
	a.errorf(expr.Member.Pos(), "unresolved reference: %s", name)
	return nil, nil
}

func (a *Analyzer) VisitIndexExpr(expr *ast.IndexExpr) (interface{}, error) {
	obj := a.check(expr.Object)
	arr, ok := obj.(*types.ArrayType)
	if !ok {
		a.errorf(expr.LeftBracket.Position, "no 'get' operator providing index access on %s", obj)
	}
	if t := a.check(expr.Index); !t.Equals(types.Int) {
		a.errorf(expr.Index.Pos(), "type mismatch: inferred type is %s but Int was expected", t)
	}
	return arr.Elem, nil
}

// VisitAssignmentExpr is only reached for assignments in value
// position. Statement assignments go through checkAssignment.
func (a *Analyzer) VisitAssignmentExpr(expr *ast.AssignmentExpr) (interface{}, error) {
	a.errorf(expr.Operator.Position, "assignments are not expressions, and only expressions are allowed in this context")
	return nil, nil
}

var compoundOperators = map[lexer.TokenType]string{
	lexer.TokenPlusEq:    "+",
	lexer.TokenMinusEq:   "-",
	lexer.TokenStarEq:    "*",
	lexer.TokenSlashEq:   "/",
	lexer.TokenPercentEq: "%",
}

func (a *Analyzer) checkAssignment(expr *ast.AssignmentExpr) {
	if id, ok := expr.Target.(*ast.IdentifierExpr); ok && expr.Operator.Type == lexer.TokenAssign {
		a.checkVariableAssignment(expr, id)
		return
	}

	target := a.checkTarget(expr.Target)
	value := a.check(expr.Value)
	a.info.Types[expr] = types.Unit

	if expr.Operator.Type == lexer.TokenAssign {
		a.requireAssignable(value, target, expr.Value.Pos())
		return
	}

	var result types.Type = types.Invalid
	if expr.Operator.Type == lexer.TokenPlusEq && target.Equals(types.String) {
		if types.Printable(value) {
			result = types.String
		}
	} else {
		result = types.Promote(target, value)
	}
	if !types.IsValid(result) {
		a.operatorError(expr.Operator, target, value)
	}
	if !result.Equals(target) {
		a.errorf(expr.Operator.Position, "type mismatch: %s %s %s yields %s, which cannot be assigned to %s",
			target, compoundOperators[expr.Operator.Type], value, result, target)
	}
}

// checkVariableAssignment checks name = value. The value is checked
// before the name counts as assigned, so it cannot read the name if this
// is the first assignment.
func (a *Analyzer) checkVariableAssignment(expr *ast.AssignmentExpr, id *ast.IdentifierExpr) {
	sym := a.resolveName(id)
	target := a.typeOfSymbol(sym, id.Pos())
	a.info.Types[id] = target
	value := a.check(expr.Value)
	a.info.Types[expr] = types.Unit
	a.requireAssignable(value, target, expr.Value.Pos())
	a.assign(sym, id.Pos())
}

func isAssignment(expr ast.Expr) bool {
	_, ok := expr.(*ast.AssignmentExpr)
	return ok
}

// checkTarget checks the left side of an assignment or an increment
// and returns its type.
func (a *Analyzer) checkTarget(target ast.Expr) types.Type {
	switch e := target.(type) {
	case *ast.IdentifierExpr:
		t := a.check(e)
		if sym := a.info.Refs[e]; !sym.CanAssign() {
			a.errorf(e.Pos(), "val cannot be reassigned")
		}
		return t

	case *ast.MemberExpr:
		t := a.check(e)
		if sym := a.info.Refs[e]; !sym.CanAssign() {
			a.errorf(e.Member.Pos(), "val cannot be reassigned")
		}
		return t

	case *ast.IndexExpr:
		return a.check(e)

	case *ast.GroupingExpr:
		return a.checkTarget(e.Expr)
	}
	a.errorf(target.Pos(), "variable expected")
	return nil
}

func (a *Analyzer) VisitArrayLiteralExpr(expr *ast.ArrayLiteralExpr) (interface{}, error) {
	var elem types.Type
	if expr.ElementType != nil {
		elem = a.resolveType(expr.ElementType, a.ctx.scope)
	}
	for _, el := range expr.Elements {
		t := a.check(el)
		if elem == nil {
			elem = t
		} else {
			a.requireAssignable(t, elem, el.Pos())
		}
	}
	if elem == nil {
		a.errorf(expr.Pos(), "not enough information to infer type variable T")
	}
	return types.NewArray(elem), nil
}

func (a *Analyzer) VisitIfExpr(expr *ast.IfExpr) (interface{}, error) {
	return a.checkIf(expr, true), nil
}

// checkIf checks a conditional. Used as a value it needs an else
// branch, and its type is the common type of the branches that do not
// jump away.
func (a *Analyzer) checkIf(expr *ast.IfExpr, asValue bool) types.Type {
	a.requireBoolean(expr.Condition)

	if !asValue {
		thenFlow := a.branch(func() { a.checkNested(expr.Then) })
		elseFlow, elseJumps := a.flow, false
		if expr.Else != nil {
			elseFlow = a.branch(func() { a.checkNested(expr.Else) })
			elseJumps = terminates(expr.Else)
		}
		a.flow = join(thenFlow, elseFlow, terminates(expr.Then), elseJumps)
		return types.Unit
	}

	if expr.Else == nil {
		a.errorf(expr.Pos(), "'if' must have both main and 'else' branches if used as an expression")
	}
	var thenType, elseType types.Type
	var thenJumps, elseJumps bool
	thenFlow := a.branch(func() { thenType, thenJumps = a.branchValue(expr.Then) })
	elseFlow := a.branch(func() { elseType, elseJumps = a.branchValue(expr.Else) })
	a.flow = join(thenFlow, elseFlow, thenJumps, elseJumps)

	switch {
	case thenJumps && elseJumps:
		return types.Unit
	case thenJumps:
		return elseType
	case elseJumps:
		return thenType
	}
	if !thenType.Equals(elseType) {
		a.errorf(expr.Pos(), "type mismatch: 'if' branches have types %s and %s", thenType, elseType)
	}
	return thenType
}

// branchValue checks one branch of a value if. The value of a block is
// its last expression statement, or Unit. jumps is set when the branch
// never completes normally.
func (a *Analyzer) branchValue(branch ast.Stmt) (t types.Type, jumps bool) {
	switch s := branch.(type) {
	case *ast.ExprStmt:
		return a.check(s.Expression), false

	case *ast.BlockStmt:
		a.enterScope(symtab.ScopeBlock)
		defer a.exitScope()
		n := len(s.Statements)
		if n == 0 {
			return types.Unit, false
		}
		for _, stmt := range s.Statements[:n-1] {
			a.checkStmt(stmt)
		}
		if last, ok := s.Statements[n-1].(*ast.ExprStmt); ok && !isAssignment(last.Expression) {
			return a.check(last.Expression), terminates(s)
		}
		a.checkStmt(s.Statements[n-1])
		return types.Unit, terminates(s)
	}

	a.enterScope(symtab.ScopeBlock)
	defer a.exitScope()
	a.checkStmt(branch)
	return types.Unit, terminates(branch)
}
