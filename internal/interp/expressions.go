package interp

import (
	"errors"
	"strings"
	"unicode/utf16"

	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
	"github.com/hassan/kotlinc/internal/symtab"
)

// opError attaches a position to a failure from the operator helpers.
func opError(pos lexer.Position, err error) error {
	if errors.Is(err, ErrDivisionByZero) {
		return runtimeErrorf(pos, "/ by zero")
	}
	return runtimeErrorf(pos, "%s", err.Error())
}

func (i *Interpreter) VisitLiteralExpr(expr *ast.LiteralExpr) (interface{}, error) {
	return LiteralValue(expr), nil
}

func (i *Interpreter) VisitTemplateExpr(expr *ast.TemplateExpr) (interface{}, error) {
	var b strings.Builder
	for _, part := range expr.Parts {
		v, err := i.eval(part)
		if err != nil {
			return nil, err
		}
		b.WriteString(Format(v))
	}
	return StringValue{Val: b.String()}, nil
}

func (i *Interpreter) VisitIdentifierExpr(expr *ast.IdentifierExpr) (interface{}, error) {
	sym := i.info.Refs[expr]
	if sym.Kind == symtab.SymbolField {
		obj, err := i.receiver(sym, expr.Pos())
		if err != nil {
			return nil, err
		}
		return i.field(obj, sym, expr.Pos())
	}

	v, ok := i.env.Lookup(sym)
	if !ok {
		return nil, runtimeErrorf(expr.Pos(), "variable '%s' is read before it is initialized", sym.Name)
	}
	return v, nil
}

// receiver finds the implicit receiver owning member.
func (i *Interpreter) receiver(member *symtab.Symbol, pos lexer.Position) (*ObjectValue, error) {
	obj := i.env.Receiver(member.Owner)
	if obj == nil {
		return nil, runtimeErrorf(pos, "no receiver of type %s for '%s'", member.Owner.Name, member.Name)
	}
	return obj, nil
}

func (i *Interpreter) field(obj *ObjectValue, sym *symtab.Symbol, pos lexer.Position) (Value, error) {
	v := obj.Fields[sym.Index]
	if v == nil {
		return nil, runtimeErrorf(pos, "property '%s' is read before it is initialized", sym.Name)
	}
	return v, nil
}

func (i *Interpreter) VisitThisExpr(expr *ast.ThisExpr) (interface{}, error) {
	obj := i.env.This()
	if obj == nil {
		return nil, runtimeErrorf(expr.Pos(), "'this' is not bound")
	}
	return obj, nil
}

func (i *Interpreter) VisitGroupingExpr(expr *ast.GroupingExpr) (interface{}, error) {
	return i.eval(expr.Expr)
}

func (i *Interpreter) VisitUnaryExpr(expr *ast.UnaryExpr) (interface{}, error) {
	op := expr.Operator
	if op.Type == lexer.TokenPlusPlus || op.Type == lexer.TokenMinusMinus {
		return i.increment(expr)
	}

	v, err := i.eval(expr.Operand)
	if err != nil {
		return nil, err
	}
	var result Value
	switch op.Type {
	case lexer.TokenMinus:
		result, err = Negate(v)
	case lexer.TokenNot:
		result, err = Not(v)
	default:
		result = v
	}
	if err != nil {
		return nil, opError(op.Position, err)
	}
	return result, nil
}

func (i *Interpreter) increment(expr *ast.UnaryExpr) (Value, error) {
	loc, err := i.locate(expr.Operand)
	if err != nil {
		return nil, err
	}
	old, err := loc.get()
	if err != nil {
		return nil, err
	}
	delta := int32(1)
	if expr.Operator.Type == lexer.TokenMinusMinus {
		delta = -1
	}
	updated, err := Increment(old, delta)
	if err != nil {
		return nil, opError(expr.Operator.Position, err)
	}
	loc.set(updated)
	if expr.IsPostfix {
		return old, nil
	}
	return updated, nil
}

func (i *Interpreter) VisitBinaryExpr(expr *ast.BinaryExpr) (interface{}, error) {
	op := expr.Operator
	left, err := i.eval(expr.Left)
	if err != nil {
		return nil, err
	}

	switch op.Type {
	case lexer.TokenAnd:
		if !left.(BoolValue).Val {
			return left, nil
		}
		return i.eval(expr.Right)
	case lexer.TokenOr:
		if left.(BoolValue).Val {
			return left, nil
		}
		return i.eval(expr.Right)
	}

	right, err := i.eval(expr.Right)
	if err != nil {
		return nil, err
	}

	var result Value
	switch op.Type {
	case lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		result, err = Arithmetic(op.Type, left, right)
	case lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenGreater, lexer.TokenGreaterEqual:
		result, err = Compare(op.Type, left, right)
	case lexer.TokenEqual, lexer.TokenIdentical:
		result = BoolValue{Val: Equal(left, right)}
	case lexer.TokenNotEqual, lexer.TokenNotIdentical:
		result = BoolValue{Val: !Equal(left, right)}
	case lexer.TokenIn:
		result = BoolValue{Val: contains(right, left)}
	case lexer.TokenNotIn:
		result = BoolValue{Val: !contains(right, left)}
	default:
		return nil, runtimeErrorf(op.Position, "unknown operator %s", op.Lexeme)
	}
	if err != nil {
		return nil, opError(op.Position, err)
	}
	return result, nil
}

func contains(collection, elem Value) bool {
	switch c := collection.(type) {
	case RangeValue:
		return c.Contains(elem.(IntValue).Val)
	case *ArrayValue:
		for _, e := range c.Elements {
			if Equal(e, elem) {
				return true
			}
		}
	}
	return false
}

func (i *Interpreter) VisitRangeExpr(expr *ast.RangeExpr) (interface{}, error) {
	low, err := i.eval(expr.Low)
	if err != nil {
		return nil, err
	}
	high, err := i.eval(expr.High)
	if err != nil {
		return nil, err
	}
	return RangeValue{Start: low.(IntValue).Val, End: high.(IntValue).Val, Step: 1}, nil
}

func (i *Interpreter) VisitInfixCallExpr(expr *ast.InfixCallExpr) (interface{}, error) {
	left, err := i.eval(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(expr.Right)
	if err != nil {
		return nil, err
	}
	n := right.(IntValue).Val

	switch i.info.Refs[expr].Name {
	case semantic.BuiltinUntil:
		return Until(left.(IntValue).Val, n), nil
	case semantic.BuiltinDownTo:
		return DownTo(left.(IntValue).Val, n), nil
	case semantic.BuiltinStep:
		r, err := Step(left.(RangeValue), n)
		if err != nil {
			return nil, runtimeErrorf(expr.Function.Pos(), "%s", err.Error())
		}
		return r, nil
	}
	return nil, runtimeErrorf(expr.Function.Pos(), "unknown infix function %s", expr.Function.Name)
}

func (i *Interpreter) VisitMemberExpr(expr *ast.MemberExpr) (interface{}, error) {
	obj, err := i.eval(expr.Object)
	if err != nil {
		return nil, err
	}
	sym := i.info.Refs[expr]
	if sym.Kind == symtab.SymbolField {
		return i.field(obj.(*ObjectValue), sym, expr.Member.Pos())
	}

	switch sym.Name {
	case semantic.BuiltinSize:
		return IntValue{Val: int32(len(obj.(*ArrayValue).Elements))}, nil
	case semantic.BuiltinIndices:
		return RangeValue{Start: 0, End: int32(len(obj.(*ArrayValue).Elements)) - 1, Step: 1}, nil
	case semantic.BuiltinLength:
		return IntValue{Val: int32(len(utf16.Encode([]rune(obj.(StringValue).Val))))}, nil
	}
	return nil, runtimeErrorf(expr.Member.Pos(), "unknown property %s", sym.Name)
}

func (i *Interpreter) VisitIndexExpr(expr *ast.IndexExpr) (interface{}, error) {
	loc, err := i.locateIndex(expr)
	if err != nil {
		return nil, err
	}
	return loc.get()
}

func (i *Interpreter) VisitAssignmentExpr(expr *ast.AssignmentExpr) (interface{}, error) {
	if err := i.assign(expr); err != nil {
		return nil, err
	}
	return UnitValue{}, nil
}

func (i *Interpreter) VisitArrayLiteralExpr(expr *ast.ArrayLiteralExpr) (interface{}, error) {
	arr := &ArrayValue{Elements: make([]Value, len(expr.Elements))}
	for idx, el := range expr.Elements {
		v, err := i.eval(el)
		if err != nil {
			return nil, err
		}
		arr.Elements[idx] = v
	}
	return arr, nil
}

func (i *Interpreter) VisitIfExpr(expr *ast.IfExpr) (interface{}, error) {
	cond, err := i.eval(expr.Condition)
	if err != nil {
		return nil, err
	}
	switch {
	case cond.(BoolValue).Val:
		return i.branchValue(expr.Then)
	case expr.Else != nil:
		return i.branchValue(expr.Else)
	}
	return UnitValue{}, nil
}

// branchValue runs one branch of an if in its own frame. A block yields
// its last expression statement; anything else yields Unit.
func (i *Interpreter) branchValue(branch ast.Stmt) (Value, error) {
	stmts := []ast.Stmt{branch}
	if block, ok := branch.(*ast.BlockStmt); ok {
		stmts = block.Statements
	}
	if len(stmts) == 0 {
		return UnitValue{}, nil
	}

	saved := i.env
	i.env = NewEnv(i.env)
	defer func() { i.env = saved }()

	for _, stmt := range stmts[:len(stmts)-1] {
		if err := i.exec(stmt); err != nil {
			return nil, err
		}
	}
	last := stmts[len(stmts)-1]
	if es, ok := last.(*ast.ExprStmt); ok {
		if _, isAssign := es.Expression.(*ast.AssignmentExpr); !isAssign {
			return i.eval(es.Expression)
		}
	}
	if err := i.exec(last); err != nil {
		return nil, err
	}
	return UnitValue{}, nil
}

// Assignment

// location is a storage slot: a variable binding, a field or an array
// element.
type location struct {
	get func() (Value, error)
	set func(Value)
}

func (i *Interpreter) locate(target ast.Expr) (location, error) {
	switch e := target.(type) {
	case *ast.IdentifierExpr:
		sym := i.info.Refs[e]
		if sym.Kind == symtab.SymbolField {
			obj, err := i.receiver(sym, e.Pos())
			if err != nil {
				return location{}, err
			}
			return fieldLocation(i, obj, sym, e.Pos()), nil
		}
		env := i.env
		return location{
			get: func() (Value, error) {
				v, ok := env.Lookup(sym)
				if !ok {
					return nil, runtimeErrorf(e.Pos(), "variable '%s' is read before it is initialized", sym.Name)
				}
				return v, nil
			},
			set: func(v Value) {
				if !env.Assign(sym, v) && sym.IsGlobal() {
					i.globals.Define(sym, v)
				}
			},
		}, nil

	case *ast.MemberExpr:
		obj, err := i.eval(e.Object)
		if err != nil {
			return location{}, err
		}
		return fieldLocation(i, obj.(*ObjectValue), i.info.Refs[e], e.Member.Pos()), nil

	case *ast.IndexExpr:
		return i.locateIndex(e)

	case *ast.GroupingExpr:
		return i.locate(e.Expr)
	}
	return location{}, runtimeErrorf(target.Pos(), "invalid assignment target")
}

func fieldLocation(i *Interpreter, obj *ObjectValue, sym *symtab.Symbol, pos lexer.Position) location {
	return location{
		get: func() (Value, error) { return i.field(obj, sym, pos) },
		set: func(v Value) { obj.Fields[sym.Index] = v },
	}
}

func (i *Interpreter) locateIndex(expr *ast.IndexExpr) (location, error) {
	v, err := i.eval(expr.Object)
	if err != nil {
		return location{}, err
	}
	idx, err := i.eval(expr.Index)
	if err != nil {
		return location{}, err
	}
	arr := v.(*ArrayValue)
	n := idx.(IntValue).Val
	if n < 0 || int(n) >= len(arr.Elements) {
		return location{}, runtimeErrorf(expr.Index.Pos(), "Index %d out of bounds for length %d", n, len(arr.Elements))
	}
	return location{
		get: func() (Value, error) { return arr.Elements[n], nil },
		set: func(v Value) { arr.Elements[n] = v },
	}, nil
}

var compoundOps = map[lexer.TokenType]lexer.TokenType{
	lexer.TokenPlusEq:    lexer.TokenPlus,
	lexer.TokenMinusEq:   lexer.TokenMinus,
	lexer.TokenStarEq:    lexer.TokenStar,
	lexer.TokenSlashEq:   lexer.TokenSlash,
	lexer.TokenPercentEq: lexer.TokenPercent,
}

// assign evaluates the target's receiver or array and index first,
// then the value.
func (i *Interpreter) assign(expr *ast.AssignmentExpr) error {
	loc, err := i.locate(expr.Target)
	if err != nil {
		return err
	}

	if expr.Operator.Type == lexer.TokenAssign {
		v, err := i.eval(expr.Value)
		if err != nil {
			return err
		}
		loc.set(v)
		return nil
	}

	current, err := loc.get()
	if err != nil {
		return err
	}
	v, err := i.eval(expr.Value)
	if err != nil {
		return err
	}
	result, err := Arithmetic(compoundOps[expr.Operator.Type], current, v)
	if err != nil {
		return opError(expr.Operator.Position, err)
	}
	loc.set(result)
	return nil
}
