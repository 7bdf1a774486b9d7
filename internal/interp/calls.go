package interp

import (
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
	"github.com/hassan/kotlinc/internal/symtab"
)

// VisitCallExpr dispatches on the symbol the analyzer bound to the
// call: a built-in, a function, a method or a class constructor.
func (i *Interpreter) VisitCallExpr(expr *ast.CallExpr) (interface{}, error) {
	sym := i.info.Refs[expr]
	pos := expr.Pos()

	switch sym.Kind {
	case symtab.SymbolClass:
		v, ok := i.env.Lookup(sym)
		if !ok {
			return nil, runtimeErrorf(pos, "class '%s' is not bound", sym.Name)
		}
		return i.construct(v.(*Class), pos)

	case symtab.SymbolFunction:
		v, ok := i.env.Lookup(sym)
		if !ok {
			return nil, runtimeErrorf(pos, "function '%s' is not bound", sym.Name)
		}
		args, err := i.evalArgs(expr.Args)
		if err != nil {
			return nil, err
		}
		fn := v.(*Function)
		return i.invoke(fn.Decl, fn.Closure, nil, args, pos)

	case symtab.SymbolMethod:
		var obj *ObjectValue
		if member, ok := expr.Callee.(*ast.MemberExpr); ok {
			recv, err := i.eval(member.Object)
			if err != nil {
				return nil, err
			}
			obj = recv.(*ObjectValue)
		} else {
			recv, err := i.receiver(sym, pos)
			if err != nil {
				return nil, err
			}
			obj = recv
		}
		args, err := i.evalArgs(expr.Args)
		if err != nil {
			return nil, err
		}
		return i.invoke(sym.Decl.(*ast.FunDecl), obj.Class.Closure, obj, args, pos)

	case symtab.SymbolBuiltin:
		if member, ok := expr.Callee.(*ast.MemberExpr); ok {
			recv, err := i.eval(member.Object)
			if err != nil {
				return nil, err
			}
			return i.callMember(sym, recv, member.Member.Pos())
		}
		args, err := i.evalArgs(expr.Args)
		if err != nil {
			return nil, err
		}
		return i.callBuiltin(sym, args, pos)
	}
	return nil, runtimeErrorf(pos, "'%s' cannot be called", sym.Name)
}

func (i *Interpreter) evalArgs(exprs []ast.Expr) ([]Value, error) {
	args := make([]Value, len(exprs))
	for idx, e := range exprs {
		v, err := i.eval(e)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

func (i *Interpreter) callBuiltin(sym *symtab.Symbol, args []Value, pos lexer.Position) (Value, error) {
	var text string
	if len(args) > 0 {
		text = Format(args[0])
	}
	switch sym.Name {
	case semantic.BuiltinPrintln:
		text += "\n"
	case semantic.BuiltinPrint:
	default:
		return nil, runtimeErrorf(pos, "unknown function %s", sym.Name)
	}
	if err := i.write(text); err != nil {
		return nil, err
	}
	return UnitValue{}, nil
}

func (i *Interpreter) callMember(sym *symtab.Symbol, recv Value, pos lexer.Position) (Value, error) {
	switch sym.Name {
	case semantic.BuiltinToInt:
		return ToInt(recv), nil
	case semantic.BuiltinToDouble:
		return ToDouble(recv), nil
	case semantic.BuiltinToFloat:
		return ToFloat(recv), nil
	case semantic.BuiltinToString:
		return StringValue{Val: Format(recv)}, nil
	}
	return nil, runtimeErrorf(pos, "unknown member function %s", sym.Name)
}
