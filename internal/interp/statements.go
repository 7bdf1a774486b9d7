package interp

import (
	"github.com/hassan/kotlinc/internal/parser/ast"
)

func (i *Interpreter) exec(stmt ast.Stmt) error {
	return stmt.Accept(i)
}

// execBlock runs block in a new frame.
func (i *Interpreter) execBlock(block *ast.BlockStmt) error {
	return i.execIn(NewEnv(i.env), block.Statements)
}

func (i *Interpreter) execIn(env *Env, stmts []ast.Stmt) error {
	saved := i.env
	i.env = env
	defer func() { i.env = saved }()

	for _, stmt := range stmts {
		if err := i.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// execNested runs a control-flow body, always in its own frame.
func (i *Interpreter) execNested(body ast.Stmt) error {
	if block, ok := body.(*ast.BlockStmt); ok {
		return i.execBlock(block)
	}
	return i.execIn(NewEnv(i.env), []ast.Stmt{body})
}

func (i *Interpreter) VisitExprStmt(stmt *ast.ExprStmt) error {
	if assign, ok := stmt.Expression.(*ast.AssignmentExpr); ok {
		return i.assign(assign)
	}
	_, err := i.eval(stmt.Expression)
	return err
}

func (i *Interpreter) VisitBlockStmt(stmt *ast.BlockStmt) error {
	return i.execBlock(stmt)
}

// loopControl interprets the result of one iteration. It reports
// whether the loop should stop and passes on any other signal.
func loopControl(err error) (stop bool, _ error) {
	switch err.(type) {
	case nil, continueSignal:
		return false, nil
	case breakSignal:
		return true, nil
	}
	return true, err
}

func (i *Interpreter) VisitForStmt(stmt *ast.ForStmt) error {
	v, err := i.eval(stmt.Iterable)
	if err != nil {
		return err
	}
	sym := i.info.Refs[stmt]

	iteration := func(elem Value) (bool, error) {
		env := NewEnv(i.env)
		env.Define(sym, elem)
		saved := i.env
		i.env = env
		err := i.execNested(stmt.Body)
		i.env = saved
		return loopControl(err)
	}

	switch it := v.(type) {
	case RangeValue:
		var loopErr error
		it.Each(func(x int32) bool {
			stop, err := iteration(IntValue{Val: x})
			loopErr = err
			return !stop
		})
		return loopErr

	case *ArrayValue:
		for idx := 0; idx < len(it.Elements); idx++ {
			if stop, err := iteration(it.Elements[idx]); stop {
				return err
			}
		}
		return nil
	}
	return runtimeErrorf(stmt.Iterable.Pos(), "%s is not iterable", v.Kind())
}

func (i *Interpreter) VisitWhileStmt(stmt *ast.WhileStmt) error {
	for {
		cond, err := i.eval(stmt.Condition)
		if err != nil {
			return err
		}
		if !cond.(BoolValue).Val {
			return nil
		}
		if stop, err := loopControl(i.execIn(NewEnv(i.env), []ast.Stmt{stmt.Body})); stop {
			return err
		}
	}
}

// VisitDoWhileStmt evaluates the condition in the frame of the
// iteration, where the body's declarations are visible.
func (i *Interpreter) VisitDoWhileStmt(stmt *ast.DoWhileStmt) error {
	body := []ast.Stmt{stmt.Body}
	if block, ok := stmt.Body.(*ast.BlockStmt); ok {
		body = block.Statements
	}

	for {
		env := NewEnv(i.env)
		if stop, err := loopControl(i.execIn(env, body)); stop {
			return err
		}

		saved := i.env
		i.env = env
		cond, err := i.eval(stmt.Condition)
		i.env = saved
		if err != nil {
			return err
		}
		if !cond.(BoolValue).Val {
			return nil
		}
	}
}

func (i *Interpreter) VisitReturnStmt(stmt *ast.ReturnStmt) error {
	if stmt.Value == nil {
		return returnSignal{value: UnitValue{}}
	}
	v, err := i.eval(stmt.Value)
	if err != nil {
		return err
	}
	return returnSignal{value: v}
}

func (i *Interpreter) VisitBreakStmt(*ast.BreakStmt) error       { return breakSignal{} }
func (i *Interpreter) VisitContinueStmt(*ast.ContinueStmt) error { return continueSignal{} }

// VisitPropertyDecl binds a local. A local without an initializer is
// bound to nil; the analyzer has checked it is assigned before any read.
func (i *Interpreter) VisitPropertyDecl(decl *ast.PropertyDecl) error {
	if decl.Value == nil {
		i.env.Define(i.info.Refs[decl], nil)
		return nil
	}
	v, err := i.eval(decl.Value)
	if err != nil {
		return err
	}
	i.env.Define(i.info.Refs[decl], v)
	return nil
}

func (i *Interpreter) VisitFunDecl(decl *ast.FunDecl) error {
	i.bindFunction(decl)
	return nil
}

func (i *Interpreter) VisitClassDecl(decl *ast.ClassDecl) error {
	i.bindClass(decl)
	return nil
}
