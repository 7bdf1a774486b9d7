package optimizer

import (
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
)

// DeadCodeEliminationPass removes statements that can never run.
//
//	Before:  return x
//	         println(x)    // unreachable
//	After:   return x
//
// It drops statements that follow a return, break or continue in the
// same block, while loops whose condition is the literal false, and the
// untaken branch of a statement-level if whose condition is a literal.
// The pass walks statement lists only. Blocks inside if expressions whose
// value is used are left alone, since their last statement supplies the
// value.
type DeadCodeEliminationPass struct{}

// Name returns the name of this optimization pass.
func (d *DeadCodeEliminationPass) Name() string {
	return PassDeadCode
}

// Run removes dead statements from every function body in prog.
func (d *DeadCodeEliminationPass) Run(prog *ast.Program, _ *semantic.Info, stats *Stats) (bool, error) {
	e := &eliminator{}
	for _, decl := range prog.Decls {
		e.decl(decl)
	}
	stats.StatementsRemoved += e.removed
	return e.removed > 0, nil
}

type eliminator struct {
	removed int
}

func (e *eliminator) decl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.FunDecl:
		if d.Body != nil {
			e.block(d.Body)
		}
	case *ast.ClassDecl:
		for _, m := range d.Methods {
			e.decl(m)
		}
	}
}

func (e *eliminator) block(b *ast.BlockStmt) {
	b.Statements = e.list(b.Statements)
}

func (e *eliminator) list(stmts []ast.Stmt) []ast.Stmt {
	out := stmts[:0]
	for i, s := range stmts {
		s = e.stmt(s)
		if s == nil {
			e.removed++
			continue
		}
		out = append(out, s)
		if jumps(s) {
			e.removed += len(stmts) - i - 1
			break
		}
	}
	// Release the dropped tail of the backing array.
	for i := len(out); i < len(stmts); i++ {
		stmts[i] = nil
	}
	return out
}

// stmt simplifies s and returns its replacement, or nil when s is
// removed entirely.
func (e *eliminator) stmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.BlockStmt:
		e.block(s)
	case *ast.ExprStmt:
		if ifx, ok := s.Expression.(*ast.IfExpr); ok {
			return e.ifStmt(s, ifx)
		}
	case *ast.ForStmt:
		s.Body = e.body(s.Body)
	case *ast.WhileStmt:
		if cond, ok := literalBool(s.Condition); ok && !cond {
			return nil
		}
		s.Body = e.body(s.Body)
	case *ast.DoWhileStmt:
		s.Body = e.body(s.Body)
	case *ast.FunDecl:
		e.decl(s)
	case *ast.ClassDecl:
		e.decl(s)
	}
	return s
}

// body simplifies a loop or branch body. A body that is removed becomes
// an empty block so the enclosing statement stays well formed.
func (e *eliminator) body(s ast.Stmt) ast.Stmt {
	if r := e.stmt(s); r != nil {
		return r
	}
	e.removed++
	return synthBlock(s, nil)
}

func (e *eliminator) ifStmt(s *ast.ExprStmt, ifx *ast.IfExpr) ast.Stmt {
	cond, ok := literalBool(ifx.Condition)
	if !ok {
		ifx.Then = e.body(ifx.Then)
		if ifx.Else != nil {
			ifx.Else = e.body(ifx.Else)
		}
		return s
	}

	taken, dropped := ifx.Then, ifx.Else
	if !cond {
		taken, dropped = ifx.Else, ifx.Then
	}
	if taken == nil {
		return nil
	}
	if dropped != nil {
		e.removed++
	}
	// The branch keeps its own scope.
	block, ok := taken.(*ast.BlockStmt)
	if !ok {
		block = synthBlock(taken, []ast.Stmt{taken})
	}
	e.block(block)
	return block
}

// synthBlock builds a block spanning at, holding stmts.
func synthBlock(at ast.Node, stmts []ast.Stmt) *ast.BlockStmt {
	return &ast.BlockStmt{
		LeftBrace:  lexer.Token{Type: lexer.TokenLeftBrace, Lexeme: "{", Position: at.Pos()},
		Statements: stmts,
		RightBrace: lexer.Token{Type: lexer.TokenRightBrace, Lexeme: "}", Position: at.End()},
	}
}

// jumps reports whether control never falls through s.
func jumps(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	}
	return false
}

func literalBool(e ast.Expr) (bool, bool) {
	lit, ok := literalOf(e)
	if !ok || lit.Kind != ast.LiteralBool {
		return false, false
	}
	return lit.Value.(bool), true
}
