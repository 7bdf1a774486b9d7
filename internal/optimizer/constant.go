package optimizer

import (
	"math"

	"github.com/hassan/kotlinc/internal/interp"
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
	"github.com/hassan/kotlinc/internal/semantic/types"
)

// ConstantFoldingPass replaces operations over literals with their
// result.
//
//	Before:  val x = (2 + 3) * 4
//	After:   val x = 20
//
// Values are computed with the interpreter's own operators, so a folded
// program prints exactly what the unfolded one would. An operation whose
// evaluation fails (integer division by zero) or whose result has no
// literal form (NaN, infinities) is left for the interpreter.
type ConstantFoldingPass struct{}

// Name returns the name of this optimization pass.
func (c *ConstantFoldingPass) Name() string {
	return PassConstantFolding
}

// Run folds every foldable expression in prog.
func (c *ConstantFoldingPass) Run(prog *ast.Program, info *semantic.Info, stats *Stats) (bool, error) {
	f := &folder{info: info}
	for _, decl := range prog.Decls {
		f.stmt(decl)
	}
	stats.ConstantsFolded += f.folded
	return f.folded > 0, nil
}

type folder struct {
	info   *semantic.Info
	folded int
}

func (f *folder) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		s.Expression = f.expr(s.Expression)
	case *ast.BlockStmt:
		for _, inner := range s.Statements {
			f.stmt(inner)
		}
	case *ast.ForStmt:
		s.Iterable = f.expr(s.Iterable)
		f.stmt(s.Body)
	case *ast.WhileStmt:
		s.Condition = f.expr(s.Condition)
		f.stmt(s.Body)
	case *ast.DoWhileStmt:
		f.stmt(s.Body)
		s.Condition = f.expr(s.Condition)
	case *ast.ReturnStmt:
		if s.Value != nil {
			s.Value = f.expr(s.Value)
		}
	case *ast.PropertyDecl:
		if s.Value != nil {
			s.Value = f.expr(s.Value)
		}
	case *ast.FunDecl:
		if s.Body != nil {
			f.stmt(s.Body)
		} else {
			s.ExprBody = f.expr(s.ExprBody)
		}
	case *ast.ClassDecl:
		for _, m := range s.Members {
			f.stmt(m)
		}
	}
}

// expr folds the children of e and then e itself. Nodes that denote
// locations (identifiers, member and index accesses) are never
// replaced, so assignment targets stay valid.
func (f *folder) expr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.TemplateExpr:
		for i, part := range e.Parts {
			e.Parts[i] = f.expr(part)
		}
		return f.foldTemplate(e)
	case *ast.GroupingExpr:
		e.Expr = f.expr(e.Expr)
	case *ast.UnaryExpr:
		e.Operand = f.expr(e.Operand)
		return f.foldUnary(e)
	case *ast.BinaryExpr:
		e.Left = f.expr(e.Left)
		e.Right = f.expr(e.Right)
		return f.foldBinary(e)
	case *ast.RangeExpr:
		e.Low = f.expr(e.Low)
		e.High = f.expr(e.High)
	case *ast.InfixCallExpr:
		e.Left = f.expr(e.Left)
		e.Right = f.expr(e.Right)
	case *ast.CallExpr:
		e.Callee = f.expr(e.Callee)
		for i, arg := range e.Args {
			e.Args[i] = f.expr(arg)
		}
	case *ast.MemberExpr:
		e.Object = f.expr(e.Object)
	case *ast.IndexExpr:
		e.Object = f.expr(e.Object)
		e.Index = f.expr(e.Index)
	case *ast.AssignmentExpr:
		e.Target = f.expr(e.Target)
		e.Value = f.expr(e.Value)
	case *ast.ArrayLiteralExpr:
		for i, elem := range e.Elements {
			e.Elements[i] = f.expr(elem)
		}
	case *ast.IfExpr:
		e.Condition = f.expr(e.Condition)
		f.stmt(e.Then)
		if e.Else != nil {
			f.stmt(e.Else)
		}
	}
	return e
}

// literalOf looks through parentheses for a literal.
func literalOf(e ast.Expr) (*ast.LiteralExpr, bool) {
	for {
		switch x := e.(type) {
		case *ast.LiteralExpr:
			return x, true
		case *ast.GroupingExpr:
			e = x.Expr
		default:
			return nil, false
		}
	}
}

func (f *folder) foldUnary(e *ast.UnaryExpr) ast.Expr {
	lit, ok := literalOf(e.Operand)
	if !ok {
		return e
	}
	v := interp.LiteralValue(lit)

	var result interp.Value
	var err error
	switch e.Operator.Type {
	case lexer.TokenMinus:
		result, err = interp.Negate(v)
	case lexer.TokenNot:
		result, err = interp.Not(v)
	case lexer.TokenPlus:
		result = v
	default:
		return e
	}
	if err != nil {
		return e
	}
	return f.replace(e, result)
}

func (f *folder) foldBinary(e *ast.BinaryExpr) ast.Expr {
	left, ok := literalOf(e.Left)
	if !ok {
		return e
	}
	lv := interp.LiteralValue(left)
	op := e.Operator.Type

	if op == lexer.TokenAnd || op == lexer.TokenOr {
		b, ok := lv.(interp.BoolValue)
		if !ok {
			return e
		}
		// false && x and true || x never evaluate x.
		if b.Val == (op == lexer.TokenOr) {
			return f.replace(e, b)
		}
		f.folded++
		return e.Right
	}

	right, ok := literalOf(e.Right)
	if !ok {
		return e
	}
	rv := interp.LiteralValue(right)

	var result interp.Value
	var err error
	switch op {
	case lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		result, err = interp.Arithmetic(op, lv, rv)
	case lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenGreater, lexer.TokenGreaterEqual:
		result, err = interp.Compare(op, lv, rv)
	case lexer.TokenEqual, lexer.TokenIdentical:
		result = interp.BoolValue{Val: interp.Equal(lv, rv)}
	case lexer.TokenNotEqual, lexer.TokenNotIdentical:
		result = interp.BoolValue{Val: !interp.Equal(lv, rv)}
	default:
		return e
	}
	if err != nil {
		return e
	}
	return f.replace(e, result)
}

func (f *folder) foldTemplate(e *ast.TemplateExpr) ast.Expr {
	var text string
	for _, part := range e.Parts {
		lit, ok := literalOf(part)
		if !ok {
			return e
		}
		text += interp.Format(interp.LiteralValue(lit))
	}
	return f.replace(e, interp.StringValue{Val: text})
}

// replace returns the literal for v, typed in info, or e unchanged when
// v has no literal form.
func (f *folder) replace(e ast.Expr, v interp.Value) ast.Expr {
	lit, t := literal(v, e.Pos())
	if lit == nil {
		return e
	}
	f.info.Types[lit] = t
	f.folded++
	return lit
}

func literal(v interp.Value, pos lexer.Position) (*ast.LiteralExpr, types.Type) {
	tok := lexer.Token{Position: pos}
	switch v := v.(type) {
	case interp.IntValue:
		tok.Type = lexer.TokenInt
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralInt, Value: v.Val}, types.Int
	case interp.DoubleValue:
		if math.IsNaN(v.Val) || math.IsInf(v.Val, 0) {
			return nil, nil
		}
		tok.Type = lexer.TokenDouble
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralDouble, Value: v.Val}, types.Double
	case interp.FloatValue:
		if math.IsNaN(float64(v.Val)) || math.IsInf(float64(v.Val), 0) {
			return nil, nil
		}
		tok.Type = lexer.TokenFloat
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralFloat, Value: v.Val}, types.Float
	case interp.BoolValue:
		tok.Type = lexer.TokenFalse
		if v.Val {
			tok.Type = lexer.TokenTrue
		}
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralBool, Value: v.Val}, types.Boolean
	case interp.StringValue:
		tok.Type = lexer.TokenString
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralString, Value: v.Val}, types.String
	}
	return nil, nil
}
