package ast

import (
	"github.com/hassan/kotlinc/internal/lexer"
)

// LiteralKind distinguishes the literal forms.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralDouble
	LiteralFloat
	LiteralString
	LiteralBool
)

// LiteralExpr is a constant: 42, 3.14, 0.5f, "text", true.
//
// Value holds int32, float64, float32, string or bool to match Kind.
type LiteralExpr struct {
	Token lexer.Token
	Kind  LiteralKind
	Value interface{}
}

func (l *LiteralExpr) Pos() lexer.Position { return l.Token.Position }
func (l *LiteralExpr) End() lexer.Position { return l.Token.Span().End }
func (l *LiteralExpr) exprNode()           {}
func (l *LiteralExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitLiteralExpr(l)
}

// TemplateExpr is a string with embedded expressions: "x = $x".
// Parts alternate freely between string literals and expressions.
type TemplateExpr struct {
	Token lexer.Token
	Parts []Expr
}

func (t *TemplateExpr) Pos() lexer.Position { return t.Token.Position }
func (t *TemplateExpr) End() lexer.Position { return t.Token.Span().End }
func (t *TemplateExpr) exprNode()           {}
func (t *TemplateExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitTemplateExpr(t)
}

// IdentifierExpr is a name reference.
type IdentifierExpr struct {
	Token lexer.Token
	Name  string
}

func (i *IdentifierExpr) Pos() lexer.Position { return i.Token.Position }
func (i *IdentifierExpr) End() lexer.Position { return i.Token.Span().End }
func (i *IdentifierExpr) exprNode()           {}
func (i *IdentifierExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitIdentifierExpr(i)
}

// ThisExpr is the receiver reference inside a method or initializer.
type ThisExpr struct {
	Token lexer.Token
}

func (t *ThisExpr) Pos() lexer.Position { return t.Token.Position }
func (t *ThisExpr) End() lexer.Position { return t.Token.Span().End }
func (t *ThisExpr) exprNode()           {}
func (t *ThisExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitThisExpr(t)
}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	LeftParen  lexer.Token
	Expr       Expr
	RightParen lexer.Token
}

func (g *GroupingExpr) Pos() lexer.Position { return g.LeftParen.Position }
func (g *GroupingExpr) End() lexer.Position { return g.RightParen.Span().End }
func (g *GroupingExpr) exprNode()           {}
func (g *GroupingExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitGroupingExpr(g)
}

// UnaryExpr is a prefix (-x, !b, ++i) or postfix (i++, i--) operation.
type UnaryExpr struct {
	Operator  lexer.Token
	Operand   Expr
	IsPostfix bool
}

func (u *UnaryExpr) Pos() lexer.Position {
	if u.IsPostfix {
		return u.Operand.Pos()
	}
	return u.Operator.Position
}

func (u *UnaryExpr) End() lexer.Position {
	if u.IsPostfix {
		return u.Operator.Span().End
	}
	return u.Operand.End()
}

func (u *UnaryExpr) exprNode() {}
func (u *UnaryExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitUnaryExpr(u)
}

// BinaryExpr covers arithmetic, comparison, equality, identity, logical
// and membership (in, !in) operators.
type BinaryExpr struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

func (b *BinaryExpr) Pos() lexer.Position { return b.Left.Pos() }
func (b *BinaryExpr) End() lexer.Position { return b.Right.End() }
func (b *BinaryExpr) exprNode()           {}
func (b *BinaryExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitBinaryExpr(b)
}

// RangeExpr is an inclusive integer range: low..high.
type RangeExpr struct {
	Low      Expr
	Operator lexer.Token
	High     Expr
}

func (r *RangeExpr) Pos() lexer.Position { return r.Low.Pos() }
func (r *RangeExpr) End() lexer.Position { return r.High.End() }
func (r *RangeExpr) exprNode()           {}
func (r *RangeExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitRangeExpr(r)
}

// InfixCallExpr is a named infix call: 0 until n, n downTo 0, r step 2.
type InfixCallExpr struct {
	Left     Expr
	Function *IdentifierExpr
	Right    Expr
}

func (i *InfixCallExpr) Pos() lexer.Position { return i.Left.Pos() }
func (i *InfixCallExpr) End() lexer.Position { return i.Right.End() }
func (i *InfixCallExpr) exprNode()           {}
func (i *InfixCallExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitInfixCallExpr(i)
}

// CallExpr is a call of a function, constructor or method. Callee is an
// *IdentifierExpr for plain calls and a *MemberExpr for method calls.
type CallExpr struct {
	Callee     Expr
	LeftParen  lexer.Token
	Args       []Expr
	RightParen lexer.Token
}

func (c *CallExpr) Pos() lexer.Position { return c.Callee.Pos() }
func (c *CallExpr) End() lexer.Position { return c.RightParen.Span().End }
func (c *CallExpr) exprNode()           {}
func (c *CallExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitCallExpr(c)
}

// MemberExpr is a property or method selection: obj.name.
type MemberExpr struct {
	Object Expr
	Dot    lexer.Token
	Member *IdentifierExpr
}

func (m *MemberExpr) Pos() lexer.Position { return m.Object.Pos() }
func (m *MemberExpr) End() lexer.Position { return m.Member.End() }
func (m *MemberExpr) exprNode()           {}
func (m *MemberExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitMemberExpr(m)
}

// IndexExpr is an array element access: arr[i].
type IndexExpr struct {
	Object       Expr
	LeftBracket  lexer.Token
	Index        Expr
	RightBracket lexer.Token
}

func (i *IndexExpr) Pos() lexer.Position { return i.Object.Pos() }
func (i *IndexExpr) End() lexer.Position { return i.RightBracket.Span().End }
func (i *IndexExpr) exprNode()           {}
func (i *IndexExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitIndexExpr(i)
}

// AssignmentExpr is target = value or a compound form (+=, -=, ...).
// Target is an *IdentifierExpr, *MemberExpr or *IndexExpr.
type AssignmentExpr struct {
	Target   Expr
	Operator lexer.Token
	Value    Expr
}

func (a *AssignmentExpr) Pos() lexer.Position { return a.Target.Pos() }
func (a *AssignmentExpr) End() lexer.Position { return a.Value.End() }
func (a *AssignmentExpr) exprNode()           {}
func (a *AssignmentExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitAssignmentExpr(a)
}

// ArrayLiteralExpr is arrayOf<T>(e1, e2, ...). ElementType is nil when
// the type argument is omitted.
type ArrayLiteralExpr struct {
	Keyword     lexer.Token
	ElementType *TypeRef
	Elements    []Expr
	RightParen  lexer.Token
}

func (a *ArrayLiteralExpr) Pos() lexer.Position { return a.Keyword.Position }
func (a *ArrayLiteralExpr) End() lexer.Position { return a.RightParen.Span().End }
func (a *ArrayLiteralExpr) exprNode()           {}
func (a *ArrayLiteralExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitArrayLiteralExpr(a)
}

// IfExpr is if (cond) then [else otherwise]. Branches are a *BlockStmt or
// a single statement. Else is nil when absent.
type IfExpr struct {
	IfPos     lexer.Position
	Condition Expr
	Then      Stmt
	Else      Stmt
}

func (i *IfExpr) Pos() lexer.Position { return i.IfPos }
func (i *IfExpr) End() lexer.Position {
	if i.Else != nil {
		return i.Else.End()
	}
	return i.Then.End()
}
func (i *IfExpr) exprNode() {}
func (i *IfExpr) Accept(v Visitor) (interface{}, error) {
	return v.VisitIfExpr(i)
}
