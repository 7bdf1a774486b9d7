package ast

import (
	"github.com/hassan/kotlinc/internal/lexer"
)

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Expression Expr
}

func (e *ExprStmt) Pos() lexer.Position { return e.Expression.Pos() }
func (e *ExprStmt) End() lexer.Position { return e.Expression.End() }
func (e *ExprStmt) stmtNode()           {}
func (e *ExprStmt) Accept(v Visitor) error {
	return v.VisitExprStmt(e)
}

// BlockStmt is { statements }. It opens a new frame.
type BlockStmt struct {
	LeftBrace  lexer.Token
	Statements []Stmt
	RightBrace lexer.Token
}

func (b *BlockStmt) Pos() lexer.Position { return b.LeftBrace.Position }
func (b *BlockStmt) End() lexer.Position { return b.RightBrace.Span().End }
func (b *BlockStmt) stmtNode()           {}
func (b *BlockStmt) Accept(v Visitor) error {
	return v.VisitBlockStmt(b)
}

// ForStmt is for (name in iterable) body. The loop variable is a fresh
// read-only binding in every iteration.
type ForStmt struct {
	ForPos   lexer.Position
	Variable *IdentifierExpr
	VarType  *TypeRef
	Iterable Expr
	Body     Stmt
}

func (f *ForStmt) Pos() lexer.Position { return f.ForPos }
func (f *ForStmt) End() lexer.Position { return f.Body.End() }
func (f *ForStmt) stmtNode()           {}
func (f *ForStmt) Accept(v Visitor) error {
	return v.VisitForStmt(f)
}

// WhileStmt is while (cond) body.
type WhileStmt struct {
	WhilePos  lexer.Position
	Condition Expr
	Body      Stmt
}

func (w *WhileStmt) Pos() lexer.Position { return w.WhilePos }
func (w *WhileStmt) End() lexer.Position { return w.Body.End() }
func (w *WhileStmt) stmtNode()           {}
func (w *WhileStmt) Accept(v Visitor) error {
	return v.VisitWhileStmt(w)
}

// DoWhileStmt is do body while (cond).
type DoWhileStmt struct {
	DoPos      lexer.Position
	Body       Stmt
	Condition  Expr
	RightParen lexer.Token
}

func (d *DoWhileStmt) Pos() lexer.Position { return d.DoPos }
func (d *DoWhileStmt) End() lexer.Position { return d.RightParen.Span().End }
func (d *DoWhileStmt) stmtNode()           {}
func (d *DoWhileStmt) Accept(v Visitor) error {
	return v.VisitDoWhileStmt(d)
}

// ReturnStmt is return [value].
type ReturnStmt struct {
	Keyword lexer.Token
	Value   Expr
}

func (r *ReturnStmt) Pos() lexer.Position { return r.Keyword.Position }
func (r *ReturnStmt) End() lexer.Position {
	if r.Value != nil {
		return r.Value.End()
	}
	return r.Keyword.Span().End
}
func (r *ReturnStmt) stmtNode() {}
func (r *ReturnStmt) Accept(v Visitor) error {
	return v.VisitReturnStmt(r)
}

// BreakStmt exits the innermost loop.
type BreakStmt struct {
	Keyword lexer.Token
}

func (b *BreakStmt) Pos() lexer.Position { return b.Keyword.Position }
func (b *BreakStmt) End() lexer.Position { return b.Keyword.Span().End }
func (b *BreakStmt) stmtNode()           {}
func (b *BreakStmt) Accept(v Visitor) error {
	return v.VisitBreakStmt(b)
}

// ContinueStmt skips to the next iteration of the innermost loop.
type ContinueStmt struct {
	Keyword lexer.Token
}

func (c *ContinueStmt) Pos() lexer.Position { return c.Keyword.Position }
func (c *ContinueStmt) End() lexer.Position { return c.Keyword.Span().End }
func (c *ContinueStmt) stmtNode()           {}
func (c *ContinueStmt) Accept(v Visitor) error {
	return v.VisitContinueStmt(c)
}

// PropertyDecl is val/var name [: Type] [= value]. It is used for
// top-level properties, class properties and local variables. Value is
// nil when the declaration has no initializer; Type is then set.
type PropertyDecl struct {
	Keyword lexer.Token
	Name    *IdentifierExpr
	Type    *TypeRef
	Value   Expr
}

// Mutable reports whether the property was declared with var.
func (p *PropertyDecl) Mutable() bool { return p.Keyword.Type == lexer.TokenVar }

func (p *PropertyDecl) Pos() lexer.Position { return p.Keyword.Position }
func (p *PropertyDecl) End() lexer.Position {
	if p.Value == nil {
		return p.Type.End()
	}
	return p.Value.End()
}
func (p *PropertyDecl) DeclName() string    { return p.Name.Name }
func (p *PropertyDecl) stmtNode()           {}
func (p *PropertyDecl) declNode()           {}
func (p *PropertyDecl) Accept(v Visitor) error {
	return v.VisitPropertyDecl(p)
}

// FunDecl is a function or method. Exactly one of Body and ExprBody is
// set. ReturnType is nil when omitted.
type FunDecl struct {
	Keyword    lexer.Token
	Name       *IdentifierExpr
	Params     []*Param
	ReturnType *TypeRef
	Body       *BlockStmt
	ExprBody   Expr
}

func (f *FunDecl) Pos() lexer.Position { return f.Keyword.Position }
func (f *FunDecl) End() lexer.Position {
	if f.Body != nil {
		return f.Body.End()
	}
	return f.ExprBody.End()
}
func (f *FunDecl) DeclName() string { return f.Name.Name }
func (f *FunDecl) stmtNode()        {}
func (f *FunDecl) declNode()        {}
func (f *FunDecl) Accept(v Visitor) error {
	return v.VisitFunDecl(f)
}

// ClassDecl is class Name { members }. Members keeps source order;
// Properties and Methods are the same nodes split by kind.
type ClassDecl struct {
	Keyword    lexer.Token
	Name       *IdentifierExpr
	Members    []Decl
	Properties []*PropertyDecl
	Methods    []*FunDecl
	EndPos     lexer.Position
}

func (c *ClassDecl) Pos() lexer.Position { return c.Keyword.Position }
func (c *ClassDecl) End() lexer.Position { return c.EndPos }
func (c *ClassDecl) DeclName() string    { return c.Name.Name }
func (c *ClassDecl) stmtNode()           {}
func (c *ClassDecl) declNode()           {}
func (c *ClassDecl) Accept(v Visitor) error {
	return v.VisitClassDecl(c)
}
