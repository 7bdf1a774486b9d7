// Package ast defines the syntax tree produced by the parser.
//
// Every node owns its children; there is no sharing between subtrees.
// Semantic analysis and evaluation attach their results in side tables
// keyed by node pointer. Only the optimizer rewrites nodes in place.
package ast

import (
	"github.com/hassan/kotlinc/internal/lexer"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() lexer.Position
	End() lexer.Position
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	Accept(v Visitor) (interface{}, error)
	exprNode()
}

// Stmt is a node executed for its effect.
type Stmt interface {
	Node
	Accept(v Visitor) error
	stmtNode()
}

// Decl is a statement that introduces a name.
type Decl interface {
	Stmt
	DeclName() string
	declNode()
}

// Visitor dispatches over all concrete node types.
type Visitor interface {
	VisitLiteralExpr(expr *LiteralExpr) (interface{}, error)
	VisitTemplateExpr(expr *TemplateExpr) (interface{}, error)
	VisitIdentifierExpr(expr *IdentifierExpr) (interface{}, error)
	VisitThisExpr(expr *ThisExpr) (interface{}, error)
	VisitGroupingExpr(expr *GroupingExpr) (interface{}, error)
	VisitUnaryExpr(expr *UnaryExpr) (interface{}, error)
	VisitBinaryExpr(expr *BinaryExpr) (interface{}, error)
	VisitRangeExpr(expr *RangeExpr) (interface{}, error)
	VisitInfixCallExpr(expr *InfixCallExpr) (interface{}, error)
	VisitCallExpr(expr *CallExpr) (interface{}, error)
	VisitMemberExpr(expr *MemberExpr) (interface{}, error)
	VisitIndexExpr(expr *IndexExpr) (interface{}, error)
	VisitAssignmentExpr(expr *AssignmentExpr) (interface{}, error)
	VisitArrayLiteralExpr(expr *ArrayLiteralExpr) (interface{}, error)
	VisitIfExpr(expr *IfExpr) (interface{}, error)

	VisitExprStmt(stmt *ExprStmt) error
	VisitBlockStmt(stmt *BlockStmt) error
	VisitForStmt(stmt *ForStmt) error
	VisitWhileStmt(stmt *WhileStmt) error
	VisitDoWhileStmt(stmt *DoWhileStmt) error
	VisitReturnStmt(stmt *ReturnStmt) error
	VisitBreakStmt(stmt *BreakStmt) error
	VisitContinueStmt(stmt *ContinueStmt) error

	VisitPropertyDecl(decl *PropertyDecl) error
	VisitFunDecl(decl *FunDecl) error
	VisitClassDecl(decl *ClassDecl) error
}

// Program is the root of a parsed source file.
type Program struct {
	Filename string
	Decls    []Decl
	EOF      lexer.Position
}

func (p *Program) Pos() lexer.Position {
	if len(p.Decls) > 0 {
		return p.Decls[0].Pos()
	}
	return p.EOF
}

func (p *Program) End() lexer.Position { return p.EOF }

// Function returns the first top-level function named name, or nil.
func (p *Program) Function(name string) *FunDecl {
	for _, d := range p.Decls {
		if fn, ok := d.(*FunDecl); ok && fn.Name.Name == name {
			return fn
		}
	}
	return nil
}

// TypeRef is a type annotation such as Int or Array<Array<Int>>.
type TypeRef struct {
	Name   lexer.Token
	Args   []*TypeRef
	EndPos lexer.Position
}

func (t *TypeRef) Pos() lexer.Position { return t.Name.Position }
func (t *TypeRef) End() lexer.Position { return t.EndPos }

// String renders the annotation in source form.
func (t *TypeRef) String() string {
	s := t.Name.Lexeme
	if len(t.Args) == 0 {
		return s
	}
	s += "<"
	for i, a := range t.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// Param is a function parameter "name: Type".
type Param struct {
	Name *IdentifierExpr
	Type *TypeRef
}

func (p *Param) Pos() lexer.Position { return p.Name.Pos() }
func (p *Param) End() lexer.Position { return p.Type.End() }
