package ast

import (
	"strconv"
	"strings"

	"github.com/hassan/kotlinc/internal/lexer"
)

// Print renders a node as canonical source text. Printing a parsed
// program, parsing the output and printing again yields the same text.
//
// FORMAT: top-level declarations each end with a newline and are
// separated by one blank line. There is no blank line at the end.
func Print(node Node) string {
	p := &printer{}
	switch n := node.(type) {
	case *Program:
		for i, d := range n.Decls {
			if i > 0 {
				p.buf.WriteString("\n")
			}
			p.stmt(d)
		}
	case Stmt:
		p.stmt(n)
	case Expr:
		p.buf.WriteString(p.expr(n))
	case *TypeRef:
		p.buf.WriteString(n.String())
	}
	return p.buf.String()
}

const indentUnit = "    "

type printer struct {
	buf    strings.Builder
	indent int
}

func (p *printer) line(s string) {
	p.buf.WriteString(strings.Repeat(indentUnit, p.indent))
	p.buf.WriteString(s)
	p.buf.WriteString("\n")
}

func (p *printer) stmt(s Stmt) {
	_ = s.Accept(p)
}

func (p *printer) expr(e Expr) string {
	v, _ := e.Accept(p)
	return v.(string)
}

// inline renders a statement that sits on the current line, such as the
// body of a single-statement loop or an if branch.
func (p *printer) inline(s Stmt) string {
	sub := &printer{indent: p.indent}
	_ = s.Accept(sub)
	return strings.TrimSuffix(strings.TrimLeft(sub.buf.String(), " "), "\n")
}

func (p *printer) VisitExprStmt(stmt *ExprStmt) error {
	if ifx, ok := stmt.Expression.(*IfExpr); ok {
		p.buf.WriteString(strings.Repeat(indentUnit, p.indent))
		p.buf.WriteString(p.ifText(ifx))
		p.buf.WriteString("\n")
		return nil
	}
	p.line(p.expr(stmt.Expression))
	return nil
}

func (p *printer) VisitBlockStmt(stmt *BlockStmt) error {
	p.line("{")
	p.indent++
	for _, s := range stmt.Statements {
		p.stmt(s)
	}
	p.indent--
	p.line("}")
	return nil
}

func (p *printer) VisitForStmt(stmt *ForStmt) error {
	head := "for (" + identText(stmt.Variable.Name)
	if stmt.VarType != nil {
		head += ": " + stmt.VarType.String()
	}
	head += " in " + p.expr(stmt.Iterable) + ") "
	p.line(head + p.inline(stmt.Body))
	return nil
}

func (p *printer) VisitWhileStmt(stmt *WhileStmt) error {
	p.line("while (" + p.expr(stmt.Condition) + ") " + p.inline(stmt.Body))
	return nil
}

func (p *printer) VisitDoWhileStmt(stmt *DoWhileStmt) error {
	p.line("do " + p.inline(stmt.Body) + " while (" + p.expr(stmt.Condition) + ")")
	return nil
}

func (p *printer) VisitReturnStmt(stmt *ReturnStmt) error {
	if stmt.Value == nil {
		p.line("return")
		return nil
	}
	p.line("return " + p.expr(stmt.Value))
	return nil
}

func (p *printer) VisitBreakStmt(stmt *BreakStmt) error {
	p.line("break")
	return nil
}

func (p *printer) VisitContinueStmt(stmt *ContinueStmt) error {
	p.line("continue")
	return nil
}

func (p *printer) VisitPropertyDecl(decl *PropertyDecl) error {
	s := decl.Keyword.Lexeme + " " + identText(decl.Name.Name)
	if decl.Type != nil {
		s += ": " + decl.Type.String()
	}
	if decl.Value != nil {
		s += " = " + p.expr(decl.Value)
	}
	p.line(s)
	return nil
}

func (p *printer) VisitFunDecl(decl *FunDecl) error {
	params := make([]string, len(decl.Params))
	for i, param := range decl.Params {
		params[i] = identText(param.Name.Name) + ": " + param.Type.String()
	}
	head := "fun " + identText(decl.Name.Name) + "(" + strings.Join(params, ", ") + ")"
	if decl.ReturnType != nil {
		head += ": " + decl.ReturnType.String()
	}
	if decl.ExprBody != nil {
		p.line(head + " = " + p.expr(decl.ExprBody))
		return nil
	}
	p.line(head + " " + p.inline(decl.Body))
	return nil
}

func (p *printer) VisitClassDecl(decl *ClassDecl) error {
	head := "class " + identText(decl.Name.Name)
	if len(decl.Members) == 0 {
		p.line(head)
		return nil
	}
	p.line(head + " {")
	p.indent++
	for _, m := range decl.Members {
		p.stmt(m)
	}
	p.indent--
	p.line("}")
	return nil
}

func (p *printer) VisitLiteralExpr(expr *LiteralExpr) (interface{}, error) {
	if expr.Token.Lexeme != "" {
		return expr.Token.Lexeme, nil
	}
	return LiteralText(expr.Kind, expr.Value), nil
}

func (p *printer) VisitTemplateExpr(expr *TemplateExpr) (interface{}, error) {
	if expr.Token.Lexeme != "" {
		return expr.Token.Lexeme, nil
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, part := range expr.Parts {
		if lit, ok := part.(*LiteralExpr); ok && lit.Kind == LiteralString {
			b.WriteString(escapeString(lit.Value.(string)))
			continue
		}
		b.WriteString("${" + p.expr(part) + "}")
	}
	b.WriteByte('"')
	return b.String(), nil
}

func (p *printer) VisitIdentifierExpr(expr *IdentifierExpr) (interface{}, error) {
	return identText(expr.Name), nil
}

func (p *printer) VisitThisExpr(expr *ThisExpr) (interface{}, error) {
	return "this", nil
}

func (p *printer) VisitGroupingExpr(expr *GroupingExpr) (interface{}, error) {
	return "(" + p.expr(expr.Expr) + ")", nil
}

func (p *printer) VisitUnaryExpr(expr *UnaryExpr) (interface{}, error) {
	operand := p.expr(expr.Operand)
	if expr.IsPostfix {
		return operand + expr.Operator.Lexeme, nil
	}
	if strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+") {
		return expr.Operator.Lexeme + " " + operand, nil
	}
	return expr.Operator.Lexeme + operand, nil
}

func (p *printer) VisitBinaryExpr(expr *BinaryExpr) (interface{}, error) {
	return p.expr(expr.Left) + " " + expr.Operator.Lexeme + " " + p.expr(expr.Right), nil
}

func (p *printer) VisitRangeExpr(expr *RangeExpr) (interface{}, error) {
	return p.expr(expr.Low) + ".." + p.expr(expr.High), nil
}

func (p *printer) VisitInfixCallExpr(expr *InfixCallExpr) (interface{}, error) {
	return p.expr(expr.Left) + " " + expr.Function.Name + " " + p.expr(expr.Right), nil
}

func (p *printer) VisitCallExpr(expr *CallExpr) (interface{}, error) {
	return p.expr(expr.Callee) + "(" + p.exprList(expr.Args) + ")", nil
}

func (p *printer) VisitMemberExpr(expr *MemberExpr) (interface{}, error) {
	return p.receiver(expr.Object) + "." + identText(expr.Member.Name), nil
}

func (p *printer) VisitIndexExpr(expr *IndexExpr) (interface{}, error) {
	return p.receiver(expr.Object) + "[" + p.expr(expr.Index) + "]", nil
}

// receiver renders the left side of a postfix form, parenthesizing
// synthesized negative literals so they keep binding tighter.
func (p *printer) receiver(e Expr) string {
	s := p.expr(e)
	if _, ok := e.(*LiteralExpr); ok && strings.HasPrefix(s, "-") {
		return "(" + s + ")"
	}
	return s
}

func (p *printer) VisitAssignmentExpr(expr *AssignmentExpr) (interface{}, error) {
	return p.expr(expr.Target) + " " + expr.Operator.Lexeme + " " + p.expr(expr.Value), nil
}

func (p *printer) VisitArrayLiteralExpr(expr *ArrayLiteralExpr) (interface{}, error) {
	s := "arrayOf"
	if expr.ElementType != nil {
		s += "<" + expr.ElementType.String() + ">"
	}
	return s + "(" + p.exprList(expr.Elements) + ")", nil
}

func (p *printer) VisitIfExpr(expr *IfExpr) (interface{}, error) {
	return p.ifText(expr), nil
}

func (p *printer) ifText(expr *IfExpr) string {
	s := "if (" + p.expr(expr.Condition) + ") " + p.inline(expr.Then)
	if expr.Else != nil {
		s += " else " + p.inline(expr.Else)
	}
	return s
}

func (p *printer) exprList(list []Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = p.expr(e)
	}
	return strings.Join(parts, ", ")
}

// LiteralText renders a literal value the way it would be written in
// source. It is used for literals synthesized after parsing.
func LiteralText(kind LiteralKind, value interface{}) string {
	switch kind {
	case LiteralInt:
		return strconv.FormatInt(int64(value.(int32)), 10)
	case LiteralDouble:
		s := strconv.FormatFloat(value.(float64), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnI") {
			s += ".0"
		}
		return s
	case LiteralFloat:
		return strconv.FormatFloat(float64(value.(float32)), 'g', -1, 32) + "f"
	case LiteralBool:
		return strconv.FormatBool(value.(bool))
	case LiteralString:
		return `"` + escapeString(value.(string)) + `"`
	}
	return ""
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '$':
			b.WriteString(`\$`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func identText(name string) string {
	if lexer.LookupKeyword(name) != lexer.TokenIdentifier || !isPlainIdent(name) {
		return "`" + name + "`"
	}
	return name
}

func isPlainIdent(name string) bool {
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return name != ""
}
