// Package parser implements a recursive descent parser for the Kotlin
// subset.
//
// Declarations and statements are parsed by recursive descent and
// expressions by precedence climbing. The parser works on the complete
// token slice, so it can look ahead as far as needed (for the type
// arguments of arrayOf<T>(...)).
//
// Parsing stops at the first error. Internally a failure panics with a
// bailout value which the exported entry points recover and return.
package parser

import (
	"math"

	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
)

// Parser converts a token slice into a syntax tree.
type Parser struct {
	tokens []lexer.Token
	pos    int

	// current is the token we're examining; previous the last consumed.
	current  lexer.Token
	previous lexer.Token

	filename string

	// parens counts the enclosing ( and [ groups. Inside them a newline
	// does not end an expression.
	parens int
}

// New creates a parser over tokens. A trailing EOF token is added when
// missing.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokenEOF {
		var eof lexer.Token
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Position = last.Span().End
		}
		eof.Type = lexer.TokenEOF
		tokens = append(append([]lexer.Token(nil), tokens...), eof)
	}
	return &Parser{
		tokens:   tokens,
		current:  tokens[0],
		filename: tokens[0].Position.Filename,
	}
}

// Parse parses a complete program from tokens.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseSource tokenizes and parses src. The error is a *lexer.LexError
// or a *SyntaxError.
func ParseSource(src, filename string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src, filename)
	if err != nil {
		return nil, err
	}
	prog, err := Parse(tokens)
	if err != nil {
		return nil, err
	}
	if prog.Filename == "" {
		prog.Filename = filename
	}
	return prog, nil
}

// ParseProgram parses top-level declarations until EOF.
//
// GRAMMAR:
//
//	program = { declaration [";"] } EOF
//	declaration = property | function | class
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	defer p.handleBailout(&err)

	prog = &ast.Program{Filename: p.filename}
	for !p.isAtEnd() {
		if p.match(lexer.TokenSemicolon) {
			continue
		}
		prog.Decls = append(prog.Decls, p.parseTopLevel())
	}
	prog.EOF = p.current.Position
	return prog, nil
}

// ParseStatements parses a sequence of statements and declarations the
// way a function body is parsed, without the surrounding braces. The
// REPL uses it for each input chunk.
func (p *Parser) ParseStatements() (stmts []ast.Stmt, err error) {
	defer p.handleBailout(&err)

	for !p.isAtEnd() {
		if p.match(lexer.TokenSemicolon) {
			continue
		}
		stmts = append(stmts, p.parseStatement())
	}
	return stmts, nil
}

func (p *Parser) handleBailout(err *error) {
	r := recover()
	if r == nil {
		return
	}
	b, ok := r.(bailout)
	if !ok {
		panic(r)
	}
	*err = b.err
}

func (p *Parser) parseTopLevel() ast.Decl {
	var decl ast.Decl
	switch p.current.Type {
	case lexer.TokenVal, lexer.TokenVar:
		decl = p.parseProperty()
	case lexer.TokenFun:
		decl = p.parseFunction()
	case lexer.TokenClass:
		decl = p.parseClass()
	default:
		p.failExpected("declaration", "")
	}
	p.endStatement()
	return decl
}

// parseProperty parses a property or local variable declaration.
//
// GRAMMAR:
//
//	property = ("val" | "var") name [ ":" type ] [ "=" expression ]
//
// One of the type and the initializer must be present. Whether a
// declaration without an initializer is allowed where it appears is
// decided by the analyzer.
func (p *Parser) parseProperty() *ast.PropertyDecl {
	decl := &ast.PropertyDecl{Keyword: p.advance()}
	decl.Name = p.identifier("property name")

	if p.match(lexer.TokenColon) {
		decl.Type = p.parseType()
	}
	if p.match(lexer.TokenAssign) {
		decl.Value = p.parseExpression()
	} else if decl.Type == nil {
		p.failExpected("':' or '='", "this variable must either have a type annotation or be initialized")
	}
	return decl
}

// parseFunction parses a function declaration.
//
// GRAMMAR:
//
//	function = "fun" name "(" [ param { "," param } [","] ] ")" [ ":" type ] body
//	body     = block | "=" expression
func (p *Parser) parseFunction() *ast.FunDecl {
	fn := &ast.FunDecl{Keyword: p.advance()}
	fn.Name = p.identifier("function name")

	p.expect(lexer.TokenLeftParen, "'('")
	for !p.check(lexer.TokenRightParen) {
		param := &ast.Param{Name: p.identifier("parameter name")}
		p.expect(lexer.TokenColon, "':'")
		param.Type = p.parseType()
		fn.Params = append(fn.Params, param)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRightParen, "')'")

	if p.match(lexer.TokenColon) {
		fn.ReturnType = p.parseType()
	}

	switch {
	case p.check(lexer.TokenLeftBrace):
		fn.Body = p.parseBlock()
	case p.match(lexer.TokenAssign):
		fn.ExprBody = p.parseExpression()
	default:
		p.failExpected("function body", "")
	}
	return fn
}

// parseClass parses class Name [{ members }].
func (p *Parser) parseClass() *ast.ClassDecl {
	class := &ast.ClassDecl{Keyword: p.advance()}
	class.Name = p.identifier("class name")
	class.EndPos = class.Name.End()

	if !p.check(lexer.TokenLeftBrace) {
		return class
	}
	p.advance()
	restore := p.enterBlock()
	for !p.check(lexer.TokenRightBrace) {
		if p.isAtEnd() {
			p.failExpected("'}'", "unterminated class body")
		}
		if p.match(lexer.TokenSemicolon) {
			continue
		}
		switch p.current.Type {
		case lexer.TokenVal, lexer.TokenVar:
			prop := p.parseProperty()
			class.Properties = append(class.Properties, prop)
			class.Members = append(class.Members, prop)
		case lexer.TokenFun:
			fn := p.parseFunction()
			class.Methods = append(class.Methods, fn)
			class.Members = append(class.Members, fn)
		default:
			p.failExpected("class member", "")
		}
		p.endStatement()
	}
	restore()
	class.EndPos = p.advance().Span().End
	return class
}

// parseType parses Name or Name<Type, ...>.
func (p *Parser) parseType() *ast.TypeRef {
	name := p.expect(lexer.TokenIdentifier, "type name")
	ref := &ast.TypeRef{Name: name, EndPos: name.Span().End}
	if !p.match(lexer.TokenLess) {
		return ref
	}
	for {
		ref.Args = append(ref.Args, p.parseType())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	ref.EndPos = p.expect(lexer.TokenGreater, "'>'").Span().End
	return ref
}

func (p *Parser) identifier(what string) *ast.IdentifierExpr {
	tok := p.expect(lexer.TokenIdentifier, what)
	return &ast.IdentifierExpr{Token: tok, Name: tok.Lexeme}
}

// Statements

// parseStatement parses one statement including its terminator.
func (p *Parser) parseStatement() ast.Stmt {
	stmt := p.parseBareStatement()
	p.endStatement()
	return stmt
}

// parseBareStatement parses a statement without consuming what follows
// it. Loop bodies and if branches use it directly so that a trailing
// else or outer terminator stays in place.
func (p *Parser) parseBareStatement() ast.Stmt {
	switch p.current.Type {
	case lexer.TokenVal, lexer.TokenVar:
		return p.parseProperty()
	case lexer.TokenFun:
		return p.parseFunction()
	case lexer.TokenClass:
		return p.parseClass()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenDo:
		return p.parseDoWhile()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenBreak:
		return &ast.BreakStmt{Keyword: p.advance()}
	case lexer.TokenContinue:
		return &ast.ContinueStmt{Keyword: p.advance()}
	case lexer.TokenLeftBrace:
		return p.parseBlock()
	default:
		return &ast.ExprStmt{Expression: p.parseExpression()}
	}
}

// endStatement requires a statement terminator: ';', a newline, '}' or
// end of file. Only ';' is consumed.
func (p *Parser) endStatement() {
	if p.match(lexer.TokenSemicolon) {
		return
	}
	if p.current.NewlineBefore || p.check(lexer.TokenRightBrace) || p.isAtEnd() {
		return
	}
	p.failExpected("newline or ';'", "")
}

// parseBlock parses { statements }.
func (p *Parser) parseBlock() *ast.BlockStmt {
	block := &ast.BlockStmt{LeftBrace: p.expect(lexer.TokenLeftBrace, "'{'")}
	restore := p.enterBlock()
	for !p.check(lexer.TokenRightBrace) {
		if p.isAtEnd() {
			p.failExpected("'}'", "unterminated block")
		}
		if p.match(lexer.TokenSemicolon) {
			continue
		}
		block.Statements = append(block.Statements, p.parseStatement())
	}
	restore()
	block.RightBrace = p.advance()
	return block
}

// controlBody parses the body of a loop or an if branch: a block or a
// single statement.
func (p *Parser) controlBody() ast.Stmt {
	if p.check(lexer.TokenLeftBrace) {
		return p.parseBlock()
	}
	return p.parseBareStatement()
}

// parseFor parses for (name [: Type] in iterable) body.
func (p *Parser) parseFor() *ast.ForStmt {
	stmt := &ast.ForStmt{ForPos: p.advance().Position}
	p.expect(lexer.TokenLeftParen, "'('")
	restore := p.enterParens()
	stmt.Variable = p.identifier("loop variable")
	if p.match(lexer.TokenColon) {
		stmt.VarType = p.parseType()
	}
	p.expect(lexer.TokenIn, "'in'")
	stmt.Iterable = p.parseExpression()
	restore()
	p.expect(lexer.TokenRightParen, "')'")
	stmt.Body = p.controlBody()
	return stmt
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	stmt := &ast.WhileStmt{WhilePos: p.advance().Position}
	stmt.Condition = p.parseCondition()
	stmt.Body = p.controlBody()
	return stmt
}

func (p *Parser) parseDoWhile() *ast.DoWhileStmt {
	stmt := &ast.DoWhileStmt{DoPos: p.advance().Position}
	stmt.Body = p.controlBody()
	p.match(lexer.TokenSemicolon)
	p.expect(lexer.TokenWhile, "'while'")
	p.expect(lexer.TokenLeftParen, "'('")
	restore := p.enterParens()
	stmt.Condition = p.parseExpression()
	restore()
	stmt.RightParen = p.expect(lexer.TokenRightParen, "')'")
	return stmt
}

// parseCondition parses a parenthesized condition of while or if.
func (p *Parser) parseCondition() ast.Expr {
	p.expect(lexer.TokenLeftParen, "'('")
	restore := p.enterParens()
	cond := p.parseExpression()
	restore()
	p.expect(lexer.TokenRightParen, "')'")
	return cond
}

func (p *Parser) parseReturn() *ast.ReturnStmt {
	stmt := &ast.ReturnStmt{Keyword: p.advance()}
	if p.atStatementEnd() {
		return stmt
	}
	stmt.Value = p.parseExpression()
	return stmt
}

// atStatementEnd reports whether nothing more of the current statement
// follows, as after a bare return.
func (p *Parser) atStatementEnd() bool {
	if p.current.NewlineBefore {
		return true
	}
	switch p.current.Type {
	case lexer.TokenSemicolon, lexer.TokenRightBrace, lexer.TokenEOF,
		lexer.TokenElse, lexer.TokenRightParen:
		return true
	}
	return false
}

// Expressions

func (p *Parser) parseExpression() ast.Expr {
	return p.parsePrecedence(PrecAssignment)
}

// parsePrecedence parses an expression whose operators bind at least as
// tightly as precedence.
func (p *Parser) parsePrecedence(precedence Precedence) ast.Expr {
	left := p.parsePrefix()
	for {
		tok := p.current
		if tok.NewlineBefore && p.parens == 0 && !continuesAcrossNewline(tok.Type) {
			return left
		}
		prec := getPrecedence(tok)
		if prec == PrecNone || prec < precedence {
			return left
		}
		left = p.parseInfix(left, prec)
	}
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.current
	switch tok.Type {
	case lexer.TokenInt:
		if _, wide := tok.Value.(int64); wide {
			p.fail("the value is out of range")
		}
		p.advance()
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralInt, Value: tok.Value}
	case lexer.TokenDouble:
		p.advance()
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralDouble, Value: tok.Value}
	case lexer.TokenFloat:
		p.advance()
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralFloat, Value: tok.Value}
	case lexer.TokenString:
		p.advance()
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralString, Value: tok.Value}
	case lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralBool, Value: tok.Type == lexer.TokenTrue}
	case lexer.TokenTemplate:
		p.advance()
		return p.parseTemplate(tok)
	case lexer.TokenIdentifier:
		if tok.Lexeme == "arrayOf" && p.startsArrayLiteral() {
			return p.parseArrayLiteral()
		}
		p.advance()
		return &ast.IdentifierExpr{Token: tok, Name: tok.Lexeme}
	case lexer.TokenThis:
		p.advance()
		return &ast.ThisExpr{Token: tok}
	case lexer.TokenLeftParen:
		return p.parseGrouping()
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenNot,
		lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		p.advance()
		if tok.Type == lexer.TokenMinus {
			if lit := p.parseMinValue(); lit != nil {
				return &ast.UnaryExpr{Operator: tok, Operand: lit}
			}
		}
		return &ast.UnaryExpr{Operator: tok, Operand: p.parsePrecedence(PrecUnary)}
	case lexer.TokenIf:
		return p.parseIf()
	}
	p.failExpected("expression", "")
	return nil
}

// parseMinValue parses the 2147483648 of -2147483648. The literal
// stands for Int.MIN_VALUE, and negating it wraps back to the same value.
// It returns nil when the current token is any other operand; a postfix
// operator after the literal would apply before the minus and is an error.
func (p *Parser) parseMinValue() ast.Expr {
	tok := p.current
	if _, wide := tok.Value.(int64); tok.Type != lexer.TokenInt || !wide {
		return nil
	}
	p.advance()
	next := p.current
	bound := !next.NewlineBefore || p.parens > 0 || continuesAcrossNewline(next.Type)
	if prec := getPrecedence(next); bound && prec != PrecNone && prec >= PrecUnary {
		panic(bailout{err: &SyntaxError{Pos: tok.Position, Msg: "the value is out of range"}})
	}
	return &ast.LiteralExpr{Token: tok, Kind: ast.LiteralInt, Value: int32(math.MinInt32)}
}

func (p *Parser) parseInfix(left ast.Expr, prec Precedence) ast.Expr {
	operator := p.current
	switch operator.Type {
	case lexer.TokenDot:
		p.advance()
		return &ast.MemberExpr{Object: left, Dot: operator, Member: p.identifier("member name")}

	case lexer.TokenLeftParen:
		return p.parseCall(left)

	case lexer.TokenLeftBracket:
		return p.parseIndex(left)

	case lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		p.advance()
		return &ast.UnaryExpr{Operator: operator, Operand: left, IsPostfix: true}

	case lexer.TokenDotDot:
		p.advance()
		return &ast.RangeExpr{Low: left, Operator: operator, High: p.parsePrecedence(prec + 1)}

	case lexer.TokenIdentifier:
		p.advance()
		fn := &ast.IdentifierExpr{Token: operator, Name: operator.Lexeme}
		return &ast.InfixCallExpr{Left: left, Function: fn, Right: p.parsePrecedence(prec + 1)}
	}

	if isRightAssociative(operator.Type) {
		return p.parseAssignment(left)
	}
	p.advance()
	return &ast.BinaryExpr{Left: left, Operator: operator, Right: p.parsePrecedence(prec + 1)}
}

func (p *Parser) parseAssignment(target ast.Expr) ast.Expr {
	switch target.(type) {
	case *ast.IdentifierExpr, *ast.MemberExpr, *ast.IndexExpr:
	default:
		p.fail("invalid assignment target")
	}
	operator := p.advance()
	return &ast.AssignmentExpr{
		Target:   target,
		Operator: operator,
		Value:    p.parsePrecedence(PrecAssignment),
	}
}

func (p *Parser) parseGrouping() ast.Expr {
	leftParen := p.advance()
	restore := p.enterParens()
	inner := p.parseExpression()
	restore()
	return &ast.GroupingExpr{
		LeftParen:  leftParen,
		Expr:       inner,
		RightParen: p.expect(lexer.TokenRightParen, "')'"),
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	leftParen := p.advance()
	args := p.parseArguments()
	return &ast.CallExpr{
		Callee:     callee,
		LeftParen:  leftParen,
		Args:       args,
		RightParen: p.previous,
	}
}

// parseArguments parses a comma separated list up to and including the
// closing parenthesis. A trailing comma is accepted.
func (p *Parser) parseArguments() []ast.Expr {
	restore := p.enterParens()
	var args []ast.Expr
	for !p.check(lexer.TokenRightParen) {
		args = append(args, p.parseExpression())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	restore()
	p.expect(lexer.TokenRightParen, "')'")
	return args
}

func (p *Parser) parseIndex(object ast.Expr) ast.Expr {
	leftBracket := p.advance()
	restore := p.enterParens()
	index := p.parseExpression()
	restore()
	return &ast.IndexExpr{
		Object:       object,
		LeftBracket:  leftBracket,
		Index:        index,
		RightBracket: p.expect(lexer.TokenRightBracket, "']'"),
	}
}

// parseIf parses if (cond) then [else otherwise]. A newline may separate
// the then branch from else.
func (p *Parser) parseIf() ast.Expr {
	expr := &ast.IfExpr{IfPos: p.advance().Position}
	expr.Condition = p.parseCondition()
	expr.Then = p.controlBody()
	if p.check(lexer.TokenSemicolon) && p.peek(1).Type == lexer.TokenElse {
		p.advance()
	}
	if p.match(lexer.TokenElse) {
		expr.Else = p.controlBody()
	}
	return expr
}

// startsArrayLiteral reports whether the arrayOf identifier at the
// current position is followed by an argument list, optionally preceded
// by type arguments.
func (p *Parser) startsArrayLiteral() bool {
	next := p.pos + 1
	if p.tokenAt(next).Type == lexer.TokenLess {
		next = p.skipTypeArgs(next)
		if next < 0 {
			return false
		}
	}
	return p.tokenAt(next).Type == lexer.TokenLeftParen
}

// skipTypeArgs scans <T, U<V>> starting at the '<' at index i and returns
// the index just past the closing '>', or -1 if the tokens there do not
// form type arguments.
func (p *Parser) skipTypeArgs(i int) int {
	depth := 0
	for {
		switch p.tokenAt(i).Type {
		case lexer.TokenLess:
			depth++
			if p.tokenAt(i+1).Type != lexer.TokenIdentifier {
				return -1
			}
		case lexer.TokenGreater:
			depth--
			if depth == 0 {
				return i + 1
			}
		case lexer.TokenIdentifier, lexer.TokenComma:
		default:
			return -1
		}
		i++
	}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	lit := &ast.ArrayLiteralExpr{Keyword: p.advance()}
	if p.match(lexer.TokenLess) {
		lit.ElementType = p.parseType()
		p.expect(lexer.TokenGreater, "'>'")
	}
	p.expect(lexer.TokenLeftParen, "'('")
	lit.Elements = p.parseArguments()
	lit.RightParen = p.previous
	return lit
}

// parseTemplate turns the segments of a template token into literal
// strings and parsed expressions. Each ${...} source is lexed and parsed
// on its own, with positions mapped back into the enclosing file.
func (p *Parser) parseTemplate(tok lexer.Token) ast.Expr {
	tmpl := &ast.TemplateExpr{Token: tok}
	for _, part := range tok.Parts {
		if !part.IsExpr {
			tmpl.Parts = append(tmpl.Parts, &ast.LiteralExpr{
				Token: lexer.Token{Type: lexer.TokenString, Position: part.Pos},
				Kind:  ast.LiteralString,
				Value: part.Text,
			})
			continue
		}
		tmpl.Parts = append(tmpl.Parts, p.parseTemplatePart(part))
	}
	return tmpl
}

func (p *Parser) parseTemplatePart(part lexer.StringPart) ast.Expr {
	tokens, err := lexer.Tokenize(part.Source, p.filename)
	if err != nil {
		if lexErr, ok := err.(*lexer.LexError); ok {
			lexErr.Pos = relocate(lexErr.Pos, part.Pos)
		}
		panic(bailout{err: err})
	}
	for i := range tokens {
		tokens[i].Position = relocate(tokens[i].Position, part.Pos)
		tokens[i].NewlineBefore = false
	}

	sub := New(tokens)
	sub.parens = 1
	expr := sub.parseExpression()
	if !sub.isAtEnd() {
		sub.failExpected("'}'", "in template expression")
	}
	return expr
}

// relocate maps a position inside a template part onto the source file.
func relocate(pos, origin lexer.Position) lexer.Position {
	if pos.Line == 1 {
		pos.Column += origin.Column - 1
	}
	pos.Line += origin.Line - 1
	pos.Offset += origin.Offset
	pos.Filename = origin.Filename
	return pos
}

// Helper methods

// enterParens marks the start of a parenthesized region and returns the
// function that ends it.
func (p *Parser) enterParens() func() {
	p.parens++
	return func() { p.parens-- }
}

// enterBlock makes newlines significant again inside braces.
func (p *Parser) enterBlock() func() {
	saved := p.parens
	p.parens = 0
	return func() { p.parens = saved }
}

func (p *Parser) advance() lexer.Token {
	p.previous = p.current
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
	return p.previous
}

func (p *Parser) tokenAt(i int) lexer.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) peek(n int) lexer.Token {
	return p.tokenAt(p.pos + n)
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

func (p *Parser) match(tokenTypes ...lexer.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if p.check(tokenType) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of the given type or fails.
func (p *Parser) expect(tokenType lexer.TokenType, what string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}
	p.failExpected(what, "")
	return lexer.Token{}
}

func (p *Parser) isAtEnd() bool {
	return p.current.Type == lexer.TokenEOF
}

func (p *Parser) fail(msg string) {
	panic(bailout{err: &SyntaxError{Pos: p.current.Position, Msg: msg}})
}

func (p *Parser) failExpected(expected, context string) {
	panic(bailout{err: &SyntaxError{
		Pos:      p.current.Position,
		Expected: expected,
		Found:    describe(p.current),
		Msg:      context,
	}})
}
