package lexer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns source text into tokens on demand.
//
// Whitespace and comments are consumed between tokens. Line breaks are
// not tokens; they are recorded in Token.NewlineBefore so the parser can
// terminate statements.
//
// DESIGN CHOICE: Newlines are a flag on the next token rather than a
// token of their own because:
//   - Most of the grammar ignores them. Only statement ends and a few
//     operators care, and those places check the flag.
//   - The parser never has to skip NEWLINE tokens inside parentheses,
//     argument lists or type arguments.
//
// EXAMPLE:
//
//	val a = 1
//	val b = a
//
// produces VAL IDENTIFIER ASSIGN INT VAL IDENTIFIER ASSIGN IDENTIFIER EOF,
// and the second VAL has NewlineBefore set.
type Lexer struct {
	source   string
	filename string

	start   int // byte offset where the current token begins
	current int // byte offset of the next unread rune

	line      int // 1-based line of current
	lineStart int // byte offset where the current line begins

	startPos Position
	newline  bool
}

// New creates a lexer over source. filename is only used in positions.
func New(source, filename string) *Lexer {
	l := &Lexer{
		source:   source,
		filename: filename,
		line:     1,
	}
	if strings.HasPrefix(source, "\uFEFF") {
		l.current = len("\uFEFF")
		l.lineStart = l.current
	}
	return l
}

// Tokenize scans the whole source. The returned slice always ends with a
// TokenEOF token. The first malformed token aborts scanning.
func Tokenize(source, filename string) ([]Token, error) {
	l := New(source, filename)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return l.makeToken(TokenInvalid, ""), err
	}

	l.start = l.current
	l.startPos = l.position()

	if l.isAtEnd() {
		return l.makeToken(TokenEOF, ""), nil
	}

	ch := l.advance()

	switch {
	case ch == '`':
		return l.scanQuotedIdentifier()
	case isLetter(ch):
		return l.scanIdentifier(), nil
	case isDigit(ch), ch == '.' && isDigit(l.peek()):
		return l.scanNumber()
	}

	switch ch {
	case '(':
		return l.makeToken(TokenLeftParen, "("), nil
	case ')':
		return l.makeToken(TokenRightParen, ")"), nil
	case '{':
		return l.makeToken(TokenLeftBrace, "{"), nil
	case '}':
		return l.makeToken(TokenRightBrace, "}"), nil
	case '[':
		return l.makeToken(TokenLeftBracket, "["), nil
	case ']':
		return l.makeToken(TokenRightBracket, "]"), nil
	case ';':
		return l.makeToken(TokenSemicolon, ";"), nil
	case ',':
		return l.makeToken(TokenComma, ","), nil
	case ':':
		return l.makeToken(TokenColon, ":"), nil

	case '+':
		if l.match('+') {
			return l.makeToken(TokenPlusPlus, "++"), nil
		} else if l.match('=') {
			return l.makeToken(TokenPlusEq, "+="), nil
		}
		return l.makeToken(TokenPlus, "+"), nil

	case '-':
		if l.match('-') {
			return l.makeToken(TokenMinusMinus, "--"), nil
		} else if l.match('=') {
			return l.makeToken(TokenMinusEq, "-="), nil
		} else if l.match('>') {
			return l.makeToken(TokenArrow, "->"), nil
		}
		return l.makeToken(TokenMinus, "-"), nil

	case '*':
		if l.match('=') {
			return l.makeToken(TokenStarEq, "*="), nil
		}
		return l.makeToken(TokenStar, "*"), nil

	case '/':
		if l.match('=') {
			return l.makeToken(TokenSlashEq, "/="), nil
		}
		return l.makeToken(TokenSlash, "/"), nil

	case '%':
		if l.match('=') {
			return l.makeToken(TokenPercentEq, "%="), nil
		}
		return l.makeToken(TokenPercent, "%"), nil

	case '&':
		if l.match('&') {
			return l.makeToken(TokenAnd, "&&"), nil
		}

	case '|':
		if l.match('|') {
			return l.makeToken(TokenOr, "||"), nil
		}

	case '=':
		if l.match('=') {
			if l.match('=') {
				return l.makeToken(TokenIdentical, "==="), nil
			}
			return l.makeToken(TokenEqual, "=="), nil
		}
		return l.makeToken(TokenAssign, "="), nil

	case '!':
		if l.match('=') {
			if l.match('=') {
				return l.makeToken(TokenNotIdentical, "!=="), nil
			}
			return l.makeToken(TokenNotEqual, "!="), nil
		}
		if strings.HasPrefix(l.source[l.current:], "in") {
			after, _ := utf8.DecodeRuneInString(l.source[l.current+2:])
			if !isLetter(after) && !isDigit(after) {
				l.current += 2
				return l.makeToken(TokenNotIn, "!in"), nil
			}
		}
		return l.makeToken(TokenNot, "!"), nil

	case '<':
		if l.match('=') {
			return l.makeToken(TokenLessEqual, "<="), nil
		}
		return l.makeToken(TokenLess, "<"), nil

	case '>':
		if l.match('=') {
			return l.makeToken(TokenGreaterEqual, ">="), nil
		}
		return l.makeToken(TokenGreater, ">"), nil

	case '.':
		if l.match('.') {
			return l.makeToken(TokenDotDot, ".."), nil
		}
		return l.makeToken(TokenDot, "."), nil

	case '"':
		return l.scanString()

	case '\'':
		return l.makeToken(TokenInvalid, ""), l.error("character literals are not supported")
	}

	return l.makeToken(TokenInvalid, ""), l.error(fmt.Sprintf("unexpected character %q", ch))
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	if ch == '\n' {
		l.line++
		l.lineStart = l.current
	}
	return ch
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return ch
}

func (l *Lexer) peekNext() rune {
	if l.current >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+size >= len(l.source) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current+size:])
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// skipTrivia consumes whitespace and comments, remembering whether a line
// break was crossed.
func (l *Lexer) skipTrivia() error {
	for !l.isAtEnd() {
		switch ch := l.peek(); {
		case ch == '\n':
			l.newline = true
			l.advance()
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekNext() == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// skipBlockComment consumes a /* */ comment. Comments nest, so
//
//	/* outer /* inner */ still a comment */
//
// is one comment. A line break inside a comment still counts as a
// newline before the next token.
func (l *Lexer) skipBlockComment() error {
	pos := l.position()
	l.advance()
	l.advance()

	depth := 1
	for depth > 0 {
		if l.isAtEnd() {
			return &LexError{Pos: pos, Msg: "unterminated block comment"}
		}
		switch {
		case l.peek() == '/' && l.peekNext() == '*':
			l.advance()
			l.advance()
			depth++
		case l.peek() == '*' && l.peekNext() == '/':
			l.advance()
			l.advance()
			depth--
		default:
			if l.advance() == '\n' {
				l.newline = true
			}
		}
	}
	return nil
}

func (l *Lexer) scanIdentifier() Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	return l.makeToken(LookupKeyword(text), text)
}

// scanQuotedIdentifier reads `name`. The backticks are not part of the
// lexeme and the name is never a keyword.
func (l *Lexer) scanQuotedIdentifier() (Token, error) {
	for !l.isAtEnd() && l.peek() != '`' && l.peek() != '\n' {
		l.advance()
	}
	if l.peek() != '`' {
		return l.makeToken(TokenInvalid, ""), l.error("unterminated quoted identifier")
	}
	name := l.source[l.start+1 : l.current]
	l.advance()
	if name == "" {
		return l.makeToken(TokenInvalid, ""), l.error("empty quoted identifier")
	}
	return l.makeToken(TokenIdentifier, name), nil
}

// scanNumber reads a numeric literal. The first digit (or the leading
// dot of .5) is already consumed.
//
// GRAMMAR:
//
//	number  = decimal | "0x" hexDigits | "0b" binDigits
//	decimal = digits [ "." digits ] [ exponent ] [ "f" | "F" ]
//	        | "." digits [ exponent ] [ "f" | "F" ]
//	exponent = ( "e" | "E" ) [ "+" | "-" ] digits
//
// Underscores may separate digits but not start or end a group. A real
// number without a suffix is a Double; with f it is a Float. Integers
// are Int; the L suffix is rejected because Long is not supported.
// "1..2" is a range, not the double 1. followed by .2: a dot is only
// part of the number when a digit follows it.
func (l *Lexer) scanNumber() (Token, error) {
	first := l.source[l.start]
	if first == '0' {
		switch l.peek() {
		case 'x', 'X':
			l.advance()
			return l.scanRadix(16, isHexDigit)
		case 'b', 'B':
			l.advance()
			return l.scanRadix(2, func(r rune) bool { return r == '0' || r == '1' })
		}
	}

	isReal := first == '.'
	l.digits(isDigit)

	if !isReal && l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		l.digits(isDigit)
		isReal = true
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		saved, savedLine, savedLineStart := l.current, l.line, l.lineStart
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if isDigit(l.peek()) {
			l.digits(isDigit)
			isReal = true
		} else {
			l.current, l.line, l.lineStart = saved, savedLine, savedLineStart
		}
	}

	text := l.source[l.start:l.current]
	if strings.HasSuffix(text, "_") || strings.Contains(text, "_.") || strings.Contains(text, "._") {
		return l.makeToken(TokenInvalid, ""), l.error("illegal underscore in number " + text)
	}
	clean := strings.ReplaceAll(text, "_", "")

	switch l.peek() {
	case 'f', 'F':
		l.advance()
		v, err := strconv.ParseFloat(clean, 32)
		if err != nil {
			return l.makeToken(TokenInvalid, ""), l.error("float literal out of range: " + text)
		}
		tok := l.makeToken(TokenFloat, l.source[l.start:l.current])
		tok.Value = float32(v)
		return tok, nil
	case 'L':
		return l.makeToken(TokenInvalid, ""), l.error("Long literals are not supported")
	}
	if isLetter(l.peek()) {
		return l.makeToken(TokenInvalid, ""), l.error(fmt.Sprintf("invalid character %q in number", l.peek()))
	}

	if isReal {
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return l.makeToken(TokenInvalid, ""), l.error("double literal out of range: " + text)
		}
		tok := l.makeToken(TokenDouble, text)
		tok.Value = v
		return tok, nil
	}

	return l.intToken(text, clean, 10)
}

// scanRadix reads the digits of a 0x or 0b literal; the prefix is
// already consumed.
func (l *Lexer) scanRadix(base int, valid func(rune) bool) (Token, error) {
	digitsStart := l.current
	l.digits(valid)
	text := l.source[l.start:l.current]
	body := l.source[digitsStart:l.current]
	if body == "" || body[0] == '_' || strings.HasSuffix(body, "_") {
		return l.makeToken(TokenInvalid, ""), l.error("malformed number " + text)
	}
	if l.peek() == 'L' {
		return l.makeToken(TokenInvalid, ""), l.error("Long literals are not supported")
	}
	if isLetter(l.peek()) || isDigit(l.peek()) {
		return l.makeToken(TokenInvalid, ""), l.error(fmt.Sprintf("invalid character %q in number", l.peek()))
	}
	return l.intToken(text, strings.ReplaceAll(body, "_", ""), base)
}

// intToken builds a TokenInt from digits in the given base.
//
// DESIGN CHOICE: the decimal literal 2147483648 does not fit an Int, but
// -2147483648 is Int.MIN_VALUE and must be writable. The lexer cannot see
// the minus sign (it is a separate token), so it lets this one literal
// through with an int64 Value and the parser decides whether it sits
// directly under a unary minus.
func (l *Lexer) intToken(text, digits string, base int) (Token, error) {
	v, err := strconv.ParseInt(digits, base, 64)
	if err == nil && base == 10 && v == -math.MinInt32 {
		tok := l.makeToken(TokenInt, text)
		tok.Value = v
		return tok, nil
	}
	if err != nil || v > math.MaxInt32 {
		return l.makeToken(TokenInvalid, ""), l.error("integer literal out of range: " + text)
	}
	tok := l.makeToken(TokenInt, text)
	tok.Value = int32(v)
	return tok, nil
}

func (l *Lexer) digits(valid func(rune) bool) {
	for valid(l.peek()) || l.peek() == '_' {
		l.advance()
	}
}

// scanString reads a quoted or triple-quoted string. The opening quote is
// already consumed. Template segments ($name, ${expr}) are split into
// Token.Parts; escapes are decoded except in raw strings.
//
// DESIGN CHOICE: A string with templates becomes one TokenTemplate whose
// Parts hold the literal text and the source of each embedded
// expression, instead of a run of tokens for the lexer to interleave.
// The parser lexes each expression part again with its original
// position, so errors inside ${...} point into the string.
//
// EXAMPLE:
//
//	"sum: ${a + b}!"
//
// has the parts Text "sum: ", Expr "a + b" and Text "!".
func (l *Lexer) scanString() (Token, error) {
	raw := false
	if l.peek() == '"' && l.peekNext() == '"' {
		l.advance()
		l.advance()
		raw = true
	}

	var (
		parts []StringPart
		buf   strings.Builder
		exprs bool
	)
	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, StringPart{Text: buf.String()})
			buf.Reset()
		}
	}

	for {
		if l.isAtEnd() {
			return l.makeToken(TokenInvalid, ""), l.error("unterminated string literal")
		}
		ch := l.peek()

		if raw {
			if strings.HasPrefix(l.source[l.current:], `"""`) {
				l.current += 3
				break
			}
		} else {
			if ch == '"' {
				l.advance()
				break
			}
			if ch == '\n' {
				return l.makeToken(TokenInvalid, ""), l.error("unterminated string literal")
			}
		}

		switch {
		case ch == '\\' && !raw:
			r, err := l.scanEscape()
			if err != nil {
				return l.makeToken(TokenInvalid, ""), err
			}
			buf.WriteRune(r)

		case ch == '$' && (isLetter(l.peekNext()) || l.peekNext() == '{'):
			flush()
			part, err := l.scanTemplatePart()
			if err != nil {
				return l.makeToken(TokenInvalid, ""), err
			}
			parts = append(parts, part)
			exprs = true

		default:
			buf.WriteRune(l.advance())
		}
	}
	flush()

	lexeme := l.source[l.start:l.current]
	if !exprs {
		tok := l.makeToken(TokenString, lexeme)
		var text string
		if len(parts) == 1 {
			text = parts[0].Text
		}
		tok.Value = text
		return tok, nil
	}
	tok := l.makeToken(TokenTemplate, lexeme)
	tok.Parts = parts
	return tok, nil
}

func (l *Lexer) scanEscape() (rune, error) {
	pos := l.position()
	l.advance()
	if l.isAtEnd() {
		return 0, &LexError{Pos: pos, Msg: "unterminated string literal"}
	}
	switch esc := l.advance(); esc {
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'r':
		return '\r', nil
	case 'n':
		return '\n', nil
	case '\'', '"', '\\', '$':
		return esc, nil
	case 'u':
		if l.current+4 > len(l.source) {
			return 0, &LexError{Pos: pos, Msg: "malformed unicode escape"}
		}
		hex := l.source[l.current : l.current+4]
		v, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return 0, &LexError{Pos: pos, Msg: "malformed unicode escape \\u" + hex}
		}
		l.current += 4
		return rune(v), nil
	default:
		return 0, &LexError{Pos: pos, Msg: fmt.Sprintf("illegal escape \\%c", esc)}
	}
}

// scanTemplatePart reads $name or ${expr} starting at '$'.
func (l *Lexer) scanTemplatePart() (StringPart, error) {
	dollar := l.position()
	l.advance()

	if l.peek() != '{' {
		pos := l.position()
		begin := l.current
		for isLetter(l.peek()) || isDigit(l.peek()) {
			l.advance()
		}
		return StringPart{Source: l.source[begin:l.current], IsExpr: true, Pos: pos}, nil
	}

	l.advance()
	pos := l.position()
	begin := l.current
	depth := 1
	var quote bool
	for {
		if l.isAtEnd() {
			return StringPart{}, &LexError{Pos: dollar, Msg: "unterminated template expression"}
		}
		ch := l.advance()
		switch {
		case quote:
			if ch == '\\' {
				l.advance()
			} else if ch == '"' {
				quote = false
			}
		case ch == '"':
			quote = true
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				src := l.source[begin : l.current-1]
				if strings.TrimSpace(src) == "" {
					return StringPart{}, &LexError{Pos: dollar, Msg: "empty template expression"}
				}
				return StringPart{Source: src, IsExpr: true, Pos: pos}, nil
			}
		}
	}
}

func (l *Lexer) makeToken(tokenType TokenType, lexeme string) Token {
	tok := Token{
		Type:          tokenType,
		Lexeme:        lexeme,
		Position:      l.startPos,
		Length:        l.current - l.start,
		NewlineBefore: l.newline,
	}
	l.newline = false
	return tok
}

func (l *Lexer) position() Position {
	return Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   utf8.RuneCountInString(l.source[l.lineStart:l.current]) + 1,
		Offset:   l.current,
	}
}

func (l *Lexer) error(message string) error {
	return &LexError{Pos: l.startPos, Msg: message}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
