package lexer

import "unicode/utf8"

// TokenType identifies the lexical category of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenInvalid

	// Literals. The decoded value is stored in Token.Value.
	TokenInt      // 42, 0x2A, 0b101, 1_000
	TokenDouble   // 3.14, 1e10, .5
	TokenFloat    // 0.5f, 1F
	TokenString   // "text" or """raw"""
	TokenTemplate // "a $b ${c}"; segments in Token.Parts
	TokenTrue
	TokenFalse

	TokenIdentifier

	// Keywords
	TokenVal
	TokenVar
	TokenFun
	TokenClass
	TokenFor
	TokenIn
	TokenIf
	TokenElse
	TokenReturn
	TokenWhile
	TokenDo
	TokenBreak
	TokenContinue
	TokenThis

	// Arithmetic
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenSlash   // /
	TokenPercent // %

	// Equality and comparison
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenIdentical    // ===
	TokenNotIdentical // !==
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=

	// Logical
	TokenAnd   // &&
	TokenOr    // ||
	TokenNot   // !
	TokenNotIn // !in

	// Assignment
	TokenAssign    // =
	TokenPlusEq    // +=
	TokenMinusEq   // -=
	TokenStarEq    // *=
	TokenSlashEq   // /=
	TokenPercentEq // %=

	TokenPlusPlus   // ++
	TokenMinusMinus // --

	TokenDot    // .
	TokenDotDot // ..
	TokenArrow  // ->
	TokenColon  // :

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
	TokenSemicolon    // ;
	TokenComma        // ,
)

var tokenNames = [...]string{
	TokenEOF:          "EOF",
	TokenInvalid:      "INVALID",
	TokenInt:          "INT",
	TokenDouble:       "DOUBLE",
	TokenFloat:        "FLOAT",
	TokenString:       "STRING",
	TokenTemplate:     "TEMPLATE",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenIdentifier:   "IDENTIFIER",
	TokenVal:          "VAL",
	TokenVar:          "VAR",
	TokenFun:          "FUN",
	TokenClass:        "CLASS",
	TokenFor:          "FOR",
	TokenIn:           "IN",
	TokenIf:           "IF",
	TokenElse:         "ELSE",
	TokenReturn:       "RETURN",
	TokenWhile:        "WHILE",
	TokenDo:           "DO",
	TokenBreak:        "BREAK",
	TokenContinue:     "CONTINUE",
	TokenThis:         "THIS",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenStar:         "STAR",
	TokenSlash:        "SLASH",
	TokenPercent:      "PERCENT",
	TokenEqual:        "EQUAL",
	TokenNotEqual:     "NOTEQUAL",
	TokenIdentical:    "IDENTICAL",
	TokenNotIdentical: "NOTIDENTICAL",
	TokenLess:         "LESS",
	TokenLessEqual:    "LESSEQUAL",
	TokenGreater:      "GREATER",
	TokenGreaterEqual: "GREATEREQUAL",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenNotIn:        "NOTIN",
	TokenAssign:       "ASSIGN",
	TokenPlusEq:       "PLUSEQ",
	TokenMinusEq:      "MINUSEQ",
	TokenStarEq:       "STAREQ",
	TokenSlashEq:      "SLASHEQ",
	TokenPercentEq:    "PERCENTEQ",
	TokenPlusPlus:     "PLUSPLUS",
	TokenMinusMinus:   "MINUSMINUS",
	TokenDot:          "DOT",
	TokenDotDot:       "DOTDOT",
	TokenArrow:        "ARROW",
	TokenColon:        "COLON",
	TokenLeftParen:    "LPAREN",
	TokenRightParen:   "RPAREN",
	TokenLeftBrace:    "LBRACE",
	TokenRightBrace:   "RBRACE",
	TokenLeftBracket:  "LBRACKET",
	TokenRightBracket: "RBRACKET",
	TokenSemicolon:    "SEMICOLON",
	TokenComma:        "COMMA",
}

func (tt TokenType) String() string {
	if tt >= 0 && int(tt) < len(tokenNames) && tokenNames[tt] != "" {
		return tokenNames[tt]
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"val":      TokenVal,
	"var":      TokenVar,
	"fun":      TokenFun,
	"class":    TokenClass,
	"for":      TokenFor,
	"in":       TokenIn,
	"if":       TokenIf,
	"else":     TokenElse,
	"return":   TokenReturn,
	"while":    TokenWhile,
	"do":       TokenDo,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"this":     TokenThis,
	"true":     TokenTrue,
	"false":    TokenFalse,
}

// LookupKeyword returns the keyword token type for identifier, or
// TokenIdentifier if it is not reserved.
func LookupKeyword(identifier string) TokenType {
	if tokenType, ok := keywords[identifier]; ok {
		return tokenType
	}
	return TokenIdentifier
}

func (tt TokenType) IsKeyword() bool {
	return tt >= TokenVal && tt <= TokenThis
}

func (tt TokenType) IsOperator() bool {
	return tt >= TokenPlus && tt <= TokenColon
}

func (tt TokenType) IsLiteral() bool {
	return tt >= TokenInt && tt <= TokenFalse
}

// IsAssignment reports whether tt is "=" or a compound assignment.
func (tt TokenType) IsAssignment() bool {
	return tt >= TokenAssign && tt <= TokenPercentEq
}

// StringPart is one segment of a string template. Literal segments carry
// decoded Text; expression segments carry the raw Source of the embedded
// expression and the position where it starts.
type StringPart struct {
	Text   string
	Source string
	IsExpr bool
	Pos    Position
}

// Token is a single lexeme produced by the Lexer.
type Token struct {
	Type     TokenType
	Lexeme   string
	Position Position
	Length   int

	// Value is the decoded literal: int32 for TokenInt, float64 for
	// TokenDouble, float32 for TokenFloat, string for TokenString. The
	// decimal literal 2147483648 is the one TokenInt with an int64 Value;
	// it is only valid as the operand of a unary minus.
	Value interface{}

	// Parts holds the segments of a TokenTemplate.
	Parts []StringPart

	// NewlineBefore is set when at least one line break separates this
	// token from the previous one.
	NewlineBefore bool
}

func (t Token) String() string {
	return t.Type.String() + "(" + t.Lexeme + ") at " + t.Position.String()
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{
		Start: t.Position,
		End: Position{
			Filename: t.Position.Filename,
			Line:     t.Position.Line,
			Column:   t.Position.Column + utf8.RuneCountInString(t.Lexeme),
			Offset:   t.Position.Offset + t.Length,
		},
	}
}
