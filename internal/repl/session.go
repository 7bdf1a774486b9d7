// Package repl implements the interactive session behind `kotlinc repl`.
//
// Inputs accumulate into the body of a hidden entry function, so every
// name an input declares stays visible to later inputs. Each evaluation
// analyzes and runs the whole session again; programs are deterministic,
// so the output of earlier inputs repeats exactly and is skipped.
package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hassan/kotlinc/internal/config"
	"github.com/hassan/kotlinc/internal/interp"
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
	"github.com/hassan/kotlinc/internal/semantic/types"
)

// entryName names the function holding the session's inputs. It cannot
// be written in source, so it never clashes with user declarations.
const entryName = "<repl>"

// ErrReturn rejects a top-level return, which would end the session's
// entry function before later inputs.
var ErrReturn = errors.New("'return' is not allowed at the top level of the REPL")

type input struct {
	src      string
	filename string
	echo     bool
}

type loaded struct {
	path string
	src  string
}

// Session holds the accumulated state of one REPL.
type Session struct {
	cfg    *config.Config
	out    io.Writer
	logger *slog.Logger

	inputs []input
	files  []loaded
	count  int

	// shown is the number of output bytes earlier runs already printed.
	shown int
}

// NewSession creates an empty session writing program output to out.
func NewSession(cfg *config.Config, out io.Writer, logger *slog.Logger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cfg: cfg, out: out, logger: logger}
}

// Eval runs one input. Statements and declarations are accepted; the
// value of a trailing expression that is not Unit is printed. A failing
// input leaves the session unchanged, though output it produced before a
// runtime error has been written.
func (s *Session) Eval(src string) error {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	in := input{src: src, filename: fmt.Sprintf("<input%d>", s.count+1)}

	stmts, err := parseInput(in)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.ReturnStmt); ok {
			return fmt.Errorf("%s: %w", stmt.Pos(), ErrReturn)
		}
	}
	if len(stmts) == 0 {
		return nil
	}

	prog, info, err := s.analyze(append(s.inputs, in))
	if err != nil {
		return err
	}
	if wantsEcho(lastStmt(prog), info) {
		in.echo = true
		if prog, info, err = s.analyze(append(s.inputs, in)); err != nil {
			return err
		}
	}
	s.logWarnings(info, in.filename)

	w := &skipWriter{w: s.out, skip: s.shown}
	if err := s.execute(prog, info, w); err != nil {
		return err
	}
	s.count++
	s.inputs = append(s.inputs, in)
	s.shown = w.written
	return nil
}

// Load adds the top-level declarations of a source file to the session.
// Its main function, if any, is not run.
func (s *Session) Load(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("repl: load %s: %w", path, err)
	}
	s.files = append(s.files, loaded{path: path, src: string(src)})
	prog, info, err := s.analyze(s.inputs)
	if err == nil {
		s.logWarnings(info, path)
		// Initializers of the new properties print before earlier
		// inputs do, so the skipped prefix is measured again.
		w := &skipWriter{w: io.Discard}
		if err = s.execute(prog, info, w); err == nil {
			s.shown = w.written
			return nil
		}
	}
	s.files = s.files[:len(s.files)-1]
	return err
}

// Reset forgets every input and loaded file.
func (s *Session) Reset() {
	s.inputs = nil
	s.files = nil
	s.count = 0
	s.shown = 0
}

// Decls returns the heading of every declaration made so far, loaded
// files first.
func (s *Session) Decls() []string {
	var heads []string
	for _, f := range s.files {
		prog, err := parser.ParseSource(f.src, f.path)
		if err != nil {
			continue
		}
		for _, d := range prog.Decls {
			heads = append(heads, heading(d))
		}
	}
	for _, in := range s.inputs {
		stmts, err := parseInput(in)
		if err != nil {
			continue
		}
		for _, stmt := range stmts {
			if d, ok := stmt.(ast.Decl); ok {
				heads = append(heads, heading(d))
			}
		}
	}
	return heads
}

func heading(d ast.Decl) string {
	line, _, _ := strings.Cut(ast.Print(d), "\n")
	return strings.TrimSuffix(line, " {")
}

// analyze builds the session program from the loaded files and inputs
// and checks it.
func (s *Session) analyze(inputs []input) (*ast.Program, *semantic.Info, error) {
	prog := &ast.Program{Filename: entryName}
	for _, f := range s.files {
		file, err := parser.ParseSource(f.src, f.path)
		if err != nil {
			return nil, nil, err
		}
		prog.Decls = append(prog.Decls, file.Decls...)
	}

	var body []ast.Stmt
	for _, in := range inputs {
		stmts, err := parseInput(in)
		if err != nil {
			return nil, nil, err
		}
		body = append(body, stmts...)
	}
	prog.Decls = append(prog.Decls, &ast.FunDecl{
		Keyword: lexer.Token{Type: lexer.TokenFun, Lexeme: "fun"},
		Name:    &ast.IdentifierExpr{Name: entryName},
		Body:    &ast.BlockStmt{Statements: body},
	})

	analyzer := semantic.New(semantic.WithShadowing(s.cfg.Shadowing()))
	info, err := analyzer.Analyze(prog)
	if err != nil {
		return nil, nil, err
	}
	return prog, info, nil
}

func (s *Session) execute(prog *ast.Program, info *semantic.Info, out io.Writer) error {
	it := interp.New(prog, info,
		interp.WithEntryPoint(entryName),
		interp.WithMaxCallDepth(s.cfg.Interpreter.MaxCallDepth))
	return it.Run(out)
}

// logWarnings logs the warnings that belong to filename; the rest were
// reported when their input was evaluated.
func (s *Session) logWarnings(info *semantic.Info, filename string) {
	for _, w := range info.Warnings {
		if w.Pos.Filename == filename {
			s.logger.Warn(w.Msg, "pos", w.Pos.String())
		}
	}
}

// parseInput parses the statements of in, wrapping a trailing
// expression in println when in.echo is set.
func parseInput(in input) ([]ast.Stmt, error) {
	tokens, err := lexer.Tokenize(in.src, in.filename)
	if err != nil {
		return nil, err
	}
	stmts, err := parser.New(tokens).ParseStatements()
	if err != nil {
		return nil, err
	}
	if in.echo && len(stmts) > 0 {
		last := stmts[len(stmts)-1].(*ast.ExprStmt)
		pos := last.Pos()
		last.Expression = &ast.CallExpr{
			Callee:     &ast.IdentifierExpr{Token: lexer.Token{Type: lexer.TokenIdentifier, Lexeme: semantic.BuiltinPrintln, Position: pos}, Name: semantic.BuiltinPrintln},
			LeftParen:  lexer.Token{Type: lexer.TokenLeftParen, Lexeme: "(", Position: pos},
			Args:       []ast.Expr{last.Expression},
			RightParen: lexer.Token{Type: lexer.TokenRightParen, Lexeme: ")", Position: last.End()},
		}
	}
	return stmts, nil
}

// lastStmt returns the final statement of the entry function.
func lastStmt(prog *ast.Program) ast.Stmt {
	body := prog.Decls[len(prog.Decls)-1].(*ast.FunDecl).Body.Statements
	return body[len(body)-1]
}

// wantsEcho reports whether the value of stmt should be printed.
func wantsEcho(stmt ast.Stmt, info *semantic.Info) bool {
	es, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}
	switch e := es.Expression.(type) {
	case *ast.AssignmentExpr:
		return false
	case *ast.IfExpr:
		if e.Else == nil {
			return false
		}
	case *ast.UnaryExpr:
		if e.Operator.Type == lexer.TokenPlusPlus || e.Operator.Type == lexer.TokenMinusMinus {
			return false
		}
	}
	t := info.TypeOf(es.Expression)
	return !t.Equals(types.Unit) && !t.Equals(types.Invalid)
}

// NeedsMore reports whether src stops in the middle of a construct, so
// that reading another line could complete it.
func NeedsMore(src string) bool {
	tokens, err := lexer.Tokenize(src, "")
	if err == nil {
		_, err = parser.New(tokens).ParseStatements()
	}
	return Incomplete(err, src)
}

// Incomplete reports whether err was caused by src ending too early.
func Incomplete(err error, src string) bool {
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return serr.Pos.Offset >= len(strings.TrimRight(src, " \t\r\n"))
	}
	var lerr *lexer.LexError
	if errors.As(err, &lerr) {
		switch lerr.Msg {
		case "unterminated block comment":
			return true
		case "unterminated string literal":
			off := lerr.Pos.Offset
			return off < len(src) && strings.HasPrefix(src[off:], `"""`)
		}
	}
	return false
}

// skipWriter drops the first skip bytes written to it and counts the
// total.
type skipWriter struct {
	w       io.Writer
	skip    int
	written int
}

func (s *skipWriter) Write(p []byte) (int, error) {
	n := len(p)
	start := s.written
	s.written += n
	if s.written <= s.skip {
		return n, nil
	}
	if start < s.skip {
		p = p[s.skip-start:]
	}
	if _, err := s.w.Write(p); err != nil {
		return 0, err
	}
	return n, nil
}
