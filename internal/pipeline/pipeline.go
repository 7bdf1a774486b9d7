// Package pipeline chains the lexer, parser, analyzer, optimizer and
// interpreter. Each stage fails fast and the first error is returned
// wrapped with the operation and file name.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hassan/kotlinc/internal/config"
	"github.com/hassan/kotlinc/internal/interp"
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
)

// Pipeline runs source text through the configured stages.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a pipeline. A nil cfg means config.Default() and a nil
// logger means slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Checked is an analyzed program.
type Checked struct {
	Program *ast.Program
	Info    *semantic.Info
}

// Tokens returns the token stream of src, ending with EOF.
func (p *Pipeline) Tokens(src, filename string) ([]lexer.Token, error) {
	tokens, err := p.lex(src, filename)
	if err != nil {
		return nil, wrap("tokens", filename, err)
	}
	return tokens, nil
}

// Format parses src and renders it in canonical form.
func (p *Pipeline) Format(src, filename string) (string, error) {
	prog, err := p.parse(src, filename)
	if err != nil {
		return "", wrap("fmt", filename, err)
	}
	return ast.Print(prog), nil
}

// Check parses and analyzes src. Warnings are logged and kept in the
// returned Info.
func (p *Pipeline) Check(src, filename string) (*Checked, error) {
	checked, err := p.check(src, filename)
	if err != nil {
		return nil, wrap("check", filename, err)
	}
	return checked, nil
}

// Run checks src, optimizes it when enabled, and runs its entry point
// writing program output to out.
func (p *Pipeline) Run(src, filename string, out io.Writer) error {
	if err := p.run(src, filename, out); err != nil {
		return wrap("run", filename, err)
	}
	return nil
}

// RunFile reads path and runs it.
func (p *Pipeline) RunFile(path string, out io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	return p.Run(string(src), path, out)
}

func (p *Pipeline) run(src, filename string, out io.Writer) error {
	checked, err := p.check(src, filename)
	if err != nil {
		return err
	}
	if err := p.optimize(checked); err != nil {
		return err
	}
	return p.Execute(checked, out)
}

// Execute runs the entry point of an analyzed program.
func (p *Pipeline) Execute(checked *Checked, out io.Writer) error {
	it := interp.New(checked.Program, checked.Info,
		interp.WithEntryPoint(p.cfg.Interpreter.EntryPoint),
		interp.WithMaxCallDepth(p.cfg.Interpreter.MaxCallDepth))
	p.logger.Debug("stage", "stage", "run", "entry", p.cfg.Interpreter.EntryPoint)
	return it.Run(out)
}

func (p *Pipeline) lex(src, filename string) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(src, filename)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("stage", "stage", "lex", "file", filename, "tokens", len(tokens))
	return tokens, nil
}

func (p *Pipeline) parse(src, filename string) (*ast.Program, error) {
	tokens, err := p.lex(src, filename)
	if err != nil {
		return nil, err
	}
	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}
	if prog.Filename == "" {
		prog.Filename = filename
	}
	p.logger.Debug("stage", "stage", "parse", "file", filename, "decls", len(prog.Decls))
	return prog, nil
}

func (p *Pipeline) check(src, filename string) (*Checked, error) {
	prog, err := p.parse(src, filename)
	if err != nil {
		return nil, err
	}
	info, err := p.Analyze(prog)
	if err != nil {
		return nil, err
	}
	return &Checked{Program: prog, Info: info}, nil
}

// Analyze runs the analyzer with the configured shadowing policy and
// logs its warnings.
func (p *Pipeline) Analyze(prog *ast.Program) (*semantic.Info, error) {
	info, err := semantic.New(semantic.WithShadowing(p.cfg.Shadowing())).Analyze(prog)
	if err != nil {
		return nil, err
	}
	for _, w := range info.Warnings {
		p.logger.Warn(w.Msg, "pos", w.Pos.String())
	}
	p.logger.Debug("stage", "stage", "analyze", "file", prog.Filename, "warnings", len(info.Warnings))
	return info, nil
}

func (p *Pipeline) optimize(checked *Checked) error {
	opt, err := p.cfg.NewOptimizer()
	if err != nil || opt == nil {
		return err
	}
	opt.SetLogger(p.logger)
	stats, err := opt.Optimize(checked.Program, checked.Info)
	if err != nil {
		return err
	}
	p.logger.Debug("stage", "stage", "optimize",
		"folded", stats.ConstantsFolded,
		"removed", stats.StatementsRemoved,
		"iterations", stats.Iterations)
	return nil
}

func wrap(op, filename string, err error) error {
	return fmt.Errorf("pipeline: %s %s: %w", op, filename, err)
}
