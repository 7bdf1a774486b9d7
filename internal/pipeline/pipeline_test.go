package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hassan/kotlinc/internal/config"
	"github.com/hassan/kotlinc/internal/interp"
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser"
	"github.com/hassan/kotlinc/internal/semantic"
)

func TestRun_ErrorsKeepTheirType(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
		want     string
	}{
		{"lex", "fun main() { val s = \"open }", lexer.ErrLex, "pipeline: run main.kt: main.kt:1:22: lex error"},
		{"syntax", "fun main( {}", parser.ErrSyntax, "pipeline: run main.kt: main.kt:1:"},
		{"semantic", "fun main() { println(q) }", semantic.ErrSemantic, "pipeline: run main.kt: main.kt:1:22: semantic error: unresolved reference: q"},
		{"runtime", "fun main() { println(1 / 0) }", interp.ErrRuntime, "pipeline: run main.kt: main.kt:1:24: runtime error: / by zero"},
	}

	p := New(nil, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Run(tt.src, "main.kt", &bytes.Buffer{})
			if err == nil {
				t.Fatal("Run() succeeded")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("error = %q, want prefix %q", err.Error(), tt.want)
			}
		})
	}

	var rerr *interp.RuntimeError
	err := p.Run("fun main() { println(arrayOf(1)[1]) }", "main.kt", &bytes.Buffer{})
	if !errors.As(err, &rerr) {
		t.Fatalf("errors.As(%v, *RuntimeError) = false", err)
	}
}

func TestRun_UsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Interpreter.EntryPoint = "start"
	cfg.Interpreter.MaxCallDepth = 10
	p := New(cfg, quietLogger())

	var out bytes.Buffer
	if err := p.Run(`fun start() { println("started") }`, "a.kt", &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "started\n" {
		t.Errorf("output = %q", out.String())
	}

	err := p.Run("fun f(n: Int): Int = f(n) + 1\nfun start() { f(0) }", "a.kt", &out)
	if err == nil || !strings.Contains(err.Error(), "stack overflow: call depth exceeds 10") {
		t.Errorf("error = %v, want stack overflow at depth 10", err)
	}
}

func TestCheck_ShadowingPolicy(t *testing.T) {
	src := "fun main() {\n    val x = 1\n    if (x > 0) {\n        val x = 2\n        println(x)\n    }\n}"

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	checked, err := New(nil, logger).Check(src, "s.kt")
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(checked.Info.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", checked.Info.Warnings)
	}
	if !strings.Contains(logs.String(), `msg="name shadowed: x" pos=s.kt:4:13`) {
		t.Errorf("log = %q", logs.String())
	}

	cfg := config.Default()
	cfg.Diagnostics.Shadowing = "error"
	_, err = New(cfg, quietLogger()).Check(src, "s.kt")
	if !errors.Is(err, semantic.ErrSemantic) {
		t.Errorf("Check() with shadowing=error: %v", err)
	}
}

func TestRun_LogsStages(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := config.Default()
	cfg.Optimizer.Enabled = true

	var out bytes.Buffer
	if err := New(cfg, logger).Run("fun main() { println(1 + 2) }", "m.kt", &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "3\n" {
		t.Errorf("output = %q", out.String())
	}
	for _, want := range []string{"stage=lex", "stage=parse", "stage=analyze", "stage=optimize folded=1", "stage=run"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("log is missing %q:\n%s", want, logs.String())
		}
	}
	if strings.Contains(logs.String(), "\n3\n") {
		t.Error("program output went through the logger")
	}
}

func TestTokens(t *testing.T) {
	tokens, err := New(nil, quietLogger()).Tokens("val x = 1", "t.kt")
	if err != nil {
		t.Fatal(err)
	}
	want := []lexer.TokenType{lexer.TokenVal, lexer.TokenIdentifier, lexer.TokenAssign, lexer.TokenInt, lexer.TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v", tokens)
	}
	for i, tok := range tokens {
		if tok.Type != want[i] {
			t.Errorf("tokens[%d] = %v, want %v", i, tok.Type, want[i])
		}
	}
}

func TestFormat(t *testing.T) {
	got, err := New(nil, quietLogger()).Format("fun   main(){println( 1+2 )}", "f.kt")
	if err != nil {
		t.Fatal(err)
	}
	if want := "fun main() {\n    println(1 + 2)\n}\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
	if _, err := New(nil, quietLogger()).Format("fun (", "f.kt"); err == nil || !strings.HasPrefix(err.Error(), "pipeline: fmt f.kt: ") {
		t.Errorf("Format(invalid) error = %v", err)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.kt")
	if err := os.WriteFile(path, []byte(`fun main() { println("hi") }`), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := New(nil, quietLogger()).RunFile(path, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hi\n" {
		t.Errorf("output = %q", out.String())
	}

	err := New(nil, quietLogger()).RunFile(filepath.Join(t.TempDir(), "none.kt"), &out)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("RunFile(missing) error = %v", err)
	}
}
