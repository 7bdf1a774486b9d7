package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	prog := writeFile(t, "main.kt", "fun main() {\n    val n = 2 * 21\n    println(n)\n}\n")
	bad := writeFile(t, "bad.kt", "fun main() { println(q) }\n")
	start := writeFile(t, "start.kt", "fun start() { println(\"from start\") }\n")
	cfg := writeFile(t, "kotlinc.yaml", "interpreter:\n  entry_point: start\n")
	badCfg := writeFile(t, "bad.yaml", "interpreter:\n  entry: start\n")
	lexBad := writeFile(t, "lex.kt", "val s = \"open\n")

	tests := []struct {
		name       string
		args       []string
		code       int
		stdout     string
		stderrPart string
	}{
		{name: "run", args: []string{"run", prog}, code: exitOK, stdout: "42\n"},
		{name: "run optimized", args: []string{"run", "-O", prog}, code: exitOK, stdout: "42\n"},
		{name: "run with config", args: []string{"run", "-config", cfg, start}, code: exitOK, stdout: "from start\n"},
		{name: "semantic error", args: []string{"run", bad}, code: exitError, stderrPart: "unresolved reference: q"},
		{name: "bad config", args: []string{"run", "-config", badCfg, prog}, code: exitError, stderrPart: "config: parse"},
		{name: "missing file", args: []string{"run", filepath.Join(t.TempDir(), "none.kt")}, code: exitError, stderrPart: "pipeline: read"},
		{name: "no file", args: []string{"run"}, code: exitUsage, stderrPart: "expected 1 file argument(s), got 0"},
		{name: "unknown flag", args: []string{"run", "-x", prog}, code: exitUsage, stderrPart: "flag provided but not defined"},
		{name: "check", args: []string{"check", prog}, code: exitOK, stdout: prog + ": ok (1 declarations, 0 warnings)\n"},
		{name: "check error", args: []string{"check", bad}, code: exitError, stderrPart: "pipeline: check"},
		{name: "fmt", args: []string{"fmt", prog}, code: exitOK, stdout: "fun main() {\n    val n = 2 * 21\n    println(n)\n}\n"},
		{name: "fmt with bad config", args: []string{"fmt", "-config", badCfg, prog}, code: exitError, stderrPart: "config: parse"},
		{name: "tokens with bad config", args: []string{"tokens", "-config", badCfg, prog}, code: exitError, stderrPart: "config: parse"},
		{name: "tokens lex error", args: []string{"tokens", lexBad}, code: exitError, stderrPart: "lex error"},
		{name: "no command", args: nil, code: exitUsage, stderrPart: "usage: kotlinc"},
		{name: "unknown command", args: []string{"build"}, code: exitUsage, stderrPart: `unknown command "build"`},
		{name: "help", args: []string{"help"}, code: exitOK, stdout: usageText},
		{name: "repl arguments", args: []string{"repl", prog}, code: exitUsage, stderrPart: "expected 0 file argument(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.code, stderr.String())
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.stdout)
			}
			if !strings.Contains(stderr.String(), tt.stderrPart) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.stderrPart)
			}
		})
	}
}

func TestRun_Tokens(t *testing.T) {
	path := writeFile(t, "t.kt", "val x = 1")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"tokens", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	want := "1:1\tVAL\t\"val\"\n" +
		"1:5\tIDENTIFIER\t\"x\"\n" +
		"1:7\tASSIGN\t\"=\"\n" +
		"1:9\tINT\t\"1\"\n" +
		"1:10\tEOF\t\"\"\n"
	if stdout.String() != want {
		t.Errorf("tokens =\n%s\nwant\n%s", stdout.String(), want)
	}
}

func TestRun_WarningsGoToStderr(t *testing.T) {
	path := writeFile(t, "w.kt", "fun main() {\n    val x = 1\n    if (x > 0) {\n        val x = 2\n        println(x)\n    }\n}\n")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"run", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if stdout.String() != "2\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "name shadowed: x") {
		t.Errorf("stderr = %q, want shadowing warning", stderr.String())
	}
}

func TestHistoryPath(t *testing.T) {
	if got := historyPath(""); got != "" {
		t.Errorf(`historyPath("") = %q`, got)
	}
	abs := filepath.Join(t.TempDir(), "hist")
	if got := historyPath(abs); got != abs {
		t.Errorf("historyPath(%q) = %q", abs, got)
	}
	if got := historyPath(".hist"); !strings.HasSuffix(got, ".hist") {
		t.Errorf(`historyPath(".hist") = %q`, got)
	}
}
