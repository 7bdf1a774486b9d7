package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/hassan/kotlinc/internal/config"
	"github.com/hassan/kotlinc/internal/repl"
)

const banner = "kotlinc REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for help."

func runREPL(cfg *config.Config, logger *slog.Logger, stdout io.Writer) int {
	fmt.Fprintln(stdout, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(cfg.REPL.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	session := repl.NewSession(cfg, stdout, logger)
	for {
		code, ok := readInput(ln, cfg.REPL.Prompt, cfg.REPL.Continuation)
		if !ok {
			fmt.Fprintln(stdout)
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if repl.IsCommand(code) {
			if session.Command(code) {
				break
			}
			continue
		}
		if err := session.Eval(code); err != nil {
			fmt.Fprintln(stdout, err)
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return exitOK
}

// historyPath resolves a relative history file against the home
// directory. An empty name disables history.
func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// readInput reads lines until they form a complete input. The second
// result is false at end of input.
func readInput(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if repl.IsCommand(src) || !repl.NeedsMore(src) {
			return src, true
		}
	}
}
