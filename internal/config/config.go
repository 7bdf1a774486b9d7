// Package config loads the YAML settings shared by the kotlinc commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hassan/kotlinc/internal/interp"
	"github.com/hassan/kotlinc/internal/optimizer"
	"github.com/hassan/kotlinc/internal/semantic"
)

// Config is the root of kotlinc.yaml.
type Config struct {
	Interpreter Interpreter `yaml:"interpreter"`
	Diagnostics Diagnostics `yaml:"diagnostics"`
	Optimizer   Optimizer   `yaml:"optimizer"`
	Log         Log         `yaml:"log"`
	REPL        REPL        `yaml:"repl"`
}

type Interpreter struct {
	EntryPoint   string `yaml:"entry_point"`
	MaxCallDepth int    `yaml:"max_call_depth"`
}

type Diagnostics struct {
	// Shadowing is one of warn, error or ignore.
	Shadowing string `yaml:"shadowing"`
}

type Optimizer struct {
	Enabled       bool     `yaml:"enabled"`
	MaxIterations int      `yaml:"max_iterations"`
	Passes        []string `yaml:"passes"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type REPL struct {
	HistoryFile  string `yaml:"history_file"`
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Interpreter: Interpreter{
			EntryPoint:   interp.DefaultEntryPoint,
			MaxCallDepth: interp.DefaultMaxCallDepth,
		},
		Diagnostics: Diagnostics{Shadowing: semantic.ShadowWarn.String()},
		Optimizer: Optimizer{
			MaxIterations: optimizer.DefaultMaxIterations,
			Passes:        []string{optimizer.PassConstantFolding, optimizer.PassDeadCode},
		},
		Log: Log{Level: "info", Format: "text"},
		REPL: REPL{
			HistoryFile:  ".kotlinc_history",
			Prompt:       "kt> ",
			Continuation: "... ",
		},
	}
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file, path)
}

// Parse decodes a configuration from r on top of the defaults. Unknown
// keys are rejected. An empty document yields the defaults.
func Parse(r io.Reader, name string) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationError
	add := func(format string, args ...any) {
		errs.Issues = append(errs.Issues, fmt.Sprintf(format, args...))
	}

	if !isIdentifier(c.Interpreter.EntryPoint) {
		add("interpreter.entry_point must be a function name, got %q", c.Interpreter.EntryPoint)
	}
	if c.Interpreter.MaxCallDepth <= 0 {
		add("interpreter.max_call_depth must be positive, got %d", c.Interpreter.MaxCallDepth)
	}
	if _, err := semantic.ParseShadowingPolicy(c.Diagnostics.Shadowing); err != nil {
		add("diagnostics.shadowing: %v", err)
	}
	if c.Optimizer.MaxIterations <= 0 {
		add("optimizer.max_iterations must be positive, got %d", c.Optimizer.MaxIterations)
	}
	seen := make(map[string]bool, len(c.Optimizer.Passes))
	for i, name := range c.Optimizer.Passes {
		if _, err := optimizer.PassByName(name); err != nil {
			add("optimizer.passes[%d]: %v", i, err)
		}
		if seen[name] {
			add("optimizer.passes[%d]: %q listed twice", i, name)
		}
		seen[name] = true
	}
	if _, err := c.Log.level(); err != nil {
		add("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.REPL.Prompt == "" {
		add("repl.prompt must not be empty")
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Shadowing returns the analyzer policy for diagnostics.shadowing.
func (c *Config) Shadowing() semantic.ShadowingPolicy {
	policy, _ := semantic.ParseShadowingPolicy(c.Diagnostics.Shadowing)
	return policy
}

// NewOptimizer builds the configured optimizer, or returns nil when
// optimization is disabled.
func (c *Config) NewOptimizer() (*optimizer.Optimizer, error) {
	if !c.Optimizer.Enabled {
		return nil, nil
	}
	opt, err := optimizer.FromNames(c.Optimizer.Passes)
	if err != nil {
		return nil, err
	}
	opt.SetMaxIterations(c.Optimizer.MaxIterations)
	return opt, nil
}

func (l Log) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds a logger writing to w in the configured format.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
