// Command kotlinc runs, checks and formats programs written in the
// supported Kotlin subset, and offers an interactive REPL.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hassan/kotlinc/internal/config"
	"github.com/hassan/kotlinc/internal/pipeline"
)

const appName = "kotlinc"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageText = `usage: kotlinc <command> [flags] [file]

Commands:
  run [-config file] [-O] file.kt   run a program
  check [-config file] file.kt      analyze a program and report warnings
  fmt [-config file] file.kt        print the canonical form of a program
  tokens [-config file] file.kt     dump the token stream
  repl [-config file]               start an interactive session
  help                              show this help
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:], stdout, stderr)
	case "check":
		return cmdCheck(args[1:], stdout, stderr)
	case "fmt":
		return cmdFmt(args[1:], stdout, stderr)
	case "tokens":
		return cmdTokens(args[1:], stdout, stderr)
	case "repl":
		return cmdRepl(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usageText)
		return exitOK
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n\n%s", appName, args[0], usageText)
		return exitUsage
	}
}

// command holds what every subcommand parses from its flags.
type command struct {
	fs         *flag.FlagSet
	configPath *string
	stderr     io.Writer
}

// newCommand creates the flag set of a subcommand. Every subcommand
// accepts -config.
func newCommand(name string, stderr io.Writer) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return &command{
		fs:         fs,
		configPath: fs.String("config", "", "path to a YAML configuration file"),
		stderr:     stderr,
	}
}

// parse parses args and expects exactly want positional arguments.
func (c *command) parse(args []string, want int) ([]string, bool) {
	if err := c.fs.Parse(args); err != nil {
		return nil, false
	}
	if c.fs.NArg() != want {
		fmt.Fprintf(c.stderr, "%s %s: expected %d file argument(s), got %d\n", appName, c.fs.Name(), want, c.fs.NArg())
		return nil, false
	}
	return c.fs.Args(), true
}

// setup loads the configuration and installs the logger it describes.
func (c *command) setup() (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if *c.configPath != "" {
		loaded, err := config.Load(*c.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	logger := cfg.Log.NewLogger(c.stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func (c *command) fail(err error) int {
	fmt.Fprintf(c.stderr, "%s: %v\n", appName, err)
	return exitError
}

func cmdRun(args []string, stdout, stderr io.Writer) int {
	c := newCommand("run", stderr)
	optimize := c.fs.Bool("O", false, "enable the optimizer")
	files, ok := c.parse(args, 1)
	if !ok {
		return exitUsage
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return c.fail(err)
	}
	if *optimize {
		cfg.Optimizer.Enabled = true
	}
	if err := pipeline.New(cfg, logger).RunFile(files[0], stdout); err != nil {
		return c.fail(err)
	}
	return exitOK
}

func cmdCheck(args []string, stdout, stderr io.Writer) int {
	c := newCommand("check", stderr)
	files, ok := c.parse(args, 1)
	if !ok {
		return exitUsage
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return c.fail(err)
	}
	src, err := os.ReadFile(files[0])
	if err != nil {
		return c.fail(err)
	}
	checked, err := pipeline.New(cfg, logger).Check(string(src), files[0])
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(stdout, "%s: ok (%d declarations, %d warnings)\n",
		files[0], len(checked.Program.Decls), len(checked.Info.Warnings))
	return exitOK
}

func cmdFmt(args []string, stdout, stderr io.Writer) int {
	c := newCommand("fmt", stderr)
	files, ok := c.parse(args, 1)
	if !ok {
		return exitUsage
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return c.fail(err)
	}
	src, err := os.ReadFile(files[0])
	if err != nil {
		return c.fail(err)
	}
	out, err := pipeline.New(cfg, logger).Format(string(src), files[0])
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprint(stdout, out)
	return exitOK
}

func cmdTokens(args []string, stdout, stderr io.Writer) int {
	c := newCommand("tokens", stderr)
	files, ok := c.parse(args, 1)
	if !ok {
		return exitUsage
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return c.fail(err)
	}
	src, err := os.ReadFile(files[0])
	if err != nil {
		return c.fail(err)
	}
	tokens, err := pipeline.New(cfg, logger).Tokens(string(src), files[0])
	if err != nil {
		return c.fail(err)
	}
	for _, tok := range tokens {
		fmt.Fprintf(stdout, "%d:%d\t%s\t%q\n", tok.Position.Line, tok.Position.Column, tok.Type, tok.Lexeme)
	}
	return exitOK
}

func cmdRepl(args []string, stdout, stderr io.Writer) int {
	c := newCommand("repl", stderr)
	if _, ok := c.parse(args, 0); !ok {
		return exitUsage
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return c.fail(err)
	}
	return runREPL(cfg, logger, stdout)
}
