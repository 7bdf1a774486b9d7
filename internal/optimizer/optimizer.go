// Package optimizer rewrites an analyzed program into a simpler one
// with the same observable behaviour.
package optimizer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
)

// Pass is a single AST rewrite. Run reports whether it changed the
// program.
type Pass interface {
	Name() string
	Run(prog *ast.Program, info *semantic.Info, stats *Stats) (bool, error)
}

// Pass names accepted by PassByName.
const (
	PassConstantFolding = "constant-folding"
	PassDeadCode        = "dead-code"
)

// DefaultMaxIterations bounds the fixed-point loop.
const DefaultMaxIterations = 10

// PassByName returns the pass registered under name.
func PassByName(name string) (Pass, error) {
	switch name {
	case PassConstantFolding:
		return &ConstantFoldingPass{}, nil
	case PassDeadCode:
		return &DeadCodeEliminationPass{}, nil
	}
	return nil, fmt.Errorf("unknown optimizer pass %q", name)
}

// Optimizer runs its passes in order until none of them changes the
// program or the iteration limit is reached.
type Optimizer struct {
	passes        []Pass
	maxIterations int
	logger        *slog.Logger
}

// NewOptimizer creates an optimizer with the default passes.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&ConstantFoldingPass{},
			&DeadCodeEliminationPass{},
		},
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
}

// FromNames creates an optimizer running the named passes in order.
func FromNames(names []string) (*Optimizer, error) {
	o := NewOptimizer()
	o.passes = nil
	for _, name := range names {
		pass, err := PassByName(name)
		if err != nil {
			return nil, err
		}
		o.AddPass(pass)
	}
	return o, nil
}

// AddPass appends a pass.
func (o *Optimizer) AddPass(pass Pass) {
	o.passes = append(o.passes, pass)
}

// SetMaxIterations sets the maximum number of rounds. Values below one
// are treated as one.
func (o *Optimizer) SetMaxIterations(max int) {
	o.maxIterations = max
}

// SetLogger sets the logger that receives per-round debug records.
func (o *Optimizer) SetLogger(logger *slog.Logger) {
	o.logger = logger
}

// Optimize rewrites prog in place. Folded literals get their types
// recorded in info so later stages see a fully typed program.
func (o *Optimizer) Optimize(prog *ast.Program, info *semantic.Info) (*Stats, error) {
	stats := NewStats()
	rounds := max(o.maxIterations, 1)

	for stats.Iterations < rounds {
		stats.Iterations++
		changed := false
		for _, pass := range o.passes {
			stats.PassExecutions[pass.Name()]++
			c, err := pass.Run(prog, info, stats)
			if err != nil {
				return stats, fmt.Errorf("pass %s failed: %w", pass.Name(), err)
			}
			changed = changed || c
		}
		o.logger.Debug("optimizer round",
			"iteration", stats.Iterations,
			"changed", changed,
			"folded", stats.ConstantsFolded,
			"removed", stats.StatementsRemoved)
		if !changed {
			break
		}
	}
	return stats, nil
}

// Stats tracks what the passes did.
type Stats struct {
	ConstantsFolded   int
	StatementsRemoved int

	// Iterations is the number of rounds run, including the final
	// round that found nothing to change.
	Iterations int

	PassExecutions map[string]int
}

// NewStats creates an empty stats tracker.
func NewStats() *Stats {
	return &Stats{PassExecutions: make(map[string]int)}
}

// String returns a one-line summary.
func (s *Stats) String() string {
	names := make([]string, 0, len(s.PassExecutions))
	for name := range s.PassExecutions {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		names[i] = fmt.Sprintf("%s=%d", name, s.PassExecutions[name])
	}
	return fmt.Sprintf("constants folded: %d, statements removed: %d, iterations: %d (%s)",
		s.ConstantsFolded, s.StatementsRemoved, s.Iterations, strings.Join(names, " "))
}
