package semantic

import (
	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/symtab"
)

// Definite assignment
//
// A local declared without an initializer, such as
//
//	val x: Int
//	if (c) x = 1 else x = 2
//	println(x)
//
// must be assigned on every path before it is read. A val may be
// assigned only where no earlier assignment is possible on the path.
//
// DESIGN CHOICE: the state lives in one map that follows the checker
// through the body. Branches check a copy each and are joined after;
// a branch that never completes normally (return, break, continue)
// drops out of the join. Loop bodies may run zero times, so what they
// assign does not count as definitely assigned after the loop.

type assignState uint8

const (
	// maybeAssigned is set when some path has assigned the variable.
	maybeAssigned assignState = 1 << iota
	// definitelyAssigned is set when every path has assigned it.
	definitelyAssigned
)

// flow maps each tracked local to its assignment state. Locals with an
// initializer are never tracked.
type flow map[*symtab.Symbol]assignState

func (f flow) clone() flow {
	c := make(flow, len(f))
	for sym, st := range f {
		c[sym] = st
	}
	return c
}

// join combines the states at the end of two branches.
func join(a, b flow, aJumps, bJumps bool) flow {
	switch {
	case aJumps && bJumps:
		// The code after is unreachable: anything may be read there.
		out := b.clone()
		for sym, st := range a {
			out[sym] |= st
		}
		for sym := range out {
			out[sym] |= definitelyAssigned
		}
		return out
	case aJumps:
		return b
	case bJumps:
		return a
	}
	out := make(flow, len(a))
	for sym, st := range a {
		other := b[sym]
		out[sym] = (st|other)&maybeAssigned | (st&other)&definitelyAssigned
	}
	for sym, st := range b {
		if _, ok := a[sym]; !ok {
			out[sym] = st & maybeAssigned
		}
	}
	return out
}

// afterLoop is the state after a loop that may not run its body.
func afterLoop(before, body flow) flow {
	out := before.clone()
	for sym, st := range body {
		if _, ok := out[sym]; ok {
			out[sym] |= st & maybeAssigned
		}
	}
	return out
}

// branch checks fn on a copy of the current state and returns the copy
// with the state it ended in.
func (a *Analyzer) branch(fn func()) flow {
	saved := a.flow
	a.flow = saved.clone()
	fn()
	out := a.flow
	a.flow = saved
	return out
}

// requireInitialized reports a read of a tracked local that is not
// assigned on every path.
func (a *Analyzer) requireInitialized(sym *symtab.Symbol, use lexer.Position) {
	if st, ok := a.flow[sym]; ok && st&definitelyAssigned == 0 {
		a.errorf(use, "variable '%s' must be initialized", sym.Name)
	}
}

// assign records a plain assignment to sym, which the caller has
// already resolved.
func (a *Analyzer) assign(sym *symtab.Symbol, use lexer.Position) {
	st, tracked := a.flow[sym]
	if sym.CanAssign() {
		if tracked && sameFunction(a.ctx.scope, sym.Scope) {
			a.flow[sym] = maybeAssigned | definitelyAssigned
		}
		return
	}
	if !tracked {
		a.errorf(use, "val cannot be reassigned")
	}
	switch crossing(a.ctx.scope, sym.Scope) {
	case symtab.ScopeFunction:
		a.errorf(use, "captured values initialization is forbidden due to possible reassignment")
	case symtab.ScopeLoop:
		a.errorf(use, "val cannot be reassigned")
	}
	if st&maybeAssigned != 0 {
		a.errorf(use, "val cannot be reassigned")
	}
	a.flow[sym] = maybeAssigned | definitelyAssigned
}

// crossing returns the kind of the first function or loop frame between
// scope and its ancestor outer. A class frame counts as a function. It
// returns ScopeBlock when there is none.
func crossing(scope, outer *symtab.Scope) symtab.ScopeKind {
	for s := scope; s != nil && s != outer; s = s.Parent {
		switch s.Kind {
		case symtab.ScopeFunction, symtab.ScopeClass:
			return symtab.ScopeFunction
		case symtab.ScopeLoop:
			return symtab.ScopeLoop
		}
	}
	return symtab.ScopeBlock
}

func sameFunction(scope, outer *symtab.Scope) bool {
	return crossing(scope, outer) != symtab.ScopeFunction
}
