package interp

import (
	"github.com/hassan/kotlinc/internal/semantic/types"
	"github.com/hassan/kotlinc/internal/symtab"
)

// Env is one runtime frame. Bindings are keyed by the symbol the
// analyzer resolved, so lookup never compares names.
type Env struct {
	values map[*symtab.Symbol]Value
	parent *Env

	// this is the receiver in method bodies and during construction.
	this *ObjectValue
}

// NewEnv creates an environment nested under parent.
func NewEnv(parent *Env) *Env {
	return &Env{values: make(map[*symtab.Symbol]Value), parent: parent}
}

// Define binds sym in this frame.
func (e *Env) Define(sym *symtab.Symbol, v Value) {
	e.values[sym] = v
}

// Lookup finds sym, searching outward through the chain.
func (e *Env) Lookup(sym *symtab.Symbol) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[sym]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign rebinds sym in the frame that defines it.
func (e *Env) Assign(sym *symtab.Symbol, v Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[sym]; ok {
			env.values[sym] = v
			return true
		}
	}
	return false
}

// Receiver returns the innermost bound receiver whose class is class.
func (e *Env) Receiver(class *types.ClassType) *ObjectValue {
	for env := e; env != nil; env = env.parent {
		if env.this != nil && env.this.Class.Type == class {
			return env.this
		}
	}
	return nil
}

// This returns the innermost bound receiver.
func (e *Env) This() *ObjectValue {
	for env := e; env != nil; env = env.parent {
		if env.this != nil {
			return env.this
		}
	}
	return nil
}
