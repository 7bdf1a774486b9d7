// Package interp evaluates analyzed programs by walking the syntax tree.
//
// The evaluator trusts the analyzer: every name has a resolved symbol,
// every call a resolved target and every operator operands of the
// right types. Runtime failures are limited to what static checking
// cannot rule out, such as an index out of bounds, integer division by
// zero or exhausting the call depth.
package interp

import (
	"io"

	"github.com/hassan/kotlinc/internal/lexer"
	"github.com/hassan/kotlinc/internal/parser/ast"
	"github.com/hassan/kotlinc/internal/semantic"
	"github.com/hassan/kotlinc/internal/symtab"
)

const (
	DefaultEntryPoint   = "main"
	DefaultMaxCallDepth = 1024
)

// Interpreter runs one analyzed program.
type Interpreter struct {
	prog *ast.Program
	info *semantic.Info

	entryPoint   string
	maxCallDepth int

	out     io.Writer
	globals *Env
	env     *Env
	depth   int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithEntryPoint sets the name of the parameterless top-level function
// Run calls.
func WithEntryPoint(name string) Option {
	return func(i *Interpreter) { i.entryPoint = name }
}

// WithMaxCallDepth bounds nested calls and constructions.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) { i.maxCallDepth = n }
}

// New creates an interpreter for prog. info must come from a successful
// analysis of prog.
func New(prog *ast.Program, info *semantic.Info, opts ...Option) *Interpreter {
	i := &Interpreter{
		prog:         prog,
		info:         info,
		entryPoint:   DefaultEntryPoint,
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run initializes the top-level properties in declaration order, then
// calls the entry point, writing program output to out.
func (i *Interpreter) Run(out io.Writer) error {
	if err := i.Init(out); err != nil {
		return err
	}

	entry := i.info.Function(i.entryPoint)
	if entry == nil {
		return runtimeErrorf(i.prog.EOF, "no entry point: 'fun %s()' is not declared", i.entryPoint)
	}
	_, err := i.Call(entry, nil)
	return err
}

// Init binds the top-level declarations and evaluates the top-level
// property initializers without calling the entry point.
func (i *Interpreter) Init(out io.Writer) error {
	i.out = out
	i.globals = NewEnv(nil)
	i.env = i.globals
	i.depth = 0

	for _, decl := range i.prog.Decls {
		switch d := decl.(type) {
		case *ast.FunDecl:
			i.bindFunction(d)
		case *ast.ClassDecl:
			i.bindClass(d)
		}
	}
	for _, decl := range i.prog.Decls {
		if prop, ok := decl.(*ast.PropertyDecl); ok {
			if err := prop.Accept(i); err != nil {
				return i.escape(err, prop.Pos())
			}
		}
	}
	return nil
}

// Call invokes the top-level function fn with args.
func (i *Interpreter) Call(fn *symtab.Symbol, args []Value) (Value, error) {
	v, ok := i.globals.Lookup(fn)
	if !ok {
		return nil, runtimeErrorf(fn.Pos, "function '%s' is not bound", fn.Name)
	}
	f := v.(*Function)
	result, err := i.invoke(f.Decl, f.Closure, nil, args, fn.Pos)
	if err != nil {
		return nil, i.escape(err, fn.Pos)
	}
	return result, nil
}

// escape turns a control signal that left its construct into an error.
// The analyzer rejects such programs, so this only guards the API.
func (i *Interpreter) escape(err error, pos lexer.Position) error {
	switch err.(type) {
	case breakSignal, continueSignal:
		return runtimeErrorf(pos, "'break' and 'continue' are only allowed inside a loop")
	case returnSignal:
		return runtimeErrorf(pos, "'return' is not allowed here")
	}
	return err
}

func (i *Interpreter) bindFunction(decl *ast.FunDecl) {
	sym := i.info.Refs[decl]
	i.env.Define(sym, &Function{Symbol: sym, Decl: decl, Closure: i.env})
}

func (i *Interpreter) bindClass(decl *ast.ClassDecl) {
	sym := i.info.Refs[decl]
	i.env.Define(sym, &Class{Symbol: sym, Type: sym.Members.Class, Decl: decl, Closure: i.env})
}

// invoke runs a function or method body in a fresh frame under
// closure, with this bound for methods.
func (i *Interpreter) invoke(decl *ast.FunDecl, closure *Env, this *ObjectValue, args []Value, pos lexer.Position) (Value, error) {
	if err := i.enterCall(pos); err != nil {
		return nil, err
	}
	defer i.exitCall()

	frame := NewEnv(closure)
	frame.this = this
	for idx, p := range decl.Params {
		frame.Define(i.info.Refs[p], args[idx])
	}

	saved := i.env
	i.env = frame
	defer func() { i.env = saved }()

	var (
		result Value = UnitValue{}
		err    error
	)
	if decl.Body != nil {
		err = i.execBlock(decl.Body)
	} else {
		result, err = i.eval(decl.ExprBody)
	}
	if ret, ok := err.(returnSignal); ok {
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// construct creates an instance of class, evaluating the property
// initializers in declaration order with this bound to it.
func (i *Interpreter) construct(class *Class, pos lexer.Position) (Value, error) {
	if err := i.enterCall(pos); err != nil {
		return nil, err
	}
	defer i.exitCall()

	obj := &ObjectValue{Class: class, Fields: make([]Value, len(class.Decl.Properties))}
	frame := NewEnv(class.Closure)
	frame.this = obj

	saved := i.env
	i.env = frame
	defer func() { i.env = saved }()

	for idx, prop := range class.Decl.Properties {
		v, err := i.eval(prop.Value)
		if err != nil {
			return nil, err
		}
		obj.Fields[idx] = v
	}
	return obj, nil
}

func (i *Interpreter) enterCall(pos lexer.Position) error {
	if i.depth >= i.maxCallDepth {
		return runtimeErrorf(pos, "stack overflow: call depth exceeds %d", i.maxCallDepth)
	}
	i.depth++
	return nil
}

func (i *Interpreter) exitCall() {
	i.depth--
}

// eval evaluates expr in the current environment.
func (i *Interpreter) eval(expr ast.Expr) (Value, error) {
	v, err := expr.Accept(i)
	if err != nil {
		return nil, err
	}
	return v.(Value), nil
}

func (i *Interpreter) write(s string) error {
	_, err := io.WriteString(i.out, s)
	return err
}
