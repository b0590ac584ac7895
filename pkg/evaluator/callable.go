package evaluator

import (
	"github.com/woven-lang/woven/pkg/ast"
)

// Variadic marks a native function that accepts any number of arguments.
const Variadic = -1

// NativeFunc is the host callback behind a native function.
type NativeFunc func(args []Value) (Value, error)

// Native is a function implemented by the host.
type Native struct {
	Name  string
	Arity int // Variadic for any number of arguments
	Fn    NativeFunc
}

func (*Native) wovenValue() {}

// Fn is a user-defined function closed over its defining environment.
type Fn struct {
	Decl    *ast.FnDecl
	Closure *Env
	IsInit  bool
}

func (*Fn) wovenValue() {}

// Name returns the declared function name.
func (f *Fn) Name() string {
	return f.Decl.Name
}

// Arity returns the number of declared parameters.
func (f *Fn) Arity() int {
	return len(f.Decl.Params)
}

// Bind returns a copy of f whose closure is a fresh scope defining `this`.
func (f *Fn) Bind(inst *Instance) *Fn {
	env := f.Closure.Child()
	env.Define("this", inst)
	return &Fn{Decl: f.Decl, Closure: env, IsInit: f.IsInit}
}

// Klass is a user-defined class: a name and a method table.
type Klass struct {
	Name    string
	Methods map[string]*Fn
}

func (*Klass) wovenValue() {}

// FindMethod looks up a method by name.
func (k *Klass) FindMethod(name string) (*Fn, bool) {
	m, ok := k.Methods[name]
	return m, ok
}

// Arity is the initializer's arity, or 0 without one.
func (k *Klass) Arity() int {
	if init, ok := k.FindMethod(initializerName); ok {
		return init.Arity()
	}
	return 0
}

// Instance is one object constructed from a Klass.
type Instance struct {
	Klass  *Klass
	Fields map[string]Value
}

func (*Instance) wovenValue() {}

// NewInstance creates an instance with no fields.
func NewInstance(k *Klass) *Instance {
	return &Instance{Klass: k, Fields: make(map[string]Value)}
}

// Get returns a field, or a method bound to the instance.
func (i *Instance) Get(name string) (Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	if m, ok := i.Klass.FindMethod(name); ok {
		return m.Bind(i), true
	}
	return nil, false
}

// Set assigns a field.
func (i *Instance) Set(name string, val Value) {
	i.Fields[name] = val
}
