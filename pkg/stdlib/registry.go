// Package stdlib provides the Woven native function registry.
package stdlib

import (
	"fmt"
	"sort"

	"github.com/woven-lang/woven/pkg/evaluator"
)

// Registry holds registered native functions.
type Registry struct {
	fns map[string]*evaluator.Native
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*evaluator.Native),
	}
}

// Register adds a native function, replacing any with the same name.
func (r *Registry) Register(name string, arity int, fn evaluator.NativeFunc) {
	r.fns[name] = &evaluator.Native{Name: name, Arity: arity, Fn: fn}
}

// Get retrieves a native function by name.
func (r *Registry) Get(name string) *evaluator.Native {
	return r.fns[name]
}

// All returns all registered native functions.
func (r *Registry) All() map[string]*evaluator.Native {
	return r.fns
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a registry holding every built-in native.
func Default() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// ---- argument helpers ----

func numberArg(fn string, args []evaluator.Value, i int) (float64, error) {
	n, ok := args[i].(evaluator.Number)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number, got %s", fn, i+1, evaluator.TypeName(args[i]))
	}
	return n.Value, nil
}

func stringArg(fn string, args []evaluator.Value, i int) (string, error) {
	s, ok := args[i].(evaluator.String)
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string, got %s", fn, i+1, evaluator.TypeName(args[i]))
	}
	return s.Value, nil
}

func vectorArg(fn string, args []evaluator.Value, i int) ([]float64, error) {
	v, ok := args[i].(evaluator.Vector)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d must be a vector, got %s", fn, i+1, evaluator.TypeName(args[i]))
	}
	return v.Items, nil
}

func matrixArg(fn string, args []evaluator.Value, i int) (evaluator.Matrix, error) {
	m, ok := args[i].(evaluator.Matrix)
	if !ok {
		return evaluator.Matrix{}, fmt.Errorf("%s: argument %d must be a matrix, got %s", fn, i+1, evaluator.TypeName(args[i]))
	}
	return m, nil
}
