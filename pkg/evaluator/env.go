package evaluator

import "sort"

// Env is a scoped environment for variable bindings.
// Each scope holds a reference to its parent; closures keep their defining
// scope alive for as long as they are reachable.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Define binds a variable in this scope, replacing any previous binding.
func (e *Env) Define(name string, val Value) {
	e.bindings[name] = val
}

// Get looks up a variable by name, traversing parent scopes.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Assign updates an existing binding, traversing parent scopes.
func (e *Env) Assign(name string, val Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			env.bindings[name] = val
			return true
		}
	}
	return false
}

// Ancestor walks distance parent links up from e.
func (e *Env) Ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.parent
	}
	return env
}

// GetAt looks name up in the scope exactly distance links above e.
func (e *Env) GetAt(distance int, name string) (Value, bool) {
	env := e.Ancestor(distance)
	if env == nil {
		return nil, false
	}
	val, ok := env.bindings[name]
	return val, ok
}

// AssignAt updates name in the scope exactly distance links above e.
func (e *Env) AssignAt(distance int, name string, val Value) bool {
	env := e.Ancestor(distance)
	if env == nil {
		return false
	}
	if _, ok := env.bindings[name]; !ok {
		return false
	}
	env.bindings[name] = val
	return true
}

// Names returns the names bound directly in this scope, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
