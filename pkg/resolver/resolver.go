// Package resolver implements static scope resolution for Woven programs.
//
// Resolve walks a parsed program once and records, for every variable
// reference, assignment and `this`, how many scopes lie between the use and
// the scope that declares the name. The evaluator creates exactly one
// environment per resolver scope, so a distance can be followed at runtime
// by walking that many parent links.
package resolver

import (
	"fmt"

	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/diagnostics"
)

// Distances maps a resolved expression node to its scope distance.
type Distances map[ast.Expr]int

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
)

// InitializerName is the method a class runs when it is called.
const InitializerName = "def"

type scope struct {
	bindings map[string]bool // name -> defined
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) hasLocal(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

func (s *scope) declare(name string) {
	s.bindings[name] = false
}

func (s *scope) define(name string) {
	s.bindings[name] = true
}

// find returns the distance from s to the scope declaring name.
func (s *scope) find(name string) (int, bool) {
	depth := 0
	for sc := s; sc != nil; sc = sc.parent {
		if sc.hasLocal(name) {
			return depth, true
		}
		depth++
	}
	return 0, false
}

func (s *scope) depth() int {
	d := 0
	for sc := s; sc.parent != nil; sc = sc.parent {
		d++
	}
	return d
}

type resolver struct {
	global    *scope
	scope     *scope
	hoisted   map[string]bool
	distances Distances
	fn        functionKind
	class     classKind
}

// Resolve computes scope distances for program. globals names the bindings
// that already exist in the global environment (natives, constants and
// earlier session definitions). Resolution stops at the first violation.
func Resolve(program *ast.Program, globals []string) (Distances, error) {
	global := newScope(nil)
	for _, name := range globals {
		global.define(name)
	}
	r := &resolver{
		global:    global,
		scope:     global,
		hoisted:   make(map[string]bool),
		distances: make(Distances),
	}

	// Top-level declarations are visible everywhere in the program, so a
	// function may call one declared after it.
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.VarStmt:
			r.hoisted[s.Name] = true
		case *ast.FnDecl:
			r.hoisted[s.Name] = true
		case *ast.ClassDecl:
			r.hoisted[s.Name] = true
		}
	}

	if err := r.resolveStmts(program.Statements); err != nil {
		return nil, err
	}
	return r.distances, nil
}

func (r *resolver) errorf(span ast.Span, phase, format string, args ...any) error {
	return diagnostics.MakeDiag(diagnostics.SemanticError, phase, fmt.Sprintf(format, args...), span)
}

func (r *resolver) beginScope() {
	r.scope = newScope(r.scope)
}

func (r *resolver) endScope() {
	r.scope = r.scope.parent
}

// declare adds name to the current scope as not yet defined. Outside the
// global scope a second declaration of the same name is a collision; at the
// global scope redefinition is allowed and keeps an existing definition
// visible to the new initializer.
func (r *resolver) declare(name string, span ast.Span) error {
	if r.scope == r.global {
		if !r.scope.bindings[name] {
			r.scope.declare(name)
		}
		return nil
	}
	if r.scope.hasLocal(name) {
		return r.errorf(span, "resolving a declaration", "name collision: '%s' is already declared in this scope", name)
	}
	r.scope.declare(name)
	return nil
}

func (r *resolver) resolveLocal(expr ast.Expr, name string, span ast.Span) error {
	if d, ok := r.scope.find(name); ok {
		r.distances[expr] = d
		return nil
	}
	if r.hoisted[name] {
		r.distances[expr] = r.scope.depth()
		return nil
	}
	return r.errorf(span, "resolving a variable", "undefined variable '%s'", name)
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := r.resolveStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VarStmt:
		if err := r.declare(s.Name, s.Span); err != nil {
			return err
		}
		if s.Init != nil {
			if err := r.resolveExpr(s.Init); err != nil {
				return err
			}
		}
		r.scope.define(s.Name)
		return nil

	case *ast.FnDecl:
		if err := r.declare(s.Name, s.Span); err != nil {
			return err
		}
		r.scope.define(s.Name)
		return r.resolveFunction(s, fnFunction)

	case *ast.ClassDecl:
		return r.resolveClass(s)

	case *ast.BlockStmt:
		r.beginScope()
		defer r.endScope()
		return r.resolveStmts(s.Stmts)

	case *ast.PrintStmt:
		return r.resolveExpr(s.Value)

	case *ast.ExprStmt:
		return r.resolveExpr(s.Expr)

	case *ast.ReturnStmt:
		switch r.fn {
		case fnNone:
			return r.errorf(s.Span, "resolving a return statement", "cannot return from top-level code")
		case fnInitializer:
			return r.errorf(s.Span, "resolving a return statement", "cannot return from an initializer")
		}
		if s.Value != nil {
			return r.resolveExpr(s.Value)
		}
		return nil

	case *ast.IfStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil

	case *ast.WhileStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		return r.resolveStmt(s.Body)
	}
	return r.errorf(stmt.NodeSpan(), "resolving a statement", "unsupported statement %s", stmt.Kind())
}

func (r *resolver) resolveFunction(decl *ast.FnDecl, kind functionKind) error {
	enclosing := r.fn
	r.fn = kind
	r.beginScope()
	defer func() {
		r.endScope()
		r.fn = enclosing
	}()

	for _, param := range decl.Params {
		if r.scope.hasLocal(param) {
			return r.errorf(decl.Span, "resolving a function declaration", "name collision: duplicate parameter '%s'", param)
		}
		r.scope.define(param)
	}
	return r.resolveStmts(decl.Body)
}

func (r *resolver) resolveClass(decl *ast.ClassDecl) error {
	if err := r.declare(decl.Name, decl.Span); err != nil {
		return err
	}
	r.scope.define(decl.Name)

	enclosing := r.class
	r.class = classClass
	r.beginScope()
	defer func() {
		r.endScope()
		r.class = enclosing
	}()

	r.scope.define("this")
	for _, method := range decl.Methods {
		kind := fnMethod
		if method.Name == InitializerName {
			kind = fnInitializer
		}
		if err := r.resolveFunction(method, kind); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveExprs(exprs []ast.Expr) error {
	for _, e := range exprs {
		if err := r.resolveExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.FractionLiteral, *ast.SciLiteral,
		*ast.StrLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		return nil

	case *ast.Variable:
		if defined, ok := r.scope.bindings[e.Name]; ok && !defined {
			return r.errorf(e.Span, "resolving a variable", "cannot read '%s' in its own initializer", e.Name)
		}
		return r.resolveLocal(e, e.Name, e.Span)

	case *ast.AssignExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		return r.resolveLocal(e, e.Name, e.Span)

	case *ast.ThisExpr:
		if r.class == classNone {
			return r.errorf(e.Span, "resolving 'this'", "cannot use 'this' outside of a class")
		}
		return r.resolveLocal(e, "this", e.Span)

	case *ast.BinaryExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		return r.resolveExpr(e.Operand)

	case *ast.GroupExpr:
		return r.resolveExpr(e.Inner)

	case *ast.CallExpr:
		if err := r.resolveExpr(e.Callee); err != nil {
			return err
		}
		return r.resolveExprs(e.Args)

	case *ast.GetExpr:
		return r.resolveExpr(e.Object)

	case *ast.SetExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		return r.resolveExpr(e.Object)

	case *ast.TupleExpr:
		return r.resolveExprs(e.Elements)

	case *ast.VectorExpr:
		return r.resolveExprs(e.Elements)

	case *ast.MatrixExpr:
		return r.resolveExprs(e.Rows)

	case *ast.IndexExpr:
		if err := r.resolveExpr(e.Object); err != nil {
			return err
		}
		return r.resolveExpr(e.Index)
	}
	return r.errorf(expr.NodeSpan(), "resolving an expression", "unsupported expression %s", expr.Kind())
}
