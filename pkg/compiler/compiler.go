// Package compiler wires the Woven scanner, parser, resolver and
// interpreter into one facade for hosts such as the CLI and the plotter.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/woven-lang/woven/pkg/algebra"
	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/evaluator"
	"github.com/woven-lang/woven/pkg/formatter"
	"github.com/woven-lang/woven/pkg/lexer"
	"github.com/woven-lang/woven/pkg/parser"
	"github.com/woven-lang/woven/pkg/resolver"
	"github.com/woven-lang/woven/pkg/stdlib"
)

// DefaultMaxDepth bounds user call depth when Settings leaves it at zero,
// so runaway recursion becomes a runtime error instead of exhausting the
// goroutine stack.
const DefaultMaxDepth = 1000

// Settings configures the global bindings and limits of a Compiler. It is
// read once by New and never mutated afterward.
type Settings struct {
	// NativeFunctions are merged over the standard library; a name already
	// present is replaced.
	NativeFunctions map[string]*evaluator.Native
	// GlobalConstants are merged over pi, e and the other default constants.
	GlobalConstants map[string]float64
	Budget          evaluator.Budget
}

// Compiler runs Woven source against one persistent global environment.
// It is not safe for concurrent use.
type Compiler struct {
	interp *evaluator.Interpreter
	out    io.Writer
	errOut io.Writer
	runID  string
	trace  func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithOutput sets where print statements write.
func WithOutput(w io.Writer) Option {
	return func(c *Compiler) {
		c.out = w
	}
}

// WithErrorOutput sets where Execute writes report lines for failures.
func WithErrorOutput(w io.Writer) Option {
	return func(c *Compiler) {
		c.errOut = w
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(c *Compiler) {
		c.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(c *Compiler) {
		c.trace = fn
	}
}

// New creates a Compiler whose globals hold the default constants and
// natives overlaid with settings. By default output is discarded.
func New(settings Settings, opts ...Option) *Compiler {
	c := &Compiler{
		out:    io.Discard,
		errOut: io.Discard,
		runID:  "woven",
	}
	for _, opt := range opts {
		opt(c)
	}

	globals := evaluator.NewEnv(nil)
	for name, v := range stdlib.Constants {
		globals.Define(name, evaluator.NewNumber(v))
	}
	for name, v := range settings.GlobalConstants {
		globals.Define(name, evaluator.NewNumber(v))
	}
	for name, fn := range stdlib.Default().All() {
		globals.Define(name, fn)
	}
	for name, fn := range settings.NativeFunctions {
		if fn == nil {
			continue
		}
		if fn.Name == "" {
			named := *fn
			named.Name = name
			fn = &named
		}
		globals.Define(name, fn)
	}

	budget := settings.Budget
	if budget.MaxDepth == 0 {
		budget.MaxDepth = DefaultMaxDepth
	}
	c.interp = evaluator.New(globals, evaluator.ExecOptions{
		Budget: budget,
		Trace:  c.trace,
		RunID:  c.runID,
		Out:    c.out,
	})
	return c
}

// Globals returns the persistent global environment.
func (c *Compiler) Globals() *evaluator.Env {
	return c.interp.Globals()
}

// Tokenize renders every token of source as [TYPENAME "lexeme" Lx Cy].
func (c *Compiler) Tokenize(source string) ([]string, error) {
	return lexer.Tokenize(source)
}

// Parse scans and parses source.
func (c *Compiler) Parse(source string) (*ast.Program, error) {
	return parser.Parse(source)
}

// ParseTree returns the indented parse tree of source, or the report line
// when scanning or parsing fails.
func (c *Compiler) ParseTree(source string) string {
	program, err := parser.Parse(source)
	if err != nil {
		return Report(err)
	}
	return formatter.Tree(program)
}

// Check scans, parses and resolves source against the current globals
// without executing it.
func (c *Compiler) Check(source string) error {
	_, _, err := c.compile(source)
	return err
}

func (c *Compiler) compile(source string) (*ast.Program, resolver.Distances, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, nil, err
	}
	distances, err := resolver.Resolve(program, c.interp.Globals().Names())
	if err != nil {
		return nil, nil, err
	}
	return program, distances, nil
}

// Execute runs source through the full pipeline and returns the value of
// its last statement. On failure the report line is written to the error
// output and the error is returned.
func (c *Compiler) Execute(ctx context.Context, source string) (evaluator.Value, error) {
	program, distances, err := c.compile(source)
	if err == nil {
		var v evaluator.Value
		v, err = c.interp.Execute(ctx, program, distances)
		if err == nil {
			return v, nil
		}
	}
	fmt.Fprintln(c.errOut, Report(err))
	return nil, err
}

// Call invokes a callable value, typically one returned by Execute.
func (c *Compiler) Call(ctx context.Context, fn evaluator.Value, args ...evaluator.Value) (evaluator.Value, error) {
	return c.interp.Call(ctx, fn, args)
}

// AsDiagnostic converts any pipeline error into a Diagnostic. Errors from
// outside the pipeline become positionless runtime errors.
func AsDiagnostic(err error) *diagnostics.Diagnostic {
	var d *diagnostics.Diagnostic
	if errors.As(err, &d) {
		return d
	}
	var rt *evaluator.RuntimeError
	if errors.As(err, &rt) {
		return rt.Diagnostic()
	}
	var ae *algebra.Error
	if errors.As(err, &ae) {
		kind := ae.Kind
		if kind == "" {
			kind = diagnostics.RuntimeError
		}
		return diagnostics.MakeUnpositioned(kind, ae.Phase, ae.Message)
	}
	return diagnostics.MakeUnpositioned(diagnostics.RuntimeError, "executing a program", err.Error())
}

// Report renders err as the one-line message shown to users.
func Report(err error) string {
	if err == nil {
		return ""
	}
	return AsDiagnostic(err).Report()
}
