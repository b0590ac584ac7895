package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/woven-lang/woven/pkg/ast"
	"github.com/woven-lang/woven/pkg/diagnostics"
	"github.com/woven-lang/woven/pkg/resolver"
)

const initializerName = resolver.InitializerName

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceStmtStart      TraceEventType = "stmt_start"
	TraceStmtEnd        TraceEventType = "stmt_end"
	TraceFnCallStart    TraceEventType = "fn_call_start"
	TraceFnCallEnd      TraceEventType = "fn_call_end"
	TraceNativeCall     TraceEventType = "native_call"
	TraceInstantiate    TraceEventType = "instantiate"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId,omitempty"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// ExecOptions configures an interpreter. It is fixed at construction.
type ExecOptions struct {
	Budget Budget
	Trace  func(event TraceEvent)
	RunID  string
	Out    io.Writer // destination of `print`; nil discards output
}

// RuntimeError represents a runtime error during Woven execution.
type RuntimeError struct {
	Phase   string
	Message string
	Span    ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic().Report()
}

// Diagnostic converts the error into its reportable form.
func (e *RuntimeError) Diagnostic() *diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.RuntimeError, e.Phase, e.Message, e.Span)
}

func runtimeErr(span ast.Span, phase, format string, args ...any) error {
	return &RuntimeError{Phase: phase, Message: fmt.Sprintf(format, args...), Span: span}
}

// wrapErr attaches a phase and position to a plain error. Errors that
// already carry a position pass through unchanged.
func wrapErr(err error, span ast.Span, phase string) error {
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return err
	}
	var d *diagnostics.Diagnostic
	if errors.As(err, &d) {
		return err
	}
	return &RuntimeError{Phase: phase, Message: err.Error(), Span: span}
}

// completion is the result of executing a statement: its value, and
// whether a `return` is unwinding toward the enclosing call.
type completion struct {
	value     Value
	returning bool
}

func normal(v Value) completion {
	return completion{value: v}
}

// Interpreter evaluates resolved programs against a persistent global
// environment. It is not safe for concurrent use.
type Interpreter struct {
	globals *Env
	locals  resolver.Distances
	opts    ExecOptions
}

// New creates an interpreter over globals. A nil globals gets a fresh scope.
func New(globals *Env, opts ExecOptions) *Interpreter {
	if globals == nil {
		globals = NewEnv(nil)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Interpreter{globals: globals, locals: make(resolver.Distances), opts: opts}
}

// Globals returns the global environment.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

type evaluator struct {
	ctx     context.Context
	in      *Interpreter
	tracker BudgetTracker
}

func (ev *evaluator) emit(event TraceEventType, span *ast.Span) {
	ev.emitWithData(event, span, nil)
}

func (ev *evaluator) emitWithData(event TraceEventType, span *ast.Span, data map[string]string) {
	if ev.in.opts.Trace != nil {
		ev.in.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.in.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      data,
		})
	}
}

func (ev *evaluator) checkStepBudget(span ast.Span) error {
	ev.tracker.Steps++
	max := ev.in.opts.Budget.MaxSteps
	if max > 0 && ev.tracker.Steps > max {
		ev.emit(TraceBudgetExceeded, &span)
		return runtimeErr(span, "executing a statement", "step budget exceeded (max %d)", max)
	}
	return nil
}

func (ev *evaluator) checkContext(span ast.Span) error {
	if err := ev.ctx.Err(); err != nil {
		return runtimeErr(span, "executing a statement", "execution cancelled: %v", err)
	}
	return nil
}

// Execute runs program, whose scope distances were computed by the
// resolver. It returns the value of the last top-level statement.
func (in *Interpreter) Execute(ctx context.Context, program *ast.Program, distances resolver.Distances) (Value, error) {
	for expr, d := range distances {
		in.locals[expr] = d
	}
	ev := &evaluator{ctx: ctx, in: in}

	span := program.Span
	start := time.Now()
	ev.emit(TraceRunStart, &span)
	c, err := ev.executeBlock(program.Statements, in.globals)
	ev.emitWithData(TraceRunEnd, &span, map[string]string{
		"steps":      strconv.FormatInt(ev.tracker.Steps, 10),
		"durationMs": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
	})
	if err != nil {
		return nil, err
	}
	return c.value, nil
}

// Call invokes a callable value from the host.
func (in *Interpreter) Call(ctx context.Context, callee Value, args []Value) (Value, error) {
	ev := &evaluator{ctx: ctx, in: in}
	return ev.call(callee, args, ast.Span{})
}

// executeBlock runs stmts in env. The caller owns env, so the previously
// active scope is restored on every exit path by returning.
func (ev *evaluator) executeBlock(stmts []ast.Stmt, env *Env) (completion, error) {
	last := normal(NewNil())
	for _, stmt := range stmts {
		c, err := ev.execute(stmt, env)
		if err != nil {
			return completion{}, err
		}
		if c.returning {
			return c, nil
		}
		last = c
	}
	return last, nil
}

func (ev *evaluator) execute(stmt ast.Stmt, env *Env) (completion, error) {
	span := stmt.NodeSpan()
	if err := ev.checkStepBudget(span); err != nil {
		return completion{}, err
	}
	ev.emit(TraceStmtStart, &span)
	c, err := ev.executeStmt(stmt, env)
	ev.emit(TraceStmtEnd, &span)
	return c, err
}

func (ev *evaluator) executeStmt(stmt ast.Stmt, env *Env) (completion, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		val, err := ev.evalExpr(s.Expr, env)
		if err != nil {
			return completion{}, err
		}
		return normal(val), nil

	case *ast.PrintStmt:
		val, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return completion{}, err
		}
		if _, err := fmt.Fprintln(ev.in.opts.Out, FormatValue(val)); err != nil {
			return completion{}, runtimeErr(s.Span, "executing a print statement", "%v", err)
		}
		return normal(NewNil()), nil

	case *ast.VarStmt:
		var val Value = NewNil()
		if s.Init != nil {
			v, err := ev.evalExpr(s.Init, env)
			if err != nil {
				return completion{}, err
			}
			val = v
		}
		env.Define(s.Name, val)
		return normal(val), nil

	case *ast.BlockStmt:
		return ev.executeBlock(s.Stmts, env.Child())

	case *ast.FnDecl:
		fn := &Fn{Decl: s, Closure: env}
		env.Define(s.Name, fn)
		return normal(fn), nil

	case *ast.ClassDecl:
		// The name exists before the methods close over env, so methods can
		// refer to their own class.
		env.Define(s.Name, NewNil())
		k := &Klass{Name: s.Name, Methods: make(map[string]*Fn, len(s.Methods))}
		for _, m := range s.Methods {
			k.Methods[m.Name] = &Fn{Decl: m, Closure: env, IsInit: m.Name == initializerName}
		}
		env.Define(s.Name, k)
		return normal(k), nil

	case *ast.ReturnStmt:
		var val Value = NewNil()
		if s.Value != nil {
			v, err := ev.evalExpr(s.Value, env)
			if err != nil {
				return completion{}, err
			}
			val = v
		}
		return completion{value: val, returning: true}, nil

	case *ast.IfStmt:
		cond, err := ev.evalExpr(s.Cond, env)
		if err != nil {
			return completion{}, err
		}
		if Truthiness(cond) {
			return ev.execute(s.Then, env)
		}
		if s.Else != nil {
			return ev.execute(s.Else, env)
		}
		return normal(NewNil()), nil

	case *ast.WhileStmt:
		last := normal(NewNil())
		for {
			if err := ev.checkContext(s.Span); err != nil {
				return completion{}, err
			}
			cond, err := ev.evalExpr(s.Cond, env)
			if err != nil {
				return completion{}, err
			}
			if !Truthiness(cond) {
				return last, nil
			}
			c, err := ev.execute(s.Body, env)
			if err != nil {
				return completion{}, err
			}
			if c.returning {
				return c, nil
			}
			last = c
		}
	}
	return completion{}, runtimeErr(stmt.NodeSpan(), "executing a statement", "unsupported statement %s", stmt.Kind())
}

func (ev *evaluator) lookup(expr ast.Expr, name string, span ast.Span, env *Env) (Value, error) {
	if d, ok := ev.in.locals[expr]; ok {
		if v, ok := env.GetAt(d, name); ok {
			return v, nil
		}
	} else if v, ok := ev.in.globals.Get(name); ok {
		return v, nil
	}
	return nil, runtimeErr(span, "evaluating a variable", "undefined variable '%s'", name)
}

func (ev *evaluator) evalExprs(exprs []ast.Expr, env *Env) ([]Value, error) {
	vals := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := ev.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (ev *evaluator) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return NewNumber(float64(e.Value)), nil
	case *ast.FloatLiteral:
		return NewNumber(e.Value), nil
	case *ast.FractionLiteral:
		return NewNumber(float64(e.Num) / float64(e.Den)), nil
	case *ast.SciLiteral:
		return NewNumber(e.Base * math.Pow10(e.Exp)), nil
	case *ast.StrLiteral:
		return NewString(e.Value), nil
	case *ast.BoolLiteral:
		return NewBool(e.Value), nil
	case *ast.NilLiteral:
		return NewNil(), nil

	case *ast.Variable:
		return ev.lookup(e, e.Name, e.Span, env)

	case *ast.ThisExpr:
		return ev.lookup(e, "this", e.Span, env)

	case *ast.AssignExpr:
		val, err := ev.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		var ok bool
		if d, found := ev.in.locals[e]; found {
			ok = env.AssignAt(d, e.Name, val)
		} else {
			ok = ev.in.globals.Assign(e.Name, val)
		}
		if !ok {
			return nil, runtimeErr(e.Span, "evaluating an assignment", "undefined variable '%s'", e.Name)
		}
		return val, nil

	case *ast.GroupExpr:
		return ev.evalExpr(e.Inner, env)

	case *ast.BinaryExpr:
		left, err := ev.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.evalExpr(e.Right, env)
		if err != nil {
			return nil, err
		}
		val, err := BinaryOp(e.Op, left, right)
		if err != nil {
			return nil, wrapErr(err, e.Span, "evaluating a binary expression")
		}
		return val, nil

	case *ast.LogicalExpr:
		left, err := ev.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := ev.evalExpr(e.Right, env)
		if err != nil {
			return nil, err
		}
		l, r := Truthiness(left), Truthiness(right)
		switch e.Op {
		case ast.OpAnd:
			return NewBool(l && r), nil
		case ast.OpOr:
			return NewBool(l || r), nil
		default:
			return NewBool(l != r), nil
		}

	case *ast.UnaryExpr:
		return ev.evalUnary(e, env)

	case *ast.CallExpr:
		callee, err := ev.evalExpr(e.Callee, env)
		if err != nil {
			return nil, err
		}
		args, err := ev.evalExprs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return ev.call(callee, args, e.Span)

	case *ast.GetExpr:
		obj, err := ev.evalExpr(e.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, runtimeErr(e.Span, "evaluating a property access", "only instances have properties, got %s", TypeName(obj))
		}
		val, ok := inst.Get(e.Name)
		if !ok {
			return nil, runtimeErr(e.Span, "evaluating a property access", "undefined property '%s'", e.Name)
		}
		return val, nil

	case *ast.SetExpr:
		obj, err := ev.evalExpr(e.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, runtimeErr(e.Span, "evaluating a property assignment", "only instances have fields, got %s", TypeName(obj))
		}
		val, err := ev.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name, val)
		return val, nil

	case *ast.TupleExpr:
		items, err := ev.evalExprs(e.Elements, env)
		if err != nil {
			return nil, err
		}
		return NewArray(items), nil

	case *ast.VectorExpr:
		return ev.evalVector(e, env)

	case *ast.MatrixExpr:
		return ev.evalMatrix(e, env)

	case *ast.IndexExpr:
		return ev.evalIndex(e, env)
	}
	return nil, runtimeErr(expr.NodeSpan(), "evaluating an expression", "unsupported expression %s", expr.Kind())
}

func (ev *evaluator) evalUnary(e *ast.UnaryExpr, env *Env) (Value, error) {
	operand, err := ev.evalExpr(e.Operand, env)
	if err != nil {
		return nil, err
	}
	const phase = "evaluating a unary expression"
	switch e.Op {
	case ast.OpNot:
		return NewBool(!Truthiness(operand)), nil
	case ast.OpNeg:
		val, err := Negate(operand)
		if err != nil {
			return nil, wrapErr(err, e.Span, phase)
		}
		return val, nil
	case ast.OpPlus:
		switch operand.(type) {
		case Number, Vector, Matrix:
			return operand, nil
		}
		return nil, runtimeErr(e.Span, phase, "unary '+' is not defined for %s", TypeName(operand))
	case ast.OpFactorial:
		n, ok := operand.(Number)
		if !ok {
			return nil, runtimeErr(e.Span, phase, "factorial is not defined for %s", TypeName(operand))
		}
		f, err := Factorial(n.Value)
		if err != nil {
			return nil, wrapErr(err, e.Span, phase)
		}
		return NewNumber(f), nil
	}
	return nil, runtimeErr(e.Span, phase, "unknown operator '%s'", e.Op)
}

func (ev *evaluator) evalVector(e *ast.VectorExpr, env *Env) (Value, error) {
	items := make([]float64, len(e.Elements))
	for i, el := range e.Elements {
		v, err := ev.evalExpr(el, env)
		if err != nil {
			return nil, err
		}
		n, ok := v.(Number)
		if !ok {
			return nil, runtimeErr(el.NodeSpan(), "evaluating a vector literal", "vector elements must be numbers, got %s", TypeName(v))
		}
		items[i] = n.Value
	}
	return NewVector(items), nil
}

// evalMatrix builds a matrix from row vectors of equal length. Nothing is
// constructed when a row is jagged.
func (ev *evaluator) evalMatrix(e *ast.MatrixExpr, env *Env) (Value, error) {
	const phase = "evaluating a matrix literal"
	rows := make([][]float64, len(e.Rows))
	for i, rowExpr := range e.Rows {
		v, err := ev.evalExpr(rowExpr, env)
		if err != nil {
			return nil, err
		}
		row, ok := v.(Vector)
		if !ok {
			return nil, runtimeErr(rowExpr.NodeSpan(), phase, "matrix rows must be vectors, got %s", TypeName(v))
		}
		if i > 0 && len(row.Items) != len(rows[0]) {
			return nil, runtimeErr(e.Span, phase, "jagged matrix: row %d has %d elements, expected %d", i+1, len(row.Items), len(rows[0]))
		}
		rows[i] = row.Items
	}
	return NewMatrix(rows), nil
}

func (ev *evaluator) evalIndex(e *ast.IndexExpr, env *Env) (Value, error) {
	const phase = "evaluating an index expression"
	obj, err := ev.evalExpr(e.Object, env)
	if err != nil {
		return nil, err
	}
	idxVal, err := ev.evalExpr(e.Index, env)
	if err != nil {
		return nil, err
	}
	n, ok := idxVal.(Number)
	if !ok || !isInteger(n.Value) {
		return nil, runtimeErr(e.Span, phase, "index must be an integer, got %s", FormatValue(idxVal))
	}

	var length int
	switch o := obj.(type) {
	case Array:
		length = len(o.Items)
	case Vector:
		length = len(o.Items)
	case Matrix:
		length = len(o.Rows)
	default:
		return nil, runtimeErr(e.Span, phase, "cannot index into %s", TypeName(obj))
	}
	i := int(n.Value)
	if i < 1 || i > length {
		return nil, runtimeErr(e.Span, phase, "index %d out of range 1..%d", i, length)
	}

	switch o := obj.(type) {
	case Array:
		return o.Items[i-1], nil
	case Vector:
		return NewNumber(o.Items[i-1]), nil
	default:
		return NewVector(obj.(Matrix).Rows[i-1]), nil
	}
}

func (ev *evaluator) call(callee Value, args []Value, span ast.Span) (Value, error) {
	if err := ev.checkContext(span); err != nil {
		return nil, err
	}
	const phase = "calling a function"
	switch fn := callee.(type) {
	case *Native:
		if fn.Arity != Variadic && fn.Arity != len(args) {
			return nil, runtimeErr(span, phase, "%s expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
		}
		ev.emitWithData(TraceNativeCall, &span, map[string]string{"fn": fn.Name})
		val, err := fn.Fn(args)
		if err != nil {
			return nil, wrapErr(err, span, "calling native function "+fn.Name)
		}
		if val == nil {
			val = NewNil()
		}
		return val, nil

	case *Fn:
		if fn.Arity() != len(args) {
			return nil, runtimeErr(span, phase, "%s expects %d arguments, got %d", fn.Name(), fn.Arity(), len(args))
		}
		return ev.callFn(fn, args, span)

	case *Klass:
		if fn.Arity() != len(args) {
			return nil, runtimeErr(span, "constructing an instance", "%s expects %d arguments, got %d", fn.Name, fn.Arity(), len(args))
		}
		inst := NewInstance(fn)
		ev.emitWithData(TraceInstantiate, &span, map[string]string{"class": fn.Name})
		if init, ok := fn.FindMethod(initializerName); ok {
			if _, err := ev.callFn(init.Bind(inst), args, span); err != nil {
				return nil, err
			}
		}
		return inst, nil
	}
	return nil, runtimeErr(span, phase, "can only call functions and classes, got %s", TypeName(callee))
}

func (ev *evaluator) callFn(fn *Fn, args []Value, span ast.Span) (Value, error) {
	ev.tracker.Depth++
	defer func() { ev.tracker.Depth-- }()
	if max := ev.in.opts.Budget.MaxDepth; max > 0 && ev.tracker.Depth > max {
		ev.emit(TraceBudgetExceeded, &span)
		return nil, runtimeErr(span, "calling a function", "call depth budget exceeded (max %d)", max)
	}

	env := fn.Closure.Child()
	for i, param := range fn.Decl.Params {
		env.Define(param, args[i])
	}

	ev.emitWithData(TraceFnCallStart, &span, map[string]string{"fn": fn.Name()})
	c, err := ev.executeBlock(fn.Decl.Body, env)
	ev.emitWithData(TraceFnCallEnd, &span, map[string]string{"fn": fn.Name()})
	if err != nil {
		return nil, err
	}
	if fn.IsInit {
		this, _ := fn.Closure.GetAt(0, "this")
		return this, nil
	}
	return c.value, nil
}
