// Package algebra implements the symbolic expression model: an algebraic
// expression tree, a parser for it, structural accessors, and exact
// simplification of rational number expressions.
package algebra

import (
	"fmt"
	"math/big"

	"github.com/woven-lang/woven/pkg/diagnostics"
)

// Expr is the interface implemented by all algebraic expression nodes.
// Nodes are immutable once built.
type Expr interface {
	algebraNode() // sealed marker
}

// Int is an exact integer.
type Int struct {
	Value *big.Int
}

// Fraction is a quotient of two integers. It need not be reduced.
type Fraction struct {
	Num *big.Int
	Den *big.Int
}

// Sym is a named symbol.
type Sym struct {
	Name string
}

// Sum is an n-ary sum.
type Sum struct {
	Args []Expr
}

// Product is an n-ary product.
type Product struct {
	Args []Expr
}

// Power is Base raised to Exp.
type Power struct {
	Base Expr
	Exp  Expr
}

// Difference is the binary Left - Right.
type Difference struct {
	Left  Expr
	Right Expr
}

// Quotient is the binary Left / Right.
type Quotient struct {
	Left  Expr
	Right Expr
}

// Factorial is Arg!.
type Factorial struct {
	Arg Expr
}

// FunctionForm is an application of a named function, such as sin(x).
type FunctionForm struct {
	Name string
	Args []Expr
}

// Relation compares two sides with one of = < > <= >=.
type Relation struct {
	Op    string
	Left  Expr
	Right Expr
}

// Undefined marks a value that does not exist, such as 1/0.
type Undefined struct{}

func (*Int) algebraNode()          {}
func (*Fraction) algebraNode()     {}
func (*Sym) algebraNode()          {}
func (*Sum) algebraNode()          {}
func (*Product) algebraNode()      {}
func (*Power) algebraNode()        {}
func (*Difference) algebraNode()   {}
func (*Quotient) algebraNode()     {}
func (*Factorial) algebraNode()    {}
func (*FunctionForm) algebraNode() {}
func (*Relation) algebraNode()     {}
func (*Undefined) algebraNode()    {}

// NewInt returns the integer n.
func NewInt(n int64) *Int {
	return &Int{Value: big.NewInt(n)}
}

// NewFraction returns num/den without reducing it.
func NewFraction(num, den int64) *Fraction {
	return &Fraction{Num: big.NewInt(num), Den: big.NewInt(den)}
}

// Error is an algebra failure. It carries no source position. Kind is a
// diagnostics kind: lexical or syntax errors while parsing, runtime errors
// while simplifying.
type Error struct {
	Kind    string
	Phase   string
	Message string
}

func (e *Error) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = diagnostics.RuntimeError
	}
	return fmt.Sprintf("While %s, a %s occurred: %s", e.Phase, kind, e.Message)
}

func errorf(phase, format string, args ...any) error {
	return &Error{Kind: diagnostics.RuntimeError, Phase: phase, Message: fmt.Sprintf(format, args...)}
}

func syntaxErrorf(format string, args ...any) error {
	return &Error{Kind: diagnostics.SyntaxError, Phase: parsePhase, Message: fmt.Sprintf(format, args...)}
}

// Kind returns the operator tag of u: "integer", "rational", "symbol",
// "dne", an operator symbol, or "fn-<name>" for function forms.
func Kind(u Expr) string {
	switch e := u.(type) {
	case *Int:
		return "integer"
	case *Fraction:
		return "rational"
	case *Sym:
		return "symbol"
	case *Undefined:
		return "dne"
	case *Sum:
		return "+"
	case *Product:
		return "*"
	case *Power:
		return "^"
	case *Difference:
		return "-"
	case *Quotient:
		return "/"
	case *Factorial:
		return "!"
	case *FunctionForm:
		return "fn-" + e.Name
	case *Relation:
		return e.Op
	}
	return "dne"
}

// NumOperands returns the number of operands of u. A fraction has two:
// its numerator and denominator.
func NumOperands(u Expr) int {
	return len(operands(u))
}

// Operand returns the i-th operand of u, counting from 1.
func Operand(u Expr, i int) (Expr, error) {
	ops := operands(u)
	if i < 1 || i > len(ops) {
		return nil, errorf("selecting an operand", "operand %d out of range for %s with %d operands", i, Kind(u), len(ops))
	}
	return ops[i-1], nil
}

func operands(u Expr) []Expr {
	switch e := u.(type) {
	case *Fraction:
		return []Expr{&Int{Value: e.Num}, &Int{Value: e.Den}}
	case *Sum:
		return e.Args
	case *Product:
		return e.Args
	case *Power:
		return []Expr{e.Base, e.Exp}
	case *Difference:
		return []Expr{e.Left, e.Right}
	case *Quotient:
		return []Expr{e.Left, e.Right}
	case *Factorial:
		return []Expr{e.Arg}
	case *FunctionForm:
		return e.Args
	case *Relation:
		return []Expr{e.Left, e.Right}
	}
	return nil
}

// Equal reports whether a and b are structurally identical. Fractions are
// compared as written, so 2/4 and 1/2 differ.
func Equal(a, b Expr) bool {
	if Kind(a) != Kind(b) {
		return false
	}
	switch x := a.(type) {
	case *Int:
		return x.Value.Cmp(b.(*Int).Value) == 0
	case *Fraction:
		y := b.(*Fraction)
		return x.Num.Cmp(y.Num) == 0 && x.Den.Cmp(y.Den) == 0
	case *Sym:
		return x.Name == b.(*Sym).Name
	case *Undefined:
		return true
	}
	ao, bo := operands(a), operands(b)
	if len(ao) != len(bo) {
		return false
	}
	for i := range ao {
		if !Equal(ao[i], bo[i]) {
			return false
		}
	}
	return true
}

// HasUndefined reports whether any subexpression of u is Undefined.
func HasUndefined(u Expr) bool {
	if _, ok := u.(*Undefined); ok {
		return true
	}
	for _, op := range operands(u) {
		if HasUndefined(op) {
			return true
		}
	}
	return false
}

// Order is the canonical term ordering needed for simplification beyond
// rational number expressions. It is not implemented.
func Order(u, v Expr) (bool, error) {
	return false, errorf("ordering terms", "canonical term ordering is not implemented")
}
