// Package plot samples single-variable Woven functions for graphing hosts.
package plot

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/woven-lang/woven/pkg/algebra"
	"github.com/woven-lang/woven/pkg/compiler"
	"github.com/woven-lang/woven/pkg/evaluator"
)

// Point is one sample. Valid is false when the function produced no
// finite number at X.
type Point struct {
	X     float64
	Y     float64
	Valid bool
}

// Definition is a parsed `f(x) = expr` string.
type Definition struct {
	Head string // f(x)
	Body string // expr, with exact constant subexpressions folded
	Raw  string // expr as written
}

// Source returns the Woven declaration for d.
func (d Definition) Source() string {
	return "fn " + d.Head + " = " + d.Body + ";"
}

func (d Definition) rawSource() string {
	return "fn " + d.Head + " = " + d.Raw + ";"
}

// ParseDefinition splits def at its first `=`. The body is run through the
// algebra folder so constant rational subexpressions become exact values;
// a body the algebra parser rejects, or one whose folding hits an
// undefined value, is kept as written.
func ParseDefinition(def string) (Definition, error) {
	head, body, ok := strings.Cut(def, "=")
	head, body = strings.TrimSpace(head), strings.TrimSpace(body)
	if !ok || head == "" || body == "" {
		return Definition{}, fmt.Errorf("plot: expected a definition of the form f(x) = expr, got %q", def)
	}
	if !strings.HasSuffix(head, ")") || !strings.Contains(head, "(") {
		return Definition{}, fmt.Errorf("plot: %q does not name a function and its parameter", head)
	}
	d := Definition{Head: head, Body: body, Raw: body}
	if u, err := algebra.Parse(body); err == nil {
		if folded := algebra.FoldRNE(u); !algebra.HasUndefined(folded) {
			d.Body = algebra.String(folded)
		}
	}
	return d, nil
}

// Sample declares def in c and evaluates it at every x. Samples that fail
// or return a non-number are invalid points. When the definition itself
// cannot be declared, or does not yield a callable, every point is
// invalid and the cause is returned alongside them.
func Sample(ctx context.Context, c *compiler.Compiler, def string, xs []float64) ([]Point, error) {
	points := make([]Point, len(xs))
	for i, x := range xs {
		points[i] = Point{X: x}
	}

	d, err := ParseDefinition(def)
	if err != nil {
		return points, err
	}
	src := d.Source()
	if c.Check(src) != nil {
		// Folding can produce literals the scanner rejects, such as
		// integers beyond 64 bits.
		src = d.rawSource()
	}
	fn, err := c.Execute(ctx, src)
	if err != nil {
		return points, err
	}
	if !evaluator.IsCallable(fn) {
		return points, fmt.Errorf("plot: %s is not callable", evaluator.FormatValue(fn))
	}

	for i, x := range xs {
		if err := ctx.Err(); err != nil {
			return points, err
		}
		v, err := c.Call(ctx, fn, evaluator.NewNumber(x))
		if err != nil {
			continue
		}
		n, ok := v.(evaluator.Number)
		if !ok {
			continue
		}
		y := n.Value
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		points[i].Y = y
		points[i].Valid = true
	}
	return points, nil
}

// Linspace returns n evenly spaced values from from to to inclusive.
func Linspace(from, to float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{from}
	}
	xs := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range xs {
		xs[i] = from + float64(i)*step
	}
	xs[n-1] = to
	return xs
}
