package stdlib

import (
	"fmt"
	"math"

	"github.com/woven-lang/woven/pkg/evaluator"
)

// maxRange caps the length of vectors built by range.
const maxRange = 1_000_000

// len(v) → number of elements of a vector or tuple, rows of a matrix, or
// characters of a string
func stdlibLen(args []evaluator.Value) (evaluator.Value, error) {
	switch v := args[0].(type) {
	case evaluator.Vector:
		return evaluator.NewNumber(float64(len(v.Items))), nil
	case evaluator.Array:
		return evaluator.NewNumber(float64(len(v.Items))), nil
	case evaluator.Matrix:
		return evaluator.NewNumber(float64(len(v.Rows))), nil
	case evaluator.String:
		return evaluator.NewNumber(float64(len([]rune(v.Value)))), nil
	}
	return nil, fmt.Errorf("len: argument must be a vector, tuple, matrix or string, got %s", evaluator.TypeName(args[0]))
}

// sum(v) → number
func stdlibSum(args []evaluator.Value) (evaluator.Value, error) {
	items, err := vectorArg("sum", args, 0)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, x := range items {
		total += x
	}
	return evaluator.NewNumber(total), nil
}

// range(to) or range(from, to) or range(from, to, step) → vector, end exclusive
func stdlibRange(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("range: expects 1 to 3 arguments, got %d", len(args))
	}
	bounds := make([]float64, len(args))
	for i := range args {
		n, err := numberArg("range", args, i)
		if err != nil {
			return nil, err
		}
		bounds[i] = n
	}
	from, to, step := 0.0, bounds[0], 1.0
	if len(bounds) >= 2 {
		from, to = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("range: step must not be zero")
	}
	count := math.Ceil((to - from) / step)
	if count > maxRange {
		return nil, fmt.Errorf("range: more than %d elements", maxRange)
	}
	items := []float64{}
	for i := 0.0; i < count; i++ {
		items = append(items, from+i*step)
	}
	return evaluator.NewVector(items), nil
}

// dot(a, b) → number
func stdlibDot(args []evaluator.Value) (evaluator.Value, error) {
	a, err := vectorArg("dot", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := vectorArg("dot", args, 1)
	if err != nil {
		return nil, err
	}
	d, err := evaluator.Dot(a, b)
	if err != nil {
		return nil, fmt.Errorf("dot: %w", err)
	}
	return evaluator.NewNumber(d), nil
}

// norm(v) → Euclidean length
func stdlibNorm(args []evaluator.Value) (evaluator.Value, error) {
	items, err := vectorArg("norm", args, 0)
	if err != nil {
		return nil, err
	}
	d, _ := evaluator.Dot(items, items)
	return evaluator.NewNumber(math.Sqrt(d)), nil
}

// tuple(a, b, ...) → tuple
func stdlibTuple(args []evaluator.Value) (evaluator.Value, error) {
	items := make([]evaluator.Value, len(args))
	copy(items, args)
	return evaluator.NewArray(items), nil
}
