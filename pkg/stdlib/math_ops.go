package stdlib

import (
	"fmt"
	"math"

	"github.com/woven-lang/woven/pkg/evaluator"
)

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

func unaryMath(name string, f func(float64) float64) evaluator.NativeFunc {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return evaluator.NewNumber(f(x)), nil
	}
}

func binaryMath(name string, f func(float64, float64) float64) evaluator.NativeFunc {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		y, err := numberArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		return evaluator.NewNumber(f(x, y)), nil
	}
}

// numbers collects the arguments of min/max: either numbers, or a single vector.
func numbers(fn string, args []evaluator.Value) ([]float64, error) {
	if len(args) == 1 {
		if v, ok := args[0].(evaluator.Vector); ok {
			if len(v.Items) == 0 {
				return nil, fmt.Errorf("%s: vector must not be empty", fn)
			}
			return v.Items, nil
		}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: expects at least one argument", fn)
	}
	out := make([]float64, len(args))
	for i := range args {
		n, err := numberArg(fn, args, i)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// max(a, b, ...) or max(vector) → number
func stdlibMax(args []evaluator.Value) (evaluator.Value, error) {
	nums, err := numbers("max", args)
	if err != nil {
		return nil, err
	}
	max := math.Inf(-1)
	for _, n := range nums {
		if n > max {
			max = n
		}
	}
	return evaluator.NewNumber(max), nil
}

// min(a, b, ...) or min(vector) → number
func stdlibMin(args []evaluator.Value) (evaluator.Value, error) {
	nums, err := numbers("min", args)
	if err != nil {
		return nil, err
	}
	min := math.Inf(1)
	for _, n := range nums {
		if n < min {
			min = n
		}
	}
	return evaluator.NewNumber(min), nil
}

// gcd(a, b) → number; both arguments must be integers
func stdlibGCD(args []evaluator.Value) (evaluator.Value, error) {
	a, err := numberArg("gcd", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numberArg("gcd", args, 1)
	if err != nil {
		return nil, err
	}
	if a != math.Trunc(a) || b != math.Trunc(b) {
		return nil, fmt.Errorf("gcd: arguments must be integers")
	}
	a, b = math.Abs(a), math.Abs(b)
	for b != 0 {
		a, b = b, math.Mod(a, b)
	}
	return evaluator.NewNumber(a), nil
}

// factorial(n) → number
func stdlibFactorial(args []evaluator.Value) (evaluator.Value, error) {
	n, err := numberArg("factorial", args, 0)
	if err != nil {
		return nil, err
	}
	f, err := evaluator.Factorial(n)
	if err != nil {
		return nil, fmt.Errorf("factorial: %w", err)
	}
	return evaluator.NewNumber(f), nil
}
