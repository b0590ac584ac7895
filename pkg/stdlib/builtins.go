package stdlib

import (
	"math"
	"time"

	"github.com/woven-lang/woven/pkg/evaluator"
)

// Constants are the numeric globals every session starts with.
var Constants = map[string]float64{
	"pi":  math.Pi,
	"π":   math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"phi": math.Phi,
	"∞":   math.Inf(1),
}

// RegisterDefaults adds all built-in natives.
func RegisterDefaults(r *Registry) {
	// Math
	unary := map[string]func(float64) float64{
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"round": math.Round,
		"trunc": math.Trunc,
		"exp":   math.Exp,
		"ln":    math.Log,
		"log":   math.Log10,
		"log2":  math.Log2,
		"sign":  sign,
	}
	for name, f := range unary {
		r.Register(name, 1, unaryMath(name, f))
	}
	binary := map[string]func(float64, float64) float64{
		"atan2": math.Atan2,
		"hypot": math.Hypot,
		"pow":   math.Pow,
	}
	for name, f := range binary {
		r.Register(name, 2, binaryMath(name, f))
	}
	r.Register("min", evaluator.Variadic, stdlibMin)
	r.Register("max", evaluator.Variadic, stdlibMax)
	r.Register("gcd", 2, stdlibGCD)
	r.Register("factorial", 1, stdlibFactorial)

	// Vectors and tuples
	r.Register("len", 1, stdlibLen)
	r.Register("sum", 1, stdlibSum)
	r.Register("range", evaluator.Variadic, stdlibRange)
	r.Register("dot", 2, stdlibDot)
	r.Register("norm", 1, stdlibNorm)
	r.Register("tuple", evaluator.Variadic, stdlibTuple)

	// Matrices
	r.Register("det", 1, stdlibDet)
	r.Register("transpose", 1, stdlibTranspose)
	r.Register("identity", 1, stdlibIdentity)
	r.Register("dims", 1, stdlibDims)

	// Strings and values
	r.Register("str", 1, stdlibStr)
	r.Register("type", 1, stdlibType)
	r.Register("concat", evaluator.Variadic, stdlibConcat)
	r.Register("num", 1, stdlibNum)
	r.Register("json", 1, stdlibJSON)

	// Algebra
	r.Register("simplify", 1, stdlibSimplify)
	r.Register("fold", 1, stdlibFold)

	r.Register("clock", 0, stdlibClock)
}

var clockEpoch = time.Now()

// clock() → seconds since the process started
func stdlibClock(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewNumber(time.Since(clockEpoch).Seconds()), nil
}
