package evaluator

import (
	"errors"
	"fmt"
	"math"

	"github.com/woven-lang/woven/pkg/ast"
)

var errDivByZero = errors.New("division by zero")

// isInteger reports whether n is a finite whole number.
func isInteger(n float64) bool {
	return !math.IsInf(n, 0) && n == math.Trunc(n)
}

// Factorial returns n! for a non-negative integer n.
func Factorial(n float64) (float64, error) {
	if n < 0 || !isInteger(n) {
		return 0, fmt.Errorf("factorial requires a non-negative integer, got %s", FormatNumber(n))
	}
	result := 1.0
	for i := 2.0; i <= n && !math.IsInf(result, 1); i++ {
		result *= i
	}
	return result, nil
}

// Rem is the truncated remainder: the result takes the dividend's sign.
func Rem(a, b float64) (float64, error) {
	if err := checkIntegerOperands("rem", a, b); err != nil {
		return 0, err
	}
	return math.Mod(a, b), nil
}

// Mod is the floored modulus: the result takes the divisor's sign.
func Mod(a, b float64) (float64, error) {
	if err := checkIntegerOperands("mod", a, b); err != nil {
		return 0, err
	}
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r, nil
}

// IntDiv is the floored integer quotient.
func IntDiv(a, b float64) (float64, error) {
	if err := checkIntegerOperands("div", a, b); err != nil {
		return 0, err
	}
	return math.Floor(a / b), nil
}

func checkIntegerOperands(op string, a, b float64) error {
	if !isInteger(a) || !isInteger(b) {
		return fmt.Errorf("'%s' requires integer operands, got %s and %s", op, FormatNumber(a), FormatNumber(b))
	}
	if b == 0 {
		return errDivByZero
	}
	return nil
}

// numberOp applies a binary operator to two numbers.
func numberOp(op ast.BinaryOp, a, b float64) (Value, error) {
	switch op {
	case ast.OpAdd:
		return NewNumber(a + b), nil
	case ast.OpSub:
		return NewNumber(a - b), nil
	case ast.OpMul:
		return NewNumber(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return nil, errDivByZero
		}
		return NewNumber(a / b), nil
	case ast.OpPow:
		return NewNumber(math.Pow(a, b)), nil
	case ast.OpPercent:
		return NewNumber(a / 100 * b), nil
	case ast.OpRem:
		r, err := Rem(a, b)
		return NewNumber(r), err
	case ast.OpMod:
		r, err := Mod(a, b)
		return NewNumber(r), err
	case ast.OpIntDiv:
		r, err := IntDiv(a, b)
		return NewNumber(r), err
	case ast.OpLt:
		return NewBool(a < b), nil
	case ast.OpLtEq:
		return NewBool(a <= b), nil
	case ast.OpGt:
		return NewBool(a > b), nil
	case ast.OpGtEq:
		return NewBool(a >= b), nil
	}
	return nil, fmt.Errorf("unknown operator '%s'", op)
}

// BinaryOp applies a non-equality binary operator. Only numbers, vectors
// and matrices take part in arithmetic.
func BinaryOp(op ast.BinaryOp, left, right Value) (Value, error) {
	switch op {
	case ast.OpEqEq:
		return NewBool(DeepEqual(left, right)), nil
	case ast.OpNeq:
		return NewBool(!DeepEqual(left, right)), nil
	}

	if l, ok := left.(Number); ok {
		if r, ok := right.(Number); ok {
			return numberOp(op, l.Value, r.Value)
		}
	}

	switch op {
	case ast.OpAdd, ast.OpSub:
		return addSub(op, left, right)
	case ast.OpMul:
		return multiply(left, right)
	case ast.OpDiv:
		if r, ok := right.(Number); ok {
			if r.Value == 0 {
				return nil, errDivByZero
			}
			switch l := left.(type) {
			case Vector:
				return NewVector(scaleRow(l.Items, 1/r.Value)), nil
			case Matrix:
				return NewMatrix(scaleRows(l.Rows, 1/r.Value)), nil
			}
		}
	}
	return nil, operandError(op, left, right)
}

func operandError(op ast.BinaryOp, left, right Value) error {
	return fmt.Errorf("operator '%s' is not defined for %s and %s", op, TypeName(left), TypeName(right))
}

func addSub(op ast.BinaryOp, left, right Value) (Value, error) {
	sign := 1.0
	if op == ast.OpSub {
		sign = -1
	}
	switch l := left.(type) {
	case Vector:
		r, ok := right.(Vector)
		if !ok {
			break
		}
		if len(l.Items) != len(r.Items) {
			return nil, fmt.Errorf("vector lengths differ: %d and %d", len(l.Items), len(r.Items))
		}
		out := make([]float64, len(l.Items))
		for i := range out {
			out[i] = l.Items[i] + sign*r.Items[i]
		}
		return NewVector(out), nil
	case Matrix:
		r, ok := right.(Matrix)
		if !ok {
			break
		}
		lr, lc := l.Dims()
		rr, rc := r.Dims()
		if lr != rr || lc != rc {
			return nil, fmt.Errorf("matrix dimensions differ: %dx%d and %dx%d", lr, lc, rr, rc)
		}
		out := make([][]float64, lr)
		for i := range out {
			out[i] = make([]float64, lc)
			for j := range out[i] {
				out[i][j] = l.Rows[i][j] + sign*r.Rows[i][j]
			}
		}
		return NewMatrix(out), nil
	}
	return nil, operandError(op, left, right)
}

func multiply(left, right Value) (Value, error) {
	switch l := left.(type) {
	case Number:
		switch r := right.(type) {
		case Vector:
			return NewVector(scaleRow(r.Items, l.Value)), nil
		case Matrix:
			return NewMatrix(scaleRows(r.Rows, l.Value)), nil
		}
	case Vector:
		switch r := right.(type) {
		case Number:
			return NewVector(scaleRow(l.Items, r.Value)), nil
		case Vector:
			d, err := Dot(l.Items, r.Items)
			if err != nil {
				return nil, err
			}
			return NewNumber(d), nil
		}
	case Matrix:
		switch r := right.(type) {
		case Number:
			return NewMatrix(scaleRows(l.Rows, r.Value)), nil
		case Vector:
			return matVec(l, r)
		case Matrix:
			return matMul(l, r)
		}
	}
	return nil, operandError(ast.OpMul, left, right)
}

// Dot returns the dot product of two equal-length rows.
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector lengths differ: %d and %d", len(a), len(b))
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

func scaleRow(items []float64, k float64) []float64 {
	out := make([]float64, len(items))
	for i, x := range items {
		out[i] = x * k
	}
	return out
}

func scaleRows(rows [][]float64, k float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = scaleRow(r, k)
	}
	return out
}

func matVec(m Matrix, v Vector) (Value, error) {
	rows, cols := m.Dims()
	if cols != len(v.Items) {
		return nil, fmt.Errorf("cannot multiply %dx%d matrix by vector of length %d", rows, cols, len(v.Items))
	}
	out := make([]float64, rows)
	for i, row := range m.Rows {
		out[i], _ = Dot(row, v.Items)
	}
	return NewVector(out), nil
}

func matMul(a, b Matrix) (Value, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return nil, fmt.Errorf("cannot multiply %dx%d matrix by %dx%d matrix", ar, ac, br, bc)
	}
	out := make([][]float64, ar)
	for i := range out {
		out[i] = make([]float64, bc)
		for j := 0; j < bc; j++ {
			sum := 0.0
			for k := 0; k < ac; k++ {
				sum += a.Rows[i][k] * b.Rows[k][j]
			}
			out[i][j] = sum
		}
	}
	return NewMatrix(out), nil
}

// Negate applies unary minus.
func Negate(v Value) (Value, error) {
	switch val := v.(type) {
	case Number:
		return NewNumber(-val.Value), nil
	case Vector:
		return NewVector(scaleRow(val.Items, -1)), nil
	case Matrix:
		return NewMatrix(scaleRows(val.Rows, -1)), nil
	}
	return nil, fmt.Errorf("unary '-' is not defined for %s", TypeName(v))
}

// Transpose returns the transpose of m.
func Transpose(m Matrix) Matrix {
	rows, cols := m.Dims()
	out := make([][]float64, cols)
	for j := range out {
		out[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			out[j][i] = m.Rows[i][j]
		}
	}
	return Matrix{Rows: out}
}

// Determinant returns the determinant of a square matrix by Gaussian
// elimination with partial pivoting.
func Determinant(m Matrix) (float64, error) {
	n, cols := m.Dims()
	if n != cols {
		return 0, fmt.Errorf("determinant requires a square matrix, got %dx%d", n, cols)
	}
	a := scaleRows(m.Rows, 1)
	det := 1.0
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if a[pivot][col] == 0 {
			return 0, nil
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			det = -det
		}
		det *= a[col][col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	return det, nil
}
