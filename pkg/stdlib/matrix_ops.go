package stdlib

import (
	"fmt"

	"github.com/woven-lang/woven/pkg/evaluator"
)

// maxIdentity caps the size of identity matrices.
const maxIdentity = 1000

// det(m) → number
func stdlibDet(args []evaluator.Value) (evaluator.Value, error) {
	m, err := matrixArg("det", args, 0)
	if err != nil {
		return nil, err
	}
	d, err := evaluator.Determinant(m)
	if err != nil {
		return nil, fmt.Errorf("det: %w", err)
	}
	return evaluator.NewNumber(d), nil
}

// transpose(m) → matrix; a vector becomes a one-column matrix
func stdlibTranspose(args []evaluator.Value) (evaluator.Value, error) {
	if v, ok := args[0].(evaluator.Vector); ok {
		return evaluator.Transpose(evaluator.Matrix{Rows: [][]float64{v.Items}}), nil
	}
	m, err := matrixArg("transpose", args, 0)
	if err != nil {
		return nil, err
	}
	return evaluator.Transpose(m), nil
}

// identity(n) → n×n identity matrix
func stdlibIdentity(args []evaluator.Value) (evaluator.Value, error) {
	n, err := numberArg("identity", args, 0)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > maxIdentity || n != float64(int(n)) {
		return nil, fmt.Errorf("identity: size must be an integer between 1 and %d", maxIdentity)
	}
	size := int(n)
	rows := make([][]float64, size)
	for i := range rows {
		rows[i] = make([]float64, size)
		rows[i][i] = 1
	}
	return evaluator.NewMatrix(rows), nil
}

// dims(m) → (rows, cols)
func stdlibDims(args []evaluator.Value) (evaluator.Value, error) {
	m, err := matrixArg("dims", args, 0)
	if err != nil {
		return nil, err
	}
	r, c := m.Dims()
	return evaluator.NewArray([]evaluator.Value{
		evaluator.NewNumber(float64(r)),
		evaluator.NewNumber(float64(c)),
	}), nil
}
