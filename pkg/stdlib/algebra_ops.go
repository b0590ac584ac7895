package stdlib

import (
	"errors"
	"fmt"

	"github.com/woven-lang/woven/pkg/algebra"
	"github.com/woven-lang/woven/pkg/evaluator"
)

// simplify(s) → the simplified rational number expression written in s
func stdlibSimplify(args []evaluator.Value) (evaluator.Value, error) {
	src, err := stringArg("simplify", args, 0)
	if err != nil {
		return nil, err
	}
	u, err := algebra.Parse(src)
	if err != nil {
		return nil, algebraErr("simplify", err)
	}
	v, err := algebra.SimplifyRNE(u)
	if err != nil {
		return nil, algebraErr("simplify", err)
	}
	return evaluator.NewString(algebra.String(v)), nil
}

// fold(s) → s with every rational subexpression simplified
func stdlibFold(args []evaluator.Value) (evaluator.Value, error) {
	src, err := stringArg("fold", args, 0)
	if err != nil {
		return nil, err
	}
	u, err := algebra.Parse(src)
	if err != nil {
		return nil, algebraErr("fold", err)
	}
	return evaluator.NewString(algebra.String(algebra.FoldRNE(u))), nil
}

// algebraErr flattens an algebra failure into a native error message.
func algebraErr(fn string, err error) error {
	var aerr *algebra.Error
	if errors.As(err, &aerr) {
		return fmt.Errorf("%s: %s while %s", fn, aerr.Message, aerr.Phase)
	}
	return fmt.Errorf("%s: %w", fn, err)
}
