package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/woven-lang/woven/pkg/evaluator"
)

// str(v) → the printed form of v
func stdlibStr(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(evaluator.FormatValue(args[0])), nil
}

// type(v) → type name
func stdlibType(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(evaluator.TypeName(args[0])), nil
}

// concat(a, b, ...) → string of the printed forms joined together
func stdlibConcat(args []evaluator.Value) (evaluator.Value, error) {
	var sb strings.Builder
	for _, item := range args {
		sb.WriteString(evaluator.FormatValue(item))
	}
	return evaluator.NewString(sb.String()), nil
}

// num(s) → number parsed from a string
func stdlibNum(args []evaluator.Value) (evaluator.Value, error) {
	if n, ok := args[0].(evaluator.Number); ok {
		return n, nil
	}
	s, err := stringArg("num", args, 0)
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("num: cannot parse %q as a number", s)
	}
	return evaluator.NewNumber(f), nil
}

// json(v) → JSON text of v
func stdlibJSON(args []evaluator.Value) (evaluator.Value, error) {
	b, err := evaluator.ValueToJSON(args[0])
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return evaluator.NewString(string(b)), nil
}
