package evaluator

import (
	"encoding/json"
	"math"
	"strconv"
)

// ValueToJSON marshals a Value to JSON bytes.
// Numbers output integers without decimal point. Non-finite numbers and
// callables have no JSON form and are rendered as strings.
func ValueToJSON(v Value) ([]byte, error) {
	raw := valueToRaw(v)
	return json.Marshal(raw)
}

func valueToRaw(v Value) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case Nil:
		return nil

	case Bool:
		return val.Value

	case Number:
		return numberToRaw(val.Value)

	case String:
		return val.Value

	case Vector:
		return rowToRaw(val.Items)

	case Matrix:
		rows := make([]any, len(val.Rows))
		for i, r := range val.Rows {
			rows[i] = rowToRaw(r)
		}
		return rows

	case Array:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			items[i] = valueToRaw(item)
		}
		return items

	case *Instance:
		fields := make(map[string]any, len(val.Fields))
		for k, f := range val.Fields {
			fields[k] = valueToRaw(f)
		}
		return map[string]any{"class": val.Klass.Name, "fields": fields}
	}

	return FormatValue(v)
}

func numberToRaw(n float64) any {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return FormatNumber(n)
	}
	// Output integers without decimal point
	if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
		return int64(n)
	}
	return n
}

func rowToRaw(items []float64) []any {
	out := make([]any, len(items))
	for i, n := range items {
		out[i] = numberToRaw(n)
	}
	return out
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// FormatNumber formats a float64 as an integer string if it's a whole number.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "∞"
	case math.IsInf(n, -1):
		return "-∞"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e18 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
