// Package evaluator implements the Woven tree-walking interpreter.
package evaluator

import (
	"strings"
)

// Value is the interface for all Woven runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	wovenValue() // sealed marker
}

// Nil represents the absence of a value.
type Nil struct{}

func (Nil) wovenValue() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) wovenValue() {}

// Number represents a numeric value. All Woven numbers are float64.
type Number struct {
	Value float64
}

func (Number) wovenValue() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) wovenValue() {}

// Vector is a row of numbers that takes part in arithmetic.
type Vector struct {
	Items []float64
}

func (Vector) wovenValue() {}

// Matrix is a rectangular grid of numbers stored row-major.
type Matrix struct {
	Rows [][]float64
}

func (Matrix) wovenValue() {}

// Dims returns the row and column counts.
func (m Matrix) Dims() (int, int) {
	if len(m.Rows) == 0 {
		return 0, 0
	}
	return len(m.Rows), len(m.Rows[0])
}

// Array is an ordered tuple of arbitrary values. It is opaque to arithmetic.
type Array struct {
	Items []Value
}

func (Array) wovenValue() {}

// NewNil creates a nil value.
func NewNil() Value {
	return Nil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewVector creates a vector value.
func NewVector(items []float64) Value {
	return Vector{Items: items}
}

// NewMatrix creates a matrix value. Callers guarantee equal row lengths.
func NewMatrix(rows [][]float64) Value {
	return Matrix{Rows: rows}
}

// NewArray creates a tuple value.
func NewArray(items []Value) Value {
	return Array{Items: items}
}

// Truthiness returns the boolean interpretation of a Woven value.
// nil, false, 0, NaN and "" are falsy; everything else is truthy,
// including empty vectors and matrices.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0 && val.Value == val.Value
	case String:
		return val.Value != ""
	default:
		return true
	}
}

// TypeName returns the user-facing name of v's type.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Vector:
		return "vector"
	case Matrix:
		return "matrix"
	case Array:
		return "tuple"
	case *Native:
		return "native function"
	case *Fn:
		return "function"
	case *Klass:
		return "class"
	case *Instance:
		return "instance"
	}
	return "unknown"
}

// IsCallable reports whether v can be called.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *Native, *Fn, *Klass:
		return true
	}
	return false
}

// DeepEqual compares two values structurally. Functions, classes and
// instances compare by identity.
func DeepEqual(a, b Value) bool {
	switch av := a.(type) {
	case nil, Nil:
		switch b.(type) {
		case nil, Nil:
			return true
		}
		return false
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Vector:
		bv, ok := b.(Vector)
		return ok && floatsEqual(av.Items, bv.Items)
	case Matrix:
		bv, ok := b.(Matrix)
		if !ok || len(av.Rows) != len(bv.Rows) {
			return false
		}
		for i := range av.Rows {
			if !floatsEqual(av.Rows[i], bv.Rows[i]) {
				return false
			}
		}
		return true
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !DeepEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatValue renders v the way `print` shows it.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		if val.Value {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(val.Value)
	case String:
		return val.Value
	case Vector:
		return formatRow(val.Items)
	case Matrix:
		rows := make([]string, len(val.Rows))
		for i, r := range val.Rows {
			rows[i] = formatRow(r)
		}
		return "[" + strings.Join(rows, ", ") + "]"
	case Array:
		items := make([]string, len(val.Items))
		for i, item := range val.Items {
			items[i] = FormatValue(item)
		}
		return "(" + strings.Join(items, ", ") + ")"
	case *Native:
		return "<native fn " + val.Name + ">"
	case *Fn:
		return "<fn " + val.Name() + ">"
	case *Klass:
		return "<class " + val.Name + ">"
	case *Instance:
		return "<" + val.Klass.Name + " instance>"
	}
	return "<unknown>"
}

func formatRow(items []float64) string {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = FormatNumber(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
