// Package evaluator implements the BlockScript tree-walking evaluator: the
// value model, the scope stack and statement execution.
package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// Value is the interface for all BlockScript runtime values.
// The sealed marker restricts implementations to this package.
type Value interface {
	Type() Type
	// String renders the value the way print shows it.
	String() string
	value() // sealed marker
}

// IntValue is a signed 64-bit integer.
type IntValue struct {
	Value int64
}

func (IntValue) value()           {}
func (IntValue) Type() Type       { return IntType }
func (v IntValue) String() string { return strconv.FormatInt(v.Value, 10) }

// DoubleValue is an IEEE-754 double.
type DoubleValue struct {
	Value float64
}

func (DoubleValue) value()           {}
func (DoubleValue) Type() Type       { return DoubleType }
func (v DoubleValue) String() string { return FormatDouble(v.Value) }

// StringValue is an immutable string.
type StringValue struct {
	Value string
}

func (StringValue) value()           {}
func (StringValue) Type() Type       { return StringType }
func (v StringValue) String() string { return v.Value }

// BoolValue is true or false.
type BoolValue struct {
	Value bool
}

func (BoolValue) value()     {}
func (BoolValue) Type() Type { return BoolType }
func (v BoolValue) String() string {
	if v.Value {
		return "true"
	}
	return "false"
}

// ArrayValue is a fixed-length sequence of values of one element type.
// Copies of the struct share Elements. Coerce hands out fresh storage when
// an array is stored in a variable, element or parameter.
type ArrayValue struct {
	Elem     Type
	Elements []Value
}

func (ArrayValue) value()       {}
func (v ArrayValue) Type() Type { return ArrayOf(v.Elem, len(v.Elements)) }
func (v ArrayValue) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "Array Value: Size " + strconv.Itoa(len(v.Elements)) + ", Elements: [" + strings.Join(parts, ", ") + "]"
}

// Copy returns a deep copy of the array.
func (v ArrayValue) Copy() ArrayValue {
	elems := make([]Value, len(v.Elements))
	for i, e := range v.Elements {
		if inner, ok := e.(ArrayValue); ok {
			e = inner.Copy()
		}
		elems[i] = e
	}
	return ArrayValue{Elem: v.Elem, Elements: elems}
}

// UninitializedValue is the value of a declared variable that was never
// given one. It keeps its declared type.
type UninitializedValue struct {
	Of Type
}

func (UninitializedValue) value()           {}
func (v UninitializedValue) Type() Type     { return v.Of }
func (v UninitializedValue) String() string { return "Uninitialized " + v.Of.String() }

// VoidValue is the result of a call that finished without returning a value.
type VoidValue struct{}

func (VoidValue) value()         {}
func (VoidValue) Type() Type     { return VoidType }
func (VoidValue) String() string { return "Void" }

// NewInt creates an integer value.
func NewInt(n int64) Value { return IntValue{Value: n} }

// NewDouble creates a double value.
func NewDouble(f float64) Value { return DoubleValue{Value: f} }

// NewString creates a string value.
func NewString(s string) Value { return StringValue{Value: s} }

// NewBool creates a boolean value.
func NewBool(b bool) Value { return BoolValue{Value: b} }

// NewArray creates an array value.
func NewArray(elem Type, elems []Value) Value {
	return ArrayValue{Elem: elem, Elements: elems}
}

// FormatDouble renders f with at least one fractional digit, switching to
// E notation outside [1e-3, 1e7): 2.0, 12.5, 1.0E7, 1.5E-4.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'E', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(n)
}

// Zero materializes the value of a declaration without an initializer.
// Arrays get their full shape, filled with uninitialized elements.
func Zero(t Type) Value {
	if t.Kind != KindArray || t.Elem == nil {
		return UninitializedValue{Of: t}
	}
	elems := make([]Value, t.Size)
	for i := range elems {
		elems[i] = Zero(*t.Elem)
	}
	return ArrayValue{Elem: *t.Elem, Elements: elems}
}

// Truthy extracts a Bool, reporting false for any other kind.
func Truthy(v Value) (value, ok bool) {
	b, isBool := v.(BoolValue)
	return b.Value, isBool
}
