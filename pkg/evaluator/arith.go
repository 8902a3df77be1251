package evaluator

import (
	"fmt"
	"strings"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// Arithmetic is implemented by the values that support + - * /.
// Int and Double promote to Double when mixed; String supports + with a
// String and * with an Int.
type Arithmetic interface {
	Value
	Add(Value) (Value, error)
	Sub(Value) (Value, error)
	Mul(Value) (Value, error)
	Div(Value) (Value, error)
}

var (
	_ Arithmetic = IntValue{}
	_ Arithmetic = DoubleValue{}
	_ Arithmetic = StringValue{}
)

func operandError(op ast.BinaryOp, l, r Value) error {
	if err := unsetError(l, r); err != nil {
		return err
	}
	return &RuntimeError{
		Code:    diagnostics.EType,
		Message: fmt.Sprintf("operator '%s' is not defined for %s and %s", op, l.Type(), r.Type()),
	}
}

// unsetError reports the first uninitialized value among vs, or nil.
func unsetError(vs ...Value) error {
	for _, v := range vs {
		if u, ok := v.(UninitializedValue); ok {
			return &RuntimeError{
				Code:    diagnostics.EType,
				Message: fmt.Sprintf("variable of type %s is used before it has a value", u.Of),
			}
		}
	}
	return nil
}

func asDouble(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntValue:
		return float64(n.Value), true
	case DoubleValue:
		return n.Value, true
	}
	return 0, false
}

func (v IntValue) Add(r Value) (Value, error) {
	switch o := r.(type) {
	case IntValue:
		return IntValue{Value: v.Value + o.Value}, nil
	case DoubleValue:
		return DoubleValue{Value: float64(v.Value) + o.Value}, nil
	}
	return nil, operandError(ast.OpAdd, v, r)
}

func (v IntValue) Sub(r Value) (Value, error) {
	switch o := r.(type) {
	case IntValue:
		return IntValue{Value: v.Value - o.Value}, nil
	case DoubleValue:
		return DoubleValue{Value: float64(v.Value) - o.Value}, nil
	}
	return nil, operandError(ast.OpSub, v, r)
}

func (v IntValue) Mul(r Value) (Value, error) {
	switch o := r.(type) {
	case IntValue:
		return IntValue{Value: v.Value * o.Value}, nil
	case DoubleValue:
		return DoubleValue{Value: float64(v.Value) * o.Value}, nil
	case StringValue:
		return repeat(o, v)
	}
	return nil, operandError(ast.OpMul, v, r)
}

func (v IntValue) Div(r Value) (Value, error) {
	switch o := r.(type) {
	case IntValue:
		if o.Value == 0 {
			return nil, &RuntimeError{Code: diagnostics.EArith, Message: "integer division by zero"}
		}
		return IntValue{Value: v.Value / o.Value}, nil
	case DoubleValue:
		return DoubleValue{Value: float64(v.Value) / o.Value}, nil
	}
	return nil, operandError(ast.OpDiv, v, r)
}

func (v DoubleValue) Add(r Value) (Value, error) {
	if f, ok := asDouble(r); ok {
		return DoubleValue{Value: v.Value + f}, nil
	}
	return nil, operandError(ast.OpAdd, v, r)
}

func (v DoubleValue) Sub(r Value) (Value, error) {
	if f, ok := asDouble(r); ok {
		return DoubleValue{Value: v.Value - f}, nil
	}
	return nil, operandError(ast.OpSub, v, r)
}

func (v DoubleValue) Mul(r Value) (Value, error) {
	if f, ok := asDouble(r); ok {
		return DoubleValue{Value: v.Value * f}, nil
	}
	return nil, operandError(ast.OpMul, v, r)
}

func (v DoubleValue) Div(r Value) (Value, error) {
	if f, ok := asDouble(r); ok {
		return DoubleValue{Value: v.Value / f}, nil
	}
	return nil, operandError(ast.OpDiv, v, r)
}

func (v StringValue) Add(r Value) (Value, error) {
	if o, ok := r.(StringValue); ok {
		if len(v.Value)+len(o.Value) > MaxStringLen {
			return nil, &RuntimeError{
				Code:    diagnostics.EArith,
				Message: fmt.Sprintf("string concatenation exceeds the limit of %d bytes", MaxStringLen),
			}
		}
		return StringValue{Value: v.Value + o.Value}, nil
	}
	return nil, operandError(ast.OpAdd, v, r)
}

func (v StringValue) Sub(r Value) (Value, error) {
	return nil, operandError(ast.OpSub, v, r)
}

func (v StringValue) Mul(r Value) (Value, error) {
	if n, ok := r.(IntValue); ok {
		return repeat(v, n)
	}
	return nil, operandError(ast.OpMul, v, r)
}

func (v StringValue) Div(r Value) (Value, error) {
	return nil, operandError(ast.OpDiv, v, r)
}

func repeat(s StringValue, n IntValue) (Value, error) {
	if n.Value < 0 {
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("cannot repeat a string %d times", n.Value),
		}
	}
	if len(s.Value) > 0 && n.Value > int64(MaxStringLen/len(s.Value)) {
		return nil, &RuntimeError{
			Code:    diagnostics.EArith,
			Message: fmt.Sprintf("repeating a string of %d bytes %d times exceeds the limit of %d bytes", len(s.Value), n.Value, MaxStringLen),
		}
	}
	return StringValue{Value: strings.Repeat(s.Value, int(n.Value))}, nil
}

// Apply dispatches a binary arithmetic operator.
func Apply(op ast.BinaryOp, l, r Value) (Value, error) {
	a, ok := l.(Arithmetic)
	if !ok {
		return nil, operandError(op, l, r)
	}
	switch op {
	case ast.OpAdd:
		return a.Add(r)
	case ast.OpSub:
		return a.Sub(r)
	case ast.OpMul:
		return a.Mul(r)
	case ast.OpDiv:
		return a.Div(r)
	}
	return nil, internalError("unknown arithmetic operator %q", op)
}

// Negate implements unary minus.
func Negate(v Value) (Value, error) {
	switch n := v.(type) {
	case IntValue:
		return IntValue{Value: -n.Value}, nil
	case DoubleValue:
		return DoubleValue{Value: -n.Value}, nil
	}
	if err := unsetError(v); err != nil {
		return nil, err
	}
	return nil, &RuntimeError{
		Code:    diagnostics.EType,
		Message: fmt.Sprintf("unary '-' is not defined for %s", v.Type()),
	}
}
