package evaluator

import (
	"fmt"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// Coerce converts v to the declared type t. Kinds must match exactly except
// that Int widens to Double. Arrays must have exactly t.Size elements, each
// converted to the element type; the result never aliases v.
func Coerce(v Value, t Type) (Value, error) {
	switch val := v.(type) {
	case IntValue:
		switch t.Kind {
		case KindInt:
			return val, nil
		case KindDouble:
			return DoubleValue{Value: float64(val.Value)}, nil
		}
	case DoubleValue, StringValue, BoolValue:
		if val.Type().Kind == t.Kind {
			return val, nil
		}
	case ArrayValue:
		if val.Type().Equal(t) {
			return val.Copy(), nil
		}
		if t.Kind == KindArray && t.Elem != nil {
			if len(val.Elements) != t.Size {
				return nil, coerceError("expected %s, got an array of %d elements", t, len(val.Elements))
			}
			elems := make([]Value, len(val.Elements))
			for i, e := range val.Elements {
				c, err := Coerce(e, *t.Elem)
				if err != nil {
					return nil, coerceError("element %d: %s", i, err.(*RuntimeError).Message)
				}
				elems[i] = c
			}
			return ArrayValue{Elem: *t.Elem, Elements: elems}, nil
		}
	case UninitializedValue:
		if assignable(val.Of, t) {
			return Zero(t), nil
		}
	}
	return nil, coerceError("expected %s, got %s", t, v.Type())
}

func assignable(from, to Type) bool {
	if from.Kind == KindInt && to.Kind == KindDouble {
		return true
	}
	if from.Kind != to.Kind {
		return false
	}
	if from.Kind != KindArray {
		return true
	}
	return from.Size == to.Size && from.Elem != nil && to.Elem != nil && assignable(*from.Elem, *to.Elem)
}

func coerceError(format string, args ...interface{}) error {
	return &RuntimeError{Code: diagnostics.EType, Message: fmt.Sprintf(format, args...)}
}
