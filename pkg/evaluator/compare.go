package evaluator

import (
	"fmt"
	"strings"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// Compare applies a comparison operator. Numbers compare across Int and
// Double, strings compare lexicographically, and Bools only support
// == and !=.
func Compare(op ast.CompareOp, l, r Value) (bool, error) {
	if lf, ok := asDouble(l); ok {
		if rf, ok := asDouble(r); ok {
			if li, ok := l.(IntValue); ok {
				if ri, ok := r.(IntValue); ok {
					return ordered(op, cmpInt(li.Value, ri.Value)), nil
				}
			}
			return compareFloat(op, lf, rf), nil
		}
	}
	switch lv := l.(type) {
	case StringValue:
		if rv, ok := r.(StringValue); ok {
			return ordered(op, strings.Compare(lv.Value, rv.Value)), nil
		}
	case BoolValue:
		if rv, ok := r.(BoolValue); ok {
			switch op {
			case ast.OpEq:
				return lv.Value == rv.Value, nil
			case ast.OpNeq:
				return lv.Value != rv.Value, nil
			}
			return false, &RuntimeError{
				Code:    diagnostics.EType,
				Message: fmt.Sprintf("operator '%s' is not defined for Bool", op),
			}
		}
	}
	if err := unsetError(l, r); err != nil {
		return false, err
	}
	return false, &RuntimeError{
		Code:    diagnostics.EType,
		Message: fmt.Sprintf("cannot compare %s with %s", l.Type(), r.Type()),
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareFloat keeps IEEE semantics so NaN is unequal to everything.
func compareFloat(op ast.CompareOp, a, b float64) bool {
	switch op {
	case ast.OpEq:
		return a == b
	case ast.OpNeq:
		return a != b
	case ast.OpLt:
		return a < b
	case ast.OpGt:
		return a > b
	case ast.OpLtEq:
		return a <= b
	case ast.OpGtEq:
		return a >= b
	}
	return false
}

func ordered(op ast.CompareOp, c int) bool {
	switch op {
	case ast.OpEq:
		return c == 0
	case ast.OpNeq:
		return c != 0
	case ast.OpLt:
		return c < 0
	case ast.OpGt:
		return c > 0
	case ast.OpLtEq:
		return c <= 0
	case ast.OpGtEq:
		return c >= 0
	}
	return false
}

// Equal reports deep equality of two values, promoting Int to Double.
// Values of different kinds are never equal.
func Equal(l, r Value) bool {
	if la, ok := l.(ArrayValue); ok {
		ra, ok := r.(ArrayValue)
		if !ok || len(la.Elements) != len(ra.Elements) {
			return false
		}
		for i := range la.Elements {
			if !Equal(la.Elements[i], ra.Elements[i]) {
				return false
			}
		}
		return true
	}
	eq, err := Compare(ast.OpEq, l, r)
	return err == nil && eq
}
