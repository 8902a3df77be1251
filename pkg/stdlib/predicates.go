package stdlib

import (
	"strings"

	"github.com/blockcraft/blockscript/pkg/evaluator"
)

// x.contains(v) → Bool
// On a String, v must be a String and is searched as a substring. On an
// Array, v is compared deeply against each element.
func methodContains(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	value := args[0]
	switch in := recv.(type) {
	case evaluator.StringValue:
		sub, ok := value.(evaluator.StringValue)
		if !ok {
			return nil, typeError("contains: expected a String argument, got %s", value.Type())
		}
		return evaluator.NewBool(strings.Contains(in.Value, sub.Value)), nil

	case evaluator.ArrayValue:
		return evaluator.NewBool(indexOf(in, value) >= 0), nil
	}
	return evaluator.NewBool(false), nil
}

func indexOf(arr evaluator.ArrayValue, value evaluator.Value) int {
	for i, item := range arr.Elements {
		if evaluator.Equal(item, value) {
			return i
		}
	}
	return -1
}
