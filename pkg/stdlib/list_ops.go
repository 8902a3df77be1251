package stdlib

import (
	"github.com/blockcraft/blockscript/pkg/evaluator"
)

// a.size(), a.length() → Int
func arraySize(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewInt(int64(len(recv.(evaluator.ArrayValue).Elements))), nil
}

// a.indexOf(v) → Int index of the first equal element, or -1
func arrayIndexOf(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewInt(int64(indexOf(recv.(evaluator.ArrayValue), args[0]))), nil
}
