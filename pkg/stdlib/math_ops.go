package stdlib

import (
	"math"

	"github.com/blockcraft/blockscript/pkg/evaluator"
)

func number(fn string, v evaluator.Value) (float64, bool, error) {
	switch n := v.(type) {
	case evaluator.IntValue:
		return float64(n.Value), true, nil
	case evaluator.DoubleValue:
		return n.Value, false, nil
	}
	return 0, false, typeError("%s: expected a number, got %s", fn, v.Type())
}

// abs(n) → same kind as n
func stdlibAbs(args []evaluator.Value) (evaluator.Value, error) {
	switch n := args[0].(type) {
	case evaluator.IntValue:
		if n.Value < 0 {
			return evaluator.NewInt(-n.Value), nil
		}
		return n, nil
	case evaluator.DoubleValue:
		return evaluator.NewDouble(math.Abs(n.Value)), nil
	}
	return nil, typeError("abs: expected a number, got %s", args[0].Type())
}

// min(a, b) → Int when both are Int, else Double
func stdlibMin(args []evaluator.Value) (evaluator.Value, error) {
	return pick("min", args, func(a, b float64) bool { return a <= b })
}

// max(a, b) → Int when both are Int, else Double
func stdlibMax(args []evaluator.Value) (evaluator.Value, error) {
	return pick("max", args, func(a, b float64) bool { return a >= b })
}

func pick(fn string, args []evaluator.Value, first func(a, b float64) bool) (evaluator.Value, error) {
	a, aInt, err := number(fn, args[0])
	if err != nil {
		return nil, err
	}
	b, bInt, err := number(fn, args[1])
	if err != nil {
		return nil, err
	}
	if aInt && bInt {
		if first(a, b) {
			return args[0], nil
		}
		return args[1], nil
	}
	if first(a, b) {
		return evaluator.NewDouble(a), nil
	}
	return evaluator.NewDouble(b), nil
}

// pow(a, b) → Int for an Int base and non-negative Int exponent, else Double
func stdlibPow(args []evaluator.Value) (evaluator.Value, error) {
	if base, ok := args[0].(evaluator.IntValue); ok {
		if exp, ok := args[1].(evaluator.IntValue); ok && exp.Value >= 0 {
			result := int64(1)
			b := base.Value
			for e := exp.Value; e > 0; e >>= 1 {
				if e&1 == 1 {
					result *= b
				}
				b *= b
			}
			return evaluator.NewInt(result), nil
		}
	}
	a, _, err := number("pow", args[0])
	if err != nil {
		return nil, err
	}
	b, _, err := number("pow", args[1])
	if err != nil {
		return nil, err
	}
	return evaluator.NewDouble(math.Pow(a, b)), nil
}

// sqrt(x) → Double
func stdlibSqrt(args []evaluator.Value) (evaluator.Value, error) {
	x, _, err := number("sqrt", args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.NewDouble(math.Sqrt(x)), nil
}
