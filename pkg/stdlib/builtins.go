package stdlib

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/evaluator"
)

// RegisterDefaults adds all builtins and methods.
func RegisterDefaults(r *Registry) {
	// Conversions
	r.Register(evaluator.Builtin{Name: "len", Arity: 1, Execute: stdlibLen})
	r.Register(evaluator.Builtin{Name: "str", Arity: 1, Execute: stdlibStr})
	r.Register(evaluator.Builtin{Name: "int", Arity: 1, Execute: stdlibInt})
	r.Register(evaluator.Builtin{Name: "double", Arity: 1, Execute: stdlibDouble})

	// Math
	r.Register(evaluator.Builtin{Name: "abs", Arity: 1, Execute: stdlibAbs})
	r.Register(evaluator.Builtin{Name: "min", Arity: 2, Execute: stdlibMin})
	r.Register(evaluator.Builtin{Name: "max", Arity: 2, Execute: stdlibMax})
	r.Register(evaluator.Builtin{Name: "pow", Arity: 2, Execute: stdlibPow})
	r.Register(evaluator.Builtin{Name: "sqrt", Arity: 1, Execute: stdlibSqrt})

	// Number methods
	for _, k := range []evaluator.Kind{evaluator.KindInt, evaluator.KindDouble} {
		r.RegisterMethod(evaluator.Method{Receiver: k, Name: "toString", Arity: 0, Execute: methodToString})
		r.RegisterMethod(evaluator.Method{Receiver: k, Name: "toInt", Arity: 0, Execute: methodToInt})
		r.RegisterMethod(evaluator.Method{Receiver: k, Name: "toDouble", Arity: 0, Execute: methodToDouble})
		r.RegisterMethod(evaluator.Method{Receiver: k, Name: "abs", Arity: 0, Execute: methodAbs})
	}

	// String methods
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "length", Arity: 0, Execute: strLength})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "upper", Arity: 0, Execute: strUpper})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "lower", Arity: 0, Execute: strLower})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "title", Arity: 0, Execute: strTitle})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "trim", Arity: 0, Execute: strTrim})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "contains", Arity: 1, Execute: methodContains})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "substring", Arity: 2, Execute: strSubstring})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindString, Name: "charAt", Arity: 1, Execute: strCharAt})

	// Array methods
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindArray, Name: "size", Arity: 0, Execute: arraySize})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindArray, Name: "length", Arity: 0, Execute: arraySize})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindArray, Name: "contains", Arity: 1, Execute: methodContains})
	r.RegisterMethod(evaluator.Method{Receiver: evaluator.KindArray, Name: "indexOf", Arity: 1, Execute: arrayIndexOf})
}

func typeError(format string, args ...interface{}) error {
	return &evaluator.RuntimeError{Code: diagnostics.EType, Message: fmt.Sprintf(format, args...)}
}

func indexError(format string, args ...interface{}) error {
	return &evaluator.RuntimeError{Code: diagnostics.EIndex, Message: fmt.Sprintf(format, args...)}
}

// len(x) → Int: element count of an Array, character count of a String
func stdlibLen(args []evaluator.Value) (evaluator.Value, error) {
	switch v := args[0].(type) {
	case evaluator.ArrayValue:
		return evaluator.NewInt(int64(len(v.Elements))), nil
	case evaluator.StringValue:
		return evaluator.NewInt(int64(utf8.RuneCountInString(v.Value))), nil
	}
	return nil, typeError("len: expected an Array or String, got %s", args[0].Type())
}

// str(x) → String, rendered the way print shows it
func stdlibStr(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(args[0].String()), nil
}

// int(x) → Int; Doubles truncate toward zero, Strings are parsed
func stdlibInt(args []evaluator.Value) (evaluator.Value, error) {
	switch v := args[0].(type) {
	case evaluator.IntValue:
		return v, nil
	case evaluator.DoubleValue:
		return evaluator.NewInt(int64(v.Value)), nil
	case evaluator.StringValue:
		text := strings.TrimSpace(v.Value)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return evaluator.NewInt(n), nil
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return evaluator.NewInt(int64(f)), nil
		}
		return nil, typeError("int: cannot convert %q to Int", v.Value)
	case evaluator.BoolValue:
		if v.Value {
			return evaluator.NewInt(1), nil
		}
		return evaluator.NewInt(0), nil
	}
	return nil, typeError("int: cannot convert %s to Int", args[0].Type())
}

// double(x) → Double
func stdlibDouble(args []evaluator.Value) (evaluator.Value, error) {
	switch v := args[0].(type) {
	case evaluator.IntValue:
		return evaluator.NewDouble(float64(v.Value)), nil
	case evaluator.DoubleValue:
		return v, nil
	case evaluator.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, typeError("double: cannot convert %q to Double", v.Value)
		}
		return evaluator.NewDouble(f), nil
	}
	return nil, typeError("double: cannot convert %s to Double", args[0].Type())
}

func methodToString(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(recv.String()), nil
}

func methodToInt(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return stdlibInt([]evaluator.Value{recv})
}

func methodToDouble(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return stdlibDouble([]evaluator.Value{recv})
}

func methodAbs(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return stdlibAbs([]evaluator.Value{recv})
}
