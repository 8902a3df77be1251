package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/evaluator"
	"github.com/blockcraft/blockscript/pkg/parser"
	"github.com/blockcraft/blockscript/pkg/stdlib"
)

func eval(t *testing.T, source string) (evaluator.Value, error) {
	t.Helper()
	op, diags := parser.ParseExpression(source, "test.bs")
	require.Empty(t, diags, source)
	reg := stdlib.Default()
	ev := evaluator.New(evaluator.ExecOptions{Builtins: reg.Builtins(), Methods: reg.Methods()})
	return ev.Eval(op)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`len([1, 2, 3])`, "3"},
		{`len("héllo")`, "5"},
		{`str(2.0) + "!"`, "2.0!"},
		{`str([1])`, "Array Value: Size 1, Elements: [1]"},
		{`int(3.9)`, "3"},
		{`int(-3.9)`, "-3"},
		{`int(" 42 ")`, "42"},
		{`int("2.5")`, "2"},
		{`int(true)`, "1"},
		{`double(2)`, "2.0"},
		{`double("0.5")`, "0.5"},
		{`abs(-4)`, "4"},
		{`abs(-1.5)`, "1.5"},
		{`min(3, 7)`, "3"},
		{`max(3, 7)`, "7"},
		{`min(3, 2.5)`, "2.5"},
		{`max(3, 2.5)`, "3.0"},
		{`pow(2, 10)`, "1024"},
		{`pow(3, 0)`, "1"},
		{`pow(2, -1)`, "0.5"},
		{`pow(4.0, 0.5)`, "2.0"},
		{`sqrt(16)`, "4.0"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			v, err := eval(t, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestMethods(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`[1, 2, 3].size()`, "3"},
		{`[1, 2, 3].length()`, "3"},
		{`[1, 2, 3].contains(2)`, "true"},
		{`[1, 2, 3].contains(2.0)`, "true"},
		{`[1, 2, 3].contains("2")`, "false"},
		{`[[1], [2]].contains([2])`, "true"},
		{`[5, 6, 5].indexOf(5)`, "0"},
		{`[5, 6].indexOf(9)`, "-1"},
		{`"hello".length()`, "5"},
		{`"hello".upper()`, "HELLO"},
		{`"HeLLo".lower()`, "hello"},
		{`"hello world".title()`, "Hello World"},
		{`"  pad  ".trim()`, "pad"},
		{`"hello".contains("ell")`, "true"},
		{`"hello".contains("xyz")`, "false"},
		{`"hello".substring(1, 3)`, "el"},
		{`"hello".substring(2, 2)`, ""},
		{`"hello".charAt(4)`, "o"},
		{`"héllo".charAt(1)`, "é"},
		{`"ab".upper().lower().length()`, "2"},
		{`(5).toString() + "x"`, "5x"},
		{`(2.5).toInt()`, "2"},
		{`(3).toDouble()`, "3.0"},
		{`(-3).abs()`, "3"},
		{`(-2.5).abs()`, "2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			v, err := eval(t, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{`len(5)`, diagnostics.EType},
		{`len(1, 2)`, diagnostics.EType},
		{`int("abc")`, diagnostics.EType},
		{`double(true)`, diagnostics.EType},
		{`abs("x")`, diagnostics.EType},
		{`min(1, "a")`, diagnostics.EType},
		{`sqrt(true)`, diagnostics.EType},
		{`"abc".substring(2, 1)`, diagnostics.EIndex},
		{`"abc".substring(0, 4)`, diagnostics.EIndex},
		{`"abc".substring("a", 1)`, diagnostics.EType},
		{`"abc".charAt(3)`, diagnostics.EIndex},
		{`"abc".contains(1)`, diagnostics.EType},
		{`"abc".size()`, diagnostics.EType},
		{`true.toString()`, diagnostics.EType},
		{`[1].indexOf()`, diagnostics.EType},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := eval(t, tt.source)
			require.Error(t, err)
			re, ok := err.(*evaluator.RuntimeError)
			require.True(t, ok, "%T", err)
			assert.Equal(t, tt.code, re.Code, re.Message)
			assert.NotNil(t, re.Span)
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := stdlib.Default()
	assert.Equal(t, []string{"abs", "double", "int", "len", "max", "min", "pow", "sqrt", "str"}, reg.Names())
	assert.NotNil(t, reg.Get("len"))
	assert.Nil(t, reg.Get("nope"))
	assert.Contains(t, reg.Methods(), evaluator.MethodKey(evaluator.KindString, "upper"))
	assert.NotContains(t, reg.Methods(), evaluator.MethodKey(evaluator.KindBool, "upper"))
	assert.Contains(t, reg.MethodNames(), "Array.indexOf")

	custom := stdlib.NewRegistry()
	custom.Register(evaluator.Builtin{Name: "zero", Arity: 0, Execute: func([]evaluator.Value) (evaluator.Value, error) {
		return evaluator.NewInt(0), nil
	}})
	assert.Len(t, custom.Builtins(), 1)
	assert.Empty(t, custom.Methods())
}
