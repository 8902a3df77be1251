package evaluator_test

import (
	"math"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/evaluator"
)

func requireCode(t *testing.T, err error, code string) *evaluator.RuntimeError {
	t.Helper()
	require.Error(t, err)
	re, ok := err.(*evaluator.RuntimeError)
	require.True(t, ok, "expected *RuntimeError, got %T: %v", err, err)
	assert.Equal(t, code, re.Code, re.Message)
	return re
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewInt(10), "10"},
		{evaluator.NewInt(-3), "-3"},
		{evaluator.NewDouble(12.5), "12.5"},
		{evaluator.NewDouble(2), "2.0"},
		{evaluator.NewDouble(-0.25), "-0.25"},
		{evaluator.NewDouble(0), "0.0"},
		{evaluator.NewDouble(1e7), "1.0E7"},
		{evaluator.NewDouble(1.5e-4), "1.5E-4"},
		{evaluator.NewDouble(math.Inf(1)), "Infinity"},
		{evaluator.NewDouble(math.NaN()), "NaN"},
		{evaluator.NewString("raw \"text\""), "raw \"text\""},
		{evaluator.NewBool(true), "true"},
		{evaluator.NewBool(false), "false"},
		{
			evaluator.NewArray(evaluator.IntType, []evaluator.Value{
				evaluator.NewInt(2), evaluator.NewInt(4), evaluator.NewInt(6), evaluator.NewInt(7),
			}),
			"Array Value: Size 4, Elements: [2, 4, 6, 7]",
		},
		{evaluator.NewArray(evaluator.IntType, nil), "Array Value: Size 0, Elements: []"},
		{evaluator.UninitializedValue{Of: evaluator.IntType}, "Uninitialized Int"},
		{evaluator.UninitializedValue{Of: evaluator.ArrayOf(evaluator.DoubleType, 2)}, "Uninitialized Array<Double>(2)"},
		{evaluator.VoidValue{}, "Void"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestZeroMaterializesArrays(t *testing.T) {
	v := evaluator.Zero(evaluator.ArrayOf(evaluator.ArrayOf(evaluator.IntType, 2), 3))
	arr, ok := v.(evaluator.ArrayValue)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
	inner, ok := arr.Elements[0].(evaluator.ArrayValue)
	require.True(t, ok)
	assert.Equal(t, "Array Value: Size 2, Elements: [Uninitialized Int, Uninitialized Int]", inner.String())

	assert.Equal(t, evaluator.UninitializedValue{Of: evaluator.BoolType}, evaluator.Zero(evaluator.BoolType))
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

func TestArithmetic(t *testing.T) {
	i := evaluator.NewInt
	d := evaluator.NewDouble
	s := evaluator.NewString
	tests := []struct {
		name string
		op   ast.BinaryOp
		l, r evaluator.Value
		want evaluator.Value
	}{
		{"int+int", ast.OpAdd, i(2), i(3), i(5)},
		{"int+double", ast.OpAdd, i(10), d(2.5), d(12.5)},
		{"double+int", ast.OpAdd, d(2.5), i(10), d(12.5)},
		{"double+double", ast.OpAdd, d(0.5), d(0.25), d(0.75)},
		{"string+string", ast.OpAdd, s("ab"), s("cd"), s("abcd")},
		{"int-int", ast.OpSub, i(2), i(5), i(-3)},
		{"double-int", ast.OpSub, d(2.5), i(1), d(1.5)},
		{"int*int", ast.OpMul, i(4), i(5), i(20)},
		{"int*double", ast.OpMul, i(4), d(0.5), d(2)},
		{"int*string", ast.OpMul, i(3), s("ab"), s("ababab")},
		{"string*int", ast.OpMul, s("ab"), i(3), s("ababab")},
		{"string*zero", ast.OpMul, s("ab"), i(0), s("")},
		{"int/int truncates", ast.OpDiv, i(7), i(2), i(3)},
		{"negative int/int truncates toward zero", ast.OpDiv, i(-7), i(2), i(-3)},
		{"int/double", ast.OpDiv, i(7), d(2), d(3.5)},
		{"double/int", ast.OpDiv, d(1), i(4), d(0.25)},
		{"double/zero", ast.OpDiv, d(1), i(0), d(math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Apply(tt.op, tt.l, tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArithmeticTypeErrors(t *testing.T) {
	i := evaluator.NewInt
	d := evaluator.NewDouble
	s := evaluator.NewString
	b := evaluator.NewBool
	arr := evaluator.NewArray(evaluator.IntType, []evaluator.Value{i(1)})
	tests := []struct {
		name string
		op   ast.BinaryOp
		l, r evaluator.Value
	}{
		{"string+int", ast.OpAdd, s("a"), i(1)},
		{"int+string", ast.OpAdd, i(1), s("a")},
		{"string-string", ast.OpSub, s("a"), s("a")},
		{"string/int", ast.OpDiv, s("a"), i(1)},
		{"double*string", ast.OpMul, d(2), s("a")},
		{"string*double", ast.OpMul, s("a"), d(2)},
		{"bool+bool", ast.OpAdd, b(true), b(true)},
		{"int+bool", ast.OpAdd, i(1), b(true)},
		{"array+int", ast.OpAdd, arr, i(1)},
		{"uninitialized+int", ast.OpAdd, evaluator.UninitializedValue{Of: evaluator.IntType}, i(1)},
		{"negative repeat", ast.OpMul, s("a"), i(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.Apply(tt.op, tt.l, tt.r)
			requireCode(t, err, diagnostics.EType)
		})
	}
}

func TestIntegerDivisionByZero(t *testing.T) {
	_, err := evaluator.Apply(ast.OpDiv, evaluator.NewInt(1), evaluator.NewInt(0))
	requireCode(t, err, diagnostics.EArith)
}

func TestNegate(t *testing.T) {
	v, err := evaluator.Negate(evaluator.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, evaluator.NewInt(-4), v)
	v, err = evaluator.Negate(evaluator.NewDouble(-1.5))
	require.NoError(t, err)
	assert.Equal(t, evaluator.NewDouble(1.5), v)

	_, err = evaluator.Negate(evaluator.NewString("x"))
	requireCode(t, err, diagnostics.EType)
	_, err = evaluator.Negate(evaluator.NewBool(true))
	requireCode(t, err, diagnostics.EType)
}

// Int * String and String * Int agree for any count and text.
func TestRepeatIsCommutative(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for n := 0; n < 200; n++ {
		var count uint8
		var text string
		f.Fuzz(&count)
		f.Fuzz(&text)
		left, err := evaluator.Apply(ast.OpMul, evaluator.NewInt(int64(count)), evaluator.NewString(text))
		require.NoError(t, err)
		right, err := evaluator.Apply(ast.OpMul, evaluator.NewString(text), evaluator.NewInt(int64(count)))
		require.NoError(t, err)
		assert.Equal(t, left, right)
		assert.Equal(t, evaluator.NewString(strings.Repeat(text, int(count))), left)
	}
}

// Mixed Int/Double arithmetic matches Double/Double arithmetic.
func TestPromotionMatchesDoubleArithmetic(t *testing.T) {
	f := fuzz.New().NilChance(0)
	ops := []ast.BinaryOp{ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv}
	for n := 0; n < 200; n++ {
		var a int32
		var b float64
		f.Fuzz(&a)
		f.Fuzz(&b)
		for _, op := range ops {
			mixed, err := evaluator.Apply(op, evaluator.NewInt(int64(a)), evaluator.NewDouble(b))
			require.NoError(t, err)
			pure, err := evaluator.Apply(op, evaluator.NewDouble(float64(a)), evaluator.NewDouble(b))
			require.NoError(t, err)
			if math.IsNaN(pure.(evaluator.DoubleValue).Value) {
				assert.True(t, math.IsNaN(mixed.(evaluator.DoubleValue).Value))
				continue
			}
			assert.Equal(t, pure, mixed, "%d %s %v", a, op, b)
		}
	}
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

func TestCompare(t *testing.T) {
	i := evaluator.NewInt
	d := evaluator.NewDouble
	s := evaluator.NewString
	b := evaluator.NewBool
	tests := []struct {
		op   ast.CompareOp
		l, r evaluator.Value
		want bool
	}{
		{ast.OpLt, i(1), i(2), true},
		{ast.OpGtEq, i(2), i(2), true},
		{ast.OpEq, i(2), d(2.0), true},
		{ast.OpLt, d(1.5), i(2), true},
		{ast.OpNeq, i(1), d(1.5), true},
		{ast.OpLt, s("apple"), s("banana"), true},
		{ast.OpEq, s("a"), s("a"), true},
		{ast.OpGt, s("b"), s("abc"), true},
		{ast.OpEq, b(true), b(true), true},
		{ast.OpNeq, b(true), b(false), true},
		{ast.OpEq, d(math.NaN()), d(math.NaN()), false},
	}
	for _, tt := range tests {
		got, err := evaluator.Compare(tt.op, tt.l, tt.r)
		require.NoError(t, err, "%v %s %v", tt.l, tt.op, tt.r)
		assert.Equal(t, tt.want, got, "%v %s %v", tt.l, tt.op, tt.r)
	}
}

func TestCompareTypeErrors(t *testing.T) {
	i := evaluator.NewInt
	s := evaluator.NewString
	b := evaluator.NewBool
	cases := []struct {
		op   ast.CompareOp
		l, r evaluator.Value
	}{
		{ast.OpEq, i(1), s("1")},
		{ast.OpLt, b(true), b(false)},
		{ast.OpEq, b(true), i(1)},
		{ast.OpEq, evaluator.NewArray(evaluator.IntType, nil), evaluator.NewArray(evaluator.IntType, nil)},
	}
	for _, c := range cases {
		_, err := evaluator.Compare(c.op, c.l, c.r)
		requireCode(t, err, diagnostics.EType)
	}
}

func TestEqual(t *testing.T) {
	a := evaluator.NewArray(evaluator.IntType, []evaluator.Value{evaluator.NewInt(1), evaluator.NewInt(2)})
	b := evaluator.NewArray(evaluator.DoubleType, []evaluator.Value{evaluator.NewDouble(1), evaluator.NewDouble(2)})
	assert.True(t, evaluator.Equal(a, b))
	assert.False(t, evaluator.Equal(a, evaluator.NewInt(1)))
	assert.False(t, evaluator.Equal(evaluator.NewString("1"), evaluator.NewInt(1)))
}

// ---------------------------------------------------------------------------
// Coercion
// ---------------------------------------------------------------------------

func TestCoerce(t *testing.T) {
	v, err := evaluator.Coerce(evaluator.NewInt(10), evaluator.DoubleType)
	require.NoError(t, err)
	assert.Equal(t, evaluator.NewDouble(10), v)

	_, err = evaluator.Coerce(evaluator.NewDouble(1.5), evaluator.IntType)
	requireCode(t, err, diagnostics.EType)

	_, err = evaluator.Coerce(evaluator.NewString("1"), evaluator.IntType)
	requireCode(t, err, diagnostics.EType)

	v, err = evaluator.Coerce(evaluator.UninitializedValue{Of: evaluator.IntType}, evaluator.DoubleType)
	require.NoError(t, err)
	assert.Equal(t, evaluator.UninitializedValue{Of: evaluator.DoubleType}, v)
}

func TestCoerceArrays(t *testing.T) {
	src := evaluator.NewArray(evaluator.IntType, []evaluator.Value{evaluator.NewInt(1), evaluator.NewInt(2)}).(evaluator.ArrayValue)

	v, err := evaluator.Coerce(src, evaluator.ArrayOf(evaluator.DoubleType, 2))
	require.NoError(t, err)
	assert.Equal(t, "Array Value: Size 2, Elements: [1.0, 2.0]", v.String())

	// the result never aliases the source
	same, err := evaluator.Coerce(src, evaluator.ArrayOf(evaluator.IntType, 2))
	require.NoError(t, err)
	same.(evaluator.ArrayValue).Elements[0] = evaluator.NewInt(99)
	assert.Equal(t, evaluator.NewInt(1), src.Elements[0])

	inner := evaluator.Zero(evaluator.ArrayOf(evaluator.IntType, 2))
	nested := evaluator.NewArray(evaluator.ArrayOf(evaluator.IntType, 2), []evaluator.Value{inner}).(evaluator.ArrayValue)
	copied, err := evaluator.Coerce(nested, nested.Type())
	require.NoError(t, err)
	copied.(evaluator.ArrayValue).Elements[0].(evaluator.ArrayValue).Elements[1] = evaluator.NewInt(5)
	assert.Equal(t, "Array Value: Size 1, Elements: [Array Value: Size 2, Elements: [Uninitialized Int, Uninitialized Int]]", nested.String())
	assert.Equal(t, "Array Value: Size 1, Elements: [Array Value: Size 2, Elements: [Uninitialized Int, 5]]", copied.String())

	_, err = evaluator.Coerce(src, evaluator.ArrayOf(evaluator.IntType, 3))
	re := requireCode(t, err, diagnostics.EType)
	assert.Contains(t, re.Message, "2 elements")

	_, err = evaluator.Coerce(src, evaluator.ArrayOf(evaluator.StringType, 2))
	re = requireCode(t, err, diagnostics.EType)
	assert.Contains(t, re.Message, "element 0")
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "Array<Array<Int>(2)>(3)", evaluator.ArrayOf(evaluator.ArrayOf(evaluator.IntType, 2), 3).String())
	assert.True(t, evaluator.ArrayOf(evaluator.IntType, 2).Equal(evaluator.ArrayOf(evaluator.IntType, 2)))
	assert.False(t, evaluator.ArrayOf(evaluator.IntType, 2).Equal(evaluator.ArrayOf(evaluator.IntType, 3)))
}

func TestValueToJSON(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewArray(evaluator.DoubleType, []evaluator.Value{evaluator.NewDouble(1.5), evaluator.NewDouble(math.Inf(-1))}), `[1.5,"-Infinity"]`},
		{evaluator.UninitializedValue{Of: evaluator.IntType}, `null`},
		{evaluator.NewString("hi"), `"hi"`},
		{evaluator.NewBool(true), `true`},
		{evaluator.VoidValue{}, `null`},
	}
	for _, tt := range tests {
		b, err := evaluator.ValueToJSON(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(b))
	}
}
