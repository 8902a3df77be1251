package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

func init() {
	color.NoColor = true
}

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.bs", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.ESyntax, "unexpected token", span, "check syntax")

	assert.Equal(t, diagnostics.ESyntax, d.Code)
	assert.Equal(t, "unexpected token", d.Message)
	assert.Equal(t, diagnostics.SeverityError, d.Severity)
	assert.True(t, d.IsError())
}

func TestMakeWarning(t *testing.T) {
	d := diagnostics.MakeWarning(diagnostics.WUnreachable, "unreachable statement", nil, "")
	assert.False(t, d.IsError())
	assert.False(t, diagnostics.HasErrors([]diagnostics.Diagnostic{d}))
	assert.True(t, diagnostics.HasErrors([]diagnostics.Diagnostic{d, diagnostics.MakeDiag(diagnostics.EName, "x", nil, "")}))
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.bs", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EName, "undeclared variable 'x'", span, "declare it with 'x: Int'")

	out := diagnostics.FormatDiagnostic(d, true)
	assert.Contains(t, out, "error[E_NAME]")
	assert.Contains(t, out, "test.bs:3:5")
	assert.Contains(t, out, "hint:")
}

func TestFormatWarningPretty(t *testing.T) {
	d := diagnostics.MakeWarning(diagnostics.WDuplicateDecl, "duplicate", nil, "")
	out := diagnostics.FormatDiagnostic(d, true)
	assert.True(t, strings.HasPrefix(out, "warning[W_DUPLICATE_DECL]"), out)
	assert.Contains(t, out, "<unknown>")
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, false)
	assert.Contains(t, out, `"code":"E_LEX"`)
	assert.Contains(t, out, `"severity":"error"`)
	assert.NotContains(t, out, `"span"`)
}

func TestFormatDiagnosticsJoins(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EType, "a", nil, ""),
		diagnostics.MakeDiag(diagnostics.EType, "b", nil, ""),
	}
	out := diagnostics.FormatDiagnostics(diags, true)
	require.Equal(t, 2, strings.Count(out, "error[E_TYPE]"))
	assert.Contains(t, out, "\n\n")

	js := diagnostics.FormatDiagnostics(diags, false)
	assert.True(t, strings.HasPrefix(js, "["))
}
