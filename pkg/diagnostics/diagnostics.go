// Package diagnostics defines BlockScript diagnostic types for lex, syntax,
// lint and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/blockcraft/blockscript/pkg/ast"
)

// Error codes.
const (
	ELex           = "E_LEX"
	ESyntax        = "E_SYNTAX"
	EName          = "E_NAME"
	EType          = "E_TYPE"
	EControlFlow   = "E_CONTROL_FLOW"
	EIndex         = "E_INDEX"
	EArith         = "E_ARITH"
	EStackOverflow = "E_STACK_OVERFLOW"
	EBudget        = "E_BUDGET"
	EInternal      = "E_INTERNAL"
	EIO            = "E_IO"
	EConfig        = "E_CONFIG"
)

// Warning codes produced by the validator.
const (
	WBreakOutsideLoop  = "W_BREAK_OUTSIDE_LOOP"
	WReturnOutsideFunc = "W_RETURN_OUTSIDE_FUNC"
	WDuplicateDecl     = "W_DUPLICATE_DECL"
	WUnreachable       = "W_UNREACHABLE"
)

// Severity distinguishes fatal diagnostics from lint warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic represents a lex, syntax, lint, or runtime diagnostic.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     *ast.Span `json:"span,omitempty"`
	Hint     string    `json:"hint,omitempty"`
}

// MakeDiag creates a new error Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  message,
		Span:     span,
		Hint:     hint,
	}
}

// MakeWarning creates a new warning Diagnostic.
func MakeWarning(code, message string, span *ast.Span, hint string) Diagnostic {
	d := MakeDiag(code, message, span, hint)
	d.Severity = SeverityWarning
	return d
}

// IsError reports whether d is fatal.
func (d Diagnostic) IsError() bool {
	return d.Severity != SeverityWarning
}

// HasErrors reports whether any diagnostic in diags is fatal.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

var (
	errorLabel   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	locLabel     = color.New(color.FgCyan).SprintFunc()
	hintLabel    = color.New(color.FgGreen).SprintFunc()
)

// FormatDiagnostic formats a single diagnostic for display. Pretty output is
// colourised unless color.NoColor is set.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	label := errorLabel
	severity := SeverityError
	if !d.IsError() {
		label = warningLabel
		severity = SeverityWarning
	}
	out := fmt.Sprintf("%s: %s\n  --> %s", label(fmt.Sprintf("%s[%s]", severity, d.Code)), d.Message, locLabel(loc))
	if d.Hint != "" {
		out += fmt.Sprintf("\n  %s %s", hintLabel("hint:"), d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
