package stdlib

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blockcraft/blockscript/pkg/evaluator"
)

func text(recv evaluator.Value) string {
	return recv.(evaluator.StringValue).Value
}

// s.length() → Int character count
func strLength(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewInt(int64(utf8.RuneCountInString(text(recv)))), nil
}

// Casers keep state, so each call builds its own.
func strUpper(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(cases.Upper(language.Und).String(text(recv))), nil
}

func strLower(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(cases.Lower(language.Und).String(text(recv))), nil
}

func strTitle(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(cases.Title(language.Und).String(text(recv))), nil
}

func strTrim(recv evaluator.Value, _ []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(strings.TrimSpace(text(recv))), nil
}

// s.substring(start, end) → characters [start, end)
func strSubstring(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	runes := []rune(text(recv))
	start, ok := args[0].(evaluator.IntValue)
	if !ok {
		return nil, typeError("substring: start must be an Int, got %s", args[0].Type())
	}
	end, ok := args[1].(evaluator.IntValue)
	if !ok {
		return nil, typeError("substring: end must be an Int, got %s", args[1].Type())
	}
	if start.Value < 0 || end.Value > int64(len(runes)) || start.Value > end.Value {
		return nil, indexError("substring: range [%d, %d) out of bounds for length %d", start.Value, end.Value, len(runes))
	}
	return evaluator.NewString(string(runes[start.Value:end.Value])), nil
}

// s.charAt(i) → one-character String
func strCharAt(recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	runes := []rune(text(recv))
	i, ok := args[0].(evaluator.IntValue)
	if !ok {
		return nil, typeError("charAt: index must be an Int, got %s", args[0].Type())
	}
	if i.Value < 0 || i.Value >= int64(len(runes)) {
		return nil, indexError("charAt: index %d out of range for length %d", i.Value, len(runes))
	}
	return evaluator.NewString(string(runes[i.Value])), nil
}
