package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string, opts ...Option) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.bs", opts...)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string, opts ...Option) []Token {
	t.Helper()
	tokens := mustTokenize(t, source, opts...)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func lexErr(t *testing.T, source string, opts ...Option) *LexError {
	t.Helper()
	_, err := Tokenize(source, "test.bs", opts...)
	require.Error(t, err)
	var le *LexError
	require.True(t, errors.As(err, &le), "expected *LexError, got %T", err)
	assert.Equal(t, diagnostics.ELex, le.Diag.Code)
	return le
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	require.Len(t, tokens, 1)
	assert.Equal(t, TokEOF, tokens[0].Type)
}

// ---------------------------------------------------------------------------
// Test: all keywords
// ---------------------------------------------------------------------------
func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"if", TokIf},
		{"elif", TokElif},
		{"else", TokElse},
		{"for", TokFor},
		{"while", TokWhile},
		{"break", TokBreak},
		{"continue", TokContinue},
		{"return", TokReturn},
		{"func", TokFunc},
		{"print", TokPrint},
		{"true", TokTrue},
		{"false", TokFalse},
		{"and", TokAnd},
		{"or", TokOr},
		{"not", TokNot},
		{"Int", TokInt},
		{"Double", TokDouble},
		{"String", TokString},
		{"Bool", TokBool},
		{"Array", TokArray},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.keyword)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Type)
			assert.Equal(t, tt.keyword, tokens[0].Value)
			assert.True(t, tokens[0].Type.IsKeyword())
		})
	}
}

// ---------------------------------------------------------------------------
// Test: keyword table is consulted only after the whole word is read
// ---------------------------------------------------------------------------
func TestKeywordPrefixesAreWords(t *testing.T) {
	for _, src := range []string{"iff", "printer", "Integer", "for_each", "notx", "$if", "_while"} {
		t.Run(src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, src)
			require.Len(t, tokens, 1)
			assert.Equal(t, TokWord, tokens[0].Type)
			assert.Equal(t, src, tokens[0].Value)
		})
	}
}

func TestIdentifiers(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x foo_bar $tmp _a1 camelCase")
	assert.Equal(t, []TokenType{TokWord, TokWord, TokWord, TokWord, TokWord}, types(tokens))
	assert.Equal(t, "$tmp", tokens[2].Value)
	assert.Equal(t, "_a1", tokens[3].Value)
}

// ---------------------------------------------------------------------------
// Test: numbers
// ---------------------------------------------------------------------------
func TestNumbers(t *testing.T) {
	tests := []struct {
		src  string
		typ  TokenType
		text string
	}{
		{"0", TokIntLit, "0"},
		{"42", TokIntLit, "42"},
		{"3.14", TokDoubleLit, "3.14"},
		{"2.", TokDoubleLit, "2."},
		{"10.0", TokDoubleLit, "10.0"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.src)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.typ, tokens[0].Type)
			assert.Equal(t, tt.text, tokens[0].Value)
		})
	}
}

func TestNegativeNumberIsMinusThenLiteral(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "-5")
	assert.Equal(t, []TokenType{TokMinus, TokIntLit}, types(tokens))
}

func TestSecondDecimalPointIsLexError(t *testing.T) {
	le := lexErr(t, "x = 1.2.3")
	require.NotNil(t, le.Diag.Span)
	assert.Equal(t, 1, le.Diag.Span.StartLine)
	// the offending '.' is the 8th character
	assert.Equal(t, 8, le.Diag.Span.StartCol)
	assert.Contains(t, le.Error(), "second decimal point")
}

// ---------------------------------------------------------------------------
// Test: strings
// ---------------------------------------------------------------------------
func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"double quoted", `"hello"`, "hello"},
		{"single quoted", `'hello'`, "hello"},
		{"empty", `""`, ""},
		{"other quote inside", `"it's"`, "it's"},
		{"escaped newline", `"a\nb"`, "a\nb"},
		{"escaped tab", `"a\tb"`, "a\tb"},
		{"escaped backslash", `"a\\b"`, `a\b`},
		{"escaped double quote", `"say \"hi\""`, `say "hi"`},
		{"escaped single quote", `'don\'t'`, "don't"},
		{"unknown escape kept", `"a\qb"`, `a\qb`},
		{"utf8", `"héllo ✓"`, "héllo ✓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.src)
			require.Len(t, tokens, 1)
			assert.Equal(t, TokStringLit, tokens[0].Type)
			assert.Equal(t, tt.want, tokens[0].Value)
		})
	}
}

func TestStringEndsAtNewlineOrTab(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "\"abc\nx")
	require.Equal(t, []TokenType{TokStringLit, TokWord}, types(tokens))
	assert.Equal(t, "abc", tokens[0].Value)
	assert.Equal(t, 2, tokens[1].Span.StartLine)

	tokens = mustTokenizeNoEOF(t, "'ab\tcd'")
	require.Equal(t, TokStringLit, tokens[0].Type)
	assert.Equal(t, "ab", tokens[0].Value)
}

// An unterminated string at end of input is accepted by default.
func TestUnterminatedStringPermissive(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, `print "hello`)
	require.Equal(t, []TokenType{TokPrint, TokStringLit}, types(tokens))
	assert.Equal(t, "hello", tokens[1].Value)

	tokens = mustTokenizeNoEOF(t, `"trailing\`)
	require.Len(t, tokens, 1)
	assert.Equal(t, `trailing\`, tokens[0].Value)
}

func TestUnterminatedStringStrict(t *testing.T) {
	for _, src := range []string{`print "hello`, "\"abc\nx", "'a\tb'", `"x\`} {
		t.Run(src, func(t *testing.T) {
			le := lexErr(t, src, WithStrictStrings())
			assert.Contains(t, le.Error(), "unterminated")
		})
	}
	// closed strings are unaffected
	tokens := mustTokenizeNoEOF(t, `"ok"`, WithStrictStrings())
	assert.Equal(t, "ok", tokens[0].Value)
}

// ---------------------------------------------------------------------------
// Test: operators use longest match
// ---------------------------------------------------------------------------
func TestOperators(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenType
	}{
		{"+ - * /", []TokenType{TokPlus, TokMinus, TokStar, TokSlash}},
		{"= ==", []TokenType{TokAssign, TokEqEq}},
		{"===", []TokenType{TokEqEq, TokAssign}},
		{"!=!", []TokenType{TokBangEq, TokBang}},
		{"<=<>=>", []TokenType{TokLtEq, TokLt, TokGtEq, TokGt}},
		{"&&||", []TokenType{TokAndAnd, TokOrOr}},
		{"( ) [ ] { }", []TokenType{TokLParen, TokRParen, TokLBracket, TokRBracket, TokLBrace, TokRBrace}},
		{", . : ;", []TokenType{TokComma, TokDot, TokColon, TokSemicolon}},
		{"a<=b", []TokenType{TokWord, TokLtEq, TokWord}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, types(mustTokenizeNoEOF(t, tt.src)))
		})
	}
}

// A lone '&' or '|' is a prefix of an operator but not an operator itself.
func TestIncompleteOperatorIsSkipped(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "a & b | c")
	assert.Equal(t, []TokenType{TokWord, TokWord, TokWord}, types(tokens))
}

func TestUnknownCharactersAreSkipped(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x @ ~ ^ % ` y")
	assert.Equal(t, []TokenType{TokWord, TokWord}, types(tokens))
}

func TestComments(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x # a comment with \"quotes\"\ny")
	require.Equal(t, []TokenType{TokWord, TokWord}, types(tokens))
	assert.Equal(t, "y", tokens[1].Value)
}

// ---------------------------------------------------------------------------
// Test: spans
// ---------------------------------------------------------------------------
func TestSpans(t *testing.T) {
	tokens := mustTokenize(t, "a: Int\n  b")
	require.Len(t, tokens, 5)
	assert.Equal(t, "test.bs", tokens[0].Span.File)
	assert.Equal(t, 1, tokens[0].Span.StartCol)
	assert.Equal(t, 2, tokens[1].Span.StartCol)
	assert.Equal(t, 4, tokens[2].Span.StartCol)
	assert.Equal(t, 7, tokens[2].Span.EndCol)
	assert.Equal(t, 2, tokens[3].Span.StartLine)
	assert.Equal(t, 3, tokens[3].Span.StartCol)
}

func TestProgramTokens(t *testing.T) {
	src := `a: Array<Int>(4) = [2, 4, 6, 7]
print a`
	want := []TokenType{
		TokWord, TokColon, TokArray, TokLt, TokInt, TokGt, TokLParen, TokIntLit, TokRParen,
		TokAssign, TokLBracket, TokIntLit, TokComma, TokIntLit, TokComma, TokIntLit, TokComma, TokIntLit, TokRBracket,
		TokPrint, TokWord,
	}
	assert.Equal(t, want, types(mustTokenizeNoEOF(t, src)))
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "==", TokEqEq.String())
	assert.Equal(t, "while", TokWhile.String())
	assert.Equal(t, "identifier", TokWord.String())
	assert.Equal(t, "end of input", TokEOF.String())
	assert.True(t, TokArray.IsTypeKeyword())
	assert.False(t, TokPrint.IsTypeKeyword())
}
