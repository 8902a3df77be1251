package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// Every successful result must end in a single EOF token.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`if elif else for while break continue return func print`,
		`true false and or not Int Double String Bool Array`,
		// Literals
		`42 3.14 2. 0`,
		`"hello" 'single' "with\nescape" "quote\""`,
		// Operators
		`+ - * / = == != ! < > <= >= && ||`,
		`( ) [ ] { } , . : ;`,
		`===!==&&&|||`,
		// Declarations
		`a: Array<Int>(4) = [2, 4, 6, 7]`,
		`m: Int[3][2]`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`'`,
		`1.2.3`,
		`@#$^&`,
		`\x00`,
		"\"a\\",
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		for _, opts := range [][]Option{nil, {WithStrictStrings()}} {
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("Tokenize panicked on input %q: %v", input, r)
					}
				}()
				tokens, err := Tokenize(input, "fuzz.bs", opts...)
				if err != nil {
					return
				}
				if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
					t.Fatalf("token stream for %q does not end in EOF", input)
				}
			}()
		}
	})
}
