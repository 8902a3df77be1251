package lexer

import (
	"fmt"

	"github.com/blockcraft/blockscript/pkg/ast"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokIf TokenType = iota
	TokElif
	TokElse
	TokFor
	TokWhile
	TokBreak
	TokContinue
	TokReturn
	TokFunc
	TokPrint
	TokTrue
	TokFalse
	TokAnd
	TokOr
	TokNot

	// Type keywords
	TokInt
	TokDouble
	TokString
	TokBool
	TokArray

	// Literals
	TokIntLit
	TokDoubleLit
	TokStringLit

	// Identifiers
	TokWord

	// Operators and punctuation
	TokPlus      // +
	TokMinus     // -
	TokStar      // *
	TokSlash     // /
	TokAssign    // =
	TokEqEq      // ==
	TokBangEq    // !=
	TokBang      // !
	TokLt        // <
	TokGt        // >
	TokLtEq      // <=
	TokGtEq      // >=
	TokAndAnd    // &&
	TokOrOr      // ||
	TokLParen    // (
	TokRParen    // )
	TokLBracket  // [
	TokRBracket  // ]
	TokLBrace    // {
	TokRBrace    // }
	TokComma     // ,
	TokDot       // .
	TokColon     // :
	TokSemicolon // ;

	// Special
	TokEOF
)

// Token represents a single lexer token. Value is the lexeme; for string
// literals it is the unescaped contents.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

var keywords = map[string]TokenType{
	"if":       TokIf,
	"elif":     TokElif,
	"else":     TokElse,
	"for":      TokFor,
	"while":    TokWhile,
	"break":    TokBreak,
	"continue": TokContinue,
	"return":   TokReturn,
	"func":     TokFunc,
	"print":    TokPrint,
	"true":     TokTrue,
	"false":    TokFalse,
	"and":      TokAnd,
	"or":       TokOr,
	"not":      TokNot,
	"Int":      TokInt,
	"Double":   TokDouble,
	"String":   TokString,
	"Bool":     TokBool,
	"Array":    TokArray,
}

var operators = map[string]TokenType{
	"+":  TokPlus,
	"-":  TokMinus,
	"*":  TokStar,
	"/":  TokSlash,
	"=":  TokAssign,
	"==": TokEqEq,
	"!=": TokBangEq,
	"!":  TokBang,
	"<":  TokLt,
	">":  TokGt,
	"<=": TokLtEq,
	">=": TokGtEq,
	"&&": TokAndAnd,
	"||": TokOrOr,
	"(":  TokLParen,
	")":  TokRParen,
	"[":  TokLBracket,
	"]":  TokRBracket,
	"{":  TokLBrace,
	"}":  TokRBrace,
	",":  TokComma,
	".":  TokDot,
	":":  TokColon,
	";":  TokSemicolon,
}

// operatorPrefixes holds every non-empty prefix of every operator, so the
// scanner can tell whether extending the current run may still match.
var operatorPrefixes = func() map[string]bool {
	m := make(map[string]bool)
	for op := range operators {
		for i := 1; i <= len(op); i++ {
			m[op[:i]] = true
		}
	}
	return m
}()

var tokenNames = map[TokenType]string{
	TokIntLit:    "integer",
	TokDoubleLit: "double",
	TokStringLit: "string",
	TokWord:      "identifier",
	TokEOF:       "end of input",
}

func init() {
	for text, typ := range keywords {
		tokenNames[typ] = text
	}
	for text, typ := range operators {
		tokenNames[typ] = text
	}
}

// String returns a human-readable name for the token type, as used in
// syntax error messages.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokIf && t <= TokArray
}

// IsTypeKeyword reports whether t names a built-in type.
func (t TokenType) IsTypeKeyword() bool {
	return t >= TokInt && t <= TokArray
}

// LookupKeyword returns the keyword type for word, or TokWord.
func LookupKeyword(word string) TokenType {
	if typ, ok := keywords[word]; ok {
		return typ
	}
	return TokWord
}
