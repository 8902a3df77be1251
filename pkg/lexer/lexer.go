// Package lexer implements the BlockScript tokenizer.
package lexer

import (
	"strings"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// Option configures Tokenize.
type Option func(*scanner)

// WithStrictStrings makes a string literal that is not closed by its own
// quote character a LexError. By default a newline, tab or end of input
// silently terminates it.
func WithStrictStrings() Option {
	return func(s *scanner) { s.strictStrings = true }
}

type scanner struct {
	source        string
	filename      string
	pos           int
	line          int
	col           int
	strictStrings bool
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipComment() {
	for !s.atEnd() && s.peek() != '\n' {
		s.advance()
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// scanNumber consumes digits and at most one decimal point.
func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	sawDot := false

	for !s.atEnd() {
		ch := s.peek()
		if isDigit(ch) {
			s.advance()
			continue
		}
		if ch == '.' {
			if sawDot {
				return Token{}, s.lexError(s.line, s.col, "malformed number: second decimal point in '"+s.source[startPos:s.pos+1]+"'")
			}
			sawDot = true
			s.advance()
			continue
		}
		break
	}

	tokType := TokIntLit
	if sawDot {
		tokType = TokDoubleLit
	}
	return Token{
		Type:  tokType,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanWord() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	return Token{
		Type:  LookupKeyword(text),
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

// scanString reads a literal opened by ' or ". A newline or tab ends the
// literal without being consumed.
func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	quote := s.advance()

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == quote:
			s.advance()
			return Token{Type: TokStringLit, Value: buf.String(), Span: s.span(startLine, startCol)}, nil
		case ch == '\n' || ch == '\t':
			return s.unterminated(startLine, startCol, buf.String())
		case ch == '\\':
			s.advance()
			if s.atEnd() {
				buf.WriteByte('\\')
				return s.unterminated(startLine, startCol, buf.String())
			}
			esc := s.advance()
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '\\', '"', '\'':
				buf.WriteByte(esc)
			default:
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			}
		default:
			buf.WriteByte(s.advance())
		}
	}
	return s.unterminated(startLine, startCol, buf.String())
}

func (s *scanner) unterminated(startLine, startCol int, value string) (Token, error) {
	if s.strictStrings {
		return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
	}
	return Token{Type: TokStringLit, Value: value, Span: s.span(startLine, startCol)}, nil
}

// scanOperator extends the run while it is still a prefix of some operator,
// then backs off to the longest complete operator. It reports false when no
// operator starts here.
func (s *scanner) scanOperator() (Token, bool) {
	startLine, startCol := s.line, s.col
	end := s.pos
	for end < len(s.source) && operatorPrefixes[s.source[s.pos:end+1]] {
		end++
	}
	for ; end > s.pos; end-- {
		text := s.source[s.pos:end]
		if typ, ok := operators[text]; ok {
			for range text {
				s.advance()
			}
			return Token{Type: typ, Value: text, Span: s.span(startLine, startCol)}, true
		}
	}
	return Token{}, false
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == '#':
			s.skipComment()
		case isDigit(ch):
			return s.scanNumber()
		case isAlpha(ch):
			return s.scanWord(), nil
		case ch == '"' || ch == '\'':
			return s.scanString()
		default:
			if tok, ok := s.scanOperator(); ok {
				return tok, nil
			}
			// whitespace and unknown symbols
			s.advance()
		}
	}
	return Token{Type: TokEOF, Value: "", Span: s.span(s.line, s.col)}, nil
}

// Tokenize breaks source code into a slice of tokens ending in TokEOF.
func Tokenize(source, filename string, opts ...Option) ([]Token, error) {
	s := newScanner(source, filename)
	for _, opt := range opts {
		opt(s)
	}
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
