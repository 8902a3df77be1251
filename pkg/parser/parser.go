// Package parser implements the BlockScript recursive-descent parser.
//
// The grammar has two layers: expressions (expressions.go) and statements
// plus type annotations (statements.go, types.go). Parsing stops at the
// first lex or syntax error and no partial tree is returned.
package parser

import (
	"fmt"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into a program.
func Parse(source, filename string, opts ...lexer.Option) (*ast.Program, []diagnostics.Diagnostic) {
	p, diags := newParser(source, filename, opts)
	if diags != nil {
		return nil, diags
	}
	prog := p.parseProgram(filename)
	if prog == nil || len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

// ParseExpression parses source as a single expression. Trailing tokens
// after a complete expression are a syntax error.
func ParseExpression(source, filename string, opts ...lexer.Option) (ast.Operation, []diagnostics.Diagnostic) {
	p, diags := newParser(source, filename, opts)
	if diags != nil {
		return nil, diags
	}
	op := p.parseExpression()
	if op == nil {
		return nil, p.diags
	}
	if tok := p.current(); tok.Type != lexer.TokEOF {
		p.addError(fmt.Sprintf("unexpected token '%s' after expression", tok.Value), &tok.Span)
		return nil, p.diags
	}
	return op, nil
}

func newParser(source, filename string, opts []lexer.Option) (*parser, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename, opts...)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}
	return &parser{tokens: tokens, pos: 0}, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// previous returns the last consumed token.
func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) match(types ...lexer.TokenType) bool {
	for _, typ := range types {
		if p.peek() == typ {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		if typ == lexer.TokWord && tok.Type.IsKeyword() {
			p.addError(fmt.Sprintf("expected identifier, got reserved word '%s'", tok.Value), &tok.Span)
		} else {
			p.addError(fmt.Sprintf("expected %s, got %s", tokenName(typ), describe(tok)), &tok.Span)
		}
		return tok, false
	}
	return p.advance(), true
}

// expectClose consumes the token closing open. Running out of input is
// reported as an unclosed bracket.
func (p *parser) expectClose(typ lexer.TokenType, open lexer.Token) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type == lexer.TokEOF {
		p.addError(fmt.Sprintf("unclosed '%s' opened at %d:%d", open.Value, open.Span.StartLine, open.Span.StartCol), &open.Span)
		return tok, false
	}
	return p.expect(typ)
}

// addError records a syntax error. The caller returns nil and every
// caller above it stops, so only the first error is reported.
func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.ESyntax, msg, span, ""))
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return start.To(end)
}

// spanFrom covers start through the last consumed token.
func (p *parser) spanFrom(start ast.Span) ast.Span {
	return start.To(p.previous().Span)
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokWord:
		return "identifier"
	case lexer.TokStringLit:
		return "string"
	case lexer.TokIntLit:
		return "integer"
	case lexer.TokDoubleLit:
		return "double"
	case lexer.TokEOF:
		return "end of input"
	default:
		return "'" + t.String() + "'"
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	if tok.Type == lexer.TokStringLit {
		return fmt.Sprintf("string \"%s\"", tok.Value)
	}
	return "'" + tok.Value + "'"
}

func (p *parser) parseProgram(filename string) *ast.Program {
	start := p.current().Span
	var stmts []ast.Statement
	for p.peek() != lexer.TokEOF {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	span := ast.Span{File: filename, StartLine: 1, StartCol: 1}
	if len(stmts) > 0 {
		span = p.spanFromTo(start, p.previous().Span)
	}
	return &ast.Program{Span: span, Statements: stmts}
}
