package parser

import (
	"fmt"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/lexer"
)

// parseType reads a scalar type, `Array<T>(size)`, or either followed by
// bracket sizes. `Int[3][2]` is three arrays of two Ints.
func (p *parser) parseType() ast.VariableType {
	tok := p.current()
	var base ast.VariableType
	switch {
	case tok.Type == lexer.TokArray:
		arr := p.parseArrayType()
		if arr == nil {
			return nil
		}
		base = arr
	case tok.Type.IsTypeKeyword():
		p.advance()
		base = &ast.ScalarType{Span: tok.Span, Name: ast.ScalarName(tok.Value)}
	default:
		p.addError(fmt.Sprintf("expected a type (Int, Double, String, Bool or Array), got %s", describe(tok)), &tok.Span)
		return nil
	}

	var sizes []ast.Operation
	var ends []ast.Span
	for p.peek() == lexer.TokLBracket {
		open := p.advance()
		size := p.parseExpression()
		if size == nil {
			return nil
		}
		end, ok := p.expectClose(lexer.TokRBracket, open)
		if !ok {
			return nil
		}
		sizes = append(sizes, size)
		ends = append(ends, end.Span)
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		base = &ast.ArrayType{Span: p.spanFromTo(tok.Span, ends[i]), Elem: base, Size: sizes[i]}
	}
	return base
}

func (p *parser) parseArrayType() *ast.ArrayType {
	start := p.advance()
	if _, ok := p.expect(lexer.TokLt); !ok {
		return nil
	}
	elem := p.parseType()
	if elem == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokGt); !ok {
		return nil
	}
	if p.peek() != lexer.TokLParen {
		tok := p.current()
		p.addError(fmt.Sprintf("array type needs a size, as in Array<%s>(n); got %s", elem.String(), describe(tok)), &tok.Span)
		return nil
	}
	open := p.advance()
	size := p.parseExpression()
	if size == nil {
		return nil
	}
	if _, ok := p.expectClose(lexer.TokRParen, open); !ok {
		return nil
	}
	return &ast.ArrayType{Span: p.spanFrom(start.Span), Elem: elem, Size: size}
}
