package parser

import (
	"fmt"
	"strconv"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/lexer"
)

// Precedence, loosest first:
//
//	assignment      = (right-assoc)
//	logical         and or && ||
//	not             not !
//	comparison      == != < > <= >=
//	additive        + -
//	multiplicative  * /
//	unary           + -
//	postfix         [i] .m(args)
//	primary         ( ) [ ] literals identifiers f(args)

func (p *parser) parseExpression() ast.Operation {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() ast.Operation {
	target := p.parseLogical()
	if target == nil || p.peek() != lexer.TokAssign {
		return target
	}
	eq := p.advance()
	if !isAssignable(target) {
		p.addError("invalid assignment target: expected a variable or array element", &eq.Span)
		return nil
	}
	value := p.parseAssignment()
	if value == nil {
		return nil
	}
	return &ast.AssignOp{
		Span:   p.spanFromTo(target.NodeSpan(), value.NodeSpan()),
		Target: target,
		Value:  value,
	}
}

// isAssignable accepts a variable or an index chain rooted at a variable.
func isAssignable(op ast.Operation) bool {
	switch n := op.(type) {
	case *ast.VariableRef:
		return true
	case *ast.ArrayElement:
		return isAssignable(n.Array)
	default:
		return false
	}
}

func (p *parser) parseLogical() ast.Operation {
	left := p.parseNot()
	if left == nil {
		return nil
	}
	for {
		var op ast.LogicalOp
		switch p.peek() {
		case lexer.TokAnd, lexer.TokAndAnd:
			op = ast.OpAnd
		case lexer.TokOr, lexer.TokOrOr:
			op = ast.OpOr
		default:
			return left
		}
		p.advance()
		right := p.parseNot()
		if right == nil {
			return nil
		}
		left = &ast.Logical{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseNot() ast.Operation {
	if p.peek() == lexer.TokNot || p.peek() == lexer.TokBang {
		tok := p.advance()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return &ast.Logical{
			Span: p.spanFromTo(tok.Span, operand.NodeSpan()),
			Op:   ast.OpNot,
			Left: operand,
		}
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]ast.CompareOp{
	lexer.TokEqEq:   ast.OpEq,
	lexer.TokBangEq: ast.OpNeq,
	lexer.TokLt:     ast.OpLt,
	lexer.TokGt:     ast.OpGt,
	lexer.TokLtEq:   ast.OpLtEq,
	lexer.TokGtEq:   ast.OpGtEq,
}

func (p *parser) parseComparison() ast.Operation {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for {
		op, ok := comparisonOps[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &ast.Comparison{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseAdditive() ast.Operation {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokPlus || p.peek() == lexer.TokMinus {
		op := ast.OpAdd
		if p.advance().Type == lexer.TokMinus {
			op = ast.OpSub
		}
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.Binary{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Operation {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokStar || p.peek() == lexer.TokSlash {
		op := ast.OpMul
		if p.advance().Type == lexer.TokSlash {
			op = ast.OpDiv
		}
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.Binary{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseUnary() ast.Operation {
	if p.peek() == lexer.TokMinus || p.peek() == lexer.TokPlus {
		tok := p.advance()
		op := ast.OpNeg
		if tok.Type == lexer.TokPlus {
			op = ast.OpPos
		}
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.Unary{
			Span:    p.spanFromTo(tok.Span, operand.NodeSpan()),
			Op:      op,
			Operand: operand,
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Operation {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokLBracket:
			open := p.advance()
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			if _, ok := p.expectClose(lexer.TokRBracket, open); !ok {
				return nil
			}
			expr = &ast.ArrayElement{
				Span:  p.spanFrom(expr.NodeSpan()),
				Array: expr,
				Index: index,
			}
		case lexer.TokDot:
			p.advance()
			name, ok := p.expect(lexer.TokWord)
			if !ok {
				return nil
			}
			open, ok := p.expect(lexer.TokLParen)
			if !ok {
				return nil
			}
			args, ok := p.parseArgs(open)
			if !ok {
				return nil
			}
			expr = &ast.MethodCall{
				Span:     p.spanFrom(expr.NodeSpan()),
				Receiver: expr,
				Method:   name.Value,
				Args:     args,
			}
		default:
			return expr
		}
	}
}

// parseArgs reads a comma-separated list after open up to and including
// the matching ')'.
func (p *parser) parseArgs(open lexer.Token) ([]ast.Operation, bool) {
	return p.parseList(open, lexer.TokRParen)
}

func (p *parser) parseList(open lexer.Token, closer lexer.TokenType) ([]ast.Operation, bool) {
	var items []ast.Operation
	if p.peek() == closer {
		p.advance()
		return items, true
	}
	for {
		if p.peek() == lexer.TokEOF {
			p.expectClose(closer, open)
			return nil, false
		}
		item := p.parseExpression()
		if item == nil {
			return nil, false
		}
		items = append(items, item)
		if p.match(lexer.TokComma) {
			continue
		}
		if _, ok := p.expectClose(closer, open); !ok {
			return nil, false
		}
		return items, true
	}
}

func (p *parser) parsePrimary() ast.Operation {
	tok := p.current()
	switch tok.Type {
	case lexer.TokIntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("integer literal '%s' out of range", tok.Value), &tok.Span)
			return nil
		}
		return &ast.IntLiteral{Span: tok.Span, Value: v}

	case lexer.TokDoubleLit:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid double literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.DoubleLiteral{Span: tok.Span, Value: v}

	case lexer.TokStringLit:
		p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}

	case lexer.TokWord:
		p.advance()
		if p.peek() == lexer.TokLParen {
			open := p.advance()
			args, ok := p.parseArgs(open)
			if !ok {
				return nil
			}
			return &ast.FunctionCall{Span: p.spanFrom(tok.Span), Name: tok.Value, Args: args}
		}
		return &ast.VariableRef{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		open := p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expectClose(lexer.TokRParen, open); !ok {
			return nil
		}
		return inner

	case lexer.TokLBracket:
		open := p.advance()
		elems, ok := p.parseList(open, lexer.TokRBracket)
		if !ok {
			return nil
		}
		return &ast.ArrayLiteral{Span: p.spanFrom(open.Span), Elements: elems}

	case lexer.TokEOF:
		p.addError("unexpected end of input: expected an expression", &tok.Span)
		return nil
	}
	p.addError(fmt.Sprintf("unexpected token %s: expected an expression", describe(tok)), &tok.Span)
	return nil
}
