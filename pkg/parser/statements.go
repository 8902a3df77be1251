package parser

import (
	"fmt"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/lexer"
)

func (p *parser) parseStatement() ast.Statement {
	switch p.peek() {
	case lexer.TokIf:
		s := p.parseIf()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokFor:
		s := p.parseFor()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokWhile:
		s := p.parseWhile()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokBreak:
		tok := p.advance()
		return &ast.Break{Span: tok.Span}
	case lexer.TokContinue:
		tok := p.advance()
		return &ast.Continue{Span: tok.Span}
	case lexer.TokReturn:
		s := p.parseReturn()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokFunc:
		s := p.parseFunctionDeclaration()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokPrint:
		tok := p.advance()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		return &ast.Print{Span: p.spanFromTo(tok.Span, value.NodeSpan()), Value: value}
	case lexer.TokLBrace:
		s := p.parseBlock()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokWord:
		if p.peekAt(1) == lexer.TokColon {
			s := p.parseDeclaration()
			if s == nil {
				return nil
			}
			return s
		}
	}
	return p.parseSimple()
}

// parseSimple parses an expression statement and lifts top-level
// assignments into Assignment or ArrayElementAssignment.
func (p *parser) parseSimple() ast.Statement {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if assign, ok := expr.(*ast.AssignOp); ok {
		switch target := assign.Target.(type) {
		case *ast.VariableRef:
			return &ast.Assignment{Span: assign.Span, Name: target.Name, Value: assign.Value}
		case *ast.ArrayElement:
			if ref, ok := target.Array.(*ast.VariableRef); ok {
				return &ast.ArrayElementAssignment{
					Span:  assign.Span,
					Name:  ref.Name,
					Index: target.Index,
					Value: assign.Value,
				}
			}
		}
	}
	return &ast.ExpressionStatement{Span: expr.NodeSpan(), Expr: expr}
}

func (p *parser) parseDeclaration() *ast.Declaration {
	name := p.advance()
	if _, ok := p.expect(lexer.TokColon); !ok {
		return nil
	}
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	var init ast.Operation
	if p.match(lexer.TokAssign) {
		if init = p.parseExpression(); init == nil {
			return nil
		}
	}
	return &ast.Declaration{
		Span: p.spanFrom(name.Span),
		Name: name.Value,
		Type: typ,
		Init: init,
	}
}

func (p *parser) parseBlock() *ast.Block {
	open, ok := p.expect(lexer.TokLBrace)
	if !ok {
		return nil
	}
	var stmts []ast.Statement
	for p.peek() != lexer.TokRBrace {
		if p.peek() == lexer.TokEOF {
			p.expectClose(lexer.TokRBrace, open)
			return nil
		}
		if p.match(lexer.TokSemicolon) {
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return &ast.Block{Span: p.spanFrom(open.Span), Statements: stmts}
}

func (p *parser) parseIf() *ast.IfElse {
	start := p.advance()
	first, ok := p.parseBranch(start)
	if !ok {
		return nil
	}
	branches := []ast.CondBranch{first}
	var elseBlock *ast.Block
	for {
		if p.peek() == lexer.TokElif {
			br, ok := p.parseBranch(p.advance())
			if !ok {
				return nil
			}
			branches = append(branches, br)
			continue
		}
		if p.peek() == lexer.TokElse {
			p.advance()
			if p.peek() == lexer.TokIf {
				br, ok := p.parseBranch(p.advance())
				if !ok {
					return nil
				}
				branches = append(branches, br)
				continue
			}
			if elseBlock = p.parseBlock(); elseBlock == nil {
				return nil
			}
		}
		break
	}
	return &ast.IfElse{Span: p.spanFrom(start.Span), Branches: branches, Else: elseBlock}
}

func (p *parser) parseBranch(kw lexer.Token) (ast.CondBranch, bool) {
	cond := p.parseExpression()
	if cond == nil {
		return ast.CondBranch{}, false
	}
	body := p.parseBlock()
	if body == nil {
		return ast.CondBranch{}, false
	}
	return ast.CondBranch{Span: p.spanFrom(kw.Span), Cond: cond, Body: body}, true
}

// parseFor reads `for [(] init; cond; step [)] { body }`. Each clause may
// be empty.
func (p *parser) parseFor() *ast.ForLoop {
	start := p.advance()
	var open lexer.Token
	paren := false
	if p.peek() == lexer.TokLParen {
		open = p.advance()
		paren = true
	}

	loop := &ast.ForLoop{}
	if p.peek() != lexer.TokSemicolon {
		if p.peek() == lexer.TokWord && p.peekAt(1) == lexer.TokColon {
			decl := p.parseDeclaration()
			if decl == nil {
				return nil
			}
			loop.Init = decl
		} else if loop.Init = p.parseSimple(); loop.Init == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokSemicolon); !ok {
		return nil
	}

	if p.peek() != lexer.TokSemicolon {
		if loop.Cond = p.parseExpression(); loop.Cond == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokSemicolon); !ok {
		return nil
	}

	closer := lexer.TokLBrace
	if paren {
		closer = lexer.TokRParen
	}
	if p.peek() != closer {
		if loop.Step = p.parseSimple(); loop.Step == nil {
			return nil
		}
	}
	if paren {
		if _, ok := p.expectClose(lexer.TokRParen, open); !ok {
			return nil
		}
	}

	if loop.Body = p.parseBlock(); loop.Body == nil {
		return nil
	}
	loop.Span = p.spanFrom(start.Span)
	return loop
}

func (p *parser) parseWhile() *ast.WhileLoop {
	start := p.advance()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileLoop{Span: p.spanFrom(start.Span), Cond: cond, Body: body}
}

// parseReturn takes a value only when one starts on the same line as the
// keyword.
func (p *parser) parseReturn() *ast.Return {
	tok := p.advance()
	next := p.current()
	if next.Span.StartLine != tok.Span.StartLine || !startsExpression(next.Type) {
		return &ast.Return{Span: tok.Span}
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ast.Return{Span: p.spanFromTo(tok.Span, value.NodeSpan()), Value: value}
}

func startsExpression(t lexer.TokenType) bool {
	switch t {
	case lexer.TokIntLit, lexer.TokDoubleLit, lexer.TokStringLit, lexer.TokTrue, lexer.TokFalse,
		lexer.TokWord, lexer.TokLParen, lexer.TokLBracket, lexer.TokMinus, lexer.TokPlus,
		lexer.TokNot, lexer.TokBang:
		return true
	}
	return false
}

func (p *parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	start := p.advance()
	name, ok := p.expect(lexer.TokWord)
	if !ok {
		return nil
	}
	open, ok := p.expect(lexer.TokLParen)
	if !ok {
		return nil
	}

	var params []ast.Param
	if !p.match(lexer.TokRParen) {
		for {
			param, ok := p.parseParam(open)
			if !ok {
				return nil
			}
			params = append(params, param)
			if p.match(lexer.TokComma) {
				continue
			}
			if _, ok := p.expectClose(lexer.TokRParen, open); !ok {
				return nil
			}
			break
		}
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.FunctionDeclaration{
		Span:   p.spanFrom(start.Span),
		Name:   name.Value,
		Params: params,
		Body:   body,
	}
}

// parseParam reads `name: Type` inside the parameter list opened by open.
func (p *parser) parseParam(open lexer.Token) (ast.Param, bool) {
	tok := p.current()
	switch {
	case tok.Type == lexer.TokEOF:
		p.expectClose(lexer.TokRParen, open)
		return ast.Param{}, false
	case tok.Type.IsKeyword():
		p.addError(fmt.Sprintf("malformed parameter list: '%s' is a reserved word", tok.Value), &tok.Span)
		return ast.Param{}, false
	case tok.Type != lexer.TokWord:
		p.addError(fmt.Sprintf("malformed parameter list: expected parameter name, got %s", describe(tok)), &tok.Span)
		return ast.Param{}, false
	}
	p.advance()
	if p.peek() != lexer.TokColon {
		bad := p.current()
		p.addError(fmt.Sprintf("malformed parameter list: expected ':' after '%s', got %s", tok.Value, describe(bad)), &bad.Span)
		return ast.Param{}, false
	}
	p.advance()
	typ := p.parseType()
	if typ == nil {
		return ast.Param{}, false
	}
	return ast.Param{Span: p.spanFrom(tok.Span), Name: tok.Value, Type: typ}, true
}
