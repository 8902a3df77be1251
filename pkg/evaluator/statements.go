package evaluator

import (
	"fmt"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

func (ev *Evaluator) exec(stmt ast.Statement) (Signal, error) {
	span := stmt.NodeSpan()
	if err := ev.step(span); err != nil {
		return normal, err
	}
	ev.emit(TraceStmtStart, span)
	sig, err := ev.execStatement(stmt)
	ev.emit(TraceStmtEnd, span)
	return sig, err
}

func (ev *Evaluator) execStatement(stmt ast.Statement) (Signal, error) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		return normal, ev.execDeclaration(s)

	case *ast.Assignment:
		return normal, ev.execAssignment(s)

	case *ast.ArrayElementAssignment:
		return normal, ev.execArrayElementAssignment(s)

	case *ast.Block:
		return ev.execBlock(s)

	case *ast.IfElse:
		return ev.execIf(s)

	case *ast.ForLoop:
		return ev.execFor(s)

	case *ast.WhileLoop:
		return ev.execWhile(s)

	case *ast.Break:
		return Signal{Kind: SignalBreak, Span: s.Span}, nil

	case *ast.Continue:
		return Signal{Kind: SignalContinue, Span: s.Span}, nil

	case *ast.Return:
		sig := Signal{Kind: SignalReturn, Span: s.Span}
		if s.Value != nil {
			v, err := ev.eval(s.Value)
			if err != nil {
				return normal, err
			}
			sig.Value = v
		}
		return sig, nil

	case *ast.Print:
		v, err := ev.eval(s.Value)
		if err != nil {
			return normal, err
		}
		ev.print(v, s.Span)
		return normal, nil

	case *ast.FunctionDeclaration:
		if !ev.scope.DeclareFunc(s) {
			return normal, nameError(s.Span, "function '%s' is already declared in this scope", s.Name)
		}
		return normal, nil

	case *ast.ExpressionStatement:
		_, err := ev.eval(s.Expr)
		return normal, err
	}
	return normal, internalError("unknown statement type: %T", stmt)
}

// execDeclaration resolves the declared type now and defers the
// initializer until the variable is first read.
func (ev *Evaluator) execDeclaration(d *ast.Declaration) error {
	t, err := ev.resolveType(d.Type)
	if err != nil {
		return err
	}
	var b *Binding
	if d.Init == nil {
		b = NewResolved(d.Name, t, Zero(t), d.Span)
	} else {
		b = NewPending(d.Name, t, d.Init, d.Span)
	}
	if !ev.scope.Declare(b) {
		return nameError(d.Span, "variable '%s' is already declared in this scope", d.Name)
	}
	ev.log.Debug("declare", "name", d.Name, "type", t, "lazy", d.Init != nil)
	return nil
}

// resolveType evaluates array size expressions in the current scope.
func (ev *Evaluator) resolveType(vt ast.VariableType) (Type, error) {
	switch t := vt.(type) {
	case *ast.ScalarType:
		switch t.Name {
		case ast.TypeInt:
			return IntType, nil
		case ast.TypeDouble:
			return DoubleType, nil
		case ast.TypeString:
			return StringType, nil
		case ast.TypeBool:
			return BoolType, nil
		}
		return Type{}, typeError(t.Span, "unknown type '%s'", t.Name)
	case *ast.ArrayType:
		elem, err := ev.resolveType(t.Elem)
		if err != nil {
			return Type{}, err
		}
		sizeVal, err := ev.operand(t.Size)
		if err != nil {
			return Type{}, err
		}
		size, ok := sizeVal.(IntValue)
		if !ok {
			return Type{}, typeError(t.Size.NodeSpan(), "array size must be an Int, got %s", sizeVal.Type())
		}
		if size.Value < 0 {
			return Type{}, typeError(t.Size.NodeSpan(), "array size must not be negative, got %d", size.Value)
		}
		limit := ev.opts.MaxArraySize
		if size.Value > limit/cells(elem) {
			return Type{}, typeError(t.Size.NodeSpan(), "array of %d elements of %s exceeds the limit of %d elements", size.Value, elem, limit)
		}
		return ArrayOf(elem, int(size.Value)), nil
	}
	return Type{}, internalError("unknown type node: %T", vt)
}

func (ev *Evaluator) execAssignment(s *ast.Assignment) error {
	_, err := ev.assignVariable(s.Name, s.Value, s.Span)
	return err
}

func (ev *Evaluator) assignVariable(name string, valueOp ast.Operation, span ast.Span) (Value, error) {
	b, err := ev.lookupBinding(name, span)
	if err != nil {
		return nil, err
	}
	v, err := ev.eval(valueOp)
	if err != nil {
		return nil, err
	}
	c, err := Coerce(v, b.Type)
	if err != nil {
		return nil, typeError(valueOp.NodeSpan(), "cannot assign to '%s': %s", name, err.(*RuntimeError).Message)
	}
	b.set(c)
	return c, nil
}

func (ev *Evaluator) execArrayElementAssignment(s *ast.ArrayElementAssignment) error {
	target := &ast.ArrayElement{
		Span:  s.Span,
		Array: &ast.VariableRef{Span: s.Span, Name: s.Name},
		Index: s.Index,
	}
	_, err := ev.assignElement(target, s.Value, s.Span)
	return err
}

// assignElement stores into an index chain rooted at a variable, such as
// m[i][j]. Inner arrays are updated in place.
func (ev *Evaluator) assignElement(target *ast.ArrayElement, valueOp ast.Operation, span ast.Span) (Value, error) {
	container, err := ev.eval(target.Array)
	if err != nil {
		return nil, err
	}
	arr, ok := container.(ArrayValue)
	if !ok {
		return nil, typeError(target.Array.NodeSpan(), "cannot index into %s", container.Type())
	}
	idx, err := ev.evalIndex(target.Index, len(arr.Elements))
	if err != nil {
		return nil, err
	}
	v, err := ev.eval(valueOp)
	if err != nil {
		return nil, err
	}
	c, err := Coerce(v, arr.Elem)
	if err != nil {
		return nil, typeError(valueOp.NodeSpan(), "cannot store into element %d: %s", idx, err.(*RuntimeError).Message)
	}
	arr.Elements[idx] = c
	return c, nil
}

func (ev *Evaluator) evalIndex(op ast.Operation, length int) (int, error) {
	v, err := ev.operand(op)
	if err != nil {
		return 0, err
	}
	i, ok := v.(IntValue)
	if !ok {
		return 0, typeError(op.NodeSpan(), "array index must be an Int, got %s", v.Type())
	}
	if i.Value < 0 || i.Value >= int64(length) {
		span := op.NodeSpan()
		return 0, &RuntimeError{
			Code:    diagnostics.EIndex,
			Message: fmt.Sprintf("index %d out of range for array of size %d", i.Value, length),
			Span:    &span,
		}
	}
	return int(i.Value), nil
}

// execBlock runs stmts in a new frame. The first non-normal signal stops
// the block and is returned unchanged.
func (ev *Evaluator) execBlock(b *ast.Block) (Signal, error) {
	ev.scope.Push()
	defer ev.scope.Pop()
	for _, stmt := range b.Statements {
		sig, err := ev.exec(stmt)
		if err != nil || sig.Kind != SignalNormal {
			return sig, err
		}
	}
	return normal, nil
}

func (ev *Evaluator) condition(op ast.Operation, construct string) (bool, error) {
	v, err := ev.operand(op)
	if err != nil {
		return false, err
	}
	b, ok := Truthy(v)
	if !ok {
		return false, typeError(op.NodeSpan(), "%s condition must be a Bool, got %s", construct, v.Type())
	}
	return b, nil
}

func (ev *Evaluator) execIf(s *ast.IfElse) (Signal, error) {
	for _, br := range s.Branches {
		ok, err := ev.condition(br.Cond, "if")
		if err != nil {
			return normal, err
		}
		if ok {
			return ev.execBlock(br.Body)
		}
	}
	if s.Else != nil {
		return ev.execBlock(s.Else)
	}
	return normal, nil
}

// loopBody runs one iteration and reports whether the loop should stop.
// Break and Continue are consumed here; Return is passed up.
func (ev *Evaluator) loopBody(body *ast.Block) (stop bool, sig Signal, err error) {
	sig, err = ev.execBlock(body)
	if err != nil {
		return true, normal, err
	}
	switch sig.Kind {
	case SignalBreak:
		return true, normal, nil
	case SignalReturn:
		return true, sig, nil
	}
	return false, normal, nil
}

func (ev *Evaluator) execWhile(s *ast.WhileLoop) (Signal, error) {
	ev.emit(TraceLoopStart, s.Span)
	defer ev.emit(TraceLoopEnd, s.Span)
	for {
		if err := ev.step(s.Span); err != nil {
			return normal, err
		}
		ok, err := ev.condition(s.Cond, "while")
		if err != nil || !ok {
			return normal, err
		}
		stop, sig, err := ev.loopBody(s.Body)
		if stop {
			return sig, err
		}
	}
}

// execFor keeps the init clause's declaration in a frame that lives for
// the whole loop.
func (ev *Evaluator) execFor(s *ast.ForLoop) (Signal, error) {
	ev.emit(TraceLoopStart, s.Span)
	defer ev.emit(TraceLoopEnd, s.Span)
	ev.scope.Push()
	defer ev.scope.Pop()

	if s.Init != nil {
		if sig, err := ev.exec(s.Init); err != nil || sig.Kind != SignalNormal {
			return sig, err
		}
	}
	for {
		if err := ev.step(s.Span); err != nil {
			return normal, err
		}
		if s.Cond != nil {
			ok, err := ev.condition(s.Cond, "for")
			if err != nil || !ok {
				return normal, err
			}
		}
		stop, sig, err := ev.loopBody(s.Body)
		if stop {
			return sig, err
		}
		if s.Step != nil {
			if sig, err := ev.exec(s.Step); err != nil || sig.Kind != SignalNormal {
				return sig, err
			}
		}
	}
}
