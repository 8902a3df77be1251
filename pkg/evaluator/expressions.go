package evaluator

import (
	"github.com/blockcraft/blockscript/pkg/ast"
)

func (ev *Evaluator) eval(op ast.Operation) (Value, error) {
	switch e := op.(type) {
	case *ast.IntLiteral:
		return IntValue{Value: e.Value}, nil

	case *ast.DoubleLiteral:
		return DoubleValue{Value: e.Value}, nil

	case *ast.StringLiteral:
		return StringValue{Value: e.Value}, nil

	case *ast.BoolLiteral:
		return BoolValue{Value: e.Value}, nil

	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(e)

	case *ast.VariableRef:
		b, err := ev.lookupBinding(e.Name, e.Span)
		if err != nil {
			return nil, err
		}
		return ev.resolve(b, e.Span)

	case *ast.Unary:
		v, err := ev.operand(e.Operand)
		if err != nil {
			return nil, err
		}
		if e.Op == ast.OpPos {
			return v, nil
		}
		res, err := Negate(v)
		return res, at(err, e.Span)

	case *ast.Binary:
		l, err := ev.operand(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.operand(e.Right)
		if err != nil {
			return nil, err
		}
		res, err := Apply(e.Op, l, r)
		return res, at(err, e.Span)

	case *ast.Comparison:
		l, err := ev.operand(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.operand(e.Right)
		if err != nil {
			return nil, err
		}
		ok, err := Compare(e.Op, l, r)
		if err != nil {
			return nil, at(err, e.Span)
		}
		return BoolValue{Value: ok}, nil

	case *ast.Logical:
		return ev.evalLogical(e)

	case *ast.ArrayElement:
		container, err := ev.eval(e.Array)
		if err != nil {
			return nil, err
		}
		arr, ok := container.(ArrayValue)
		if !ok {
			return nil, typeError(e.Array.NodeSpan(), "cannot index into %s", container.Type())
		}
		idx, err := ev.evalIndex(e.Index, len(arr.Elements))
		if err != nil {
			return nil, err
		}
		return arr.Elements[idx], nil

	case *ast.FunctionCall:
		return ev.evalCall(e)

	case *ast.MethodCall:
		return ev.evalMethodCall(e)

	case *ast.AssignOp:
		switch target := e.Target.(type) {
		case *ast.VariableRef:
			return ev.assignVariable(target.Name, e.Value, e.Span)
		case *ast.ArrayElement:
			return ev.assignElement(target, e.Value, e.Span)
		}
		return nil, typeError(e.Span, "invalid assignment target %s", e.Target.Kind())
	}
	return nil, internalError("unknown operation type: %T", op)
}

// evalArrayLiteral infers the element type from the elements: all must
// share a kind, except that Int and Double mix to Double.
func (ev *Evaluator) evalArrayLiteral(e *ast.ArrayLiteral) (Value, error) {
	elems := make([]Value, len(e.Elements))
	elem := VoidType
	for i, op := range e.Elements {
		v, err := ev.eval(op)
		if err != nil {
			return nil, err
		}
		elems[i] = v
		t := v.Type()
		switch {
		case i == 0:
			elem = t
		case assignable(t, elem):
		case assignable(elem, t):
			elem = t
		default:
			return nil, typeError(op.NodeSpan(), "array elements must share a type: element %d is %s, expected %s", i, t, elem)
		}
	}
	if elem.Kind == KindDouble {
		for i, v := range elems {
			if n, ok := v.(IntValue); ok {
				elems[i] = DoubleValue{Value: float64(n.Value)}
			}
		}
	}
	return ArrayValue{Elem: elem, Elements: elems}, nil
}

func (ev *Evaluator) evalLogical(e *ast.Logical) (Value, error) {
	left, err := ev.boolOperand(e.Left, e.Op)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpNot:
		return BoolValue{Value: !left}, nil
	case ast.OpAnd:
		if !left {
			return BoolValue{Value: false}, nil
		}
	case ast.OpOr:
		if left {
			return BoolValue{Value: true}, nil
		}
	}
	right, err := ev.boolOperand(e.Right, e.Op)
	if err != nil {
		return nil, err
	}
	return BoolValue{Value: right}, nil
}

func (ev *Evaluator) boolOperand(op ast.Operation, logical ast.LogicalOp) (bool, error) {
	v, err := ev.operand(op)
	if err != nil {
		return false, err
	}
	b, ok := Truthy(v)
	if !ok {
		return false, typeError(op.NodeSpan(), "operand of '%s' must be a Bool, got %s", logical, v.Type())
	}
	return b, nil
}

// operand evaluates op for use by an operator, method or condition.
// Uninitialized values may be printed or assigned over but not computed with.
func (ev *Evaluator) operand(op ast.Operation) (Value, error) {
	v, err := ev.eval(op)
	if err != nil {
		return nil, err
	}
	u, ok := v.(UninitializedValue)
	if !ok {
		return v, nil
	}
	switch e := op.(type) {
	case *ast.VariableRef:
		return nil, typeError(e.Span, "'%s' is used before it has a value", e.Name)
	case *ast.ArrayElement:
		return nil, typeError(e.Span, "array element of type %s is used before it has a value", u.Of)
	}
	return nil, typeError(op.NodeSpan(), "value of type %s is used before it has a value", u.Of)
}

func (ev *Evaluator) lookupBinding(name string, span ast.Span) (*Binding, error) {
	b, selfRef := ev.scope.Lookup(name)
	if b != nil {
		return b, nil
	}
	if selfRef {
		return nil, nameError(span, "variable '%s' is used in its own initializer", name)
	}
	return nil, nameError(span, "variable '%s' is not declared", name)
}

// resolve forces a pending binding. The initializer runs with the scope cut
// back to the frame that declared the variable.
func (ev *Evaluator) resolve(b *Binding, span ast.Span) (Value, error) {
	if b.state == stateResolved {
		return b.value, nil
	}
	ev.emitWithData(TraceResolve, span, map[string]string{"name": b.Name})
	ev.log.Debug("resolve", "name", b.Name, "depth", b.Depth)

	b.state = stateResolving
	restore := ev.scope.Truncate(b.Depth)
	v, err := ev.eval(b.init)
	restore()
	if err != nil {
		b.state = statePending
		return nil, err
	}
	c, err := Coerce(v, b.Type)
	if err != nil {
		b.state = statePending
		return nil, typeError(b.init.NodeSpan(), "cannot initialize '%s': %s", b.Name, err.(*RuntimeError).Message)
	}
	b.set(c)
	return c, nil
}
