package evaluator

import (
	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

func (ev *Evaluator) evalArgs(ops []ast.Operation) ([]Value, error) {
	args := make([]Value, len(ops))
	for i, op := range ops {
		v, err := ev.eval(op)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// evalCall calls a user function, falling back to a builtin of the same
// name. User functions shadow builtins.
func (ev *Evaluator) evalCall(e *ast.FunctionCall) (Value, error) {
	fn := ev.scope.LookupFunc(e.Name)
	if fn == nil {
		builtin, ok := ev.opts.Builtins[e.Name]
		if !ok {
			return nil, nameError(e.Span, "function '%s' is not declared", e.Name)
		}
		return ev.callBuiltin(builtin, e)
	}

	decl := fn.Decl
	if len(e.Args) != len(decl.Params) {
		return nil, typeError(e.Span, "function '%s' expects %d argument(s), got %d", e.Name, len(decl.Params), len(e.Args))
	}
	args, err := ev.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	if ev.callDepth >= ev.opts.MaxCallDepth {
		span := e.Span
		return nil, &RuntimeError{
			Code:    diagnostics.EStackOverflow,
			Message: "maximum call depth exceeded calling '" + e.Name + "'",
			Span:    &span,
		}
	}

	ev.callDepth++
	ev.emitWithData(TraceCallStart, e.Span, map[string]string{"fn": e.Name})
	ev.log.Debug("call", "fn", e.Name, "depth", ev.callDepth)
	defer func() {
		ev.callDepth--
		ev.emitWithData(TraceCallEnd, e.Span, map[string]string{"fn": e.Name})
	}()

	return ev.invoke(fn, args)
}

// invoke runs fn against the frames visible where it was declared, with a
// parameter frame and then a body frame on top.
func (ev *Evaluator) invoke(fn *Function, args []Value) (Value, error) {
	restore := ev.scope.Truncate(fn.Depth)
	defer restore()
	ev.scope.Push()
	defer ev.scope.Pop()

	for i, p := range fn.Decl.Params {
		t, err := ev.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		v, err := Coerce(args[i], t)
		if err != nil {
			return nil, typeError(p.Span, "argument '%s' of '%s': %s", p.Name, fn.Decl.Name, err.(*RuntimeError).Message)
		}
		if !ev.scope.Declare(NewResolved(p.Name, t, v, p.Span)) {
			return nil, nameError(p.Span, "duplicate parameter '%s' in '%s'", p.Name, fn.Decl.Name)
		}
	}

	sig, err := ev.execBlock(fn.Decl.Body)
	if err != nil {
		return nil, err
	}
	switch sig.Kind {
	case SignalReturn:
		if sig.Value == nil {
			return VoidValue{}, nil
		}
		return sig.Value, nil
	case SignalBreak, SignalContinue:
		return nil, escapedSignal(sig, "the body of '"+fn.Decl.Name+"'")
	}
	return VoidValue{}, nil
}

func (ev *Evaluator) callBuiltin(b *Builtin, e *ast.FunctionCall) (Value, error) {
	if b.Arity >= 0 && len(e.Args) != b.Arity {
		return nil, typeError(e.Span, "function '%s' expects %d argument(s), got %d", e.Name, b.Arity, len(e.Args))
	}
	args, err := ev.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	v, err := b.Execute(args)
	return v, at(err, e.Span)
}

func (ev *Evaluator) evalMethodCall(e *ast.MethodCall) (Value, error) {
	recv, err := ev.operand(e.Receiver)
	if err != nil {
		return nil, err
	}
	kind := recv.Type().Kind
	m, ok := ev.opts.Methods[MethodKey(kind, e.Method)]
	if !ok {
		return nil, typeError(e.Span, "%s has no method '%s'", kind, e.Method)
	}
	if m.Arity >= 0 && len(e.Args) != m.Arity {
		return nil, typeError(e.Span, "method '%s' expects %d argument(s), got %d", e.Method, m.Arity, len(e.Args))
	}
	args, err := ev.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	v, err := m.Execute(recv, args)
	return v, at(err, e.Span)
}
