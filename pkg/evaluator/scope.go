package evaluator

import (
	"github.com/blockcraft/blockscript/pkg/ast"
)

type bindingState int

const (
	statePending bindingState = iota
	stateResolving
	stateResolved
)

// Binding is a declared variable. A binding starts Pending with its
// initializer, or Resolved with a value; the first read of a Pending binding
// evaluates the initializer once and caches the result.
type Binding struct {
	Name  string
	Type  Type
	Depth int // index of the declaring frame
	Span  ast.Span

	state bindingState
	init  ast.Operation
	value Value
}

// NewPending creates a binding whose value is computed on first read.
func NewPending(name string, t Type, init ast.Operation, span ast.Span) *Binding {
	return &Binding{Name: name, Type: t, Span: span, state: statePending, init: init}
}

// NewResolved creates a binding that already holds v.
func NewResolved(name string, t Type, v Value, span ast.Span) *Binding {
	return &Binding{Name: name, Type: t, Span: span, state: stateResolved, value: v}
}

// Resolved reports whether the binding has a concrete value.
func (b *Binding) Resolved() bool { return b.state == stateResolved }

// Value returns the cached value, or nil while the binding is pending.
func (b *Binding) Value() Value {
	if b.state != stateResolved {
		return nil
	}
	return b.value
}

func (b *Binding) set(v Value) {
	b.value = v
	b.init = nil
	b.state = stateResolved
}

// Function is a declared user function and the frame it was declared in.
type Function struct {
	Decl  *ast.FunctionDeclaration
	Depth int
}

type frame struct {
	vars  map[string]*Binding
	order []string
	funcs map[string]*Function
}

func newFrame() *frame {
	return &frame{
		vars:  make(map[string]*Binding),
		funcs: make(map[string]*Function),
	}
}

// Scope is the stack of frames of one execution context. Index 0 is the
// root frame; lookups walk from the innermost frame outwards.
type Scope struct {
	frames []*frame
}

// NewScope creates a scope holding only the root frame.
func NewScope() *Scope {
	return &Scope{frames: []*frame{newFrame()}}
}

// Depth returns the index of the innermost frame.
func (s *Scope) Depth() int {
	return len(s.frames) - 1
}

// Push enters a new innermost frame.
func (s *Scope) Push() {
	s.frames = append(s.frames, newFrame())
}

// Pop leaves the innermost frame. The root frame is never popped.
func (s *Scope) Pop() {
	if len(s.frames) > 1 {
		s.frames[len(s.frames)-1] = nil
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Truncate hides every frame above depth until the returned restore func
// runs. Frames pushed meanwhile never overwrite the hidden ones.
func (s *Scope) Truncate(depth int) (restore func()) {
	saved := s.frames
	s.frames = s.frames[: depth+1 : depth+1]
	return func() { s.frames = saved }
}

// Declare adds b to the innermost frame. It reports false if the name is
// already declared there.
func (s *Scope) Declare(b *Binding) bool {
	f := s.frames[len(s.frames)-1]
	if _, exists := f.vars[b.Name]; exists {
		return false
	}
	b.Depth = len(s.frames) - 1
	f.vars[b.Name] = b
	f.order = append(f.order, b.Name)
	return true
}

// Lookup finds the innermost binding for name. A binding whose initializer
// is currently running is skipped so that `x: Int = x + 1` in an inner
// block reads the outer x; selfRef reports that such a binding was seen.
func (s *Scope) Lookup(name string) (b *Binding, selfRef bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if found, ok := s.frames[i].vars[name]; ok {
			if found.state == stateResolving {
				selfRef = true
				continue
			}
			return found, selfRef
		}
	}
	return nil, selfRef
}

// DeclareFunc adds fn to the innermost frame's function table. It reports
// false if a function of that name is already declared there.
func (s *Scope) DeclareFunc(decl *ast.FunctionDeclaration) bool {
	f := s.frames[len(s.frames)-1]
	if _, exists := f.funcs[decl.Name]; exists {
		return false
	}
	f.funcs[decl.Name] = &Function{Decl: decl, Depth: len(s.frames) - 1}
	return true
}

// LookupFunc finds the innermost function named name.
func (s *Scope) LookupFunc(name string) *Function {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if fn, ok := s.frames[i].funcs[name]; ok {
			return fn
		}
	}
	return nil
}

// Globals returns the root frame's bindings in declaration order.
func (s *Scope) Globals() []*Binding {
	root := s.frames[0]
	out := make([]*Binding, 0, len(root.order))
	for _, name := range root.order {
		out = append(out, root.vars[name])
	}
	return out
}
