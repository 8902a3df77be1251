package evaluator

import (
	"github.com/blockcraft/blockscript/pkg/ast"
)

// SignalKind tells how a statement finished.
type SignalKind int

const (
	SignalNormal SignalKind = iota
	SignalBreak
	SignalContinue
	SignalReturn
)

func (k SignalKind) String() string {
	switch k {
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	case SignalReturn:
		return "return"
	}
	return "normal"
}

// Signal is the completion of a statement. Break, Continue and Return
// propagate outwards through blocks until a loop or call consumes them.
type Signal struct {
	Kind  SignalKind
	Value Value // set for SignalReturn; nil for a bare return
	Span  ast.Span
}

var normal = Signal{Kind: SignalNormal}

// RuntimeError represents a failure during evaluation.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// at attaches span to err if it is a RuntimeError without one.
func at(err error, span ast.Span) error {
	if re, ok := err.(*RuntimeError); ok && re.Span == nil {
		s := span
		re.Span = &s
	}
	return err
}
