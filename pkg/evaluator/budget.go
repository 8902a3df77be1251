package evaluator

import (
	"fmt"
	"time"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// Limits on the size of values a program may build.
const (
	DefaultMaxArraySize = 1 << 24 // elements in one array, inner arrays included
	MaxStringLen        = 1 << 26 // bytes in one string
)

// Budget holds the optional resource limits of a run. Zero fields are
// unlimited.
type Budget struct {
	MaxSteps int64 // statements executed plus loop iterations
	TimeMs   int64
}

// budgetTracker tracks consumption against a Budget.
type budgetTracker struct {
	steps int64
	start time.Time
}

// step counts one unit of work and fails once the budget is spent.
func (ev *Evaluator) step(span ast.Span) error {
	b := ev.opts.Budget
	if b.MaxSteps <= 0 && b.TimeMs <= 0 {
		return nil
	}
	ev.budget.steps++
	var msg string
	switch {
	case b.MaxSteps > 0 && ev.budget.steps > b.MaxSteps:
		msg = fmt.Sprintf("step budget exceeded (max %d)", b.MaxSteps)
	case b.TimeMs > 0 && time.Since(ev.budget.start) >= time.Duration(b.TimeMs)*time.Millisecond:
		msg = fmt.Sprintf("time budget exceeded (%dms)", b.TimeMs)
	default:
		return nil
	}
	ev.emitWithData(TraceBudgetExceeded, span, map[string]string{"steps": fmt.Sprint(ev.budget.steps)})
	return &RuntimeError{Code: diagnostics.EBudget, Message: msg, Span: &span}
}

// cells is the number of slots a value of type t occupies, at least one.
func cells(t Type) int64 {
	if t.Kind != KindArray || t.Elem == nil {
		return 1
	}
	if n := int64(t.Size) * cells(*t.Elem); n > 0 {
		return n
	}
	return 1
}
