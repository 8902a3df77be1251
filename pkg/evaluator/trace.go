package evaluator

import (
	"time"

	"github.com/blockcraft/blockscript/pkg/ast"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceStmtStart TraceEventType = "stmt_start"
	TraceStmtEnd   TraceEventType = "stmt_end"
	TraceCallStart TraceEventType = "call_start"
	TraceCallEnd   TraceEventType = "call_end"
	TraceLoopStart TraceEventType = "loop_start"
	TraceLoopEnd   TraceEventType = "loop_end"
	TraceResolve   TraceEventType = "resolve"
	TracePrint     TraceEventType = "print"

	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func (ev *Evaluator) emit(event TraceEventType, span ast.Span) {
	ev.emitWithData(event, span, nil)
}

func (ev *Evaluator) emitWithData(event TraceEventType, span ast.Span, data map[string]string) {
	if ev.opts.Trace == nil {
		return
	}
	ev.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     ev.opts.RunID,
		Event:     event,
		Span:      &span,
		Data:      data,
	})
}
