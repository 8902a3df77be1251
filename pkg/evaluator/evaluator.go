package evaluator

import (
	"fmt"
	"io"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
)

// DefaultMaxCallDepth bounds user function recursion when ExecOptions
// leaves MaxCallDepth unset.
const DefaultMaxCallDepth = 1000

// Builtin is a host function callable by name from scripts.
type Builtin struct {
	Name    string
	Arity   int // -1 accepts any number of arguments
	Execute func(args []Value) (Value, error)
}

// Method is a host function called as recv.name(args).
type Method struct {
	Receiver Kind
	Name     string
	Arity    int
	Execute  func(recv Value, args []Value) (Value, error)
}

// MethodKey is the ExecOptions.Methods key for a method on kind k.
func MethodKey(k Kind, name string) string {
	return k.String() + "." + name
}

// ExecOptions configures program execution.
type ExecOptions struct {
	Builtins     map[string]*Builtin
	Methods      map[string]*Method
	Trace        func(event TraceEvent)
	RunID        string
	Logger       log15.Logger
	Stdout       io.Writer // also receives every printed line, if set
	MaxCallDepth int
	MaxArraySize int64 // 0 means DefaultMaxArraySize
	Budget       Budget
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	Output  []string
	Globals []*Binding
}

// Evaluator is one execution context: a scope stack plus the console
// output it has produced. It is not safe for concurrent use.
type Evaluator struct {
	opts      ExecOptions
	scope     *Scope
	output    []string
	log       log15.Logger
	callDepth int
	budget    budgetTracker
}

// New creates an evaluator with a fresh root scope.
func New(opts ExecOptions) *Evaluator {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.MaxArraySize <= 0 {
		opts.MaxArraySize = DefaultMaxArraySize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	return &Evaluator{
		opts:  opts,
		scope:  NewScope(),
		log:    logger.New("run", opts.RunID),
		budget: budgetTracker{start: time.Now()},
	}
}

// Execute runs stmts against a fresh root scope. The output printed before
// a failure is returned along with the error.
func Execute(stmts []ast.Statement, opts ExecOptions) (*ExecResult, error) {
	ev := New(opts)
	err := ev.Run(stmts)
	return &ExecResult{Output: ev.Output(), Globals: ev.Globals()}, err
}

// Output returns the lines printed so far.
func (ev *Evaluator) Output() []string {
	out := make([]string, len(ev.output))
	copy(out, ev.output)
	return out
}

// Globals returns the root frame's bindings in declaration order.
func (ev *Evaluator) Globals() []*Binding {
	return ev.scope.Globals()
}

// Run executes stmts in the evaluator's root frame. Successive calls share
// that frame.
func (ev *Evaluator) Run(stmts []ast.Statement) error {
	var span ast.Span
	if len(stmts) > 0 {
		span = stmts[0].NodeSpan().To(stmts[len(stmts)-1].NodeSpan())
	}
	ev.emit(TraceRunStart, span)
	ev.log.Debug("run start", "statements", len(stmts))

	err := ev.runTop(stmts)

	ev.emit(TraceRunEnd, span)
	if err != nil {
		ev.log.Debug("run failed", "err", err, "lines", len(ev.output))
		return err
	}
	ev.log.Debug("run end", "lines", len(ev.output))
	return nil
}

func (ev *Evaluator) runTop(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		sig, err := ev.exec(stmt)
		if err != nil {
			return err
		}
		if sig.Kind != SignalNormal {
			return escapedSignal(sig, "the top level")
		}
	}
	return nil
}

// Eval evaluates a single operation in the current scope.
func (ev *Evaluator) Eval(op ast.Operation) (Value, error) {
	return ev.eval(op)
}

func escapedSignal(sig Signal, where string) error {
	span := sig.Span
	msg := fmt.Sprintf("'%s' outside of a loop", sig.Kind)
	hint := "break and continue must appear inside a for or while loop"
	if sig.Kind == SignalReturn {
		msg = "'return' outside of a function"
		hint = "return may only appear inside a func body"
	}
	return &RuntimeError{
		Code:    diagnostics.EControlFlow,
		Message: fmt.Sprintf("%s (reached %s); %s", msg, where, hint),
		Span:    &span,
	}
}

func (ev *Evaluator) print(v Value, span ast.Span) {
	line := v.String()
	ev.output = append(ev.output, line)
	if ev.opts.Stdout != nil {
		fmt.Fprintln(ev.opts.Stdout, line)
	}
	ev.emitWithData(TracePrint, span, map[string]string{"text": line})
}

// internalError reports a syntax tree the evaluator does not know how to
// run. It means a parser or evaluator bug, never a program error.
func internalError(format string, args ...interface{}) error {
	return &RuntimeError{Code: diagnostics.EInternal, Message: fmt.Sprintf(format, args...)}
}

func nameError(span ast.Span, format string, args ...interface{}) error {
	return &RuntimeError{Code: diagnostics.EName, Message: fmt.Sprintf(format, args...), Span: &span}
}

func typeError(span ast.Span, format string, args ...interface{}) error {
	return &RuntimeError{Code: diagnostics.EType, Message: fmt.Sprintf(format, args...), Span: &span}
}
