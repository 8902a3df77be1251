// Package runtime provides the top-level BlockScript orchestrator: the two
// entry points block-editor adapters call (parse an expression, execute
// statements) plus whole-program run, check and format.
package runtime

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/evaluator"
	"github.com/blockcraft/blockscript/pkg/formatter"
	"github.com/blockcraft/blockscript/pkg/lexer"
	"github.com/blockcraft/blockscript/pkg/parser"
	"github.com/blockcraft/blockscript/pkg/stdlib"
	"github.com/blockcraft/blockscript/pkg/validator"
)

// ExpressionFile is the file name reported in diagnostics for text given to
// ParseExpression.
const ExpressionFile = "<expr>"

// Result holds the outcome of a program execution.
type Result struct {
	RunID   string
	Output  []string
	Globals []*evaluator.Binding // root frame after the run
}

// Runtime wires together all BlockScript components for program execution.
// It is safe for concurrent use; every execution gets its own evaluator.
type Runtime struct {
	stdlib *stdlib.Registry
	cfg    Config
	log    log15.Logger
	runID  string
	trace  func(event evaluator.TraceEvent)
	stdout io.Writer
	cache  *lru.Cache
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the builtin registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(rt *Runtime) {
		rt.cfg = cfg
	}
}

// WithLogger sets the logger handed to every evaluator.
func WithLogger(l log15.Logger) Option {
	return func(rt *Runtime) {
		rt.log = l
	}
}

// WithRunID fixes the run ID for trace events. Without it every execution
// gets a fresh random ID.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithStdout mirrors printed lines to w as they are produced.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// New creates a new Runtime with the given options.
// By default the standard builtins are registered and DefaultConfig applies.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdlib: stdlib.Default(),
		cfg:    DefaultConfig,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.log == nil {
		rt.log = log15.New()
		rt.log.SetHandler(log15.DiscardHandler())
	}
	if rt.cfg.Run.ParseCacheSize > 0 {
		// only fails for a non-positive size
		rt.cache, _ = lru.New(rt.cfg.Run.ParseCacheSize)
	}
	return rt
}

// Config returns the runtime's configuration.
func (rt *Runtime) Config() Config {
	return rt.cfg
}

// Stdlib returns the builtin registry.
func (rt *Runtime) Stdlib() *stdlib.Registry {
	return rt.stdlib
}

func (rt *Runtime) lexOptions() []lexer.Option {
	if rt.cfg.Run.StrictStrings {
		return []lexer.Option{lexer.WithStrictStrings()}
	}
	return nil
}

// ParseExpression parses the text of one block field. Results are cached by
// text, so repeated edits of the same field do not reparse.
func (rt *Runtime) ParseExpression(text string) (ast.Operation, error) {
	if rt.cache != nil {
		if op, ok := rt.cache.Get(text); ok {
			rt.log.Debug("parse cache hit", "len", len(text))
			return op.(ast.Operation), nil
		}
	}
	op, diags := parser.ParseExpression(text, ExpressionFile, rt.lexOptions()...)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if rt.cache != nil {
		rt.cache.Add(text, op)
	}
	return op, nil
}

// Tokens scans source into tokens, ending with the EOF token.
func (rt *Runtime) Tokens(source, filename string) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(source, filename, rt.lexOptions()...)
	if le, ok := err.(*lexer.LexError); ok {
		return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{le.Diag}}
	}
	return tokens, err
}

// Parse parses a whole program.
func (rt *Runtime) Parse(source, filename string) (*ast.Program, error) {
	program, diags := parser.Parse(source, filename, rt.lexOptions()...)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	return program, nil
}

// ExecOptions returns the evaluator options for one run.
func (rt *Runtime) ExecOptions(runID string) evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Builtins:     rt.stdlib.Builtins(),
		Methods:      rt.stdlib.Methods(),
		Trace:        rt.trace,
		RunID:        runID,
		Logger:       rt.log,
		Stdout:       rt.stdout,
		MaxCallDepth: rt.cfg.Run.MaxCallDepth,
		MaxArraySize: rt.cfg.Run.MaxArraySize,
		Budget: evaluator.Budget{
			MaxSteps: rt.cfg.Run.MaxSteps,
			TimeMs:   rt.cfg.Run.TimeLimitMs,
		},
	}
}

func (rt *Runtime) newRunID() string {
	if rt.runID != "" {
		return rt.runID
	}
	return uuid.New().String()
}

// NewEvaluator creates a long-lived evaluator whose root frame survives
// across Run calls, as the REPL needs.
func (rt *Runtime) NewEvaluator() *evaluator.Evaluator {
	return evaluator.New(rt.ExecOptions(rt.newRunID()))
}

// Execute runs stmts against a fresh root scope. On failure the output
// printed so far is returned along with the error.
func (rt *Runtime) Execute(stmts []ast.Statement) (*Result, error) {
	runID := rt.newRunID()
	rt.log.Debug("execute", "run", runID, "statements", len(stmts))
	res, err := evaluator.Execute(stmts, rt.ExecOptions(runID))
	return &Result{RunID: runID, Output: res.Output, Globals: res.Globals}, err
}

// Run parses and executes a program. Lint warnings do not stop a run.
func (rt *Runtime) Run(source, filename string) (*Result, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	return rt.Execute(program.Statements)
}

// Check parses and lints a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename, rt.lexOptions()...)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program)
}

// Format parses and formats a program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program), nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

var runtimeHints = map[string]string{
	diagnostics.EName:          "declare variables with 'name: Type' before use",
	diagnostics.EControlFlow:   "break and continue belong in loops, return in functions",
	diagnostics.EIndex:         "array indexes run from 0 to size-1",
	diagnostics.EArith:         "use a Double operand for floating division",
	diagnostics.EStackOverflow: "check the recursion's base case, or raise Run.MaxCallDepth",
	diagnostics.EBudget:        "the run was stopped by Run.MaxSteps or Run.TimeLimitMs",
	diagnostics.EInternal:      "this is a bug in BlockScript, please report it with the program",
}

// Diagnose converts any error returned by this package into diagnostics.
func Diagnose(err error) []diagnostics.Diagnostic {
	switch e := err.(type) {
	case nil:
		return nil
	case *DiagnosticError:
		return e.Diagnostics
	case *evaluator.RuntimeError:
		return []diagnostics.Diagnostic{diagnostics.MakeDiag(e.Code, e.Message, e.Span, runtimeHints[e.Code])}
	}
	return []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")}
}

// Process exit codes for a run.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitParseError   = 2
	ExitRuntimeError = 3
)

// ExitCode maps a Run error to the process exit code.
func ExitCode(err error) int {
	switch err.(type) {
	case nil:
		return ExitOK
	case *DiagnosticError:
		return ExitParseError
	case *evaluator.RuntimeError:
		return ExitRuntimeError
	}
	return ExitFailure
}
