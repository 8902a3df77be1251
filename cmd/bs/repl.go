package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/blockcraft/blockscript/pkg/ast"
	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/evaluator"
	"github.com/blockcraft/blockscript/pkg/lexer"
	"github.com/blockcraft/blockscript/pkg/runtime"
)

const replFile = "<repl>"

var replCommand = cli.Command{
	Action: withEnv(startREPL),
	Name:   "repl",
	Usage:  "Start an interactive BlockScript shell",
	Description: `Each entry runs in one long-lived root scope. Input continues
until brackets balance. Commands: :vars lists variables, :reset starts
over, :quit exits.`,
}

// repl holds the shell state independent of the line editor.
type repl struct {
	rt      *runtime.Runtime
	ev      *evaluator.Evaluator
	out     io.Writer
	errOut  io.Writer
	pending []string
}

func newREPL(rt *runtime.Runtime, out, errOut io.Writer) *repl {
	return &repl{rt: rt, ev: rt.NewEvaluator(), out: out, errOut: errOut}
}

// continuing reports whether an entry is waiting for more lines.
func (r *repl) continuing() bool {
	return len(r.pending) > 0
}

// feed handles one input line and reports whether the shell should exit.
func (r *repl) feed(line string) (quit bool) {
	if !r.continuing() {
		switch strings.TrimSpace(line) {
		case "":
			return false
		case ":quit", ":q", ":exit":
			return true
		case ":reset":
			r.ev = r.rt.NewEvaluator()
			fmt.Fprintln(r.out, "scope cleared")
			return false
		case ":vars":
			r.printVars()
			return false
		}
	}
	r.pending = append(r.pending, line)
	source := strings.Join(r.pending, "\n")
	if needsMore(source) {
		return false
	}
	r.pending = nil
	r.eval(source)
	return false
}

func (r *repl) eval(source string) {
	program, err := r.rt.Parse(source, replFile)
	if err != nil {
		r.report(err)
		return
	}
	// A lone expression is echoed instead of discarded.
	if len(program.Statements) == 1 {
		if es, ok := program.Statements[0].(*ast.ExpressionStatement); ok {
			if _, isAssign := es.Expr.(*ast.AssignOp); !isAssign {
				v, err := r.ev.Eval(es.Expr)
				if err != nil {
					r.report(err)
					return
				}
				fmt.Fprintln(r.out, v.String())
				return
			}
		}
	}
	if err := r.ev.Run(program.Statements); err != nil {
		r.report(err)
	}
}

func (r *repl) report(err error) {
	fmt.Fprintln(r.errOut, diagnostics.FormatDiagnostics(runtime.Diagnose(err), true))
}

func (r *repl) printVars() {
	globals := r.ev.Globals()
	if len(globals) == 0 {
		fmt.Fprintln(r.out, "no variables")
		return
	}
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Name", "Type", "Value"})
	table.SetAutoWrapText(false)
	for _, b := range globals {
		value := "<not yet evaluated>"
		if v := b.Value(); v != nil {
			value = v.String()
		}
		table.Append([]string{b.Name, b.Type.String(), value})
	}
	table.Render()
}

// needsMore reports whether source has unclosed brackets. Input that does
// not scan is complete; the parser reports the problem.
func needsMore(source string) bool {
	tokens, err := lexer.Tokenize(source, replFile)
	if err != nil {
		return false
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokLParen, lexer.TokLBracket, lexer.TokLBrace:
			depth++
		case lexer.TokRParen, lexer.TokRBracket, lexer.TokRBrace:
			depth--
		}
	}
	return depth > 0
}

func startREPL(ctx *cli.Context, e *env) error {
	out := ctx.App.Writer
	rt := e.newRuntime(runtime.WithStdout(out))
	r := newREPL(rt, out, ctx.App.ErrWriter)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := e.cfg.Repl.HistoryFile
	if history != "" {
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	fmt.Fprintf(out, "BlockScript %s. Type :quit to exit.\n", ctx.App.Version)

	for {
		prompt := e.cfg.Repl.Prompt
		if r.continuing() {
			prompt = strings.Repeat(".", len(strings.TrimRight(prompt, " "))) + " "
		}
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			r.pending = nil
			continue
		}
		if err != nil {
			// io.EOF on Ctrl-D
			break
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if r.feed(input) {
			break
		}
	}

	if history != "" {
		f, err := os.Create(history)
		if err != nil {
			e.log.Warn("Failed to save REPL history", "file", history, "err", err)
			return nil
		}
		defer f.Close()
		if _, err := line.WriteHistory(f); err != nil {
			e.log.Warn("Failed to save REPL history", "file", history, "err", err)
		}
	}
	return nil
}
