package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/formatter"
	"github.com/blockcraft/blockscript/pkg/help"
	"github.com/blockcraft/blockscript/pkg/runtime"
)

var (
	writeFlag = cli.BoolFlag{
		Name:  "write, w",
		Usage: "Write the result back to the source file",
	}
	indexFlag = cli.BoolFlag{
		Name:  "index",
		Usage: "List every builtin function and method",
	}

	runCommand = cli.Command{
		Action:    withEnv(runProgram),
		Name:      "run",
		Usage:     "Run a program",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{prettyFlag},
		Description: `Runs the program and prints its console output. Exit status is
2 for lex or syntax errors and 3 for runtime errors; the output printed
before a runtime error is kept.`,
	}
	checkCommand = cli.Command{
		Action:      withEnv(checkPrograms),
		Name:        "check",
		Usage:       "Parse and lint programs without running them",
		ArgsUsage:   "<file> [file...]",
		Flags:       []cli.Flag{prettyFlag},
		Description: `Files are checked concurrently and reported in argument order.`,
	}
	fmtCommand = cli.Command{
		Action:    withEnv(formatProgram),
		Name:      "fmt",
		Usage:     "Print a program in canonical layout",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{writeFlag, prettyFlag},
	}
	tokensCommand = cli.Command{
		Action:    withEnv(printTokens),
		Name:      "tokens",
		Usage:     "Print the token stream of a program as a table",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{prettyFlag},
	}
	astCommand = cli.Command{
		Action:    withEnv(dumpAST),
		Name:      "ast",
		Usage:     "Dump the syntax tree of a program",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{prettyFlag},
	}
	helpCommand = cli.Command{
		Action:    showHelp,
		Name:      "help",
		Usage:     "Show the language reference",
		ArgsUsage: "[topic]",
		Flags:     []cli.Flag{indexFlag},
	}
	dumpConfigCommand = cli.Command{
		Action:      withEnv(dumpConfig),
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[file]",
		Description: `The dumpconfig command shows configuration values.`,
	}
)

// readSource reads the file named by the first argument, or stdin for "-".
func readSource(ctx *cli.Context) (source, filename string, err error) {
	if ctx.NArg() < 1 {
		return "", "", fmt.Errorf("usage: bs %s %s", ctx.Command.Name, ctx.Command.ArgsUsage)
	}
	file := ctx.Args().First()
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	return string(data), file, nil
}

// reportIO prints an E_IO diagnostic for err and returns the failing status.
func reportIO(ctx *cli.Context, err error) error {
	diag := diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, "")
	fmt.Fprintln(ctx.App.ErrWriter, diagnostics.FormatDiagnostic(diag, ctx.Bool(prettyFlag.Name)))
	return fail(runtime.ExitFailure)
}

// report prints the diagnostics for err and returns its exit status.
func report(ctx *cli.Context, err error) error {
	fmt.Fprintln(ctx.App.ErrWriter, diagnostics.FormatDiagnostics(runtime.Diagnose(err), ctx.Bool(prettyFlag.Name)))
	return fail(runtime.ExitCode(err))
}

func runProgram(ctx *cli.Context, e *env) error {
	source, filename, err := readSource(ctx)
	if err != nil {
		return reportIO(ctx, err)
	}
	rt := e.newRuntime(runtime.WithStdout(ctx.App.Writer))
	if _, err := rt.Run(source, filename); err != nil {
		return report(ctx, err)
	}
	return nil
}

type checkResult struct {
	file  string
	diags []diagnostics.Diagnostic
}

func checkPrograms(ctx *cli.Context, e *env) error {
	files := ctx.Args()
	if len(files) == 0 {
		return reportIO(ctx, fmt.Errorf("usage: bs check %s", ctx.Command.ArgsUsage))
	}
	rt := e.newRuntime()
	results := make([]checkResult, len(files))

	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			results[i] = checkResult{file: file, diags: rt.Check(string(data), file)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reportIO(ctx, err)
	}

	pretty := ctx.Bool(prettyFlag.Name)
	var all []diagnostics.Diagnostic
	for _, r := range results {
		e.log.Debug("checked", "file", r.file, "diagnostics", len(r.diags))
		all = append(all, r.diags...)
	}
	if len(all) == 0 {
		if pretty {
			fmt.Fprintln(ctx.App.Writer, "No problems found.")
		} else {
			fmt.Fprintln(ctx.App.Writer, "[]")
		}
		return nil
	}
	if diagnostics.HasErrors(all) {
		fmt.Fprintln(ctx.App.ErrWriter, diagnostics.FormatDiagnostics(all, pretty))
		return fail(runtime.ExitParseError)
	}
	fmt.Fprintln(ctx.App.Writer, diagnostics.FormatDiagnostics(all, pretty))
	return nil
}

func formatProgram(ctx *cli.Context, e *env) error {
	source, filename, err := readSource(ctx)
	if err != nil {
		return reportIO(ctx, err)
	}
	formatted, err := e.newRuntime().Format(source, filename)
	if err != nil {
		return report(ctx, err)
	}
	if formatter.HasComments(source) {
		e.log.Warn("Comments are not preserved by the formatter", "file", filename)
	}
	if ctx.Bool("write") && filename != "<stdin>" {
		if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
			return reportIO(ctx, err)
		}
		return nil
	}
	fmt.Fprint(ctx.App.Writer, formatted)
	return nil
}

func printTokens(ctx *cli.Context, e *env) error {
	source, filename, err := readSource(ctx)
	if err != nil {
		return reportIO(ctx, err)
	}
	tokens, err := e.newRuntime().Tokens(source, filename)
	if err != nil {
		return report(ctx, err)
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Pos", "Type", "Value"})
	table.SetAutoWrapText(false)
	for _, tok := range tokens {
		table.Append([]string{
			fmt.Sprintf("%d:%d", tok.Span.StartLine, tok.Span.StartCol),
			tok.Type.String(),
			fmt.Sprintf("%q", tok.Value),
		})
	}
	table.Render()
	return nil
}

var astDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func dumpAST(ctx *cli.Context, e *env) error {
	source, filename, err := readSource(ctx)
	if err != nil {
		return reportIO(ctx, err)
	}
	program, err := e.newRuntime().Parse(source, filename)
	if err != nil {
		return report(ctx, err)
	}
	for _, stmt := range program.Statements {
		astDumper.Fdump(ctx.App.Writer, stmt)
	}
	return nil
}

func showHelp(ctx *cli.Context) error {
	w := ctx.App.Writer
	if ctx.Bool(indexFlag.Name) {
		fmt.Fprint(w, help.BuiltinIndex(runtime.New().Stdlib()))
		return nil
	}
	topic := strings.Join(ctx.Args(), " ")
	if topic == "" {
		fmt.Fprint(w, help.QUICKREF)
		return nil
	}
	_, content, err := help.MatchTopic(topic)
	if err != nil {
		return &exitStatus{code: runtime.ExitFailure, err: err}
	}
	fmt.Fprint(w, content)
	return nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context, e *env) error {
	out, err := runtime.DumpConfig(&e.cfg)
	if err != nil {
		return err
	}
	var dump io.Writer = ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return reportIO(ctx, err)
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
