// Command bs is the BlockScript command line: run, lint and format
// programs, inspect tokens, trees and traces, or start the REPL and the
// playground server.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/blockcraft/blockscript/pkg/diagnostics"
	"github.com/blockcraft/blockscript/pkg/help"
	"github.com/blockcraft/blockscript/pkg/runtime"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file (default: ./bs.toml, then ~/.bs/config.toml)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug",
		Value: runtime.DefaultConfig.Log.Verbosity,
	}
	strictStringsFlag = cli.BoolFlag{
		Name:  "strict-strings",
		Usage: "Reject string literals that are not closed on their own line",
	}
	maxCallDepthFlag = cli.IntFlag{
		Name:  "max-call-depth",
		Usage: "Maximum depth of nested function calls",
		Value: runtime.DefaultConfig.Run.MaxCallDepth,
	}
	prettyFlag = cli.BoolFlag{
		Name:  "pretty",
		Usage: "Print diagnostics for humans instead of as JSON",
	}
)

// exitStatus carries a process exit code out of a command action. Err is
// printed by main unless the action already reported the failure.
type exitStatus struct {
	code int
	err  error
}

func (e *exitStatus) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func fail(code int) error {
	return &exitStatus{code: code}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "bs"
	app.Usage = "the BlockScript command line interface"
	app.Version = help.Version
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		strictStringsFlag,
		maxCallDepthFlag,
	}
	app.Commands = []cli.Command{
		runCommand,
		checkCommand,
		fmtCommand,
		tokensCommand,
		astCommand,
		traceCommand,
		replCommand,
		serveCommand,
		helpCommand,
		dumpConfigCommand,
	}
	return app
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the app and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp()
	app.Writer = stdout
	app.ErrWriter = stderr
	err := app.Run(args)
	if err == nil {
		return runtime.ExitOK
	}
	code := runtime.ExitFailure
	var st *exitStatus
	if errors.As(err, &st) {
		code = st.code
		err = st.err
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
	}
	return code
}

// makeConfig applies the config file and then the global flags over the
// defaults. Without --config the nearest config file is used if any.
func makeConfig(ctx *cli.Context) (runtime.Config, error) {
	cfg := runtime.DefaultConfig
	cfg.Serve.AllowedOrigins = append([]string(nil), cfg.Serve.AllowedOrigins...)
	file := ctx.GlobalString(configFileFlag.Name)
	if file == "" {
		if wd, err := os.Getwd(); err == nil {
			file = runtime.FindConfig(wd)
		}
	}
	if file != "" {
		if err := runtime.LoadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	if ctx.GlobalIsSet(strictStringsFlag.Name) {
		cfg.Run.StrictStrings = ctx.GlobalBool(strictStringsFlag.Name)
	}
	if ctx.GlobalIsSet(maxCallDepthFlag.Name) {
		cfg.Run.MaxCallDepth = ctx.GlobalInt(maxCallDepthFlag.Name)
	}
	return cfg, nil
}

// newLogger writes to w: coloured terminal format when w is a terminal,
// logfmt otherwise.
func newLogger(w io.Writer, verbosity int) log15.Logger {
	format := log15.LogfmtFormat()
	if f, ok := w.(*os.File); ok {
		usecolor := (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
		if usecolor {
			w = colorable.NewColorable(f)
			format = log15.TerminalFormat()
		}
	}
	logger := log15.New("app", "bs")
	logger.SetHandler(log15.LvlFilterHandler(log15.Lvl(verbosity), log15.StreamHandler(w, format)))
	return logger
}

// env is what every command action gets: the merged configuration and a
// logger writing to the app's error stream.
type env struct {
	cfg runtime.Config
	log log15.Logger
}

// newRuntime builds a runtime from the command's configuration.
func (e *env) newRuntime(opts ...runtime.Option) *runtime.Runtime {
	base := []runtime.Option{
		runtime.WithConfig(e.cfg),
		runtime.WithLogger(e.log),
	}
	return runtime.New(append(base, opts...)...)
}

// withEnv adapts a command action that needs configuration. A bad config
// file is reported as an E_CONFIG diagnostic before the action runs.
func withEnv(action func(ctx *cli.Context, e *env) error) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			diag := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), nil, "check the file against 'bs dumpconfig'")
			fmt.Fprintln(ctx.App.ErrWriter, diagnostics.FormatDiagnostic(diag, ctx.Bool(prettyFlag.Name)))
			return fail(runtime.ExitFailure)
		}
		return action(ctx, &env{cfg: cfg, log: newLogger(ctx.App.ErrWriter, cfg.Log.Verbosity)})
	}
}
