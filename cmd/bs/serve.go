package main

import (
	"context"
	"os"
	"os/signal"

	"gopkg.in/urfave/cli.v1"

	"github.com/blockcraft/blockscript/internal/server"
)

var (
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "Listen address (overrides serve.Addr)",
	}

	serveCommand = cli.Command{
		Action: withEnv(serve),
		Name:   "serve",
		Usage:  "Start the playground HTTP server",
		Flags:  []cli.Flag{addrFlag},
		Description: `Serves /v1/parse, /v1/check and /v1/run as JSON endpoints until
interrupted.`,
	}
)

func serve(ctx *cli.Context, e *env) error {
	e.cfg = server.RunConfig(e.cfg)
	cfg := e.cfg.Serve
	if addr := ctx.String(addrFlag.Name); addr != "" {
		cfg.Addr = addr
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := server.New(e.newRuntime(), cfg, e.log)
	if err := srv.ListenAndServe(sigctx); err != nil {
		e.log.Error("Playground server failed", "err", err)
		return reportIO(ctx, err)
	}
	return nil
}
