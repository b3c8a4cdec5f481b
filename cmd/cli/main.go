package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophsocial/internal/buildinfo"
	"github.com/dmitrijs2005/gophsocial/internal/client/cli"
	"github.com/dmitrijs2005/gophsocial/internal/client/config"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := app.Metrics().WriteFile(cfg.MetricsFile); err != nil {
			logger.Error(ctx, "error writing metrics", "path", cfg.MetricsFile, "error", err)
		}
	}
}
