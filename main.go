package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/polymarket-window-dashboard/internal/api"
	"github.com/polymarket-window-dashboard/internal/config"
	"github.com/polymarket-window-dashboard/internal/ingestion"
	"github.com/polymarket-window-dashboard/internal/logger"
	"github.com/polymarket-window-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load(os.Getenv("POLYDASH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting polymarket window dashboard",
		zap.String("query_variant", cfg.Polymarket.QueryVariant),
		zap.Int("window_days", cfg.Window.Days),
	)

	loc, err := cfg.Window.Location()
	if err != nil {
		log.Fatal("resolve display timezone", zap.Error(err))
	}

	client := ingestion.NewRESTClientFromConfig(cfg.Polymarket, log.Named("ingestion"))
	pipe := pipeline.New(client, cfg.Polymarket, cfg.Window,
		pipeline.WithLocation(loc),
		pipeline.WithLogger(log.Named("pipeline")),
	)
	server := api.NewServer(cfg.API, cfg.Window.Days, pipe, log.Named("api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Error("api server stopped", zap.Error(err))
		return
	}
	log.Info("shutdown complete")
}
