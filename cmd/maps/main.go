package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"poewiki/internal/config"
	"poewiki/internal/observability"
	"poewiki/internal/pipeline"
)

func main() {
	start := time.Now()

	cfg := config.Load()
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := pipeline.Execute(ctx, cfg, logger, pipeline.Maps); err != nil {
		logger.Error("maps failed", "err", err, "elapsed", time.Since(start))
		stop()
		os.Exit(1)
	}
	logger.Info("program execution time", "elapsed", time.Since(start))
}
