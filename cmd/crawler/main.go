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

// crawler runs every pipeline in turn. A failing pipeline does not stop the
// others; the exit code is 1 when any of them failed.
func main() {
	start := time.Now()

	cfg := config.Load()
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	builders := []struct {
		name  string
		build pipeline.Builder
	}{
		{"uniques", pipeline.Uniques},
		{"cards", pipeline.Cards},
		{"maps", pipeline.Maps},
	}

	failed := 0
	for _, b := range builders {
		if ctx.Err() != nil {
			break
		}
		if err := pipeline.Execute(ctx, cfg, logger, b.build); err != nil {
			logger.Error("pipeline failed", "pipeline", b.name, "err", err)
			failed++
		}
	}

	if failed > 0 || ctx.Err() != nil {
		logger.Error("crawler finished with errors", "failed", failed, "elapsed", time.Since(start))
		stop()
		os.Exit(1)
	}
	logger.Info("crawler finished", "elapsed", time.Since(start))
}
