package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"poewiki/internal/config"
	"poewiki/internal/crawler"
	"poewiki/internal/parser"
)

// Builder creates a pipeline from configuration, e.g. Uniques.
type Builder func(cfg *config.Config, deps *Deps) (*Pipeline, error)

// Execute wires dependencies, runs the pipeline built by build and exports
// metrics. Metrics export failures are only logged.
func Execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, build Builder) error {
	deps, cleanup, err := NewDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := build(cfg, deps)
	if err != nil {
		return err
	}

	_, runErr := p.Run(ctx)
	logFailure(logger, runErr)

	if err := deps.Metrics.Export(cfg.MetricsTextfile, cfg.MetricsPushURL, "poewiki_"+p.Name); err != nil {
		logger.Warn("metrics export failed", "err", err)
	}
	return runErr
}

func logFailure(logger *slog.Logger, err error) {
	var (
		serr *StageError
		nerr *crawler.NetworkError
		perr *parser.ParseError
	)
	if err == nil {
		return
	}
	if errors.As(err, &serr) {
		logger = logger.With("stage", serr.Stage)
	}
	switch {
	case errors.As(err, &nerr):
		logger.Error("wiki request failed", "url", nerr.URL, "status", nerr.StatusCode)
	case errors.As(err, &perr):
		logger.Error("wiki response no longer has the expected structure", "reason", perr.Reason)
	}
}
