package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"poewiki/internal/config"
	"poewiki/internal/crawler"
	"poewiki/internal/db"
	"poewiki/internal/observability"
	"poewiki/internal/repository"
)

// NewDeps wires the fetcher, the optional Redis cache, the optional Postgres
// archive and the metrics registry. The returned func releases every
// connection that was opened.
//
// An unreachable cache or archive only disables that feature; a malformed
// Redis address is a configuration error.
func NewDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, func(), error) {
	deps := &Deps{
		Fetcher: crawler.NewClient(cfg.HTTPTimeout, cfg.UserAgent),
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisURL != "" {
		rdb, err := crawler.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, response cache disabled", "err", err)
		} else {
			cache := &crawler.RedisCache{Client: rdb}
			deps.Fetcher = crawler.NewCachedFetcher(deps.Fetcher, cache, cfg.CacheTTL, logger)
			logger.Info("response cache enabled", "ttl", cfg.CacheTTL)
		}
	}

	if cfg.DatabaseURL != "" {
		archive, closeArchive, err := openArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("postgres unreachable, archive disabled", "err", err)
		} else {
			deps.Archive = archive
			closers = append(closers, closeArchive)
			logger.Info("archive enabled")
		}
	}

	return deps, cleanup, nil
}

func openArchive(ctx context.Context, url string) (*repository.Archive, func(), error) {
	conn, err := db.New(url)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := db.EnsureSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("schema: %w", err)
	}

	pool, err := db.NewPool(ctx, url)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	archive := &repository.Archive{
		Raw:     &repository.RawRepository{DB: conn},
		Records: &repository.RecordRepository{DB: pool},
	}
	return archive, func() {
		pool.Close()
		conn.Close()
	}, nil
}
