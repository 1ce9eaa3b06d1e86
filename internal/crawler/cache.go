package crawler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "poewiki:page:"

// Cache stores response bodies by URL. Get reports ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// NewRedisClient accepts either a redis:// URL or a plain host:port address.
func NewRedisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

type RedisCache struct {
	Client *redis.Client
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.Client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, cacheKeyPrefix+key, body, ttl).Err()
}

// CachedFetcher serves bodies from a Cache and falls back to the wrapped
// Fetcher. Cache failures never fail a fetch.
type CachedFetcher struct {
	next   Fetcher
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedFetcher(next Fetcher, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (f *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, ok, err := f.cache.Get(ctx, url)
	if err != nil {
		f.logger.Warn("cache read failed", "url", url, "err", err)
	} else if ok {
		f.logger.Debug("cache hit", "url", url)
		return body, nil
	}

	body, err = f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, url, body, f.ttl); err != nil {
		f.logger.Warn("cache write failed", "url", url, "err", err)
	}
	return body, nil
}
