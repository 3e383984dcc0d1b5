package adapters

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/k1300k/smart-stocks/internal/feature/exchangerate/usecase"
)

const rateCacheKey = "exchange_rate:usd_krw"

// cachingRateSource decorates a RateSource with a Redis cache so short
// bursts of refreshes do not hammer the upstream API. With a nil client it
// degrades to a passthrough.
type cachingRateSource struct {
	inner usecase.RateSource
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachingRateSource wraps inner with a Redis cache. rdb may be nil.
func NewCachingRateSource(inner usecase.RateSource, rdb *redis.Client, ttl time.Duration) usecase.RateSource {
	return &cachingRateSource{inner: inner, rdb: rdb, ttl: ttl}
}

var _ usecase.RateSource = (*cachingRateSource)(nil)

func (c *cachingRateSource) FetchRate(ctx context.Context) (float64, error) {
	if c.rdb == nil {
		return c.inner.FetchRate(ctx)
	}

	if val, err := c.rdb.Get(ctx, rateCacheKey).Result(); err == nil {
		if rate, perr := strconv.ParseFloat(val, 64); perr == nil && rate > 0 {
			return rate, nil
		}
	} else if err != redis.Nil {
		slog.Warn("redis get failed for exchange rate", "error", err)
	}

	rate, err := c.inner.FetchRate(ctx)
	if err != nil {
		return 0, err
	}

	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := c.rdb.Set(ctx, rateCacheKey, val, c.ttl).Err(); err != nil {
		slog.Warn("redis set failed for exchange rate", "error", err)
	}
	return rate, nil
}
