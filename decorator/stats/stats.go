// Package stats counts hits and misses on a delegate, logs the running hit
// ratio at debug level and forwards events to cache.Metrics.
package stats

import (
	"context"
	"log/slog"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
	"github.com/IvanBrykalov/layercache/internal/util"
)

// Options configures the decorator. Zero values are safe:
//   - nil Logger  => slog.Default()
//   - nil Metrics => NoopMetrics
type Options struct {
	Logger  *slog.Logger
	Metrics cache.Metrics
}

// Cache records request and hit counts for Get.
type Cache struct {
	delegate cache.Cache
	logger   *slog.Logger
	metrics  cache.Metrics

	requests util.PaddedAtomicInt64
	hits     util.PaddedAtomicInt64
}

// New wraps delegate.
func New(delegate cache.Cache, opt Options) *Cache {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Cache{
		delegate: delegate,
		logger:   opt.Logger.With(slog.String("cache", delegate.ID())),
		metrics:  cache.MetricsOrNoop(opt.Metrics),
	}
}

func (c *Cache) ID() string { return c.delegate.ID() }
func (c *Cache) Size() int  { return c.delegate.Size() }

// Get reads through and records a hit or a miss. Failed reads are not counted.
func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	v, err := c.delegate.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	c.requests.Add(1)
	if v != nil {
		c.hits.Add(1)
		c.metrics.Hit()
	} else {
		c.metrics.Miss()
	}
	if c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.DebugContext(ctx, "cache hit ratio", slog.Float64("ratio", c.HitRatio()))
	}
	return v, nil
}

func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	err := c.delegate.Put(ctx, key, value)
	c.metrics.Size(c.delegate.Size())
	return err
}

func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	v, err := c.delegate.Remove(ctx, key)
	c.metrics.Size(c.delegate.Size())
	return v, err
}

func (c *Cache) Clear(ctx context.Context) error {
	err := c.delegate.Clear(ctx)
	c.metrics.Size(c.delegate.Size())
	return err
}

// Requests returns the number of counted Get calls.
func (c *Cache) Requests() int64 { return c.requests.Load() }

// Hits returns the number of Get calls that found a value.
func (c *Cache) Hits() int64 { return c.hits.Load() }

// HitRatio returns Hits/Requests, or 0 before the first request.
func (c *Cache) HitRatio() float64 {
	req := c.requests.Load()
	if req == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(req)
}

var _ cache.Cache = (*Cache)(nil)
