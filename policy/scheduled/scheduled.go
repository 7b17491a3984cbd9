// Package scheduled implements a decorator that flushes its delegate once a
// fixed interval has passed since the last flush.
//
// Staleness is checked lazily on each operation; no timer goroutine runs.
package scheduled

import (
	"context"
	"sync"
	"time"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// DefaultInterval is the flush interval used when Options.Interval is not positive.
const DefaultInterval = time.Hour

// Options configures the decorator. Zero values are safe:
//   - Interval <= 0 => DefaultInterval
//   - nil Clock     => SystemClock
//   - nil Metrics   => NoopMetrics
type Options struct {
	Interval time.Duration
	Clock    cache.Clock
	Metrics  cache.Metrics
}

// Cache clears the whole delegate when more than Interval has elapsed since
// the previous clear. A Get that triggers the flush reports a miss.
type Cache struct {
	delegate cache.Cache
	interval int64
	clock    cache.Clock
	metrics  cache.Metrics

	mu        sync.Mutex
	lastClear int64
}

// New wraps delegate. The interval starts now.
func New(delegate cache.Cache, opt Options) *Cache {
	if opt.Interval <= 0 {
		opt.Interval = DefaultInterval
	}
	clk := cache.ClockOrSystem(opt.Clock)
	return &Cache{
		delegate:  delegate,
		interval:  int64(opt.Interval),
		clock:     clk,
		metrics:   cache.MetricsOrNoop(opt.Metrics),
		lastClear: clk.NowUnixNano(),
	}
}

func (c *Cache) ID() string { return c.delegate.ID() }

func (c *Cache) Size() int {
	_, _ = c.clearWhenStale(context.Background())
	return c.delegate.Size()
}

func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	flushed, err := c.clearWhenStale(ctx)
	if err != nil || flushed {
		return nil, err
	}
	return c.delegate.Get(ctx, key)
}

func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	if _, err := c.clearWhenStale(ctx); err != nil {
		return err
	}
	return c.delegate.Put(ctx, key, value)
}

func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	if _, err := c.clearWhenStale(ctx); err != nil {
		return nil, err
	}
	return c.delegate.Remove(ctx, key)
}

// Clear flushes the delegate and restarts the interval.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastClear = c.clock.NowUnixNano()
	return c.delegate.Clear(ctx)
}

// clearWhenStale flushes the delegate if the interval has elapsed and reports
// whether it did.
func (c *Cache) clearWhenStale(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.NowUnixNano()
	if now-c.lastClear <= c.interval {
		return false, nil
	}
	c.lastClear = now
	if err := c.delegate.Clear(ctx); err != nil {
		return true, err
	}
	c.metrics.Evict(cache.EvictExpired)
	return true, nil
}

var _ cache.Cache = (*Cache)(nil)
