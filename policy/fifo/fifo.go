// Package fifo implements first-in-first-out eviction as a cache decorator.
package fifo

import (
	"container/list"
	"context"
	"sync"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// DefaultSize is the bound used when Options.Size is not positive.
const DefaultSize = 1024

// Options configures the decorator. Zero values are safe:
//   - Size <= 0   => DefaultSize
//   - nil Metrics => NoopMetrics
type Options struct {
	// Size bounds the number of tracked puts.
	Size    int
	Metrics cache.Metrics
}

// Cache evicts the oldest-inserted key once more than Size puts are tracked.
//
// Re-putting a key appends it again, so a key may appear several times in the
// queue and the bound counts puts since the last trim, not distinct keys.
// Evicting a stale duplicate removes the key from the delegate even if it was
// put again later.
type Cache struct {
	delegate cache.Cache
	size     int
	metrics  cache.Metrics

	mu   sync.Mutex
	keys *list.List // Front() = oldest; element.Value is *cachekey.Key
}

// New wraps delegate.
func New(delegate cache.Cache, opt Options) *Cache {
	if opt.Size <= 0 {
		opt.Size = DefaultSize
	}
	return &Cache{
		delegate: delegate,
		size:     opt.Size,
		metrics:  cache.MetricsOrNoop(opt.Metrics),
		keys:     list.New(),
	}
}

func (c *Cache) ID() string { return c.delegate.ID() }
func (c *Cache) Size() int  { return c.delegate.Size() }

// Get reads through; reads do not affect eviction order.
func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	return c.delegate.Get(ctx, key)
}

// Put appends key to the queue, evicts the head if the bound is exceeded,
// then stores the value.
func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.cycleKeyList(ctx, key); err != nil {
		return err
	}
	return c.delegate.Put(ctx, key, value)
}

func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	return c.delegate.Remove(ctx, key)
}

// Clear empties the queue and the delegate.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys.Init()
	return c.delegate.Clear(ctx)
}

// cycleKeyList appends key at the tail and trims the head. mu must be held.
func (c *Cache) cycleKeyList(ctx context.Context, key *cachekey.Key) error {
	c.keys.PushBack(key.Snapshot())
	if c.keys.Len() <= c.size {
		return nil
	}
	oldest := c.keys.Remove(c.keys.Front()).(*cachekey.Key)

	if _, err := c.delegate.Remove(ctx, oldest); err != nil {
		return err
	}
	c.metrics.Evict(cache.EvictCapacity)
	return nil
}

var _ cache.Cache = (*Cache)(nil)
