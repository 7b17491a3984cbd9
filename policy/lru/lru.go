// Package lru implements least-recently-used eviction as a cache decorator.
//
// Recency is tracked with hashicorp/golang-lru's simplelru; values stay in the
// delegate.
package lru

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// DefaultSize is the bound used when Options.Size is not positive.
const DefaultSize = 1024

// Options configures the decorator. Zero values are safe:
//   - Size <= 0   => DefaultSize
//   - nil Metrics => NoopMetrics
type Options struct {
	Size    int
	Metrics cache.Metrics
}

// Cache evicts the least recently used key once more than Size distinct keys
// have been put. Both Get and Put refresh a key.
type Cache struct {
	delegate cache.Cache
	size     int
	metrics  cache.Metrics

	mu sync.Mutex
	// order tracks recency over canonical key pointers; canon maps any equal
	// key to its canonical pointer.
	order *simplelru.LRU[*cachekey.Key, struct{}]
	canon cachekey.Map[*cachekey.Key]
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
		order:    newOrder(opt.Size),
	}
}

func newOrder(size int) *simplelru.LRU[*cachekey.Key, struct{}] {
	// NewLRU only fails for a non-positive size.
	l, err := simplelru.NewLRU[*cachekey.Key, struct{}](size, nil)
	if err != nil {
		panic(err)
	}
	return l
}

func (c *Cache) ID() string { return c.delegate.ID() }
func (c *Cache) Size() int  { return c.delegate.Size() }

// Get marks key as recently used and reads through.
func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	c.mu.Lock()
	if ck, ok := c.canon.Get(key); ok {
		c.order.Get(ck)
	}
	c.mu.Unlock()

	return c.delegate.Get(ctx, key)
}

// Put stores the value, then removes the eldest key from the delegate if the
// bound was exceeded.
func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.delegate.Put(ctx, key, value); err != nil {
		return err
	}
	eldest := c.touch(key)
	if eldest == nil {
		return nil
	}
	if _, err := c.delegate.Remove(ctx, eldest); err != nil {
		return err
	}
	c.metrics.Evict(cache.EvictPolicy)
	return nil
}

// Remove drops key from the delegate and from recency tracking.
func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	c.mu.Lock()
	if ck, ok := c.canon.Delete(key); ok {
		c.order.Remove(ck)
	}
	c.mu.Unlock()

	return c.delegate.Remove(ctx, key)
}

// Clear forgets all recency state and clears the delegate.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Purge()
	c.canon.Clear()
	return c.delegate.Clear(ctx)
}

// touch records key as most recently used and returns the key that fell out
// of the window, if any. mu must be held.
func (c *Cache) touch(key *cachekey.Key) *cachekey.Key {
	if ck, ok := c.canon.Get(key); ok {
		c.order.Get(ck)
		return nil
	}

	var eldest *cachekey.Key
	if c.order.Len() >= c.size {
		eldest, _, _ = c.order.RemoveOldest()
		c.canon.Delete(eldest)
	}

	ck := key.Snapshot()
	c.canon.Set(ck, ck)
	c.order.Add(ck, struct{}{})
	return eldest
}

var _ cache.Cache = (*Cache)(nil)
