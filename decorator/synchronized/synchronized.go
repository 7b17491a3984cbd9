// Package synchronized serializes every operation on a delegate behind one
// mutex, for delegates that are not safe for concurrent use.
package synchronized

import (
	"context"
	"sync"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// Cache guards its delegate with a single mutex.
//
// Do not place it above a blocking layer: a waiter would hold the mutex and
// stall the whole region.
type Cache struct {
	mu       sync.Mutex
	delegate cache.Cache
}

// New wraps delegate.
func New(delegate cache.Cache) *Cache {
	return &Cache{delegate: delegate}
}

func (c *Cache) ID() string { return c.delegate.ID() }

func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Size()
}

func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Get(ctx, key)
}

func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Put(ctx, key, value)
}

func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Remove(ctx, key)
}

func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Clear(ctx)
}

var _ cache.Cache = (*Cache)(nil)
