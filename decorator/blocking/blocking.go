// Package blocking implements a cache decorator that lets only one caller
// proceed past a miss for a given key.
//
// A Get takes the key's lock. On a hit the lock is released before returning;
// on a miss it stays held until the same owner calls Put or Release for that
// key. Other callers asking for the key wait, so an expensive value is
// computed once and everyone else reads it.
//
// Lock ownership is carried in the context (see cache.WithOwner). Get fails
// with cache.ErrNoLockOwner for a context without an owner, so no lock is ever
// held anonymously; Put, Remove and Release from such a context release
// nothing. cache.Load and the transactional layer stamp an owner themselves.
package blocking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// Options configures the decorator. Zero values are safe:
//   - Timeout <= 0 => wait indefinitely
//   - Shards <= 0  => auto, as for cache.MemoryOptions
//   - nil Logger   => slog.Default()
type Options struct {
	// Timeout bounds each lock acquisition.
	Timeout time.Duration
	// Shards sets the lock table's shard count.
	Shards int
	Logger *slog.Logger
}

// Cache is the blocking decorator.
type Cache struct {
	delegate cache.Cache
	timeout  time.Duration
	locks    *lockTable
	logger   *slog.Logger
}

// New wraps delegate.
func New(delegate cache.Cache, opt Options) *Cache {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Cache{
		delegate: delegate,
		timeout:  opt.Timeout,
		locks:    newLockTable(opt.Shards),
		logger:   opt.Logger,
	}
}

func (c *Cache) ID() string { return c.delegate.ID() }
func (c *Cache) Size() int  { return c.delegate.Size() }

// Timeout returns the configured acquisition timeout; zero means none.
func (c *Cache) Timeout() time.Duration { return c.timeout }

// Get acquires the key's lock and reads through. The lock is kept on a miss
// and released on a hit or a delegate error.
//
// Acquisition fails with a *cache.LockError of kind cache.ErrLockTimeout or
// cache.ErrLockInterrupted; the lock is not held in that case. A context
// without an owner fails with cache.ErrNoLockOwner.
func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	owner := cache.OwnerFrom(ctx)
	if owner == "" {
		return nil, fmt.Errorf("%w: key %s at the cache %s", cache.ErrNoLockOwner, key, c.delegate.ID())
	}
	if err := c.acquire(ctx, owner, key); err != nil {
		return nil, err
	}

	v, err := c.delegate.Get(ctx, key)
	if err != nil || v != nil {
		c.release(owner, key)
	}
	return v, err
}

// Put stores the value and releases the key's lock, even if the delegate
// fails.
func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	defer c.release(cache.OwnerFrom(ctx), key)
	return c.delegate.Put(ctx, key, value)
}

// Remove only releases the key's lock; the stored value is left untouched
// and nil is returned. It exists so callers that decide not to fill a missed
// key through the plain Cache contract still release the lock. Prefer
// Release when holding a *Cache.
func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	c.Release(ctx, key)
	return nil, nil
}

// Release frees the key's lock if the context's owner holds it; otherwise it
// does nothing.
func (c *Cache) Release(ctx context.Context, key *cachekey.Key) {
	c.release(cache.OwnerFrom(ctx), key)
}

// Clear clears the delegate. Held locks are unaffected.
func (c *Cache) Clear(ctx context.Context) error {
	return c.delegate.Clear(ctx)
}

func (c *Cache) acquire(ctx context.Context, owner string, key *cachekey.Key) error {
	switch c.locks.get(key).acquire(ctx, owner, c.timeout) {
	case waitOK:
		return nil
	case waitTimeout:
		c.logger.Debug("blocking: lock timeout",
			slog.String("cache", c.delegate.ID()),
			slog.String("key", key.String()),
			slog.Duration("timeout", c.timeout))
		return &cache.LockError{
			Kind:    cache.ErrLockTimeout,
			Key:     key.String(),
			CacheID: c.delegate.ID(),
			Timeout: c.timeout,
		}
	default:
		return &cache.LockError{
			Kind:    cache.ErrLockInterrupted,
			Key:     key.String(),
			CacheID: c.delegate.ID(),
			Err:     context.Cause(ctx),
		}
	}
}

func (c *Cache) release(owner string, key *cachekey.Key) {
	if l, ok := c.locks.lookup(key); ok {
		l.release(owner)
	}
}

var _ cache.Cache = (*Cache)(nil)
