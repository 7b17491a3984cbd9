// Package transactional buffers cache writes for one unit of work and applies
// them on Commit.
//
// Reads go straight to the delegate and never see the unit of work's own
// buffered writes. Every miss is remembered so that Commit or Rollback can
// release the lock a blocking layer below took for it.
package transactional

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// Options configures a unit of work. Zero values are safe:
//   - Owner == "" => a fresh random UUID
//   - nil Logger  => slog.Default()
type Options struct {
	// Owner identifies the unit of work to blocking layers below.
	Owner  string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Owner == "" {
		o.Owner = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Cache is one unit of work's view of a delegate. It is not safe for
// concurrent use; each unit of work owns its own instance. The instance is
// reusable after Commit or Rollback.
type Cache struct {
	delegate cache.Cache
	owner    string
	logger   *slog.Logger

	clearOnCommit bool
	pending       cachekey.Map[any]
	missed        cachekey.Map[struct{}]
}

// New starts a unit of work over delegate.
func New(delegate cache.Cache, opt Options) *Cache {
	opt = opt.withDefaults()
	return &Cache{
		delegate: delegate,
		owner:    opt.Owner,
		logger:   opt.Logger,
	}
}

func (c *Cache) ID() string { return c.delegate.ID() }
func (c *Cache) Size() int  { return c.delegate.Size() }

// Owner returns the lock owner stamped on delegate calls.
func (c *Cache) Owner() string { return c.owner }

// Get reads through to the delegate and records a miss. After Clear it
// always reports a miss.
func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	v, err := c.delegate.Get(c.stamp(ctx), key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		c.missed.Set(key.Snapshot(), struct{}{})
	}
	if c.clearOnCommit {
		return nil, nil
	}
	return v, nil
}

// Put buffers the write; the last write for a key wins.
func (c *Cache) Put(_ context.Context, key *cachekey.Key, value any) error {
	c.pending.Set(key.Snapshot(), value)
	return nil
}

// Remove does nothing. Removal within a unit of work is expressed by Clear.
func (c *Cache) Remove(context.Context, *cachekey.Key) (any, error) {
	return nil, nil
}

// Clear discards buffered writes and clears the delegate on Commit. Reads
// report misses until then.
func (c *Cache) Clear(context.Context) error {
	c.clearOnCommit = true
	c.pending.Clear()
	return nil
}

// Commit applies the unit of work: clears the delegate if requested, flushes
// buffered writes, and puts a nil placeholder for every missed key that was
// not written so a blocking layer releases its lock.
//
// Commit keeps going after a failure so every missed key still gets its put.
// The failures are joined. The instance is reset either way.
func (c *Cache) Commit(ctx context.Context) error {
	defer c.reset()
	ctx = c.stamp(ctx)

	var errs []error
	if c.clearOnCommit {
		if err := c.delegate.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", c.delegate.ID(), err))
		}
	}
	c.pending.Range(func(k *cachekey.Key, v any) bool {
		if err := c.delegate.Put(ctx, k, v); err != nil {
			errs = append(errs, fmt.Errorf("put %s: %w", k, err))
		}
		return true
	})
	c.missed.Range(func(k *cachekey.Key, _ struct{}) bool {
		if c.pending.Has(k) {
			return true
		}
		if err := c.delegate.Put(ctx, k, nil); err != nil {
			errs = append(errs, fmt.Errorf("put %s: %w", k, err))
		}
		return true
	})
	return errors.Join(errs...)
}

// Rollback discards the unit of work and releases the lock held for every
// missed key by calling the delegate's Remove. Failures are logged and do
// not stop the remaining releases.
func (c *Cache) Rollback(ctx context.Context) {
	defer c.reset()
	ctx = c.stamp(ctx)

	c.missed.Range(func(k *cachekey.Key, _ struct{}) bool {
		if _, err := c.delegate.Remove(ctx, k); err != nil {
			c.logger.Warn("transactional: unexpected error while releasing the lock on rollback",
				slog.String("cache", c.delegate.ID()),
				slog.String("key", k.String()),
				slog.Any("err", err))
		}
		return true
	})
}

func (c *Cache) reset() {
	c.clearOnCommit = false
	c.pending.Clear()
	c.missed.Clear()
}

func (c *Cache) stamp(ctx context.Context) context.Context {
	return cache.WithOwner(ctx, c.owner)
}

var _ cache.Cache = (*Cache)(nil)
