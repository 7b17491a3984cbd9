// Package weak implements a cache decorator whose values may be reclaimed by
// the garbage collector once nothing else references them.
//
// Each stored value is boxed and held by the delegate only through a weak
// pointer. A small ring of strong references keeps the most recently read
// entries alive.
package weak

import (
	"container/list"
	"context"
	"runtime"
	"sync"
	"weak"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// DefaultHardLinks is the ring size used when Options.HardLinks is not positive.
const DefaultHardLinks = 256

// Options configures the decorator. Zero values are safe:
//   - HardLinks <= 0 => DefaultHardLinks
//   - nil Metrics    => NoopMetrics
type Options struct {
	HardLinks int
	Metrics   cache.Metrics
}

// entry boxes a value so the collector can track it independently of the
// value's own lifetime.
type entry struct {
	value any
}

// reference is what the delegate actually stores.
type reference struct {
	key *cachekey.Key
	ptr weak.Pointer[entry]
}

// Cache stores weakly held values in its delegate.
//
// Reclaimed entries are queued by a cleanup and removed from the delegate on
// the next operation. Size therefore over-counts until the queue is drained.
type Cache struct {
	delegate cache.Cache
	numHard  int
	metrics  cache.Metrics

	mu   sync.Mutex
	hard *list.List // Front() = most recently read; element.Value is *entry

	qmu   sync.Mutex
	queue []*reference
}

// New wraps delegate.
func New(delegate cache.Cache, opt Options) *Cache {
	if opt.HardLinks <= 0 {
		opt.HardLinks = DefaultHardLinks
	}
	return &Cache{
		delegate: delegate,
		numHard:  opt.HardLinks,
		metrics:  cache.MetricsOrNoop(opt.Metrics),
		hard:     list.New(),
	}
}

func (c *Cache) ID() string { return c.delegate.ID() }

// Size drains the reclamation queue and reports the delegate's size.
func (c *Cache) Size() int {
	_ = c.removeGarbage(context.Background())
	return c.delegate.Size()
}

// Put boxes value and stores a weak reference to it. A nil value is stored
// as is, since there is nothing for the collector to reclaim.
func (c *Cache) Put(ctx context.Context, key *cachekey.Key, value any) error {
	if err := c.removeGarbage(ctx); err != nil {
		return err
	}
	if value == nil {
		return c.delegate.Put(ctx, key, nil)
	}
	e := &entry{value: value}
	ref := &reference{key: key.Snapshot(), ptr: weak.Make(e)}
	runtime.AddCleanup(e, c.enqueue, ref)
	return c.delegate.Put(ctx, key, ref)
}

// Get returns the value if it is still alive and pins it in the hard ring.
// A reclaimed value is removed from the delegate and reported as a miss.
func (c *Cache) Get(ctx context.Context, key *cachekey.Key) (any, error) {
	if err := c.removeGarbage(ctx); err != nil {
		return nil, err
	}
	v, err := c.delegate.Get(ctx, key)
	if err != nil || v == nil {
		return nil, err
	}
	ref, ok := v.(*reference)
	if !ok {
		return v, nil
	}

	e := ref.ptr.Value()
	if e == nil {
		if _, err := c.delegate.Remove(ctx, key); err != nil {
			return nil, err
		}
		c.metrics.Evict(cache.EvictReclaimed)
		return nil, nil
	}

	c.mu.Lock()
	c.hard.PushFront(e)
	if c.hard.Len() > c.numHard {
		c.hard.Remove(c.hard.Back())
	}
	c.mu.Unlock()

	return e.value, nil
}

// Remove drops key and returns its value if it was still alive.
func (c *Cache) Remove(ctx context.Context, key *cachekey.Key) (any, error) {
	if err := c.removeGarbage(ctx); err != nil {
		return nil, err
	}
	v, err := c.delegate.Remove(ctx, key)
	if err != nil || v == nil {
		return nil, err
	}
	if ref, ok := v.(*reference); ok {
		if e := ref.ptr.Value(); e != nil {
			return e.value, nil
		}
		return nil, nil
	}
	return v, nil
}

// Clear empties the hard ring and the delegate.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.hard.Init()
	c.mu.Unlock()

	if err := c.removeGarbage(ctx); err != nil {
		return err
	}
	return c.delegate.Clear(ctx)
}

// enqueue runs on the cleanup goroutine after ref's entry is reclaimed.
func (c *Cache) enqueue(ref *reference) {
	c.qmu.Lock()
	c.queue = append(c.queue, ref)
	c.qmu.Unlock()
}

// removeGarbage removes queued keys whose delegate entry is still the
// reclaimed reference; later puts of the same key are left alone.
func (c *Cache) removeGarbage(ctx context.Context) error {
	c.qmu.Lock()
	queue := c.queue
	c.queue = nil
	c.qmu.Unlock()

	for _, ref := range queue {
		cur, err := c.delegate.Get(ctx, ref.key)
		if err != nil {
			return err
		}
		if cur != any(ref) {
			continue
		}
		if _, err := c.delegate.Remove(ctx, ref.key); err != nil {
			return err
		}
		c.metrics.Evict(cache.EvictReclaimed)
	}
	return nil
}

var _ cache.Cache = (*Cache)(nil)
