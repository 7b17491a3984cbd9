package synchronized

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// unsafeCache is a plain map wrapper that detects overlapping calls.
type unsafeCache struct {
	active  atomic.Int32
	overlap atomic.Bool
	data    cachekey.Map[any]
}

func (u *unsafeCache) enter() func() {
	if u.active.Add(1) > 1 {
		u.overlap.Store(true)
	}
	return func() { u.active.Add(-1) }
}

func (u *unsafeCache) ID() string { return "unsafe" }

func (u *unsafeCache) Size() int {
	defer u.enter()()
	return u.data.Len()
}

func (u *unsafeCache) Get(_ context.Context, k *cachekey.Key) (any, error) {
	defer u.enter()()
	v, _ := u.data.Get(k)
	return v, nil
}

func (u *unsafeCache) Put(_ context.Context, k *cachekey.Key, v any) error {
	defer u.enter()()
	u.data.Set(k, v)
	return nil
}

func (u *unsafeCache) Remove(_ context.Context, k *cachekey.Key) (any, error) {
	defer u.enter()()
	v, _ := u.data.Delete(k)
	return v, nil
}

func (u *unsafeCache) Clear(context.Context) error {
	defer u.enter()()
	u.data.Clear()
	return nil
}

func TestSynchronized_SerializesDelegate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &unsafeCache{}
	c := New(inner)
	assert.Equal(t, "unsafe", c.ID())

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				k := cachekey.Of(w, i%16)
				if err := c.Put(ctx, k, i); err != nil {
					return err
				}
				if _, err := c.Get(ctx, k); err != nil {
					return err
				}
				if i%50 == 0 {
					if _, err := c.Remove(ctx, k); err != nil {
						return err
					}
					_ = c.Size()
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.False(t, inner.overlap.Load(), "delegate calls overlapped")

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Size())
}

func TestSynchronized_PassThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := New(cache.NewMemory("sync", cache.MemoryOptions{}))

	require.NoError(t, c.Put(ctx, cachekey.Of("a"), 1))
	v, err := c.Get(ctx, cachekey.Of("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	old, err := c.Remove(ctx, cachekey.Of("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, old)
}
