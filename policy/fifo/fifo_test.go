package fifo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cache/cachemock"
	"github.com/IvanBrykalov/layercache/cachekey"
)

type countingMetrics struct {
	cache.NoopMetrics
	evicts map[cache.EvictReason]int
}

func (m *countingMetrics) Evict(r cache.EvictReason) { m.evicts[r]++ }

// Inserting N+1 distinct keys keeps N; the first-inserted key is gone.
func TestFIFO_BoundEvictsFirstInserted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := &countingMetrics{evicts: map[cache.EvictReason]int{}}
	c := New(cache.NewMemory("fifo", cache.MemoryOptions{}), Options{Size: 3, Metrics: m})

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Put(ctx, cachekey.Of(i), i))
	}

	assert.Equal(t, 3, c.Size())
	v, err := c.Get(ctx, cachekey.Of(0))
	require.NoError(t, err)
	assert.Nil(t, v, "first-inserted key must be evicted")
	for i := 1; i < 4; i++ {
		v, _ := c.Get(ctx, cachekey.Of(i))
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 1, m.evicts[cache.EvictCapacity])
}

// Eviction goes through the delegate's Remove before the new value is stored.
func TestFIFO_EvictionRemovesFromDelegate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	delegate := cachemock.NewMockCache(ctrl)
	c := New(delegate, Options{Size: 2})
	ctx := context.Background()

	k1, k2, k3 := cachekey.Of("a"), cachekey.Of("b"), cachekey.Of("c")
	gomock.InOrder(
		delegate.EXPECT().Put(ctx, k1, 1).Return(nil),
		delegate.EXPECT().Put(ctx, k2, 2).Return(nil),
		delegate.EXPECT().Remove(ctx, k1).Return(1, nil),
		delegate.EXPECT().Put(ctx, k3, 3).Return(nil),
	)

	require.NoError(t, c.Put(ctx, k1, 1))
	require.NoError(t, c.Put(ctx, k2, 2))
	require.NoError(t, c.Put(ctx, k3, 3))
}

// The bound counts puts, not distinct keys: re-putting a key appends it again.
func TestFIFO_RepeatedPutsCountTowardBound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := New(cache.NewMemory("fifo", cache.MemoryOptions{}), Options{Size: 2})

	require.NoError(t, c.Put(ctx, cachekey.Of("a"), 1))
	require.NoError(t, c.Put(ctx, cachekey.Of("a"), 2))
	require.NoError(t, c.Put(ctx, cachekey.Of("b"), 3))

	// The oldest "a" entry was trimmed, taking the key with it.
	v, _ := c.Get(ctx, cachekey.Of("a"))
	assert.Nil(t, v)
	v, _ = c.Get(ctx, cachekey.Of("b"))
	assert.Equal(t, 3, v)
}

func TestFIFO_ClearResetsQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := New(cache.NewMemory("fifo", cache.MemoryOptions{}), Options{Size: 2})

	require.NoError(t, c.Put(ctx, cachekey.Of("a"), 1))
	require.NoError(t, c.Put(ctx, cachekey.Of("b"), 2))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Size())

	require.NoError(t, c.Put(ctx, cachekey.Of("c"), 3))
	require.NoError(t, c.Put(ctx, cachekey.Of("d"), 4))
	assert.Equal(t, 2, c.Size())
}

// Delegate failures propagate unchanged.
func TestFIFO_DelegateErrorPropagates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	delegate := cachemock.NewMockCache(ctrl)
	c := New(delegate, Options{Size: 1})
	ctx := context.Background()
	boom := errors.New("boom")

	delegate.EXPECT().Put(ctx, gomock.Any(), gomock.Any()).Return(nil)
	delegate.EXPECT().Remove(ctx, gomock.Any()).Return(nil, boom)

	require.NoError(t, c.Put(ctx, cachekey.Of(1), 1))
	assert.ErrorIs(t, c.Put(ctx, cachekey.Of(2), 2), boom)
}

func TestFIFO_DefaultSize(t *testing.T) {
	t.Parallel()

	c := New(cache.NewMemory("fifo", cache.MemoryOptions{}), Options{})
	assert.Equal(t, DefaultSize, c.size)
}

// The queue tracks a copy of the key, so mutating the caller's key after Put
// still evicts the entry that was stored.
func TestFIFO_TrackedKeyIsACopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := New(cache.NewMemory("fifo", cache.MemoryOptions{}), Options{Size: 1})

	k := cachekey.Of("a")
	require.NoError(t, c.Put(ctx, k, 1))
	k.Update("mutated")
	require.NoError(t, c.Put(ctx, cachekey.Of("b"), 2))

	v, err := c.Get(ctx, cachekey.Of("a"))
	require.NoError(t, err)
	assert.Nil(t, v, "the first key must have been evicted")
	assert.Equal(t, 1, c.Size())
}
