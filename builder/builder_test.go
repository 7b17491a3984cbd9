package builder

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
	"github.com/IvanBrykalov/layercache/decorator/blocking"
	"github.com/IvanBrykalov/layercache/decorator/stats"
	"github.com/IvanBrykalov/layercache/policy/lru"
)

const sampleYAML = `
caches:
  users:
    eviction: fifo
    size: 2
    blocking: true
    timeout: 250ms
    stats: true
  reports:
    eviction: none
    flush_interval: 1m
  sessions:
    eviction: weak
    hard_links: 8
`

type fakeClock struct{ t atomic.Int64 }

func (f *fakeClock) NowUnixNano() int64  { return f.t.Load() }
func (f *fakeClock) add(d time.Duration) { f.t.Add(int64(d)) }

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestParse_YAML(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"reports", "sessions", "users"}, cfg.IDs())

	users := cfg.Caches["users"]
	assert.Equal(t, "fifo", users.Eviction)
	assert.Equal(t, 2, users.Size)
	assert.True(t, users.Blocking)
	assert.Equal(t, 250*time.Millisecond, users.Timeout)
	assert.Equal(t, time.Minute, cfg.Caches["reports"].FlushInterval)
	assert.Equal(t, 8, cfg.Caches["sessions"].HardLinks)
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`{"caches":{"users":{"size":16,"blocking":true,"timeout":"1s"}}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Caches["users"].Size)
	assert.Equal(t, time.Second, cfg.Caches["users"].Timeout)
}

func TestParse_UnknownProperty(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("caches:\n  users:\n    evction: lru\n"), FormatYAML)
	require.ErrorIs(t, err, cache.ErrUnknownProperty)
	assert.Contains(t, err.Error(), `"evction"`)
	assert.Contains(t, err.Error(), "users")

	_, err = Parse([]byte("regions:\n  x: 1\n"), FormatYAML)
	require.ErrorIs(t, err, cache.ErrUnknownProperty)
}

func TestParse_BadInput(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("caches: ["), FormatYAML)
	assert.ErrorIs(t, err, ErrParseFailed)

	_, err = Parse(nil, Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	cfg, err := Parse(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.Caches)
}

func TestBuild_UnknownEviction(t *testing.T) {
	t.Parallel()

	_, err := Build(Config{Caches: map[string]Region{"users": {Eviction: "mru"}}}, quiet())
	require.ErrorIs(t, err, ErrUnknownEviction)
	assert.Contains(t, err.Error(), "users")
}

// The outermost layer follows the fixed decorator order.
func TestBuild_ChainOrder(t *testing.T) {
	t.Parallel()

	caches, err := Load([]byte(sampleYAML), FormatYAML, quiet())
	require.NoError(t, err)
	require.Len(t, caches, 3)

	users, ok := caches["users"].(*blocking.Cache)
	require.True(t, ok, "blocking must be outermost")
	assert.Equal(t, 250*time.Millisecond, users.Timeout())
	assert.Equal(t, "users", users.ID())

	dflt, err := Build(Config{Caches: map[string]Region{"plain": {}}}, quiet())
	require.NoError(t, err)
	_, ok = dflt["plain"].(*lru.Cache)
	assert.True(t, ok, "lru is the default eviction")

	withStats, err := Build(Config{Caches: map[string]Region{"s": {Stats: true}}}, quiet())
	require.NoError(t, err)
	_, ok = withStats["s"].(*stats.Cache)
	assert.True(t, ok)
}

// A fifo region of size 2 keeps only the last two puts.
func TestBuild_FIFOBehaviour(t *testing.T) {
	t.Parallel()

	ctx := cache.WithOwner(context.Background(), "fifo-test")
	caches, err := Load([]byte(sampleYAML), FormatYAML, quiet())
	require.NoError(t, err)
	users := caches["users"]

	for i := 0; i < 3; i++ {
		_, err := users.Get(ctx, cachekey.Of(i))
		require.NoError(t, err)
		require.NoError(t, users.Put(ctx, cachekey.Of(i), i))
	}
	assert.Equal(t, 2, users.Size())
	v, err := users.Get(ctx, cachekey.Of(0))
	require.NoError(t, err)
	assert.Nil(t, v)
	users.(*blocking.Cache).Release(ctx, cachekey.Of(0))
}

func TestBuild_ScheduledUsesClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &fakeClock{}
	caches, err := Load([]byte(sampleYAML), FormatYAML, quiet(), WithClock(clk))
	require.NoError(t, err)
	reports := caches["reports"]

	require.NoError(t, reports.Put(ctx, cachekey.Of("q"), "rows"))
	clk.add(2 * time.Minute)
	v, err := reports.Get(ctx, cachekey.Of("q"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

type idMetrics struct {
	cache.NoopMetrics
	hits *atomic.Int64
}

func (m idMetrics) Hit() { m.hits.Add(1) }

func TestBuild_MetricsPerRegion(t *testing.T) {
	t.Parallel()

	ctx := cache.WithOwner(context.Background(), "metrics-test")
	var mu sync.Mutex
	seen := map[string]*atomic.Int64{}
	caches, err := Load([]byte(sampleYAML), FormatYAML, quiet(), WithMetrics(func(id string) cache.Metrics {
		mu.Lock()
		defer mu.Unlock()
		seen[id] = &atomic.Int64{}
		return idMetrics{hits: seen[id]}
	}))
	require.NoError(t, err)
	assert.Len(t, seen, 3)

	users := caches["users"]
	_, err = users.Get(ctx, cachekey.Of("a"))
	require.NoError(t, err)
	require.NoError(t, users.Put(ctx, cachekey.Of("a"), 1))
	_, err = users.Get(ctx, cachekey.Of("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), seen["users"].Load())
}

// A custom store is wrapped in a synchronized layer.
func TestBuild_CustomStore(t *testing.T) {
	t.Parallel()

	var built []string
	caches, err := Build(Config{Caches: map[string]Region{"x": {Eviction: "none"}}}, quiet(),
		WithStore(func(id string) cache.Cache {
			built = append(built, id)
			return cache.NewMemory(id, cache.MemoryOptions{})
		}))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, built)
	assert.Equal(t, "x", caches["x"].ID())
}

func TestBuild_LogsChain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := Load([]byte(sampleYAML), FormatYAML, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `chain="store -> fifo -> stats -> blocking"`)
}
