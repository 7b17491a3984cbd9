package cache

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/layercache/cachekey"
)

// benchmarkMix exercises a read/write mix against a warm store.
// Keys are prebuilt so the benchmark measures lookups, not key construction.
func benchmarkMix(b *testing.B, readsPct int) {
	ctx := context.Background()
	c := NewMemory("bench", MemoryOptions{})

	const n = 1 << 14
	keys := make([]*cachekey.Key, n)
	for i := range keys {
		keys[i] = cachekey.Of("stmt", i)
		if i%2 == 0 {
			_ = c.Put(ctx, keys[i], i)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := keys[i&(n-1)]
			if r.Intn(100) < readsPct {
				_, _ = c.Get(ctx, k)
			} else {
				_ = c.Put(ctx, k, i)
			}
			i++
		}
	})
}

func BenchmarkMemory_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkMemory_50r50w(b *testing.B) { benchmarkMix(b, 50) }

func BenchmarkKey_Build(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = cachekey.Of("users.byID", i, 0, 100, "prod")
	}
}
