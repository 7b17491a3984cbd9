package cache

import "time"

// EvictReason explains why an entry was removed by a policy layer.
type EvictReason int

const (
	// EvictPolicy: removed by a recency policy (LRU).
	EvictPolicy EvictReason = iota
	// EvictCapacity: removed to keep an insertion bound (FIFO).
	EvictCapacity
	// EvictExpired: dropped by a scheduled flush of the whole region.
	EvictExpired
	// EvictReclaimed: the value was reclaimed by the garbage collector.
	EvictReclaimed
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	case EvictReclaimed:
		return "reclaimed"
	default:
		return "policy"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowUnixNano returns time.Now in UnixNano.
func (SystemClock) NowUnixNano() int64 { return time.Now().UnixNano() }

// MemoryOptions configures the primitive store. Zero values are safe:
//   - Shards <= 0 => auto (≈ 2*GOMAXPROCS, rounded up to a power of two)
type MemoryOptions struct {
	// Shards defines the number of shards.
	Shards int
}
