// Package policy groups the eviction and staleness decorators.
//
// Each subpackage wraps a cache.Cache and bounds what it keeps:
//
//   - fifo: at most Size puts are tracked; the oldest-inserted key is evicted first.
//   - lru: at most Size keys are tracked; the least recently used key is evicted.
//   - weak: values are held through weak pointers and may be reclaimed by the
//     garbage collector, except for the HardLinks most recently read values.
//   - scheduled: the whole region is flushed once Interval has elapsed since
//     the last clear, checked lazily on access.
//
// Policies sit innermost in a chain, closest to the primitive store. Each
// serializes its own bookkeeping, so they are safe for concurrent use as long
// as their delegate is.
package policy
