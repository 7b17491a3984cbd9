// Package cache defines the contract of a layered second-level result cache
// and its primitive in-memory store.
//
// Design
//
//   - Contract: every layer implements Cache (ID/Size/Get/Put/Remove/Clear).
//     A chain is built by wrapping one primitive store in decorators, each
//     owning exactly one delegate. Only the outermost layer is handed to callers.
//
//   - Keys: entries are addressed by *cachekey.Key, a composite identity built
//     from the statement, its parameters and environment. Equal keys built
//     independently address the same entry.
//
//   - Storage: Memory splits entries over shards, each protected by an RWMutex
//     and indexed with cachekey.Map. It never evicts on its own; bounds and
//     staleness are added by the policy decorators.
//
//   - Policies: policy/fifo, policy/lru and policy/weak bound the number of
//     entries; policy/scheduled flushes the whole region once an interval has
//     elapsed, checked lazily on access.
//
//   - Concurrency control: decorator/blocking lets only one caller fill a given
//     key at a time; decorator/transactional buffers writes for one unit of
//     work and publishes or discards them on commit/rollback.
//
//   - Lock owners: goroutines have no identity, so lock ownership travels in
//     the context (WithOwner). The transactional layer stamps a per-unit-of-work
//     owner on every call it makes into the chain.
//
//   - Metrics: decorators report Hit/Miss/Evict/Size through Metrics.
//     NoopMetrics is the default; metrics/prom exports them to Prometheus.
//
// Typical chain
//
//	store := cache.NewMemory("users", cache.MemoryOptions{})
//	bounded := lru.New(store, lru.Options{Size: 1024})
//	sched := scheduled.New(bounded, scheduled.Options{Interval: time.Hour})
//	shared := blocking.New(sched, blocking.Options{Timeout: 2 * time.Second})
//
//	// per unit of work
//	tx := transactional.New(shared, transactional.Options{})
//	k := cachekey.Of("users.byID", 42)
//	v, err := tx.Get(ctx, k)      // miss: the blocking lock for k is now held
//	_ = tx.Put(ctx, k, loadUser()) // buffered
//	err = tx.Commit(ctx)          // published; lock released
//
// The builder package assembles the standard chains from YAML or JSON
// properties.
package cache
