package cache

import (
	"context"

	"github.com/IvanBrykalov/layercache/cachekey"
)

// Cache is the capability contract shared by the primitive store and every
// decorator stacked on top of it.
//
// Values are opaque. A nil value returned by Get with a nil error is a miss;
// Put with a nil value stores a placeholder that also reads back as a miss.
// Decorators document where their semantics differ from a plain map (see
// blocking.Cache.Remove).
type Cache interface {
	// ID identifies the cache region. Decorators report their delegate's ID.
	ID() string

	// Size returns the number of stored entries. Approximate once eviction or
	// staleness decorators are in the chain.
	Size() int

	// Get returns the value stored for key, or nil on a miss.
	Get(ctx context.Context, key *cachekey.Key) (any, error)

	// Put stores value for key.
	Put(ctx context.Context, key *cachekey.Key, value any) error

	// Remove deletes key and returns the previous value, if known.
	Remove(ctx context.Context, key *cachekey.Key) (any, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
