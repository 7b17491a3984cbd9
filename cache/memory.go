package cache

import (
	"context"

	"github.com/IvanBrykalov/layercache/cachekey"
	"github.com/IvanBrykalov/layercache/internal/util"
)

// Memory is the primitive in-memory store at the bottom of a chain.
// It keeps every entry until removed or cleared. Safe for concurrent use.
type Memory struct {
	id     string
	shards []*shard
}

// NewMemory constructs a store for the cache region id.
// It panics if id is empty.
func NewMemory(id string, opt MemoryOptions) *Memory {
	if id == "" {
		panic("cache: region id must not be empty")
	}
	n := util.ShardCount(opt.Shards)
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{}
	}
	return &Memory{id: id, shards: shards}
}

// ID returns the region id.
func (c *Memory) ID() string { return c.id }

// Size returns the number of stored entries, placeholders included.
func (c *Memory) Size() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// Get returns the stored value, or nil.
func (c *Memory) Get(_ context.Context, key *cachekey.Key) (any, error) {
	return c.shard(key).get(key), nil
}

// Put stores value (nil stores a placeholder). The store keeps a snapshot of
// key, so the caller may keep updating it.
func (c *Memory) Put(_ context.Context, key *cachekey.Key, value any) error {
	c.shard(key).put(key.Snapshot(), value)
	return nil
}

// Remove deletes key and returns the previous value.
func (c *Memory) Remove(_ context.Context, key *cachekey.Key) (any, error) {
	return c.shard(key).remove(key), nil
}

// Clear removes every entry. Shards are cleared one at a time, so concurrent
// writers may land entries in shards that were already cleared.
func (c *Memory) Clear(context.Context) error {
	for _, s := range c.shards {
		s.clear()
	}
	return nil
}

func (c *Memory) shard(k *cachekey.Key) *shard {
	return c.shards[util.ShardIndex(k.Hash(), len(c.shards))]
}

var _ Cache = (*Memory)(nil)
