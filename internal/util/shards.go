package util

import "runtime"

// ReasonableShardCount picks a practical default shard count based on CPU
// parallelism. Heuristic: nextPow2(2*GOMAXPROCS), clamped to [1..256].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > 256 {
		n = 256
	}
	return n
}

// ShardCount normalizes a configured shard count: non-positive values pick
// ReasonableShardCount, anything else is rounded up to a power of two.
func ShardCount(n int) int {
	if n <= 0 {
		return ReasonableShardCount()
	}
	return int(NextPow2(uint64(n)))
}

// ShardIndex maps a 32-bit key hash to a shard index.
// The hash is spread first so that keys differing only in high bits
// do not pile up in one shard.
func ShardIndex(hash int32, shards int) int {
	if shards <= 1 {
		return 0
	}
	h := uint32(hash)
	h ^= h >> 16
	h *= 0x45d9f3b
	h ^= h >> 16
	if IsPowerOfTwo(uint64(shards)) {
		return int(h & uint32(shards-1))
	}
	return int(h % uint32(shards))
}
