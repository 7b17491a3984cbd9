package cache

import (
	"sync"

	"github.com/IvanBrykalov/layercache/cachekey"
)

// shard is an independent partition of the store with its own lock.
type shard struct {
	mu sync.RWMutex
	m  cachekey.Map[any]
}

func (s *shard) get(k *cachekey.Key) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.m.Get(k)
	return v
}

func (s *shard) put(k *cachekey.Key, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Set(k, v)
}

func (s *shard) remove(k *cachekey.Key) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.m.Delete(k)
	return v
}

func (s *shard) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Len()
}

func (s *shard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Clear()
}
