package blocking

import (
	"context"
	"sync"
	"time"

	"github.com/IvanBrykalov/layercache/cachekey"
	"github.com/IvanBrykalov/layercache/internal/util"
)

// keyLock is a mutex whose acquisition can be abandoned. A token in sem means
// the lock is taken; owner and held are only meaningful once the token is in.
type keyLock struct {
	sem chan struct{}

	mu    sync.Mutex
	owner string
	held  bool
}

func newKeyLock() *keyLock {
	return &keyLock{sem: make(chan struct{}, 1)}
}

// waitResult tells why an acquisition was abandoned.
type waitResult int

const (
	waitOK waitResult = iota
	waitTimeout
	waitCancelled
)

// acquire takes the lock for owner, which must not be empty. An owner that
// already holds the lock returns immediately.
func (l *keyLock) acquire(ctx context.Context, owner string, timeout time.Duration) waitResult {
	if ctx.Err() != nil {
		return waitCancelled
	}

	l.mu.Lock()
	if l.held {
		if l.owner == owner {
			l.mu.Unlock()
			return waitOK
		}
	} else {
		select {
		case l.sem <- struct{}{}:
			l.owner, l.held = owner, true
			l.mu.Unlock()
			return waitOK
		default:
		}
	}
	l.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case l.sem <- struct{}{}:
	case <-expired:
		return waitTimeout
	case <-ctx.Done():
		return waitCancelled
	}

	l.mu.Lock()
	l.owner, l.held = owner, true
	l.mu.Unlock()
	return waitOK
}

// release frees the lock if owner holds it, and is a no-op otherwise. The
// empty owner never holds a lock.
func (l *keyLock) release(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if owner == "" || !l.held || l.owner != owner {
		return false
	}
	l.owner, l.held = "", false
	<-l.sem
	return true
}

type lockShard struct {
	mu    sync.Mutex
	locks cachekey.Map[*keyLock]
}

// lockTable maps keys to their locks. Entries are created on first use and
// never removed.
type lockTable struct {
	shards []*lockShard
}

func newLockTable(shards int) *lockTable {
	n := util.ShardCount(shards)
	t := &lockTable{shards: make([]*lockShard, n)}
	for i := range t.shards {
		t.shards[i] = &lockShard{}
	}
	return t
}

func (t *lockTable) shard(key *cachekey.Key) *lockShard {
	return t.shards[util.ShardIndex(key.Hash(), len(t.shards))]
}

// get returns the lock for key, creating it if needed.
func (t *lockTable) get(key *cachekey.Key) *keyLock {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks.Get(key); ok {
		return l
	}
	l := newKeyLock()
	s.locks.Set(key.Snapshot(), l)
	return l
}

// lookup returns the lock for key without creating one.
func (t *lockTable) lookup(key *cachekey.Key) (*keyLock, bool) {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks.Get(key)
}

// len reports how many locks the table holds.
func (t *lockTable) len() int {
	n := 0
	for _, s := range t.shards {
		s.mu.Lock()
		n += s.locks.Len()
		s.mu.Unlock()
	}
	return n
}
