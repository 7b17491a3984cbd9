package transactional

import (
	"context"
	"errors"

	"github.com/IvanBrykalov/layercache/cache"
	"github.com/IvanBrykalov/layercache/cachekey"
)

// Manager tracks one Cache per delegate for a unit of work spanning several
// cache regions. All of them share one lock owner. Not safe for concurrent use.
type Manager struct {
	opt    Options
	caches map[cache.Cache]*Cache
}

// NewManager starts a unit of work.
func NewManager(opt Options) *Manager {
	return &Manager{
		opt:    opt.withDefaults(),
		caches: make(map[cache.Cache]*Cache),
	}
}

// Owner returns the lock owner shared by the unit of work's caches.
func (m *Manager) Owner() string { return m.opt.Owner }

// Cache returns the unit of work's view of c, creating it on first use.
func (m *Manager) Cache(c cache.Cache) *Cache {
	tc, ok := m.caches[c]
	if !ok {
		tc = New(c, m.opt)
		m.caches[c] = tc
	}
	return tc
}

func (m *Manager) Get(ctx context.Context, c cache.Cache, key *cachekey.Key) (any, error) {
	return m.Cache(c).Get(ctx, key)
}

func (m *Manager) Put(ctx context.Context, c cache.Cache, key *cachekey.Key, value any) error {
	return m.Cache(c).Put(ctx, key, value)
}

func (m *Manager) Clear(ctx context.Context, c cache.Cache) error {
	return m.Cache(c).Clear(ctx)
}

// Commit commits every cache touched by the unit of work and joins failures.
func (m *Manager) Commit(ctx context.Context) error {
	var errs []error
	for _, tc := range m.caches {
		if err := tc.Commit(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rollback rolls back every cache touched by the unit of work.
func (m *Manager) Rollback(ctx context.Context) {
	for _, tc := range m.caches {
		tc.Rollback(ctx)
	}
}
