package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/IvanBrykalov/layercache/cachekey"
)

// Error kinds. Use errors.Is to classify errors returned by the chain.
var (
	// ErrLockTimeout is returned when a blocking lock is not acquired within
	// the configured timeout. The caller may retry or fail the unit of work.
	ErrLockTimeout = errors.New("cache: lock timeout")

	// ErrLockInterrupted is returned when the context is cancelled while
	// waiting for a blocking lock. Not retried.
	ErrLockInterrupted = errors.New("cache: lock wait interrupted")

	// ErrNoLockOwner is returned by a blocking layer asked to lock a key for a
	// context that carries no owner (see WithOwner).
	ErrNoLockOwner = errors.New("cache: no lock owner in context")

	// ErrUnknownProperty marks a wiring-time misconfiguration.
	ErrUnknownProperty = errors.New("cache: unknown configuration property")

	// ErrCloneUnsupported is returned when a key cannot be duplicated.
	ErrCloneUnsupported = cachekey.ErrCloneUnsupported
)

// LockError describes a failed blocking lock acquisition.
// It unwraps to its Kind (ErrLockTimeout or ErrLockInterrupted) and to the
// underlying cause, if any (e.g. context.Canceled).
type LockError struct {
	Kind    error
	Key     string
	CacheID string
	Timeout time.Duration
	Err     error
}

func (e *LockError) Error() string {
	if errors.Is(e.Kind, ErrLockTimeout) {
		return fmt.Sprintf("cache: couldn't get a lock in %s for the key %s at the cache %s",
			e.Timeout, e.Key, e.CacheID)
	}
	if e.Err != nil {
		return fmt.Sprintf("cache: interrupted while waiting for the lock on key %s at the cache %s: %v",
			e.Key, e.CacheID, e.Err)
	}
	return fmt.Sprintf("cache: interrupted while waiting for the lock on key %s at the cache %s",
		e.Key, e.CacheID)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *LockError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
