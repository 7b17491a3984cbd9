package cachekey

import (
	"errors"
	"strconv"
	"strings"

	"github.com/IvanBrykalov/layercache/internal/util"
)

const (
	defaultMultiplier = 37
	defaultHashCode   = 17
)

// ErrCloneUnsupported is returned by Clone for keys that cannot be duplicated.
var ErrCloneUnsupported = errors.New("cachekey: clone unsupported")

// Hashable may be implemented by contributors that want to supply their own
// hash code instead of the default one derived from their value.
type Hashable = util.Hasher

// Equaler may be implemented by contributors that want to control positional
// equality. It is consulted before the default comparison.
type Equaler interface {
	Equal(other any) bool
}

// Key is a composite, order-sensitive cache identity.
// The zero value is not ready for use; call New.
type Key struct {
	multiplier int32
	hashcode   int32
	checksum   int64
	count      int
	updates    []any
	null       bool
}

// Null is the distinguished "no key" value. It never changes: Update panics and
// Clone returns ErrCloneUnsupported.
var Null = &Key{multiplier: defaultMultiplier, hashcode: defaultHashCode, null: true}

// New returns an empty key.
func New() *Key {
	return &Key{
		multiplier: defaultMultiplier,
		hashcode:   defaultHashCode,
	}
}

// Of returns a key built from values in the given order.
func Of(values ...any) *Key {
	k := New()
	k.UpdateAll(values...)
	return k
}

// Update appends one contributor and folds its hash into the key.
func (k *Key) Update(v any) {
	if k.null {
		panic("cachekey: update of the Null key")
	}
	base := util.Hash32(v)

	k.count++
	k.checksum += int64(base)

	base *= int32(k.count)
	k.hashcode = k.multiplier*k.hashcode + base

	k.updates = append(k.updates, v)
}

// UpdateAll applies Update to each value in order.
func (k *Key) UpdateAll(values ...any) {
	for _, v := range values {
		k.Update(v)
	}
}

// UpdateCount returns the number of contributors folded into the key.
func (k *Key) UpdateCount() int { return len(k.updates) }

// Hash returns the accumulated hash code.
func (k *Key) Hash() int32 { return k.hashcode }

// Checksum returns the sum of the contributor hash codes.
func (k *Key) Checksum() int64 { return k.checksum }

// IsNull reports whether k is the Null key.
func (k *Key) IsNull() bool { return k != nil && k.null }

// Equal reports whether k and o identify the same entry: equal hash, checksum
// and count, and pairwise equal contributors in the same positions.
func (k *Key) Equal(o *Key) bool {
	if k == o {
		return true
	}
	if k == nil || o == nil {
		return false
	}
	if k.null != o.null {
		return false
	}
	if k.hashcode != o.hashcode || k.checksum != o.checksum || k.count != o.count {
		return false
	}
	if len(k.updates) != len(o.updates) {
		return false
	}
	for i := range k.updates {
		if !equalValues(k.updates[i], o.updates[i]) {
			return false
		}
	}
	return true
}

// String renders hash:checksum:contributor1:contributor2:... for diagnostics.
// It is not a parseable format.
func (k *Key) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(k.hashcode), 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(k.checksum, 10))
	for _, v := range k.updates {
		b.WriteByte(':')
		b.WriteString(formatValue(v))
	}
	return b.String()
}

// Clone returns an independent copy of k. The contributor slice is copied, so
// updating the clone never affects k. Contributors themselves are shared.
func (k *Key) Clone() (*Key, error) {
	if k.null {
		return nil, ErrCloneUnsupported
	}
	c := *k
	c.updates = make([]any, len(k.updates))
	copy(c.updates, k.updates)
	return &c, nil
}

// Snapshot is Clone for keys about to be stored: the result is safe to keep
// as a map key even if the caller keeps updating k. Null is immutable and is
// returned as is.
func (k *Key) Snapshot() *Key {
	if k.null {
		return k
	}
	c, _ := k.Clone()
	return c
}
