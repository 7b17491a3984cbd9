package cachekey

type entry[V any] struct {
	key *Key
	val V
}

// Map is a hash-bucketed map keyed by *Key using Key.Equal for identity.
// The zero value is an empty map ready to use. Not safe for concurrent use.
//
// Stored keys must not be updated afterwards; doing so strands the entry in
// the wrong bucket.
type Map[V any] struct {
	buckets map[int32][]entry[V]
	n       int
}

// NewMap returns an empty map with room for roughly size keys.
func NewMap[V any](size int) *Map[V] {
	return &Map[V]{buckets: make(map[int32][]entry[V], size)}
}

// Get returns the value stored for k.
func (m *Map[V]) Get(k *Key) (V, bool) {
	for _, e := range m.buckets[k.Hash()] {
		if e.key.Equal(k) {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether k is present.
func (m *Map[V]) Has(k *Key) bool {
	_, ok := m.Get(k)
	return ok
}

// Set stores v for k, replacing any value stored under an equal key.
// It reports whether a value was replaced.
func (m *Map[V]) Set(k *Key, v V) bool {
	if m.buckets == nil {
		m.buckets = make(map[int32][]entry[V])
	}
	h := k.Hash()
	b := m.buckets[h]
	for i := range b {
		if b[i].key.Equal(k) {
			b[i].val = v
			return true
		}
	}
	m.buckets[h] = append(b, entry[V]{key: k, val: v})
	m.n++
	return false
}

// Delete removes k and returns the value it held.
func (m *Map[V]) Delete(k *Key) (V, bool) {
	h := k.Hash()
	b := m.buckets[h]
	for i := range b {
		if !b[i].key.Equal(k) {
			continue
		}
		v := b[i].val
		last := len(b) - 1
		b[i] = b[last]
		b[last] = entry[V]{}
		if last == 0 {
			delete(m.buckets, h)
		} else {
			m.buckets[h] = b[:last]
		}
		m.n--
		return v, true
	}
	var zero V
	return zero, false
}

// Len returns the number of keys.
func (m *Map[V]) Len() int { return m.n }

// Clear removes every key.
func (m *Map[V]) Clear() {
	clear(m.buckets)
	m.n = 0
}

// Range calls fn for each key/value pair until fn returns false.
// Iteration order is unspecified. fn must not modify the map.
func (m *Map[V]) Range(fn func(k *Key, v V) bool) {
	for _, b := range m.buckets {
		for _, e := range b {
			if !fn(e.key, e.val) {
				return
			}
		}
	}
}
