package cachekey

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collider hashes to a fixed code regardless of its name, which lets tests
// build keys that agree on hash, checksum and count but differ in content.
type collider struct {
	name string
	code int32
}

func (c collider) HashCode() int32 { return c.code }

// Same contributors in the same order always produce equal keys.
func TestKey_Deterministic(t *testing.T) {
	t.Parallel()

	values := []any{"users.byID", 42, int64(7), nil, []string{"a", "b"}, [2]int{3, 4}, 1.5, true}
	a := Of(values...)
	b := New()
	b.UpdateAll(values...)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Checksum(), b.Checksum())
	assert.Equal(t, len(values), a.UpdateCount())
}

// The polynomial accumulation: hash = hash*37 + contributorHash*count, seeded with 17.
func TestKey_HashFormula(t *testing.T) {
	t.Parallel()

	k := Of(1, 2)
	assert.Equal(t, int32((17*37+1*1)*37+2*2), k.Hash())
	assert.Equal(t, int64(3), k.Checksum())
}

// Reordering the same contributors changes the hash and breaks equality.
func TestKey_OrderSensitive(t *testing.T) {
	t.Parallel()

	a := Of(1, 2)
	b := Of(2, 1)
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Checksum(), b.Checksum())
	assert.False(t, a.Equal(b))
}

// Equal hash, checksum and count are not enough: contributors are compared positionally.
func TestKey_PositionalComparisonBeyondHash(t *testing.T) {
	t.Parallel()

	a := Of("stmt", collider{name: "left", code: 5})
	b := Of("stmt", collider{name: "right", code: 5})

	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, a.Checksum(), b.Checksum())
	require.Equal(t, a.UpdateCount(), b.UpdateCount())
	assert.False(t, a.Equal(b))
}

func TestKey_ArrayAwareEquality(t *testing.T) {
	t.Parallel()

	assert.True(t, Of([]any{1, "x", nil}).Equal(Of([]any{1, "x", nil})))
	assert.True(t, Of([]byte("abc")).Equal(Of([]byte("abc"))))
	assert.False(t, Of([]int{1, 2}).Equal(Of([]int{1, 3})))
	assert.False(t, Of([]int{1, 2}).Equal(Of([]int64{1, 2})))
}

func TestKey_NullSafeEquality(t *testing.T) {
	t.Parallel()

	var p *int
	assert.True(t, Of(nil, 1).Equal(Of(nil, 1)))
	assert.True(t, Of(p).Equal(Of(nil)))
	assert.False(t, Of(nil).Equal(Of(1)))
}

// Pointers contribute by identity, not by the value they point at.
func TestKey_PointerIdentity(t *testing.T) {
	t.Parallel()

	x, y := 10, 10
	assert.True(t, Of(&x).Equal(Of(&x)))
	assert.False(t, Of(&x).Equal(Of(&y)))
}

func TestKey_String(t *testing.T) {
	t.Parallel()

	k := Of("a", nil, []int{1, 2})
	want := strconv.Itoa(int(k.Hash())) + ":" + strconv.FormatInt(k.Checksum(), 10) + ":a:null:[1, 2]"
	assert.Equal(t, want, k.String())
	assert.Equal(t, "17:0", New().String())
}

// Updating a clone never affects the original.
func TestKey_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	k := Of("stmt", 1)
	c, err := k.Clone()
	require.NoError(t, err)
	require.True(t, c.Equal(k))

	c.Update(2)
	assert.Equal(t, 2, k.UpdateCount())
	assert.Equal(t, 3, c.UpdateCount())
	assert.True(t, k.Equal(Of("stmt", 1)))
	assert.False(t, c.Equal(k))

	s := k.Snapshot()
	assert.NotSame(t, k, s)
	assert.True(t, s.Equal(k))
}

func TestKey_Null(t *testing.T) {
	t.Parallel()

	assert.True(t, Null.IsNull())
	assert.False(t, New().IsNull())
	assert.False(t, Null.Equal(New()))
	assert.True(t, Null.Equal(Null))
	assert.PanicsWithValue(t, "cachekey: update of the Null key", func() { Null.Update(1) })

	_, err := Null.Clone()
	assert.ErrorIs(t, err, ErrCloneUnsupported)
	assert.Same(t, Null, Null.Snapshot())
}

type version struct{ major int }

func (v *version) HashCode() int32 { return int32(v.major) }

func (v *version) Equal(other any) bool {
	o, ok := other.(*version)
	return ok && o.major == v.major
}

// Typed nil contributors compare as nulls and never reach their methods.
func TestKey_TypedNilEqualer(t *testing.T) {
	t.Parallel()

	var a, b *version
	require.NotPanics(t, func() {
		assert.True(t, Of(a).Equal(Of(b)))
		assert.True(t, Of(a).Equal(Of(nil)))
		assert.False(t, Of(a).Equal(Of(&version{major: 1})))
		assert.False(t, Of(&version{major: 1}).Equal(Of(a)))
	})
	assert.True(t, Of(&version{major: 2}).Equal(Of(&version{major: 2})))
}
