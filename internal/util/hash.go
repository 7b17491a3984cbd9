// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"fmt"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Hasher lets a key contributor supply its own 32-bit hash code.
type Hasher interface {
	HashCode() int32
}

// Hash32 hashes a single key contributor into a deterministic 32-bit code.
//
//   - nil (including typed nil pointers, slices and maps) hashes to 1.
//   - Hasher implementations use their own code.
//   - strings and []byte use 64-bit xxhash folded to 32 bits.
//   - integers and floats fold their bit pattern, so small ints hash to themselves.
//   - slices and arrays hash element-wise: h = 31*h + Hash32(elem), seeded with 1.
//   - pointers, channels and funcs hash by identity.
//   - anything else hashes its %#v rendering.
func Hash32(v any) int32 {
	if IsNil(v) {
		return 1
	}
	switch x := v.(type) {
	case Hasher:
		return x.HashCode()
	case string:
		return fold64(xxhash.Sum64String(x))
	case []byte:
		if x == nil {
			return 1
		}
		return fold64(xxhash.Sum64(x))
	case bool:
		if x {
			return 1231
		}
		return 1237
	case int:
		return fold64(uint64(x))
	case int8:
		return int32(x)
	case int16:
		return int32(x)
	case int32:
		return x
	case int64:
		return fold64(uint64(x))
	case uint:
		return fold64(uint64(x))
	case uint8:
		return int32(x)
	case uint16:
		return int32(x)
	case uint32:
		return int32(x)
	case uint64:
		return fold64(x)
	case uintptr:
		return fold64(uint64(x))
	case float32:
		return int32(math.Float32bits(x))
	case float64:
		return fold64(math.Float64bits(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return 1
		}
		h := int32(1)
		for i := 0; i < rv.Len(); i++ {
			h = 31*h + Hash32(rv.Index(i).Interface())
		}
		return h
	case reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return 1
		}
		return fold64(uint64(rv.Pointer()))
	case reflect.Map:
		if rv.IsNil() {
			return 1
		}
	}
	// fmt prints maps with sorted keys, so the rendering is stable.
	return fold64(xxhash.Sum64String(fmt.Sprintf("%T:%#v", v, v)))
}

// fold64 mixes the high and low halves of a 64-bit value into 32 bits.
func fold64(u uint64) int32 {
	return int32(u ^ (u >> 32))
}

// IsNil reports whether v is nil or a typed nil pointer, slice, map, chan,
// func or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
