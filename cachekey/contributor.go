package cachekey

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/IvanBrykalov/layercache/internal/util"
)

// equalValues is the null-safe, array-aware positional comparison.
func equalValues(a, b any) bool {
	// typed nils never reach a pointer-receiver Equal
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Slice, reflect.Array:
		if ra.Kind() == reflect.Slice && (ra.IsNil() || rb.IsNil()) {
			return ra.IsNil() == rb.IsNil()
		}
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !equalValues(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		// identity, not content
		return ra.Pointer() == rb.Pointer()
	case reflect.Func:
		return ra.IsNil() && rb.IsNil()
	}
	return reflect.DeepEqual(a, b)
}

func isNil(v any) bool { return util.IsNil(v) }

// formatValue renders a contributor, printing slices and arrays as [a, b, c].
func formatValue(v any) string {
	if isNil(v) {
		return "null"
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
