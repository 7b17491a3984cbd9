package cache

import "context"

type ownerKey struct{}

// WithOwner returns a context carrying a lock owner. Blocking locks acquired
// under that context belong to owner: only calls carrying the same owner can
// release them, and re-acquisition by the same owner does not block.
//
// A blocking layer refuses to lock for a context without an owner, and a
// release from such a context is a no-op.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFrom returns the lock owner carried by ctx, or "" if none.
func OwnerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
