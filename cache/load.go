package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/IvanBrykalov/layercache/cachekey"
)

// Load returns the value cached for key, computing and storing it on a miss.
//
// If compute fails, Remove is called for key so that a blocking layer in the
// chain releases the lock taken by the miss, and the compute error is returned
// (joined with the Remove error, if any). Nil results are stored as-is and
// will read back as misses.
//
// If ctx carries no lock owner, Load runs the whole sequence under a fresh
// one, so a lock taken by its Get is only released by its own Put or Remove.
func Load(ctx context.Context, c Cache, key *cachekey.Key, compute func(context.Context) (any, error)) (any, error) {
	if OwnerFrom(ctx) == "" {
		ctx = WithOwner(ctx, uuid.NewString())
	}
	v, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}

	v, err = compute(ctx)
	if err != nil {
		if _, rerr := c.Remove(ctx, key); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return nil, err
	}
	if err := c.Put(ctx, key, v); err != nil {
		return v, err
	}
	return v, nil
}
