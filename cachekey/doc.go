// Package cachekey provides the composite identity used to look entries up in
// a cache chain.
//
// A Key is built incrementally from arbitrary contributing values (statement id,
// parameters, pagination bounds, environment id, ...). The resulting hash is a
// polynomial accumulation over the contributors in insertion order, so the same
// contributors supplied in the same order always produce equal keys, while a
// different order in general does not:
//
//	k := cachekey.New()
//	k.UpdateAll("users.byID", 42, 0, 100, "prod")
//
// Equality is not purely hash based. Two keys are equal only when hash,
// checksum, count and every positional contributor agree, so hash collisions
// are never mistaken for identity.
//
// Keys are mutable builders. Once a key has been handed to a cache it must be
// treated as read-only; use Clone to derive a new key from an existing one.
//
// Map is a small hash-bucketed map keyed by *Key that the cache layers use
// wherever they index state by key. It is not safe for concurrent use.
package cachekey
