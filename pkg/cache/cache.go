// Package cache provides the expiring key/value stores used by the
// fan-out resolver.
//
// Two implementations exist behind the Store interface:
//
//   - Memory: process-local map with per-entry expiry, removed lazily on
//     read. This is the default and the only store the resolver requires.
//   - Redis: optional best-effort backend where expiry is delegated to
//     Redis TTLs. No coherence guarantees; a failed Redis operation is
//     treated as a miss.
//
// A stored nil value is a valid entry ("known absent") and expires exactly
// like data. Entries are immutable and overwritten wholesale on refresh.
package cache

import (
	"context"
	"time"
)

// Store is the expiring key/value contract consumed by the resolver.
type Store[K comparable, V any] interface {
	// Get returns the stored value when present and not expired.
	// The boolean reports presence; the value itself may be the zero
	// value (cached "known absent").
	Get(ctx context.Context, key K) (V, bool)

	// Set stores value with expiry now+ttl, overwriting any prior entry.
	Set(ctx context.Context, key K, value V, ttl time.Duration)
}
