// Package cache defines the best-effort key-value store used to memoize
// FAQ search results and recent conversation context.
package cache

import (
	"context"
	"time"
)

// Store is a string key-value store with TTL semantics. Implementations are
// best-effort accelerators: failures are logged and surfaced as misses, never
// as errors, since the cache is not a source of truth.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Delete removes key.
	Delete(ctx context.Context, key string)
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) bool
}

// Locker provides a best-effort mutual exclusion primitive keyed by name.
// Implementations degrade to a no-op when the backing store is unavailable.
type Locker interface {
	// Lock acquires the named lock and returns its release function. The
	// release function is always safe to call.
	Lock(ctx context.Context, name string) func()
}

// NopLocker is a Locker that never excludes anything.
type NopLocker struct{}

// Lock implements Locker.
func (NopLocker) Lock(context.Context, string) func() {
	return func() {}
}
