// Package cache provides the whole-page output cache used by the index
// feed. The store is injected into the handler chain so deployments can
// run on Redis while tests substitute an in-memory store with a
// controllable clock.
package cache

import (
	"context"
	"time"
)

// Store is a time-bounded byte cache. Reads and writes are independent
// per key; last write wins on TTL collision.
type Store interface {
	// Get returns the cached bytes for key, or false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores val under key for ttl.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// Clear drops every entry the store owns, unconditionally.
	Clear(ctx context.Context) error
}

// Key derives the cache key for a request: configured prefix plus the
// full request URI, query string included, so ?page=2 caches separately
// from page 1.
func Key(prefix, requestURI string) string {
	return prefix + ":" + requestURI
}
