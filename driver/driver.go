// Package driver defines the CacheDriver contract the get-or-compute core
// consumes for its L1/L2 tiers, plus concrete implementations: an
// in-process LRU (MemoryDriver, the usual L1), a Redis-backed tier, and a
// MySQL-backed tier (both usable as L2).
package driver

import (
	"context"
	"time"
)

// Driver is the L1/L2 contract. Every operation takes a context so a
// network-backed implementation (Redis, SQL) can be cancelled/timed out by
// the caller; MemoryDriver ignores ctx since it never blocks.
type Driver interface {
	// Get returns the stored value and true, or ok=false if absent/expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Pull is get-and-delete.
	Pull(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key. ttl<=0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	DeleteMany(ctx context.Context, keys []string) (bool, error)
	Clear(ctx context.Context) error
	Disconnect(ctx context.Context) error
	// Namespace returns a view of this driver whose keys are transparently
	// prefixed, so multiple CacheStacks can share one backing store.
	Namespace(prefix string) Driver
}
