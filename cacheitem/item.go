// Package cacheitem models a single cached entry and the per-call options
// that govern how it is produced, refreshed and graced.
//
// An Item tracks two independent expirations: logical (when the value is
// considered stale for correctness) and physical (when the storage tier
// stops returning it at all). Physical must never expire before logical —
// NewItem enforces that by construction rather than leaving it to callers.
package cacheitem

import "time"

// Item is one record as held in either tier.
type Item struct {
	Key   string
	Value []byte

	CreatedAt         time.Time
	LogicalExpiresAt  time.Time
	PhysicalExpiresAt time.Time

	// EarlyExpirationAt is zero when early refresh is disabled for this item.
	EarlyExpirationAt time.Time
}

// NewItem builds an Item from a value and the options that produced it,
// computing both expirations and the early-refresh marker.
func NewItem(key string, value []byte, opts Options, now time.Time) Item {
	logical := now.Add(opts.TTL)
	physical := logical
	if opts.Grace.Enabled {
		physical = logical.Add(opts.Grace.Duration)
	}

	it := Item{
		Key:               key,
		Value:             value,
		CreatedAt:         now,
		LogicalExpiresAt:  logical,
		PhysicalExpiresAt: physical,
	}

	if p := opts.EarlyExpirationPercentage; p > 0 {
		if p > 1 {
			p = 1
		}
		it.EarlyExpirationAt = now.Add(time.Duration(float64(opts.TTL) * p))
	}

	return it
}

// IsLogicallyExpired reports whether the item is stale for correctness
// purposes as of now. It may still be returnable under grace.
func (it Item) IsLogicallyExpired(now time.Time) bool {
	return !it.LogicalExpiresAt.IsZero() && !now.Before(it.LogicalExpiresAt)
}

// IsPhysicallyExpired reports whether the storage tier would no longer
// return this item as of now.
func (it Item) IsPhysicallyExpired(now time.Time) bool {
	return !it.PhysicalExpiresAt.IsZero() && !now.Before(it.PhysicalExpiresAt)
}

// IsEarlyExpired reports whether the item has crossed its early-refresh
// marker but is not yet logically expired.
func (it Item) IsEarlyExpired(now time.Time) bool {
	if it.EarlyExpirationAt.IsZero() {
		return false
	}
	return !now.Before(it.EarlyExpirationAt) && !it.IsLogicallyExpired(now)
}

// IsValid reports whether the item can be returned as a fresh hit: present,
// not logically expired.
func (it Item) IsValid(now time.Time) bool {
	return !it.IsLogicallyExpired(now)
}

// RemainingPhysicalTTL returns the duration until physical expiry, or zero
// if already physically expired.
func (it Item) RemainingPhysicalTTL(now time.Time) time.Duration {
	d := it.PhysicalExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// WithFallbackExtension returns a new Item (Items are immutable after
// construction) whose logical expiry is set to now+fallback, for Stage F of
// the get-or-compute protocol. Physical expiry is kept unless it falls before
// the new logical deadline, in which case it is raised to that deadline.
func (it Item) WithFallbackExtension(fallback time.Duration, now time.Time) Item {
	next := it
	next.LogicalExpiresAt = now.Add(fallback)
	if next.PhysicalExpiresAt.Before(next.LogicalExpiresAt) {
		next.PhysicalExpiresAt = next.LogicalExpiresAt
	}
	return next
}
