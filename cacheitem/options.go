package cacheitem

import "time"

// GraceOptions configures stale-serving behavior on factory failure/timeout.
type GraceOptions struct {
	Enabled bool
	// Duration extends physical availability beyond logical expiry.
	Duration time.Duration
	// FallbackDuration, when non-zero, is applied to the stale item's
	// logical expiry once a grace fallback has been served, so the next
	// reads in that window don't re-hit a failing factory.
	FallbackDuration time.Duration
}

// TimeoutOptions bounds factory execution.
type TimeoutOptions struct {
	Soft time.Duration
	Hard time.Duration
}

// Options is the immutable per-call bundle resolved for a single
// getOrSet invocation.
type Options struct {
	// ID is an opaque operation id for telemetry. Left blank, the caller
	// picks a fresh one (see logging.NewOpID).
	ID string

	TTL                       time.Duration
	EarlyExpirationPercentage float64

	Grace    GraceOptions
	Timeouts TimeoutOptions

	// LockTimeout bounds how long handle() waits to acquire the per-key
	// mutex when no applicable timeout can be derived from Timeouts/Grace.
	LockTimeout time.Duration
}

// GetApplicableLockTimeout returns the deadline handle() should use when
// attempting to acquire the per-key lock. When a stale fallback value
// exists locally and grace is enabled, the soft timeout is used so the
// caller degrades to a stale read quickly rather than blocking for the full
// hard timeout. Otherwise it falls back to the hard timeout, then the
// explicit LockTimeout, then no bound at all.
func (o Options) GetApplicableLockTimeout(hasFallback bool) time.Duration {
	if hasFallback && o.Grace.Enabled && o.Timeouts.Soft > 0 {
		return o.Timeouts.Soft
	}
	if o.Timeouts.Hard > 0 {
		return o.Timeouts.Hard
	}
	if o.LockTimeout > 0 {
		return o.LockTimeout
	}
	return 0
}

// DefaultOptions returns a conservative, explicit baseline. Every field a
// caller doesn't care about should still be intentional, not a zero value
// that silently disables a feature.
func DefaultOptions() Options {
	return Options{
		TTL:                       5 * time.Minute,
		EarlyExpirationPercentage: 0,
		Grace: GraceOptions{
			Enabled: false,
		},
		Timeouts: TimeoutOptions{
			Soft: 0,
			Hard: 0,
		},
		LockTimeout: 0,
	}
}
