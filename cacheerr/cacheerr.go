// Package cacheerr defines the closed set of failure kinds the get-or-compute
// protocol can produce, so branches that handle them stay exhaustive.
package cacheerr

import "github.com/cockroachdb/errors"

// Kind classifies a cache error for branching without string matching.
type Kind int

const (
	KindLockTimeout Kind = iota
	KindFactorySoftTimeout
	KindFactoryHardTimeout
	KindFactoryError
	KindDriverError
)

// ErrLockTimeout is returned when a per-key mutex could not be acquired
// within its configured window. Recoverable via grace when a stale local
// item exists.
var ErrLockTimeout = errors.New("cacheerr: lock acquisition timed out")

// ErrFactorySoftTimeout is returned immediately when the factory exceeds its
// soft deadline and a fallback value is available; the factory keeps running
// in the background.
var ErrFactorySoftTimeout = errors.New("cacheerr: factory exceeded soft timeout")

// ErrFactoryHardTimeout is returned when the factory exceeds its hard
// deadline. Fatal for the call; best-effort cancellation is attempted.
var ErrFactoryHardTimeout = errors.New("cacheerr: factory exceeded hard timeout")

// ErrFactoryError wraps a synchronous or asynchronous factory failure.
var ErrFactoryError = errors.New("cacheerr: factory returned an error")

// ErrDriverError wraps a failure surfaced by an L1 or L2 CacheDriver call.
var ErrDriverError = errors.New("cacheerr: driver operation failed")

// ErrBothTiersAbsent is returned by stack.New when neither l1 nor l2 is
// configured. spec.md leaves the both-absent case undefined and assumes
// configuration validation rejects it upstream; this is that rejection.
var ErrBothTiersAbsent = errors.New("cacheerr: cache stack has neither l1 nor l2 configured")

// Error is a classified, key-scoped cache error.
type Error struct {
	Kind Kind
	Key  string
	Op   string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.Op
	}
	return e.Op + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// Is lets the standard library's errors.Is see the kind sentinel that New
// attaches with a cockroachdb mark, which only cockroachdb's Is recognizes.
func (e *Error) Is(target error) bool { return errors.Is(e.err, target) }

// New wraps cause as a classified Error for key, tagged with the sentinel
// matching kind so that errors.Is(err, ErrFactoryError) etc. keep working
// through the wrap.
func New(kind Kind, key string, op string, cause error) *Error {
	sentinel := sentinelFor(kind)
	wrapped := cause
	if sentinel != nil {
		if cause == nil {
			wrapped = sentinel
		} else {
			wrapped = errors.Mark(cause, sentinel)
		}
	}
	return &Error{Kind: kind, Key: key, Op: op, err: wrapped}
}

func sentinelFor(kind Kind) error {
	switch kind {
	case KindLockTimeout:
		return ErrLockTimeout
	case KindFactorySoftTimeout:
		return ErrFactorySoftTimeout
	case KindFactoryHardTimeout:
		return ErrFactoryHardTimeout
	case KindFactoryError:
		return ErrFactoryError
	case KindDriverError:
		return ErrDriverError
	default:
		return nil
	}
}

// IsGraceable reports whether grace-period fallback handling applies to err.
func IsGraceable(err error) bool {
	return errors.Is(err, ErrLockTimeout) ||
		errors.Is(err, ErrFactorySoftTimeout) ||
		errors.Is(err, ErrFactoryError) ||
		errors.Is(err, ErrDriverError)
}
