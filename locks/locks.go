// Package locks is the process-local registry of per-key mutexes that gives
// the get-or-compute protocol its stampede prevention: at most one holder
// per key at any instant within this process.
//
// The registry itself is guarded by a short critical section around
// lookup/insert/remove (see Locks.mu below) so create-vs-destroy races can't
// leak or double-free an entry. Acquiring a key's Mutex never holds that
// registry lock — only the short refcount bookkeeping does.
package locks

import (
	"context"
	"sync"
	"time"

	"duocache/cacheerr"
	"duocache/randtoken"
)

// Mutex is a single-key, FIFO-ish exclusive lock supporting timed
// acquisition. Implemented as a capacity-1 channel: the token is "in the
// channel" when the lock is free.
type Mutex struct {
	ch    chan struct{}
	mu    sync.Mutex
	owner string
}

// NewMutex returns a free Mutex.
func NewMutex() *Mutex {
	m := &Mutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

// Acquire blocks until the mutex is obtained, timeout elapses, or ctx is
// cancelled. A zero timeout means wait forever (bounded only by ctx).
// On success it returns a releaser token that must be passed to Release.
func (m *Mutex) Acquire(ctx context.Context, timeout time.Duration) (string, error) {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-m.ch:
		return m.claim(), nil
	case <-timeoutCh:
		return "", cacheerr.New(cacheerr.KindLockTimeout, "", "locks.Acquire", nil)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// TryAcquire attempts a non-blocking acquisition, returning ok=false if the
// mutex is currently held. This is what the early-refresh path uses to bow
// out when a foreground miss (or another refresh) is already in flight.
func (m *Mutex) TryAcquire() (token string, ok bool) {
	select {
	case <-m.ch:
		return m.claim(), true
	default:
		return "", false
	}
}

// IsLocked reports whether the mutex is currently held, without blocking and
// without taking it.
func (m *Mutex) IsLocked() bool {
	tok, ok := m.TryAcquire()
	if !ok {
		return true
	}
	m.Release(tok)
	return false
}

func (m *Mutex) claim() string {
	tok := randtoken.Must(randtoken.Length)
	m.mu.Lock()
	m.owner = tok
	m.mu.Unlock()
	return tok
}

// Release releases the mutex. It is idempotent per releaser token: calling
// it twice with the same token, or with a token that never held the lock,
// is a safe no-op.
func (m *Mutex) Release(token string) {
	m.mu.Lock()
	if m.owner != token {
		m.mu.Unlock()
		return
	}
	m.owner = ""
	m.mu.Unlock()
	m.ch <- struct{}{}
}

type entry struct {
	mutex    *Mutex
	refcount int
}

// Locks is the per-process key -> Mutex registry.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New returns an empty registry.
func New() *Locks {
	return &Locks{entries: make(map[string]*entry)}
}

// GetOrCreateForKey returns the mutex for key, creating it if this is the
// first caller interested in key. The returned release func MUST be called
// exactly once when the caller is done with this key (whether or not it
// ever acquired the mutex) so orphaned entries don't accumulate.
func (l *Locks) GetOrCreateForKey(key string) (mutex *Mutex, release func()) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{mutex: NewMutex()}
		l.entries[key] = e
	}
	e.refcount++
	l.mu.Unlock()

	var once sync.Once
	release = func() {
		once.Do(func() {
			l.mu.Lock()
			e.refcount--
			if e.refcount <= 0 {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}
	return e.mutex, release
}

// Len reports how many keys currently have an outstanding registry entry.
// Exposed for tests asserting the registry doesn't leak.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// TryRunExclusive runs fn if key's mutex can be acquired without blocking,
// releasing both the mutex and the registry entry before returning. It
// reports whether fn ran. This is the early-refresh primitive from spec
// §4.4: a background refresh bows out immediately if a foreground miss or
// another refresh already holds the key.
func (l *Locks) TryRunExclusive(key string, fn func()) (ran bool) {
	mutex, release := l.GetOrCreateForKey(key)
	defer release()

	token, ok := mutex.TryAcquire()
	if !ok {
		return false
	}
	defer mutex.Release(token)

	fn()
	return true
}
