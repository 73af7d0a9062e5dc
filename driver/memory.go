package driver

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memoryEntry is one record in a MemoryDriver's LRU list.
type memoryEntry struct {
	key        string
	value      []byte
	expiresAt  time.Time // zero means no expiry
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryDriver is an in-process, thread-safe LRU store with per-key TTL and
// a background janitor for active expiration, adapted from the same
// hashmap-plus-doubly-linked-list design as any classic Go TTL/LRU cache:
// the map gives O(1) lookup, the list gives O(1) recency tracking and
// eviction.
//
// It is the default L1 tier: fast, local, and bounded in size.
type MemoryDriver struct {
	mu         sync.Mutex
	data       map[string]*list.Element
	lru        *list.List
	maxEntries int

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryDriver returns a MemoryDriver. maxEntries<=0 means unbounded.
// janitorInterval<=0 disables active expiration; expired entries are still
// removed lazily on Get/Has.
func NewMemoryDriver(maxEntries int, janitorInterval time.Duration) *MemoryDriver {
	d := &MemoryDriver{
		data:       make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}
	d.startJanitor(janitorInterval)
	return d
}

func (d *MemoryDriver) startJanitor(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.sweepExpired()
			case <-d.stopCh:
				return
			}
		}
	}()
}

func (d *MemoryDriver) sweepExpired() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for elem := d.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).expired(now) {
			d.removeElementLocked(elem)
		}
		elem = prev
	}
}

func (d *MemoryDriver) removeElementLocked(elem *list.Element) {
	d.lru.Remove(elem)
	delete(d.data, elem.Value.(*memoryEntry).key)
}

func (d *MemoryDriver) evictOldestLocked() {
	if elem := d.lru.Back(); elem != nil {
		d.removeElementLocked(elem)
	}
}

func (d *MemoryDriver) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elem, ok := d.data[key]
	if !ok {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if entry.expired(time.Now()) {
		d.removeElementLocked(elem)
		return nil, false, nil
	}
	d.lru.MoveToFront(elem)
	return entry.value, true, nil
}

func (d *MemoryDriver) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := d.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	d.mu.Lock()
	if elem, ok := d.data[key]; ok {
		d.removeElementLocked(elem)
	}
	d.mu.Unlock()
	return value, true, nil
}

func (d *MemoryDriver) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := d.data[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		d.lru.MoveToFront(elem)
		return nil
	}

	if d.maxEntries > 0 && d.lru.Len() >= d.maxEntries {
		d.evictOldestLocked()
	}

	elem := d.lru.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	d.data[key] = elem
	return nil
}

func (d *MemoryDriver) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := d.Get(ctx, key)
	return ok, err
}

func (d *MemoryDriver) Delete(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elem, ok := d.data[key]
	if !ok {
		return false, nil
	}
	d.removeElementLocked(elem)
	return true, nil
}

func (d *MemoryDriver) DeleteMany(ctx context.Context, keys []string) (bool, error) {
	any := false
	for _, k := range keys {
		ok, err := d.Delete(ctx, k)
		if err != nil {
			return any, err
		}
		any = any || ok
	}
	return any, nil
}

func (d *MemoryDriver) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = make(map[string]*list.Element)
	d.lru = list.New()
	return nil
}

// Disconnect stops the janitor goroutine. Safe to call more than once.
func (d *MemoryDriver) Disconnect(_ context.Context) error {
	d.stopOnce.Do(func() { close(d.stopCh) })
	return nil
}

// Namespace returns a MemoryDriver-backed view whose keys are transparently
// prefixed. It shares this driver's storage and janitor.
func (d *MemoryDriver) Namespace(prefix string) Driver {
	return &namespaced{prefix: prefix, inner: d}
}

// State is one entry as captured by Dump/restored by Restore, the unit the
// snapshot package persists to disk for warm restarts.
type State struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Dump captures every non-expired entry. Recency order is not preserved;
// a restored driver starts with all entries equally fresh in LRU terms.
func (d *MemoryDriver) Dump() []State {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	states := make([]State, 0, len(d.data))
	for _, elem := range d.data {
		entry := elem.Value.(*memoryEntry)
		if entry.expired(now) {
			continue
		}
		states = append(states, State{Key: entry.key, Value: entry.value, ExpiresAt: entry.expiresAt})
	}
	return states
}

// Restore loads states into the driver, skipping any that have since
// expired. Existing entries are left untouched unless a restored key
// collides with one already present, in which case the restored value
// wins.
func (d *MemoryDriver) Restore(states []State) {
	now := time.Now()
	for _, s := range states {
		if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
			continue
		}
		var ttl time.Duration
		if !s.ExpiresAt.IsZero() {
			ttl = s.ExpiresAt.Sub(now)
		}
		_ = d.Set(context.Background(), s.Key, s.Value, ttl)
	}
}

// namespaced wraps any Driver, prefixing every key it's asked about. Clear
// is necessarily driver-wide (no prefix-scoped scan is part of the Driver
// contract), matching how a namespaced Redis/SQL view would have to behave
// too without a key-enumeration command.
type namespaced struct {
	prefix string
	inner  Driver
}

func (n *namespaced) key(k string) string { return n.prefix + k }

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.key(key))
}

func (n *namespaced) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Pull(ctx, n.key(key))
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.key(key), value, ttl)
}

func (n *namespaced) Has(ctx context.Context, key string) (bool, error) {
	return n.inner.Has(ctx, n.key(key))
}

func (n *namespaced) Delete(ctx context.Context, key string) (bool, error) {
	return n.inner.Delete(ctx, n.key(key))
}

func (n *namespaced) DeleteMany(ctx context.Context, keys []string) (bool, error) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = n.key(k)
	}
	return n.inner.DeleteMany(ctx, prefixed)
}

func (n *namespaced) Clear(ctx context.Context) error      { return n.inner.Clear(ctx) }
func (n *namespaced) Disconnect(ctx context.Context) error { return n.inner.Disconnect(ctx) }
func (n *namespaced) Namespace(prefix string) Driver {
	return &namespaced{prefix: n.prefix + prefix, inner: n.inner}
}
