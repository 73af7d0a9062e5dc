package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutex_AcquireRelease(t *testing.T) {
	m := NewMutex()

	tok, err := m.Acquire(context.Background(), 0)
	assert.NoError(t, err)
	assert.True(t, m.IsLocked())

	m.Release(tok)
	assert.False(t, m.IsLocked())
}

func TestMutex_ReleaseIsIdempotentPerToken(t *testing.T) {
	m := NewMutex()
	tok, err := m.Acquire(context.Background(), 0)
	assert.NoError(t, err)

	m.Release(tok)
	assert.NotPanics(t, func() { m.Release(tok) }, "double release with the same token is a no-op")

	// A fresh holder's release must not be stolen by a stale token.
	tok2, err := m.Acquire(context.Background(), 0)
	assert.NoError(t, err)
	m.Release(tok) // stale token from the first holder
	assert.True(t, m.IsLocked(), "a stale releaser token must not release someone else's hold")
	m.Release(tok2)
	assert.False(t, m.IsLocked())
}

func TestMutex_AcquireTimesOut(t *testing.T) {
	m := NewMutex()
	_, err := m.Acquire(context.Background(), 0)
	assert.NoError(t, err)

	_, err = m.Acquire(context.Background(), 20*time.Millisecond)
	assert.Error(t, err)
}

func TestMutex_TryAcquireDoesNotBlock(t *testing.T) {
	m := NewMutex()
	_, err := m.Acquire(context.Background(), 0)
	assert.NoError(t, err)

	_, ok := m.TryAcquire()
	assert.False(t, ok)
}

func TestLocks_GetOrCreateForKey_SameMutexForSameKey(t *testing.T) {
	l := New()

	m1, release1 := l.GetOrCreateForKey("a")
	m2, release2 := l.GetOrCreateForKey("a")

	assert.Same(t, m1, m2)
	assert.Equal(t, 1, l.Len())

	release1()
	assert.Equal(t, 1, l.Len(), "refcount still held by the second caller")
	release2()
	assert.Equal(t, 0, l.Len())
}

func TestLocks_RegistryDoesNotLeak(t *testing.T) {
	l := New()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mutex, release := l.GetOrCreateForKey("shared")
			defer release()
			tok, err := mutex.Acquire(context.Background(), time.Second)
			if err == nil {
				mutex.Release(tok)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, l.Len())
}

func TestLocks_TryRunExclusive_SerializesAgainstForegroundHolder(t *testing.T) {
	l := New()
	mutex, release := l.GetOrCreateForKey("k")
	tok, err := mutex.Acquire(context.Background(), 0)
	assert.NoError(t, err)

	ran := l.TryRunExclusive("k", func() {
		t.Fatal("must not run while the foreground holder has the lock")
	})
	assert.False(t, ran)

	mutex.Release(tok)
	release()

	var calls int32
	ran = l.TryRunExclusive("k", func() {
		atomic.AddInt32(&calls, 1)
	})
	assert.True(t, ran)
	assert.Equal(t, int32(1), calls)
}
