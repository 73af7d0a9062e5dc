package duocache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duocache/cacheitem"
	"duocache/driver"
	"duocache/parser"
	"duocache/stack"
)

func newTestCache(t *testing.T, l1, l2 driver.Driver) *Cache[int] {
	t.Helper()
	c, err := New[int](Config{
		Name:     "test",
		L1:       l1,
		L2:       l2,
		Pipeline: stack.Pipeline{Parser: &parser.JSONParser{}},
	})
	require.NoError(t, err)
	return c
}

func testOptions() cacheitem.Options {
	return cacheitem.Options{
		TTL: time.Second,
		Grace: cacheitem.GraceOptions{
			Enabled:          true,
			Duration:         5 * time.Second,
			FallbackDuration: 2 * time.Second,
		},
		Timeouts: cacheitem.TimeoutOptions{
			Soft: 100 * time.Millisecond,
			Hard: 500 * time.Millisecond,
		},
		EarlyExpirationPercentage: 0.8,
	}
}

// preload writes value directly into a tier with explicit expiry timestamps,
// bypassing Handle, so tests can set up items with a particular age.
func preload(t *testing.T, c *Cache[int], d driver.Driver, key string, value int, logical, physical, early time.Time) {
	t.Helper()
	encoded, err := c.stack.Pipeline.EncodeValue(value)
	require.NoError(t, err)

	item := cacheitem.Item{
		Key:               key,
		Value:             encoded,
		CreatedAt:         time.Now(),
		LogicalExpiresAt:  logical,
		PhysicalExpiresAt: physical,
		EarlyExpirationAt: early,
	}
	if d == c.stack.L1 {
		require.NoError(t, c.stack.WriteL1(context.Background(), item))
	} else {
		require.NoError(t, c.stack.WriteL2(context.Background(), item))
	}
}

func TestHandle_ColdMiss_FactoryRunsOnceAndCachesBothTiers(t *testing.T) {
	ctx := context.Background()
	l1 := driver.NewMemoryDriver(0, 0)
	l2 := driver.NewMemoryDriver(0, 0)
	c := newTestCache(t, l1, l2)

	var calls int32
	value, err := c.Handle(ctx, "a", func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}, testOptions())

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, int32(1), calls)

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestHandle_StampedePrevention_FactoryRunsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, driver.NewMemoryDriver(0, 0), driver.NewMemoryDriver(0, 0))

	var calls int32
	slowFactory := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
		return 7, nil
	}

	results := make(chan int, 100)
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		go func() {
			v, err := c.Handle(ctx, "b", slowFactory, testOptions())
			results <- v
			errs <- err
		}()
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, <-errs)
		assert.Equal(t, 7, <-results)
	}
	assert.Equal(t, int32(1), calls)
}

func TestHandle_SoftTimeoutWithGrace_ReturnsStaleQuickly(t *testing.T) {
	ctx := context.Background()
	l1 := driver.NewMemoryDriver(0, 0)
	c := newTestCache(t, l1, driver.NewMemoryDriver(0, 0))

	now := time.Now()
	preload(t, c, l1, "c", 1, now.Add(-50*time.Millisecond), now.Add(5*time.Second), time.Time{})

	opts := testOptions()
	start := time.Now()
	value, err := c.Handle(ctx, "c", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, opts)

	require.NoError(t, err)
	assert.Equal(t, 1, value)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestHandle_FactoryErrorWithGrace_ReturnsStaleAndExtendsFallback(t *testing.T) {
	ctx := context.Background()
	l1 := driver.NewMemoryDriver(0, 0)
	l2 := driver.NewMemoryDriver(0, 0)
	c := newTestCache(t, l1, l2)

	now := time.Now()
	preload(t, c, l2, "d", 9, now.Add(-time.Second), now.Add(5*time.Second), time.Time{})

	opts := testOptions()
	boom := errors.New("boom")
	value, err := c.Handle(ctx, "d", func(context.Context) (int, error) {
		return 0, boom
	}, opts)

	require.NoError(t, err)
	assert.Equal(t, 9, value)

	item, ok, err := c.stack.ReadL1(ctx, "d")
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(opts.Grace.FallbackDuration), item.LogicalExpiresAt, 200*time.Millisecond)
}

func TestHandle_FactoryErrorWithoutGrace_Rethrows(t *testing.T) {
	ctx := context.Background()
	l1 := driver.NewMemoryDriver(0, 0)
	l2 := driver.NewMemoryDriver(0, 0)
	c := newTestCache(t, l1, l2)

	now := time.Now()
	preload(t, c, l2, "d2", 9, now.Add(-time.Second), now.Add(5*time.Second), time.Time{})

	opts := testOptions()
	opts.Grace.Enabled = false
	boom := errors.New("boom")
	_, err := c.Handle(ctx, "d2", func(context.Context) (int, error) {
		return 0, boom
	}, opts)

	assert.ErrorIs(t, err, boom)
}

func TestHandle_EarlyRefresh_ReturnsStaleSynchronouslyThenRefreshesInBackground(t *testing.T) {
	ctx := context.Background()
	l1 := driver.NewMemoryDriver(0, 0)
	c := newTestCache(t, l1, driver.NewMemoryDriver(0, 0))

	now := time.Now()
	preload(t, c, l1, "e", 5, now.Add(time.Second), now.Add(6*time.Second), now.Add(-10*time.Millisecond))

	start := time.Now()
	value, err := c.Handle(ctx, "e", func(context.Context) (int, error) {
		return 6, nil
	}, testOptions())

	require.NoError(t, err)
	assert.Equal(t, 5, value)
	assert.Less(t, time.Since(start), 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		item, ok, err := c.stack.ReadL1(ctx, "e")
		return err == nil && ok && func() bool {
			v, decErr := c.decode(item)
			return decErr == nil && v == 6
		}()
	}, 100*time.Millisecond, 5*time.Millisecond)
}
