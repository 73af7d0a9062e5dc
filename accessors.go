package duocache

import (
	"context"
	"time"

	"duocache/cacheitem"
)

// Get reads key without invoking a factory: L1 first, then L2 with L1
// backfill on a hit. It does not take the per-key lock — concurrent Gets
// and an in-flight Handle for the same key may interleave freely, the same
// as Stage A/D of Handle.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	now := time.Now()

	item, ok, err := c.stack.ReadL1(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok && item.IsValid(now) {
		if value, decErr := c.decode(item); decErr == nil {
			return value, true, nil
		}
	}

	item, ok, err = c.stack.ReadL2(ctx, key)
	if err != nil {
		return zero, false, nil
	}
	if !ok || !item.IsValid(now) {
		return zero, false, nil
	}
	value, decErr := c.decode(item)
	if decErr != nil {
		return zero, false, nil
	}
	if err := c.stack.WriteL1(ctx, item); err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Set writes value under key through both tiers, per §4.2's CacheStackWriter.
func (c *Cache[T]) Set(ctx context.Context, key string, value T, opts cacheitem.Options) error {
	_, err := c.writer.Set(ctx, c.stack, key, value, opts)
	return err
}

// Pull gets and deletes key atomically where the underlying driver supports
// it, checking L1 then L2.
func (c *Cache[T]) Pull(ctx context.Context, key string) (T, bool, error) {
	var zero T
	now := time.Now()

	item, ok, err := c.stack.PullL1(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok && item.IsValid(now) {
		if value, decErr := c.decode(item); decErr == nil {
			return value, true, nil
		}
		return zero, false, nil
	}

	item, ok, err = c.stack.PullL2(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if !ok || !item.IsValid(now) {
		return zero, false, nil
	}
	value, decErr := c.decode(item)
	if decErr != nil {
		return zero, false, nil
	}
	return value, true, nil
}

// Delete removes key from both tiers, reporting whether either tier had it.
func (c *Cache[T]) Delete(ctx context.Context, key string) (bool, error) {
	okL1, err := c.stack.DeleteL1(ctx, key)
	if err != nil {
		return false, err
	}
	okL2, err := c.stack.DeleteL2(ctx, key)
	if err != nil {
		return okL1, err
	}
	return okL1 || okL2, nil
}

// Has reports whether key is present in either tier, without decoding it.
func (c *Cache[T]) Has(ctx context.Context, key string) (bool, error) {
	if c.stack.L1 != nil {
		if ok, err := c.stack.L1.Has(ctx, key); err != nil {
			return false, err
		} else if ok {
			return true, nil
		}
	}
	if c.stack.L2 != nil {
		return c.stack.L2.Has(ctx, key)
	}
	return false, nil
}

// Clear empties both tiers.
func (c *Cache[T]) Clear(ctx context.Context) error {
	return c.stack.Clear(ctx)
}

// Close stops this Cache's bus relay (if any) and disconnects both tiers.
func (c *Cache[T]) Close(ctx context.Context) error {
	if c.unrelay != nil {
		c.unrelay()
	}
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			return err
		}
	}
	return c.stack.Disconnect(ctx)
}
