package duocache

import (
	"context"

	"duocache/cacheitem"
)

// spawnEarlyRefresh implements spec §4.4's early-refresh task: a detached
// unit of work that bows out if the key is already locked (a foreground
// miss or another refresh is in flight), and otherwise runs f and writes
// the result through. Factory errors are logged and never surfaced to the
// caller that triggered the refresh.
func (c *Cache[T]) spawnEarlyRefresh(key string, f Factory[T], opts cacheitem.Options) {
	go func() {
		c.locks.TryRunExclusive(key, func() {
			ctx := context.Background()
			logger := c.logger.With(key, "")

			value, err := f(ctx)
			if err != nil {
				logger.Error("duocache: early refresh factory failed", err)
				return
			}
			if _, err := c.writer.Set(ctx, c.stack, key, value, opts); err != nil {
				logger.Error("duocache: early refresh write-through failed", err)
			}
		})
	}()
}
