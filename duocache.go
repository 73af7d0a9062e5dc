// Package duocache implements the get-or-compute protocol (spec §4.4)
// tying together Locks, CacheStack, FactoryRunner and the optional Emitter
// relay/reporting collaborators into one generic Cache[T].
package duocache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"duocache/bus"
	"duocache/cacheerr"
	"duocache/cacheitem"
	"duocache/driver"
	"duocache/emitter"
	"duocache/factory"
	"duocache/locks"
	"duocache/logging"
	"duocache/reporting"
	"duocache/stack"
)

// Factory produces the value for a cache miss.
type Factory[T any] func(ctx context.Context) (T, error)

// Config wires one Cache's collaborators. L1 and L2 follow CacheStack's
// rule: either may be nil, never both.
type Config struct {
	Name string
	L1   driver.Driver
	L2   driver.Driver

	Pipeline stack.Pipeline
	Logger   logging.Logger
	Reporter reporting.Reporter
	Bus      *bus.Bus

	DefaultOptions cacheitem.Options
}

// Cache is a two-tier get-or-compute cache for values of type T.
type Cache[T any] struct {
	stack    *stack.CacheStack
	locks    *locks.Locks
	runner   *factory.Runner
	writer   stack.Writer
	reporter reporting.Reporter
	bus      *bus.Bus
	logger   logging.Logger

	defaultOptions cacheitem.Options
	unrelay        func()
}

// New builds a Cache from cfg. If cfg.Bus is set, New also starts relaying
// this Cache's cache.written/cache.deleted events onto it.
func New[T any](cfg Config) (*Cache[T], error) {
	s, err := stack.New(cfg.Name, cfg.L1, cfg.L2, cfg.Pipeline, cfg.Logger)
	if err != nil {
		return nil, err
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = reporting.NewNoop()
	}

	c := &Cache[T]{
		stack:          s,
		locks:          locks.New(),
		runner:         factory.New(s.Logger),
		reporter:       reporter,
		bus:            cfg.Bus,
		logger:         s.Logger,
		defaultOptions: cfg.DefaultOptions,
	}

	if c.bus != nil {
		c.unrelay = c.bus.RelayFrom(context.Background(), s.Emitter)
	}

	return c, nil
}

// DefaultOptions returns the Options this Cache was configured with, so
// callers can start from it and override only what a given call needs.
func (c *Cache[T]) DefaultOptions() cacheitem.Options {
	return c.defaultOptions
}

// Handle implements spec §4.4's Stage A-F get-or-compute protocol: an
// optimistic lock-free L1 hit, a double-checked read under the per-key
// lock, L2 read-through with L1 backfill, factory execution bounded by
// soft/hard timeouts, and grace-period stale serving on timeout or error.
func (c *Cache[T]) Handle(ctx context.Context, key string, f Factory[T], opts cacheitem.Options) (T, error) {
	var zero T
	now := time.Now()
	opID := opts.ID
	if opID == "" {
		opID = logging.NewOpID()
	}
	logger := c.logger.With(key, opID)

	// Stage A — optimistic L1 hit, no lock held.
	localItem, hasLocal, err := c.stack.ReadL1(ctx, key)
	if err != nil {
		return zero, err
	}
	if hasLocal && localItem.IsValid(now) {
		if value, decErr := c.decode(localItem); decErr == nil {
			if localItem.IsEarlyExpired(now) {
				c.spawnEarlyRefresh(key, f, opts)
			}
			c.emitHit(key, "l1", false)
			return value, nil
		}
		// Undecodable value: fall through exactly as if L1 had missed.
		hasLocal = false
	}

	// Stage B — lock acquisition. release (registry refcount) always runs;
	// mutex is only ever held once Acquire succeeds below.
	mutex, release := c.locks.GetOrCreateForKey(key)

	token, err := mutex.Acquire(ctx, opts.GetApplicableLockTimeout(hasLocal))
	if err != nil {
		release()
		if errors.Is(err, cacheerr.ErrLockTimeout) && opts.Grace.Enabled && hasLocal {
			if value, decErr := c.decode(localItem); decErr == nil {
				c.emitHit(key, "l1", true)
				return value, nil
			}
		}
		return zero, err
	}
	releaseAll := func() {
		mutex.Release(token)
		release()
	}

	// Stage C — double-checked L1, lock held.
	now = time.Now()
	recheck, hasLocal2, err := c.stack.ReadL1(ctx, key)
	if err != nil {
		releaseAll()
		return zero, err
	}
	if hasLocal2 && recheck.IsValid(now) {
		if value, decErr := c.decode(recheck); decErr == nil {
			releaseAll()
			c.emitHit(key, "l1", false)
			return value, nil
		}
		hasLocal2 = false
	}
	if hasLocal2 {
		localItem, hasLocal = recheck, true
	}

	// Stage D — L2 read-through, lock held.
	remoteItem, hasRemote, err := c.stack.ReadL2(ctx, key)
	if err != nil {
		logger.Warn("duocache: l2 read failed, treating as miss")
		hasRemote = false
	}
	if hasRemote && remoteItem.IsValid(now) {
		if value, decErr := c.decode(remoteItem); decErr == nil {
			if werr := c.stack.WriteL1(ctx, remoteItem); werr != nil {
				releaseAll()
				return zero, werr
			}
			releaseAll()
			c.emitHit(key, "l2", false)
			return value, nil
		}
		hasRemote = false
	}

	// Stage E — factory execution, lock held.
	runnerFn := func(fctx context.Context) (any, error) {
		v, ferr := f(fctx)
		if ferr != nil {
			return nil, ferr
		}
		return v, nil
	}
	writeThrough := func(wctx context.Context, v any) error {
		_, werr := c.writer.Set(wctx, c.stack, key, v, opts)
		return werr
	}

	value, softTimedOut, err := c.runner.Run(ctx, key, runnerFn, hasLocal, opts, releaseAll, writeThrough)
	if err == nil {
		return value.(T), nil
	}

	if softTimedOut {
		if hasLocal {
			return c.applyFallback(ctx, key, localItem, opts, logger)
		}
		return zero, err
	}

	if errors.Is(err, cacheerr.ErrFactoryHardTimeout) {
		c.reporter.Report(ctx, err, c.stack.Name, key, opID)
		return zero, err
	}

	staleItem, hasStale := localItem, hasLocal
	if hasRemote {
		staleItem, hasStale = remoteItem, true
	}
	if hasStale && opts.Grace.Enabled {
		return c.applyFallback(ctx, key, staleItem, opts, logger)
	}

	c.reporter.Report(ctx, err, c.stack.Name, key, opID)
	return zero, err
}

// applyFallback implements Stage F: extend the stale item's logical expiry
// by the configured fallback duration, rewrite L1, and return its value as
// a graced hit.
func (c *Cache[T]) applyFallback(ctx context.Context, key string, stale cacheitem.Item, opts cacheitem.Options, logger logging.Logger) (T, error) {
	var zero T
	item := stale
	if opts.Grace.FallbackDuration > 0 {
		item = stale.WithFallbackExtension(opts.Grace.FallbackDuration, time.Now())
		if err := c.stack.WriteL1(ctx, item); err != nil {
			logger.Error("duocache: grace fallback rewrite failed", err)
		}
	}
	value, err := c.decode(item)
	if err != nil {
		return zero, err
	}
	c.emitHit(key, "grace", true)
	return value, nil
}

func (c *Cache[T]) decode(item cacheitem.Item) (T, error) {
	var out T
	err := c.stack.Pipeline.DecodeValue(item.Value, &out)
	return out, err
}

func (c *Cache[T]) emitHit(key, store string, graced bool) {
	c.stack.Emitter.Emit(emitter.Event{Kind: emitter.KindHit, Key: key, Store: store, Graced: graced})
}
