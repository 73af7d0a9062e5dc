// Package factory implements spec §4.3's FactoryRunner: bounding a single
// factory invocation with soft/hard timeouts, and — on a soft timeout with
// an available fallback — letting the factory keep running in the
// background under its original hard deadline.
package factory

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"duocache/cacheerr"
	"duocache/cacheitem"
	"duocache/logging"
)

// Func is a factory call: produces the value for a cache miss.
type Func func(ctx context.Context) (any, error)

// WriteThrough is called on a successful factory result (synchronous or,
// after a soft timeout, from the background continuation) to persist the
// value. Wired to stack.Writer.Set by the caller.
type WriteThrough func(ctx context.Context, value any) error

type result struct {
	value any
	err   error
}

// Runner executes factories under the Stage E contract.
type Runner struct {
	Logger logging.Logger
}

// New returns a Runner. A nil logger defaults to a no-op one.
func New(logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Runner{Logger: logger}
}

// Run executes fn for key. release must be the caller's per-key lock
// releaser; Run calls it exactly once on every synchronous return path, and
// defers it to a background goroutine when it returns FactorySoftTimeout
// with the factory still running. softTimedOut reports which of those
// happened, so the caller knows whether a background continuation is still
// in flight holding the lock.
func (r *Runner) Run(ctx context.Context, key string, fn Func, hasFallback bool, opts cacheitem.Options, release func(), writeThrough WriteThrough) (value any, softTimedOut bool, err error) {
	var cancel context.CancelFunc
	factoryCtx := ctx
	if opts.Timeouts.Hard > 0 {
		factoryCtx, cancel = context.WithTimeout(ctx, opts.Timeouts.Hard)
	} else {
		factoryCtx, cancel = context.WithCancel(ctx)
	}

	resultCh := make(chan result, 1)
	go func() {
		v, e := fn(factoryCtx)
		resultCh <- result{value: v, err: e}
	}()

	var softCh <-chan time.Time
	if hasFallback && opts.Grace.Enabled && opts.Timeouts.Soft > 0 {
		softTimer := time.NewTimer(opts.Timeouts.Soft)
		defer softTimer.Stop()
		softCh = softTimer.C
	}

	select {
	case res := <-resultCh:
		cancel()
		value, softTimedOut, err = r.finish(ctx, key, res, writeThrough)
		release()
		return value, softTimedOut, err

	case <-factoryCtx.Done():
		cancel()
		release()
		if opts.Timeouts.Hard > 0 && errors.Is(factoryCtx.Err(), context.DeadlineExceeded) {
			return nil, false, cacheerr.New(cacheerr.KindFactoryHardTimeout, key, "factory.Runner.Run", nil)
		}
		return nil, false, factoryCtx.Err()

	case <-softCh:
		go r.continueInBackground(factoryCtx, cancel, key, resultCh, release, writeThrough)
		return nil, true, cacheerr.New(cacheerr.KindFactorySoftTimeout, key, "factory.Runner.Run", nil)
	}
}

func (r *Runner) finish(ctx context.Context, key string, res result, writeThrough WriteThrough) (any, bool, error) {
	if res.err != nil {
		return nil, false, cacheerr.New(cacheerr.KindFactoryError, key, "factory.Runner.Run", res.err)
	}
	if err := writeThrough(ctx, res.value); err != nil {
		return nil, false, cacheerr.New(cacheerr.KindDriverError, key, "factory.Runner.Run.writeThrough", err)
	}
	return res.value, false, nil
}

// continueInBackground finishes a factory call that outlived its soft
// timeout, under the same hard-deadline context used for the foreground
// attempt (SPEC_FULL.md §9). It never surfaces an error to anyone; failures
// are logged and dropped.
func (r *Runner) continueInBackground(factoryCtx context.Context, cancel context.CancelFunc, key string, resultCh <-chan result, release func(), writeThrough WriteThrough) {
	defer cancel()
	defer release()

	select {
	case res := <-resultCh:
		if res.err != nil {
			r.Logger.With(key, "").Error("factory: background continuation failed", res.err)
			return
		}
		if err := writeThrough(context.Background(), res.value); err != nil {
			r.Logger.With(key, "").Error("factory: background write-through failed", err)
		}
	case <-factoryCtx.Done():
		r.Logger.With(key, "").Warn("factory: background continuation hit its hard deadline")
	}
}

