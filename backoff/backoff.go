// Package backoff wraps cenkalti/backoff/v5's retry loop in a small
// builder, the shape bus.Bus uses to retry a transient Redis publish
// failure with bounded attempts and exponential spacing.
package backoff

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Wrapper configures and runs one retried operation.
type Wrapper struct {
	ctx       context.Context
	operation backoff.Operation[any]
	options   []backoff.RetryOption
}

// New returns a Wrapper using an exponential backoff policy, making at most
// maxTries attempts in all (the first call plus maxTries-1 retries).
func New(ctx context.Context, initialInterval time.Duration, randomizationFactor, multiplier float64, maxTries uint) *Wrapper {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval
	exp.RandomizationFactor = randomizationFactor
	exp.Multiplier = multiplier

	return &Wrapper{
		ctx:     ctx,
		options: []backoff.RetryOption{backoff.WithBackOff(exp), backoff.WithMaxTries(maxTries)},
	}
}

// SetDoOperation sets the operation to retry.
func (w *Wrapper) SetDoOperation(o backoff.Operation[any]) {
	w.operation = o
}

// SetNotify registers a callback invoked before each retry wait.
func (w *Wrapper) SetNotify(n backoff.Notify) {
	w.options = append(w.options, backoff.WithNotify(n))
}

// Exec runs the operation, retrying per the configured policy, and returns
// its final result and error.
func (w *Wrapper) Exec() (any, error) {
	return backoff.Retry(w.ctx, w.operation, w.options...)
}
