// Package reporting sends non-graced cache failures to Sentry. It wraps
// getsentry/sentry-go the same way logging wraps logrus: one client built by
// New, scoped per call with the cache name, key and opId as tags.
package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter is the contract GetSetHandler calls on the two error paths grace
// could not recover: FactoryHardTimeout always, and FactoryError/DriverError
// when no stale value was available to fall back to.
type Reporter interface {
	Report(ctx context.Context, err error, cacheName, key, opID string)
	// Flush blocks up to timeout waiting for buffered events to be sent,
	// for use at process shutdown.
	Flush(timeout time.Duration) bool
}

type sentryReporter struct {
	client *sentry.Client
}

// New initializes a Reporter against dsn. An empty dsn yields a Reporter
// whose Client is disabled, matching sentry-go's own convention for
// environments without a configured DSN.
func New(dsn string) (Reporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: dsn})
	if err != nil {
		return nil, err
	}
	return &sentryReporter{client: client}, nil
}

func (r *sentryReporter) Report(ctx context.Context, err error, cacheName, key, opID string) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTags(map[string]string{
		"cache": cacheName,
		"key":   key,
		"opId":  opID,
	})
	hub.BindClient(r.client)
	hub.CaptureException(err)
}

func (r *sentryReporter) Flush(timeout time.Duration) bool {
	return r.client.Flush(timeout)
}

// Noop is a Reporter that discards everything, used as the default when no
// Sentry DSN is configured so callers never need a nil check.
type noop struct{}

func (noop) Report(context.Context, error, string, string, string) {}
func (noop) Flush(time.Duration) bool                               { return true }

// NewNoop returns a Reporter that discards all events.
func NewNoop() Reporter { return noop{} }
