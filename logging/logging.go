// Package logging provides the structured logger the cache core consumes:
// levels trace..error, always carrying {key, cache, opId} fields. It wraps
// sirupsen/logrus the same way the teacher's redis_stream package does —
// package-level base logger, per-call WithFields scoping.
package logging

import (
	"github.com/sirupsen/logrus"

	"duocache/randtoken"
)

// Logger is the structured logging contract §6 of the spec describes.
type Logger interface {
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	// With returns a Logger that carries key/opId on every subsequent call.
	With(key, opID string) Logger
}

// logrusLogger implements Logger over a *logrus.Entry already scoped to a
// cache stack's name.
type logrusLogger struct {
	entry *logrus.Entry
}

// New returns a Logger scoped to cacheName, the CacheStack's name, which is
// attached to every record as the "cache" field.
func New(cacheName string) Logger {
	return &logrusLogger{
		entry: logrus.WithFields(logrus.Fields{"cache": cacheName}),
	}
}

func (l *logrusLogger) With(key, opID string) Logger {
	if opID == "" {
		opID = randtoken.Must(8)
	}
	return &logrusLogger{
		entry: l.entry.WithFields(logrus.Fields{"key": key, "opId": opID}),
	}
}

func (l *logrusLogger) Trace(msg string) { l.entry.Trace(msg) }
func (l *logrusLogger) Debug(msg string) { l.entry.Debug(msg) }
func (l *logrusLogger) Info(msg string)  { l.entry.Info(msg) }
func (l *logrusLogger) Warn(msg string)  { l.entry.Warn(msg) }

func (l *logrusLogger) Error(msg string, err error) {
	if err != nil {
		l.entry.WithError(err).Error(msg)
		return
	}
	l.entry.Error(msg)
}

// NewOpID generates a fresh operation id for telemetry, used when
// cacheitem.Options.ID is left blank by the caller.
func NewOpID() string {
	return randtoken.Must(12)
}

// Noop is a Logger that discards everything, used as the zero-value default
// so callers never need a nil check.
type noop struct{}

func (noop) Trace(string)                {}
func (noop) Debug(string)                {}
func (noop) Info(string)                 {}
func (noop) Warn(string)                 {}
func (noop) Error(string, error)         {}
func (noop) With(string, string) Logger  { return noop{} }

// NewNoop returns a Logger that discards all records.
func NewNoop() Logger { return noop{} }
