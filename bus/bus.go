// Package bus relays cache lifecycle events across processes sharing the
// same L2 tier over Redis pub/sub, grounded on the teacher's PubSubService
// (publish via the client, subscribe via a dedicated *redis.PubSub). A Bus
// republishes locally emitted cache.written/cache.deleted events and, on
// receipt of a remote one, asks the local L1 to drop its now-stale copy.
// This is best-effort: a missed message is never retried beyond the
// publish-side backoff below.
package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"duocache/backoff"
	"duocache/emitter"
	"duocache/logging"
	"duocache/randtoken"
)

// wireEvent is what actually crosses the wire: the emitter.Event plus an
// Origin id, so a Bus can recognize and ignore its own publications when
// they echo back.
type wireEvent struct {
	Origin string       `json:"origin"`
	Kind   emitter.Kind `json:"kind"`
	Key    string       `json:"key"`
	Store  string       `json:"store"`
	Graced bool         `json:"graced,omitempty"`
}

const (
	backoffInitialInterval = 50 * time.Millisecond
	backoffMaxTries        = 5
)

// DeleteFunc is called by Start for every remote cache.written or
// cache.deleted event, with the event's key. The caller of Start supplies
// it; neither New nor duocache.New calls Start.
type DeleteFunc func(ctx context.Context, key string) error

// Bus is an optional collaborator on a CacheStack. The zero value is not
// usable; construct with New.
type Bus struct {
	client  *redis.Client
	channel string
	origin  string
	logger  logging.Logger

	pubsub *redis.PubSub
}

// New returns a Bus publishing and subscribing on channel over client.
func New(client *redis.Client, channel string, logger logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Bus{
		client:  client,
		channel: channel,
		origin:  randtoken.Must(12),
		logger:  logger,
	}
}

// Publish republishes ev on the bus's channel, retrying transient failures
// with bounded exponential backoff. It spawns its own goroutine and never
// blocks the caller, so a per-key lock held by the caller is not kept
// waiting on Redis.
func (b *Bus) Publish(ctx context.Context, ev emitter.Event) {
	payload, err := json.Marshal(wireEvent{
		Origin: b.origin,
		Kind:   ev.Kind,
		Key:    ev.Key,
		Store:  ev.Store,
		Graced: ev.Graced,
	})
	if err != nil {
		b.logger.Error("bus: marshal event", err)
		return
	}

	go func() {
		w := backoff.New(ctx, backoffInitialInterval, 0.5, 2, backoffMaxTries)
		w.SetDoOperation(func() (any, error) {
			return nil, b.client.Publish(ctx, b.channel, payload).Err()
		})
		if _, err := w.Exec(); err != nil {
			b.logger.Error("bus: publish failed after retries", err)
		}
	}()
}

// Start subscribes to the bus's channel and, until ctx is canceled, invokes
// onRemote for every event originating from another process. It blocks;
// callers run it in its own goroutine.
func (b *Bus) Start(ctx context.Context, onRemote DeleteFunc) error {
	b.pubsub = b.client.Subscribe(ctx, b.channel)
	if _, err := b.pubsub.Receive(ctx); err != nil {
		return errors.Wrap(err, "bus: subscribe")
	}

	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(ctx, msg, onRemote)
		}
	}
}

func (b *Bus) handle(ctx context.Context, msg *redis.Message, onRemote DeleteFunc) {
	var ev wireEvent
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		b.logger.Error("bus: unmarshal event", err)
		return
	}
	if ev.Origin == b.origin {
		return // our own publication, echoed back
	}
	switch ev.Kind {
	case emitter.KindWritten, emitter.KindDeleted:
		if err := onRemote(ctx, ev.Key); err != nil {
			b.logger.Error("bus: local invalidation failed", err)
		}
	}
}

// RelayFrom subscribes to em and republishes every cache.written/cache.deleted
// event it emits onto the bus, until unsubscribe is called. This is how a
// CacheStack's local writes/deletes reach other processes sharing the same
// L2: the CacheStack never calls Publish itself.
func (b *Bus) RelayFrom(ctx context.Context, em *emitter.Emitter) (unsubscribe func()) {
	ch, unsub := em.Subscribe(64)
	go func() {
		for ev := range ch {
			switch ev.Kind {
			case emitter.KindWritten, emitter.KindDeleted:
				b.Publish(ctx, ev)
			}
		}
	}()
	return unsub
}

// Close unsubscribes and releases the underlying connection.
func (b *Bus) Close() error {
	if b.pubsub == nil {
		return nil
	}
	return b.pubsub.Close()
}
