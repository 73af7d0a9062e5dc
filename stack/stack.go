// Package stack implements spec §4.5's CacheStack façade and §4.2's
// CacheStackWriter: the byte-level glue between cacheitem.Item and the
// driver.Driver tiers, running every value through a Pipeline and an
// Envelope frame on the way in, and the reverse on the way out.
package stack

import (
	"context"
	"time"

	"duocache/cacheerr"
	"duocache/cacheitem"
	"duocache/convert"
	"duocache/driver"
	"duocache/emitter"
	"duocache/logging"
)

// CacheStack owns one named pair of tiers plus the ambient collaborators
// every operation on them needs: a logger, an event emitter, and the
// serialization pipeline applied at the driver boundary. Either tier may be
// nil, but not both.
type CacheStack struct {
	Name     string
	L1       driver.Driver
	L2       driver.Driver
	Pipeline Pipeline
	Logger   logging.Logger
	Emitter  *emitter.Emitter
}

// New validates that at least one tier is configured and returns a ready
// CacheStack. Per spec.md §9's open question, a stack with neither tier is
// rejected eagerly rather than left undefined.
func New(name string, l1, l2 driver.Driver, pipeline Pipeline, logger logging.Logger) (*CacheStack, error) {
	if l1 == nil && l2 == nil {
		return nil, cacheerr.ErrBothTiersAbsent
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &CacheStack{
		Name:     name,
		L1:       l1,
		L2:       l2,
		Pipeline: pipeline,
		Logger:   logger,
		Emitter:  emitter.New(),
	}, nil
}

// ReadL1 and ReadL2 read a tier and decode its Envelope frame into a
// cacheitem.Item. A deserialization error is treated as a miss (logged),
// per spec §4.5.
func (s *CacheStack) ReadL1(ctx context.Context, key string) (cacheitem.Item, bool, error) {
	return s.read(ctx, s.L1, key)
}

func (s *CacheStack) ReadL2(ctx context.Context, key string) (cacheitem.Item, bool, error) {
	return s.read(ctx, s.L2, key)
}

func (s *CacheStack) read(ctx context.Context, d driver.Driver, key string) (cacheitem.Item, bool, error) {
	if d == nil {
		return cacheitem.Item{}, false, nil
	}

	raw, ok, err := d.Get(ctx, key)
	if err != nil {
		return cacheitem.Item{}, false, cacheerr.New(cacheerr.KindDriverError, key, "stack.read", err)
	}
	if !ok {
		return cacheitem.Item{}, false, nil
	}

	logical, physical, early, payload, err := convert.DecodeEnvelope(raw)
	if err != nil {
		s.Logger.Warn("stack: malformed envelope, treating as miss")
		return cacheitem.Item{}, false, nil
	}

	return cacheitem.Item{
		Key:               key,
		Value:             payload,
		LogicalExpiresAt:  logical,
		PhysicalExpiresAt: physical,
		EarlyExpirationAt: early,
	}, true, nil
}

// WriteL1 and WriteL2 frame item into an Envelope and store it, using the
// item's remaining physical TTL.
func (s *CacheStack) WriteL1(ctx context.Context, item cacheitem.Item) error {
	return s.write(ctx, s.L1, item)
}

func (s *CacheStack) WriteL2(ctx context.Context, item cacheitem.Item) error {
	return s.write(ctx, s.L2, item)
}

func (s *CacheStack) write(ctx context.Context, d driver.Driver, item cacheitem.Item) error {
	if d == nil {
		return nil
	}

	wire := convert.EncodeEnvelope(item.LogicalExpiresAt, item.PhysicalExpiresAt, item.EarlyExpirationAt, item.Value)
	ttl := item.RemainingPhysicalTTL(time.Now())
	if err := d.Set(ctx, item.Key, wire, ttl); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, item.Key, "stack.write", err)
	}
	return nil
}

// DeleteL1 and DeleteL2 remove a key from a tier.
func (s *CacheStack) DeleteL1(ctx context.Context, key string) (bool, error) {
	return s.delete(ctx, s.L1, key)
}

func (s *CacheStack) DeleteL2(ctx context.Context, key string) (bool, error) {
	return s.delete(ctx, s.L2, key)
}

func (s *CacheStack) delete(ctx context.Context, d driver.Driver, key string) (bool, error) {
	if d == nil {
		return false, nil
	}
	ok, err := d.Delete(ctx, key)
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, key, "stack.delete", err)
	}
	if ok {
		s.Emitter.Emit(emitter.Event{Kind: emitter.KindDeleted, Key: key})
	}
	return ok, nil
}

// PullL1 and PullL2 get-and-delete a tier atomically where the underlying
// driver supports it (e.g. Redis GETDEL).
func (s *CacheStack) PullL1(ctx context.Context, key string) (cacheitem.Item, bool, error) {
	return s.pull(ctx, s.L1, key)
}

func (s *CacheStack) PullL2(ctx context.Context, key string) (cacheitem.Item, bool, error) {
	return s.pull(ctx, s.L2, key)
}

func (s *CacheStack) pull(ctx context.Context, d driver.Driver, key string) (cacheitem.Item, bool, error) {
	if d == nil {
		return cacheitem.Item{}, false, nil
	}

	raw, ok, err := d.Pull(ctx, key)
	if err != nil {
		return cacheitem.Item{}, false, cacheerr.New(cacheerr.KindDriverError, key, "stack.pull", err)
	}
	if !ok {
		return cacheitem.Item{}, false, nil
	}
	s.Emitter.Emit(emitter.Event{Kind: emitter.KindDeleted, Key: key})

	logical, physical, early, payload, err := convert.DecodeEnvelope(raw)
	if err != nil {
		s.Logger.Warn("stack: malformed envelope on pull, treating as miss")
		return cacheitem.Item{}, false, nil
	}
	return cacheitem.Item{
		Key:               key,
		Value:             payload,
		LogicalExpiresAt:  logical,
		PhysicalExpiresAt: physical,
		EarlyExpirationAt: early,
	}, true, nil
}

// Clear empties both configured tiers.
func (s *CacheStack) Clear(ctx context.Context) error {
	if s.L1 != nil {
		if err := s.L1.Clear(ctx); err != nil {
			return cacheerr.New(cacheerr.KindDriverError, "", "stack.Clear.l1", err)
		}
	}
	if s.L2 != nil {
		if err := s.L2.Clear(ctx); err != nil {
			return cacheerr.New(cacheerr.KindDriverError, "", "stack.Clear.l2", err)
		}
	}
	return nil
}

// Disconnect releases both tiers' underlying resources.
func (s *CacheStack) Disconnect(ctx context.Context) error {
	var firstErr error
	if s.L1 != nil {
		if err := s.L1.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.L2 != nil {
		if err := s.L2.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
