package stack

import (
	"context"
	"time"

	"duocache/cacheitem"
	"duocache/emitter"
)

// Writer implements spec §4.2: build a cacheitem.Item from a value and its
// options, then write it L2-then-L1. An L2 failure is logged and swallowed
// — the local L1 value remains authoritative for this process. An L1
// failure is fatal and returned to the caller.
type Writer struct{}

// Set encodes value through s.Pipeline, builds the resulting Item, and
// writes it through s's configured tiers. It also returns the built Item
// with its computed expiries.
func (Writer) Set(ctx context.Context, s *CacheStack, key string, value any, opts cacheitem.Options) (cacheitem.Item, error) {
	encoded, err := s.Pipeline.EncodeValue(value)
	if err != nil {
		return cacheitem.Item{}, err
	}

	item := cacheitem.NewItem(key, encoded, opts, time.Now())
	return item, writeThrough(ctx, s, item)
}

// writeThrough applies an already-built Item L2-then-L1, per the same
// fatal/non-fatal split as Set.
func writeThrough(ctx context.Context, s *CacheStack, item cacheitem.Item) error {
	if err := s.WriteL2(ctx, item); err != nil {
		s.Logger.Warn("stack.Writer: l2 write failed, local value remains authoritative")
	}

	if err := s.WriteL1(ctx, item); err != nil {
		return err
	}

	s.Emitter.Emit(emitter.Event{Kind: emitter.KindWritten, Key: item.Key, Store: "l1+l2"})
	return nil
}

// SetItem writes an already-built Item L2-then-L1, with the same
// fatal/non-fatal split as Set.
func (Writer) SetItem(ctx context.Context, s *CacheStack, item cacheitem.Item) error {
	return writeThrough(ctx, s, item)
}
