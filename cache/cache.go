// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache provides an LRU record cache shared across traversal calls.
//
// Per-call memoization is the NodeSet's job; this cache sits in front of a
// store so concurrent calls touching the same hot symbols do not each pay
// the store lookup. Concurrent misses for the same symbol are collapsed via
// singleflight. Records are immutable after decode, so cached records are
// shared, never copied.
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/resolver"
)

// DefaultCapacity is the default maximum number of cached records.
const DefaultCapacity = 4096

// Option configures a RecordCache.
type Option func(*RecordCache)

// WithCapacity sets the maximum number of cached records.
// Non-positive values fall back to DefaultCapacity.
func WithCapacity(n int) Option {
	return func(c *RecordCache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// cacheEntry is one LRU slot.
type cacheEntry struct {
	sym crossref.Symbol
	rec *crossref.Record
}

// RecordCache is an LRU cache of decoded crossref records in front of a
// store. It implements resolver.Store so it can be dropped in wherever a
// store is expected; Put writes through and invalidates.
//
// Thread Safety:
//
//	RecordCache is safe for concurrent use. A mutex guards the LRU
//	structures; hit/miss/eviction counters are atomic.
type RecordCache struct {
	store    resolver.Store
	capacity int

	mu      sync.Mutex
	ll      *list.List
	entries map[crossref.Symbol]*list.Element
	flight  singleflight.Group

	hits      int64
	misses    int64
	evictions int64
}

// New wraps store with an LRU record cache.
//
// Inputs:
//
//	store - The backing store; lookups fall through to it on miss.
//	opts - Optional configuration (capacity).
//
// Outputs:
//
//	*RecordCache - The cache. Close closes the backing store too.
//
// Thread Safety: The returned cache is safe for concurrent use.
func New(store resolver.Store, opts ...Option) *RecordCache {
	c := &RecordCache{
		store:    store,
		capacity: DefaultCapacity,
		ll:       list.New(),
		entries:  make(map[crossref.Symbol]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup implements resolver.Store.
//
// Description:
//
//	Returns the cached record for sym, moving it to the front of the LRU
//	list. A miss falls through to the wrapped store; concurrent misses for
//	the same symbol share one store lookup via singleflight. Errors are
//	not cached.
//
// Inputs:
//
//	ctx - Context for cancellation (observed by the backing store).
//	sym - The symbol to resolve.
//
// Outputs:
//
//	*crossref.Record - The shared, immutable record.
//	error - The backing store's error on miss failure.
func (c *RecordCache) Lookup(ctx context.Context, sym crossref.Symbol) (*crossref.Record, error) {
	c.mu.Lock()
	if el, ok := c.entries[sym]; ok {
		c.ll.MoveToFront(el)
		rec := el.Value.(*cacheEntry).rec
		c.mu.Unlock()
		atomic.AddInt64(&c.hits, 1)
		recordHit(ctx)
		return rec, nil
	}
	c.mu.Unlock()
	atomic.AddInt64(&c.misses, 1)
	recordMiss(ctx)

	v, err, _ := c.flight.Do(string(sym), func() (interface{}, error) {
		rec, err := c.store.Lookup(ctx, sym)
		if err != nil {
			return nil, err
		}
		c.insert(sym, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*crossref.Record), nil
}

// Put implements resolver.Store.
//
// Description:
//
//	Writes through to the backing store, then drops any cached copy so the
//	next lookup sees the new record.
//
// Outputs:
//
//	error - The backing store's write error; on error the cache entry is
//	left untouched.
func (c *RecordCache) Put(ctx context.Context, sym crossref.Symbol, record json.RawMessage) error {
	if err := c.store.Put(ctx, sym, record); err != nil {
		return err
	}
	c.mu.Lock()
	if el, ok := c.entries[sym]; ok {
		c.ll.Remove(el)
		delete(c.entries, sym)
	}
	c.mu.Unlock()
	return nil
}

// Close closes the wrapped store.
func (c *RecordCache) Close() error {
	return c.store.Close()
}

// Stats returns cumulative hit, miss, and eviction counts.
func (c *RecordCache) Stats() (hits, misses, evictions int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), atomic.LoadInt64(&c.evictions)
}

// Len returns the number of cached records.
func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// insert adds a record, evicting from the LRU tail past capacity.
func (c *RecordCache) insert(sym crossref.Symbol, rec *crossref.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[sym]; ok {
		el.Value.(*cacheEntry).rec = rec
		c.ll.MoveToFront(el)
		return
	}
	c.entries[sym] = c.ll.PushFront(&cacheEntry{sym: sym, rec: rec})
	for c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		c.ll.Remove(tail)
		delete(c.entries, tail.Value.(*cacheEntry).sym)
		atomic.AddInt64(&c.evictions, 1)
		recordEviction(context.Background())
	}
}
