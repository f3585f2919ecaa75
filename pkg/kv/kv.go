// Package kv abstracts the process-lifetime counter caches (rate limits,
// usage accumulators) behind a store with atomic per-key semantics, so an
// in-process map and a distributed cache are interchangeable at call sites.
package kv

import (
	"sync"
	"time"
)

// Store is a keyed counter store with atomic increment semantics. All
// counters are best-effort: losing state on process restart is acceptable
// staleness, not a correctness problem.
type Store interface {
	// IncrWindow atomically increments the counter for key inside a
	// fixed window. When the window has elapsed since the counter was
	// created, the counter resets before incrementing. Returns the
	// post-increment count and the time the window resets.
	IncrWindow(key string, window time.Duration) (count int64, resetAt time.Time)
	// AddWindow is IncrWindow with an arbitrary delta, for token
	// accumulators.
	AddWindow(key string, delta int64, window time.Duration) (count int64, resetAt time.Time)
	// Get returns the current count without modifying it.
	Get(key string) int64
	// CompareAndSwap sets key to next only if it currently holds old.
	CompareAndSwap(key string, old, next int64) bool
}

type entry struct {
	count   int64
	resetAt time.Time
}

// MemStore is the single-process Store. A single mutex guards the map;
// increments are simple read-modify-write so per-key atomicity is
// required to keep concurrent requests from racing past a quota.
type MemStore struct {
	mu  sync.Mutex
	m   map[string]*entry
	now func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]*entry), now: time.Now}
}

// NewMemStoreWithClock is for tests.
func NewMemStoreWithClock(now func() time.Time) *MemStore {
	return &MemStore{m: make(map[string]*entry), now: now}
}

func (s *MemStore) IncrWindow(key string, window time.Duration) (int64, time.Time) {
	return s.AddWindow(key, 1, window)
}

func (s *MemStore) AddWindow(key string, delta int64, window time.Duration) (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.m[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{resetAt: now.Add(window)}
		s.m[key] = e
	}
	e.count += delta
	return e.count, e.resetAt
}

func (s *MemStore) Get(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[key]; ok {
		return e.count
	}
	return 0
}

func (s *MemStore) CompareAndSwap(key string, old, next int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	if !ok {
		if old != 0 {
			return false
		}
		s.m[key] = &entry{count: next}
		return true
	}
	if e.count != old {
		return false
	}
	e.count = next
	return true
}
