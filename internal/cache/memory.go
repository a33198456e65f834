// Package cache provides a process-local memoization table with a fixed
// staleness window. It is not shared across instances; the tolerated
// staleness exceeds typical deployment skew, so each instance keeping
// its own copy is acceptable.
package cache

import (
	"sync"
	"time"
)

// DefaultWindow bounds how long a cached analytics result may be served.
const DefaultWindow = 60 * time.Second

type entry struct {
	value    interface{}
	storedAt time.Time
}

// Store memoizes one value per key. Stale entries are superseded on the
// next Set; there is no background eviction.
type Store struct {
	mu      sync.RWMutex
	window  time.Duration
	entries map[string]entry
}

func New(window time.Duration) *Store {
	return &Store{
		window:  window,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key, or false if the key is absent
// or its entry is older than the staleness window.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) >= s.window {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any previous entry.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, storedAt: time.Now()}
}
