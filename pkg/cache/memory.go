package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Memory is a process-local Store. There is no background sweep and no
// capacity bound: stale entries are removed only when read after expiry.
type Memory[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	kind    string

	// now is overridable in tests.
	now func() time.Time
}

// NewMemory creates an empty in-memory store. The kind labels the
// store's metrics (e.g. "product", "user").
func NewMemory[K comparable, V any](kind string) *Memory[K, V] {
	return &Memory[K, V]{
		entries: make(map[K]entry[V]),
		kind:    kind,
		now:     time.Now,
	}
}

// Get returns the stored value when present and not expired. Reading an
// expired entry deletes it (lazy cleanup) and reports a miss.
func (m *Memory[K, V]) Get(_ context.Context, key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		CacheMisses.WithLabelValues(m.kind, "memory").Inc()
		var zero V
		return zero, false
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		CacheMisses.WithLabelValues(m.kind, "memory").Inc()
		var zero V
		return zero, false
	}

	CacheHits.WithLabelValues(m.kind, "memory").Inc()
	return e.value, true
}

// Set stores value with expiry now+ttl, overwriting any prior entry.
func (m *Memory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[V]{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
}

// Len reports the number of entries currently held, including entries
// past expiry that have not been read yet.
func (m *Memory[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
