package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	hasValue bool
	value    string
	elapsed  time.Duration
}

// MemoryCache is an in-process map-backed Cache, used by tests and by
// runs that want the Unthreader's single-flight semantics without touching
// disk.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[[2]string]memoryEntry
}

// NewMemory returns an empty MemoryCache.
func NewMemory() *MemoryCache {
	return &MemoryCache{entries: make(map[[2]string]memoryEntry)}
}

func (m *MemoryCache) Read(subject, key string) (bool, *string, error) {
	hit, value, _, err := m.readWithElapsed(subject, key)
	return hit, value, err
}

func (m *MemoryCache) readWithElapsed(subject, key string) (bool, *string, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[[2]string{subject, key}]
	if !ok {
		return false, nil, 0, nil
	}
	if !e.hasValue {
		return true, nil, e.elapsed, nil
	}
	v := e.value
	return true, &v, e.elapsed, nil
}

func (m *MemoryCache) Write(subject, key string, value *string, elapsed time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{elapsed: elapsed}
	if value != nil {
		e.hasValue = true
		e.value = *value
	}
	m.entries[[2]string{subject, key}] = e
	return nil
}

func (m *MemoryCache) Close() error { return nil }
