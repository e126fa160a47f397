// Package cache implements the keyed (subject, key) -> value store of
// spec.md §4.7/§6.5, plus the Unthreader serialization guard of §4.8.
package cache

import "time"

// Cache is the public store contract. A hit with a nil Value is a
// legitimate result — it means the cached computation produced no value,
// which is distinct from a miss, per spec.md §4.7's "CacheEntry.value is
// Option<String>" note.
type Cache interface {
	// Read looks up (subject, key). hit is false on a miss; on a hit,
	// value may still be nil (cached "None").
	Read(subject, key string) (hit bool, value *string, err error)

	// Write (re)inserts (subject, key) -> value, recording elapsed as the
	// duration hint the delay feature sleeps against on a later hit.
	Write(subject, key string, value *string, elapsed time.Duration) error

	// Close releases any underlying resources (file handles, connections).
	Close() error
}

// elapsedReader is implemented by backends that can recall the elapsed
// hint recorded at Write time, so NewDelaying can reproduce spec.md §4.7's
// timing-side-channel mitigation ("when delay is true and a read hits, the
// reader sleeps approximately duration"). Backends that don't implement it
// still satisfy Cache; NewDelaying degenerates to a pass-through for them.
type elapsedReader interface {
	readWithElapsed(subject, key string) (hit bool, value *string, elapsed time.Duration, err error)
}

// delayingCache wraps a Cache so that reads which hit sleep for the
// elapsed duration recorded at write time, per spec.md §4.7/§8 property 11.
type delayingCache struct {
	Cache
}

// NewDelaying wraps c so that a hit sleeps for its recorded elapsed
// duration before returning. Intended for use when a Job's CacheConfig.Delay
// flag is set; callers with Delay unset should use c directly.
func NewDelaying(c Cache) Cache {
	return &delayingCache{Cache: c}
}

func (d *delayingCache) Read(subject, key string) (bool, *string, error) {
	er, ok := d.Cache.(elapsedReader)
	if !ok {
		return d.Cache.Read(subject, key)
	}
	hit, value, elapsed, err := er.readWithElapsed(subject, key)
	if err != nil || !hit {
		return hit, value, err
	}
	time.Sleep(elapsed)
	return hit, value, nil
}
