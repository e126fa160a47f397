// Package paramsmap provides Map and Partitioning, the two small lookup
// structures Params uses to back a Cleaner document's "maps" and
// "partitionings" fields, per spec.md §3/§4.3.
package paramsmap

// Map is a lookup table with a default for missing keys and a further
// fallback for an absent key altogether (as opposed to a present-but-
// unmapped key), per spec.md §3: "Lookup of Some(k) returns entries[k]
// else else; lookup of None returns if_none else else."
type Map[K comparable, V any] struct {
	Entries map[K]V
	IfNone  *V
	Else    *V
}

// NewMap constructs an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{Entries: make(map[K]V)}
}

// Get looks up key. A nil key represents the "no key" case, returning
// IfNone (falling back to Else). A non-nil key looks up Entries, falling
// back to Else when absent.
func (m *Map[K, V]) Get(key *K) *V {
	if key == nil {
		if m.IfNone != nil {
			return m.IfNone
		}
		return m.Else
	}
	if v, ok := m.Entries[*key]; ok {
		return &v
	}
	return m.Else
}
