// Package ordered provides a map that preserves key insertion order during
// iteration, used throughout the review pipeline wherever section order must
// survive a round trip through a map-shaped structure.
package ordered

// Map is a string-keyed map that remembers the order keys were first
// inserted in. Re-setting an existing key updates its value but does not
// move it in iteration order. The zero value is not usable; use New.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{
		values: make(map[string]V),
	}
}

// Set inserts or updates the value for key, preserving the position of an
// existing key and appending new keys to the end.
func (m *Map[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, if present, compacting the key order.
func (m *Map[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order. The returned slice must not be mutated.
func (m *Map[V]) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.keys)
}

// Range calls fn for each entry in insertion order, stopping early if fn
// returns false.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// MarshalJSON renders the map as a JSON object with keys in insertion order.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.keys, func(k string) (V, bool) {
		v, ok := m.values[k]
		return v, ok
	})
}
