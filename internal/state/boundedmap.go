package state

import (
	"fmt"
	"slices"
)

// BoundedMap is a fixed-capacity map that evicts the oldest-inserted entry
// when a new key would overflow it. Despite the "LRU cache" role it plays,
// eviction order is strictly insertion order: a Get never promotes an entry
// and a Set on an existing key keeps its original slot.
type BoundedMap[K comparable, V any] struct {
	capacity int
	entries  map[K]V
	order    []K
}

// NewBoundedMap fails for capacities below one; a zero-capacity cache could
// never hold the entry it just admitted.
func NewBoundedMap[K comparable, V any](capacity int) (*BoundedMap[K, V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("bounded map capacity %d: %w", capacity, ErrInvalidConfig)
	}
	return &BoundedMap[K, V]{
		capacity: capacity,
		entries:  make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
	}, nil
}

// Get returns the value for key. It has no effect on eviction order.
func (m *BoundedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Set inserts or updates key. Updating an existing key does not refresh its
// position; inserting a new key into a full map first evicts the oldest
// entry.
func (m *BoundedMap[K, V]) Set(key K, value V) {
	if _, ok := m.entries[key]; ok {
		m.entries[key] = value
		return
	}
	if len(m.entries) >= m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[key] = value
	m.order = append(m.order, key)
}

// Remove deletes key and returns the value it held.
func (m *BoundedMap[K, V]) Remove(key K) (V, bool) {
	v, ok := m.entries[key]
	if !ok {
		return v, false
	}
	delete(m.entries, key)
	if i := slices.Index(m.order, key); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return v, true
}

func (m *BoundedMap[K, V]) Len() int {
	return len(m.entries)
}

// Each visits entries in insertion order until fn returns false.
func (m *BoundedMap[K, V]) Each(fn func(K, V) bool) {
	for _, k := range m.order {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}

// Keys returns the keys in insertion order.
func (m *BoundedMap[K, V]) Keys() []K {
	return slices.Clone(m.order)
}
