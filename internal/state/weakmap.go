package state

import (
	"weak"
)

// WeakValueMap is a lookup table whose slots do not keep their values alive.
// An entry stays resolvable only while some strong owner elsewhere (a guild's
// role map, a message's author field) references the value; once the last
// owner lets go, the next garbage collection reclaims the value and the slot
// reads as absent. This gives O(1) lookup-by-id for transitively owned
// entities without the map itself pinning them in memory.
type WeakValueMap[K comparable, V any] struct {
	entries map[K]weak.Pointer[V]
}

func NewWeakValueMap[K comparable, V any]() *WeakValueMap[K, V] {
	return &WeakValueMap[K, V]{entries: make(map[K]weak.Pointer[V])}
}

// Get returns the live value for key. A slot whose referent has been
// reclaimed reads as absent and is dropped.
func (m *WeakValueMap[K, V]) Get(key K) (*V, bool) {
	p, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	v := p.Value()
	if v == nil {
		delete(m.entries, key)
		return nil, false
	}
	return v, true
}

// Set installs a weak slot for value under key.
func (m *WeakValueMap[K, V]) Set(key K, value *V) {
	m.entries[key] = weak.Make(value)
}

// Upsert returns the existing live value for key, or installs and returns
// the constructor's value when the slot is empty or its referent has been
// reclaimed. The constructor is not invoked for live entries.
func (m *WeakValueMap[K, V]) Upsert(key K, construct func() (*V, error)) (*V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	v, err := construct()
	if err != nil {
		return nil, err
	}
	m.Set(key, v)
	return v, nil
}

// Remove drops the slot for key, live or not.
func (m *WeakValueMap[K, V]) Remove(key K) bool {
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

// Len counts live entries, pruning reclaimed slots as it goes.
func (m *WeakValueMap[K, V]) Len() int {
	n := 0
	for k, p := range m.entries {
		if p.Value() == nil {
			delete(m.entries, k)
			continue
		}
		n++
	}
	return n
}
