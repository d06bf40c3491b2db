package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.mon.icu/kioku/internal/state"
)

func TestNewBoundedMap(t *testing.T) {
	t.Parallel()

	t.Run("rejects zero capacity", func(t *testing.T) {
		t.Parallel()

		_, err := state.NewBoundedMap[uint64, string](0)
		require.ErrorIs(t, err, state.ErrInvalidConfig)
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		t.Parallel()

		_, err := state.NewBoundedMap[uint64, string](-3)
		require.ErrorIs(t, err, state.ErrInvalidConfig)
	})

	t.Run("accepts capacity of one", func(t *testing.T) {
		t.Parallel()

		m, err := state.NewBoundedMap[uint64, string](1)
		require.NoError(t, err)
		require.Equal(t, 0, m.Len())
	})
}

func TestBoundedMapEviction(t *testing.T) {
	t.Parallel()

	// The map plays the role of an "LRU cache" but is really FIFO by
	// insertion order: reads never promote an entry.
	t.Run("evicts oldest inserted regardless of reads", func(t *testing.T) {
		t.Parallel()

		m, err := state.NewBoundedMap[string, int](3)
		require.NoError(t, err)

		m.Set("a", 1)
		m.Set("b", 2)
		m.Set("c", 3)

		// A read must not refresh b's position.
		_, ok := m.Get("b")
		require.True(t, ok)

		m.Set("d", 4)

		require.Equal(t, 3, m.Len())
		_, ok = m.Get("a")
		require.False(t, ok, "oldest entry should have been evicted")
		require.Equal(t, []string{"b", "c", "d"}, m.Keys())
	})

	t.Run("updating an existing key keeps its slot", func(t *testing.T) {
		t.Parallel()

		m, err := state.NewBoundedMap[string, int](2)
		require.NoError(t, err)

		m.Set("a", 1)
		m.Set("b", 2)
		m.Set("a", 10) // full map, existing key: update in place, no eviction

		require.Equal(t, 2, m.Len())
		v, ok := m.Get("a")
		require.True(t, ok)
		require.Equal(t, 10, v)
		require.Equal(t, []string{"a", "b"}, m.Keys())

		// a is still the oldest entry and goes first.
		m.Set("c", 3)
		_, ok = m.Get("a")
		require.False(t, ok)
		require.Equal(t, []string{"b", "c"}, m.Keys())
	})
}

func TestBoundedMapRemove(t *testing.T) {
	t.Parallel()

	m, err := state.NewBoundedMap[string, int](2)
	require.NoError(t, err)

	m.Set("a", 1)
	m.Set("b", 2)

	v, ok := m.Remove("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, m.Len())

	_, ok = m.Remove("a")
	require.False(t, ok)

	// Removal frees a slot; no eviction needed for the next insert.
	m.Set("c", 3)
	require.Equal(t, []string{"b", "c"}, m.Keys())
}

func TestBoundedMapEach(t *testing.T) {
	t.Parallel()

	m, err := state.NewBoundedMap[string, int](4)
	require.NoError(t, err)

	m.Set("x", 1)
	m.Set("y", 2)
	m.Set("z", 3)

	var visited []string
	m.Each(func(k string, v int) bool {
		visited = append(visited, k)
		return true
	})
	require.Equal(t, []string{"x", "y", "z"}, visited)

	visited = visited[:0]
	m.Each(func(k string, v int) bool {
		visited = append(visited, k)
		return false
	})
	require.Equal(t, []string{"x"}, visited)
}
