package state_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.mon.icu/kioku/internal/state"
)

type weakEntity struct {
	id uint64
}

func TestWeakValueMapLiveEntries(t *testing.T) {
	m := state.NewWeakValueMap[uint64, weakEntity]()

	owner := &weakEntity{id: 1}
	m.Set(1, owner)

	// While a strong owner exists, the slot resolves even across GCs.
	runtime.GC()
	v, ok := m.Get(1)
	require.True(t, ok)
	require.Same(t, owner, v)
	require.Equal(t, 1, m.Len())

	runtime.KeepAlive(owner)
}

func TestWeakValueMapReclamation(t *testing.T) {
	m := state.NewWeakValueMap[uint64, weakEntity]()

	// No strong owner: the slot must read as absent after collection, even
	// though Remove was never called.
	func() {
		m.Set(2, &weakEntity{id: 2})
	}()
	runtime.GC()
	runtime.GC()

	_, ok := m.Get(2)
	require.False(t, ok)
	require.Equal(t, 0, m.Len())
}

func TestWeakValueMapUpsert(t *testing.T) {
	m := state.NewWeakValueMap[uint64, weakEntity]()

	calls := 0
	construct := func() (*weakEntity, error) {
		calls++
		return &weakEntity{id: 3}, nil
	}

	first, err := m.Upsert(3, construct)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// Live entry: the constructor must not run again and the same value
	// comes back.
	second, err := m.Upsert(3, construct)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Same(t, first, second)

	// Drop the only strong references and collect; the next upsert has to
	// construct a fresh value.
	first, second = nil, nil
	runtime.GC()
	runtime.GC()

	third, err := m.Upsert(3, construct)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.NotNil(t, third)
}

func TestWeakValueMapRemove(t *testing.T) {
	m := state.NewWeakValueMap[uint64, weakEntity]()

	owner := &weakEntity{id: 4}
	m.Set(4, owner)

	require.True(t, m.Remove(4))
	_, ok := m.Get(4)
	require.False(t, ok)
	require.False(t, m.Remove(4))

	runtime.KeepAlive(owner)
}
