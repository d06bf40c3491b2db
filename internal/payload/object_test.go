package payload_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pkg.mon.icu/kioku/internal/payload"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	o, err := payload.Decode([]byte(`{"id":"175928847299117063","name":"general","nsfw":false}`))
	require.NoError(t, err)
	require.True(t, o.Has("nsfw"))

	id, err := o.Snowflake("id")
	require.NoError(t, err)
	require.Equal(t, uint64(175928847299117063), id)

	_, err = payload.Decode([]byte(`[1,2,3]`))
	require.ErrorIs(t, err, payload.ErrMalformed)
	_, err = payload.Decode([]byte(`not json`))
	require.ErrorIs(t, err, payload.ErrMalformed)
}

func TestSnowflakeAccessor(t *testing.T) {
	t.Parallel()

	// IDs arrive as decimal strings over the wire but tests and internal
	// callers hand in raw numbers; both shapes must resolve.
	o := payload.Object{
		"str":   "123",
		"num":   float64(456),
		"int":   789,
		"junk":  "not a number",
		"wrong": true,
	}

	for key, want := range map[string]uint64{"str": 123, "num": 456, "int": 789} {
		got, err := o.Snowflake(key)
		require.NoError(t, err, key)
		require.Equal(t, want, got, key)
	}

	for _, key := range []string{"junk", "wrong", "absent"} {
		_, err := o.Snowflake(key)
		require.ErrorIs(t, err, payload.ErrMalformed, key)
		_, ok := o.OptSnowflake(key)
		require.False(t, ok, key)
	}
}

func TestIntAccessor(t *testing.T) {
	t.Parallel()

	o := payload.Object{"float": float64(7), "int": 8, "str": "2048"}

	for key, want := range map[string]int64{"float": 7, "int": 8, "str": 2048} {
		got, err := o.Int(key)
		require.NoError(t, err, key)
		require.Equal(t, want, got, key)
	}

	_, err := o.Int("absent")
	require.ErrorIs(t, err, payload.ErrMalformed)
}

func TestStrAccessor(t *testing.T) {
	t.Parallel()

	o := payload.Object{"name": "general", "num": float64(1)}

	v, err := o.Str("name")
	require.NoError(t, err)
	require.Equal(t, "general", v)

	_, err = o.Str("num")
	require.ErrorIs(t, err, payload.ErrMalformed)
	_, err = o.Str("absent")
	require.ErrorIs(t, err, payload.ErrMalformed)
}

func TestNestedAccessors(t *testing.T) {
	t.Parallel()

	o, err := payload.Decode([]byte(`{
		"user": {"id": "100"},
		"roles": ["20", "21"],
		"members": [{"nick": "a"}, "stray", {"nick": "b"}],
		"joined_at": "2020-05-01T12:00:00Z"
	}`))
	require.NoError(t, err)

	user, err := o.Object("user")
	require.NoError(t, err)
	id, err := user.Snowflake("id")
	require.NoError(t, err)
	require.Equal(t, uint64(100), id)

	_, err = o.Object("absent")
	require.ErrorIs(t, err, payload.ErrMalformed)

	ids, ok := o.OptSnowflakeList("roles")
	require.True(t, ok)
	require.Equal(t, []uint64{20, 21}, ids)

	// Non-object elements in a list are skipped, not fatal.
	members, ok := o.OptList("members")
	require.True(t, ok)
	require.Len(t, members, 2)

	ts, ok := o.OptTime("joined_at")
	require.True(t, ok)
	require.Equal(t, time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC), ts)

	_, ok = o.OptTime("absent")
	require.False(t, ok)
}
