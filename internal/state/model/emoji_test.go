package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.mon.icu/kioku/internal/payload"
	"pkg.mon.icu/kioku/internal/state/model"
)

func TestEmojiFromPayloadVariants(t *testing.T) {
	t.Parallel()
	reg := newFakeRegistry()

	t.Run("no id resolves to unicode", func(t *testing.T) {
		e, err := model.EmojiFromPayload(reg, payload.Object{"name": "👍"}, 0)
		require.NoError(t, err)
		require.Equal(t, model.UnicodeEmoji{Value: "👍"}, e)
		require.Equal(t, "👍", e.String())
	})

	t.Run("id without animated key resolves to partial", func(t *testing.T) {
		e, err := model.EmojiFromPayload(reg, payload.Object{"id": 30, "name": "blob"}, 0)
		require.NoError(t, err)
		require.Equal(t, model.UnknownEmoji{ID: 30, Name: "blob"}, e)
		require.Equal(t, "blob:30", e.String())
	})

	t.Run("id with animated key resolves to guild emoji", func(t *testing.T) {
		e, err := model.EmojiFromPayload(reg, payload.Object{
			"id":             30,
			"name":           "blob",
			"animated":       true,
			"require_colons": true,
			"user":           payload.Object{"id": 100, "username": "uploader"},
		}, 10)
		require.NoError(t, err)

		ge, ok := e.(*model.GuildEmoji)
		require.True(t, ok)
		require.Equal(t, uint64(30), ge.ID)
		require.Equal(t, uint64(10), ge.GuildID)
		require.True(t, ge.Animated)
		require.True(t, ge.RequireColons)
		require.NotNil(t, ge.User)
		require.Equal(t, "uploader", ge.User.Username)
		require.Equal(t, "a:blob:30", ge.String())
	})

	t.Run("missing name is malformed", func(t *testing.T) {
		_, err := model.EmojiFromPayload(reg, payload.Object{"id": 30}, 0)
		require.ErrorIs(t, err, payload.ErrMalformed)
	})
}

func TestSameEmoji(t *testing.T) {
	t.Parallel()

	thumb := model.UnicodeEmoji{Value: "👍"}
	partial := model.UnknownEmoji{ID: 30, Name: "blob"}
	full := &model.GuildEmoji{ID: 30, Name: "blob"}
	other := &model.GuildEmoji{ID: 31, Name: "blob"}

	require.True(t, model.SameEmoji(thumb, model.UnicodeEmoji{Value: "👍"}))
	require.False(t, model.SameEmoji(thumb, model.UnicodeEmoji{Value: "👎"}))

	// Custom emojis compare by ID regardless of how much of them we know.
	require.True(t, model.SameEmoji(partial, full))
	require.True(t, model.SameEmoji(full, partial))
	require.False(t, model.SameEmoji(full, other))

	// Unicode never matches a custom emoji, even on equal names.
	require.False(t, model.SameEmoji(thumb, full))
	require.False(t, model.SameEmoji(partial, thumb))
}
