package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pkg.mon.icu/kioku/internal/payload"
	"pkg.mon.icu/kioku/internal/state/model"
)

func TestChannelFromPayloadVariants(t *testing.T) {
	t.Parallel()

	guildTypes := map[string]model.ChannelType{
		"text":     model.ChannelTypeGuildText,
		"voice":    model.ChannelTypeGuildVoice,
		"category": model.ChannelTypeGuildCategory,
		"news":     model.ChannelTypeGuildNews,
		"store":    model.ChannelTypeGuildStore,
	}
	for name, typ := range guildTypes {
		t.Run(name, func(t *testing.T) {
			ch, err := model.ChannelFromPayload(newFakeRegistry(), payload.Object{
				"id":   40,
				"type": int64(typ),
				"name": name,
			}, 10)
			require.NoError(t, err)

			gc, ok := ch.(*model.GuildChannel)
			require.True(t, ok)
			require.Equal(t, typ, gc.Type)
			require.Equal(t, uint64(10), gc.GuildID)
			require.False(t, gc.Type.IsDM())
		})
	}

	t.Run("dm", func(t *testing.T) {
		ch, err := model.ChannelFromPayload(newFakeRegistry(), payload.Object{
			"id":   41,
			"type": 1,
			"recipients": []any{
				payload.Object{"id": 100, "username": "friend"},
			},
		}, 0)
		require.NoError(t, err)

		dm, ok := ch.(*model.DMChannel)
		require.True(t, ok)
		require.True(t, dm.Type.IsDM())
		require.Len(t, dm.Recipients, 1)
		require.Equal(t, "friend", dm.Recipients[0].Username)
	})

	t.Run("group dm", func(t *testing.T) {
		ch, err := model.ChannelFromPayload(newFakeRegistry(), payload.Object{
			"id":       42,
			"type":     3,
			"name":     "the group",
			"owner_id": 100,
		}, 0)
		require.NoError(t, err)

		dm, ok := ch.(*model.DMChannel)
		require.True(t, ok)
		require.Equal(t, "the group", dm.Name)
		require.Equal(t, uint64(100), dm.OwnerID)
	})

	t.Run("unknown discriminator", func(t *testing.T) {
		_, err := model.ChannelFromPayload(newFakeRegistry(), payload.Object{"id": 43, "type": 42}, 0)
		require.ErrorIs(t, err, model.ErrUnknownVariant)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := model.ChannelFromPayload(newFakeRegistry(), payload.Object{"id": 43}, 0)
		require.ErrorIs(t, err, payload.ErrMalformed)
	})
}

func TestChannelTypeIsTextBased(t *testing.T) {
	t.Parallel()

	require.True(t, model.ChannelTypeGuildText.IsTextBased())
	require.True(t, model.ChannelTypeGuildNews.IsTextBased())
	require.True(t, model.ChannelTypeDM.IsTextBased())
	require.True(t, model.ChannelTypeGroupDM.IsTextBased())
	require.False(t, model.ChannelTypeGuildVoice.IsTextBased())
	require.False(t, model.ChannelTypeGuildCategory.IsTextBased())
	require.False(t, model.ChannelTypeGuildStore.IsTextBased())
}

func TestGuildChannelOverwrites(t *testing.T) {
	t.Parallel()

	ch, err := model.ChannelFromPayload(newFakeRegistry(), payload.Object{
		"id":   40,
		"type": 0,
		"permission_overwrites": []any{
			payload.Object{"id": 20, "type": "role", "allow": 1024, "deny": 0},
			payload.Object{"id": 100, "type": 1, "allow": 0, "deny": 2048},
		},
	}, 10)
	require.NoError(t, err)

	gc := ch.(*model.GuildChannel)
	require.Len(t, gc.Overwrites, 2)
	require.Equal(t, model.PermissionOverwrite{ID: 20, Type: "role", Allow: 1024}, gc.Overwrites[0])
	require.Equal(t, model.PermissionOverwrite{ID: 100, Type: "member", Deny: 2048}, gc.Overwrites[1])
}
