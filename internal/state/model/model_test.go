package model_test

import (
	"pkg.mon.icu/kioku/internal/payload"
	"pkg.mon.icu/kioku/internal/state/model"
)

// fakeRegistry is the minimal StateRegistry the entities need for parent and
// user resolution in tests.
type fakeRegistry struct {
	users    map[model.Snowflake]*model.User
	guilds   map[model.Snowflake]*model.Guild
	channels map[model.Snowflake]model.Channel
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		users:    make(map[model.Snowflake]*model.User),
		guilds:   make(map[model.Snowflake]*model.Guild),
		channels: make(map[model.Snowflake]model.Channel),
	}
}

func (f *fakeRegistry) ParseUser(o payload.Object) (*model.User, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if u, ok := f.users[id]; ok {
		u.UpdateState(o)
		return u, nil
	}
	u, err := model.NewUser(o)
	if err != nil {
		return nil, err
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeRegistry) ParseMember(o payload.Object, guild *model.Guild) (*model.Member, error) {
	uo, err := o.Object("user")
	if err != nil {
		return nil, err
	}
	u, err := f.ParseUser(uo)
	if err != nil {
		return nil, err
	}
	m, err := model.NewMember(f, u, guild.ID, o)
	if err != nil {
		return nil, err
	}
	guild.Members[u.ID] = m
	return m, nil
}

func (f *fakeRegistry) ParseRole(o payload.Object, guildID model.Snowflake) (*model.Role, error) {
	role, err := model.NewRole(f, o, guildID)
	if err != nil {
		return nil, err
	}
	if g, ok := f.guilds[guildID]; ok {
		g.Roles[role.ID] = role
	}
	return role, nil
}

func (f *fakeRegistry) ParseEmoji(o payload.Object, guildID model.Snowflake) (model.Emoji, error) {
	return model.EmojiFromPayload(f, o, guildID)
}

func (f *fakeRegistry) ParseChannel(o payload.Object, guildID model.Snowflake) (model.Channel, error) {
	ch, err := model.ChannelFromPayload(f, o, guildID)
	if err != nil {
		return nil, err
	}
	f.channels[ch.ChannelID()] = ch
	return ch, nil
}

func (f *fakeRegistry) ParsePresence(member *model.Member, o payload.Object) *model.Presence {
	p := model.NewPresence(o)
	member.Presence = p
	return p
}

func (f *fakeRegistry) GetGuildByID(id model.Snowflake) (*model.Guild, bool) {
	g, ok := f.guilds[id]
	return g, ok
}

func (f *fakeRegistry) GetChannelByID(id model.Snowflake) (model.Channel, bool) {
	c, ok := f.channels[id]
	return c, ok
}

func (f *fakeRegistry) GetUserByID(id model.Snowflake) (*model.User, bool) {
	u, ok := f.users[id]
	return u, ok
}
