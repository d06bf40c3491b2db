package model

import (
	"fmt"
	"slices"
	"time"

	"pkg.mon.icu/kioku/internal/payload"
)

// Member is a user's presence in one guild. It never exists without a backing
// User and does not duplicate identity fields: username, discriminator and
// avatar reads delegate to the shared User instance, so a username change
// becomes visible through every Member of every guild at once.
//
// Members live only inside Guild.Members; the registry keeps no independent
// member store.
type Member struct {
	User     *User
	GuildID  Snowflake
	Nick     string
	JoinedAt time.Time
	Deaf     bool
	Mute     bool
	RoleIDs  []Snowflake
	Presence *Presence

	reg StateRegistry
}

// NewMember wraps an already-resolved User. The join timestamp is an anchor
// field: a member payload without one is rejected rather than cached half
// formed.
func NewMember(reg StateRegistry, user *User, guildID Snowflake, o payload.Object) (*Member, error) {
	joined, ok := o.OptTime("joined_at")
	if !ok {
		return nil, fmt.Errorf("member %d: missing joined_at: %w", user.ID, payload.ErrMalformed)
	}
	m := &Member{User: user, GuildID: guildID, JoinedAt: joined, reg: reg}
	m.UpdateState(o)
	return m, nil
}

func (m *Member) UpdateState(o payload.Object) {
	if v, ok := o.OptStr("nick"); ok {
		m.Nick = v
	}
	if v, ok := o.OptSnowflakeList("roles"); ok {
		m.RoleIDs = v
	}
	if v, ok := o.OptBool("deaf"); ok {
		m.Deaf = v
	}
	if v, ok := o.OptBool("mute"); ok {
		m.Mute = v
	}
}

// ID returns the backing user's ID; a member has no identity of its own.
func (m *Member) ID() Snowflake { return m.User.ID }

func (m *Member) Username() string      { return m.User.Username }
func (m *Member) Discriminator() string { return m.User.Discriminator }
func (m *Member) AvatarHash() string    { return m.User.AvatarHash }
func (m *Member) IsBot() bool           { return m.User.IsBot }

// Guild resolves the owning guild through the registry.
func (m *Member) Guild() (*Guild, bool) {
	return m.reg.GetGuildByID(m.GuildID)
}

// HasRole reports whether the member carries the given role ID.
func (m *Member) HasRole(roleID Snowflake) bool {
	return slices.Contains(m.RoleIDs, roleID)
}

// Clone returns a value copy for diffing. The backing User is shared, not
// duplicated; the role ID list is copied.
func (m *Member) Clone() *Member {
	d := *m
	d.RoleIDs = slices.Clone(m.RoleIDs)
	return &d
}
