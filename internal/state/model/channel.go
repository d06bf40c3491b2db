package model

import (
	"fmt"
	"slices"

	"pkg.mon.icu/kioku/internal/payload"
)

// ChannelType is the numeric discriminator found in channel payloads.
type ChannelType int64

const (
	ChannelTypeGuildText     ChannelType = 0
	ChannelTypeDM            ChannelType = 1
	ChannelTypeGuildVoice    ChannelType = 2
	ChannelTypeGroupDM       ChannelType = 3
	ChannelTypeGuildCategory ChannelType = 4
	ChannelTypeGuildNews     ChannelType = 5
	ChannelTypeGuildStore    ChannelType = 6
)

// IsDM reports whether the type denotes a direct-message channel rather than
// a guild channel. The two families have different storage policies.
func (t ChannelType) IsDM() bool {
	return t == ChannelTypeDM || t == ChannelTypeGroupDM
}

// IsTextBased reports whether messages can be sent to a channel of this type.
func (t ChannelType) IsTextBased() bool {
	switch t {
	case ChannelTypeGuildText, ChannelTypeGuildNews, ChannelTypeDM, ChannelTypeGroupDM:
		return true
	default:
		return false
	}
}

// Channel is either a *GuildChannel or a *DMChannel.
type Channel interface {
	isChannel()
	ChannelID() Snowflake
	ChannelType() ChannelType
	UpdateState(o payload.Object) error
	// Clone returns a value snapshot for diffing.
	Clone() Channel
}

// PermissionOverwrite is a per-role or per-member permission override on a
// guild channel.
type PermissionOverwrite struct {
	ID    Snowflake
	Type  string
	Allow uint64
	Deny  uint64
}

// GuildChannel covers the text, voice, category, news and store subtypes.
// The subtype-specific fields are meaningful only for the matching Type.
// The owning guild is referenced by ID only.
type GuildChannel struct {
	ID         Snowflake
	GuildID    Snowflake
	ParentID   Snowflake
	Type       ChannelType
	Name       string
	Position   int64
	Overwrites []PermissionOverwrite

	// Text and news channels.
	Topic            string
	NSFW             bool
	RateLimitPerUser int64
	LastMessageID    Snowflake

	// Voice channels.
	Bitrate   int64
	UserLimit int64

	reg StateRegistry
}

func (*GuildChannel) isChannel() {}

func (c *GuildChannel) ChannelID() Snowflake     { return c.ID }
func (c *GuildChannel) ChannelType() ChannelType { return c.Type }

// Guild resolves the owning guild through the registry.
func (c *GuildChannel) Guild() (*Guild, bool) {
	return c.reg.GetGuildByID(c.GuildID)
}

func (c *GuildChannel) UpdateState(o payload.Object) error {
	if v, ok := o.OptSnowflake("guild_id"); ok {
		c.GuildID = v
	}
	if v, ok := o.OptSnowflake("parent_id"); ok {
		c.ParentID = v
	}
	if v, ok := o.OptStr("name"); ok {
		c.Name = v
	}
	if v, ok := o.OptInt("position"); ok {
		c.Position = v
	}
	if raw, ok := o.OptList("permission_overwrites"); ok {
		c.Overwrites = parseOverwrites(raw)
	}
	if v, ok := o.OptStr("topic"); ok {
		c.Topic = v
	}
	if v, ok := o.OptBool("nsfw"); ok {
		c.NSFW = v
	}
	if v, ok := o.OptInt("rate_limit_per_user"); ok {
		c.RateLimitPerUser = v
	}
	if v, ok := o.OptSnowflake("last_message_id"); ok {
		c.LastMessageID = v
	}
	if v, ok := o.OptInt("bitrate"); ok {
		c.Bitrate = v
	}
	if v, ok := o.OptInt("user_limit"); ok {
		c.UserLimit = v
	}
	return nil
}

func (c *GuildChannel) Clone() Channel {
	d := *c
	d.Overwrites = slices.Clone(c.Overwrites)
	return &d
}

// DMChannel covers direct messages and their group variant. DM channels are
// not guild-owned; the registry holds them in a capacity-bounded store.
type DMChannel struct {
	ID            Snowflake
	Type          ChannelType
	Recipients    []*User
	LastMessageID Snowflake

	// Group DMs only.
	OwnerID  Snowflake
	Name     string
	IconHash string

	reg StateRegistry
}

func (*DMChannel) isChannel() {}

func (c *DMChannel) ChannelID() Snowflake     { return c.ID }
func (c *DMChannel) ChannelType() ChannelType { return c.Type }

func (c *DMChannel) UpdateState(o payload.Object) error {
	if raw, ok := o.OptList("recipients"); ok {
		recipients := make([]*User, 0, len(raw))
		for _, ro := range raw {
			u, err := c.reg.ParseUser(ro)
			if err != nil {
				return err
			}
			recipients = append(recipients, u)
		}
		c.Recipients = recipients
	}
	if v, ok := o.OptSnowflake("last_message_id"); ok {
		c.LastMessageID = v
	}
	if v, ok := o.OptSnowflake("owner_id"); ok {
		c.OwnerID = v
	}
	if v, ok := o.OptStr("name"); ok {
		c.Name = v
	}
	if v, ok := o.OptStr("icon"); ok {
		c.IconHash = v
	}
	return nil
}

func (c *DMChannel) Clone() Channel {
	d := *c
	d.Recipients = slices.Clone(c.Recipients)
	return &d
}

// ChannelFromPayload constructs the channel variant matching the payload's
// type discriminator. An unrecognized discriminator is a hard error for this
// payload; it is never silently coerced into some default shape. For guild
// channels, guildID takes precedence over the payload's own guild_id key
// since several gateway payloads omit it.
func ChannelFromPayload(reg StateRegistry, o payload.Object, guildID Snowflake) (Channel, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	t, err := o.Int("type")
	if err != nil {
		return nil, err
	}

	var ch Channel
	switch typ := ChannelType(t); typ {
	case ChannelTypeGuildText, ChannelTypeGuildVoice, ChannelTypeGuildCategory, ChannelTypeGuildNews, ChannelTypeGuildStore:
		if guildID == 0 {
			guildID, _ = o.OptSnowflake("guild_id")
		}
		ch = &GuildChannel{ID: id, GuildID: guildID, Type: typ, reg: reg}
	case ChannelTypeDM, ChannelTypeGroupDM:
		ch = &DMChannel{ID: id, Type: typ, reg: reg}
	default:
		return nil, fmt.Errorf("channel %d: type %d: %w", id, t, ErrUnknownVariant)
	}

	if err := ch.UpdateState(o); err != nil {
		return nil, err
	}
	return ch, nil
}

func parseOverwrites(raw []payload.Object) []PermissionOverwrite {
	out := make([]PermissionOverwrite, 0, len(raw))
	for _, oo := range raw {
		var ow PermissionOverwrite
		ow.ID, _ = oo.OptSnowflake("id")
		if v, ok := oo.OptStr("type"); ok {
			ow.Type = v
		} else if v, ok := oo.OptInt("type"); ok {
			// Newer API revisions use 0 for role and 1 for member.
			if v == 0 {
				ow.Type = "role"
			} else {
				ow.Type = "member"
			}
		}
		if v, ok := oo.OptInt("allow"); ok {
			ow.Allow = uint64(v)
		}
		if v, ok := oo.OptInt("deny"); ok {
			ow.Deny = uint64(v)
		}
		out = append(out, ow)
	}
	return out
}
