package model

import (
	"errors"
	"maps"
	"slices"

	"pkg.mon.icu/kioku/internal/payload"
)

// Guild is the top-level container entity. Its Roles, Emojis, Members and
// Channels maps are the single source of truth for what belongs to it and
// the only strong owners of those entities; the registry's own lookup tables
// for them are weak.
type Guild struct {
	ID                Snowflake
	Name              string
	IconHash          string
	SplashHash        string
	OwnerID           Snowflake
	Region            string
	AFKChannelID      Snowflake
	AFKTimeoutSeconds int64
	VerificationLevel int64
	SystemChannelID   Snowflake
	Features          []string
	MemberCount       int64
	Large             bool
	Unavailable       bool

	Roles    map[Snowflake]*Role
	Emojis   map[Snowflake]*GuildEmoji
	Members  map[Snowflake]*Member
	Channels map[Snowflake]*GuildChannel

	reg StateRegistry
}

// NewGuild constructs an empty guild shell. The registry inserts the shell
// into its store before applying the payload, so that recursive child parsing
// can already resolve the guild by ID.
func NewGuild(reg StateRegistry, id Snowflake) *Guild {
	return &Guild{
		ID:       id,
		Roles:    make(map[Snowflake]*Role),
		Emojis:   make(map[Snowflake]*GuildEmoji),
		Members:  make(map[Snowflake]*Member),
		Channels: make(map[Snowflake]*GuildChannel),
		reg:      reg,
	}
}

// UpdateState applies a guild payload in place, recursively parsing any
// embedded role, emoji, member, channel and presence fragments through the
// registry. A bad fragment is skipped rather than aborting the rest of the
// guild; all fragment errors are joined into the returned error.
func (g *Guild) UpdateState(o payload.Object) error {
	if v, ok := o.OptStr("name"); ok {
		g.Name = v
	}
	if v, ok := o.OptStr("icon"); ok {
		g.IconHash = v
	}
	if v, ok := o.OptStr("splash"); ok {
		g.SplashHash = v
	}
	if v, ok := o.OptSnowflake("owner_id"); ok {
		g.OwnerID = v
	}
	if v, ok := o.OptStr("region"); ok {
		g.Region = v
	}
	if v, ok := o.OptSnowflake("afk_channel_id"); ok {
		g.AFKChannelID = v
	}
	if v, ok := o.OptInt("afk_timeout"); ok {
		g.AFKTimeoutSeconds = v
	}
	if v, ok := o.OptInt("verification_level"); ok {
		g.VerificationLevel = v
	}
	if v, ok := o.OptSnowflake("system_channel_id"); ok {
		g.SystemChannelID = v
	}
	if raw, ok := o["features"].([]any); ok {
		g.Features = g.Features[:0]
		for _, f := range raw {
			if s, ok := f.(string); ok {
				g.Features = append(g.Features, s)
			}
		}
	}
	if v, ok := o.OptInt("member_count"); ok {
		g.MemberCount = v
	}
	if v, ok := o.OptBool("large"); ok {
		g.Large = v
	}
	if v, ok := o.OptBool("unavailable"); ok {
		g.Unavailable = v
	}

	var errs []error
	if list, ok := o.OptList("roles"); ok {
		for _, ro := range list {
			if _, err := g.reg.ParseRole(ro, g.ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if list, ok := o.OptList("emojis"); ok {
		for _, eo := range list {
			if _, err := g.reg.ParseEmoji(eo, g.ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if list, ok := o.OptList("members"); ok {
		for _, mo := range list {
			if _, err := g.reg.ParseMember(mo, g); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if list, ok := o.OptList("channels"); ok {
		for _, co := range list {
			if _, err := g.reg.ParseChannel(co, g.ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if list, ok := o.OptList("presences"); ok {
		for _, po := range list {
			if err := g.applyPresence(po); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// applyPresence attaches an embedded presence fragment to the member it is
// for. Presences for members we have not seen are dropped.
func (g *Guild) applyPresence(o payload.Object) error {
	uo, err := o.Object("user")
	if err != nil {
		return err
	}
	uid, err := uo.Snowflake("id")
	if err != nil {
		return err
	}
	if m, ok := g.Members[uid]; ok {
		g.reg.ParsePresence(m, o)
	}
	return nil
}

// Clone returns a shallow snapshot for diffing: scalar fields are copied and
// the owned maps get fresh headers, but the entities inside them are shared
// with the live guild.
func (g *Guild) Clone() *Guild {
	d := *g
	d.Features = slices.Clone(g.Features)
	d.Roles = maps.Clone(g.Roles)
	d.Emojis = maps.Clone(g.Emojis)
	d.Members = maps.Clone(g.Members)
	d.Channels = maps.Clone(g.Channels)
	return &d
}
