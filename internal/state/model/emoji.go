package model

import (
	"fmt"
	"slices"

	"pkg.mon.icu/kioku/internal/payload"
)

// Emoji is one of three variants resolved from the payload shape: a plain
// unicode emoji carries no ID at all, a partial emoji carries an ID but no
// animation flag, and a full guild emoji carries both. Only the guild variant
// is cached; the other two are throwaway values.
type Emoji interface {
	isEmoji()
	// String renders the emoji in the "name:id" reaction-endpoint form, or
	// the raw codepoints for a unicode emoji.
	String() string
}

// UnicodeEmoji is a built-in emoji identified by its codepoints.
type UnicodeEmoji struct {
	Value string
}

func (UnicodeEmoji) isEmoji()         {}
func (e UnicodeEmoji) String() string { return e.Value }

// UnknownEmoji is a partial custom emoji seen in a context (reactions, some
// messages) that does not tell us enough to build a full GuildEmoji.
type UnknownEmoji struct {
	ID   Snowflake
	Name string
}

func (UnknownEmoji) isEmoji() {}

func (e UnknownEmoji) String() string { return fmt.Sprintf("%s:%d", e.Name, e.ID) }

// GuildEmoji is a custom emoji owned by one guild.
type GuildEmoji struct {
	ID            Snowflake
	GuildID       Snowflake
	Name          string
	RoleIDs       []Snowflake
	User          *User
	RequireColons bool
	Managed       bool
	Animated      bool

	reg StateRegistry
}

func (*GuildEmoji) isEmoji() {}

func (e *GuildEmoji) String() string {
	if e.Animated {
		return fmt.Sprintf("a:%s:%d", e.Name, e.ID)
	}
	return fmt.Sprintf("%s:%d", e.Name, e.ID)
}

func (e *GuildEmoji) UpdateState(o payload.Object) error {
	if v, ok := o.OptStr("name"); ok {
		e.Name = v
	}
	if v, ok := o.OptSnowflakeList("roles"); ok {
		e.RoleIDs = v
	}
	if v, ok := o.OptBool("require_colons"); ok {
		e.RequireColons = v
	}
	if v, ok := o.OptBool("managed"); ok {
		e.Managed = v
	}
	if v, ok := o.OptBool("animated"); ok {
		e.Animated = v
	}
	if uo, ok := o.OptObject("user"); ok {
		u, err := e.reg.ParseUser(uo)
		if err != nil {
			return err
		}
		e.User = u
	}
	return nil
}

// Guild resolves the owning guild through the registry.
func (e *GuildEmoji) Guild() (*Guild, bool) {
	return e.reg.GetGuildByID(e.GuildID)
}

func (e *GuildEmoji) Clone() *GuildEmoji {
	d := *e
	d.RoleIDs = slices.Clone(e.RoleIDs)
	return &d
}

// EmojiFromPayload resolves the variant and constructs it. The mapping is:
// no usable "id" key means unicode, an "id" without an "animated" key means
// partial, both keys mean a full guild emoji.
func EmojiFromPayload(reg StateRegistry, o payload.Object, guildID Snowflake) (Emoji, error) {
	name, err := o.Str("name")
	if err != nil {
		return nil, err
	}

	id, hasID := o.OptSnowflake("id")
	switch {
	case !hasID:
		return UnicodeEmoji{Value: name}, nil
	case !o.Has("animated"):
		return UnknownEmoji{ID: id, Name: name}, nil
	default:
		e := &GuildEmoji{ID: id, GuildID: guildID, reg: reg}
		if err := e.UpdateState(o); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// SameEmoji reports whether two emojis identify the same reaction bucket:
// unicode emojis compare by value, custom emojis by ID.
func SameEmoji(a, b Emoji) bool {
	switch av := a.(type) {
	case UnicodeEmoji:
		bv, ok := b.(UnicodeEmoji)
		return ok && av.Value == bv.Value
	case UnknownEmoji:
		return av.ID == customEmojiID(b)
	case *GuildEmoji:
		return av.ID == customEmojiID(b)
	default:
		return false
	}
}

func customEmojiID(e Emoji) Snowflake {
	switch v := e.(type) {
	case UnknownEmoji:
		return v.ID
	case *GuildEmoji:
		return v.ID
	default:
		return 0
	}
}
