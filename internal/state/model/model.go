// Package model defines the entity types held by the state registry and the
// ownership edges between them. Children reference their parent guild by ID
// only; parent accessors resolve through the registry at call time so that no
// reference cycle between a guild and its roles, emojis or channels can form.
package model

import (
	"errors"

	"pkg.mon.icu/kioku/internal/payload"
)

// Snowflake is a 64-bit entity ID that embeds a creation timestamp and
// shard metadata. Equality and ordering of entities are defined by it alone.
type Snowflake = uint64

// ErrUnknownVariant indicates a payload discriminator value (channel type,
// emoji shape) that is not recognized. It fails that single payload, not the
// registry as a whole.
var ErrUnknownVariant = errors.New("unknown entity variant")

// StateRegistry is the registry handle entities keep for recursive payload
// parsing and for resolving parent references by ID.
type StateRegistry interface {
	ParseUser(o payload.Object) (*User, error)
	ParseMember(o payload.Object, guild *Guild) (*Member, error)
	ParseRole(o payload.Object, guildID Snowflake) (*Role, error)
	ParseEmoji(o payload.Object, guildID Snowflake) (Emoji, error)
	ParseChannel(o payload.Object, guildID Snowflake) (Channel, error)
	ParsePresence(member *Member, o payload.Object) *Presence

	GetGuildByID(id Snowflake) (*Guild, bool)
	GetChannelByID(id Snowflake) (Channel, bool)
	GetUserByID(id Snowflake) (*User, bool)
}
