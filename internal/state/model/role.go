package model

import (
	"fmt"

	"pkg.mon.icu/kioku/internal/payload"
)

// Role is owned by exactly one guild. It stores the guild's ID only; Guild()
// resolves through the registry so the Guild → Role → Guild cycle never
// materializes as pointers.
type Role struct {
	ID          Snowflake
	GuildID     Snowflake
	Name        string
	Color       int64
	Hoist       bool
	Position    int64
	Permissions uint64
	Managed     bool
	Mentionable bool

	reg StateRegistry
}

// NewRole parses a role payload. The name is an anchor field and must be
// present on first sight of the role.
func NewRole(reg StateRegistry, o payload.Object, guildID Snowflake) (*Role, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if !o.Has("name") {
		return nil, fmt.Errorf("role %d: missing name: %w", id, payload.ErrMalformed)
	}
	r := &Role{ID: id, GuildID: guildID, reg: reg}
	r.UpdateState(o)
	return r, nil
}

func (r *Role) UpdateState(o payload.Object) {
	if v, ok := o.OptStr("name"); ok {
		r.Name = v
	}
	if v, ok := o.OptInt("color"); ok {
		r.Color = v
	}
	if v, ok := o.OptBool("hoist"); ok {
		r.Hoist = v
	}
	if v, ok := o.OptInt("position"); ok {
		r.Position = v
	}
	if v, ok := o.OptInt("permissions"); ok {
		r.Permissions = uint64(v)
	}
	if v, ok := o.OptBool("managed"); ok {
		r.Managed = v
	}
	if v, ok := o.OptBool("mentionable"); ok {
		r.Mentionable = v
	}
}

// Guild resolves the owning guild through the registry.
func (r *Role) Guild() (*Guild, bool) {
	return r.reg.GetGuildByID(r.GuildID)
}

// Clone returns a value copy for diffing.
func (r *Role) Clone() *Role {
	d := *r
	return &d
}
