package model

import (
	"pkg.mon.icu/kioku/internal/payload"
)

// User is a leaf entity. It is held weakly by the registry and stays cached
// only while some strong owner (a Member, a Message author, a DM recipient)
// references it.
type User struct {
	ID            Snowflake
	Username      string
	Discriminator string
	AvatarHash    string
	IsBot         bool
	IsSystem      bool
}

func NewUser(o payload.Object) (*User, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	u := &User{ID: id}
	// These never change for a given account.
	u.IsBot, _ = o.OptBool("bot")
	u.IsSystem, _ = o.OptBool("system")
	u.UpdateState(o)
	return u, nil
}

// UpdateState applies a possibly partial user payload in place. Absent keys
// leave the current value untouched.
func (u *User) UpdateState(o payload.Object) {
	if v, ok := o.OptStr("username"); ok {
		u.Username = v
	}
	if v, ok := o.OptStr("discriminator"); ok {
		u.Discriminator = v
	}
	if v, ok := o.OptStr("avatar"); ok {
		u.AvatarHash = v
	}
}

// Clone returns a value copy for diffing.
func (u *User) Clone() *User {
	d := *u
	return &d
}

// BotUser is the account the process is signed in as. It is detected by the
// OAuth2-scoped keys only the bot's own payloads carry.
type BotUser struct {
	User
	IsMFAEnabled bool
	IsVerified   bool
	Email        string
	Locale       string
	Flags        int64
	PremiumType  int64
}

// IsBotUserPayload reports whether a user payload describes the bot account
// itself rather than a third-party user.
func IsBotUserPayload(o payload.Object) bool {
	return o.Has("mfa_enabled") || o.Has("verified")
}

func NewBotUser(o payload.Object) (*BotUser, error) {
	u, err := NewUser(o)
	if err != nil {
		return nil, err
	}
	b := &BotUser{User: *u}
	b.UpdateState(o)
	return b, nil
}

func (b *BotUser) UpdateState(o payload.Object) {
	b.User.UpdateState(o)
	if v, ok := o.OptBool("mfa_enabled"); ok {
		b.IsMFAEnabled = v
	}
	if v, ok := o.OptBool("verified"); ok {
		b.IsVerified = v
	}
	if v, ok := o.OptStr("email"); ok {
		b.Email = v
	}
	if v, ok := o.OptStr("locale"); ok {
		b.Locale = v
	}
	if v, ok := o.OptInt("flags"); ok {
		b.Flags = v
	}
	if v, ok := o.OptInt("premium_type"); ok {
		b.PremiumType = v
	}
}

func (b *BotUser) Clone() *BotUser {
	d := *b
	return &d
}
