package model

import (
	"pkg.mon.icu/kioku/internal/payload"
)

// Webhook is parsed on demand and returned to the caller transiently; the
// registry never stores webhooks.
type Webhook struct {
	ID         Snowflake
	GuildID    Snowflake
	ChannelID  Snowflake
	User       *User
	Name       string
	AvatarHash string
	Token      string
}

func NewWebhook(reg StateRegistry, o payload.Object) (*Webhook, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	channelID, err := o.Snowflake("channel_id")
	if err != nil {
		return nil, err
	}
	w := &Webhook{ID: id, ChannelID: channelID}
	w.GuildID, _ = o.OptSnowflake("guild_id")
	w.Name, _ = o.OptStr("name")
	w.AvatarHash, _ = o.OptStr("avatar")
	w.Token, _ = o.OptStr("token")
	if uo, ok := o.OptObject("user"); ok {
		if w.User, err = reg.ParseUser(uo); err != nil {
			return nil, err
		}
	}
	return w, nil
}
