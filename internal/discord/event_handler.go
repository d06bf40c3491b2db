package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"pkg.mon.icu/kioku/internal/payload"
	"pkg.mon.icu/kioku/internal/state"
	"pkg.mon.icu/kioku/internal/state/model"
)

func (d *Discord) onReady(_ *discordgo.Session, e *discordgo.Ready) {
	d.logger.Sugar().Infof("Logged in Discord API as %s#%s.", e.User.Username, e.User.Discriminator)
}

// onEvent receives every raw gateway dispatch and routes it into the
// registry. A payload the registry rejects is logged and skipped; one bad
// payload never takes the ingest loop down.
func (d *Discord) onEvent(_ *discordgo.Session, e *discordgo.Event) {
	if e.Operation != 0 || e.Type == "" || len(e.RawData) == 0 {
		return
	}

	o, err := payload.Decode(e.RawData)
	if err != nil {
		d.logger.Warn("Dropping undecodable dispatch.", zap.String("type", e.Type), zap.Error(err))
		return
	}

	if !d.wantEvent(o) {
		return
	}

	d.mu.Lock()
	err = d.apply(e.Type, o)
	d.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, payload.ErrMalformed), errors.Is(err, model.ErrUnknownVariant):
		d.logger.Warn("Dropping rejected payload.", zap.String("type", e.Type), zap.Error(err))
	case errors.Is(err, state.ErrNotFound):
		d.logger.Debug("Dispatch for unknown entity.", zap.String("type", e.Type), zap.Error(err))
	default:
		d.logger.Error("Failed to apply dispatch.", zap.String("type", e.Type), zap.Error(err))
	}
}

// wantEvent applies the guild allowlist from config. Events without a
// guild_id (DMs, user updates) always pass.
func (d *Discord) wantEvent(o payload.Object) bool {
	if d.config.guilds.Empty() {
		return true
	}
	guildID, ok := o.OptSnowflake("guild_id")
	if !ok {
		return true
	}
	return d.config.guilds.Contains(guildID)
}

func (d *Discord) apply(eventType string, o payload.Object) error {
	r := d.registry
	switch eventType {
	case "READY":
		return d.applyReady(o)
	case "GUILD_CREATE":
		_, err := r.ParseGuild(o)
		return err
	case "GUILD_UPDATE":
		_, err := r.UpdateGuild(o)
		return err
	case "GUILD_DELETE":
		return d.applyGuildDelete(o)
	case "GUILD_MEMBER_ADD":
		return d.applyMemberAdd(o)
	case "GUILD_MEMBER_UPDATE":
		return d.applyMemberUpdate(o)
	case "GUILD_MEMBER_REMOVE":
		return d.applyMemberRemove(o)
	case "GUILD_ROLE_CREATE", "GUILD_ROLE_UPDATE":
		return d.applyRoleUpsert(eventType, o)
	case "GUILD_ROLE_DELETE":
		return d.applyRoleDelete(o)
	case "GUILD_EMOJIS_UPDATE":
		return d.applyGuildEmojis(o)
	case "CHANNEL_CREATE":
		_, err := r.ParseChannel(o, 0)
		return err
	case "CHANNEL_UPDATE":
		_, err := r.UpdateChannel(o)
		return err
	case "CHANNEL_DELETE":
		return d.applyChannelDelete(o)
	case "MESSAGE_CREATE":
		return d.applyMessageCreate(o)
	case "MESSAGE_UPDATE":
		_, err := r.UpdateMessage(o)
		return err
	case "MESSAGE_DELETE":
		return d.applyMessageDelete(o)
	case "MESSAGE_REACTION_ADD", "MESSAGE_REACTION_REMOVE":
		return d.applyReaction(eventType, o)
	case "MESSAGE_REACTION_REMOVE_ALL":
		return d.applyReactionRemoveAll(o)
	case "PRESENCE_UPDATE":
		return d.applyPresenceUpdate(o)
	case "USER_UPDATE":
		_, err := r.ParseBotUser(o)
		return err
	default:
		// Plenty of dispatch types carry nothing we cache.
		return nil
	}
}

func (d *Discord) applyReady(o payload.Object) error {
	if uo, ok := o.OptObject("user"); ok {
		if _, err := d.registry.ParseBotUser(uo); err != nil {
			return err
		}
	}
	if guilds, ok := o.OptList("guilds"); ok {
		for _, guild := range guilds {
			if _, err := d.registry.ParseGuild(guild); err != nil {
				d.logger.Warn("Skipping unparsable guild stub.", zap.Error(err))
			}
		}
	}
	if channels, ok := o.OptList("private_channels"); ok {
		for _, co := range channels {
			if _, err := d.registry.ParseChannel(co, 0); err != nil {
				d.logger.Warn("Skipping unparsable private channel.", zap.Error(err))
			}
		}
	}
	return nil
}

func (d *Discord) applyGuildDelete(o payload.Object) error {
	id, err := o.Snowflake("id")
	if err != nil {
		return err
	}
	// An unavailable=true delete is an outage, not a removal.
	if unavailable, _ := o.OptBool("unavailable"); unavailable {
		d.registry.SetGuildUnavailability(id, true)
		return nil
	}
	_, err = d.registry.DeleteGuild(id)
	return err
}

func (d *Discord) applyMemberAdd(o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	g, ok := d.registry.GetGuildByID(guildID)
	if !ok {
		return nil
	}
	_, err = d.registry.ParseMember(o, g)
	return err
}

func (d *Discord) applyMemberUpdate(o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	uo, err := o.Object("user")
	if err != nil {
		return err
	}
	userID, err := uo.Snowflake("id")
	if err != nil {
		return err
	}
	// Keep the shared user identity fresh too; every member delegating to
	// it observes the change at once.
	if _, ok := d.registry.GetUserByID(userID); ok {
		if _, err := d.registry.ParseUser(uo); err != nil {
			return err
		}
	}
	roleIDs, _ := o.OptSnowflakeList("roles")
	nick, _ := o.OptStr("nick")
	d.registry.UpdateMember(guildID, userID, roleIDs, nick)
	return nil
}

func (d *Discord) applyMemberRemove(o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	uo, err := o.Object("user")
	if err != nil {
		return err
	}
	userID, err := uo.Snowflake("id")
	if err != nil {
		return err
	}
	_, err = d.registry.DeleteMember(guildID, userID)
	return err
}

func (d *Discord) applyRoleUpsert(eventType string, o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	ro, err := o.Object("role")
	if err != nil {
		return err
	}
	if eventType == "GUILD_ROLE_UPDATE" {
		if diff, err := d.registry.UpdateRole(guildID, ro); diff != nil || err != nil {
			return err
		}
	}
	_, err = d.registry.ParseRole(ro, guildID)
	return err
}

func (d *Discord) applyRoleDelete(o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	roleID, err := o.Snowflake("role_id")
	if err != nil {
		return err
	}
	_, err = d.registry.DeleteRole(guildID, roleID)
	return err
}

func (d *Discord) applyGuildEmojis(o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	list, ok := o.OptList("emojis")
	if !ok {
		return nil
	}
	_, err = d.registry.UpdateGuildEmojis(list, guildID)
	return err
}

func (d *Discord) applyChannelDelete(o payload.Object) error {
	id, err := o.Snowflake("id")
	if err != nil {
		return err
	}
	_, err = d.registry.DeleteChannel(id)
	return err
}

func (d *Discord) applyMessageCreate(o payload.Object) error {
	if d.config.ignoreRegexp != nil {
		if content, ok := o.OptStr("content"); ok && d.config.ignoreRegexp.MatchString(content) {
			return nil
		}
	}
	_, err := d.registry.ParseMessage(o)
	return err
}

func (d *Discord) applyMessageDelete(o payload.Object) error {
	id, err := o.Snowflake("id")
	if err != nil {
		return err
	}
	_, err = d.registry.DeleteMessage(id)
	return err
}

func (d *Discord) applyReaction(eventType string, o payload.Object) error {
	messageID, err := o.Snowflake("message_id")
	if err != nil {
		return err
	}
	m, ok := d.registry.GetMessageByID(messageID)
	if !ok {
		return nil
	}
	eo, err := o.Object("emoji")
	if err != nil {
		return err
	}
	guildID, _ := o.OptSnowflake("guild_id")
	emoji, err := d.registry.ParseEmoji(eo, guildID)
	if err != nil {
		return err
	}
	if eventType == "MESSAGE_REACTION_ADD" {
		d.registry.AddReaction(m, emoji)
	} else {
		d.registry.RemoveReaction(m, emoji)
	}
	return nil
}

func (d *Discord) applyReactionRemoveAll(o payload.Object) error {
	messageID, err := o.Snowflake("message_id")
	if err != nil {
		return err
	}
	if m, ok := d.registry.GetMessageByID(messageID); ok {
		d.registry.RemoveAllReactions(m)
	}
	return nil
}

func (d *Discord) applyPresenceUpdate(o payload.Object) error {
	guildID, err := o.Snowflake("guild_id")
	if err != nil {
		return err
	}
	uo, err := o.Object("user")
	if err != nil {
		return err
	}
	userID, err := uo.Snowflake("id")
	if err != nil {
		return err
	}
	d.registry.UpdateMemberPresence(guildID, userID, o)
	return nil
}
