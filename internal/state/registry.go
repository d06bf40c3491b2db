// Package state implements the in-process entity cache that sits between the
// gateway event stream and application code. It is a plain synchronous data
// structure: no operation blocks, and no internal locking is performed. The
// intended deployment is a single event-processing loop feeding it serially;
// sharing it across goroutines requires one external mutex around the whole
// registry, not per-entity locks, because cascades such as DeleteRole touch
// several containers in one call.
package state

import (
	"fmt"

	"go.uber.org/zap"
	"pkg.mon.icu/kioku/internal/payload"
	"pkg.mon.icu/kioku/internal/state/model"
)

// Config carries the two capacity knobs of the registry. Both must be
// positive.
type Config struct {
	MessageCacheSize  int
	UserDMChannelSize int
}

// Diff is an old/new snapshot pair returned by the update operations so a
// dispatcher can report what changed without the registry knowing anything
// about event semantics. Old is a detached snapshot; New is the live cached
// instance.
type Diff[T any] struct {
	Old T
	New T
}

// roleKey scopes role lookups to their owning guild. A flat table keyed by
// role ID alone could hand back a different guild's role on a colliding ID.
type roleKey struct {
	Guild model.Snowflake
	Role  model.Snowflake
}

// Registry is the canonical in-memory object graph. Guilds are held
// strongly and own their roles, emojis, members and channels; the per-kind
// lookup tables for those are weak and exist purely for O(1) access by ID.
// Messages and DM channels are high-volume and capacity-bounded instead.
type Registry struct {
	guilds        map[model.Snowflake]*model.Guild
	guildChannels *WeakValueMap[model.Snowflake, model.GuildChannel]
	users         *WeakValueMap[model.Snowflake, model.User]
	emojis        *WeakValueMap[model.Snowflake, model.GuildEmoji]
	roles         *WeakValueMap[roleKey, model.Role]
	dmChannels    *BoundedMap[model.Snowflake, *model.DMChannel]
	messages      *BoundedMap[model.Snowflake, *model.Message]

	me *model.BotUser

	logger *zap.Logger
}

var _ model.StateRegistry = (*Registry)(nil)

func NewRegistry(config Config, logger *zap.Logger) (*Registry, error) {
	messages, err := NewBoundedMap[model.Snowflake, *model.Message](config.MessageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("message cache: %w", err)
	}
	dmChannels, err := NewBoundedMap[model.Snowflake, *model.DMChannel](config.UserDMChannelSize)
	if err != nil {
		return nil, fmt.Errorf("DM channel cache: %w", err)
	}
	return &Registry{
		guilds:        make(map[model.Snowflake]*model.Guild),
		guildChannels: NewWeakValueMap[model.Snowflake, model.GuildChannel](),
		users:         NewWeakValueMap[model.Snowflake, model.User](),
		emojis:        NewWeakValueMap[model.Snowflake, model.GuildEmoji](),
		roles:         NewWeakValueMap[roleKey, model.Role](),
		dmChannels:    dmChannels,
		messages:      messages,
		logger:        logger,
	}, nil
}

// Me returns the bot user, once one has been parsed.
func (r *Registry) Me() *model.BotUser {
	return r.me
}

// Lookups. All are pure, side-effect-free and O(1) amortized.

func (r *Registry) GetGuildByID(id model.Snowflake) (*model.Guild, bool) {
	g, ok := r.guilds[id]
	return g, ok
}

// GetChannelByID searches guild channels first, then open DM channels.
func (r *Registry) GetChannelByID(id model.Snowflake) (model.Channel, bool) {
	if c, ok := r.guildChannels.Get(id); ok {
		return c, true
	}
	if c, ok := r.dmChannels.Get(id); ok {
		return c, true
	}
	return nil, false
}

func (r *Registry) GetUserByID(id model.Snowflake) (*model.User, bool) {
	if r.me != nil && r.me.ID == id {
		return &r.me.User, true
	}
	return r.users.Get(id)
}

func (r *Registry) GetMemberByID(userID, guildID model.Snowflake) (*model.Member, bool) {
	g, ok := r.guilds[guildID]
	if !ok {
		return nil, false
	}
	m, ok := g.Members[userID]
	return m, ok
}

// GetRoleByID is always scoped to the owning guild; a role ID from another
// guild never resolves.
func (r *Registry) GetRoleByID(guildID, roleID model.Snowflake) (*model.Role, bool) {
	return r.roles.Get(roleKey{Guild: guildID, Role: roleID})
}

func (r *Registry) GetEmojiByID(id model.Snowflake) (*model.GuildEmoji, bool) {
	return r.emojis.Get(id)
}

func (r *Registry) GetMessageByID(id model.Snowflake) (*model.Message, bool) {
	return r.messages.Get(id)
}

// Parse operations: idempotent upserts. An already-cached ID has the payload
// applied in place and the same instance returned, so references held by
// callers stay valid across updates.

func (r *Registry) ParseBotUser(o payload.Object) (*model.BotUser, error) {
	if r.me != nil {
		id, err := o.Snowflake("id")
		if err != nil {
			return nil, err
		}
		if id == r.me.ID {
			r.me.UpdateState(o)
			return r.me, nil
		}
	}
	me, err := model.NewBotUser(o)
	if err != nil {
		return nil, err
	}
	r.me = me
	return me, nil
}

func (r *Registry) ParseUser(o payload.Object) (*model.User, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if (r.me != nil && r.me.ID == id) || model.IsBotUserPayload(o) {
		me, err := r.ParseBotUser(o)
		if err != nil {
			return nil, err
		}
		return &me.User, nil
	}
	if u, ok := r.users.Get(id); ok {
		u.UpdateState(o)
		return u, nil
	}
	u, err := model.NewUser(o)
	if err != nil {
		return nil, err
	}
	r.users.Set(id, u)
	return u, nil
}

// ParseGuild inserts the guild shell before applying the payload so that the
// recursive parsing of embedded roles, members, channels and emojis can
// already resolve their parent. Fragment errors are joined and returned, but
// the guild itself stays cached with whatever parsed cleanly: one bad channel
// must not abort loading the whole guild.
func (r *Registry) ParseGuild(o payload.Object) (*model.Guild, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if g, ok := r.guilds[id]; ok {
		if unavailable, _ := o.OptBool("unavailable"); unavailable {
			g.Unavailable = true
			return g, nil
		}
		return g, g.UpdateState(o)
	}
	g := model.NewGuild(r, id)
	r.guilds[id] = g
	r.logger.Debug("Caching new guild.", zap.Uint64("guild", id))
	return g, g.UpdateState(o)
}

func (r *Registry) ParseMember(o payload.Object, guild *model.Guild) (*model.Member, error) {
	uo, err := o.Object("user")
	if err != nil {
		return nil, err
	}
	userID, err := uo.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if m, ok := guild.Members[userID]; ok {
		m.User.UpdateState(uo)
		m.UpdateState(o)
		return m, nil
	}
	// The backing user resolves first; a member never exists without one.
	u, err := r.ParseUser(uo)
	if err != nil {
		return nil, err
	}
	m, err := model.NewMember(r, u, guild.ID, o)
	if err != nil {
		return nil, err
	}
	guild.Members[userID] = m
	return m, nil
}

func (r *Registry) ParseRole(o payload.Object, guildID model.Snowflake) (*model.Role, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	key := roleKey{Guild: guildID, Role: id}
	if role, ok := r.roles.Get(key); ok {
		role.UpdateState(o)
		return role, nil
	}
	role, err := model.NewRole(r, o, guildID)
	if err != nil {
		return nil, err
	}
	r.roles.Set(key, role)
	if g, ok := r.guilds[guildID]; ok {
		g.Roles[id] = role
	}
	return role, nil
}

func (r *Registry) ParseEmoji(o payload.Object, guildID model.Snowflake) (model.Emoji, error) {
	if id, ok := o.OptSnowflake("id"); ok {
		if existing, live := r.emojis.Get(id); live {
			return existing, existing.UpdateState(o)
		}
	}
	emoji, err := model.EmojiFromPayload(r, o, guildID)
	if err != nil {
		return nil, err
	}
	// Unicode and partial emojis are throwaway values; only full guild
	// emojis get cached and attached to their owner.
	if ge, ok := emoji.(*model.GuildEmoji); ok {
		r.emojis.Set(ge.ID, ge)
		if g, cached := r.guilds[guildID]; cached {
			g.Emojis[ge.ID] = ge
		}
	}
	return emoji, nil
}

func (r *Registry) ParseChannel(o payload.Object, guildID model.Snowflake) (model.Channel, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if existing, ok := r.GetChannelByID(id); ok {
		return existing, existing.UpdateState(o)
	}
	ch, err := model.ChannelFromPayload(r, o, guildID)
	if err != nil {
		return nil, err
	}
	switch c := ch.(type) {
	case *model.DMChannel:
		r.dmChannels.Set(id, c)
	case *model.GuildChannel:
		r.guildChannels.Set(id, c)
		if g, ok := r.guilds[c.GuildID]; ok {
			g.Channels[id] = c
		}
	}
	return ch, nil
}

// ParseMessage caches the message and, when the channel is resolvable, bumps
// its last-message marker. Old messages fall out of the bounded store on
// their own.
func (r *Registry) ParseMessage(o payload.Object) (*model.Message, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	if m, ok := r.messages.Get(id); ok {
		return m, m.UpdateState(o)
	}
	m, err := model.NewMessage(r, o)
	if err != nil {
		return nil, err
	}
	r.recordLastMessage(m.ChannelID, m.ID)
	r.messages.Set(id, m)
	return m, nil
}

func (r *Registry) recordLastMessage(channelID, messageID model.Snowflake) {
	ch, ok := r.GetChannelByID(channelID)
	if !ok || !ch.ChannelType().IsTextBased() {
		return
	}
	switch c := ch.(type) {
	case *model.GuildChannel:
		c.LastMessageID = messageID
	case *model.DMChannel:
		c.LastMessageID = messageID
	}
}

func (r *Registry) ParsePresence(member *model.Member, o payload.Object) *model.Presence {
	p := model.NewPresence(o)
	member.Presence = p
	return p
}

// ParseReaction folds an aggregated reaction payload into its message.
// Reactions for uncached messages are deliberately dropped: there is nothing
// to attach them to, and nothing will ever look them up.
func (r *Registry) ParseReaction(o payload.Object) (*model.Reaction, error) {
	messageID, err := o.Snowflake("message_id")
	if err != nil {
		return nil, err
	}
	eo, err := o.Object("emoji")
	if err != nil {
		return nil, err
	}
	m, ok := r.messages.Get(messageID)
	if !ok {
		return nil, nil
	}
	guildID, _ := o.OptSnowflake("guild_id")
	emoji, err := r.ParseEmoji(eo, guildID)
	if err != nil {
		return nil, err
	}
	count, _ := o.OptInt("count")
	if existing := m.FindReaction(emoji); existing != nil {
		existing.Count = count
		return existing, nil
	}
	reaction := &model.Reaction{Count: count, Emoji: emoji, MessageID: m.ID}
	m.Reactions = append(m.Reactions, reaction)
	return reaction, nil
}

// ParseWebhook materializes a webhook without caching it.
func (r *Registry) ParseWebhook(o payload.Object) (*model.Webhook, error) {
	return model.NewWebhook(r, o)
}

// Delete operations. Each removes the entity from its store and from its
// owning parent's collection, and reports ErrNotFound for an absent ID.
// Once absent there is no tombstone: a later payload for the same ID is a
// fresh creation.

// DeleteGuild drops the guild and with it the only strong owner of its
// roles, emojis and channels; the weak lookup tables reclaim those on their
// own once nothing else references them.
func (r *Registry) DeleteGuild(id model.Snowflake) (*model.Guild, error) {
	g, ok := r.guilds[id]
	if !ok {
		return nil, fmt.Errorf("guild %d: %w", id, ErrNotFound)
	}
	delete(r.guilds, id)
	r.logger.Debug("Deleted guild.", zap.Uint64("guild", id))
	return g, nil
}

func (r *Registry) DeleteChannel(id model.Snowflake) (model.Channel, error) {
	if c, ok := r.guildChannels.Get(id); ok {
		r.guildChannels.Remove(id)
		if g, cached := r.guilds[c.GuildID]; cached {
			delete(g.Channels, id)
		}
		return c, nil
	}
	if c, ok := r.dmChannels.Remove(id); ok {
		return c, nil
	}
	return nil, fmt.Errorf("channel %d: %w", id, ErrNotFound)
}

// DeleteRole also walks every member of the owning guild and strips the role
// ID from their role lists. The O(members) scan is deliberate: role deletion
// is rare relative to lookups, so a reverse index would cost more than it
// saves.
func (r *Registry) DeleteRole(guildID, roleID model.Snowflake) (*model.Role, error) {
	role, ok := r.roles.Get(roleKey{Guild: guildID, Role: roleID})
	if !ok {
		return nil, fmt.Errorf("role %d in guild %d: %w", roleID, guildID, ErrNotFound)
	}
	r.roles.Remove(roleKey{Guild: guildID, Role: roleID})
	if g, cached := r.guilds[guildID]; cached {
		delete(g.Roles, roleID)
		stripped := 0
		for _, m := range g.Members {
			for i, id := range m.RoleIDs {
				if id == roleID {
					m.RoleIDs = append(m.RoleIDs[:i], m.RoleIDs[i+1:]...)
					stripped++
					break
				}
			}
		}
		r.logger.Debug("Deleted role.",
			zap.Uint64("guild", guildID), zap.Uint64("role", roleID), zap.Int("members_stripped", stripped))
	}
	return role, nil
}

func (r *Registry) DeleteEmoji(id model.Snowflake) (*model.GuildEmoji, error) {
	e, ok := r.emojis.Get(id)
	if !ok {
		return nil, fmt.Errorf("emoji %d: %w", id, ErrNotFound)
	}
	r.emojis.Remove(id)
	if g, cached := r.guilds[e.GuildID]; cached {
		delete(g.Emojis, id)
	}
	return e, nil
}

func (r *Registry) DeleteMember(guildID, userID model.Snowflake) (*model.Member, error) {
	g, ok := r.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %d: %w", guildID, ErrNotFound)
	}
	m, ok := g.Members[userID]
	if !ok {
		return nil, fmt.Errorf("member %d in guild %d: %w", userID, guildID, ErrNotFound)
	}
	delete(g.Members, userID)
	return m, nil
}

func (r *Registry) DeleteMessage(id model.Snowflake) (*model.Message, error) {
	m, ok := r.messages.Remove(id)
	if !ok {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	return m, nil
}

// Update operations. Each returns a Diff whose Old field is a detached
// snapshot taken before the payload was applied and whose New field is the
// live instance. A nil Diff with a nil error means the entity was never
// cached — the expected case for updates racing ahead of creation, and a
// deliberate no-op rather than an error. Creating the entity speculatively
// instead would break invariants (a member without a join timestamp).

func (r *Registry) UpdateGuild(o payload.Object) (*Diff[*model.Guild], error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	g, ok := r.guilds[id]
	if !ok {
		return nil, nil
	}
	old := g.Clone()
	if err := g.UpdateState(o); err != nil {
		return nil, err
	}
	return &Diff[*model.Guild]{Old: old, New: g}, nil
}

func (r *Registry) UpdateChannel(o payload.Object) (*Diff[model.Channel], error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	ch, ok := r.GetChannelByID(id)
	if !ok {
		return nil, nil
	}
	old := ch.Clone()
	if err := ch.UpdateState(o); err != nil {
		return nil, err
	}
	return &Diff[model.Channel]{Old: old, New: ch}, nil
}

func (r *Registry) UpdateMessage(o payload.Object) (*Diff[*model.Message], error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	m, ok := r.messages.Get(id)
	if !ok {
		return nil, nil
	}
	old := m.Clone()
	if err := m.UpdateState(o); err != nil {
		return nil, err
	}
	return &Diff[*model.Message]{Old: old, New: m}, nil
}

func (r *Registry) UpdateRole(guildID model.Snowflake, o payload.Object) (*Diff[*model.Role], error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	role, ok := r.GetRoleByID(guildID, id)
	if !ok {
		return nil, nil
	}
	old := role.Clone()
	role.UpdateState(o)
	return &Diff[*model.Role]{Old: old, New: role}, nil
}

// UpdateMember applies the fields a member-update event carries directly.
func (r *Registry) UpdateMember(guildID, userID model.Snowflake, roleIDs []model.Snowflake, nick string) *Diff[*model.Member] {
	g, ok := r.guilds[guildID]
	if !ok {
		return nil
	}
	m, ok := g.Members[userID]
	if !ok {
		return nil
	}
	old := m.Clone()
	m.RoleIDs = roleIDs
	m.Nick = nick
	return &Diff[*model.Member]{Old: old, New: m}
}

// UpdateMemberPresence swaps a member's presence, returning the member and
// the presence diff.
func (r *Registry) UpdateMemberPresence(guildID, userID model.Snowflake, o payload.Object) (*model.Member, *Diff[*model.Presence]) {
	g, ok := r.guilds[guildID]
	if !ok {
		return nil, nil
	}
	m, ok := g.Members[userID]
	if !ok {
		return nil, nil
	}
	old := m.Presence
	return m, &Diff[*model.Presence]{Old: old, New: r.ParsePresence(m, o)}
}

// UpdateGuildEmojis replaces the guild's emoji set wholesale and returns the
// old and new sets, unordered, for diffing.
func (r *Registry) UpdateGuildEmojis(list []payload.Object, guildID model.Snowflake) (*Diff[[]*model.GuildEmoji], error) {
	g, ok := r.guilds[guildID]
	if !ok {
		return nil, nil
	}
	old := make([]*model.GuildEmoji, 0, len(g.Emojis))
	for _, e := range g.Emojis {
		old = append(old, e)
	}
	fresh := make(map[model.Snowflake]*model.GuildEmoji, len(list))
	updated := make([]*model.GuildEmoji, 0, len(list))
	for _, eo := range list {
		emoji, err := r.ParseEmoji(eo, guildID)
		if err != nil {
			return nil, err
		}
		if ge, isGuild := emoji.(*model.GuildEmoji); isGuild {
			fresh[ge.ID] = ge
			updated = append(updated, ge)
		}
	}
	g.Emojis = fresh
	return &Diff[[]*model.GuildEmoji]{Old: old, New: updated}, nil
}

// SetGuildUnavailability flips the availability flag set by guild outage
// payloads. Unknown guilds are ignored.
func (r *Registry) SetGuildUnavailability(guildID model.Snowflake, unavailable bool) {
	if g, ok := r.guilds[guildID]; ok {
		g.Unavailable = unavailable
	}
}

// SetRolesForMember replaces a member's role list with the given roles.
func (r *Registry) SetRolesForMember(roles []*model.Role, member *model.Member) {
	ids := make([]model.Snowflake, len(roles))
	for i, role := range roles {
		ids[i] = role.ID
	}
	member.RoleIDs = ids
}

// AddReaction adds one to the reaction bucket for emoji, creating the bucket
// when the first reaction lands.
func (r *Registry) AddReaction(m *model.Message, emoji model.Emoji) *model.Reaction {
	if reaction := m.FindReaction(emoji); reaction != nil {
		reaction.Count++
		return reaction
	}
	reaction := &model.Reaction{Count: 1, Emoji: emoji, MessageID: m.ID}
	m.Reactions = append(m.Reactions, reaction)
	return reaction
}

// RemoveReaction subtracts one from the reaction bucket for emoji, dropping
// the bucket when it reaches zero. Removing a reaction that is not there
// returns an empty bucket.
func (r *Registry) RemoveReaction(m *model.Message, emoji model.Emoji) *model.Reaction {
	reaction := m.FindReaction(emoji)
	if reaction == nil {
		return &model.Reaction{Count: 0, Emoji: emoji, MessageID: m.ID}
	}
	reaction.Count--
	if reaction.Count <= 0 {
		reaction.Count = 0
		for i, existing := range m.Reactions {
			if existing == reaction {
				m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
				break
			}
		}
	}
	return reaction
}

// RemoveAllReactions clears every reaction bucket on the message.
func (r *Registry) RemoveAllReactions(m *model.Message) {
	for _, reaction := range m.Reactions {
		reaction.Count = 0
	}
	m.Reactions = nil
}

// Stats reports live entry counts per store, for inspection endpoints.
type Stats struct {
	Guilds        int `json:"guilds"`
	Users         int `json:"users"`
	GuildChannels int `json:"guildChannels"`
	DMChannels    int `json:"dmChannels"`
	Emojis        int `json:"emojis"`
	Roles         int `json:"roles"`
	Messages      int `json:"messages"`
}

func (r *Registry) CollectStats() Stats {
	return Stats{
		Guilds:        len(r.guilds),
		Users:         r.users.Len(),
		GuildChannels: r.guildChannels.Len(),
		DMChannels:    r.dmChannels.Len(),
		Emojis:        r.emojis.Len(),
		Roles:         r.roles.Len(),
		Messages:      r.messages.Len(),
	}
}
