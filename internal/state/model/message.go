package model

import (
	"slices"
	"time"

	"pkg.mon.icu/kioku/internal/payload"
)

// Attachment is a file attached to a message. Width and height are zero for
// non-image attachments.
type Attachment struct {
	ID       Snowflake
	Filename string
	URL      string
	ProxyURL string
	Size     int64
	Width    int64
	Height   int64
}

// EmbedImage is the image of a rich embed, when it has one.
type EmbedImage struct {
	URL    string
	Width  int64
	Height int64
}

// Embed is a rich embed attached to a message. Only the fields the cache
// consumers look at are retained.
type Embed struct {
	Type        string
	Title       string
	Description string
	URL         string
	Image       *EmbedImage
}

// Reaction is an aggregated per-emoji reaction count on one message.
type Reaction struct {
	Count     int64
	Emoji     Emoji
	MessageID Snowflake
}

// Message is not owned by any container entity; the registry holds messages
// in a capacity-bounded store and old ones simply fall out of it.
type Message struct {
	ID               Snowflake
	ChannelID        Snowflake
	GuildID          Snowflake
	Author           *User
	Content          string
	TTS              bool
	MentionsEveryone bool
	Pinned           bool
	Type             int64
	Flags            int64
	EditedAt         time.Time
	Attachments      []Attachment
	Embeds           []Embed
	Reactions        []*Reaction

	reg StateRegistry
}

func NewMessage(reg StateRegistry, o payload.Object) (*Message, error) {
	id, err := o.Snowflake("id")
	if err != nil {
		return nil, err
	}
	channelID, err := o.Snowflake("channel_id")
	if err != nil {
		return nil, err
	}
	m := &Message{ID: id, ChannelID: channelID, reg: reg}
	m.GuildID, _ = o.OptSnowflake("guild_id")
	if ao, ok := o.OptObject("author"); ok {
		if m.Author, err = reg.ParseUser(ao); err != nil {
			return nil, err
		}
	}
	if err := m.UpdateState(o); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateState applies a possibly partial message payload in place. Message
// updates from the gateway routinely carry only the changed fields.
func (m *Message) UpdateState(o payload.Object) error {
	if v, ok := o.OptStr("content"); ok {
		m.Content = v
	}
	if v, ok := o.OptBool("tts"); ok {
		m.TTS = v
	}
	if v, ok := o.OptBool("mention_everyone"); ok {
		m.MentionsEveryone = v
	}
	if v, ok := o.OptBool("pinned"); ok {
		m.Pinned = v
	}
	if v, ok := o.OptInt("type"); ok {
		m.Type = v
	}
	if v, ok := o.OptInt("flags"); ok {
		m.Flags = v
	}
	if v, ok := o.OptTime("edited_timestamp"); ok {
		m.EditedAt = v
	}
	if raw, ok := o.OptList("attachments"); ok {
		m.Attachments = parseAttachments(raw)
	}
	if raw, ok := o.OptList("embeds"); ok {
		m.Embeds = parseEmbeds(raw)
	}
	if raw, ok := o.OptList("reactions"); ok {
		m.Reactions = m.Reactions[:0]
		for _, ro := range raw {
			eo, err := ro.Object("emoji")
			if err != nil {
				return err
			}
			emoji, err := m.reg.ParseEmoji(eo, m.GuildID)
			if err != nil {
				return err
			}
			count, _ := ro.OptInt("count")
			m.Reactions = append(m.Reactions, &Reaction{Count: count, Emoji: emoji, MessageID: m.ID})
		}
	}
	return nil
}

// Channel resolves the channel the message was sent in, when cached.
func (m *Message) Channel() (Channel, bool) {
	return m.reg.GetChannelByID(m.ChannelID)
}

// Guild resolves the guild the message was sent in. DM messages have none.
func (m *Message) Guild() (*Guild, bool) {
	if m.GuildID == 0 {
		return nil, false
	}
	return m.reg.GetGuildByID(m.GuildID)
}

// FindReaction returns the reaction bucket for the given emoji, if any.
func (m *Message) FindReaction(emoji Emoji) *Reaction {
	for _, r := range m.Reactions {
		if SameEmoji(r.Emoji, emoji) {
			return r
		}
	}
	return nil
}

// Clone returns a value snapshot for diffing. Slice headers are copied;
// elements are shared.
func (m *Message) Clone() *Message {
	d := *m
	d.Attachments = slices.Clone(m.Attachments)
	d.Embeds = slices.Clone(m.Embeds)
	d.Reactions = slices.Clone(m.Reactions)
	return &d
}

func parseAttachments(raw []payload.Object) []Attachment {
	out := make([]Attachment, 0, len(raw))
	for _, ao := range raw {
		var at Attachment
		at.ID, _ = ao.OptSnowflake("id")
		at.Filename, _ = ao.OptStr("filename")
		at.URL, _ = ao.OptStr("url")
		at.ProxyURL, _ = ao.OptStr("proxy_url")
		at.Size, _ = ao.OptInt("size")
		at.Width, _ = ao.OptInt("width")
		at.Height, _ = ao.OptInt("height")
		out = append(out, at)
	}
	return out
}

func parseEmbeds(raw []payload.Object) []Embed {
	out := make([]Embed, 0, len(raw))
	for _, eo := range raw {
		var em Embed
		em.Type, _ = eo.OptStr("type")
		em.Title, _ = eo.OptStr("title")
		em.Description, _ = eo.OptStr("description")
		em.URL, _ = eo.OptStr("url")
		if io, ok := eo.OptObject("image"); ok {
			img := &EmbedImage{}
			img.URL, _ = io.OptStr("url")
			img.Width, _ = io.OptInt("width")
			img.Height, _ = io.OptInt("height")
			em.Image = img
		}
		out = append(out, em)
	}
	return out
}
