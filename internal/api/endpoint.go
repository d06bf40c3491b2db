package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"pkg.mon.icu/kioku/internal/state/model"
	"pkg.mon.icu/kioku/internal/util"
)

func parseID(c *gin.Context) (model.Snowflake, bool) {
	id, err := util.ParseSnowflake(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snowflake"})
		return 0, false
	}
	return id, true
}

// registerGetGuild GET /guilds/:id
func (a *API) registerGetGuild() {
	type guildModel struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Unavailable bool   `json:"unavailable"`
		MemberCount int    `json:"members"`
		RoleCount   int    `json:"roles"`
		EmojiCount  int    `json:"emojis"`
		Channels    int    `json:"channels"`
	}

	a.router.GET("/guilds/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		a.mu.Lock()
		g, ok := a.registry.GetGuildByID(id)
		var gm guildModel
		if ok {
			gm = guildModel{
				ID:          util.FormatSnowflake(g.ID),
				Name:        g.Name,
				Unavailable: g.Unavailable,
				MemberCount: len(g.Members),
				RoleCount:   len(g.Roles),
				EmojiCount:  len(g.Emojis),
				Channels:    len(g.Channels),
			}
		}
		a.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "guild not cached"})
			return
		}
		c.JSON(http.StatusOK, gm)
	})
}

// registerGetUser GET /users/:id
func (a *API) registerGetUser() {
	type userModel struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		Discriminator string `json:"discriminator"`
		Bot           bool   `json:"bot"`
	}

	a.router.GET("/users/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		a.mu.Lock()
		u, ok := a.registry.GetUserByID(id)
		var um userModel
		if ok {
			um = userModel{
				ID:            util.FormatSnowflake(u.ID),
				Username:      u.Username,
				Discriminator: u.Discriminator,
				Bot:           u.IsBot,
			}
		}
		a.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not cached"})
			return
		}
		c.JSON(http.StatusOK, um)
	})
}

// registerGetMessage GET /messages/:id
func (a *API) registerGetMessage() {
	type messageModel struct {
		ID        string `json:"id"`
		ChannelID string `json:"channel"`
		Author    string `json:"author,omitempty"`
		Content   string `json:"content"`
		Reactions int    `json:"reactions"`
	}

	a.router.GET("/messages/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		a.mu.Lock()
		m, ok := a.registry.GetMessageByID(id)
		var mm messageModel
		if ok {
			mm = messageModel{
				ID:        util.FormatSnowflake(m.ID),
				ChannelID: util.FormatSnowflake(m.ChannelID),
				Content:   m.Content,
				Reactions: len(m.Reactions),
			}
			if m.Author != nil {
				mm.Author = util.FormatSnowflake(m.Author.ID)
			}
		}
		a.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not cached"})
			return
		}
		c.JSON(http.StatusOK, mm)
	})
}

// registerGetStats GET /stats
func (a *API) registerGetStats() {
	a.router.GET("/stats", func(c *gin.Context) {
		a.mu.Lock()
		stats := a.registry.CollectStats()
		a.mu.Unlock()
		c.JSON(http.StatusOK, stats)
	})
}
