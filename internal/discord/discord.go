// Package discord feeds the state registry from the gateway. It decodes raw
// dispatch payloads into keyed bags and applies the matching registry
// operation; the registry itself never touches the wire.
package discord

import (
	"context"
	"regexp"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"pkg.mon.icu/kioku/internal/state"
	"pkg.mon.icu/kioku/internal/state/model"
)

type Config struct {
	guilds       *snowflakeSet
	ignoreRegexp *regexp.Regexp
}

func NewConfig(guilds []model.Snowflake, ignoreRegexp *regexp.Regexp) *Config {
	return &Config{
		guilds:       newSnowflakeSet(guilds),
		ignoreRegexp: ignoreRegexp,
	}
}

type Discord struct {
	ctx      context.Context
	logger   *zap.Logger
	session  *discordgo.Session
	config   *Config
	registry *state.Registry

	// The registry is a plain synchronous structure; one mutex around every
	// access serializes the gateway loop with any other reader.
	mu *sync.Mutex
}

func NewDiscord(ctx context.Context, log *zap.Logger, auth string, config *Config, registry *state.Registry, mu *sync.Mutex) (*Discord, error) {
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, err
	}
	// We consume raw dispatches; discordgo's own state tracking is redundant.
	s.State.MaxMessageCount = 0
	s.StateEnabled = false
	return &Discord{ctx: ctx, logger: log, session: s, config: config, registry: registry, mu: mu}, nil
}

func (d *Discord) addHandlers() {
	d.session.AddHandlerOnce(d.onReady)
	d.session.AddHandler(d.onEvent)
}

func (d *Discord) Connect() error {
	d.addHandlers()
	return d.session.Open()
}

func (d *Discord) Close() error {
	return d.session.Close()
}
