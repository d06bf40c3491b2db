package config

import (
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"pkg.mon.icu/kioku/internal/config/hook"
	"pkg.mon.icu/kioku/internal/state/model"
)

type Config struct {
	Discord struct {
		Auth   string
		Guilds []model.Snowflake
	}

	Cache struct {
		MessageCacheSize  int
		UserDmChannelSize int
	}

	Ingest struct {
		IgnoreRegexp *regexp.Regexp
	}

	Logging struct {
		Level zapcore.Level
	}

	Api struct {
		Port uint16
	}
}

func Read() (*Config, error) {
	v := viper.New()
	configureEnv(v)
	configureLocation(v)
	configureDefaults(v)
	return readUnmarshalConfig(v)
}

func configureEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("conf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func configureLocation(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
}

func configureDefaults(v *viper.Viper) {
	v.SetDefault("cache.messageCacheSize", 100)
	v.SetDefault("cache.userDmChannelSize", 100)
}

func readUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		hook.Regexp(), hook.Level(),
	))); err != nil {
		return nil, err
	}
	return c, nil
}
