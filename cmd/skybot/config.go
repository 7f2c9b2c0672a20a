package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	discord "github.com/oklahomer/go-sarah-discordkit"
	"github.com/oklahomer/go-sarah-discordkit/cogs"
)

const envPrefix = "SKYBOT"

type appConfig struct {
	Discord *discord.Config `mapstructure:"discord"`
	Cogs    *cogs.Config    `mapstructure:"cogs"`
}

// loadConfig reads the config file, if any, then applies SKYBOT_* environment variables on top.
// A nested key such as discord.token is read from SKYBOT_DISCORD_TOKEN.
func loadConfig(v *viper.Viper, configPath string) (*appConfig, error) {
	cfg := &appConfig{
		Discord: discord.NewConfig(),
		Cogs:    cogs.NewConfig(),
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Defaults make every key known to viper so AutomaticEnv can override it.
	v.SetDefault("discord.token", cfg.Discord.Token)
	v.SetDefault("discord.help_command", cfg.Discord.HelpCommand)
	v.SetDefault("discord.abort_command", cfg.Discord.AbortCommand)
	v.SetDefault("discord.intents", int(cfg.Discord.Intents))
	v.SetDefault("cogs.superusers", cfg.Cogs.Superusers)
	v.SetDefault("cogs.color_role_prefix", cfg.Cogs.ColorRolePrefix)
	v.SetDefault("cogs.navigator_timeout", cfg.Cogs.NavigatorTimeout)
	v.SetDefault("cogs.max_lines_per_page", cfg.Cogs.MaxLinesPerPage)
	v.SetDefault("cogs.about", cfg.Cogs.About)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Discord.Token == "" {
		return nil, discord.ErrEmptyToken
	}
	if cfg.Cogs.NavigatorTimeout <= 0 {
		return nil, fmt.Errorf("invalid cogs.navigator_timeout: %s", cfg.Cogs.NavigatorTimeout)
	}

	return cfg, nil
}
