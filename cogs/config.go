package cogs

import (
	"time"

	"github.com/oklahomer/go-sarah-discordkit/pag"
)

// Config contains configuration variables for the bundled cogs.
type Config struct {
	// Superusers are the IDs of users allowed to load and unload cogs.
	Superusers []string `json:"superusers" yaml:"superusers" mapstructure:"superusers"`

	// ColorRolePrefix is prepended to the user ID to name the role that holds the user's color.
	ColorRolePrefix string `json:"color_role_prefix" yaml:"color_role_prefix" mapstructure:"color_role_prefix"`

	// NavigatorTimeout is how long a paginated message waits for a page turn before it stops.
	NavigatorTimeout time.Duration `json:"navigator_timeout" yaml:"navigator_timeout" mapstructure:"navigator_timeout"`

	// MaxLinesPerPage limits the lines on a single page of a paginated message.
	MaxLinesPerPage int `json:"max_lines_per_page" yaml:"max_lines_per_page" mapstructure:"max_lines_per_page"`

	// About is displayed by the pages command when no text is given.
	About string `json:"about" yaml:"about" mapstructure:"about"`
}

// NewConfig creates and returns a new Config instance with default settings.
func NewConfig() *Config {
	return &Config{
		Superusers:       []string{},
		ColorRolePrefix:  "color-",
		NavigatorTimeout: pag.DefaultTimeout,
		MaxLinesPerPage:  10,
		About:            "Skybot is up and running.\nUse .help to list the available commands.",
	}
}
