package cogs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	discord "github.com/oklahomer/go-sarah-discordkit"
)

var colorPattern = regexp.MustCompile(`^\.colou?r\b`)

// RoleSession is the subset of *discordgo.Session methods the Color cog uses.
type RoleSession interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildRoleEdit(guildID, roleID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildRoleDelete(guildID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

var _ RoleSession = (*discordgo.Session)(nil)

// Color is a Cog that lets users pick the color of their name with a dedicated role.
type Color struct {
	session RoleSession
	prefix  string
}

var _ Cog = (*Color)(nil)

// NewColor creates a Color cog. Roles are named prefix followed by the user ID.
func NewColor(session RoleSession, prefix string) *Color {
	return &Color{
		session: session,
		prefix:  prefix,
	}
}

// Name returns the cog name.
func (c *Color) Name() string {
	return "color"
}

// Commands returns the color command.
func (c *Color) Commands() []*Command {
	return []*Command{
		{
			Identifier:  "color",
			Pattern:     colorPattern,
			Instruction: "Input .color #rrggbb to change the color of your name, or .color reset to remove it.",
			Func:        c.color,
		},
	}
}

func (c *Color) color(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	in, ok := input.(*discord.Input)
	if !ok {
		return nil, fmt.Errorf("%T: %w", input, discord.ErrUnexpectedInput)
	}

	guildID := in.GuildID()
	if guildID == "" {
		return discord.NewResponse(input, "Colors can only be changed in a server.")
	}

	arg := sarah.StripMessage(colorPattern, input.Message())
	if arg == "" {
		return discord.NewResponse(input, "Usage: .color #rrggbb or .color reset")
	}

	if strings.EqualFold(arg, "reset") {
		return c.reset(input, guildID, in.AuthorID())
	}

	value, err := parseColor(arg)
	if err != nil {
		return discord.NewResponse(input, fmt.Sprintf("%s is not a valid color.", arg))
	}

	if err := c.apply(guildID, in.AuthorID(), value); err != nil {
		logger.Errorf("Failed to set color %06x for %s in guild %s: %+v", value, in.AuthorID(), guildID, err)
		return discord.NewResponse(input, "Failed to change your color. Make sure I can manage roles.")
	}

	return discord.NewResponse(input, fmt.Sprintf("Your color is now #%06x.", value))
}

func (c *Color) apply(guildID, userID string, value int) error {
	role, err := c.findRole(guildID, c.roleName(userID))
	if err != nil {
		return err
	}

	if role == nil {
		role, err = c.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
			Name:  c.roleName(userID),
			Color: &value,
		})
		if err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}
	} else {
		_, err = c.session.GuildRoleEdit(guildID, role.ID, &discordgo.RoleParams{
			Color: &value,
		})
		if err != nil {
			return fmt.Errorf("failed to edit role %s: %w", role.ID, err)
		}
	}

	if err := c.session.GuildMemberRoleAdd(guildID, userID, role.ID); err != nil {
		return fmt.Errorf("failed to assign role %s: %w", role.ID, err)
	}

	return nil
}

func (c *Color) reset(input sarah.Input, guildID, userID string) (*sarah.CommandResponse, error) {
	role, err := c.findRole(guildID, c.roleName(userID))
	if err != nil {
		logger.Errorf("Failed to reset color for %s in guild %s: %+v", userID, guildID, err)
		return discord.NewResponse(input, "Failed to reset your color.")
	}

	if role == nil {
		return discord.NewResponse(input, "You have no color to reset.")
	}

	if err := c.session.GuildRoleDelete(guildID, role.ID); err != nil {
		logger.Errorf("Failed to delete role %s in guild %s: %+v", role.ID, guildID, err)
		return discord.NewResponse(input, "Failed to reset your color.")
	}

	return discord.NewResponse(input, "Your color is reset.")
}

func (c *Color) findRole(guildID, name string) (*discordgo.Role, error) {
	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	for _, role := range roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, nil
}

func (c *Color) roleName(userID string) string {
	return c.prefix + userID
}

// parseColor converts "#rrggbb", "rrggbb" or "#rgb" into Discord's integer color representation.
func parseColor(s string) (int, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return 0, err
	}

	r, g, b := c.RGB255()
	return int(r)<<16 | int(g)<<8 | int(b), nil
}
