package cogs

import (
	"context"
	"regexp"

	"github.com/oklahomer/go-sarah/v4"

	discord "github.com/oklahomer/go-sarah-discordkit"
)

var pingPattern = regexp.MustCompile(`^\.ping\b`)

// Ping is a Cog that answers .ping.
type Ping struct{}

var _ Cog = (*Ping)(nil)

// Name returns the cog name.
func (*Ping) Name() string {
	return "ping"
}

// Commands returns the ping command.
func (p *Ping) Commands() []*Command {
	return []*Command{
		{
			Identifier:  "ping",
			Pattern:     pingPattern,
			Instruction: "Input .ping to check if the bot is alive.",
			Func: func(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
				return discord.NewResponse(input, "Pong!!")
			},
		},
	}
}
