package cogs

import (
	"context"
	"fmt"
	"regexp"

	"github.com/oklahomer/go-sarah/v4"

	"github.com/oklahomer/go-sarah-discordkit/pag"
)

var pagesPattern = regexp.MustCompile(`^\.pages\b`)

// Pages is a Cog that shows text as a paginated, reaction-driven message.
type Pages struct {
	ctx     context.Context
	session pag.Session
	config  *Config
}

var _ Cog = (*Pages)(nil)

// NewPages creates a Pages cog.
// Navigators started by this cog stop when ctx is canceled.
func NewPages(ctx context.Context, session pag.Session, config *Config) *Pages {
	return &Pages{
		ctx:     ctx,
		session: session,
		config:  config,
	}
}

// Name returns the cog name.
func (p *Pages) Name() string {
	return "pages"
}

// Commands returns the pages command.
func (p *Pages) Commands() []*Command {
	return []*Command{
		{
			Identifier:  "pages",
			Pattern:     pagesPattern,
			Instruction: "Input .pages [text] to page through the given text, or through the bot description.",
			Func:        p.show,
		},
	}
}

func (p *Pages) show(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	text := sarah.StripMessage(pagesPattern, input.Message())
	if text == "" {
		text = p.config.About
	}

	pages, err := pag.NewPaginator(pag.WithMaxLines(p.config.MaxLinesPerPage)).Add(text).Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to paginate: %w", err)
	}

	nav, err := pag.NewFromInput(p.session, input, pages,
		pag.WithTitle("Skybot"),
		pag.WithTimeout(p.config.NavigatorTimeout),
		pag.WithButtons(pag.ExtendedButtons()...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create navigator: %w", err)
	}

	// The command is done once the navigator is displayed; no further response is sent.
	nav.Start(p.ctx)
	return nil, nil
}
