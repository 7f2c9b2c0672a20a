package cogs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	discord "github.com/oklahomer/go-sarah-discordkit"
)

var (
	loadPattern    = regexp.MustCompile(`^\.load\b`)
	unloadPattern  = regexp.MustCompile(`^\.unload\b`)
	modulesPattern = regexp.MustCompile(`^\.modules\b`)
)

// Modules is a Cog that loads and unloads other cogs on a superuser's request.
type Modules struct {
	registry   *Registry
	superusers map[string]struct{}
}

var _ Cog = (*Modules)(nil)
var _ Pinner = (*Modules)(nil)

// NewModules creates a Modules cog that manages the given Registry.
func NewModules(registry *Registry, superusers []string) *Modules {
	m := &Modules{
		registry:   registry,
		superusers: make(map[string]struct{}, len(superusers)),
	}
	for _, id := range superusers {
		m.superusers[id] = struct{}{}
	}
	return m
}

// Name returns the cog name.
func (m *Modules) Name() string {
	return "modules"
}

// Pinned returns true since unloading this cog would leave no way to load it back.
func (m *Modules) Pinned() bool {
	return true
}

// Commands returns the load, unload and modules commands.
func (m *Modules) Commands() []*Command {
	return []*Command{
		{
			Identifier:  "load",
			Pattern:     loadPattern,
			Instruction: "Input .load <cog> to enable a cog.",
			Func:        m.load,
		},
		{
			Identifier:  "unload",
			Pattern:     unloadPattern,
			Instruction: "Input .unload <cog> to disable a cog.",
			Func:        m.unload,
		},
		{
			Identifier:  "modules",
			Pattern:     modulesPattern,
			Instruction: "Input .modules to list cogs.",
			Func:        m.list,
		},
	}
}

func (m *Modules) load(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	return m.toggle(input, loadPattern, "load", m.registry.Load)
}

func (m *Modules) unload(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	return m.toggle(input, unloadPattern, "unload", m.registry.Unload)
}

func (m *Modules) toggle(input sarah.Input, pattern *regexp.Regexp, verb string, fnc func(string) error) (*sarah.CommandResponse, error) {
	in, ok := input.(*discord.Input)
	if !ok {
		return nil, fmt.Errorf("%T: %w", input, discord.ErrUnexpectedInput)
	}

	if _, ok := m.superusers[in.AuthorID()]; !ok {
		return discord.NewResponse(input, "You are not allowed to manage cogs.")
	}

	name := sarah.StripMessage(pattern, input.Message())
	if name == "" {
		return discord.NewResponse(input, fmt.Sprintf("Usage: .%s <cog>", verb))
	}

	if err := fnc(name); err != nil {
		logger.Warnf("Failed to %s cog %s on request from %s: %+v", verb, name, in.AuthorID(), err)
		return discord.NewResponse(input, fmt.Sprintf("Could not %s %s.", verb, err.Error()))
	}

	logger.Infof("Cog %s: %sed by %s.", name, verb, in.AuthorID())
	return discord.NewResponse(input, fmt.Sprintf("%s: %sed.", name, verb))
}

func (m *Modules) list(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	lines := make([]string, 0)
	for _, name := range m.registry.Names() {
		status := "unloaded"
		if m.registry.Loaded(name) {
			status = "loaded"
		}
		lines = append(lines, fmt.Sprintf("**%s**: %s", name, status))
	}
	return discord.NewResponse(input, strings.Join(lines, "\n"))
}
