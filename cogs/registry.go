package cogs

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/oklahomer/go-sarah/v4"
)

// CommandFunc is the function executed when a command matches.
type CommandFunc func(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error)

// Command is a single chat command provided by a Cog.
type Command struct {
	Identifier  string
	Pattern     *regexp.Regexp
	Instruction string
	Func        CommandFunc
}

// Cog is a named group of commands.
type Cog interface {
	Name() string
	Commands() []*Command
}

// Pinner is implemented by cogs that must stay loaded.
type Pinner interface {
	Pinned() bool
}

func isPinned(cog Cog) bool {
	p, ok := cog.(Pinner)
	return ok && p.Pinned()
}

// Registry keeps the registered cogs and whether each of them is loaded.
type Registry struct {
	mu     sync.RWMutex
	cogs   []Cog
	loaded map[string]bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		loaded: map[string]bool{},
	}
}

// Add registers the given cogs in a loaded state.
func (r *Registry) Add(cogs ...Cog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cog := range cogs {
		if _, ok := r.loaded[cog.Name()]; ok {
			return fmt.Errorf("%s: %w", cog.Name(), ErrDuplicateCog)
		}
		r.cogs = append(r.cogs, cog)
		r.loaded[cog.Name()] = true
	}

	return nil
}

// Load makes the commands of the named cog available again.
func (r *Registry) Load(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loaded, ok := r.loaded[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownCog)
	}
	if loaded {
		return fmt.Errorf("%s: %w", name, ErrAlreadyLoaded)
	}

	r.loaded[name] = true
	return nil
}

// Unload stops the commands of the named cog from matching any input.
func (r *Registry) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loaded, ok := r.loaded[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownCog)
	}
	if !loaded {
		return fmt.Errorf("%s: %w", name, ErrNotLoaded)
	}
	for _, cog := range r.cogs {
		if cog.Name() == name && isPinned(cog) {
			return fmt.Errorf("%s: %w", name, ErrPinnedCog)
		}
	}

	r.loaded[name] = false
	return nil
}

// Loaded reports whether the named cog is registered and loaded.
func (r *Registry) Loaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded[name]
}

// Names returns the names of the registered cogs in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cogs))
	for _, cog := range r.cogs {
		names = append(names, cog.Name())
	}
	return names
}

// CommandProps builds a sarah.CommandProps for every command of every registered cog.
// Each command matches input only while its cog is loaded.
func (r *Registry) CommandProps(botType sarah.BotType) ([]*sarah.CommandProps, error) {
	r.mu.RLock()
	cogs := append([]Cog(nil), r.cogs...)
	r.mu.RUnlock()

	var props []*sarah.CommandProps
	for _, cog := range cogs {
		for _, cmd := range cog.Commands() {
			p, err := sarah.NewCommandPropsBuilder().
				BotType(botType).
				Identifier(cmd.Identifier).
				MatchFunc(r.matcher(cog.Name(), cmd)).
				Func(cmd.Func).
				Instruction(cmd.Instruction).
				Build()
			if err != nil {
				return nil, fmt.Errorf("failed to build command %s of cog %s: %w", cmd.Identifier, cog.Name(), err)
			}
			props = append(props, p)
		}
	}

	return props, nil
}

func (r *Registry) matcher(cogName string, cmd *Command) func(sarah.Input) bool {
	return func(input sarah.Input) bool {
		return r.Loaded(cogName) && cmd.Pattern.MatchString(strings.TrimSpace(input.Message()))
	}
}
