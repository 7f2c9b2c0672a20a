package cogs

import "errors"

// ErrUnknownCog indicates that no cog is registered with the given name.
var ErrUnknownCog = errors.New("unknown cog")

// ErrDuplicateCog indicates that a cog with the same name is already registered.
var ErrDuplicateCog = errors.New("cog is already registered")

// ErrAlreadyLoaded indicates that the cog to load is already loaded.
var ErrAlreadyLoaded = errors.New("cog is already loaded")

// ErrNotLoaded indicates that the cog to unload is not loaded.
var ErrNotLoaded = errors.New("cog is not loaded")

// ErrPinnedCog indicates that the cog can not be unloaded.
var ErrPinnedCog = errors.New("cog can not be unloaded")
