// Package cogs bundles chat commands into named groups that can be loaded and unloaded while the bot runs.
//
// Registry turns every command of every registered Cog into a sarah.CommandProps.
// A command only matches input while its cog is loaded.
package cogs
