// Package discord provides a sarah.Adapter implementation for Discord.
//
// This package bridges go-sarah's bot framework with Discord using discordgo
// for the underlying API integration. It converts Discord message events into
// sarah.Input and dispatches sarah.Output as Discord messages.
//
// Reaction-driven paginated messages live in the pag subpackage, and a set of
// ready-made command cogs lives in the cogs subpackage.
package discord
