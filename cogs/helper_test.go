package cogs

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	discord "github.com/oklahomer/go-sarah-discordkit"
)

func newInput(t *testing.T, guildID, authorID, content string) *discord.Input {
	t.Helper()

	input, err := discord.MessageToInput(&discordgo.MessageCreate{
		Message: &discordgo.Message{
			ID:        "msg-1",
			ChannelID: "channel-1",
			GuildID:   guildID,
			Content:   content,
			Author:    &discordgo.User{ID: authorID},
		},
	})
	require.NoError(t, err)
	return input
}
