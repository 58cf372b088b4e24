package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandList(t *testing.T) {
	var mood *discordgo.ApplicationCommand
	for _, cmd := range CommandList {
		if cmd.Name == "mood" {
			mood = cmd
		}
	}
	require.NotNil(t, mood)

	var subs []string
	for _, opt := range mood.Options {
		assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, opt.Type)
		subs = append(subs, opt.Name)
	}
	assert.Equal(t, []string{"play", "analyze", "next", "now", "stop", "history", "volume"}, subs)
}
