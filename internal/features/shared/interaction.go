package shared

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

var AccentColor = 0xC9A0FF

const maxContentLength = 2000

// Notice builds the components-v2 card every reply uses.
func Notice(title, content string) []discordgo.MessageComponent {
	if r := []rune(content); len(r) > maxContentLength {
		content = string(r[:maxContentLength-1]) + "…"
	}

	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: title},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: content},
			},
		},
	}
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: Notice("Notice", content),
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logrus.WithError(err).Warn("failed to respond")
	}
}

// DeferEphemeral acknowledges now so slow work can answer with a followup.
func DeferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if s == nil || i == nil {
		return nil
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, title, content string) {
	if s == nil || i == nil {
		return
	}

	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Components: Notice(title, content),
		Flags:      discordgo.MessageFlagsEphemeral | discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		logrus.WithError(err).Warn("followup failed")
	}
}

func GetOptionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func GetOptionInt(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (int, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return int(opt.IntValue()), true
		}
	}
	return 0, false
}

func SubcommandOption(data discordgo.ApplicationCommandInteractionData) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt
		}
	}
	return nil
}

// SurfaceID names the Discord surface an interaction came from.
func SurfaceID(i *discordgo.InteractionCreate) string {
	if i == nil {
		return "discord"
	}
	if i.GuildID != "" {
		return "discord:" + i.GuildID
	}
	if i.User != nil {
		return "discord:dm:" + i.User.ID
	}
	return "discord"
}
