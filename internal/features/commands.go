package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	moodcmd "github.com/hxnx/synesth/internal/features/mood/commands"
	shared "github.com/hxnx/synesth/internal/features/shared"
	"github.com/hxnx/synesth/internal/features/status"
	"github.com/hxnx/synesth/internal/surface"
)

var (
	minVolume     = float64(0)
	maxVolume     = float64(100)
	minHistory    = float64(1)
	maxHistory    = float64(50)
	labelMaxChars = 100

	CommandList = []*discordgo.ApplicationCommand{
		{
			Name:        "status",
			Description: "Show bot status and what is playing",
		},
		{
			Name:        "mood",
			Description: "Mood-driven music",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "play",
					Description: "Play a song for a mood you describe",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "label",
							Description: "e.g. rainy sunday morning",
							Required:    true,
							MaxLength:   labelMaxChars,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "analyze",
					Description: "Pick a song for a piece of text",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "Text to read the mood from",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "url",
							Description: "Where the text came from",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "next",
					Description: "Another song in the current mood",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "now",
					Description: "Show what is playing",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop playback everywhere",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Recently played songs",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "limit",
							Description: "How many songs to show",
							Required:    false,
							MinValue:    &minHistory,
							MaxValue:    maxHistory,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "volume",
					Description: "Show or set the player volume",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "level",
							Description: "0 to 100",
							Required:    false,
							MinValue:    &minVolume,
							MaxValue:    maxVolume,
						},
					},
				},
			},
		},
	}
)

// Router dispatches interactions to the feature handlers.
type Router struct {
	messenger surface.Messenger
	mood      *moodcmd.Handler
	logger    logrus.FieldLogger
}

func NewRouter(messenger surface.Messenger, logger logrus.FieldLogger) *Router {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Router{
		messenger: messenger,
		mood:      moodcmd.NewHandler(messenger, logger),
		logger:    logger,
	}
}

func (r *Router) handleMoodGroupCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := shared.SubcommandOption(i.ApplicationCommandData())
	if sub == nil {
		shared.RespondEphemeral(s, i, "Pick a subcommand.")
		return
	}

	switch sub.Name {
	case "play":
		r.mood.Play(s, i, sub.Options)
	case "analyze":
		r.mood.Analyze(s, i, sub.Options)
	case "next":
		r.mood.Next(s, i)
	case "now":
		r.mood.Now(s, i)
	case "stop":
		r.mood.Stop(s, i)
	case "history":
		r.mood.History(s, i, sub.Options)
	case "volume":
		r.mood.Volume(s, i, sub.Options)
	default:
		shared.RespondEphemeral(s, i, "Unknown mood command.")
	}
}

func (r *Router) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	r.logger.WithFields(logrus.Fields{
		"command": data.Name,
		"surface": shared.SurfaceID(i),
	}).Debug("interaction")

	switch data.Name {
	case "mood":
		r.handleMoodGroupCommand(s, i)
	case "status":
		status.Respond(s, i, r.messenger)
	}
}

func RegisterCommands(s *discordgo.Session, appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	scope := "global"
	if guildID != "" {
		scope = fmt.Sprintf("guild:%s", guildID)
	}

	logrus.WithField("scope", scope).Infof("Registering %d commands", len(CommandList))

	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, CommandList)
	if err != nil {
		return nil, fmt.Errorf("cannot bulk overwrite commands: %w", err)
	}
	return cmds, nil
}

func (r *Router) AddHandlers(s *discordgo.Session) {
	s.AddHandler(r.HandleInteraction)
}
