package commands

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	shared "github.com/hxnx/synesth/internal/features/shared"
	"github.com/hxnx/synesth/internal/surface"
)

// Pipeline calls wait on the model and a search, so they get a long budget
// behind a deferred response.
const (
	pipelineTimeout = 60 * time.Second
	storeTimeout    = 5 * time.Second
)

// Handler answers the /mood subcommands. Each guild is its own surface.
type Handler struct {
	messenger surface.Messenger
	logger    logrus.FieldLogger
}

func NewHandler(messenger surface.Messenger, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{messenger: messenger, logger: logger}
}

func (h *Handler) api(i *discordgo.InteractionCreate) *surface.API {
	return surface.NewAPI(h.messenger, shared.SurfaceID(i))
}

func (h *Handler) Play(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	label := strings.TrimSpace(shared.GetOptionString(options, "label"))
	if label == "" {
		shared.RespondEphemeral(s, i, "Tell me a mood, e.g. `rainy sunday`.")
		return
	}

	h.deferred(s, i, func(ctx context.Context, api *surface.API) (string, string) {
		res, err := api.ManualMood(ctx, label)
		if err != nil {
			h.logger.WithError(err).WithField("mood", label).Warn("manual mood failed")
			return "Could not play", ErrorMessage(err)
		}
		return "Now playing", DescribeResult(res)
	})
}

func (h *Handler) Analyze(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	text := strings.TrimSpace(shared.GetOptionString(options, "text"))
	pageURL := strings.TrimSpace(shared.GetOptionString(options, "url"))
	if utf8.RuneCountInString(text) < surface.MinAnalyzeLength {
		shared.RespondEphemeral(s, i, surface.MessageNotEnough)
		return
	}

	h.deferred(s, i, func(ctx context.Context, api *surface.API) (string, string) {
		res, err := api.AnalyzeMood(ctx, text, pageURL)
		if err != nil {
			h.logger.WithError(err).Warn("analyze failed")
			return "Could not play", ErrorMessage(err)
		}
		return "Now playing", DescribeResult(res)
	})
}

func (h *Handler) Next(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.deferred(s, i, func(ctx context.Context, api *surface.API) (string, string) {
		state, err := api.GetPlayerState(ctx)
		if err != nil {
			return "Could not skip", ErrorMessage(err)
		}
		if state == nil || state.Mood == "" {
			return "Could not skip", "Nothing is playing."
		}

		res, err := api.NextSong(ctx, state.Mood)
		if err != nil {
			h.logger.WithError(err).WithField("mood", state.Mood).Warn("next song failed")
			return "Could not skip", ErrorMessage(err)
		}
		return "Now playing", DescribeResult(res)
	})
}

func (h *Handler) Now(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	np, err := h.api(i).GetNowPlaying(ctx)
	if err != nil {
		shared.RespondEphemeral(s, i, ErrorMessage(err))
		return
	}
	shared.RespondEphemeral(s, i, DescribeNowPlaying(np, time.Now()))
}

func (h *Handler) Stop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := h.api(i).ClearPlayerState(ctx); err != nil {
		shared.RespondEphemeral(s, i, ErrorMessage(err))
		return
	}
	shared.RespondEphemeral(s, i, "Stopped. Every surface will go quiet.")
}

func (h *Handler) History(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	limit, _ := shared.GetOptionInt(options, "limit")

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entries, err := h.api(i).GetHistory(ctx)
	if err != nil {
		shared.RespondEphemeral(s, i, ErrorMessage(err))
		return
	}
	shared.RespondEphemeral(s, i, DescribeHistory(entries, limit))
}

func (h *Handler) Volume(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	api := h.api(i)
	settings, err := api.GetSettings(ctx)
	if err != nil {
		shared.RespondEphemeral(s, i, ErrorMessage(err))
		return
	}

	level, ok := shared.GetOptionInt(options, "level")
	if !ok {
		shared.RespondEphemeral(s, i, "Volume is "+strconv.Itoa(settings.Volume)+".")
		return
	}

	settings.Volume = level
	if err := api.SaveSettings(ctx, settings); err != nil {
		shared.RespondEphemeral(s, i, ErrorMessage(err))
		return
	}
	shared.RespondEphemeral(s, i, "Volume set to "+strconv.Itoa(level)+".")
}

// deferred acknowledges the interaction and answers with a followup once
// work is done.
func (h *Handler) deferred(s *discordgo.Session, i *discordgo.InteractionCreate, work func(ctx context.Context, api *surface.API) (title, content string)) {
	if err := shared.DeferEphemeral(s, i); err != nil {
		h.logger.WithError(err).Warn("defer failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	title, content := work(ctx, h.api(i))
	shared.FollowupEphemeral(s, i, title, content)
}
