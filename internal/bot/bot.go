package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/hxnx/synesth/config"
	commands "github.com/hxnx/synesth/internal/features"
	"github.com/hxnx/synesth/internal/surface"
)

// Bot is the Discord surface. It reaches the coordinator through the same
// Messenger every other surface uses.
type Bot struct {
	config       *config.Config
	sessions     []*discordgo.Session
	router       *commands.Router
	presence     *surface.API
	logger       logrus.FieldLogger
	started      bool
	presenceStop chan struct{}
	presenceDone chan struct{}
}

func New(cfg *config.Config, messenger surface.Messenger, logger logrus.FieldLogger) (*Bot, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	shardCount := cfg.ShardCount
	if shardCount < 1 {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		if gw, err := s.GatewayBot(); err == nil && gw.Shards > 0 {
			shardCount = gw.Shards
		} else {
			logger.WithError(err).Warn("failed to auto-detect shard count, defaulting to 1")
			shardCount = 1
		}
	}

	sessions := make([]*discordgo.Session, 0, shardCount)
	for shard := 0; shard < shardCount; shard++ {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		s.Identify.Intents = discordgo.IntentsGuilds

		if shardCount > 1 {
			s.Identify.Shard = &[2]int{shard, shardCount}
			s.ShardCount = shardCount
		}

		sessions = append(sessions, s)
	}

	return &Bot{
		config:   cfg,
		sessions: sessions,
		router:   commands.NewRouter(messenger, logger),
		presence: surface.NewAPI(messenger, "discord:presence"),
		logger:   logger,
	}, nil
}

func (b *Bot) Start() error {
	if b.started {
		return nil
	}

	if len(b.sessions) == 0 {
		return nil
	}

	for _, s := range b.sessions {
		b.registerHandlers(s)
		b.router.AddHandlers(s)
	}

	if _, err := commands.RegisterCommands(b.sessions[0], b.config.ApplicationID, b.config.GuildID); err != nil {
		b.logger.WithError(err).Warn("failed to register slash commands")
	}

	for _, s := range b.sessions {
		if err := s.Open(); err != nil {
			return err
		}
	}

	b.startPresenceUpdater()
	b.started = true
	b.logger.Infof("Bot session opened (%d shard(s))", len(b.sessions))
	return nil
}

func (b *Bot) registerHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s.State != nil && s.State.User != nil {
			b.logger.Infof("Bot ready as %s", s.State.User.Username)
		} else {
			b.logger.Info("Bot ready")
		}
	})
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false
	b.stopPresenceUpdater()
	for _, s := range b.sessions {
		if err := s.Close(); err != nil {
			return err
		}
	}

	b.logger.Infof("Bot session closed (%d shard(s))", len(b.sessions))
	return nil
}
