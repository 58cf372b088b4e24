package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/hxnx/synesth/config"
	"github.com/hxnx/synesth/internal/bot"
	"github.com/hxnx/synesth/internal/database"
	"github.com/hxnx/synesth/internal/logging"
	"github.com/hxnx/synesth/internal/mood"
	"github.com/hxnx/synesth/internal/music"
	"github.com/hxnx/synesth/internal/redis"
	"github.com/hxnx/synesth/internal/server"
	"github.com/hxnx/synesth/internal/session"
	"github.com/hxnx/synesth/internal/surface"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logrus.Info("synesth - mood-driven music coordinator")
	logrus.Info("=======================================")

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("Failed to load configuration")
		logrus.Info("")
		logrus.Info("Required environment variables:")
		logrus.Info("  RECOMMEND_URL          - Base URL of the recommendation proxy")
		logrus.Info("")
		logrus.Info("Optional environment variables:")
		logrus.Info("  LISTEN_ADDR            - Coordinator address (default: 127.0.0.1:8765)")
		logrus.Info("  RECOMMEND_MODEL        - Model name sent to the proxy (default: gpt-4o-mini)")
		logrus.Info("  SEARCH_BACKEND         - proxy, youtube or ytdlp (default: proxy)")
		logrus.Info("  SEARCH_URL, YOUTUBE_API_KEY, YTDLP_BINARY")
		logrus.Info("  HTTP_TIMEOUT_SECONDS   - Outbound call timeout, 0 disables (default: 30)")
		logrus.Info("  RESET_ON_START         - Wipe the session area on startup")
		logrus.Info("  LOG_LEVEL, LOG_FORMAT")
		logrus.Info("")
		logrus.Info("Settings database:")
		logrus.Info("  DB_DRIVER (sqlite|postgres), DB_PATH")
		logrus.Info("  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE")
		logrus.Info("")
		logrus.Info("Session store:")
		logrus.Info("  REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB")
		logrus.Info("")
		logrus.Info("Discord surface:")
		logrus.Info("  DISCORD_TOKEN, DISCORD_APPLICATION_ID, DISCORD_GUILD_ID, SHARD_COUNT")
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	logConfig(logger, cfg)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("synesth stopped")
	}
}

func logConfig(logger *logrus.Logger, cfg *config.Config) {
	logger.Info("Configuration loaded successfully")
	logger.Infof("  Listen: %s", cfg.ListenAddr)
	logger.Infof("  Recommendation: %s (%s)", cfg.RecommendURL, cfg.RecommendModel)
	logger.Infof("  Search backend: %s", cfg.SearchBackend)
	if cfg.HTTPTimeoutSeconds > 0 {
		logger.Infof("  HTTP timeout: %ds", cfg.HTTPTimeoutSeconds)
	} else {
		logger.Info("  HTTP timeout: disabled")
	}

	if cfg.DBDriver == config.DBDriverPostgres {
		logger.Infof("  Database: postgres %s:%d/%s (sslmode=%s)", cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	} else {
		logger.Infof("  Database: sqlite %s", cfg.DBPath)
	}
	logger.Infof("  Redis: %s:%d db=%d", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

	switch {
	case !cfg.DiscordEnabled():
		logger.Info("  Discord: disabled")
	case cfg.IsDevelopment():
		logger.Infof("  Discord: development (Guild ID: %s)", cfg.GuildID)
	default:
		logger.Info("  Discord: global commands")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	redisCfg := cfg.GetRedisConfig()
	if _, err := redis.Init(redis.Config{
		Host:     redisCfg.Host,
		Port:     redisCfg.Port,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}, logging.Component(logger, "redis")); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis")
		}
	}()

	dbCfg := cfg.GetDBConfig()
	if err := database.Initialize(&database.Config{
		Driver:   dbCfg.Driver,
		Path:     dbCfg.Path,
		Host:     dbCfg.Host,
		Port:     dbCfg.Port,
		User:     dbCfg.User,
		Password: dbCfg.Password,
		DBName:   dbCfg.Name,
		SSLMode:  dbCfg.SSLMode,
	}, logging.Component(logger, "database")); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.WithError(err).Warn("failed to close database")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := session.NewMetrics(registry)

	searcher, err := newSearcher(cfg)
	if err != nil {
		return err
	}
	resolver := music.NewResolver(music.NewCachingSearcher(searcher), logging.Component(logger, "resolver")).
		WithMetrics(metrics.ResolveAttempts)

	recommender := mood.NewClient(cfg.RecommendURL, cfg.RecommendModel, cfg.HTTPTimeout(), logging.Component(logger, "recommend"))

	coordinator := session.NewCoordinator(
		recommender,
		resolver,
		music.NewHistoryStoreFromDefault(),
		music.NewStateStoreFromDefault(),
		database.NewSettingsRepositoryFromDefault(dbCfg.Driver),
		logging.Component(logger, "coordinator"),
	).WithMetrics(metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ResetOnStart {
		if err := coordinator.Install(ctx); err != nil {
			return fmt.Errorf("install: %w", err)
		}
		logger.Info("session area reset")
	}

	srv := server.New(coordinator, registry, logging.Component(logger, "http"))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(cfg.ListenAddr)
	}()
	logger.WithField("instance", srv.InstanceID()).Info("coordinator running. Press CTRL+C to exit.")

	var b *bot.Bot
	if cfg.DiscordEnabled() {
		b, err = bot.New(cfg, surface.Local{Dispatcher: coordinator}, logging.Component(logger, "discord"))
		if err != nil {
			return fmt.Errorf("discord: %w", err)
		}
		if err := b.Start(); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case runErr = <-serveErr:
	}

	if b != nil {
		if err := b.Stop(); err != nil {
			logger.WithError(err).Warn("failed to stop discord bot")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.WithError(err).Warn("http shutdown failed")
	}

	return runErr
}

func newSearcher(cfg *config.Config) (music.Searcher, error) {
	switch cfg.SearchBackend {
	case config.SearchBackendProxy:
		return music.NewProxySearcher(cfg.SearchURL, cfg.HTTPTimeout()), nil
	case config.SearchBackendYouTube:
		return music.NewYouTubeSearcher(cfg.YouTubeAPIKey, cfg.HTTPTimeout()), nil
	case config.SearchBackendYTDLP:
		return music.NewYTDLPSearcher(cfg.YTDLPBinary), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.SearchBackend)
	}
}
