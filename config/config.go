package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SearchBackendProxy   = "proxy"
	SearchBackendYouTube = "youtube"
	SearchBackendYTDLP   = "ytdlp"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

type Config struct {
	LogLevel  string
	LogFormat string

	ListenAddr string

	RecommendURL   string
	RecommendModel string

	SearchBackend string
	SearchURL     string
	YouTubeAPIKey string
	YTDLPBinary   string

	HTTPTimeoutSeconds int
	ResetOnStart       bool

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	DiscordToken  string
	ApplicationID string
	GuildID       string
	ShardCount    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		ListenAddr: getEnvWithDefault("LISTEN_ADDR", "127.0.0.1:8765"),

		RecommendURL:   strings.TrimRight(os.Getenv("RECOMMEND_URL"), "/"),
		RecommendModel: getEnvWithDefault("RECOMMEND_MODEL", "gpt-4o-mini"),

		SearchBackend: strings.ToLower(getEnvWithDefault("SEARCH_BACKEND", SearchBackendProxy)),
		SearchURL:     strings.TrimRight(os.Getenv("SEARCH_URL"), "/"),
		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		YTDLPBinary:   getEnvWithDefault("YTDLP_BINARY", "yt-dlp"),

		HTTPTimeoutSeconds: getEnvAsIntWithDefault("HTTP_TIMEOUT_SECONDS", 30),
		ResetOnStart:       getEnvAsBool("RESET_ON_START"),

		DBDriver:   strings.ToLower(getEnvWithDefault("DB_DRIVER", DBDriverSQLite)),
		DBPath:     getEnvWithDefault("DB_PATH", "synesth.db"),
		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvAsIntWithDefault("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		RedisHost:     getEnvWithDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvAsIntWithDefault("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),

		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
		GuildID:       os.Getenv("DISCORD_GUILD_ID"),
		ShardCount:    getEnvAsIntWithDefault("SHARD_COUNT", 0),
	}

	if cfg.SearchURL == "" {
		cfg.SearchURL = cfg.RecommendURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RecommendURL == "" {
		return errors.New("RECOMMEND_URL is required")
	}
	if u, err := url.Parse(c.RecommendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("RECOMMEND_URL must be an absolute URL")
	}

	switch c.SearchBackend {
	case SearchBackendProxy:
		if c.SearchURL == "" {
			return errors.New("SEARCH_URL is required for the proxy search backend")
		}
	case SearchBackendYouTube:
		if c.YouTubeAPIKey == "" {
			return errors.New("YOUTUBE_API_KEY is required for the youtube search backend")
		}
	case SearchBackendYTDLP:
		if c.YTDLPBinary == "" {
			return errors.New("YTDLP_BINARY is required for the ytdlp search backend")
		}
	default:
		return errors.New("SEARCH_BACKEND must be one of proxy, youtube, ytdlp")
	}

	switch c.DBDriver {
	case DBDriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DBDriverPostgres:
		if c.DBName == "" {
			return errors.New("DB_NAME is required for the postgres driver")
		}
	default:
		return errors.New("DB_DRIVER must be sqlite or postgres")
	}

	if c.HTTPTimeoutSeconds < 0 {
		return errors.New("HTTP_TIMEOUT_SECONDS must not be negative")
	}

	if c.ShardCount < 0 {
		return errors.New("SHARD_COUNT must not be negative")
	}

	if c.DiscordToken != "" && c.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required when DISCORD_TOKEN is set")
	}

	return nil
}

// DiscordEnabled reports whether the chat surface should be started.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != ""
}

func (c *Config) IsDevelopment() bool {
	return c.GuildID != ""
}

// HTTPTimeout is zero when outbound timeouts are disabled.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return false
}

type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) GetDBConfig() *DBConfig {
	return &DBConfig{
		Driver:   c.DBDriver,
		Path:     c.DBPath,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c *Config) GetRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
