package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		RecommendURL:  "https://worker.example.dev",
		SearchBackend: SearchBackendProxy,
		SearchURL:     "https://worker.example.dev",
		DBDriver:      DBDriverSQLite,
		DBPath:        "synesth.db",
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RECOMMEND_URL", "https://worker.example.dev/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://worker.example.dev", cfg.RecommendURL)
	assert.Equal(t, cfg.RecommendURL, cfg.SearchURL, "search falls back to the recommendation proxy")
	assert.Equal(t, "gpt-4o-mini", cfg.RecommendModel)
	assert.Equal(t, SearchBackendProxy, cfg.SearchBackend)
	assert.Equal(t, DBDriverSQLite, cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.False(t, cfg.ResetOnStart)
	assert.False(t, cfg.DiscordEnabled())
}

func TestLoad_MissingRecommendURL(t *testing.T) {
	t.Setenv("RECOMMEND_URL", "")

	_, err := Load()
	assert.EqualError(t, err, "RECOMMEND_URL is required")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RECOMMEND_URL", "http://localhost:8787")
	t.Setenv("SEARCH_BACKEND", "YTDLP")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	t.Setenv("RESET_ON_START", "true")
	t.Setenv("REDIS_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SearchBackendYTDLP, cfg.SearchBackend)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout())
	assert.True(t, cfg.ResetOnStart)
	assert.Equal(t, 6379, cfg.RedisPort)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "relative recommend url",
			mutate:  func(c *Config) { c.RecommendURL = "worker.example.dev" },
			wantErr: "RECOMMEND_URL must be an absolute URL",
		},
		{
			name:    "unknown search backend",
			mutate:  func(c *Config) { c.SearchBackend = "lastfm" },
			wantErr: "SEARCH_BACKEND must be one of proxy, youtube, ytdlp",
		},
		{
			name:    "youtube without key",
			mutate:  func(c *Config) { c.SearchBackend = SearchBackendYouTube },
			wantErr: "YOUTUBE_API_KEY is required for the youtube search backend",
		},
		{
			name:    "postgres without name",
			mutate:  func(c *Config) { c.DBDriver = DBDriverPostgres },
			wantErr: "DB_NAME is required for the postgres driver",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.DBDriver = "mysql" },
			wantErr: "DB_DRIVER must be sqlite or postgres",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.HTTPTimeoutSeconds = -1 },
			wantErr: "HTTP_TIMEOUT_SECONDS must not be negative",
		},
		{
			name:    "negative shards",
			mutate:  func(c *Config) { c.ShardCount = -2 },
			wantErr: "SHARD_COUNT must not be negative",
		},
		{
			name:    "discord token without application",
			mutate:  func(c *Config) { c.DiscordToken = "token" },
			wantErr: "DISCORD_APPLICATION_ID is required when DISCORD_TOKEN is set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
