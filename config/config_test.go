package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8081",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		MentorAPI: MentorAPIConfig{
			BaseURL:    "https://mentors.example.com",
			SearchPath: "/api/mentor/search",
		},
		MentorList: MentorListConfig{PageSize: 10},
		Sessions:   SessionsConfig{TTLMinutes: 30},
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name:     "development environment",
			config:   &Config{Server: ServerConfig{AppEnv: "development"}},
			expected: true,
		},
		{
			name:     "debug gin mode",
			config:   &Config{Server: ServerConfig{GinMode: "debug"}},
			expected: true,
		},
		{
			name:     "release mode",
			config:   &Config{Server: ServerConfig{GinMode: "release", AppEnv: "production"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	assert.True(t, (&Config{Server: ServerConfig{AppEnv: "production"}}).IsProduction())
	assert.False(t, (&Config{Server: ServerConfig{AppEnv: "staging"}}).IsProduction())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:     "missing port",
			mutate:   func(c *Config) { c.Server.Port = "" },
			errorMsg: "PORT is required",
		},
		{
			name:     "missing origins",
			mutate:   func(c *Config) { c.Server.AllowedOrigins = nil },
			errorMsg: "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name:     "missing mentor api url",
			mutate:   func(c *Config) { c.MentorAPI.BaseURL = "" },
			errorMsg: "MENTOR_API_BASE_URL is required",
		},
		{
			name:     "relative mentor api url",
			mutate:   func(c *Config) { c.MentorAPI.BaseURL = "mentors.example.com" },
			errorMsg: "MENTOR_API_BASE_URL must be an absolute URL",
		},
		{
			name:     "search path without slash",
			mutate:   func(c *Config) { c.MentorAPI.SearchPath = "api/search" },
			errorMsg: "MENTOR_API_SEARCH_PATH must start with /",
		},
		{
			name:     "zero page size",
			mutate:   func(c *Config) { c.MentorList.PageSize = 0 },
			errorMsg: "MENTOR_LIST_PAGE_SIZE must be positive",
		},
		{
			name:     "zero session ttl",
			mutate:   func(c *Config) { c.Sessions.TTLMinutes = 0 },
			errorMsg: "VIEW_SESSION_TTL_MINUTES must be positive",
		},
		{
			name: "redis without token key",
			mutate: func(c *Config) {
				c.Redis.Addr = "localhost:6379"
				c.Redis.TokenKey = ""
			},
			errorMsg: "TOKEN_STORE_KEY is required",
		},
		{
			name:     "profiling without endpoint",
			mutate:   func(c *Config) { c.Profiling.Enabled = true },
			errorMsg: "O11Y_PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MENTOR_API_BASE_URL", "https://mentors.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://mentors.example.com", cfg.MentorAPI.BaseURL)
	assert.Equal(t, "/api/mentor/search", cfg.MentorAPI.SearchPath)
	assert.Equal(t, 30*time.Second, cfg.MentorAPITimeout())
	assert.Equal(t, 10, cfg.MentorList.PageSize)
	assert.False(t, cfg.MentorList.DiscardStale)
	assert.False(t, cfg.MentorList.ResetPageOnFilter)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 10*time.Second, cfg.WaitTimeout())
	assert.Equal(t, "token", cfg.Redis.TokenKey)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("MENTOR_API_BASE_URL", "http://backend:8080")
	t.Setenv("MENTOR_API_SERVICE_TOKEN", "svc-token")
	t.Setenv("MENTOR_LIST_PAGE_SIZE", "25")
	t.Setenv("MENTOR_LIST_DISCARD_STALE", "true")
	t.Setenv("MENTOR_LIST_RESET_PAGE", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWT_SECRET", "jwt-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "svc-token", cfg.MentorAPI.ServiceToken)
	assert.Equal(t, 25, cfg.MentorList.PageSize)
	assert.True(t, cfg.MentorList.DiscardStale)
	assert.True(t, cfg.MentorList.ResetPageOnFilter)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MENTOR_API_BASE_URL", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
