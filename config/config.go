package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	MentorAPI     MentorAPIConfig
	MentorList    MentorListConfig
	Sessions      SessionsConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

// MentorAPIConfig points at the remote mentor-search API
type MentorAPIConfig struct {
	BaseURL        string
	SearchPath     string
	TimeoutSeconds int
	// ServiceToken is used when a caller does not present its own bearer token
	ServiceToken string
}

// MentorListConfig tunes the mentor list view behaviour
type MentorListConfig struct {
	PageSize int
	// DiscardStale drops responses of superseded filter commits instead of
	// letting the last processed response win
	DiscardStale bool
	// ResetPageOnFilter moves back to page 1 whenever a new filter is committed
	ResetPageOnFilter bool
}

type SessionsConfig struct {
	TTLMinutes         int
	WaitTimeoutSeconds int
}

// RedisConfig configures the persistent token store. An empty Addr selects
// the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TokenKey string
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("MENTOR_API_SEARCH_PATH", "/api/mentor/search")
	v.SetDefault("MENTOR_API_TIMEOUT", 30)
	v.SetDefault("MENTOR_LIST_PAGE_SIZE", 10)
	v.SetDefault("MENTOR_LIST_DISCARD_STALE", false)
	v.SetDefault("MENTOR_LIST_RESET_PAGE", false)
	v.SetDefault("VIEW_SESSION_TTL_MINUTES", 30)
	v.SetDefault("VIEW_WAIT_TIMEOUT_SECONDS", 10)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TOKEN_STORE_KEY", "token")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "mentor-finder")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "mentor-platform")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "mentor-finder")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		MentorAPI: MentorAPIConfig{
			BaseURL:        strings.TrimRight(v.GetString("MENTOR_API_BASE_URL"), "/"),
			SearchPath:     v.GetString("MENTOR_API_SEARCH_PATH"),
			TimeoutSeconds: v.GetInt("MENTOR_API_TIMEOUT"),
			ServiceToken:   v.GetString("MENTOR_API_SERVICE_TOKEN"),
		},
		MentorList: MentorListConfig{
			PageSize:          v.GetInt("MENTOR_LIST_PAGE_SIZE"),
			DiscardStale:      v.GetBool("MENTOR_LIST_DISCARD_STALE"),
			ResetPageOnFilter: v.GetBool("MENTOR_LIST_RESET_PAGE"),
		},
		Sessions: SessionsConfig{
			TTLMinutes:         v.GetInt("VIEW_SESSION_TTL_MINUTES"),
			WaitTimeoutSeconds: v.GetInt("VIEW_WAIT_TIMEOUT_SECONDS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TokenKey: v.GetString("TOKEN_STORE_KEY"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			JWTIssuer: v.GetString("JWT_ISSUER"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.MentorAPI.BaseURL == "" {
		return fmt.Errorf("MENTOR_API_BASE_URL is required")
	}
	if u, err := url.Parse(c.MentorAPI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("MENTOR_API_BASE_URL must be an absolute URL")
	}
	if !strings.HasPrefix(c.MentorAPI.SearchPath, "/") {
		return fmt.Errorf("MENTOR_API_SEARCH_PATH must start with /")
	}

	if c.MentorList.PageSize < 1 {
		return fmt.Errorf("MENTOR_LIST_PAGE_SIZE must be positive")
	}
	if c.Sessions.TTLMinutes < 1 {
		return fmt.Errorf("VIEW_SESSION_TTL_MINUTES must be positive")
	}

	if c.Redis.Addr != "" && c.Redis.TokenKey == "" {
		return fmt.Errorf("TOKEN_STORE_KEY is required when REDIS_ADDR is set")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// MentorAPITimeout returns the remote API request timeout
func (c *Config) MentorAPITimeout() time.Duration {
	return time.Duration(c.MentorAPI.TimeoutSeconds) * time.Second
}

// SessionTTL returns the idle lifetime of a view session
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Sessions.TTLMinutes) * time.Minute
}

// WaitTimeout bounds how long a snapshot request may wait for fetches
func (c *Config) WaitTimeout() time.Duration {
	if c.Sessions.WaitTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Sessions.WaitTimeoutSeconds) * time.Second
}
