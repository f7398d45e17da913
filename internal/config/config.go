package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-annotator/internal/domain"
)

const (
	StorageBadger   = "badger"
	StorageSupabase = "supabase"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort  string
	LogLevel    string
	LogFormat   string
	Environment string

	StorageBackend string
	BadgerPath     string
	SupabaseURL    string
	SupabaseKey    string
	DevToken       string

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	APIBaseURL       string
	APIToken         string
	AutosaveDelay    time.Duration
	UndoLimit        int
	MarkerRadius     float64
	RehydrateTimeout time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() *AppConfig {
	env := getEnvOrDefault("APP_ENV", "development")
	defaultFormat := "pretty"
	if env == "production" {
		defaultFormat = "json"
	}

	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", defaultFormat),
		Environment: env,

		StorageBackend: strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageBadger)),
		BadgerPath:     getEnvOrDefault("BADGER_PATH", "./data/annotations"),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		DevToken:       getEnvOrDefault("DEV_TOKEN", ""),

		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", nil),
		RateLimitRPS:   getEnvFloatOrDefault("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvIntOrDefault("RATE_LIMIT_BURST", 10),

		APIBaseURL:       getEnvOrDefault("ANNOTATOR_API_URL", "http://localhost:8080/api/v1"),
		APIToken:         getEnvOrDefault("ANNOTATOR_TOKEN", ""),
		AutosaveDelay:    getEnvDurationOrDefault("AUTOSAVE_DELAY", 3*time.Second),
		UndoLimit:        getEnvIntOrDefault("UNDO_LIMIT", 100),
		MarkerRadius:     getEnvFloatOrDefault("MARKER_RADIUS", 12),
		RehydrateTimeout: getEnvDurationOrDefault("REHYDRATE_TIMEOUT", 5*time.Second),
	}
}

var _ domain.Config = (*AppConfig)(nil)

func (c *AppConfig) GetServerPort() string  { return c.ServerPort }
func (c *AppConfig) GetLogLevel() string    { return c.LogLevel }
func (c *AppConfig) GetLogFormat() string   { return c.LogFormat }
func (c *AppConfig) GetEnvironment() string { return c.Environment }

func (c *AppConfig) GetStorageBackend() string { return c.StorageBackend }
func (c *AppConfig) GetBadgerPath() string     { return c.BadgerPath }
func (c *AppConfig) GetSupabaseURL() string    { return c.SupabaseURL }
func (c *AppConfig) GetSupabaseKey() string    { return c.SupabaseKey }
func (c *AppConfig) GetDevToken() string       { return c.DevToken }

func (c *AppConfig) GetAllowedOrigins() []string { return c.AllowedOrigins }
func (c *AppConfig) GetRateLimitRPS() float64    { return c.RateLimitRPS }
func (c *AppConfig) GetRateLimitBurst() int      { return c.RateLimitBurst }

func (c *AppConfig) GetAPIBaseURL() string              { return c.APIBaseURL }
func (c *AppConfig) GetAPIToken() string                { return c.APIToken }
func (c *AppConfig) GetAutosaveDelay() time.Duration    { return c.AutosaveDelay }
func (c *AppConfig) GetUndoLimit() int                  { return c.UndoLimit }
func (c *AppConfig) GetMarkerRadius() float64           { return c.MarkerRadius }
func (c *AppConfig) GetRehydrateTimeout() time.Duration { return c.RehydrateTimeout }

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("3s") or plain milliseconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
