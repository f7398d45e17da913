package config

import (
	"testing"
	"time"
)

var allKeys = []string{
	"PORT", "SERVER_PORT", "LOG_LEVEL", "LOG_FORMAT", "APP_ENV",
	"STORAGE_BACKEND", "BADGER_PATH", "SUPABASE_URL", "SUPABASE_ANON_KEY", "DEV_TOKEN",
	"ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"ANNOTATOR_API_URL", "ANNOTATOR_TOKEN", "AUTOSAVE_DELAY", "UNDO_LIMIT", "MARKER_RADIUS", "REHYDRATE_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogFormat() != "pretty" {
		t.Fatalf("expected pretty logs in development, got %s", cfg.GetLogFormat())
	}
	if cfg.GetStorageBackend() != StorageBadger {
		t.Fatalf("expected badger storage by default, got %s", cfg.GetStorageBackend())
	}
	if cfg.GetAutosaveDelay() != 3*time.Second {
		t.Fatalf("expected 3s autosave delay, got %s", cfg.GetAutosaveDelay())
	}
	if cfg.GetUndoLimit() != 100 {
		t.Fatalf("expected undo limit 100, got %d", cfg.GetUndoLimit())
	}
	if cfg.GetMarkerRadius() != 12 {
		t.Fatalf("expected marker radius 12, got %v", cfg.GetMarkerRadius())
	}
	if cfg.GetAllowedOrigins() != nil {
		t.Fatalf("expected no configured origins, got %v", cfg.GetAllowedOrigins())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "Supabase")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("AUTOSAVE_DELAY", "1500")
	t.Setenv("REHYDRATE_TIMEOUT", "250ms")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogFormat() != "json" {
		t.Fatalf("expected json logs in production, got %s", cfg.GetLogFormat())
	}
	if cfg.GetStorageBackend() != StorageSupabase {
		t.Fatalf("expected supabase storage, got %s", cfg.GetStorageBackend())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
	if got := cfg.GetAllowedOrigins(); len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
	if cfg.GetRateLimitRPS() != 0.5 {
		t.Fatalf("expected rps 0.5, got %v", cfg.GetRateLimitRPS())
	}
	if cfg.GetAutosaveDelay() != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s autosave delay, got %s", cfg.GetAutosaveDelay())
	}
	if cfg.GetRehydrateTimeout() != 250*time.Millisecond {
		t.Fatalf("expected 250ms rehydrate timeout, got %s", cfg.GetRehydrateTimeout())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("UNDO_LIMIT", "not-a-number")
	t.Setenv("AUTOSAVE_DELAY", "soon")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetUndoLimit() != 100 {
		t.Fatalf("expected default undo limit, got %d", cfg.GetUndoLimit())
	}
	if cfg.GetAutosaveDelay() != 3*time.Second {
		t.Fatalf("expected default autosave delay, got %s", cfg.GetAutosaveDelay())
	}
}

func TestNewContainer_BadgerWithDevToken(t *testing.T) {
	clearEnv(t)
	cfg := NewConfig()
	cfg.BadgerPath = t.TempDir()
	cfg.DevToken = "dev"

	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if c.AnnotationService == nil || c.AuthService == nil || c.RateLimiter == nil {
		t.Fatalf("expected services to be wired: %+v", c)
	}
	if _, err := c.AuthService.ValidateToken("dev"); err != nil {
		t.Fatalf("expected dev token to validate: %v", err)
	}
}

func TestNewContainer_RequiresCredentials(t *testing.T) {
	clearEnv(t)
	cfg := NewConfig()
	cfg.BadgerPath = t.TempDir()

	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected an error without Supabase or DEV_TOKEN")
	}

	cfg.StorageBackend = StorageSupabase
	cfg.DevToken = "dev"
	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected an error for supabase storage without credentials")
	}
}
