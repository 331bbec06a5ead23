package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("BILLPAY_TEST_STRING", "custom")
	t.Setenv("BILLPAY_TEST_INT", "42")
	t.Setenv("BILLPAY_TEST_BAD_INT", "forty-two")
	t.Setenv("BILLPAY_TEST_BOOL", "true")
	t.Setenv("BILLPAY_TEST_DURATION", "90s")

	if got := getEnv("TEST_STRING", "default"); got != "custom" {
		t.Errorf("getEnv() = %v, want custom", got)
	}
	if got := getEnv("TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want default", got)
	}
	if got := getEnvInt("TEST_INT", 1); got != 42 {
		t.Errorf("getEnvInt() = %v, want 42", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvInt() with bad value = %v, want 1", got)
	}
	if got := getEnvBool("TEST_BOOL", false); !got {
		t.Error("getEnvBool() = false, want true")
	}
	if got := getEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %v, want 90s", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("BILLPAY_JWT_SECRET", "secret")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %v, want :8080", cfg.Server.Addr)
	}
	if cfg.Storage.Type != StorageSQLite {
		t.Errorf("Storage.Type = %v, want sqlite", cfg.Storage.Type)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Cache.Size != 1024 {
		t.Errorf("Cache.Size = %v, want 1024", cfg.Cache.Size)
	}
	if cfg.Seed.Enabled {
		t.Error("seeding should be off by default")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Addr: ":8080"},
			Storage: StorageConfig{Type: StorageSQLite, DBPath: "x.db"},
			Auth:    AuthConfig{JWTSecret: "s", TokenTTL: time.Hour},
			Log:     LogConfig{Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"unknown storage", func(c *Config) { c.Storage.Type = "mysql" }, true},
		{"postgres without url", func(c *Config) { c.Storage.Type = StoragePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.Storage.Type = StoragePostgres
			c.Storage.PostgresURL = "postgres://localhost/billpay"
		}, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"negative cache", func(c *Config) { c.Cache.Size = -1 }, true},
		{"seed without passwords", func(c *Config) { c.Seed.Enabled = true }, true},
		{"seed with passwords", func(c *Config) {
			c.Seed = SeedConfig{Enabled: true, ElifPassword: "elif-pass", AdminPassword: "admin-pass"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "BILLPAY_JWT_SECRET=from-file\nBILLPAY_ADDR=:9999\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	// Variables already in the environment win over the file.
	t.Setenv("BILLPAY_ADDR", ":7777")
	// t.Setenv restores the previous value, including whatever the file set.
	t.Setenv("BILLPAY_JWT_SECRET", "")
	os.Unsetenv("BILLPAY_JWT_SECRET")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("JWTSecret = %v, want from-file", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %v, want :7777", cfg.Server.Addr)
	}
}

func TestLoadMissingDotEnv(t *testing.T) {
	t.Setenv("BILLPAY_JWT_SECRET", "secret")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Load() with missing file error = %v", err)
	}
}
