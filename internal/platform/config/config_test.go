package config

import (
	"strings"
	"testing"
	"time"
)

func valid() Config {
	return Config{
		StoreDriver:        StorePostgres,
		DatabaseURL:        "postgres://localhost/hrperf",
		TokenTTL:           time.Hour,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
		NotifyQueueSize:    16,
		ReminderInterval:   time.Hour,
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("EMAIL_ENABLED", "true")

	cfg := Load()
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory driver, got %q", cfg.StoreDriver)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.TokenTTL)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("expected fallback port, got %d", cfg.SMTPPort)
	}
	if !cfg.EmailEnabled {
		t.Fatal("expected email enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory without database", func(c *Config) { c.StoreDriver = StoreMemory; c.DatabaseURL = "" }, ""},
		{"postgres without database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"weak production secret", func(c *Config) { c.Environment = "production"; c.JWTSecret = "short" }, "JWT_SECRET"},
		{"email without host", func(c *Config) { c.EmailEnabled = true }, "SMTP_HOST"},
		{"half seeded admin", func(c *Config) { c.RunSeed = true; c.SeedSuperAdminEmail = "root@example.com" }, "SEED_SUPERADMIN"},
		{"tiny body limit", func(c *Config) { c.MaxBodyBytes = 10 }, "MAX_BODY_BYTES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
