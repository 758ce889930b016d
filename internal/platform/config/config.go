package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Addr                   string
	Environment            string
	StoreDriver            string
	DatabaseURL            string
	JWTSecret              string
	TokenTTL               time.Duration
	RunMigrations          bool
	MigrationsDir          string
	RunSeed                bool
	SeedSuperAdminEmail    string
	SeedSuperAdminPassword string
	SeedTemplatesFile      string
	EmailEnabled           bool
	EmailFrom              string
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	SMTPUseTLS             bool
	NotifyQueueSize        int
	ReminderInterval       time.Duration
	NotificationRetention  time.Duration
	AuditRetention         time.Duration
	MaxBodyBytes           int64
	RateLimitPerMinute     int
	MetricsEnabled         bool
}

func Load() Config {
	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		Environment:            getEnv("APP_ENV", "development"),
		StoreDriver:            strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		TokenTTL:               getEnvDuration("TOKEN_TTL", 12*time.Hour),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:          getEnv("MIGRATIONS_DIR", "migrations"),
		RunSeed:                getEnvBool("RUN_SEED", true),
		SeedSuperAdminEmail:    getEnv("SEED_SUPERADMIN_EMAIL", ""),
		SeedSuperAdminPassword: getEnv("SEED_SUPERADMIN_PASSWORD", ""),
		SeedTemplatesFile:      getEnv("SEED_TEMPLATES_FILE", ""),
		EmailEnabled:           getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:              getEnv("EMAIL_FROM", "no-reply@example.com"),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:             getEnvBool("SMTP_USE_TLS", true),
		NotifyQueueSize:        getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		ReminderInterval:       getEnvDuration("REMINDER_INTERVAL", time.Hour),
		NotificationRetention:  getEnvDuration("NOTIFICATION_RETENTION", 90*24*time.Hour),
		AuditRetention:         getEnvDuration("AUDIT_RETENTION", 0),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	if c.Environment == "production" {
		if len(strings.TrimSpace(c.JWTSecret)) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.StoreDriver == StoreMemory {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.NotifyQueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive")
	}
	if c.ReminderInterval < time.Minute {
		return fmt.Errorf("REMINDER_INTERVAL must be at least 1m")
	}
	if c.NotificationRetention < 0 || c.AuditRetention < 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION and AUDIT_RETENTION must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.RunSeed && (c.SeedSuperAdminEmail == "") != (c.SeedSuperAdminPassword == "") {
		return fmt.Errorf("SEED_SUPERADMIN_EMAIL and SEED_SUPERADMIN_PASSWORD must be set together")
	}
	return nil
}
