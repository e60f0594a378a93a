package config

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/juanjparedez/mundobl/internal/settings"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTSecret string
	JWTIssuer string

	DataDir           string
	MediaPublicURL    string
	ImageFetchTimeout time.Duration
	ImageMaxBytes     int64

	RedisAddr          string
	ImageMigrationCron string

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	// TrustedProxies lists the IPs or CIDRs whose forwarded headers are
	// believed. Requests from anywhere else are keyed by socket address.
	TrustedProxies []string

	LogLevel     string
	LogFormat    string
	OTLPEndpoint string
}

func Load() *Config {
	return &Config{
		Port:               envInt("PORT", 8080),
		DatabaseURL:        env("DATABASE_URL", "postgres://mundobl:mundobl@db:5432/mundobl?sslmode=disable"),
		DBMaxOpenConns:     envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     envInt("DB_MAX_IDLE_CONNS", 5),
		JWTSecret:          env("AUTH_JWT_SECRET", ""),
		JWTIssuer:          env("AUTH_JWT_ISSUER", ""),
		DataDir:            env("DATA_DIR", "/data"),
		MediaPublicURL:     strings.TrimRight(env("MEDIA_PUBLIC_URL", "/media"), "/"),
		ImageFetchTimeout:  envDuration("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ImageMaxBytes:      envInt64("IMAGE_MAX_BYTES", 10<<20),
		RedisAddr:          env("REDIS_ADDR", ""),
		ImageMigrationCron: env("IMAGE_MIGRATION_CRON", ""),
		RateLimitRPS:       envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 20),
		CORSOrigins:        envList("CORS_ORIGINS", []string{"*"}),
		TrustedProxies:     envList("TRUSTED_PROXIES", nil),
		LogLevel:           env("LOG_LEVEL", "info"),
		LogFormat:          env("LOG_FORMAT", "text"),
		OTLPEndpoint:       env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// MergeFromDB applies admin overrides stored in the settings table. A
// missing table or unparsable value leaves the environment value in place.
func (c *Config) MergeFromDB(db *sql.DB) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		slog.Warn("config: skipping DB merge", "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		c.apply(key, value)
	}
}

func (c *Config) apply(key, value string) {
	switch key {
	case settings.KeyImageMigrationCron:
		c.ImageMigrationCron = value
	case settings.KeyRateLimitRPS:
		if v, err := cast.ToFloat64E(value); err == nil {
			c.RateLimitRPS = v
		}
	case settings.KeyRateLimitBurst:
		if v, err := cast.ToIntE(value); err == nil {
			c.RateLimitBurst = v
		}
	case settings.KeyImageMaxBytes:
		if v, err := cast.ToInt64E(value); err == nil && v > 0 {
			c.ImageMaxBytes = v
		}
	}
}

// MediaDir is where hosted images are written.
func (c *Config) MediaDir() string {
	return filepath.Join(c.DataDir, "media")
}

func (c *Config) JobsEnabled() bool {
	return c.RedisAddr != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := cast.ToInt64E(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
