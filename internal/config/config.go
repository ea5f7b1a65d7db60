package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort   string `mapstructure:"APP_PORT"`
	StaticDir string `mapstructure:"STATIC_DIR"`

	// --- Redis ---
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- S3 ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`

	// --- Brave search ---
	BraveAPIKey      string `mapstructure:"BRAVE_API_KEY"`
	BraveResultCount int    `mapstructure:"BRAVE_RESULT_COUNT"`
	BraveSafeSearch  string `mapstructure:"BRAVE_SAFESEARCH"`

	// --- Quota / cache / fetch ---
	QuotaDailyLimit        int   `mapstructure:"QUOTA_DAILY_LIMIT"`
	QuotaTTLHours          int   `mapstructure:"QUOTA_TTL_HOURS"`
	CacheTTLDays           int   `mapstructure:"CACHE_TTL_DAYS"`
	FetchGlobalDeadlineSec int   `mapstructure:"FETCH_GLOBAL_DEADLINE_SEC"`
	FetchAttemptTimeoutSec int   `mapstructure:"FETCH_ATTEMPT_TIMEOUT_SEC"`
	FetchMaxBytes          int64 `mapstructure:"FETCH_MAX_BYTES"`

	// --- Notifications (optional) ---
	NtfyURL string `mapstructure:"NTFY_URL"`
}

// String implements Stringer; secrets are masked.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  StaticDir: %s\n", c.StaticDir))
	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(fmt.Sprintf("  RedisPassword: %s\n", mask(c.RedisPassword)))
	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	sb.WriteString(fmt.Sprintf("  S3AccessKey: %s\n", mask(c.S3AccessKey)))
	sb.WriteString(fmt.Sprintf("  S3SecretKey: %s\n", mask(c.S3SecretKey)))
	sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
	sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))
	sb.WriteString(fmt.Sprintf("  BraveAPIKey: %s\n", mask(c.BraveAPIKey)))
	sb.WriteString(fmt.Sprintf("  BraveResultCount: %d\n", c.BraveResultCount))
	sb.WriteString(fmt.Sprintf("  BraveSafeSearch: %s\n", c.BraveSafeSearch))
	sb.WriteString(fmt.Sprintf("  QuotaDailyLimit: %d\n", c.QuotaDailyLimit))
	sb.WriteString(fmt.Sprintf("  QuotaTTLHours: %d\n", c.QuotaTTLHours))
	sb.WriteString(fmt.Sprintf("  CacheTTLDays: %d\n", c.CacheTTLDays))
	sb.WriteString(fmt.Sprintf("  FetchGlobalDeadlineSec: %d\n", c.FetchGlobalDeadlineSec))
	sb.WriteString(fmt.Sprintf("  FetchAttemptTimeoutSec: %d\n", c.FetchAttemptTimeoutSec))
	sb.WriteString(fmt.Sprintf("  FetchMaxBytes: %d\n", c.FetchMaxBytes))
	sb.WriteString(fmt.Sprintf("  NtfyURL: %s\n", c.NtfyURL))
	return sb.String()
}

func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}

// LoadFromEnv loads the configuration from environment variables,
// reading .env first when present (local development).
func LoadFromEnv() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	keys := []string{
		"APP_PORT", "STATIC_DIR",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE",
		"BRAVE_API_KEY", "BRAVE_RESULT_COUNT", "BRAVE_SAFESEARCH",
		"QUOTA_DAILY_LIMIT", "QUOTA_TTL_HOURS", "CACHE_TTL_DAYS",
		"FETCH_GLOBAL_DEADLINE_SEC", "FETCH_ATTEMPT_TIMEOUT_SEC", "FETCH_MAX_BYTES",
		"NTFY_URL",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STATIC_DIR", "web/static")
	v.SetDefault("BRAVE_RESULT_COUNT", 10)
	v.SetDefault("BRAVE_SAFESEARCH", "off")
	v.SetDefault("QUOTA_DAILY_LIMIT", 25)
	v.SetDefault("QUOTA_TTL_HOURS", 48)
	v.SetDefault("CACHE_TTL_DAYS", 30)
	v.SetDefault("FETCH_GLOBAL_DEADLINE_SEC", 20)
	v.SetDefault("FETCH_ATTEMPT_TIMEOUT_SEC", 5)
	v.SetDefault("FETCH_MAX_BYTES", int64(10<<20))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.BraveAPIKey == "" {
		return nil, errors.New("BRAVE_API_KEY is required")
	}
	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

func (c *Config) QuotaTTL() time.Duration {
	return time.Duration(c.QuotaTTLHours) * time.Hour
}

func (c *Config) FetchGlobalDeadline() time.Duration {
	return time.Duration(c.FetchGlobalDeadlineSec) * time.Second
}

func (c *Config) FetchAttemptTimeout() time.Duration {
	return time.Duration(c.FetchAttemptTimeoutSec) * time.Second
}
