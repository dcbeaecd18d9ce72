package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	UpstreamURL     string
	UpstreamTimeout time.Duration

	PollInterval      time.Duration
	LowStockThreshold int
	ExpiryWarningDays int
	ExpiryAlerts      bool
	LowStockAlerts    bool

	RedisAddr string
	CacheTTL  time.Duration

	AlertDBPath string
}

// Load reads configuration from the environment, with .env as a fallback
// for local development. UPSTREAM_URL is the only required value; the
// thresholds default to the documented warehouse settings.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnvInt("PORT", 8080),
		UpstreamURL:       os.Getenv("UPSTREAM_URL"),
		UpstreamTimeout:   getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		PollInterval:      getEnvDuration("POLL_INTERVAL", 30*time.Second),
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 10),
		ExpiryWarningDays: getEnvInt("EXPIRY_WARNING_DAYS", 30),
		ExpiryAlerts:      getEnvBool("EXPIRY_ALERTS", true),
		LowStockAlerts:    getEnvBool("LOW_STOCK_ALERTS", true),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		CacheTTL:          getEnvDuration("CACHE_TTL", 20*time.Second),
		AlertDBPath:       getEnv("ALERT_DB_PATH", "./alerts.db"),
	}

	if cfg.UpstreamURL == "" {
		return Config{}, fmt.Errorf("UPSTREAM_URL is required (environment variable or .env)")
	}
	if cfg.Port <= 0 {
		return Config{}, fmt.Errorf("invalid PORT: %d", cfg.Port)
	}
	if cfg.LowStockThreshold < 0 {
		return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD cannot be negative")
	}
	if cfg.ExpiryWarningDays < 0 {
		return Config{}, fmt.Errorf("EXPIRY_WARNING_DAYS cannot be negative")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
