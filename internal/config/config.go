package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	// CORSAllowedHosts are accepted in addition to the localhost dev hosts.
	CORSAllowedHosts []string

	DB     DatabaseConfig
	Redis  RedisConfig
	Admin  AdminConfig
	Alerts AlertConfig
	Sales  SalesConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
	DraftTTL    time.Duration
}

// AdminConfig describes the bootstrap admin account ensured at startup.
// Both fields empty disables bootstrapping.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// AlertConfig contains auto-expiry durations for stock alerts.
// A zero duration keeps alerts of that kind until dismissed.
type AlertConfig struct {
	DefaultTTL     time.Duration
	LowStockTTL    time.Duration
	ReplenishedTTL time.Duration
}

// SalesConfig contains defaults applied to new sale drafts.
type SalesConfig struct {
	DefaultTaxPercent float64
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	StockSweepInterval time.Duration
	SessionIdleAfter   time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production injects real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", ""))

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Redis.SnapshotTTL, err = parseDurationEnv("PRODUCT_SNAPSHOT_TTL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_SNAPSHOT_TTL: %w", err)
	}
	if cfg.Redis.DraftTTL, err = parseDurationEnv("SALE_DRAFT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SALE_DRAFT_TTL: %w", err)
	}

	// Alerts (durations)
	if cfg.Alerts.DefaultTTL, err = parseDurationEnv("ALERT_TTL", "8s"); err != nil {
		return nil, fmt.Errorf("invalid ALERT_TTL: %w", err)
	}
	if cfg.Alerts.LowStockTTL, err = parseDurationEnv("LOW_STOCK_ALERT_TTL", "8s"); err != nil {
		return nil, fmt.Errorf("invalid LOW_STOCK_ALERT_TTL: %w", err)
	}
	if cfg.Alerts.ReplenishedTTL, err = parseDurationEnv("REPLENISHED_ALERT_TTL", "6s"); err != nil {
		return nil, fmt.Errorf("invalid REPLENISHED_ALERT_TTL: %w", err)
	}

	// Sales
	if cfg.Sales.DefaultTaxPercent, err = parsePercentEnv("DEFAULT_TAX_PERCENT", "18"); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TAX_PERCENT: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.StockSweepInterval, err = parseDurationEnv("STOCK_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid STOCK_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Worker.SessionIdleAfter, err = parseDurationEnv("SESSION_IDLE_AFTER", "2h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_AFTER: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// parsePercentEnv reads a percentage in [0, 100].
func parsePercentEnv(key, def string) (float64, error) {
	raw := getEnv(key, def)
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentage must be between 0 and 100")
	}
	return p, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
