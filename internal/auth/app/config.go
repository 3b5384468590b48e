package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/jwtx"
)

type Config struct {
	Issuer string // Issuer claim stamped into every token

	AccessSecret  string // Required: HS256 secret for access tokens
	RefreshSecret string // Required: HS256 secret for refresh tokens
	ResetSecret   string // Required: HS256 secret for password-reset tokens

	AccessTTL    time.Duration // Access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Refresh token lifetime (default: 7d)
	ResetTTL     time.Duration // Reset token lifetime (default: 1h)
	ChallengeTTL time.Duration // Two-factor login challenge lifetime (default: 5m)

	DatabaseFile         string        // Path to SQLite database file (default: ./hrflow.db)
	FrontendURL          string        // Base URL embedded in reset links
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	AuditQueueSize       int           // Audit queue capacity (default: 256)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-credential sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer: getEnvOrDefault("HRFLOW_ISSUER", "hrflow-auth"),

		AccessSecret:  os.Getenv("HRFLOW_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("HRFLOW_REFRESH_SECRET"),
		ResetSecret:   os.Getenv("HRFLOW_RESET_SECRET"),

		AccessTTL:    getEnvDurationOrDefault("HRFLOW_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:   getEnvDurationOrDefault("HRFLOW_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		ResetTTL:     getEnvDurationOrDefault("HRFLOW_RESET_TTL", jwtx.DefaultResetTokenTTL),
		ChallengeTTL: getEnvDurationOrDefault("HRFLOW_CHALLENGE_TTL", service.DefaultChallengeTTL),

		DatabaseFile:         getEnvOrDefault("HRFLOW_DATABASE_FILE", "hrflow.db"),
		FrontendURL:          getEnvOrDefault("HRFLOW_FRONTEND_URL", "http://localhost:3000"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		AuditQueueSize:       getEnvIntOrDefault("HRFLOW_AUDIT_QUEUE_SIZE", service.DefaultAuditQueueSize),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	return cfg
}

// Validate rejects a configuration the service cannot safely run with. The
// three signing secrets have no defaults on purpose: a guessable secret means
// forgeable credentials.
func (c Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" || c.ResetSecret == "" {
		return errors.New("HRFLOW_ACCESS_SECRET, HRFLOW_REFRESH_SECRET and HRFLOW_RESET_SECRET must all be set")
	}
	if c.AccessSecret == c.RefreshSecret || c.AccessSecret == c.ResetSecret || c.RefreshSecret == c.ResetSecret {
		return errors.New("token signing secrets must be distinct per domain")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Parse as a duration string (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Fall back to integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
