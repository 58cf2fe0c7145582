package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultCookieName = "chat-session"
	DefaultMaxAge     = 10 * time.Minute
	DefaultBlockSize  = 10
	DefaultPort       = "3000"
	DefaultBrokerPort = "8000"
	DefaultLoginRate  = "10-M"
)

// loads configuration from the environment. with no envFiles an optional .env is read,
// otherwise every named file must load
func LoadEnvironmentVariables(envFiles ...string) (*Config, error) {
	// a missing implicit .env is not an error - production environments may not have one
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		Environment:       envOr("ENVIRONMENT", "development"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionCookieName: envOr("SESSION_COOKIE_NAME", DefaultCookieName),
		SessionMaxAge:     DefaultMaxAge,
		MessageBlockSize:  DefaultBlockSize,
		BroadcastScope:    strings.ToLower(envOr("BROADCAST_SCOPE", ScopeAll)),
		Port:              envOr("PORT", DefaultPort),
		BrokerPort:        DefaultBrokerPort,
		ClientDir:         os.Getenv("CLIENT_DIR"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		LoginRate:         envOr("LOGIN_RATE", DefaultLoginRate),
	}

	// BROKER_PORT set but empty serves the broker from the api listener only
	if port, ok := os.LookupEnv("BROKER_PORT"); ok {
		cfg.BrokerPort = strings.TrimSpace(port)
	}

	if raw := os.Getenv("SESSION_MAX_AGE"); raw != "" {
		maxAge, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SESSION_MAX_AGE must be a duration: %w", err)
		}

		cfg.SessionMaxAge = maxAge
	}

	if raw := os.Getenv("MESSAGE_BLOCK_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("MESSAGE_BLOCK_SIZE must be an integer: %w", err)
		}

		cfg.MessageBlockSize = size
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks the values that have no safe fallback
func (c *Config) Validate() error {
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive, got %s", c.SessionMaxAge)
	}

	if c.MessageBlockSize < 1 {
		return fmt.Errorf("message block size must be at least 1, got %d", c.MessageBlockSize)
	}

	if c.BroadcastScope != ScopeAll && c.BroadcastScope != ScopeRoom {
		return fmt.Errorf("BROADCAST_SCOPE must be %q or %q, got %q", ScopeAll, ScopeRoom, c.BroadcastScope)
	}

	if c.Environment == "production" && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required in production")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
