package config

import "time"

// fan-out scopes understood by the broker
const (
	ScopeAll  = "all"
	ScopeRoom = "room"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	Environment string

	// session cookie
	SessionSecret     string
	SessionCookieName string
	SessionMaxAge     time.Duration

	// messaging
	MessageBlockSize int
	BroadcastScope   string

	// listeners
	Port       string
	BrokerPort string

	ClientDir      string
	AllowedOrigins []string
	LoginRate      string
}

// command line overrides for the server binary
type Flags struct {
	Port       string
	BrokerPort string
	BlockSize  int
	EnvFile    string
}
