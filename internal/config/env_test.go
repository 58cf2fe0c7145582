package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// points godotenv at an empty file so a stray .env cannot leak into tests
func emptyEnvFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	return path
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"DATABASE_URL", "REDIS_URL", "ENVIRONMENT", "SESSION_SECRET",
		"SESSION_COOKIE_NAME", "SESSION_MAX_AGE", "MESSAGE_BLOCK_SIZE",
		"BROADCAST_SCOPE", "PORT", "CLIENT_DIR", "ALLOWED_ORIGINS", "LOGIN_RATE",
	} {
		t.Setenv(key, "")
	}

	// BROKER_PORT distinguishes unset from empty
	t.Setenv("BROKER_PORT", "")
	require.NoError(t, os.Unsetenv("BROKER_PORT"))
}

func TestLoadEnvironmentVariablesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadEnvironmentVariables(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DefaultCookieName, cfg.SessionCookieName)
	assert.Equal(t, 10*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, 10, cfg.MessageBlockSize)
	assert.Equal(t, ScopeAll, cfg.BroadcastScope)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "8000", cfg.BrokerPort)
	assert.Equal(t, DefaultLoginRate, cfg.LoginRate)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoadEnvironmentVariablesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_MAX_AGE", "90s")
	t.Setenv("MESSAGE_BLOCK_SIZE", "3")
	t.Setenv("BROADCAST_SCOPE", "ROOM")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("BROKER_PORT", "")

	cfg, err := LoadEnvironmentVariables(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.SessionMaxAge)
	assert.Equal(t, 3, cfg.MessageBlockSize)
	assert.Equal(t, ScopeRoom, cfg.BroadcastScope)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.BrokerPort)
}

func TestLoadEnvironmentVariablesRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"max age not a duration", "SESSION_MAX_AGE", "ten"},
		{"negative max age", "SESSION_MAX_AGE", "-1s"},
		{"block size not a number", "MESSAGE_BLOCK_SIZE", "x"},
		{"zero block size", "MESSAGE_BLOCK_SIZE", "0"},
		{"unknown scope", "BROADCAST_SCOPE", "galaxy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadEnvironmentVariables(emptyEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadEnvironmentVariables(emptyEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := LoadEnvironmentVariables(emptyEnvFile(t))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadEnvironmentVariablesFromFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("PORT"))

	path := filepath.Join(t.TempDir(), "server.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=4100\n"), 0o600))

	cfg, err := LoadEnvironmentVariables(path)
	require.NoError(t, err)
	assert.Equal(t, "4100", cfg.Port)
}

func TestLoadEnvironmentVariablesMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadEnvironmentVariables(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env file")
}

func TestParseServerFlags(t *testing.T) {
	flags, err := ParseServerFlags([]string{"--port", "4000", "-b", "4001", "--block-size", "5"})
	require.NoError(t, err)

	cfg := &Config{
		Port:             "3000",
		BrokerPort:       "8000",
		MessageBlockSize: 10,
		SessionMaxAge:    time.Minute,
		BroadcastScope:   ScopeAll,
	}
	require.NoError(t, flags.Apply(cfg))

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "4001", cfg.BrokerPort)
	assert.Equal(t, 5, cfg.MessageBlockSize)
}

func TestParseServerFlagsKeepsEnvironment(t *testing.T) {
	flags, err := ParseServerFlags(nil)
	require.NoError(t, err)

	cfg := &Config{Port: "3000", MessageBlockSize: 10, SessionMaxAge: time.Minute, BroadcastScope: ScopeAll}
	require.NoError(t, flags.Apply(cfg))

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10, cfg.MessageBlockSize)
}

func TestParseServerFlagsUnknownFlag(t *testing.T) {
	_, err := ParseServerFlags([]string{"--nope"})
	assert.Error(t, err)
}
