// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so a developer's shell or
// .env cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "AUTH_MODE", "JWT_PUBLIC_KEY_PATH", "JWT_SECRET", "PASETO_SECRET", "PASETO_SALT",
		"REDIS_ADDR", "REDIS_PW", "REDIS_DB", "RESULTS_QUEUE_NAME", "DATABASE_URL", "PG_HOST", "PG_PORT",
		"PG_DATABASE", "POSTGRES_USER", "POSTGRES_PASSWORD", "DB_MIGRATE", "CATALOG_PATH", "ALLOWED_ORIGINS",
		"OUTBOX_SIZE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, AuthAdvisory, cfg.AuthMode)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 32, cfg.OutboxSize)
	assert.Equal(t, "arcade_match_results", cfg.ResultsQueue)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "arcade")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("PG_DATABASE", "arcade")
	t.Setenv("DB_MIGRATE", "true")
	t.Setenv("OUTBOX_SIZE", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://arcade:pw@db:5432/arcade", cfg.DatabaseURL)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 32, cfg.OutboxSize)
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"non-numeric port":      {"PORT": "http"},
		"unknown auth mode":     {"AUTH_MODE": "oauth"},
		"unknown log level":     {"LOG_LEVEL": "loud"},
		"paseto without secret": {"AUTH_MODE": "paseto"},
		"jwt without key":       {"AUTH_MODE": "jwt"},
		"missing key file":      {"AUTH_MODE": "jwt", "JWT_PUBLIC_KEY_PATH": "/nonexistent/key"},
		"missing catalog file":  {"CATALOG_PATH": "/nonexistent/games.yaml"},
		"outbox too large":      {"OUTBOX_SIZE": "100000"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigJWTKeyFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "public.key")
	require.NoError(t, os.WriteFile(path, make([]byte, 32), 0o600))
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_PUBLIC_KEY_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.JWTPublicKeyPath)
}
