package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "CORS_ORIGIN", "JWT_SECRET", "X_ADMIN_TOKEN", "GIN_MODE",
		"AMQP_URL", "AMQP_EXCHANGE", "DEBUG", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SIMULATED_LATENCY"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite://whisphaven.db", cfg.DatabaseURL)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, "whisphaven.feed", cfg.AMQP.Exchange)
	assert.InDelta(t, 1.0/3.0, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Zero(t, cfg.SimulatedLatency)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "whisphaven.yaml")
	yml := `
port: "9000"
database_url: redis://localhost:6379/0
simulated_latency: 250ms
rate_limit:
  rps: 2
  burst: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.SimulatedLatency)
	assert.Equal(t, 5, cfg.RateLimit.Burst)

	t.Setenv("PORT", "7000")
	t.Setenv("DEBUG", "true")
	t.Setenv("SIMULATED_LATENCY", "1s")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, time.Second, cfg.SimulatedLatency)
	assert.Equal(t, "redis://localhost:6379/0", cfg.DatabaseURL, "file value survives when env is unset")
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	t.Setenv("RATE_LIMIT_BURST", "lots")
	_, err := Load("")
	assert.ErrorContains(t, err, "RATE_LIMIT_BURST")

	clearEnv(t)
	t.Setenv("GIN_MODE", "release")
	_, err = Load("")
	assert.ErrorContains(t, err, "JWT_SECRET")

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	// godotenv never overrides a variable that exists, even when empty.
	require.NoError(t, os.Unsetenv("CORS_ORIGIN"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CORS_ORIGIN=https://pookie.example\n"), 0o600))
	require.NoError(t, LoadEnvFile(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://pookie.example", cfg.CORSOrigin)
}

func TestAdminToken(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "whisphaven.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin_token: from-file\ngin_mode: test\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AdminToken)
	assert.Equal(t, "test", cfg.GinMode)

	t.Setenv("X_ADMIN_TOKEN", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AdminToken)
}
