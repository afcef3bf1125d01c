package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupReadsConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	configPath = filepath.Join(dir, "whisphaven.yaml")
	envFile = filepath.Join(dir, "missing.env")
	t.Cleanup(func() { configPath, envFile = "", ".env" })

	require.NoError(t, os.WriteFile(configPath, []byte("port: \"9090\"\ndatabase_url: memory://\n"), 0o600))

	cfg, log, err := setup()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory://", cfg.DatabaseURL)
	assert.NotNil(t, log)
}

func TestResetCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "reset.db"))
	envFile = filepath.Join(dir, "missing.env")
	t.Cleanup(func() { envFile = ".env" })

	rootCmd.SetArgs([]string{"reset"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	assert.NoError(t, rootCmd.Execute())
}
