package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(contents), 0o644))
}

func TestLoadFrom_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvKey, "testenv")
	writeConfigFile(t, dir, "testenv", `
name: sessions
redis_addr: "localhost:6379"
default_ttl: 5m
early_expiration_percentage: 0.1
lock_timeout: 2s
`)

	var cfg Stack
	require.NoError(t, LoadFrom(&cfg, dir))

	assert.Equal(t, "sessions", cfg.Name)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.DefaultTTL)
	assert.InDelta(t, 0.1, cfg.EarlyExpirationPercentage, 0.0001)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
}

func TestLoadFrom_MissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvKey, "missing")

	var cfg Stack
	assert.Error(t, LoadFrom(&cfg, dir))
}

func TestAppEnv_DefaultsWhenUnset(t *testing.T) {
	t.Setenv(EnvKey, "")
	assert.Equal(t, DefaultEnv, AppEnv())
}

func TestAppEnv_UsesEnvironmentValue(t *testing.T) {
	t.Setenv(EnvKey, "staging")
	assert.Equal(t, "staging", AppEnv())
}
