package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "marketplace", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "UTC", cfg.Database.TimeZone)

	assert.True(t, cfg.Database.Retry.Enabled)
	assert.Equal(t, 3, cfg.Database.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Database.Retry.InitialDelay)

	assert.True(t, cfg.Outbox.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.CORS.AllowOrigins)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: marketplace-test
  env: production
server:
  port: "9090"
database:
  host: db.internal
  retry:
    max_attempts: 5
outbox:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "marketplace-test", cfg.App.Name)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5, cfg.Database.Retry.MaxAttempts)
	assert.False(t, cfg.Outbox.Enabled)

	// Values absent from the file keep their defaults.
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LUM_SERVER_PORT", "7070")
	t.Setenv("LUM_DATABASE_PASSWORD", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Database.Password)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [not: valid"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
