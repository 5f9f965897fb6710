package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 3600, cfg.Records.DefaultTTL)
	assert.False(t, cfg.Records.DefaultProxied)
	assert.Equal(t, "data", cfg.Database.Dir)
	assert.Equal(t, 5*time.Second, cfg.Probe.Timeout())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "from-file"
`)
	t.Setenv("TELEGRAM_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
}

func TestLoadMissingFileWithEnvToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
}

func TestLoadMissingTokenFails(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	path := writeConfig(t, `
records:
  default_ttl: 60
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram token")
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
records:
  default_ttl: 120
  default_proxied: true
database:
  dsn: "postgres://cfbot@localhost/cfbot"
probe:
  timeout_seconds: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Telegram.AdminID)
	assert.Equal(t, 120, cfg.Records.DefaultTTL)
	assert.True(t, cfg.Records.DefaultProxied)
	assert.Equal(t, "postgres://cfbot@localhost/cfbot", cfg.Database.DSN)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout())
}
