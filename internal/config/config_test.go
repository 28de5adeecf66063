package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db.local"
port = 5432
user = "scheduling"
password = "secret"
dbname = "scheduling"
sslmode = "require"

[logs]
level = "debug"
format = "console"

[metrics]
enabled = true
path = "/internal/metrics"
service_name = "scheduling"

[google_calendar]
credentials_file = "/etc/creds.json"
timeout = 3

[rate_limit]
enabled = true
rps = 5.0
burst = 10
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.HTTPPort)
		assert.Equal(t, "host=db.local port=5432 user=scheduling password=secret dbname=scheduling sslmode=require", cfg.Database.DSN())
		assert.Equal(t, "debug", cfg.Logs.Level)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/internal/metrics", cfg.Metrics.Path)
		assert.Equal(t, "/etc/creds.json", cfg.GoogleCalendar.CredentialsFile)
		assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	})

	t.Run("defaults fill the gaps", func(t *testing.T) {
		path := writeConfig(t, `
[database]
host = "localhost"
user = "scheduling"
dbname = "scheduling"
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.HTTPPort)
		assert.Equal(t, 15, cfg.Server.ReadTimeout)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "info", cfg.Logs.Level)
		assert.Equal(t, "json", cfg.Logs.Format)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.False(t, cfg.Metrics.Enabled)
		assert.Equal(t, 5, cfg.GoogleCalendar.Timeout)
		assert.Equal(t, 10.0, cfg.RateLimit.RPS)
		assert.Equal(t, 20, cfg.RateLimit.Burst)
	})

	t.Run("missing database settings rejected", func(t *testing.T) {
		path := writeConfig(t, `
[database]
host = "localhost"
`)

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}
