package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileIsMissing(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "config.yml")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, StorageMemory, cfg.Storage.Backend)
	require.Equal(t, "lockedRoll", cfg.Session.CookieName)
	require.Len(t, cfg.Files, 3)
	require.Equal(t, 30*time.Second, cfg.HandlerConfig.AdminRefresh)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/assignfetch.yml", []byte(`
listen: "127.0.0.1:9000"
log_level: debug
log_format: json
handler:
  header: X-Accel-Redirect
  admin_refresh: 10s
storage:
  backend: sqlite
  sqlite_path: /var/lib/assignfetch/ledger.db
prober:
  workers: 2
  timeout: 1s
files:
  - id: A
    name: One.pdf
    url: https://files.example.org/1.pdf
  - id: B
    name: Two.pdf
    url: https://files.example.org/2.pdf
  - id: C
    name: Three.pdf
    url: https://files.example.org/3.pdf
`), 0644))

	cfg, err := Load(fs, "/etc/assignfetch.yml")
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", cfg.Listen)
	require.Equal(t, LogLevelDebug, cfg.LogLevel)
	require.Equal(t, LogFormatJSON, cfg.LogFormat)
	require.Equal(t, RedirectHeader, cfg.HandlerConfig.RedirectHeader)
	require.Equal(t, 10*time.Second, cfg.HandlerConfig.AdminRefresh)
	require.Equal(t, StorageSQLite, cfg.Storage.Backend)
	require.Equal(t, "/var/lib/assignfetch/ledger.db", cfg.Storage.SQLitePath)
	require.Equal(t, 2, cfg.Prober.Workers)
	require.Equal(t, time.Second, cfg.Prober.Timeout)
	require.Equal(t, "Two.pdf", cfg.Files[1].Name)
	// Untouched sections keep defaults.
	require.Equal(t, "lockedRoll", cfg.Session.CookieName)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ASSIGNFETCH_LISTEN", ":7070")
	t.Setenv("ASSIGNFETCH_STORAGE", "redis")
	t.Setenv("ASSIGNFETCH_REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.Listen)
	require.Equal(t, StorageRedis, cfg.Storage.Backend)
	require.Equal(t, "redis://cache:6379/1", cfg.Storage.RedisURL)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "listen: [\n"},
		{name: "log level", content: "log_level: verbose\n"},
		{name: "log format", content: "log_format: xml\n"},
		{name: "backend", content: "storage:\n  backend: postgres\n"},
		{name: "workers", content: "prober:\n  workers: 0\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "c.yml", []byte(tc.content), 0644))

			_, err := Load(fs, "c.yml")
			require.Error(t, err)
		})
	}
}
