package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup at an empty temp tree. Tests using it cannot
// run in parallel because they touch the process environment.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"DATABASE_URL", "PROXY_URL", "LOG_LEVEL",
		"WGS_STORE_DSN", "WGS_STORE_DRIVER", "WGS_STORE_PATH",
		"WGS_SOURCE_PROXY_URL", "WGS_LOG_LEVEL", "WGS_SCHEDULER_INTERVAL",
		"WGS_SCHEDULER_MAX_CONCURRENT", "WGS_HTTP_ADDR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(LoadOptions{HomeDir: home, EnvFile: filepath.Join(home, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, domain.WebsiteWGGesucht, cfg.Website)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.Freshness)
	assert.Equal(t, 10, cfg.Scheduler.MaxConcurrent)
	assert.Equal(t, 50, cfg.Scheduler.HistorySize)
	assert.Equal(t, "https://www.wg-gesucht.de/api/", cfg.Source.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, StoreTOML, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(home, ".config", "wgs", "accounts.toml"), cfg.Store.Path)
	assert.Equal(t, 10*time.Second, cfg.Store.Timeout)
	assert.Equal(t, ":5001", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.File)
}

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", "wgs")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[scheduler]
interval = "30s"
max_concurrent = 3

[store]
driver = "sqlite"
path = "~/data/wgs.db"

[log]
format = "json"
`), 0o600))

	t.Setenv("WGS_SCHEDULER_MAX_CONCURRENT", "7")

	cfg, err := Load(LoadOptions{HomeDir: home, EnvFile: filepath.Join(home, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, 7, cfg.Scheduler.MaxConcurrent)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(home, "data", "wgs.db"), cfg.Store.Path)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.File)
}

func TestLoadLegacyEnvFromDotEnv(t *testing.T) {
	home := isolate(t)

	envFile := filepath.Join(home, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://u:p@localhost:5432/wgs\nPROXY_URL=http://user:pw@proxy.example:\n"), 0o600))

	cfg, err := Load(LoadOptions{HomeDir: home, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/wgs", cfg.Store.DSN)
	assert.Equal(t, "http://user:pw@proxy.example:", cfg.Source.ProxyURL)
}

func TestLoadExplicitMissingConfigFileFails(t *testing.T) {
	home := isolate(t)

	_, err := Load(LoadOptions{HomeDir: home, ConfigFile: filepath.Join(home, "nope.toml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidateCollectsErrors(t *testing.T) {
	t.Parallel()

	err := Config{Store: StoreConfig{Driver: "mysql"}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "website cannot be empty")
	assert.Contains(t, err.Error(), "scheduler.max_concurrent must be > 0")
	assert.Contains(t, err.Error(), `unknown store.driver "mysql"`)

	err = Config{
		Website:   domain.WebsiteWGGesucht,
		Scheduler: SchedulerConfig{Interval: time.Minute, Freshness: time.Minute, MaxConcurrent: 1, HistorySize: 1},
		Source:    SourceConfig{Timeout: time.Second},
		Store:     StoreConfig{Driver: StorePostgres, Timeout: time.Second},
	}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestInferDriver(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StorePostgres, inferDriver(StoreConfig{DSN: "postgres://x"}))
	assert.Equal(t, StoreSQLite, inferDriver(StoreConfig{Path: "/tmp/wgs.sqlite3"}))
	assert.Equal(t, StoreTOML, inferDriver(StoreConfig{Path: "/tmp/accounts.toml"}))
}
