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
	t.Setenv("CHECKLIST_CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/login", cfg.Session.LoginPath)
	assert.Equal(t, StoreFile, cfg.Settings.Store)
	assert.Equal(t, VehiclesStatic, cfg.VehicleSource)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
session:
  ttl: 30m
upstream:
  base_url: https://fleet.example.com/api
settings:
  store: memory
`), 0o600))

	t.Setenv("CHECKLIST_CONFIG", path)
	t.Setenv("CHECKLIST_ADDR", ":7070")
	t.Setenv("HYDRATION_WAIT", "500ms")
	t.Setenv("UPSTREAM_RETRY_COUNT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr, "env overrides file")
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.HydrationWait)
	assert.Equal(t, "https://fleet.example.com/api", cfg.Upstream.BaseURL)
	assert.Equal(t, StoreMemory, cfg.Settings.Store)
	assert.Equal(t, 2, cfg.Upstream.RetryCount, "bad values keep the default")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Settings.Store = StoreRedis
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.VehicleSource = "csv"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Settings.Store = StoreSQLite
	assert.NoError(t, cfg.Validate())
}

func TestSQLitePathFromEnv(t *testing.T) {
	t.Setenv("CHECKLIST_CONFIG", "")
	t.Setenv("SETTINGS_STORE", StoreSQLite)
	t.Setenv("SETTINGS_SQLITE_PATH", "/var/lib/checklist/settings.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Settings.Store)
	assert.Equal(t, "/var/lib/checklist/settings.db", cfg.Settings.SQLitePath)
}
