package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FLEET_FILTER_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fleet.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, 500, cfg.Seed.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/fleet/fleet.db
cache:
  ttl: 2m
seed:
  csv_paths:
    - a.csv
    - b.csv
log:
  format: json
`), 0o600))

	t.Setenv("FLEET_FILTER_CONFIG_PATH", path)
	t.Setenv("FLEET_FILTER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/fleet/fleet.db", cfg.DBPath)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"a.csv", "b.csv"}, cfg.Seed.CSVPaths)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBPath: "fleet.db",
			Cache:  CacheConfig{TTL: time.Minute, SweepInterval: time.Minute},
			Seed:   SeedConfig{BatchSize: 10},
			Log:    LogConfig{Level: "info", Format: "text"},
		}
	}

	require.NoError(t, validate(valid()))

	cfg := valid()
	cfg.Cache.TTL = 0
	assert.Error(t, validate(cfg))

	cfg = valid()
	cfg.Log.Level = "verbose"
	assert.Error(t, validate(cfg))

	cfg = valid()
	cfg.Log.Format = "xml"
	assert.Error(t, validate(cfg))
}
