package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Expand())
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.False(t, filepath.IsAbs(DefaultStorePath(DriverBadger)))
}

func TestLoad_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".filamentcolors", "catalog"), cfg.Store.Path)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "filamentcolors.toml", `
[service]
origin = "https://example.com"

[store]
driver = "sqlite"
path = "/tmp/fc.sqlite3"

[sync]
max_retries = 5
retry_delay = "2s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Service.Origin)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/fc.sqlite3", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Sync.RetryDelay)
	assert.Equal(t, Default().Sync.PoolSize, cfg.Sync.PoolSize, "unset keys keep defaults")
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "filamentcolors.yaml", `
store:
  path: /var/lib/fc
sync:
  pool_size: 8
  timeout: 5s
server:
  addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/fc", cfg.Store.Path)
	assert.Equal(t, 8, cfg.Sync.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_DotEnvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "filamentcolors.yaml", "store:\n  path: /from/file\n")
	writeFile(t, dir, ".env", "FILAMENTCOLORS_STORE_PATH=/from/dotenv\nFILAMENTCOLORS_SYNC_POOL_SIZE=2\n")

	// Unset after the test; godotenv sets process variables.
	t.Setenv("FILAMENTCOLORS_STORE_PATH", "")
	os.Unsetenv("FILAMENTCOLORS_STORE_PATH")
	t.Setenv("FILAMENTCOLORS_SYNC_POOL_SIZE", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", cfg.Store.Path)
	assert.Equal(t, 6, cfg.Sync.PoolSize, "real environment wins over .env")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "config.ini", "x=1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, dir, "bad.toml", "[store\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "driver.toml", "[store]\ndriver = \"postgres\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Driver")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FILAMENTCOLORS_ORIGIN":           "http://localhost:8000",
		"FILAMENTCOLORS_SYNC_RETRY_DELAY": "250ms",
		"FILAMENTCOLORS_SYNC_MAX_RETRIES": "7",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "http://localhost:8000", cfg.Service.Origin)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.RetryDelay)
	assert.Equal(t, 7, cfg.Sync.MaxRetries)

	env["FILAMENTCOLORS_SYNC_POOL_SIZE"] = "many"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"origin", func(c *Config) { c.Service.Origin = "not a url" }, "Origin"},
		{"driver", func(c *Config) { c.Store.Driver = "bolt" }, "Driver"},
		{"path", func(c *Config) { c.Store.Path = "" }, "Path"},
		{"retries", func(c *Config) { c.Sync.MaxRetries = 0 }, "MaxRetries"},
		{"pool", func(c *Config) { c.Sync.PoolSize = 0 }, "PoolSize"},
		{"addr", func(c *Config) { c.Server.Addr = "nope" }, "Addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
