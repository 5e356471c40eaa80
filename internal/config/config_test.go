package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, 3, cfg.Store.Retry.MaxAttempts)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 60, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, 10, cfg.Server.RateLimitBurst)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: scholarpath.db
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins:
    - https://planner.example.edu
cache:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "scholarpath.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://planner.example.edu"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Cache.Enabled)
	// Defaults still apply for unset values
	assert.Equal(t, 60, cfg.Server.RateLimitPerMinute)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SCHOLARPATH_STORE_DRIVER", "postgres")
	t.Setenv("SCHOLARPATH_LOG_LEVEL", "warn")
	t.Setenv("SCHOLARPATH_SERVER_RATE_LIMIT_PER_MINUTE", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 120, cfg.Server.RateLimitPerMinute)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestRetryPolicy(t *testing.T) {
	t.Parallel()

	p := RetryConfig{MaxAttempts: 5, InitialBackoffMs: 50, MaxBackoffMs: 400}.Policy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, p.InitialBackoff)
	assert.Equal(t, 400*time.Millisecond, p.MaxBackoff)

	def := RetryConfig{}.Policy()
	assert.Equal(t, 3, def.MaxAttempts)
}

func validConfig() *Config {
	return &Config{
		Store:  StoreConfig{Driver: "sqlite", DatabaseURL: "file.db"},
		Server: ServerConfig{Port: 8080, RateLimitPerMinute: 60, RateLimitBurst: 10},
		Cache:  CacheConfig{Enabled: true, TTLSecs: 60, MaxEntries: 10},
		Client: ClientConfig{BaseURL: "http://localhost:8080", TimeoutSecs: 5},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mode   string
		mutate func(*Config)
		msg    string
	}{
		{"serve ok", "serve", func(*Config) {}, ""},
		{"store ok", "store", func(*Config) {}, ""},
		{"client ok", "client", func(*Config) {}, ""},
		{"bad driver", "store", func(c *Config) { c.Store.Driver = "mysql" }, `store.driver must be postgres or sqlite, got "mysql"`},
		{"missing url", "serve", func(c *Config) { c.Store.DatabaseURL = "" }, "store.database_url is required"},
		{"bad port", "serve", func(c *Config) { c.Server.Port = 0 }, "server.port must be between 1 and 65535"},
		{"negative rate", "serve", func(c *Config) { c.Server.RateLimitBurst = -1 }, "rate limits"},
		{"cache ttl", "serve", func(c *Config) { c.Cache.TTLSecs = 0 }, "cache.ttl_secs"},
		{"cache disabled ignores ttl", "serve", func(c *Config) { c.Cache = CacheConfig{} }, ""},
		{"client url", "client", func(c *Config) { c.Client.BaseURL = "" }, "client.base_url is required"},
		{"store ignores port", "store", func(c *Config) { c.Server.Port = 0 }, ""},
		{"unknown mode", "bogus", func(*Config) {}, "unknown mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate(tt.mode)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Store.Driver = ""
	cfg.Store.DatabaseURL = ""
	cfg.Server.Port = -1

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
	assert.Contains(t, err.Error(), "store.database_url")
	assert.Contains(t, err.Error(), "server.port")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
