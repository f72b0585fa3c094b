// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader("").WithEnviron(map[string]string{}).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 5.0, cfg.Dashboard.RefreshRate)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.StaleTime)
	assert.False(t, cfg.Dashboard.WaitForSend, "send runs in the background by default")
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
log:
  level: debug
api:
  listenAddr: ":9000"
dashboard:
  refreshRate: 2
  staleTime: 1s
store:
  backend: badger
  path: /var/lib/sms/badger
cache:
  backend: redis
  redis:
    addr: redis:6379
`)
	cfg, err := NewLoader(path).WithEnviron(map[string]string{
		"SMS_API_LISTEN_ADDR":           ":9100",
		"SMS_SENDER_MAX_WORKERS":        "4",
		"SMS_API_ALLOWED_ORIGINS":       "http://a.test,http://b.test",
		"SMS_CACHE_REDIS_NAMESPACE":     "test:",
		"SMS_DASHBOARD_WAIT_FOR_SEND":   "true",
		"SMS_DASHBOARD_BACKEND_TIMEOUT": "45s",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.API.ListenAddr, "environment wins over the file")
	assert.Equal(t, 2.0, cfg.Dashboard.RefreshRate)
	assert.Equal(t, time.Second, cfg.Dashboard.StaleTime)
	assert.Equal(t, StoreConfig{Backend: "badger", Path: "/var/lib/sms/badger"}, cfg.Store)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "test:", cfg.Cache.Redis.Namespace)
	assert.Equal(t, 4, cfg.Sender.MaxWorkers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
	assert.True(t, cfg.Dashboard.WaitForSend)
	assert.Equal(t, 45*time.Second, cfg.Dashboard.BackendTimeout)
	assert.Equal(t, ":3000", cfg.Dashboard.ListenAddr, "untouched keys keep defaults")
}

func TestLoad_StrictFile(t *testing.T) {
	tests := []struct {
		name string
		body string
		ext  string
	}{
		{name: "unknown key", body: "dashboard:\n  refreshRates: 3\n"},
		{name: "multiple documents", body: "log:\n  level: info\n---\nlog:\n  level: debug\n"},
		{name: "wrong type", body: "api:\n  maxBodyBytes: lots\n"},
		{name: "not yaml", body: "{}", ext: ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.body)
			if tt.ext != "" {
				renamed := filepath.Join(dir, "config"+tt.ext)
				require.NoError(t, os.Rename(path, renamed))
				path = renamed
			}
			_, err := NewLoader(path).WithEnviron(map[string]string{}).Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := NewLoader(path).WithEnviron(map[string]string{}).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"api listen", func(c *Config) { c.API.ListenAddr = "" }},
		{"body size", func(c *Config) { c.API.MaxBodyBytes = 0 }},
		{"backend url", func(c *Config) { c.Dashboard.BackendURL = "localhost" }},
		{"refresh rate", func(c *Config) { c.Dashboard.RefreshRate = 0 }},
		{"store backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"store path", func(c *Config) { c.Store.Path = "" }},
		{"workers", func(c *Config) { c.Sender.MaxWorkers = -1 }},
		{"time unit", func(c *Config) { c.Sender.TimeUnit = 0 }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.Redis.Addr = "" }},
		{"nsq addr", func(c *Config) { c.Events.Backend = "nsq" }},
		{"exporter", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Exporter = "zipkin" }},
		{"sampling", func(c *Config) { c.Telemetry.SamplingRate = 2 }},
		{"shutdown", func(c *Config) { c.ShutdownTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}

	memory := Defaults()
	memory.Store = StoreConfig{Backend: "memory"}
	assert.NoError(t, Validate(memory))
}

func TestHolder_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dashboard:\n  refreshRate: 2\n")
	loader := NewLoader(path).WithEnviron(map[string]string{})
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader)
	updates := make(chan Config, 1)
	h.RegisterListener(updates)

	writeConfig(t, dir, "dashboard:\n  refreshRate: 9\nlog:\n  level: warn\n")
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, 9.0, h.Get().Dashboard.RefreshRate)
	got := <-updates
	assert.Equal(t, "warn", got.Log.Level)

	writeConfig(t, dir, "dashboard:\n  refreshRate: -1\n")
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, 9.0, h.Get().Dashboard.RefreshRate, "failed reload keeps the previous config")
}

func TestHolder_WatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dashboard:\n  refreshRate: 2\n")
	loader := NewLoader(path).WithEnviron(map[string]string{})
	initial, err := loader.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHolder(initial, loader)
	require.NoError(t, h.StartWatcher(ctx))
	defer h.Stop()

	writeConfig(t, dir, "dashboard:\n  refreshRate: 7\n")
	require.Eventually(t, func() bool {
		return h.Get().Dashboard.RefreshRate == 7
	}, 5*time.Second, 50*time.Millisecond)
}

func TestHolder_WatcherWithoutFile(t *testing.T) {
	h := NewHolder(Defaults(), NewLoader(""))
	assert.NoError(t, h.StartWatcher(context.Background()))
	h.Stop()
}
