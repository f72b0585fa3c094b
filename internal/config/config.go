// SPDX-License-Identifier: MIT

// Package config loads smsmanager settings: defaults, then a strict YAML
// file, then SMS_* environment overrides.
package config

import (
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SMS_"

// Config is the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	API       APIConfig       `yaml:"api" envPrefix:"API_"`
	Dashboard DashboardConfig `yaml:"dashboard" envPrefix:"DASHBOARD_"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Sender    SenderConfig    `yaml:"sender" envPrefix:"SENDER_"`
	Cache     CacheConfig     `yaml:"cache" envPrefix:"CACHE_"`
	Events    EventsConfig    `yaml:"events" envPrefix:"EVENTS_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`

	// ShutdownTimeout bounds graceful shutdown of servers and senders.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// LogConfig controls the global logger. Level is hot-reloadable.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// APIConfig configures the REST backend.
type APIConfig struct {
	ListenAddr         string   `yaml:"listenAddr" env:"LISTEN_ADDR"`
	MaxBodyBytes       int64    `yaml:"maxBodyBytes" env:"MAX_BODY_BYTES"`
	MaxConnections     int      `yaml:"maxConnections" env:"MAX_CONNECTIONS"`
	RateLimitPerMinute int      `yaml:"rateLimitPerMinute" env:"RATE_LIMIT_PER_MINUTE"`
	AllowedOrigins     []string `yaml:"allowedOrigins" env:"ALLOWED_ORIGINS"`
}

// DashboardConfig configures the web UI. RefreshRate is hot-reloadable.
type DashboardConfig struct {
	ListenAddr         string        `yaml:"listenAddr" env:"LISTEN_ADDR"`
	BackendURL         string        `yaml:"backendUrl" env:"BACKEND_URL"`
	BackendTimeout     time.Duration `yaml:"backendTimeout" env:"BACKEND_TIMEOUT"`
	RefreshRate        float64       `yaml:"refreshRate" env:"REFRESH_RATE"`
	StaleTime          time.Duration `yaml:"staleTime" env:"STALE_TIME"`
	WaitForSend        bool          `yaml:"waitForSend" env:"WAIT_FOR_SEND"`
	MaxConnections     int           `yaml:"maxConnections" env:"MAX_CONNECTIONS"`
	RateLimitPerMinute int           `yaml:"rateLimitPerMinute" env:"RATE_LIMIT_PER_MINUTE"`
}

// StoreConfig selects the producer store.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Path    string `yaml:"path" env:"PATH"`
}

// SenderConfig tunes the worker pool.
type SenderConfig struct {
	MaxWorkers    int           `yaml:"maxWorkers" env:"MAX_WORKERS"`
	RatePerSecond float64       `yaml:"ratePerSecond" env:"RATE_PER_SECOND"`
	Burst         int           `yaml:"burst" env:"BURST"`
	TimeUnit      time.Duration `yaml:"timeUnit" env:"TIME_UNIT"`
	Seed          uint64        `yaml:"seed" env:"SEED"`
}

// CacheConfig selects the dashboard query cache.
type CacheConfig struct {
	Backend         string        `yaml:"backend" env:"BACKEND"`
	CleanupInterval time.Duration `yaml:"cleanupInterval" env:"CLEANUP_INTERVAL"`
	Redis           RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig is used when Cache.Backend is "redis".
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"ADDR"`
	Password  string `yaml:"password" env:"PASSWORD"`
	DB        int    `yaml:"db" env:"DB"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// EventsConfig selects the lifecycle event publisher.
type EventsConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	NSQAddr string `yaml:"nsqAddr" env:"NSQ_ADDR"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	Exporter     string  `yaml:"exporter" env:"EXPORTER"`
	Endpoint     string  `yaml:"endpoint" env:"ENDPOINT"`
	SamplingRate float64 `yaml:"samplingRate" env:"SAMPLING_RATE"`
	Environment  string  `yaml:"environment" env:"ENVIRONMENT"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		API: APIConfig{
			ListenAddr:         ":8000",
			MaxBodyBytes:       1 << 20,
			MaxConnections:     512,
			RateLimitPerMinute: 600,
			AllowedOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Dashboard: DashboardConfig{
			ListenAddr:         ":3000",
			BackendURL:         "http://localhost:8000",
			BackendTimeout:     30 * time.Second,
			RefreshRate:        5,
			StaleTime:          5 * time.Second,
			WaitForSend:        false,
			MaxConnections:     512,
			RateLimitPerMinute: 600,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "data/smsmanager.db",
		},
		Sender: SenderConfig{
			TimeUnit: time.Second,
		},
		Cache: CacheConfig{
			Backend:         "memory",
			CleanupInterval: time.Minute,
			Redis:           RedisConfig{Addr: "localhost:6379", Namespace: "smsmanager:"},
		},
		Events: EventsConfig{Backend: "none"},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "development",
		},
		ShutdownTimeout: 15 * time.Second,
	}
}
