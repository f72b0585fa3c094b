// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/rs/zerolog"
)

// ValidationError collects every invalid setting.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d invalid setting(s): %v", len(e.Problems), e.Problems)
}

// Validate checks cfg for values the application cannot start with.
func Validate(cfg Config) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level: unknown level %q", cfg.Log.Level)
	}

	if cfg.API.ListenAddr == "" {
		add("api.listenAddr: required")
	}
	if cfg.API.MaxBodyBytes <= 0 {
		add("api.maxBodyBytes: must be positive")
	}
	if cfg.API.MaxConnections < 0 || cfg.Dashboard.MaxConnections < 0 {
		add("maxConnections: must not be negative")
	}
	if cfg.API.RateLimitPerMinute < 0 || cfg.Dashboard.RateLimitPerMinute < 0 {
		add("rateLimitPerMinute: must not be negative")
	}

	if cfg.Dashboard.ListenAddr == "" {
		add("dashboard.listenAddr: required")
	}
	if u, err := url.Parse(cfg.Dashboard.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("dashboard.backendUrl: must be an absolute URL, got %q", cfg.Dashboard.BackendURL)
	}
	if cfg.Dashboard.BackendTimeout <= 0 {
		add("dashboard.backendTimeout: must be positive")
	}
	if cfg.Dashboard.RefreshRate < 0.5 || cfg.Dashboard.RefreshRate > 3600 {
		add("dashboard.refreshRate: must be between 0.5 and 3600 seconds")
	}
	if cfg.Dashboard.StaleTime < 0 {
		add("dashboard.staleTime: must not be negative")
	}

	if !slices.Contains([]string{"sqlite", "badger", "memory"}, cfg.Store.Backend) {
		add("store.backend: unknown backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend != "memory" && cfg.Store.Path == "" {
		add("store.path: required for %s", cfg.Store.Backend)
	}

	if cfg.Sender.MaxWorkers < 0 {
		add("sender.maxWorkers: must not be negative")
	}
	if cfg.Sender.RatePerSecond < 0 || cfg.Sender.Burst < 0 {
		add("sender.ratePerSecond/burst: must not be negative")
	}
	if cfg.Sender.TimeUnit <= 0 {
		add("sender.timeUnit: must be positive")
	}

	switch cfg.Cache.Backend {
	case "memory", "none":
	case "redis":
		if cfg.Cache.Redis.Addr == "" {
			add("cache.redis.addr: required for redis")
		}
	default:
		add("cache.backend: unknown backend %q", cfg.Cache.Backend)
	}

	switch cfg.Events.Backend {
	case "none", "":
	case "nsq":
		if cfg.Events.NSQAddr == "" {
			add("events.nsqAddr: required for nsq")
		}
	default:
		add("events.backend: unknown backend %q", cfg.Events.Backend)
	}

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Exporter != "grpc" && cfg.Telemetry.Exporter != "http" {
			add("telemetry.exporter: must be grpc or http")
		}
		if cfg.Telemetry.Endpoint == "" {
			add("telemetry.endpoint: required when enabled")
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		add("telemetry.samplingRate: must be between 0 and 1")
	}

	if cfg.ShutdownTimeout <= 0 {
		add("shutdownTimeout: must be positive")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsValidationError reports whether err carries validation problems.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
