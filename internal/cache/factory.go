// SPDX-License-Identifier: MIT

package cache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend         string // "memory" (default), "redis" or "none"
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// Open builds the configured cache.
func Open(opts Options, logger zerolog.Logger) (Cache, error) {
	switch opts.Backend {
	case "", "memory":
		interval := opts.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		return NewMemoryCache(interval), nil
	case "redis":
		rc, err := NewRedisCache(opts.Redis, logger)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "none":
		return NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
