// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/smsmanager/internal/config"
	"github.com/ManuGH/smsmanager/internal/telemetry"
	"github.com/rs/zerolog"
)

// Server names used for logs and Manager.Addr.
const (
	ServerAPI       = "api"
	ServerDashboard = "dashboard"
)

const (
	apiWriteTimeout = 60 * time.Second
	idleTimeout     = 120 * time.Second
)

// APIServer describes the REST backend listener.
func APIServer(cfg config.APIConfig, h http.Handler) Server {
	return Server{
		Name:           ServerAPI,
		Addr:           cfg.ListenAddr,
		Handler:        h,
		MaxConnections: cfg.MaxConnections,
		WriteTimeout:   apiWriteTimeout,
		IdleTimeout:    idleTimeout,
	}
}

// DashboardServer describes the web UI listener. It has no write timeout
// because live views keep their websocket open.
func DashboardServer(cfg config.DashboardConfig, h http.Handler) Server {
	return Server{
		Name:           ServerDashboard,
		Addr:           cfg.ListenAddr,
		Handler:        h,
		MaxConnections: cfg.MaxConnections,
		IdleTimeout:    idleTimeout,
	}
}

// InitTelemetry initializes OpenTelemetry tracing. A disabled configuration
// installs a no-op provider.
func InitTelemetry(ctx context.Context, cfg config.TelemetryConfig, service, version string, logger zerolog.Logger) (*telemetry.Provider, error) {
	telCfg := telemetry.Config{
		Enabled:        cfg.Enabled,
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		ExporterType:   cfg.Exporter,
		Endpoint:       cfg.Endpoint,
		SamplingRate:   cfg.SamplingRate,
	}

	provider, err := telemetry.NewProvider(ctx, telCfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}
	if cfg.Enabled {
		logger.Info().
			Str("service", service).
			Str("endpoint", cfg.Endpoint).
			Float64("sampling_rate", cfg.SamplingRate).
			Msg("Telemetry initialized")
	}
	return provider, nil
}

// WaitForShutdown returns a context cancelled on interrupt/termination signals.
func WaitForShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
