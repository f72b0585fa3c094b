// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"
)

const defaultShutdownTimeout = 15 * time.Second

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Manager manages the daemon lifecycle: starting servers, handling shutdown.
type Manager interface {
	// Start binds every server and blocks until ctx is done or a server fails.
	Start(ctx context.Context) error

	// Shutdown drains all servers, then runs the shutdown hooks.
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown
	RegisterShutdownHook(name string, hook ShutdownHook)

	// Ready is closed once every listener is bound.
	Ready() <-chan struct{}

	// Addr returns the bound address of the named server, or "" before Ready.
	Addr(name string) string
}

type manager struct {
	deps Deps

	servers  []*runningServer
	addrs    map[string]string
	ready    chan struct{}
	hooks    []namedHook
	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

type runningServer struct {
	name string
	srv  *http.Server
	ln   net.Listener
}

// namedHook represents a shutdown hook with a name for logging
type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a new daemon manager with the given dependencies.
func NewManager(deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if deps.ShutdownTimeout <= 0 {
		deps.ShutdownTimeout = defaultShutdownTimeout
	}
	return &manager{
		deps:   deps,
		addrs:  make(map[string]string, len(deps.Servers)),
		ready:  make(chan struct{}),
		logger: deps.Logger.With().Str("component", "manager").Logger(),
	}, nil
}

func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	servers := make([]*runningServer, 0, len(m.deps.Servers))
	for _, def := range m.deps.Servers {
		rs, err := m.listen(def)
		if err != nil {
			for _, s := range servers {
				_ = s.ln.Close()
			}
			return fmt.Errorf("%s server: %w", def.Name, err)
		}
		servers = append(servers, rs)
	}

	m.mu.Lock()
	m.servers = servers
	for _, s := range servers {
		m.addrs[s.name] = s.ln.Addr().String()
	}
	m.mu.Unlock()
	close(m.ready)

	errChan := make(chan error, len(servers))
	for _, s := range servers {
		go m.serve(s, errChan)
	}

	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Msg("Server error, initiating shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.deps.ShutdownTimeout)
		defer cancel()
		if shutdownErr := m.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("server error and shutdown failure: %w", errors.Join(err, shutdownErr))
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Msg("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.deps.ShutdownTimeout)
		defer cancel()
		return m.Shutdown(shutdownCtx)
	}
}

func (m *manager) listen(def Server) (*runningServer, error) {
	ln, err := net.Listen("tcp", def.Addr)
	if err != nil {
		return nil, err
	}
	if def.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, def.MaxConnections)
	}
	readHeader := def.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = 10 * time.Second
	}
	return &runningServer{
		name: def.Name,
		ln:   ln,
		srv: &http.Server{
			Handler:           def.Handler,
			ReadHeaderTimeout: readHeader,
			WriteTimeout:      def.WriteTimeout,
			IdleTimeout:       def.IdleTimeout,
		},
	}, nil
}

func (m *manager) serve(s *runningServer, errChan chan<- error) {
	m.logger.Info().
		Str("server", s.name).
		Str("addr", s.ln.Addr().String()).
		Msg("server listening")

	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		m.logger.Error().
			Err(err).
			Str("server", s.name).
			Str("event", "server.failed").
			Msg("server failed")
		errChan <- fmt.Errorf("%s server: %w", s.name, err)
	}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	servers := m.servers
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	m.logger.Info().Msg("Shutting down daemon manager")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.deps.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range servers {
		m.logger.Debug().Str("server", s.name).Msg("Shutting down server")
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", s.name, err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		hookStart := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", hook.name).
				Dur("duration", time.Since(hookStart)).
				Msg("Shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
			continue
		}
		m.logger.Debug().
			Str("hook", hook.name).
			Dur("duration", time.Since(hookStart)).
			Msg("Shutdown hook completed")
	}

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("Shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Msg("Daemon manager stopped cleanly")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
	m.logger.Debug().Str("hook", name).Msg("Registered shutdown hook")
}

func (m *manager) Ready() <-chan struct{} { return m.ready }

func (m *manager) Addr(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addrs[name]
}
