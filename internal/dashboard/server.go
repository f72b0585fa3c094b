// SPDX-License-Identifier: MIT

// Package dashboard serves the server-rendered SMS Manager web UI on top of
// the producers REST backend.
package dashboard

import (
	"errors"
	"math"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/smsmanager/internal/api/middleware"
	"github.com/ManuGH/smsmanager/internal/client"
	"github.com/ManuGH/smsmanager/internal/health"
)

const maxFormBytes = 64 << 10

// Config configures the dashboard server.
type Config struct {
	Stack middleware.StackConfig
	// RefreshRate is the live view interval in seconds used until the user
	// picks one.
	RefreshRate float64
	// WaitForSend makes "Send Messages" return once every pending message
	// was processed.
	WaitForSend bool
}

// Server renders the dashboard pages.
type Server struct {
	queries  *Queries
	health   *health.Manager
	cfg      Config
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	rate     atomic.Uint64
	router   chi.Router
}

// New builds the dashboard and its routes.
func New(queries *Queries, hm *health.Manager, cfg Config, logger zerolog.Logger) (*Server, error) {
	if hm == nil {
		hm = health.NewManager("")
	}
	s := &Server{
		queries: queries,
		health:  hm,
		cfg:     cfg,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.SetDefaultRefreshRate(cfg.RefreshRate)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetDefaultRefreshRate changes the interval used for users without a stored
// preference. Values outside the accepted bounds select DefaultRefreshRate.
func (s *Server) SetDefaultRefreshRate(seconds float64) {
	if _, ok := parseRefreshRate(formatRate(seconds)); !ok {
		seconds = DefaultRefreshRate
	}
	s.rate.Store(math.Float64bits(seconds))
}

// DefaultRefreshRate reports the current fallback interval in seconds.
func (s *Server) DefaultRefreshRate() float64 {
	return math.Float64frombits(s.rate.Load())
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(s.cfg.Stack)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticFiles())))

	r.Get("/", redirectTo("/producers"))
	r.Get("/producers", s.handleList)
	r.Get("/producers/", s.handleList)
	r.Get("/producers/create", s.handleCreateForm)
	r.Post("/producers/create", s.handleCreate)
	r.Route("/producers/{id}", func(r chi.Router) {
		r.Get("/", s.handleShow)
		r.Get("/update", s.handleUpdateForm)
		r.Post("/update", s.handleUpdate)
		r.Post("/actions/{action}", s.handleAction)
		r.Post("/refresh-rate", s.handleRefreshRate)
		r.Get("/live", s.handleLive)
	})

	r.NotFound(redirectTo("/producers"))
	return r
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

// statusOf maps a backend failure to the status of the rendered page.
func statusOf(err error) int {
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}
