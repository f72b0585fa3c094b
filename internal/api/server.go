// SPDX-License-Identifier: MIT

// Package api serves the producers REST backend.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/smsmanager/internal/api/middleware"
	"github.com/ManuGH/smsmanager/internal/health"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 1 << 20

// ProducerService is the part of producer.Service the handlers use.
type ProducerService interface {
	Create(ctx context.Context, args producer.Args) (producer.Producer, error)
	Update(ctx context.Context, id string, args producer.Args) (producer.Producer, error)
	List(ctx context.Context) ([]producer.Producer, error)
	Get(ctx context.Context, id string) (producer.Producer, error)
	Delete(ctx context.Context, id string) (string, error)
	Generate(ctx context.Context, id string) (int, error)
	Activate(ctx context.Context, id string, wait bool) (string, error)
	Progress(ctx context.Context, id string) (producer.Progress, error)
	Messages(ctx context.Context, id string) ([]producer.Message, error)
}

// Config configures the REST server.
type Config struct {
	Stack        middleware.StackConfig
	MaxBodyBytes int64
}

// Server exposes the producer service over HTTP.
type Server struct {
	svc    ProducerService
	health *health.Manager
	cfg    Config
	router chi.Router
}

// New builds the server and its routes. The embedded contract is validated
// once here.
func New(ctx context.Context, svc ProducerService, hm *health.Manager, cfg Config) (*Server, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if hm == nil {
		hm = health.NewManager("")
	}
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := validateRequests(doc)
	if err != nil {
		return nil, err
	}

	s := &Server{svc: svc, health: hm, cfg: cfg}
	s.router = s.routes(validate)
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(validate func(http.Handler) http.Handler) chi.Router {
	r := middleware.NewRouter(s.cfg.Stack)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openAPISpec)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.limitBody, validate)

		r.Get("/producers", s.handleList)
		r.Get("/producers/", s.handleList)
		r.Post("/producers/create", s.handleCreate)
		r.Get("/producers/{id}", s.handleGet)
		r.Post("/producers/{id}/update", s.handleUpdate)
		r.Post("/producers/{id}/generate", s.handleGenerate)
		r.Post("/producers/{id}/send", s.handleSend)
		r.Get("/producers/{id}/progress", s.handleProgress)
		r.Get("/producers/{id}/messages", s.handleMessages)
		r.Post("/producers/{id}/delete", s.handleDelete)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
