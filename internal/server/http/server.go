// Package httpserver exposes the inventory service as a REST API.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/metrics"
	"github.com/musharraf10/MediMate/internal/service"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc     service.MedicineService
	log     *zap.Logger
	metrics *metrics.Metrics
	ping    func(context.Context) error
	origins []string
}

// Option customises a Handler.
type Option func(*Handler)

// WithMetrics instruments every route and serves GET /metrics.
func WithMetrics(m *metrics.Metrics) Option { return func(h *Handler) { h.metrics = m } }

// WithPing makes GET /health probe storage.
func WithPing(ping func(context.Context) error) Option { return func(h *Handler) { h.ping = ping } }

// WithCORSOrigins sets the allowed browser origins ("*" by default).
func WithCORSOrigins(origins ...string) Option { return func(h *Handler) { h.origins = origins } }

// New constructs a Handler.
func New(svc service.MedicineService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, log: log, origins: []string{"*"}}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(h.log))
	r.Use(Recover(h.log))
	if h.metrics != nil {
		r.Use(Instrument(h.metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api/medicines", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/expired", h.expired)
		r.Get("/expiring-soon", h.expiringSoon)
		r.Get("/low-stock", h.lowStock)
		r.Get("/search", h.search)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

// Server owns the listening http.Server.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer prepares a server for addr; it does not listen yet.
func NewServer(addr string, h http.Handler, log *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.Info("http listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
