// Package server provides the HTTP server for the discovery read model
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alchemorsel/discovery/internal/infrastructure/config"
	"github.com/alchemorsel/discovery/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/discovery/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/discovery/internal/infrastructure/monitoring"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *chi.Mux
	server   *http.Server
	handlers *handlers.DiscoveryHandlers
	metrics  *monitoring.MetricsCollector
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	discoveryHandlers *handlers.DiscoveryHandlers,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger.Named("http-server"),
		handlers: discoveryHandlers,
		metrics:  metrics,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           otelhttp.NewHandler(s.router, "discovery-http"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	r.Use(middleware.JSONOnly())
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Use(s.metrics.HTTPMiddleware)
		r.Handle(s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.config.Server.WriteTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.config.Server.WriteTimeout))
		}
		s.handlers.Routes(r)
	})

	return r
}

// Handler returns the routed handler without the listener
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
