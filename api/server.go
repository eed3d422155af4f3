// Package api serves a todo Manager over a JSON REST API and provides a
// matching client.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amonks/glasstodo/todo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	// Manager performs every todo operation. Required.
	Manager *todo.Manager

	// AllowedOrigins lists the CORS origins allowed to call the API.
	// Empty allows any origin.
	AllowedOrigins []string

	// Logger receives request and lifecycle logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// Registry receives the server's metrics. Defaults to a new registry.
	Registry *prometheus.Registry

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Server handles REST requests for a todo collection.
type Server struct {
	manager        *todo.Manager
	allowedOrigins []string
	logger         *zap.Logger
	registry       *prometheus.Registry
	metrics        *metrics
	now            func() time.Time
}

// NewServer creates a server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		manager:        opts.Manager,
		allowedOrigins: opts.AllowedOrigins,
		logger:         logger,
		registry:       registry,
		now:            now,
	}
	m, err := newMetrics(registry, s.countTodos)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	s.metrics = m
	return s, nil
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.metrics.instrument)
	r.Use(s.recoverHandler)
	r.Use(cors.Handler(s.corsOptions()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Envelope[any]{Message: endpointNotFoundMessage})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Envelope[any]{Message: fmt.Sprintf("Method %s not allowed", r.Method)})
	})

	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Delete("/", s.handleClearCompleted)
		r.Get("/stats", s.handleStats)
		r.Post("/bulk", s.handleBulk)
		r.Post("/toggle-all", s.handleToggleAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleUpdate)
			r.Patch("/", s.handleUpdate)
			r.Delete("/", s.handleDelete)
			r.Patch("/toggle", s.handleToggle)
			r.Post("/move", s.handleMove)
		})
	})

	return r
}

func (s *Server) corsOptions() cors.Options {
	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}

// Serve runs the server on addr until an interrupt or termination signal.
func (s *Server) Serve(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ServeContext(ctx, addr)
}

// ServeContext runs the server on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logger.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

func (s *Server) countTodos() (int, error) {
	return s.manager.Count()
}
