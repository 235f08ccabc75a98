package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/crmscan/internal/config"
	"github.com/nao1215/crmscan/internal/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// defaultMaxBodyBytes caps request bodies at 32 MiB. The row limit
	// already rejects huge tables, but only after the whole body has
	// been read; this cap stops the read itself.
	defaultMaxBodyBytes = 32 << 20

	// shutdownTimeout bounds the drain of in-flight requests when the
	// server stops.
	shutdownTimeout = 10 * time.Second

	// readHeaderTimeout bounds how long a client may take to send
	// request headers.
	readHeaderTimeout = 10 * time.Second
)

// Server hosts quality checks over HTTP.
//
// Design decision: The server holds configuration and detector settings
// but no request state. Analyses run entirely within a request's
// lifetime, uploads are parsed in memory and discarded, and reports are
// never retained. This keeps the host horizontally scalable and means a
// crashed request leaks nothing.
type Server struct {
	// addr is the listen address for Start.
	addr string

	// logger for structured logging. Handlers and the pipeline share it.
	logger *slog.Logger

	// version is reported by the health endpoint and stamped into
	// report envelopes.
	version string

	// baseConfig supplies the analysis settings for every request
	// before profile overlays.
	baseConfig *config.Config

	// profiles holds the named profiles selectable with the "profile"
	// query parameter. Nil when no configuration file was loaded.
	profiles *config.File

	// generator produces explanations when a request asks for them.
	// Nil disables the explanation step entirely.
	generator pipeline.ExplanationGenerator

	// registry collects this server's metrics.
	registry *prometheus.Registry

	// metrics are the collectors served under /metrics.
	metrics *serverMetrics

	// maxBodyBytes caps the size of request bodies.
	maxBodyBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address for Start.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version string reported by the health endpoint
// and stamped into report envelopes.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithConfig sets the base analysis configuration applied to every
// request.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.baseConfig = cfg
		}
	}
}

// WithProfiles sets the named profiles selectable per request with the
// "profile" query parameter.
func WithProfiles(profiles *config.File) Option {
	return func(s *Server) {
		s.profiles = profiles
	}
}

// WithExplanationGenerator enables the explanation step for requests
// that ask for it with "explain=true".
func WithExplanationGenerator(generator pipeline.ExplanationGenerator) Option {
	return func(s *Server) {
		s.generator = generator
	}
}

// WithMaxBodyBytes caps the size of request bodies. Non-positive values
// are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// New creates a Server with the given options applied over defaults.
func New(opts ...Option) *Server {
	s := &Server{
		addr:         DefaultAddr,
		logger:       slog.Default(),
		version:      "(devel)",
		baseConfig:   config.NewConfig(),
		registry:     prometheus.NewRegistry(),
		maxBodyBytes: defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.metrics = newServerMetrics(s.registry)
	return s
}

// Router builds the HTTP handler tree. It is exported separately from
// Start so tests can drive the full middleware and routing stack through
// httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/quality-checks", s.handleQualityCheck)
		r.Get("/sample", s.handleSample)
	})

	return r
}

// Start runs the server until ctx is cancelled, then drains in-flight
// requests. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
