package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/catalog"
	"github.com/vango-dev/formtabs/pkg/middleware"
)

// Server is the HTTP/WebSocket server of a form catalog.
type Server struct {
	catalog *catalog.Catalog
	config  *Config
	router  chi.Router
	metrics *middleware.Metrics

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server

	// Logger
	logger *slog.Logger
}

// New creates a new Server for cat. A nil config uses DefaultConfig.
func New(cat *catalog.Catalog, config *Config) *Server {
	config = config.withDefaults()

	s := &Server{
		catalog: cat,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default().With("component", "server"),
	}
	if config.Metrics {
		s.metrics = middleware.NewMetrics(
			middleware.WithNamespace(config.MetricsNamespace),
			middleware.WithRegistry(config.Registry),
		)
	}
	s.router = s.routes()
	return s
}

// routes builds the chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	if s.config.Tracing {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerName(s.config.TracerName),
			middleware.WithTracerProvider(s.config.TracerProvider),
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != "/metrics"
			}),
		))
	}
	if s.metrics != nil {
		r.Use(s.metrics.Handler)
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.Newf(errors.CategoryLookup, "no route for %s %s", r.Method, r.URL.Path))
	})

	r.Route("/forms", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{form}", func(r chi.Router) {
			r.Get("/", s.handleForm)
			r.Post("/reload", s.handleReload)
			r.Get("/watch", s.handleWatch)
			r.Delete("/fields/{field}", s.handleRemoveField)
			r.Get("/{section}", s.handleSection)
			r.Get("/{section}/view", s.handleView)
		})
	})
	return r
}

// logRequests logs every request at debug level and failures at warn.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is done, an interrupt
// arrives, or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Error channel for ListenAndServe
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E120").Wrap(err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every watch stream and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Ending subscriptions lets the watch handlers return.
	s.catalog.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger.With("component", "server")
}
