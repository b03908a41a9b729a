package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
	"github.com/kbukum/errkit/render"
	"github.com/kbukum/errkit/server/endpoint"
	"github.com/kbukum/errkit/server/middleware"
)

// Server is an HTTP server backed by Gin. Every error that reaches it is
// rendered through a single render.Renderer.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger
	renderer   *render.Renderer
	gatherer   prometheus.Gatherer
	metrics    *observability.Metrics
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithRenderer sets the error renderer. Defaults to render.New().
func WithRenderer(r *render.Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithMetrics records OpenTelemetry request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a new Server. The Gin engine is created but no middleware is
// applied yet; call ApplyMiddleware or ApplyDefaults.
func New(cfg Config, log *logger.Logger, opts ...Option) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.ContextWithFallback = true

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.New()
	}

	// CORS and body limits run before Gin so they also cover handlers
	// mounted with Handle.
	var handler http.Handler = middleware.Chain(
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
	)(mux)

	// h2c serves HTTP/2 cleartext on the same port.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           h2c.NewHandler(handler, h2s),
		ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// Name identifies the server as a lifecycle component.
func (s *Server) Name() string { return "http-server" }

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Renderer returns the renderer used for every error response.
func (s *Server) Renderer() *render.Renderer {
	return s.renderer
}

// Handler returns the full handler chain, as served on the listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// ApplyMiddleware applies the standard middleware stack to the Gin engine:
// request id, request logging, tracing, metrics, error rendering, panic
// recovery and rate limiting. Unmatched routes and methods render as
// HTTP_ERROR 404/405.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.RequestLogger(s.log))
	s.engine.Use(middleware.Tracing())
	if s.metrics != nil {
		s.engine.Use(middleware.Metrics(s.metrics))
	}
	s.engine.Use(middleware.ErrorHandler(s.renderer))
	s.engine.Use(middleware.Recovery(s.renderer))
	if s.config.RateLimit.RequestsPerMinute > 0 {
		s.engine.Use(middleware.RateLimit(s.config.RateLimit))
	}

	s.engine.NoRoute(middleware.NoRoute())
	s.engine.NoMethod(middleware.NoMethod())
}

// RegisterDefaultEndpoints registers /health, /info and, when a gatherer is
// configured, /metrics.
func (s *Server) RegisterDefaultEndpoints(serviceName, version string, checkers ...observability.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, version, checkers...))
	s.engine.GET("/info", endpoint.Info(serviceName))
	if s.gatherer != nil {
		s.engine.GET("/metrics", endpoint.Metrics(s.gatherer))
	}
}

// ApplyDefaults applies the standard middleware stack and registers default endpoints.
func (s *Server) ApplyDefaults(serviceName, version string, checkers ...observability.HealthChecker) {
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints(serviceName, version, checkers...)
}
