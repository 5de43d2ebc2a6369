package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/didact/internal/config"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/fiber"
	"github.com/vango-dev/didact/pkg/host/idle"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/metrics"
)

const (
	readBufferSize  = 4096
	writeBufferSize = 4096

	tracerName = "didact"

	// DefaultWriteTimeout bounds each frame write.
	DefaultWriteTimeout = 10 * time.Second
)

// App builds the root element of an application.
type App func() *element.Element

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collector shared by every session.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithGatherer sets the registry served on the metrics endpoint.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithTracer sets the tracer for render passes and session events.
// Default: otel.Tracer("didact") from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithCheckOrigin overrides the WebSocket origin check.
// Default: same-origin requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithWriteTimeout sets the deadline applied to each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// Server serves one application over HTTP and WebSocket.
type Server struct {
	config       *config.Config
	app          App
	logger       *slog.Logger
	metrics      *metrics.Collector
	gatherer     prometheus.Gatherer
	tracer       trace.Tracer
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu         sync.Mutex
	sessions   map[string]*Session
	closing    bool
	wg         sync.WaitGroup
	httpServer *http.Server
}

// New creates a server for app. A nil cfg uses config.New().
func New(cfg *config.Config, app App, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Server{
		config:       cfg,
		app:          app,
		logger:       slog.Default(),
		gatherer:     prometheus.DefaultGatherer,
		writeTimeout: DefaultWriteTimeout,
		sessions:     make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/", s.handleSnapshot)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	if s.config.Metrics.Enabled {
		r.Handle(s.config.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Snapshot renders a fresh copy of the application to HTML. Elements carry
// data-node attributes matching the IDs a new session assigns.
func (s *Server) Snapshot() (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	doc := memhost.New(memhost.WithoutLog())
	rec := fiber.New(doc, idle.NewManual(), s.reconcilerOptions()...)
	rec.Render(s.app(), doc.Root())
	rec.Flush()
	return memhost.NewRenderer(memhost.RendererConfig{NodeIDs: true}).RenderToString(doc.Root())
}

func (s *Server) reconcilerOptions(extra ...fiber.Option) []fiber.Option {
	opts := []fiber.Option{
		fiber.WithLogger(s.logger),
		fiber.WithMetrics(s.metrics),
		fiber.WithTracer(s.tracer),
	}
	return append(opts, extra...)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<div id="root" data-ws="/ws">%s</div>
</body>
</html>
`

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := s.Snapshot()
	if err != nil {
		s.logger.Error("snapshot render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	title := s.config.Name
	if title == "" {
		title = "didact"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageTemplate, html.EscapeString(title), body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()
	if closing {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(s, conn)
	if !s.register(sess) {
		conn.Close()
		return
	}
	defer s.unregister(sess)

	sess.Run(context.Background())
}

func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess.ID] = sess
	s.wg.Add(1)
	s.metrics.SessionOpened()
	s.logger.Info("session opened", "session_id", sess.ID, "sessions", len(s.sessions))
	return true
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SessionClosed()
	s.logger.Info("session closed", "session_id", sess.ID, "sessions", n)
	s.wg.Done()
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server. It waits at
// most the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout())
	defer cancel()

	s.mu.Lock()
	s.closing = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions still open at shutdown deadline")
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
