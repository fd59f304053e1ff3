// Package server exposes the optimizer and share links over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/share"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Server serves the HTTP API.
type Server struct {
	catalog  engine.Catalog
	store    share.Store
	settings model.Settings
	baseURL  string
	logger   *slog.Logger
	tracer   trace.Tracer
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithSettings sets the settings requests start from.
func WithSettings(s model.Settings) Option {
	return func(srv *Server) { srv.settings = s.WithDefaults() }
}

// WithBaseURL sets the public URL share links are built on.
func WithBaseURL(u string) Option {
	return func(srv *Server) { srv.baseURL = u }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(srv *Server) {
		if t != nil {
			srv.tracer = t
		}
	}
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(srv *Server) { srv.version = v }
}

// New returns a Server that optimizes against catalog and shares through store.
func New(catalog engine.Catalog, store share.Store, opts ...Option) *Server {
	srv := &Server{
		catalog:  catalog,
		store:    store,
		settings: model.DefaultSettings(),
		baseURL:  "http://localhost:8080",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("panelcut/server"),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.trace(), s.accessLog())

	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api")
	api.POST("/optimize", s.handleOptimize)
	api.POST("/share", s.handleShareCreate)
	api.GET("/share/:id", s.handleShareGet)
	api.GET("/share/:id/qr", s.handleShareQR)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// trace opens one span per request, named after the matched route.
func (s *Server) trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := s.tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.route", route)))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		for _, err := range c.Errors {
			span.RecordError(err.Err)
		}
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}
