// Package http provides the reqlog HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/internal/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/invocation"
	"github.com/fyrsmithlabs/reqlog/pkg/redact"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

const (
	instrumentationName = "github.com/fyrsmithlabs/reqlog/internal/http"
	maxIndent           = 8
)

// Server provides HTTP endpoints for redaction and emission.
type Server struct {
	echo     *echo.Echo
	emitter  *reqlog.Logger
	logger   *logging.Logger
	tracer   trace.Tracer
	meter    metric.MeterProvider
	gatherer prometheus.Gatherer
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

// Option configures a Server.
type Option func(*Server)

// WithTracerProvider sets the provider request spans come from. The
// default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider sets the provider for HTTP metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) { s.meter = mp }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a new HTTP server.
func NewServer(emitter *reqlog.Logger, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if emitter == nil {
		return nil, fmt.Errorf("emitter cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:            "127.0.0.1",
			Port:            9090,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 10 * time.Second,
			MetricsEnabled:  true,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		emitter:  emitter,
		logger:   logger.Named("http"),
		tracer:   otel.GetTracerProvider().Tracer(instrumentationName),
		meter:    otel.GetMeterProvider(),
		gatherer: prometheus.DefaultGatherer,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.MaxBodyBytes > 0 {
		e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxBodyBytes, 10) + "B"))
	}
	e.Use(s.traceMiddleware)
	e.Use(s.logMiddleware)
	e.Use(NewHTTPMetrics(s.meter, s.logger.Underlying()).MetricsMiddleware())

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	if s.config.MetricsEnabled {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")
	v1.POST("/redact", s.handleRedact)
	v1.POST("/log", s.handleLog)
}

// traceMiddleware starts a server span per request and carries the request
// ID into the request context for diagnostics correlation.
func (s *Server) traceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		route := normalizePath(c.Path())
		ctx, span := s.tracer.Start(req.Context(), req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ctx = logging.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))
		c.SetRequest(req.WithContext(ctx))

		err := next(c)

		status := responseStatus(c, err)
		span.SetAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		if err != nil {
			span.RecordError(err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}

func (s *Server) logMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		s.logger.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", responseStatus(c, err)),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// responseStatus is the status echo will write: handler errors are
// rendered after the middleware chain returns.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Debug: s.emitter.DebugEnabled()})
}

// handleRedact returns the redacted, token-truncated form of the JSON body.
// The indent query parameter selects pretty printing.
func (s *Server) handleRedact(c echo.Context) error {
	indent, err := parseIndent(c.QueryParam("indent"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	value, err := readJSON(c)
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8,
		[]byte(s.emitter.Redactor().SerializeTruncated(value, indent)))
}

// handleLog emits one message under a fresh invocation scoped to the
// request.
func (s *Server) handleLog(c echo.Context) error {
	var req LogRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid log request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var message any
	if len(req.Message) > 0 {
		parsed, err := redact.Parse(req.Message)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "message must be JSON")
		}
		message = parsed
	}
	if err := reqlog.Validate(message); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inv := s.emitter.NewInvocation(req.Metadata)
	for _, label := range req.Track {
		_ = inv.TrackPoint(label)
	}

	ctx := invocation.WithContext(c.Request().Context(), inv)
	s.emitter.LogContext(ctx, message)
	s.logger.Debug(ctx, "payload emitted")

	return c.JSON(http.StatusAccepted, LogResponse{InvocationID: inv.ID})
}

func readJSON(c echo.Context) (any, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	value, err := redact.Parse(body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request body must be JSON")
	}
	return value, nil
}

func parseIndent(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxIndent {
		return 0, fmt.Errorf("indent must be an integer between 0 and %d", maxIndent)
	}
	return n, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
