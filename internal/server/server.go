package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/alfagnish/dummydata/internal/config"
	"github.com/alfagnish/dummydata/internal/generator"
	"github.com/alfagnish/dummydata/internal/handlers"
	"github.com/alfagnish/dummydata/internal/metrics"
	reqid "github.com/alfagnish/dummydata/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests that hit no registered route, keeping the
// metrics label set bounded.
const unmatchedRoute = "unmatched"

// New creates a fully-configured chi router with all route groups,
// middleware, and handlers wired together. m may be nil to disable metrics.
func New(cfg *config.Config, gen *generator.Generator, m *metrics.Metrics, logger *zap.Logger, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{reqid.HeaderRequestID},
		MaxAge:         300,
	}))
	r.Use(reqid.RequestID)
	r.Use(requestLogger(logger, m))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	// ── Handlers ────────────────────────────────────────────
	var counter handlers.RecordCounter
	if m != nil {
		counter = m
	}
	dataH := handlers.NewDummyDataHandler(gen, logger, counter)
	systemH := handlers.NewSystemHandler(version)

	// ── Route groups ────────────────────────────────────────
	r.Route("/api/dummy-data", dataH.Routes)
	r.Route("/api/system", systemH.Routes)

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}

// requestLogger logs each API request with method, path, status code,
// duration and request id, and feeds the request metrics when enabled.
func requestLogger(logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			if m != nil {
				m.ObserveRequest(routePattern(r), r.Method, status, duration)
			}

			// Only log API requests to keep scrapes and probes out of the log.
			if strings.HasPrefix(r.URL.Path, "/api/") {
				logger.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Duration("duration", duration),
					zap.Int("bytes", ww.BytesWritten()),
					zap.String("request_id", reqid.RequestIDFromContext(r.Context())),
				)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
