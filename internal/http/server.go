// Package http exposes the time budget use cases as a JSON REST API.
package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"timebudget/internal/auth"
	"timebudget/internal/cache"
	"timebudget/internal/core"
	applog "timebudget/internal/log"
	"timebudget/internal/metrics"
	"timebudget/internal/middleware/ratelimit"
	"timebudget/internal/middleware/security"
	"timebudget/internal/middleware/trace"
	"timebudget/internal/services"
)

// Pinger reports whether a dependency can serve traffic.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerConfig struct {
	Addr               string
	Auth               auth.Config
	RateLimitPerMinute int
	MetricsEnabled     bool
	CacheSweepInterval time.Duration
}

type Server struct {
	http.Server

	svc    *services.Services
	ready  Pinger
	logger *applog.Logger

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	caches      *cache.Manager
	startedAt   time.Time
}

func NewServer(cfg ServerConfig, svc *services.Services, ready Pinger, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &Server{
		svc:         svc,
		ready:       ready,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		detector:    security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		caches:      cache.NewManager(),
		startedAt:   time.Now(),
	}

	s.caches.Register("categories", svc.Categories.Cache())
	interval := cfg.CacheSweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s.caches.StartCleanup(interval)

	mux := http.NewServeMux()
	s.routes(mux, cfg.MetricsEnabled)

	authn := auth.NewMiddleware(cfg.Auth, isPublic, s.handleAuthError)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	var handler http.Handler = mux
	handler = authn.Wrap(handler)
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, metricsEnabled bool) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, h))
	}

	handle("GET /healthz", s.handleHealth)
	handle("GET /readyz", s.handleReady)
	if metricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	handle("POST /api/auth/register", s.handleRegister)
	handle("POST /api/auth/login", s.handleLogin)
	handle("GET /api/auth/me", s.handleMe)

	handle("GET /api/categories", s.handleListCategories)

	handle("POST /api/time-budget", s.handleCreateBudget)
	handle("GET /api/time-budget/current", s.handleCurrentBudget)
	handle("PATCH /api/time-budget/{id}", s.handleUpdateBudget)

	handle("POST /api/activities", s.handleCreateActivity)
	handle("GET /api/activities", s.handleListActivities)
	handle("PATCH /api/activities/{id}", s.handleUpdateActivity)
	handle("DELETE /api/activities/{id}", s.handleDeleteActivity)

	handle("POST /api/priorities", s.handleCreatePriority)
	handle("GET /api/priorities", s.handleListPriorities)
	handle("POST /api/priorities/reorder", s.handleReorderPriorities)
	handle("PATCH /api/priorities/{id}", s.handleUpdatePriority)
	handle("DELETE /api/priorities/{id}", s.handleDeletePriority)

	handle("POST /api/calendar-blocks", s.handleCreateBlock)
	handle("GET /api/calendar-blocks", s.handleListBlocks)
	handle("PATCH /api/calendar-blocks/{id}", s.handleUpdateBlock)
	handle("DELETE /api/calendar-blocks/{id}", s.handleDeleteBlock)

	handle("POST /api/eliminations", s.handleCreateElimination)
	handle("GET /api/eliminations", s.handleListEliminations)

	handle("GET /api/weekly-reviews/current", s.handleCurrentReview)
	handle("GET /api/weekly-reviews/history", s.handleReviewHistory)
	handle("POST /api/weekly-reviews/{id}/complete", s.handleCompleteReview)

	handle("GET /api/analytics/weekly", s.handleWeeklyAnalytics)
	handle("GET /api/analytics/trends", s.handleTrends)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "NOT_FOUND", "route not found").Write(w)
	})
}

var publicPaths = map[string]bool{
	"/api/auth/register": true,
	"/api/auth/login":    true,
	"/api/categories":    true,
	"/healthz":           true,
	"/readyz":            true,
	"/metrics":           true,
}

// isPublic lets unauthenticated requests through to public routes and to
// anything outside /api, which the mux answers with 404.
func isPublic(r *http.Request) bool {
	return publicPaths[r.URL.Path] || !strings.HasPrefix(r.URL.Path, "/api/")
}

// instrument records request metrics under the route pattern.
func instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &trace.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rw, r)
		metrics.ObserveRequest(pattern, r.Method, rw.Status, time.Since(start))
	})
}

func (s *Server) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Rejected request", applog.FieldError, err)
	rejection := core.ErrInvalidToken
	if errors.Is(err, auth.ErrMissingToken) {
		rejection = core.ErrUnauthorized
	}
	metrics.RecordDomainError(rejection.Code)
	errorFrom(rejection).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later").Write(w)
}

// Shutdown drains in-flight requests, then stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Server.Shutdown(ctx)
	s.rateLimiter.Stop()
	s.caches.Stop()
	return err
}
