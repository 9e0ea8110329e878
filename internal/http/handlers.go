package http

import (
	"context"
	"net/http"
	"time"

	"timebudget/internal/auth"
	"timebudget/internal/core"
	applog "timebudget/internal/log"
	"timebudget/internal/metrics"
)

// fail writes err as an error envelope. Domain errors are logged at debug,
// anything else at error level with the operation that failed.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	if de, ok := core.AsError(err); ok && de.Kind != core.KindInternal {
		metrics.RecordDomainError(de.Code)
		logger.DebugContext(ctx, "Request rejected",
			applog.FieldOperation, op,
			applog.FieldErrorCode, de.Code,
			applog.FieldError, de.Message)
	} else {
		metrics.RecordDomainError(core.CodeInternal)
		logger.LogError(ctx, "Request failed", err, op, applog.ErrorTypeInternal)
	}
	errorFrom(err).Write(w)
}

// userID returns the authenticated user, writing a 401 when there is none.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		errorFrom(core.ErrUnauthorized).Write(w)
		return "", false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status := http.StatusOK
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			checks["store"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		NewJSONResponse().Status(status).
			Error("NOT_READY", "dependencies are unavailable").
			Write(w)
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "checks", checks)
		return
	}
	OK(map[string]any{"status": "ready", "checks": checks}).Write(w)
}
