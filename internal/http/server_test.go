package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebudget/internal/auth"
	"timebudget/internal/core"
	applog "timebudget/internal/log"
	"timebudget/internal/services"
	"timebudget/internal/storage/memory"
)

var testAuth = auth.Config{Secret: "0123456789abcdef0123456789abcdef", Issuer: "timebudget-test", ExpiresIn: time.Hour}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type testServer struct {
	t   *testing.T
	srv *Server
}

func newTestServer(t *testing.T, cfg ServerConfig, ready Pinger) *testServer {
	t.Helper()
	svc := services.New(services.Deps{
		Store:  memory.New().Ports(),
		Hasher: auth.NewBcrypt(4),
		Tokens: auth.NewTokens(testAuth),
	})
	_, err := svc.Categories.SeedDefaults(context.Background())
	require.NoError(t, err)

	cfg.Auth = testAuth
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 10000
	}
	logger := applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
	srv := NewServer(cfg, svc, ready, logger)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{t: t, srv: srv}
}

func (ts *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Code != http.StatusNoContent && rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func (ts *testServer) register(email string) string {
	ts.t.Helper()
	rec, resp := ts.do("POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "supersecret", "name": "Tester",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out authDTO
	require.NoError(ts.t, json.Unmarshal(resp.Data, &out))
	require.NotEmpty(ts.t, out.Token)
	return out.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("ana@example.com")

	rec, resp := ts.do("POST", "/api/auth/register", "", map[string]string{
		"email": "ana@example.com", "password": "supersecret", "name": "Ana",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, core.CodeEmailExists, resp.Error.Code)

	rec, resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, core.CodeInvalidCredentials, resp.Error.Code)

	rec, resp = ts.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = ts.do("GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[userDTO](t, resp.Data)
	assert.Equal(t, "ana@example.com", me.Email)

	rec, resp = ts.do("GET", "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, core.CodeUnauthorized, resp.Error.Code)

	rec, resp = ts.do("GET", "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, core.CodeInvalidToken, resp.Error.Code)
}

func TestCategoriesArePublic(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	rec, resp := ts.do("GET", "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]categoryDTO](t, resp.Data)
	assert.Len(t, cats, len(core.DefaultCategories))
}

func TestBudgetEndpoints(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("budget@example.com")

	rec, resp := ts.do("GET", "/api/time-budget/current", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, core.CodeBudgetNotFound, resp.Error.Code)

	rec, resp = ts.do("POST", "/api/time-budget", token, map[string]any{"sleepMinutes": 3000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[budgetDTO](t, resp.Data)
	assert.Equal(t, 3000, created.SleepMinutes)
	assert.Equal(t, core.MinutesPerWeek-created.AvailableMinutes, created.BaseMinutes)

	rec, resp = ts.do("POST", "/api/time-budget", token, map[string]any{})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, core.CodeBudgetAlreadyExists, resp.Error.Code)

	rec, resp = ts.do("PATCH", "/api/time-budget/"+created.ID, token, map[string]any{"workMinutes": 1200})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[budgetDTO](t, resp.Data)
	assert.Equal(t, 1200, updated.WorkMinutes)
	assert.Equal(t, 3000, updated.SleepMinutes)

	rec, _ = ts.do("GET", "/api/time-budget/current", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActivityEndpoints(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("act@example.com")
	other := ts.register("other@example.com")

	_, resp := ts.do("GET", "/api/categories", "", nil)
	cat := decode[[]categoryDTO](t, resp.Data)[0]

	rec, resp := ts.do("POST", "/api/activities", token, map[string]any{
		"name": "Deep work", "categoryId": cat.ID, "durationMinutes": 90,
		"alignedWithPriorities": true, "satisfactionLevel": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	act := decode[activityDTO](t, resp.Data)
	assert.Equal(t, cat.Name, act.CategoryName)

	rec, resp = ts.do("POST", "/api/activities", token, map[string]any{
		"name": "Nothing", "categoryId": cat.ID, "durationMinutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeInvalidActivityDuration, resp.Error.Code)

	rec, resp = ts.do("POST", "/api/activities", token, map[string]any{
		"name": "Ghost", "categoryId": "missing", "durationMinutes": 10,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, core.CodeCategoryNotFound, resp.Error.Code)

	rec, resp = ts.do("GET", "/api/activities?limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]activityDTO](t, resp.Data), 1)

	rec, resp = ts.do("GET", "/api/activities?startDate=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeValidation, resp.Error.Code)

	rec, resp = ts.do("PATCH", "/api/activities/"+act.ID, token, map[string]any{"durationMinutes": 45})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 45, decode[activityDTO](t, resp.Data).DurationMinutes)

	rec, resp = ts.do("DELETE", "/api/activities/"+act.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "other users cannot see the activity")
	assert.Equal(t, core.CodeActivityNotFound, resp.Error.Code)

	rec, _ = ts.do("DELETE", "/api/activities/"+act.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestPriorityEndpoints(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("prio@example.com")

	var ids []string
	for _, name := range []string{"Health", "Family", "Craft", "Friends"}[:core.MaxPriorities] {
		rec, resp := ts.do("POST", "/api/priorities", token, map[string]any{"name": name, "allocatedMinutes": 300})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		p := decode[priorityDTO](t, resp.Data)
		ids = append(ids, p.ID)
		assert.Equal(t, len(ids), p.Order)
	}

	rec, resp := ts.do("POST", "/api/priorities", token, map[string]any{"name": "One too many"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeMaxPrioritiesExceeded, resp.Error.Code)

	reversed := make([]string, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		reversed = append(reversed, ids[i])
	}
	rec, resp = ts.do("POST", "/api/priorities/reorder", token, map[string]any{"priorityIds": reversed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reordered := decode[[]priorityDTO](t, resp.Data)
	require.Len(t, reordered, len(ids))
	assert.Equal(t, ids[len(ids)-1], reordered[0].ID)
	assert.Equal(t, 1, reordered[0].Order)

	rec, _ = ts.do("PATCH", "/api/priorities/"+ids[0], token, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code)

	_, resp = ts.do("GET", "/api/priorities", token, nil)
	assert.Len(t, decode[[]priorityDTO](t, resp.Data), len(ids)-1)
	_, resp = ts.do("GET", "/api/priorities?all=true", token, nil)
	assert.Len(t, decode[[]priorityDTO](t, resp.Data), len(ids))
	_, resp = ts.do("GET", "/api/priorities?active=false", token, nil)
	assert.Len(t, decode[[]priorityDTO](t, resp.Data), len(ids))

	rec, _ = ts.do("DELETE", "/api/priorities/"+ids[1], token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCalendarEndpoints(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("cal@example.com")

	rec, resp := ts.do("POST", "/api/calendar-blocks", token, map[string]any{
		"title": "Gym", "startTime": "2024-01-02T07:00:00Z", "endTime": "2024-01-02T08:30:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	block := decode[blockDTO](t, resp.Data)
	assert.Equal(t, 90, block.DurationMinutes)
	assert.Equal(t, core.BlockPriority, block.BlockType)

	rec, resp = ts.do("POST", "/api/calendar-blocks", token, map[string]any{
		"title": "Call", "startTime": "2024-01-02T08:00:00Z", "endTime": "2024-01-02T09:00:00Z", "blockType": "ROUTINE",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeCalendarBlockOverlap, resp.Error.Code)

	rec, resp = ts.do("POST", "/api/calendar-blocks", token, map[string]any{
		"title": "Backwards", "startTime": "2024-01-02T10:00:00Z", "endTime": "2024-01-02T09:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeValidation, resp.Error.Code)

	rec, resp = ts.do("GET", "/api/calendar-blocks?startDate=2024-01-01&endDate=2024-01-08", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]blockDTO](t, resp.Data), 1)

	rec, resp = ts.do("PATCH", "/api/calendar-blocks/"+block.ID, token, map[string]any{"title": "Swim"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Swim", decode[blockDTO](t, resp.Data).Title)

	rec, _ = ts.do("DELETE", "/api/calendar-blocks/"+block.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEliminationEndpoints(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("elim@example.com")

	for _, m := range []int{60, 90} {
		rec, _ := ts.do("POST", "/api/eliminations", token, map[string]any{"activityName": "Scrolling", "recoveredMinutes": m})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, resp := ts.do("GET", "/api/eliminations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[eliminationsDTO](t, resp.Data)
	assert.Len(t, list.Eliminations, 2)
	assert.Equal(t, 150, list.TotalRecoveredMinutes)
	assert.Equal(t, core.FormatMinutes(150), list.TotalRecoveredFormatted)
}

func TestReviewAndAnalyticsEndpoints(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("review@example.com")

	_, resp := ts.do("GET", "/api/categories", "", nil)
	cat := decode[[]categoryDTO](t, resp.Data)[0]
	rec, _ := ts.do("POST", "/api/activities", token, map[string]any{
		"name": "Write", "categoryId": cat.ID, "durationMinutes": 120, "alignedWithPriorities": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = ts.do("GET", "/api/weekly-reviews/current", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	review := decode[reviewDTO](t, resp.Data)
	assert.Equal(t, 120, review.TotalTrackedMinutes)
	assert.Equal(t, 100, review.AlignmentPercentage)
	assert.False(t, review.IsCompleted)
	assert.NotNil(t, review.Wins)

	rec, resp = ts.do("POST", "/api/weekly-reviews/"+review.ID+"/complete", token, map[string]any{"wins": []string{"focus"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeValidation, resp.Error.Code)

	rec, resp = ts.do("POST", "/api/weekly-reviews/"+review.ID+"/complete", token, map[string]any{
		"wins": []string{"focus"}, "overallScore": 85,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[reviewDTO](t, resp.Data)
	assert.True(t, done.IsCompleted)
	assert.Equal(t, []string{"focus"}, done.Wins)

	rec, resp = ts.do("POST", "/api/weekly-reviews/"+review.ID+"/complete", token, map[string]any{"overallScore": 90})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.CodeReviewAlreadyCompleted, resp.Error.Code)

	rec, resp = ts.do("GET", "/api/weekly-reviews/history?limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reviewDTO](t, resp.Data), 1)

	rec, resp = ts.do("GET", "/api/analytics/weekly", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	weekly := decode[weeklyAnalyticsDTO](t, resp.Data)
	assert.Equal(t, 120, weekly.TotalTrackedMinutes)
	assert.Equal(t, 100, weekly.PriorityAlignment)
	assert.Equal(t, "2h", weekly.FormattedTracked)
	require.Len(t, weekly.CategoryBreakdown, 1)
	assert.Equal(t, cat.ID, weekly.CategoryBreakdown[0].CategoryID)

	rec, resp = ts.do("GET", "/api/analytics/trends?weeks=4", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trends := decode[[]trendDTO](t, resp.Data)
	require.Len(t, trends, 1)
	assert.Equal(t, 85, trends[0].Score)
}

func TestHealthAndReadiness(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, stubPinger{})
	rec, _ := ts.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, _ = ts.do("GET", "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestServer(t, ServerConfig{}, stubPinger{err: errors.New("database is locked")})
	rec, resp := down.do("GET", "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_READY", resp.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{MetricsEnabled: true}, nil)
	ts.do("GET", "/healthz", "", nil)

	rec, _ := ts.do("GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "timebudget_http_requests_total")

	hidden := newTestServer(t, ServerConfig{}, nil)
	rec, _ = hidden.do("GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, ServerConfig{}, nil)
	token := ts.register("lost@example.com")

	rec, resp := ts.do("GET", "/api/nowhere", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, ServerConfig{RateLimitPerMinute: 2}, nil)
	for i := 0; i < 2; i++ {
		rec, _ := ts.do("GET", "/healthz", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, resp := ts.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
