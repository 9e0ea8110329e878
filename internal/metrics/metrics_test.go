package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	counter := httpRequests.WithLabelValues("GET /api/priorities", "GET", "200")
	before := testutil.ToFloat64(counter)

	ObserveRequest("GET /api/priorities", "GET", http.StatusOK, 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	unmatched := httpRequests.WithLabelValues("unmatched", "GET", "404")
	before = testutil.ToFloat64(unmatched)
	ObserveRequest("", "GET", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
}

func TestRecordEvent(t *testing.T) {
	ok := eventsProcessed.WithLabelValues("activity.logged", "ok")
	failed := eventsProcessed.WithLabelValues("activity.logged", "error")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ts := time.Unix(1704067200, 0)
	RecordEvent("activity.logged", true, ts)
	RecordEvent("activity.logged", false, time.Now())

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
	assert.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastEventGauge))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordDomainError("PRIORITY_MAX_EXCEEDED")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `timebudget_http_domain_errors_total{code="PRIORITY_MAX_EXCEEDED"}`))
}
