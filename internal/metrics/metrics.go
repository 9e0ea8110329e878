// Package metrics registers the Prometheus collectors of the API and the worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timebudget"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	domainErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "domain_errors_total",
		Help:      "Expected domain failures returned to clients, by symbolic code.",
	}, []string{"code"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "In-process cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	eventsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "events_processed_total",
		Help:      "Domain events handled by the review worker, by type and outcome.",
	}, []string{"event_type", "outcome"})

	lastEventGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "last_event_timestamp_seconds",
		Help:      "Unix timestamp of the most recent event handled successfully.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, domainErrors, cacheLookups, eventsProcessed, lastEventGauge)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func RecordDomainError(code string) {
	domainErrors.WithLabelValues(code).Inc()
}

func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordEvent counts a handled event. ok=false means the handler failed and the message was requeued.
func RecordEvent(eventType string, ok bool, ts time.Time) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	eventsProcessed.WithLabelValues(eventType, outcome).Inc()
	if ok && !ts.IsZero() {
		lastEventGauge.Set(float64(ts.Unix()))
	}
}
