// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "permitdesk_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permitdesk_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "permitdesk_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	documentLinks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permitdesk_document_links_total",
		Help: "Draft documents processed by the linker, by result.",
	}, []string{"category", "result"})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permitdesk_status_transitions_total",
		Help: "Lifecycle status transitions by record kind and target status.",
	}, []string{"kind", "to"})

	suspensionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permitdesk_suspension_changes_total",
		Help: "Account suspension changes by action.",
	}, []string{"action"})

	feedSourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permitdesk_feed_source_failures_total",
		Help: "Activity feed sources that failed and were skipped.",
	}, []string{"source"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

func InFlightInc() {
	httpInFlight.Inc()
}

func InFlightDec() {
	httpInFlight.Dec()
}

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveDocumentLink records one draft processed by the linker. result is
// one of "linked", "create_failed" or "cleanup_failed".
func ObserveDocumentLink(category, result string) {
	documentLinks.WithLabelValues(category, result).Inc()
}

func ObserveTransition(kind, to string) {
	statusTransitions.WithLabelValues(kind, to).Inc()
}

func ObserveSuspension(action string) {
	suspensionChanges.WithLabelValues(action).Inc()
}

func ObserveFeedSourceFailure(source string) {
	feedSourceFailures.WithLabelValues(source).Inc()
}
