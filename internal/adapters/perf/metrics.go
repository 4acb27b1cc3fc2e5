package perf

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "noticeboard"

// Registry holds every noticeboard metric. A private registry keeps tests
// free of duplicate-registration panics from the global default.
var Registry = prometheus.NewRegistry()

var (
	// RequestDuration observes HTTP request latency by method, route and status class.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})

	// StoreDuration observes notice store Load/Save latency.
	StoreDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Notice store operation latency.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"backend", "op", "result"})

	// NoticeEvents counts notice lifecycle events (created, deleted, rejected).
	NoticeEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notice_events_total",
		Help:      "Notice lifecycle events.",
	}, []string{"event"})

	// NoticesStored reports the collection size seen by the last store operation.
	NoticesStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notices_stored",
		Help:      "Number of notices in the collection at the last load or save.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestDuration,
		StoreDuration,
		NoticeEvents,
		NoticesStored,
	)
}

// MetricsHandler exposes Registry in the Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// StatusClass collapses a status code into "2xx", "4xx" etc. to bound label cardinality.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
