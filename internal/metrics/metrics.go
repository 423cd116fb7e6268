package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cryptoedu",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream API requests.",
		},
		[]string{"endpoint", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cryptoedu",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"endpoint"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cryptoedu",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache and result (hit, miss).",
		},
		[]string{"cache", "result"},
	)

	chatIntents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cryptoedu",
			Subsystem: "chat",
			Name:      "intents_total",
			Help:      "Chat messages routed per intent.",
		},
		[]string{"intent"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cryptoedu",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cryptoedu",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		upstreamRequests,
		upstreamDuration,
		cacheLookups,
		chatIntents,
		httpRequests,
		httpDuration,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordUpstream records one upstream request. status is the HTTP status
// code, or 0 when the request never got a response.
func RecordUpstream(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequests.WithLabelValues(endpoint, label).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordCacheHit(cache string) {
	cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func RecordCacheMiss(cache string) {
	cacheLookups.WithLabelValues(cache, "miss").Inc()
}

func RecordIntent(intent string) {
	chatIntents.WithLabelValues(intent).Inc()
}

// InstrumentHandler wraps next with request counting and latency tracking.
// The path label is the matched mux route template so ids in query strings
// or paths do not explode cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
