package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	identifyTotal      *prometheus.CounterVec
	matchScore         *prometheus.HistogramVec
	extractionFailures *prometheus.CounterVec
	commitTotal        *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catwatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catwatch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "catwatch",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	identifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catwatch",
			Subsystem: "identify",
			Name:      "requests_total",
			Help:      "Total identification proposals by outcome.",
		},
		[]string{"service", "outcome"},
	)
	matchScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catwatch",
			Subsystem: "identify",
			Name:      "match_score",
			Help:      "Distribution of best match scores per proposal.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service"},
	)
	extractionFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catwatch",
			Subsystem: "identify",
			Name:      "extraction_failures_total",
			Help:      "Total feature extraction failures.",
		},
		[]string{"service"},
	)
	commitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catwatch",
			Subsystem: "commit",
			Name:      "total",
			Help:      "Total commit attempts by decision and status.",
		},
		[]string{"service", "decision", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		identifyTotal,
		matchScore,
		extractionFailures,
		commitTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		identifyTotal:      identifyTotal,
		matchScore:         matchScore,
		extractionFailures: extractionFailures,
		commitTotal:        commitTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/cats/"):
		return "/v1/cats/{cat_id}"
	default:
		return path
	}
}

// RecordIdentification tracks one proposal: whether it matched and the best
// score the resolver produced.
func (m *HTTPServerMetrics) RecordIdentification(service string, matched bool, score float64) {
	outcome := "no_match"
	if matched {
		outcome = "match"
	}
	m.identifyTotal.WithLabelValues(service, outcome).Inc()
	m.matchScore.WithLabelValues(service).Observe(score)
}

func (m *HTTPServerMetrics) RecordExtractionFailure(service string) {
	m.extractionFailures.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordCommit(service, decision string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if decision == "" {
		decision = "unknown"
	}
	m.commitTotal.WithLabelValues(service, decision, status).Inc()
}

// statusRecorder only tracks the status code; handlers here produce
// buffered JSON, so no optional writer interfaces are forwarded.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
