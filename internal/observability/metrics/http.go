package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIMetrics holds the private registry for the word-list API: generic
// HTTP request metrics plus counters for the document store.
type APIMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentLoads prometheus.Counter
	documentSaves prometheus.Counter
	saveFailures  prometheus.Counter
	itemUpdates   prometheus.Counter
	searchResults prometheus.Histogram
}

func NewAPIMetrics(service string) *APIMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wordlist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wordlist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wordlist",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentLoads := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wordlist",
			Subsystem: "store",
			Name:      "document_loads_total",
			Help:      "Total documents parsed from disk.",
		},
	)
	documentSaves := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wordlist",
			Subsystem: "store",
			Name:      "document_saves_total",
			Help:      "Total documents written back to disk.",
		},
	)
	saveFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wordlist",
			Subsystem: "store",
			Name:      "save_failures_total",
			Help:      "Total failed document writes.",
		},
	)
	itemUpdates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wordlist",
			Subsystem: "store",
			Name:      "item_updates_total",
			Help:      "Total successful item mutations.",
		},
	)
	searchResults := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wordlist",
			Subsystem: "store",
			Name:      "search_results",
			Help:      "Distribution of result counts per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentLoads,
		documentSaves,
		saveFailures,
		itemUpdates,
		searchResults,
	)

	return &APIMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		documentLoads:   documentLoads,
		documentSaves:   documentSaves,
		saveFailures:    saveFailures,
		itemUpdates:     itemUpdates,
		searchResults:   searchResults,
	}
}

func (m *APIMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *APIMetrics) Middleware(service string, next http.Handler) http.Handler {
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

// normalizePath collapses filename/id segments so label cardinality stays
// bounded by the route table, not by the stored documents.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/file/"):
		return "/file/{filename}"
	case strings.HasPrefix(path, "/search/"):
		return "/search/{filename}"
	case strings.HasPrefix(path, "/update/"):
		return "/update/{filename}/{item_id}"
	case strings.HasPrefix(path, "/stats/"):
		return "/stats/{filename}"
	case strings.HasPrefix(path, "/categories/"):
		return "/categories/{filename}"
	case strings.HasPrefix(path, "/item/"):
		return "/item/{filename}/{item_id}"
	default:
		return path
	}
}

// Observer hooks for the document store.

func (m *APIMetrics) DocumentLoaded() { m.documentLoads.Inc() }
func (m *APIMetrics) DocumentSaved()  { m.documentSaves.Inc() }
func (m *APIMetrics) SaveFailed()     { m.saveFailures.Inc() }

func (m *APIMetrics) RecordItemUpdate() { m.itemUpdates.Inc() }

func (m *APIMetrics) RecordSearchResults(count int) {
	m.searchResults.Observe(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
