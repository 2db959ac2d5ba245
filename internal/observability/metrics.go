package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics keeps in-memory request counters and mirrors them into a private
// Prometheus registry.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	totalLatency time.Duration
	totalCount   int64

	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests         map[string]int64 `json:"requests"`
	Errors           map[string]int64 `json:"errors"`
	TotalRequests    int64            `json:"total_requests"`
	AverageLatencyMS float64          `json:"average_latency_ms"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_service_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_service_http_errors_total",
			Help: "HTTP error responses by error code",
		},
		[]string{"method", "path", "code"},
	)
	registry.MustRegister(requestDuration, errorsTotal)

	return &Metrics{
		requestCount:    make(map[string]int64),
		errorCount:      make(map[string]int64),
		registry:        registry,
		requestDuration: requestDuration,
		errorsTotal:     errorsTotal,
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusLabel := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())

	key := pathKey(path, method, statusLabel)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalCount++
	m.totalLatency += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(method, path, code).Inc()

	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Requests: map[string]int64{}, Errors: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Requests:      make(map[string]int64, len(m.requestCount)),
		Errors:        make(map[string]int64, len(m.errorCount)),
		TotalRequests: m.totalCount,
	}
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	if m.totalCount > 0 {
		snap.AverageLatencyMS = float64(m.totalLatency.Microseconds()) / float64(m.totalCount) / 1000
	}
	return snap
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func pathKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
