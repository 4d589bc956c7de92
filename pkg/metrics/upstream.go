package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls made to the shop REST API.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream call metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of shop API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failures_total",
		Help: "Shop API requests that failed or returned a non-2xx status.",
	}, []string{"method", "route", "status_class"})
	reg.MustRegister(duration, failure)
	return &UpstreamMetrics{
		duration: duration,
		failure:  failure,
	}
}

// ObserveDuration records how long a request took.
func (m *UpstreamMetrics) ObserveDuration(method, route string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method), normalizeLabel(route)).Observe(duration.Seconds())
}

// IncFailure counts a failed request. status 0 means the transport failed.
func (m *UpstreamMetrics) IncFailure(method, route string, status int) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(method), normalizeLabel(route), statusClass(status)).Inc()
}

// SessionMetrics tracks the in-memory storefront session registry.
type SessionMetrics struct {
	active  prometheus.Gauge
	evicted prometheus.Counter
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_sessions_active",
		Help: "Browser sessions currently held in memory.",
	})
	evicted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_sessions_evicted_total",
		Help: "Sessions dropped after logout or idle timeout.",
	})
	reg.MustRegister(active, evicted)
	return &SessionMetrics{active: active, evicted: evicted}
}

func (m *SessionMetrics) SetActive(n int) {
	if m == nil || m.active == nil {
		return
	}
	m.active.Set(float64(n))
}

func (m *SessionMetrics) AddEvicted(n int) {
	if m == nil || m.evicted == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

func statusClass(status int) string {
	if status <= 0 {
		return "transport"
	}
	return strconv.Itoa(status/100) + "xx"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
