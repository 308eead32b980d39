package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latencies per endpoint.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_api_requests_total",
				Help: "Total number of API requests by endpoint and response code",
			},
			[]string{"endpoint", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "botflow_api_request_duration_seconds",
				Help:    "Duration of API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// observe records one request. code 0 means the request failed before a
// response arrived.
func (m *Metrics) observe(endpoint string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := metricLabel(endpoint)
	m.requests.WithLabelValues(label, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}
