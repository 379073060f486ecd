package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP holds transport-level Prometheus metrics shared by all API routes.
type HTTP struct {
	RequestDuration *prometheus.HistogramVec
}

// NewHTTP creates and registers the transport metrics.
func NewHTTP() *HTTP {
	return &HTTP{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pulse_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Observe records one request observation. Nil-safe so tests can wire handlers
// without metrics.
func (m *HTTP) Observe(method, path string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, path).Observe(seconds)
}
