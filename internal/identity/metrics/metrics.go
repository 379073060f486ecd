package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the identity Prometheus metrics.
type Metrics struct {
	UsersCreated prometheus.Counter
	UsersSeeded  prometheus.Counter
}

// New creates and registers the identity metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulse_users_created_total",
			Help: "Total number of users created via signup.",
		}),
		UsersSeeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulse_users_seeded_total",
			Help: "Total number of demo users inserted by seeding.",
		}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

func (m *Metrics) AddUsersSeeded(n int) {
	if m == nil {
		return
	}
	m.UsersSeeded.Add(float64(n))
}
