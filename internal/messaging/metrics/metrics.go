package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the messaging Prometheus metrics. All methods are nil-safe so
// tests can pass a nil receiver.
type Metrics struct {
	MessagesSent  *prometheus.CounterVec
	GroupsCreated prometheus.Counter
	ReadReceipts  prometheus.Counter
}

// New creates and registers the messaging metrics.
func New() *Metrics {
	return &Metrics{
		MessagesSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_messages_sent_total",
			Help: "Total messages sent, by kind and sentiment label.",
		}, []string{"kind", "sentiment"}),
		GroupsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulse_groups_created_total",
			Help: "Total groups created.",
		}),
		ReadReceipts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulse_messages_marked_read_total",
			Help: "Total direct messages flipped to read on retrieval.",
		}),
	}
}

func (m *Metrics) ObserveMessageSent(kind, label string) {
	if m == nil {
		return
	}
	m.MessagesSent.WithLabelValues(kind, label).Inc()
}

func (m *Metrics) ObserveGroupCreated() {
	if m == nil {
		return
	}
	m.GroupsCreated.Inc()
}

func (m *Metrics) ObserveMessagesRead(n int) {
	if m == nil || n == 0 {
		return
	}
	m.ReadReceipts.Add(float64(n))
}
