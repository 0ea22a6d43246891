package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the instruments for the realtime hub. All of them are
// registered on the given registerer so tests can use an isolated
// registry.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	UsersOnline       prometheus.Gauge
	EventsTotal       *prometheus.CounterVec
	DeliveriesTotal   *prometheus.CounterVec
	DeliveryFailures  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "queueline",
			Subsystem: "realtime",
			Name:      "connections_active",
			Help:      "Number of live websocket connections.",
		}),
		UsersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "queueline",
			Subsystem: "realtime",
			Name:      "users_online",
			Help:      "Number of users with at least one bound connection.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queueline",
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Inbound events dispatched, by event name.",
		}, []string{"event"}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queueline",
			Subsystem: "realtime",
			Name:      "deliveries_total",
			Help:      "Outbound emissions, by event name.",
		}, []string{"event"}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queueline",
			Subsystem: "realtime",
			Name:      "delivery_failures_total",
			Help:      "Notifications addressed to users with no live connection.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.UsersOnline,
		m.EventsTotal,
		m.DeliveriesTotal,
		m.DeliveryFailures,
	)

	return m
}
