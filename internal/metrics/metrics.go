// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boxoffice"

type Metrics struct {
	registry *prometheus.Registry

	ordersCompleted prometheus.Counter
	ordersCanceled  prometheus.Counter
	seatConflicts   prometheus.Counter
	ticketsIssued   prometheus.Counter
	ticketsUsed     prometheus.Counter
	outboxPublished *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_completed_total",
			Help:      "Orders that reached COMPLETED.",
		}),
		ordersCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_canceled_total",
			Help:      "Orders that were canceled.",
		}),
		seatConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_conflicts_total",
			Help:      "Order attempts rejected because not enough seats were left.",
		}),
		ticketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_issued_total",
			Help:      "Tickets issued for completed orders.",
		}),
		ticketsUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_used_total",
			Help:      "Tickets marked as used at the door.",
		}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox messages published to the broker.",
		}, []string{"topic"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersCompleted,
		m.ordersCanceled,
		m.seatConflicts,
		m.ticketsIssued,
		m.ticketsUsed,
		m.outboxPublished,
		m.requestDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) OrderCompleted(tickets int) {
	m.ordersCompleted.Inc()
	m.ticketsIssued.Add(float64(tickets))
}

func (m *Metrics) OrderCanceled() { m.ordersCanceled.Inc() }

func (m *Metrics) SeatConflict() { m.seatConflicts.Inc() }

func (m *Metrics) TicketUsed() { m.ticketsUsed.Inc() }

func (m *Metrics) OutboxPublished(topic string) {
	m.outboxPublished.WithLabelValues(topic).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
