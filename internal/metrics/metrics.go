// Package metrics exposes the Prometheus collectors of the API. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gqlapi"

type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	storeOps      *prometheus.CounterVec
	subscriptions *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Storage operations by name and result.",
		}, []string{"op", "result"}),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Subscriptions currently streaming, by field.",
		}, []string{"name"}),
	}

	reg.MustRegister(m.requests, m.duration, m.storeOps, m.subscriptions)
	return m
}

func (m *Metrics) ObserveRequest(path string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// StoreOp counts one storage call; result is "ok" or "error".
func (m *Metrics) StoreOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

// SubscriptionStarted bumps the gauge for name and returns the func that
// lowers it again.
func (m *Metrics) SubscriptionStarted(name string) func() {
	if m == nil {
		return func() {}
	}
	g := m.subscriptions.WithLabelValues(name)
	g.Inc()
	return g.Dec
}
