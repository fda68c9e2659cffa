// Package metrics holds the server's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/authkeeper/authkeeper/internal/envelope"
)

const namespace = "authkeeper"

type Metrics struct {
	registry     *prometheus.Registry
	authAttempts *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// New registers the collectors on a fresh registry so that tests and
// multiple servers in one process do not collide on the global one.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by outcome code.",
		}, []string{"op", "code"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(
		m.authAttempts,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AuthAttempt counts one finished register or login.
func (m *Metrics) AuthAttempt(op string, code envelope.Code) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(op, code.String()).Inc()
}

func (m *Metrics) HTTPRequest(route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
