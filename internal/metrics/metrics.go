package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the license server collectors on a dedicated registry.
type Metrics struct {
	registry    *prometheus.Registry
	activations *prometheus.CounterVec
	verifies    *prometheus.CounterVec
	created     prometheus.Counter
	revoked     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silo_license_activations_total",
			Help: "License activation attempts by resulting status.",
		}, []string{"status"}),
		verifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "silo_license_verifications_total",
			Help: "Token verifications by result.",
		}, []string{"result"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "silo_license_created_total",
			Help: "Licenses created.",
		}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "silo_license_revoked_total",
			Help: "Licenses revoked.",
		}),
	}

	m.registry.MustRegister(
		m.activations,
		m.verifies,
		m.created,
		m.revoked,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// The Observe methods are no-ops on a nil *Metrics.

func (m *Metrics) ObserveActivation(status string) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(status).Inc()
}

// ObserveVerification records a verification; an empty reason means valid.
func (m *Metrics) ObserveVerification(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "valid"
	}
	m.verifies.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Metrics) ObserveRevoked() {
	if m == nil {
		return
	}
	m.revoked.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
