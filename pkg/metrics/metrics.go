// Package metrics exposes keyward's Prometheus collectors. A Metrics value
// owns its own registry so tests can build as many as they like.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
)

const namespace = "keyward"

// Metrics implements the observer hooks of the time oracle, the request
// guard and the license validator.
type Metrics struct {
	registry *prometheus.Registry

	validations     *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
	sourceErrors    *prometheus.CounterVec
	oracleState     *prometheus.GaugeVec
	oracleDrift     prometheus.Gauge
	licenses        *prometheus.GaugeVec
	sweeps          *prometheus.CounterVec
}

// New builds the collectors and registers them, along with the Go runtime
// and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "License validations by outcome.",
		}, []string{"outcome"}),
		guardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Requests rejected by the request-signing guard by reason.",
		}, []string{"reason"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeoracle",
			Name:      "source_errors_total",
			Help:      "Failed queries against external time sources.",
		}, []string{"source"}),
		oracleState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "timeoracle",
			Name:      "state",
			Help:      "1 for the state of the most recent trusted-time reading, 0 otherwise.",
		}, []string{"state"}),
		oracleDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "timeoracle",
			Name:      "drift_seconds",
			Help:      "Drift between the local clock and the last external reading.",
		}),
		licenses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "licenses",
			Help:      "Licenses by effective status, refreshed by housekeeping.",
		}, []string{"status"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_removed_total",
			Help:      "Entries removed by housekeeping sweeps by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.validations,
		m.guardRejections,
		m.sourceErrors,
		m.oracleState,
		m.oracleDrift,
		m.licenses,
		m.sweeps,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveValidation counts a validator outcome.
func (m *Metrics) ObserveValidation(outcome string) {
	m.validations.WithLabelValues(outcome).Inc()
}

// ObserveGuardRejection counts a guard rejection.
func (m *Metrics) ObserveGuardRejection(reason string) {
	m.guardRejections.WithLabelValues(reason).Inc()
}

// ObserveReading records the state and drift of a trusted-time reading.
func (m *Metrics) ObserveReading(r timeoracle.Reading) {
	for _, s := range []timeoracle.State{timeoracle.StateFresh, timeoracle.StateStale, timeoracle.StateDegraded} {
		v := 0.0
		if r.State == s {
			v = 1
		}
		m.oracleState.WithLabelValues(string(s)).Set(v)
	}
	m.oracleDrift.Set(r.Drift.Seconds())
}

// ObserveSourceError counts a failed time-source query.
func (m *Metrics) ObserveSourceError(source string) {
	m.sourceErrors.WithLabelValues(source).Inc()
}

// SetLicenseCounts publishes license counts keyed by status.
func (m *Metrics) SetLicenseCounts(counts map[string]int) {
	for status, n := range counts {
		m.licenses.WithLabelValues(status).Set(float64(n))
	}
}

// ObserveSweep counts entries removed by a housekeeping sweep.
func (m *Metrics) ObserveSweep(kind string, removed int) {
	if removed > 0 {
		m.sweeps.WithLabelValues(kind).Add(float64(removed))
	}
}
