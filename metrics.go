package anvil

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the container's prometheus collectors. All methods are
// nil-safe so an unconfigured container pays a single nil check.
type Metrics struct {
	servicesRegistered prometheus.Counter
	instancesCreated   *prometheus.CounterVec
	resolutionErrors   *prometheus.CounterVec
	activeScopes       prometheus.Gauge
}

// NewMetrics creates the container collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		servicesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anvil_services_registered_total",
			Help: "Number of service descriptors registered.",
		}),
		instancesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anvil_instances_created_total",
			Help: "Number of instances constructed, by lifetime.",
		}, []string{"lifetime"}),
		resolutionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anvil_resolution_errors_total",
			Help: "Number of failed resolutions, by error code.",
		}, []string{"code"}),
		activeScopes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "anvil_active_scopes",
			Help: "Number of scopes currently open.",
		}),
	}
	reg.MustRegister(m.servicesRegistered, m.instancesCreated, m.resolutionErrors, m.activeScopes)
	return m
}

func (m *Metrics) serviceRegistered() {
	if m == nil {
		return
	}
	m.servicesRegistered.Inc()
}

func (m *Metrics) instanceCreated(lifetime Lifetime) {
	if m == nil {
		return
	}
	m.instancesCreated.WithLabelValues(lifetime.String()).Inc()
}

func (m *Metrics) resolutionFailed(code string) {
	if m == nil {
		return
	}
	m.resolutionErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) scopeOpened() {
	if m == nil {
		return
	}
	m.activeScopes.Inc()
}

func (m *Metrics) scopeClosed() {
	if m == nil {
		return
	}
	m.activeScopes.Dec()
}
