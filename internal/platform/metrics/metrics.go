package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	GuardDecisions          *prometheus.CounterVec
	SessionHydrations       *prometheus.CounterVec
	SettingsUpdates         prometheus.Counter
	SettingsPersistFailures *prometheus.CounterVec
	TenantTransitions       prometheus.Counter
	UpstreamLatency         *prometheus.HistogramVec
	UpstreamErrors          *prometheus.CounterVec
	BackendOnline           prometheus.Gauge
	VehicleFallbacks        *prometheus.CounterVec
}

// New registers all collectors on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all collectors on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GuardDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_guard_decisions_total",
			Help: "Auth guard outcomes, labeled loading/render/redirect",
		}, []string{"outcome"}),
		SessionHydrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_session_hydrations_total",
			Help: "Session refresh attempts against the backend, labeled by result",
		}, []string{"result"}),
		SettingsUpdates: f.NewCounter(prometheus.CounterOpts{
			Name: "checklist_settings_updates_total",
			Help: "Checklist settings updates applied in memory",
		}),
		SettingsPersistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_settings_persist_failures_total",
			Help: "Settings store failures swallowed by the settings service",
		}, []string{"op"}),
		TenantTransitions: f.NewCounter(prometheus.CounterOpts{
			Name: "checklist_tenant_transitions_total",
			Help: "Client id changes observed between consecutive sessions",
		}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checklist_upstream_latency_seconds",
			Help:    "Backend API call latency by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_upstream_errors_total",
			Help: "Failed backend API calls by operation",
		}, []string{"operation"}),
		BackendOnline: f.NewGauge(prometheus.GaugeOpts{
			Name: "checklist_backend_online",
			Help: "1 when the backend healthcheck circuit is closed",
		}),
		VehicleFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "checklist_vehicle_fallbacks_total",
			Help: "Vehicle lists served from a fallback source",
		}, []string{"source"}),
	}
}

func (m *Metrics) IncGuardDecision(outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSessionHydration(result string) {
	if m == nil {
		return
	}
	m.SessionHydrations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSettingsUpdates() {
	if m == nil {
		return
	}
	m.SettingsUpdates.Inc()
}

func (m *Metrics) IncSettingsPersistFailure(op string) {
	if m == nil {
		return
	}
	m.SettingsPersistFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) IncTenantTransitions() {
	if m == nil {
		return
	}
	m.TenantTransitions.Inc()
}

func (m *Metrics) ObserveUpstream(operation string, durationSeconds float64, err error) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(operation).Observe(durationSeconds)
	if err != nil {
		m.UpstreamErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) SetBackendOnline(online bool) {
	if m == nil {
		return
	}
	if online {
		m.BackendOnline.Set(1)
		return
	}
	m.BackendOnline.Set(0)
}

func (m *Metrics) IncVehicleFallback(source string) {
	if m == nil {
		return
	}
	m.VehicleFallbacks.WithLabelValues(source).Inc()
}
