package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry métricas Prometheus de la aplicación bajo un prefijo común.
type Registry struct {
	reg *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	movementsTotal      *prometheus.CounterVec
	movementValue       *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	auditDroppedTotal   *prometheus.CounterVec
}

// New registra las métricas con el prefijo dado (por defecto "farmstock").
func New(prefix string) *Registry {
	if prefix == "" {
		prefix = "farmstock"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		movementsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_movements_total",
				Help: "Movements appended to the ledger",
			},
			[]string{"type", "direction"},
		),
		movementValue: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_movement_value_total",
				Help: "Accumulated valuation of ledger movements",
			},
			[]string{"direction"},
		),
		transitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_request_transitions_total",
				Help: "Request workflow transitions by outcome",
			},
			[]string{"kind", "transition", "outcome"},
		),
		auditDroppedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_audit_dropped_total",
				Help: "Audit events dropped before delivery",
			},
			[]string{"reason"},
		),
	}
}

// ObserveHTTP registra una petición HTTP.
func (r *Registry) ObserveHTTP(method, path, status string, d time.Duration) {
	r.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.httpRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// RecordMovement cuenta un asiento y acumula su valor.
func (r *Registry) RecordMovement(movementType, direction string, value float64) {
	r.movementsTotal.WithLabelValues(movementType, direction).Inc()
	r.movementValue.WithLabelValues(direction).Add(value)
}

// RecordTransition cuenta una transición de solicitud.
func (r *Registry) RecordTransition(kind, transition, outcome string) {
	r.transitionsTotal.WithLabelValues(kind, transition, outcome).Inc()
}

// RecordAuditDrop cuenta un evento de bitácora perdido.
func (r *Registry) RecordAuditDrop(reason string) {
	r.auditDroppedTotal.WithLabelValues(reason).Inc()
}

// Handler expone /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer acceso al registro (pruebas).
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
