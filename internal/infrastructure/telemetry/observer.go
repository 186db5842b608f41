// Package telemetry traduce eventos del motor de inventario a métricas.
package telemetry

import (
	"errors"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/application/workflow"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/pkg/metrics"
)

var (
	_ inventory.Observer          = (*Observer)(nil)
	_ workflow.TransitionObserver = (*Observer)(nil)
	_ audit.DropObserver          = (*Observer)(nil)
)

// Observer implementa los observadores del motor sobre el registro Prometheus.
type Observer struct {
	reg *metrics.Registry
}

// NewObserver construye el observador.
func NewObserver(reg *metrics.Registry) *Observer {
	return &Observer{reg: reg}
}

// MovementApplied asiento confirmado.
func (o *Observer) MovementApplied(m *entity.Movement) {
	value, _ := m.TotalValue.Float64()
	o.reg.RecordMovement(m.Type, m.Direction, value)
}

// RequestTransition resultado de una transición de solicitud.
func (o *Observer) RequestTransition(kind, transition string, err error) {
	if kind == "" {
		kind = "unknown"
	}
	o.reg.RecordTransition(kind, transition, Outcome(err))
}

// AuditDropped evento de bitácora descartado.
func (o *Observer) AuditDropped(reason string) {
	o.reg.RecordAuditDrop(reason)
}

// Outcome etiqueta acotada para un error de dominio.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAlreadyFulfilled):
		return "already_fulfilled"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return "denied"
	case errors.Is(err, domain.ErrTransientStore):
		return "transient"
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrNotFound):
		return "invalid"
	}
	return "error"
}
