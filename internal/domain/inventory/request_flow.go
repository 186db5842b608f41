package inventory

import (
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// Transiciones del flujo de solicitudes.
const (
	TransitionApprove   = "approve"
	TransitionReject    = "reject"
	TransitionFulfil    = "fulfil"
	TransitionEditLines = "edit_lines"
)

// SuccessStatus estado final de éxito según el tipo de solicitud.
func SuccessStatus(kind string) string {
	switch kind {
	case entity.RequestTransfer:
		return entity.StatusCompleted
	case entity.RequestIssue:
		return entity.StatusIssued
	case entity.RequestProcurement:
		return entity.StatusReceived
	}
	return ""
}

// IsTerminal REJECTED, COMPLETED, ISSUED y RECEIVED son finales.
func IsTerminal(status string) bool {
	switch status {
	case entity.StatusRejected, entity.StatusCompleted, entity.StatusIssued, entity.StatusReceived:
		return true
	}
	return false
}

// NextStatus valida una transición y devuelve el estado destino.
// PENDING -> APPROVED | REJECTED; APPROVED -> éxito según tipo. Edición de líneas: solo PENDING o APPROVED
// (no cambia el estado). Desde cualquier estado final todo es *domain.TransitionError.
func NextStatus(r *entity.Request, transition string) (string, error) {
	fail := &domain.TransitionError{RequestID: r.ID, Transition: transition, From: r.Status}
	switch transition {
	case TransitionApprove:
		if r.Status == entity.StatusPending {
			return entity.StatusApproved, nil
		}
	case TransitionReject:
		if r.Status == entity.StatusPending {
			return entity.StatusRejected, nil
		}
	case TransitionFulfil:
		if r.Status == entity.StatusApproved {
			return SuccessStatus(r.Kind), nil
		}
		if r.Status == SuccessStatus(r.Kind) {
			fail.Fulfilled = true
		}
	case TransitionEditLines:
		if r.Status == entity.StatusPending || r.Status == entity.StatusApproved {
			return r.Status, nil
		}
	}
	return "", fail
}
