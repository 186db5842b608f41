package audit

import (
	"context"
	"time"
)

// Acciones registradas en la bitácora de actividad.
const (
	ActionItemCreated        = "ITEM_CREATED"
	ActionItemUpdated        = "ITEM_UPDATED"
	ActionItemDeleted        = "ITEM_DELETED"
	ActionMovementApplied    = "MOVEMENT_APPLIED"
	ActionRequestCreated     = "REQUEST_CREATED"
	ActionRequestApproved    = "REQUEST_APPROVED"
	ActionRequestRejected    = "REQUEST_REJECTED"
	ActionRequestFulfilled   = "REQUEST_FULFILLED"
	ActionRequestLineUpdated = "REQUEST_LINE_UPDATED"
)

// Event entrada de la bitácora emitida tras cada transición exitosa.
type Event struct {
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ActorID     string         `json:"actor_id"`
	ActorRole   string         `json:"actor_role,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// Sink destino de la bitácora. Emit no bloquea ni falla: la entrega es best-effort y nunca
// revierte la transacción de negocio.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// Publisher entrega un evento a su destino final (stream de Redis, log).
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopSink descarta todo.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}
