package audit

import (
	"context"

	"github.com/jhoicas/farmstock-api/pkg/logger"
)

// LogPublisher escribe los eventos en el log estructurado (cuando no hay Redis configurado).
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	p.log.Info().
		Str("action", ev.Action).
		Str("entity_type", ev.EntityType).
		Str("entity_id", ev.EntityID).
		Str("actor_id", ev.ActorID).
		Interface("metadata", ev.Metadata).
		Time("occurred_at", ev.OccurredAt).
		Msg(ev.Description)
	return nil
}
