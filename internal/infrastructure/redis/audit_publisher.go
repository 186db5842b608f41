package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
)

var _ audit.Publisher = (*StreamPublisher)(nil)

// StreamPublisher publica la bitácora en un stream de Redis (XADD), recortado a maxLen aproximado.
type StreamPublisher struct {
	rdb    goredis.Cmdable
	stream string
	maxLen int64
}

// NewStreamPublisher construye el publicador.
func NewStreamPublisher(rdb goredis.Cmdable, stream string) *StreamPublisher {
	return &StreamPublisher{rdb: rdb, stream: stream, maxLen: 100000}
}

// Publish agrega el evento al stream.
func (p *StreamPublisher) Publish(ctx context.Context, ev audit.Event) error {
	values, err := EventValues(ev)
	if err != nil {
		return err
	}
	err = p.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// EventValues campos planos del evento para el stream; metadata va como JSON.
func EventValues(ev audit.Event) (map[string]any, error) {
	meta := "{}"
	if len(ev.Metadata) > 0 {
		b, err := json.Marshal(ev.Metadata)
		if err != nil {
			return nil, fmt.Errorf("audit metadata: %w", err)
		}
		meta = string(b)
	}
	return map[string]any{
		"action":      ev.Action,
		"entity_type": ev.EntityType,
		"entity_id":   ev.EntityID,
		"description": ev.Description,
		"actor_id":    ev.ActorID,
		"actor_role":  ev.ActorRole,
		"occurred_at": ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		"metadata":    meta,
	}, nil
}
