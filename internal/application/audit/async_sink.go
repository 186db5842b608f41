package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/farmstock-api/pkg/logger"
)

// DropObserver recibe los eventos descartados por cola llena o fallas de publicación.
type DropObserver interface {
	AuditDropped(reason string)
}

// AsyncSink cola acotada + un worker que publica fuera del camino del commit.
// Si la cola está llena el evento se descarta y se registra; Emit nunca bloquea.
type AsyncSink struct {
	queue          chan Event
	publisher      Publisher
	log            *logger.Logger
	observer       DropObserver
	publishTimeout time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewAsyncSink arranca el worker. size es la capacidad de la cola (mínimo 1).
func NewAsyncSink(publisher Publisher, size int, log *logger.Logger, observer DropObserver) *AsyncSink {
	if size < 1 {
		size = 1
	}
	s := &AsyncSink{
		queue:          make(chan Event, size),
		publisher:      publisher,
		log:            log,
		observer:       observer,
		publishTimeout: 5 * time.Second,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Emit encola el evento sin bloquear.
func (s *AsyncSink) Emit(_ context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop(ev, "closed")
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.drop(ev, "queue_full")
	}
}

// Close deja de aceptar eventos y espera a que el worker vacíe la cola o venza ctx.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer s.wg.Done()
	for ev := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		err := s.publisher.Publish(ctx, ev)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).
				Str("action", ev.Action).
				Str("entity_id", ev.EntityID).
				Msg("bitácora: no se pudo publicar el evento")
			if s.observer != nil {
				s.observer.AuditDropped("publish_failed")
			}
		}
	}
}

func (s *AsyncSink) drop(ev Event, reason string) {
	s.log.Warn().
		Str("action", ev.Action).
		Str("entity_id", ev.EntityID).
		Str("reason", reason).
		Msg("bitácora: evento descartado")
	if s.observer != nil {
		s.observer.AuditDropped(reason)
	}
}
