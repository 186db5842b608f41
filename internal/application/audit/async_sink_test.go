package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
	block  chan struct{}
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev audit.Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type dropCounter struct {
	mu      sync.Mutex
	reasons []string
}

func (d *dropCounter) AuditDropped(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reasons = append(d.reasons, reason)
}

func (d *dropCounter) all() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.reasons...)
}

func TestAsyncSink_EntregaYVaciaAlCerrar(t *testing.T) {
	pub := &recordingPublisher{}
	sink := audit.NewAsyncSink(pub, 16, logger.NewNop(), nil)

	for i := 0; i < 5; i++ {
		sink.Emit(context.Background(), audit.Event{Action: audit.ActionRequestCreated, EntityID: "r"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
	assert.Equal(t, 5, pub.count())
	assert.False(t, pub.events[0].OccurredAt.IsZero(), "OccurredAt debe completarse")
}

func TestAsyncSink_ColaLlenaNoBloquea(t *testing.T) {
	pub := &recordingPublisher{block: make(chan struct{})}
	drops := &dropCounter{}
	sink := audit.NewAsyncSink(pub, 1, logger.NewNop(), drops)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			sink.Emit(context.Background(), audit.Event{Action: audit.ActionMovementApplied})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit bloqueó con la cola llena")
	}
	close(pub.block)
	require.NoError(t, sink.Close(context.Background()))

	assert.NotEmpty(t, drops.all())
	assert.Equal(t, 10, pub.count()+len(drops.all()))
}

func TestAsyncSink_FallaDePublicacionSeRegistra(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis caído")}
	drops := &dropCounter{}
	sink := audit.NewAsyncSink(pub, 4, logger.NewNop(), drops)
	sink.Emit(context.Background(), audit.Event{Action: audit.ActionItemCreated})
	require.NoError(t, sink.Close(context.Background()))
	assert.Equal(t, []string{"publish_failed"}, drops.all())
}

func TestAsyncSink_EmitDespuesDeCerrar(t *testing.T) {
	drops := &dropCounter{}
	sink := audit.NewAsyncSink(&recordingPublisher{}, 4, logger.NewNop(), drops)
	require.NoError(t, sink.Close(context.Background()))
	sink.Emit(context.Background(), audit.Event{Action: audit.ActionItemCreated})
	assert.Equal(t, []string{"closed"}, drops.all())
}
