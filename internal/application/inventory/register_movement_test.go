package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

type memorySink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *memorySink) Emit(_ context.Context, ev audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

var (
	admin       = auth.Actor{UserID: "admin-1", Role: entity.RoleAdmin}
	millManager = auth.Actor{UserID: "mill-1", Role: entity.RoleFeedMillManager}
	accountant  = auth.Actor{UserID: "acc-1", Role: entity.RoleAccountant}
)

func TestRegisterMovement_EmiteBitacora(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	sink := &memorySink{}
	uc := inventory.NewRegisterMovementUseCase(inventory.NewMovementApplier(store, inventory.ApplierConfig{}), sink)

	out, err := uc.RegisterMovementFromRequest(ctx, millManager, dto.ApplyMovementRequest{
		ItemID:        "maize",
		LocationID:    millLoc,
		Type:          entity.MovementReceipt,
		Direction:     entity.DirectionIn,
		Quantity:      dec("40"),
		UnitCost:      decPtr("7.25"),
		ReferenceType: entity.RefProductionLog,
		ReferenceID:   "batch-9",
	})
	require.NoError(t, err)
	assert.True(t, out.Balance.Value.Equal(dec("290")))
	assert.Equal(t, "7.25", out.Movement.UnitCost.String())

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, audit.ActionMovementApplied, ev.Action)
	assert.Equal(t, out.Movement.ID, ev.EntityID)
	assert.Equal(t, "mill-1", ev.ActorID)
	assert.Equal(t, "batch-9", ev.Metadata["reference_id"])
}

func TestRegisterMovement_Autorizacion(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	sink := &memorySink{}
	uc := inventory.NewRegisterMovementUseCase(inventory.NewMovementApplier(store, inventory.ApplierConfig{AllowNegativeCorrections: true}), sink)
	cmd := receipt("maize", storeLoc, "1", nil)

	_, err := uc.RegisterMovement(ctx, auth.Actor{}, cmd)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.RegisterMovement(ctx, accountant, cmd)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	correction := inventory.ApplyMovementCommand{
		ItemID:     "maize",
		LocationID: storeLoc,
		Type:       entity.MovementAdjustment,
		Direction:  entity.DirectionOut,
		Quantity:   dec("2"),
		Reference:  entity.Reference{Type: entity.RefManualAdjustment, ID: "count-1"},
		Correction: true,
	}
	_, err = uc.RegisterMovement(ctx, millManager, correction)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.RegisterMovement(ctx, admin, correction)
	require.NoError(t, err)
	assert.Len(t, sink.events, 1)
}

func TestBalanceQuery_SaldosYKardex(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize", "soy")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})
	q := inventory.NewBalanceQueryService(store.Repos())

	day := func(d int) *time.Time {
		v := time.Date(2026, 5, d, 12, 0, 0, 0, time.UTC)
		return &v
	}
	apply := func(cmd inventory.ApplyMovementCommand, d int) {
		cmd.EffectiveAt = day(d)
		_, err := applier.Apply(ctx, "u1", cmd)
		require.NoError(t, err)
	}
	apply(receipt("maize", storeLoc, "100", decPtr("10")), 1)
	apply(usage("maize", storeLoc, "30"), 3)
	apply(receipt("maize", storeLoc, "50", decPtr("13")), 5)
	apply(usage("maize", storeLoc, "20"), 7)
	apply(receipt("maize", millLoc, "10", decPtr("11")), 7)

	zero, err := q.GetBalance(ctx, accountant, "soy", storeLoc)
	require.NoError(t, err)
	assert.True(t, zero.Quantity.IsZero())

	_, err = q.GetBalance(ctx, accountant, "ghost", storeLoc)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	avail, err := q.AvailableForIssue(ctx, accountant, "maize", storeLoc)
	require.NoError(t, err)
	assert.True(t, avail.Available.Equal(dec("100")))

	totals, err := q.ItemTotals(ctx, accountant, "maize")
	require.NoError(t, err)
	assert.True(t, totals.Quantity.Equal(dec("110")))
	assert.Len(t, totals.ByLocation, 2)

	card, err := q.StockCard(ctx, accountant, "maize", storeLoc, *day(2), *day(6))
	require.NoError(t, err)
	assert.True(t, card.Opening.Equal(dec("100")))
	assert.True(t, card.Purchased.Equal(dec("50")))
	assert.True(t, card.Used.Equal(dec("30")))
	assert.True(t, card.Closing.Equal(dec("120")))
	assert.Len(t, card.Movements, 2)

	_, err = q.StockCard(ctx, accountant, "maize", storeLoc, *day(6), *day(2))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := q.ListMovements(ctx, accountant, inventory.MovementQuery{ItemID: "maize", LocationID: storeLoc})
	require.NoError(t, err)
	require.Len(t, list.Items, 4)
	assert.True(t, list.Items[0].EffectiveAt.Before(list.Items[3].EffectiveAt))
	assert.Equal(t, 50, list.Page.Limit)

	_, err = q.ListByLocation(ctx, auth.Actor{}, storeLoc)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
