package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/memory"
)

const (
	storeLoc = "loc-store"
	millLoc  = "loc-feed-mill"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newStore(t *testing.T, itemIDs ...string) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for _, id := range itemIDs {
		require.NoError(t, store.Repos().Items.Create(context.Background(), &entity.Item{
			ID:   id,
			Name: "Maize " + id,
			Unit: entity.UnitKG,
		}))
	}
	return store
}

func receipt(itemID, locationID, qty string, cost *decimal.Decimal) inventory.ApplyMovementCommand {
	return inventory.ApplyMovementCommand{
		ItemID:     itemID,
		LocationID: locationID,
		Type:       entity.MovementReceipt,
		Direction:  entity.DirectionIn,
		Quantity:   dec(qty),
		UnitCost:   cost,
		Reference:  entity.Reference{Type: entity.RefProcurementRequest, ID: "po-1"},
	}
}

func usage(itemID, locationID, qty string) inventory.ApplyMovementCommand {
	return inventory.ApplyMovementCommand{
		ItemID:     itemID,
		LocationID: locationID,
		Type:       entity.MovementUsage,
		Direction:  entity.DirectionOut,
		Quantity:   dec(qty),
		Reference:  entity.Reference{Type: entity.RefProductionLog, ID: "batch-1"},
	}
}

func balanceOf(t *testing.T, store *memory.Store, itemID, locationID string) *entity.Balance {
	t.Helper()
	b, err := store.Repos().Balances.Get(context.Background(), itemID, locationID)
	require.NoError(t, err)
	return b
}

func movementsOf(t *testing.T, store *memory.Store, itemID string) []*entity.Movement {
	t.Helper()
	list, err := store.Repos().Movements.List(context.Background(), repository.MovementFilter{ItemID: itemID})
	require.NoError(t, err)
	return list
}

func TestApply_PromedioPonderado(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "100", decPtr("10")))
	require.NoError(t, err)
	res, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "50", decPtr("16")))
	require.NoError(t, err)

	assert.True(t, res.Balance.Quantity.Equal(dec("150")))
	assert.True(t, res.Balance.AverageCost.Equal(dec("12.00")))
	assert.True(t, res.TotalValue.Equal(dec("800")))
	assert.Equal(t, int64(2), res.Balance.Version)

	b := balanceOf(t, store, "maize", storeLoc)
	assert.True(t, b.Quantity.Equal(dec("150")))
	assert.True(t, b.AverageCost.Equal(dec("12")))
}

func TestApply_CantidadInvalida(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	for _, q := range []string{"0", "-5", "0.00001", "3.12345"} {
		_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, q, decPtr("10")))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, q)
	}
	assert.Empty(t, movementsOf(t, store, "maize"))
}

func TestApply_CantidadConMasDeCuatroDecimalesNoToca(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "0.0001", decPtr("10")))
	require.NoError(t, err)

	_, err = applier.Apply(ctx, "u1", usage("maize", storeLoc, "0.00005"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	b := balanceOf(t, store, "maize", storeLoc)
	assert.True(t, b.Quantity.Equal(dec("0.0001")), "saldo %s", b.Quantity)
	assert.Len(t, movementsOf(t, store, "maize"), 1)

	_, err = applier.Apply(ctx, "u1", usage("maize", storeLoc, "0.00010000"))
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, "maize", storeLoc).Quantity.IsZero())
}

func TestApply_StockInsuficienteNoModificaNada(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "10", decPtr("5")))
	require.NoError(t, err)

	_, err = applier.Apply(ctx, "u1", usage("maize", storeLoc, "30"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ins *domain.InsufficientStockError
	require.True(t, errors.As(err, &ins))
	assert.Equal(t, "Maize maize", ins.ItemName)
	assert.Equal(t, entity.LocationStore, ins.LocationCode)
	assert.True(t, ins.Requested.Equal(dec("30")))
	assert.True(t, ins.Available.Equal(dec("10")))
	assert.True(t, ins.Shortfall().Equal(dec("20")))

	assert.True(t, balanceOf(t, store, "maize", storeLoc).Quantity.Equal(dec("10")))
	assert.Len(t, movementsOf(t, store, "maize"), 1)
}

func TestApply_SalidaValoradaAlPromedio(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "100", decPtr("10.50")))
	require.NoError(t, err)
	res, err := applier.Apply(ctx, "u1", usage("maize", storeLoc, "25"))
	require.NoError(t, err)

	assert.True(t, res.TotalValue.Equal(dec("262.50")))
	assert.False(t, res.Movement.UnitCost.Valid)
	assert.True(t, res.Balance.Quantity.Equal(dec("75")))
	assert.True(t, res.Balance.AverageCost.Equal(dec("10.50")))
}

func TestApply_EntradaSinCostoNoCambiaPromedio(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "100", decPtr("10")))
	require.NoError(t, err)
	adj := inventory.ApplyMovementCommand{
		ItemID:     "maize",
		LocationID: storeLoc,
		Type:       entity.MovementAdjustment,
		Direction:  entity.DirectionIn,
		Quantity:   dec("20"),
		Reference:  entity.Reference{Type: entity.RefManualAdjustment, ID: "count-1"},
	}
	res, err := applier.Apply(ctx, "u1", adj)
	require.NoError(t, err)

	assert.True(t, res.Balance.Quantity.Equal(dec("120")))
	assert.True(t, res.Balance.AverageCost.Equal(dec("10")))
	assert.True(t, res.TotalValue.Equal(dec("200")))
}

func TestApply_CorreccionNegativaSegunPolitica(t *testing.T) {
	ctx := context.Background()
	correction := inventory.ApplyMovementCommand{
		ItemID:     "maize",
		LocationID: storeLoc,
		Type:       entity.MovementAdjustment,
		Direction:  entity.DirectionOut,
		Quantity:   dec("5"),
		Reference:  entity.Reference{Type: entity.RefManualAdjustment, ID: "count-2"},
		Correction: true,
	}

	store := newStore(t, "maize")
	strict := inventory.NewMovementApplier(store, inventory.ApplierConfig{})
	_, err := strict.Apply(ctx, "u1", correction)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	lenient := inventory.NewMovementApplier(store, inventory.ApplierConfig{AllowNegativeCorrections: true})
	res, err := lenient.Apply(ctx, "u1", correction)
	require.NoError(t, err)
	assert.True(t, res.Balance.Quantity.Equal(dec("-5")))

	notCorrection := correction
	notCorrection.Correction = false
	_, err = lenient.Apply(ctx, "u1", notCorrection)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	usageCorrection := usage("maize", storeLoc, "1")
	usageCorrection.Correction = true
	_, err = lenient.Apply(ctx, "u1", usageCorrection)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_ValidacionesPrevias(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})

	tests := []struct {
		name string
		cmd  inventory.ApplyMovementCommand
		want error
	}{
		{"ítem inexistente", receipt("ghost", storeLoc, "1", nil), domain.ErrItemNotFound},
		{"ubicación inexistente", receipt("maize", "loc-ghost", "1", nil), domain.ErrLocationNotFound},
		{"dirección incompatible", func() inventory.ApplyMovementCommand {
			c := receipt("maize", storeLoc, "1", nil)
			c.Direction = entity.DirectionOut
			return c
		}(), domain.ErrInvalidInput},
		{"salida con costo", func() inventory.ApplyMovementCommand {
			c := usage("maize", storeLoc, "1")
			c.UnitCost = decPtr("3")
			return c
		}(), domain.ErrInvalidInput},
		{"costo negativo", receipt("maize", storeLoc, "1", decPtr("-1")), domain.ErrInvalidInput},
		{"sin referencia", func() inventory.ApplyMovementCommand {
			c := receipt("maize", storeLoc, "1", nil)
			c.Reference = entity.Reference{}
			return c
		}(), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applier.Apply(ctx, "u1", tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, movementsOf(t, store, "maize"))
}

func TestApply_NoDeduplica(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})
	cmd := receipt("maize", storeLoc, "10", decPtr("2"))

	first, err := applier.Apply(ctx, "u1", cmd)
	require.NoError(t, err)
	second, err := applier.Apply(ctx, "u1", cmd)
	require.NoError(t, err)

	assert.NotEqual(t, first.Movement.ID, second.Movement.ID)
	assert.True(t, balanceOf(t, store, "maize", storeLoc).Quantity.Equal(dec("20")))
}

func TestApply_FallaAlGuardarAsientoRevierteSaldo(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})
	_, err := applier.Apply(ctx, "u1", receipt("maize", storeLoc, "10", decPtr("2")))
	require.NoError(t, err)

	boom := errors.New("disco lleno")
	store.SetFailHook(func(op string, _ any) error {
		if op == memory.OpMovementCreate {
			return boom
		}
		return nil
	})
	_, err = applier.Apply(ctx, "u1", receipt("maize", storeLoc, "5", decPtr("4")))
	require.ErrorIs(t, err, boom)

	b := balanceOf(t, store, "maize", storeLoc)
	assert.True(t, b.Quantity.Equal(dec("10")))
	assert.True(t, b.AverageCost.Equal(dec("2")))
	assert.Len(t, movementsOf(t, store, "maize"), 1)
}

func TestApply_FechaEfectiva(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})
	when := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cmd := receipt("maize", storeLoc, "1", nil)
	cmd.EffectiveAt = &when

	res, err := applier.Apply(ctx, "u1", cmd)
	require.NoError(t, err)
	assert.True(t, res.Movement.EffectiveAt.Equal(when))
	assert.Equal(t, "u1", res.Movement.ActorID)
}

func TestApply_ConservacionSecuenciaAleatoria(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "maize", "soy")
	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{})
	rnd := rand.New(rand.NewSource(42))

	items := []string{"maize", "soy"}
	locs := []string{storeLoc, millLoc}
	expected := map[entity.BalanceKey]decimal.Decimal{}

	for i := 0; i < 300; i++ {
		item := items[rnd.Intn(len(items))]
		loc := locs[rnd.Intn(len(locs))]
		key := entity.BalanceKey{ItemID: item, LocationID: loc}
		qty := decimal.NewFromInt(int64(rnd.Intn(50) + 1)).Div(decimal.NewFromInt(4))

		if rnd.Intn(2) == 0 {
			cost := decimal.NewFromInt(int64(rnd.Intn(2000))).Div(decimal.NewFromInt(100))
			cmd := receipt(item, loc, qty.String(), &cost)
			_, err := applier.Apply(ctx, "u1", cmd)
			require.NoError(t, err)
			expected[key] = expected[key].Add(qty)
			continue
		}
		_, err := applier.Apply(ctx, "u1", usage(item, loc, qty.String()))
		if expected[key].LessThan(qty) {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			continue
		}
		require.NoError(t, err)
		expected[key] = expected[key].Sub(qty)
	}

	for _, item := range items {
		signed := map[string]decimal.Decimal{}
		for _, m := range movementsOf(t, store, item) {
			signed[m.LocationID] = signed[m.LocationID].Add(m.SignedQuantity())
		}
		for _, loc := range locs {
			b := balanceOf(t, store, item, loc)
			want := expected[entity.BalanceKey{ItemID: item, LocationID: loc}]
			assert.True(t, b.Quantity.Equal(want), "%s@%s: %s != %s", item, loc, b.Quantity, want)
			assert.True(t, b.Quantity.Equal(signed[loc]), "%s@%s ledger sum", item, loc)
			assert.False(t, b.Quantity.IsNegative())
			assert.False(t, b.AverageCost.IsNegative())
		}
	}
}
