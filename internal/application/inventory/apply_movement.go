package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	inv "github.com/jhoicas/farmstock-api/internal/domain/inventory"
)

// ApplyMovementCommand movimiento propuesto, ya con tipos fuertes.
// UnitCost solo en entradas; en TRANSFER_IN es el costo promedio de la ubicación origen.
type ApplyMovementCommand struct {
	ItemID      string
	LocationID  string
	Type        string
	Direction   string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	Reference   entity.Reference
	Note        string
	EffectiveAt *time.Time
	// Correction permite que un ADJUSTMENT de salida deje el saldo negativo,
	// solo si la política AllowNegativeCorrections está activa.
	Correction bool
}

// MovementResult asiento guardado, saldo resultante y valor del movimiento
// (en salidas, cantidad * costo promedio vigente: sirve para costear producción).
type MovementResult struct {
	Movement   *entity.Movement
	Balance    *entity.Balance
	TotalValue decimal.Decimal
}

// ApplierConfig políticas del aplicador.
type ApplierConfig struct {
	AllowNegativeCorrections bool
}

// MovementApplier único punto de escritura del libro: valida, agrega un asiento y actualiza un saldo
// en la misma transacción, con la fila del saldo bloqueada. No deduplica: reaplicar el mismo evento
// produce un segundo asiento distinguible; detectar duplicados es tarea del flujo que llama.
type MovementApplier struct {
	txRunner TxRunner
	cfg      ApplierConfig
	observer Observer
	now      func() time.Time
}

// NewMovementApplier construye el aplicador.
func NewMovementApplier(txRunner TxRunner, cfg ApplierConfig) *MovementApplier {
	return &MovementApplier{
		txRunner: txRunner,
		cfg:      cfg,
		observer: nopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithObserver registra un observador de movimientos confirmados.
func (a *MovementApplier) WithObserver(o Observer) *MovementApplier {
	if o != nil {
		a.observer = o
	}
	return a
}

// Observe notifica movimientos confirmados por una transacción externa (flujos de solicitudes).
func (a *MovementApplier) Observe(results ...*MovementResult) {
	for _, r := range results {
		a.observer.MovementApplied(r.Movement)
	}
}

// Apply aplica un movimiento en su propia transacción.
func (a *MovementApplier) Apply(ctx context.Context, actorID string, cmd ApplyMovementCommand) (*MovementResult, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := a.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		res, err = a.ApplyInTx(ctx, repos, actorID, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.Observe(res)
	return res, nil
}

// ApplyInTx aplica un movimiento usando los repositorios proporcionados (misma transacción del caller).
// Bloquea la fila del saldo (SELECT FOR UPDATE), calcula cantidad y costo y guarda asiento + saldo.
func (a *MovementApplier) ApplyInTx(ctx context.Context, repos Repos, actorID string, cmd ApplyMovementCommand) (*MovementResult, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	item, err := repos.Items.GetByID(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	loc, err := repos.Locations.GetByID(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}

	// Bloquea la fila en stock_balances para evitar condiciones de carrera
	bal, err := repos.Balances.GetForUpdate(ctx, item.ID, loc.ID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	effective := now
	if cmd.EffectiveAt != nil && !cmd.EffectiveAt.IsZero() {
		effective = cmd.EffectiveAt.UTC()
	}
	mov := &entity.Movement{
		ID:          uuid.New().String(),
		ItemID:      item.ID,
		LocationID:  loc.ID,
		Type:        cmd.Type,
		Direction:   cmd.Direction,
		Quantity:    cmd.Quantity,
		Reference:   cmd.Reference,
		ActorID:     actorID,
		Note:        cmd.Note,
		EffectiveAt: effective,
		CreatedAt:   now,
	}

	switch cmd.Direction {
	case entity.DirectionIn:
		if cmd.UnitCost != nil {
			unitCost := *cmd.UnitCost
			bal.AverageCost = inv.NewWeightedAverage(bal.Quantity, bal.AverageCost, cmd.Quantity, unitCost)
			mov.UnitCost = decimal.NewNullDecimal(unitCost)
			mov.TotalValue = inv.MovementValue(cmd.Quantity, unitCost)
		} else {
			// Devoluciones y ajustes sin base de costo: el promedio no cambia.
			mov.TotalValue = inv.MovementValue(cmd.Quantity, bal.AverageCost)
		}
		bal.Quantity = bal.Quantity.Add(cmd.Quantity)
	case entity.DirectionOut:
		remaining := bal.Quantity.Sub(cmd.Quantity)
		if remaining.IsNegative() && !a.negativeAllowed(cmd) {
			return nil, &domain.InsufficientStockError{
				ItemID:       item.ID,
				ItemName:     item.Name,
				LocationID:   loc.ID,
				LocationCode: loc.Code,
				Requested:    cmd.Quantity,
				Available:    bal.Quantity,
			}
		}
		// Salida al costo promedio vigente, sin recalcularlo.
		mov.TotalValue = inv.MovementValue(cmd.Quantity, bal.AverageCost)
		bal.Quantity = remaining
	}
	bal.UpdatedAt = now

	if err := repos.Balances.Save(ctx, bal); err != nil {
		return nil, err
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mov, Balance: bal, TotalValue: mov.TotalValue}, nil
}

func (a *MovementApplier) negativeAllowed(cmd ApplyMovementCommand) bool {
	return cmd.Type == entity.MovementAdjustment && cmd.Correction && a.cfg.AllowNegativeCorrections
}

func validateCommand(cmd ApplyMovementCommand) error {
	if !inv.ValidQuantity(cmd.Quantity) {
		return domain.ErrInvalidQuantity
	}
	if cmd.ItemID == "" {
		return domain.ErrItemNotFound
	}
	if cmd.LocationID == "" {
		return domain.ErrLocationNotFound
	}
	if !entity.DirectionAllowed(cmd.Type, cmd.Direction) {
		return domain.ErrInvalidInput
	}
	if cmd.Reference.Type == "" || cmd.Reference.ID == "" {
		return domain.ErrInvalidInput
	}
	if cmd.UnitCost != nil {
		if cmd.Direction != entity.DirectionIn || cmd.UnitCost.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	if cmd.Correction && cmd.Type != entity.MovementAdjustment {
		return domain.ErrInvalidInput
	}
	return nil
}
