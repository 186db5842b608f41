package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/inventory/movements (módulos de producción y ajustes).
type ApplyMovementRequest struct {
	ItemID          string           `json:"item_id" validate:"required"`
	LocationID      string           `json:"location_id" validate:"required"`
	Type            string           `json:"type" validate:"required,oneof=RECEIPT USAGE ADJUSTMENT TRANSFER_IN TRANSFER_OUT"`
	Direction       string           `json:"direction" validate:"required,oneof=IN OUT"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType   string           `json:"reference_type" validate:"required,max=50"`
	ReferenceID     string           `json:"reference_id" validate:"required,max=100"`
	ReferenceLineID string           `json:"reference_line_id,omitempty" validate:"max=100"`
	Note            string           `json:"note,omitempty" validate:"max=500"`
	EffectiveAt     *time.Time       `json:"effective_at,omitempty"`
	Correction      bool             `json:"correction,omitempty"`
}

// MovementResponse asiento del libro.
type MovementResponse struct {
	ID              string           `json:"id"`
	ItemID          string           `json:"item_id"`
	LocationID      string           `json:"location_id"`
	Type            string           `json:"type"`
	Direction       string           `json:"direction"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	TotalValue      decimal.Decimal  `json:"total_value"`
	ReferenceType   string           `json:"reference_type"`
	ReferenceID     string           `json:"reference_id"`
	ReferenceLineID string           `json:"reference_line_id,omitempty"`
	ActorID         string           `json:"actor_id"`
	Note            string           `json:"note,omitempty"`
	EffectiveAt     time.Time        `json:"effective_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse saldo por (ítem, ubicación).
type BalanceResponse struct {
	ItemID      string          `json:"item_id"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Value       decimal.Decimal `json:"value"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ApplyMovementResponse resultado del aplicador: asiento, saldo resultante y valor del movimiento.
type ApplyMovementResponse struct {
	Movement   MovementResponse `json:"movement"`
	Balance    BalanceResponse  `json:"balance"`
	TotalValue decimal.Decimal  `json:"total_value"`
}

// AvailabilityResponse disponible para despachar (sin reservas: igual a la existencia).
type AvailabilityResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	Available  decimal.Decimal `json:"available"`
}

// ItemTotalResponse totales de un ítem en todas las ubicaciones.
type ItemTotalResponse struct {
	ItemID     string            `json:"item_id"`
	Quantity   decimal.Decimal   `json:"quantity"`
	Value      decimal.Decimal   `json:"value"`
	ByLocation []BalanceResponse `json:"by_location"`
}

// StockCardResponse kárdex de un par (ítem, ubicación) en un rango.
type StockCardResponse struct {
	ItemID     string             `json:"item_id"`
	LocationID string             `json:"location_id"`
	From       time.Time          `json:"from"`
	To         time.Time          `json:"to"`
	Opening    decimal.Decimal    `json:"opening"`
	Purchased  decimal.Decimal    `json:"purchased"`
	Used       decimal.Decimal    `json:"used"`
	Closing    decimal.Decimal    `json:"closing"`
	Movements  []MovementResponse `json:"movements"`
}
