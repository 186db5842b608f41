package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementReceipt     = "RECEIPT"
	MovementUsage       = "USAGE"
	MovementAdjustment  = "ADJUSTMENT"
	MovementTransferIn  = "TRANSFER_IN"
	MovementTransferOut = "TRANSFER_OUT"
)

// Dirección del movimiento.
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// Tipos de referencia conocidos. Los módulos de producción usan los suyos propios.
const (
	RefTransferRequest    = "TRANSFER_REQUEST"
	RefIssueRequest       = "ISSUE_REQUEST"
	RefProcurementRequest = "PROCUREMENT_REQUEST"
	RefManualAdjustment   = "MANUAL_ADJUSTMENT"
	RefProductionLog      = "PRODUCTION_LOG"
	RefBSFFeedLog         = "BSF_FEED_LOG"
	RefBSFHarvest         = "BSF_HARVEST"
	RefCatfishHarvest     = "CATFISH_HARVEST"
)

// DirectionAllowed valida la combinación tipo/dirección. ADJUSTMENT admite ambas.
func DirectionAllowed(movementType, direction string) bool {
	switch movementType {
	case MovementReceipt, MovementTransferIn:
		return direction == DirectionIn
	case MovementUsage, MovementTransferOut:
		return direction == DirectionOut
	case MovementAdjustment:
		return direction == DirectionIn || direction == DirectionOut
	}
	return false
}

// Reference enlaza un movimiento con el evento de negocio que lo causó.
type Reference struct {
	Type   string
	ID     string
	LineID string
}

// Movement asiento inmutable del libro. Solo lo crea el aplicador de movimientos;
// las correcciones son nuevos ADJUSTMENT.
type Movement struct {
	ID          string
	ItemID      string
	LocationID  string
	Type        string
	Direction   string
	Quantity    decimal.Decimal     // siempre > 0; el signo lo da Direction
	UnitCost    decimal.NullDecimal // solo en entradas con base de costo
	TotalValue  decimal.Decimal     // cantidad * costo usado para valorar, 2 decimales
	Reference   Reference
	ActorID     string
	Note        string
	EffectiveAt time.Time
	CreatedAt   time.Time
}

// SignedQuantity cantidad con signo según la dirección.
func (m *Movement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
