package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKey identifica la fila de saldo (único recurso disputado del motor).
type BalanceKey struct {
	ItemID     string
	LocationID string
}

// Less orden determinista para bloquear varias filas sin deadlocks.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.ItemID != o.ItemID {
		return k.ItemID < o.ItemID
	}
	return k.LocationID < o.LocationID
}

// Balance saldo derivado por (ítem, ubicación): cantidad en existencia y costo promedio ponderado.
// Quantity es la suma con signo de todos los movimientos del par.
type Balance struct {
	ItemID      string
	LocationID  string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	Version     int64
	UpdatedAt   time.Time
}

// Key devuelve la clave de la fila.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{ItemID: b.ItemID, LocationID: b.LocationID}
}

// Value valor del saldo al costo promedio actual, redondeado a 2 decimales.
func (b *Balance) Value() decimal.Decimal {
	return b.Quantity.Mul(b.AverageCost).Round(2)
}

// EmptyBalance saldo en cero para un par que nunca tuvo movimientos.
func EmptyBalance(itemID, locationID string) *Balance {
	return &Balance{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero, AverageCost: decimal.Zero}
}
