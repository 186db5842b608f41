package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// MovementFilter filtros de listado del libro. Campos vacíos no filtran.
type MovementFilter struct {
	ItemID        string
	LocationID    string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// MovementTotals sumas del libro para un par (ítem, ubicación) en un rango de fechas.
type MovementTotals struct {
	Opening decimal.Decimal // suma con signo antes de From
	In      decimal.Decimal // entradas en [From, To]
	Out     decimal.Decimal // salidas en [From, To]
}

// MovementRepository define el puerto del libro de movimientos. Solo agrega; no hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	Totals(ctx context.Context, itemID, locationID string, from, to time.Time) (MovementTotals, error)
}
