package inventory

import (
	"context"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Items     repository.ItemRepository
	Locations repository.LocationRepository
	Balances  repository.BalanceRepository
	Movements repository.MovementRepository
	Requests  repository.RequestRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso. Garantiza atomicidad del motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// Observer recibe los movimientos ya confirmados (métricas).
type Observer interface {
	MovementApplied(m *entity.Movement)
}

type nopObserver struct{}

func (nopObserver) MovementApplied(*entity.Movement) {}
