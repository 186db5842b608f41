package repository

import (
	"context"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
	// Delete borra un ítem sin movimientos; si hay referencias devuelve domain.ErrReferenceConflict.
	Delete(ctx context.Context, id string) error
	// HasMovements indica si algún asiento del libro referencia el ítem.
	HasMovements(ctx context.Context, id string) (bool, error)
}
