package repository

import (
	"context"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// BalanceRepository define el puerto para el saldo por (ítem, ubicación).
// Dentro de una transacción GetForUpdate serializa a los escritores de esa fila.
type BalanceRepository interface {
	// Get devuelve el saldo; saldo en cero si el par nunca tuvo movimientos.
	Get(ctx context.Context, itemID, locationID string) (*entity.Balance, error)
	// GetForUpdate asegura que la fila exista y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.Balance, error)
	// Save persiste cantidad y costo, incrementando la versión.
	Save(ctx context.Context, balance *entity.Balance) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.Balance, error)
	ListByItem(ctx context.Context, itemID string) ([]*entity.Balance, error)
}
