package repository

import (
	"context"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// RequestFilter filtros de listado de solicitudes.
type RequestFilter struct {
	Kind   string
	Status string
	Limit  int
	Offset int
}

// RequestRepository puerto de persistencia de solicitudes y sus líneas.
type RequestRepository interface {
	// Create inserta la cabecera y todas las líneas.
	Create(ctx context.Context, request *entity.Request) error
	// GetByID devuelve la solicitud con líneas; nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	// GetForUpdate como GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Request, error)
	// Update persiste estado y campos de aprobación/cumplimiento de la cabecera.
	Update(ctx context.Context, request *entity.Request) error
	// UpdateLine persiste cantidades y costos anotados de una línea.
	UpdateLine(ctx context.Context, line *entity.RequestLine) error
	List(ctx context.Context, filter RequestFilter) ([]*entity.Request, error)
}
