package repository

import (
	"context"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// LocationRepository puerto de lectura de ubicaciones (dato sembrado).
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
	// Seed inserta la ubicación si su código no existe. Solo lo usa cmd/seed.
	Seed(ctx context.Context, loc *entity.Location) error
}
