package usecase

import (
	"context"

	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

// LocationUseCase lectura de ubicaciones y siembra inicial.
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// List devuelve todas las ubicaciones.
func (uc *LocationUseCase) List(ctx context.Context, actor auth.Actor) ([]dto.LocationResponse, error) {
	if err := auth.Authorize(actor, auth.OpItemRead); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLocationResponse(l))
	}
	return out, nil
}

// GetByCode busca una ubicación por código (STORE, FEED_MILL, ...).
func (uc *LocationUseCase) GetByCode(ctx context.Context, actor auth.Actor, code string) (*dto.LocationResponse, error) {
	if err := auth.Authorize(actor, auth.OpItemRead); err != nil {
		return nil, err
	}
	loc, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	out := toLocationResponse(loc)
	return &out, nil
}

// SeedDefaults inserta las ubicaciones por defecto que falten. Idempotente.
func (uc *LocationUseCase) SeedDefaults(ctx context.Context) (int, error) {
	n := 0
	for _, l := range entity.DefaultLocations() {
		loc := l
		if err := uc.repo.Seed(ctx, &loc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func toLocationResponse(l *entity.Location) dto.LocationResponse {
	return dto.LocationResponse{ID: l.ID, Code: l.Code, Name: l.Name}
}
