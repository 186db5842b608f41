package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo ubicaciones sembradas.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT id, code, name, created_at FROM locations WHERE id = $1`, id)
}

func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT id, code, name, created_at FROM locations WHERE code = $1`, code)
}

func (r *LocationRepo) getOne(ctx context.Context, query, arg string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, query, arg).Scan(&l.ID, &l.Code, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get location", err)
	}
	return &l, nil
}

func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, name, created_at FROM locations ORDER BY code`)
	if err != nil {
		return nil, wrapErr("list locations", err)
	}
	defer rows.Close()
	list := []*entity.Location{}
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.CreatedAt); err != nil {
			return nil, wrapErr("scan location", err)
		}
		list = append(list, &l)
	}
	return list, wrapErr("list locations", rows.Err())
}

// Seed inserta la ubicación si su código no existe.
func (r *LocationRepo) Seed(ctx context.Context, loc *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, code, name, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (code) DO NOTHING`,
		loc.ID, loc.Code, loc.Name,
	)
	return wrapErr("seed location", err)
}
