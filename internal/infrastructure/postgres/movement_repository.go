package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT; el trigger de la tabla
// rechaza UPDATE y DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, location_id, type, direction, quantity, unit_cost, total_value,
	reference_type, reference_id, reference_line_id, actor_id, note, effective_at, created_at`

// Create agrega un asiento al libro.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, m.LocationID, m.Type, m.Direction, m.Quantity, m.UnitCost, m.TotalValue,
		m.Reference.Type, m.Reference.ID, m.Reference.LineID, m.ActorID, m.Note, m.EffectiveAt, m.CreatedAt,
	)
	if err != nil {
		return wrapErr("create movement", err)
	}
	return nil
}

// GetByID obtiene un asiento; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get movement", err)
	}
	return m, nil
}

// List lista asientos en orden de fecha efectiva, luego de registro.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, v)
		pos++
	}
	if f.ItemID != "" {
		add("item_id = $%d", f.ItemID)
	}
	if f.LocationID != "" {
		add("location_id = $%d", f.LocationID)
	}
	if f.ReferenceType != "" {
		add("reference_type = $%d", f.ReferenceType)
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("effective_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("effective_at <= $%d", *f.To)
	}
	query += " ORDER BY effective_at, created_at, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrapErr("scan movement", err)
		}
		list = append(list, m)
	}
	return list, wrapErr("list movements", rows.Err())
}

// Totals saldo de apertura antes de from y entradas/salidas en [from, to].
func (r *MovementRepo) Totals(ctx context.Context, itemID, locationID string, from, to time.Time) (repository.MovementTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN effective_at < $3 THEN
				CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END END), 0),
			COALESCE(SUM(CASE WHEN effective_at >= $3 AND effective_at <= $4 AND direction = 'IN' THEN quantity END), 0),
			COALESCE(SUM(CASE WHEN effective_at >= $3 AND effective_at <= $4 AND direction = 'OUT' THEN quantity END), 0)
		FROM stock_movements
		WHERE item_id = $1 AND location_id = $2`
	var t repository.MovementTotals
	if err := r.q.QueryRow(ctx, query, itemID, locationID, from, to).Scan(&t.Opening, &t.In, &t.Out); err != nil {
		return repository.MovementTotals{Opening: decimal.Zero, In: decimal.Zero, Out: decimal.Zero}, wrapErr("movement totals", err)
	}
	return t, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.ItemID, &m.LocationID, &m.Type, &m.Direction, &m.Quantity, &m.UnitCost, &m.TotalValue,
		&m.Reference.Type, &m.Reference.ID, &m.Reference.LineID, &m.ActorID, &m.Note, &m.EffectiveAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
