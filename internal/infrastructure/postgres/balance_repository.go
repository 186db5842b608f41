package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `item_id, location_id, quantity, average_cost, version, updated_at`

// Get obtiene el saldo actual; saldo en cero si no hay fila.
func (r *BalanceRepo) Get(ctx context.Context, itemID, locationID string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE item_id = $1 AND location_id = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, itemID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.EmptyBalance(itemID, locationID), nil
		}
		return nil, wrapErr("get balance", err)
	}
	return b, nil
}

// GetForUpdate asegura que la fila exista y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
// Sin el INSERT previo dos transacciones podrían crear el primer saldo del par a la vez.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.Balance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (item_id, location_id, quantity, average_cost, version, updated_at)
		VALUES ($1, $2, 0, 0, 0, now())
		ON CONFLICT (item_id, location_id) DO NOTHING`,
		itemID, locationID,
	)
	if err != nil {
		return nil, wrapErr("ensure balance", err)
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE item_id = $1 AND location_id = $2 FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, itemID, locationID))
	if err != nil {
		return nil, wrapErr("get balance for update", err)
	}
	return b, nil
}

// Save persiste cantidad y costo incrementando la versión.
func (r *BalanceRepo) Save(ctx context.Context, b *entity.Balance) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_balances (item_id, location_id, quantity, average_cost, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, average_cost = EXCLUDED.average_cost,
			version = stock_balances.version + 1, updated_at = EXCLUDED.updated_at
		RETURNING version`,
		b.ItemID, b.LocationID, b.Quantity, b.AverageCost, b.UpdatedAt,
	).Scan(&b.Version)
	if err != nil {
		return wrapErr("save balance", err)
	}
	return nil
}

func (r *BalanceRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.Balance, error) {
	return r.list(ctx, `SELECT `+balanceColumns+` FROM stock_balances WHERE location_id = $1 ORDER BY item_id`, locationID)
}

func (r *BalanceRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.Balance, error) {
	return r.list(ctx, `SELECT `+balanceColumns+` FROM stock_balances WHERE item_id = $1 ORDER BY location_id`, itemID)
}

func (r *BalanceRepo) list(ctx context.Context, query, arg string) ([]*entity.Balance, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, wrapErr("list balances", err)
	}
	defer rows.Close()
	list := []*entity.Balance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, wrapErr("scan balance", err)
		}
		list = append(list, b)
	}
	return list, wrapErr("list balances", rows.Err())
}

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	if err := row.Scan(&b.ItemID, &b.LocationID, &b.Quantity, &b.AverageCost, &b.Version, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
