package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, name, description, unit, unit_size_kg, modules, created_at, updated_at`

// Create persiste un nuevo ítem.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Unit, item.UnitSizeKg, modulesOrEmpty(item.Modules),
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidInput
		}
		return wrapErr("insert item", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID; nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get item", err)
	}
	return item, nil
}

// Update actualiza un ítem existente.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, unit = $4, unit_size_kg = $5, modules = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, item.Unit, item.UnitSizeKg, modulesOrEmpty(item.Modules), item.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// List lista ítems por nombre con paginación.
func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, wrapErr("list items", err)
	}
	defer rows.Close()
	list := []*entity.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, wrapErr("scan item", err)
		}
		list = append(list, item)
	}
	return list, wrapErr("list items", rows.Err())
}

// Delete elimina un ítem sin referencias. Los saldos en cero se limpian; si hay movimientos o
// líneas de solicitud la FK lo impide y se devuelve ReferenceConflictError.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_balances WHERE item_id = $1 AND quantity = 0`, id); err != nil {
		return wrapErr("delete item balances", err)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ReferenceConflictError{ItemID: id, Reason: "tiene movimientos o solicitudes"}
		}
		return wrapErr("delete item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// HasMovements indica si algún asiento referencia el ítem.
func (r *ItemRepo) HasMovements(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE item_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, wrapErr("item has movements", err)
	}
	return exists, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var i entity.Item
	if err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Unit, &i.UnitSizeKg, &i.Modules, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func modulesOrEmpty(m []string) []string {
	if m == nil {
		return []string{}
	}
	return m
}
