package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo solicitudes y sus líneas sobre PostgreSQL (usable con pool o tx).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

const requestColumns = `id, kind, status, source_location_id, destination_location_id, consuming_module, supplier, note,
	requested_by, approved_by, approved_at, rejected_by, rejected_at, rejection_reason, fulfilled_by, fulfilled_at,
	created_at, updated_at`

const lineColumns = `id, request_id, line_no, item_id, requested_quantity, estimated_unit_cost,
	received_quantity, received_unit_cost, fulfilled_quantity, fulfilled_unit_cost`

// Create inserta cabecera y líneas. Llamar dentro de una tx para que sea atómico.
func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	query := `
		INSERT INTO stock_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.Kind, req.Status, nullString(req.SourceLocationID), nullString(req.DestinationLocationID),
		req.ConsumingModule, req.Supplier, req.Note,
		req.RequestedBy, req.ApprovedBy, req.ApprovedAt, req.RejectedBy, req.RejectedAt, req.RejectionReason,
		req.FulfilledBy, req.FulfilledAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrLocationNotFound
		}
		return wrapErr("create request", err)
	}
	for _, l := range req.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_request_lines (`+lineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.ID, req.ID, l.LineNo, l.ItemID, l.RequestedQuantity, l.EstimatedUnitCost,
			l.ReceivedQuantity, l.ReceivedUnitCost, l.FulfilledQuantity, l.FulfilledUnitCost,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrItemNotFound
			}
			return wrapErr("create request line", err)
		}
	}
	return nil
}

// GetByID devuelve la solicitud con sus líneas; nil si no existe.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	return r.get(ctx, id, true)
}

func (r *RequestRepo) get(ctx context.Context, id string, lock bool) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM stock_requests WHERE id = $1`
	if lock {
		query += " FOR UPDATE"
	}
	req, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get request", err)
	}
	if req.Lines, err = r.lines(ctx, req.ID); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *RequestRepo) lines(ctx context.Context, requestID string) ([]*entity.RequestLine, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM stock_request_lines WHERE request_id = $1 ORDER BY line_no`, requestID)
	if err != nil {
		return nil, wrapErr("list request lines", err)
	}
	defer rows.Close()
	list := []*entity.RequestLine{}
	for rows.Next() {
		var l entity.RequestLine
		if err := rows.Scan(
			&l.ID, &l.RequestID, &l.LineNo, &l.ItemID, &l.RequestedQuantity, &l.EstimatedUnitCost,
			&l.ReceivedQuantity, &l.ReceivedUnitCost, &l.FulfilledQuantity, &l.FulfilledUnitCost,
		); err != nil {
			return nil, wrapErr("scan request line", err)
		}
		list = append(list, &l)
	}
	return list, wrapErr("list request lines", rows.Err())
}

// Update persiste estado y campos de aprobación/rechazo/cumplimiento. Las líneas van por UpdateLine.
func (r *RequestRepo) Update(ctx context.Context, req *entity.Request) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_requests SET status = $2, note = $3, approved_by = $4, approved_at = $5,
			rejected_by = $6, rejected_at = $7, rejection_reason = $8, fulfilled_by = $9, fulfilled_at = $10,
			updated_at = $11
		WHERE id = $1`,
		req.ID, req.Status, req.Note, req.ApprovedBy, req.ApprovedAt,
		req.RejectedBy, req.RejectedAt, req.RejectionReason, req.FulfilledBy, req.FulfilledAt, req.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update request", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("solicitud %s: %w", req.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateLine persiste cantidades y costos anotados de una línea.
func (r *RequestRepo) UpdateLine(ctx context.Context, l *entity.RequestLine) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_request_lines SET received_quantity = $2, received_unit_cost = $3,
			fulfilled_quantity = $4, fulfilled_unit_cost = $5
		WHERE id = $1`,
		l.ID, l.ReceivedQuantity, l.ReceivedUnitCost, l.FulfilledQuantity, l.FulfilledUnitCost,
	)
	if err != nil {
		return wrapErr("update request line", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("línea %s: %w", l.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista solicitudes, las más recientes primero, con sus líneas.
func (r *RequestRepo) List(ctx context.Context, f repository.RequestFilter) ([]*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM stock_requests WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, f.Kind)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	query += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list requests", err)
	}
	list := []*entity.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, wrapErr("scan request", err)
		}
		list = append(list, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list requests", err)
	}
	// Las líneas se cargan después de cerrar rows: una tx de pgx no admite dos consultas abiertas.
	for _, req := range list {
		if req.Lines, err = r.lines(ctx, req.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var req entity.Request
	var source, destination *string
	err := row.Scan(
		&req.ID, &req.Kind, &req.Status, &source, &destination, &req.ConsumingModule, &req.Supplier, &req.Note,
		&req.RequestedBy, &req.ApprovedBy, &req.ApprovedAt, &req.RejectedBy, &req.RejectedAt, &req.RejectionReason,
		&req.FulfilledBy, &req.FulfilledAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if source != nil {
		req.SourceLocationID = *source
	}
	if destination != nil {
		req.DestinationLocationID = *destination
	}
	return &req, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
