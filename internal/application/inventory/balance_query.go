package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/domain"
	inv "github.com/jhoicas/farmstock-api/internal/domain/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

// BalanceQueryService proyecciones de lectura del libro: saldos, disponibilidad, kárdex y movimientos.
// No toma bloqueos; un saldo leído puede quedar desactualizado antes del despacho.
type BalanceQueryService struct {
	repos Repos
}

// NewBalanceQueryService construye el servicio con repositorios atados al pool.
func NewBalanceQueryService(repos Repos) *BalanceQueryService {
	return &BalanceQueryService{repos: repos}
}

// GetBalance saldo de un par (ítem, ubicación); cero si nunca tuvo movimientos.
func (s *BalanceQueryService) GetBalance(ctx context.Context, actor auth.Actor, itemID, locationID string) (*dto.BalanceResponse, error) {
	if err := auth.Authorize(actor, auth.OpLedgerRead); err != nil {
		return nil, err
	}
	if err := s.checkPair(ctx, itemID, locationID); err != nil {
		return nil, err
	}
	b, err := s.repos.Balances.Get(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	out := toBalanceResponse(b)
	return &out, nil
}

// AvailableForIssue cantidad despachable. No hay reservas: coincide con la existencia.
func (s *BalanceQueryService) AvailableForIssue(ctx context.Context, actor auth.Actor, itemID, locationID string) (*dto.AvailabilityResponse, error) {
	b, err := s.GetBalance(ctx, actor, itemID, locationID)
	if err != nil {
		return nil, err
	}
	available := b.Quantity
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &dto.AvailabilityResponse{
		ItemID:     itemID,
		LocationID: locationID,
		OnHand:     b.Quantity,
		Available:  available,
	}, nil
}

// ListByLocation saldos de todos los ítems en una ubicación.
func (s *BalanceQueryService) ListByLocation(ctx context.Context, actor auth.Actor, locationID string) ([]dto.BalanceResponse, error) {
	if err := auth.Authorize(actor, auth.OpLedgerRead); err != nil {
		return nil, err
	}
	loc, err := s.repos.Locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	list, err := s.repos.Balances.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBalanceResponse(b))
	}
	return out, nil
}

// ListByItem saldos de un ítem en cada ubicación donde tuvo movimientos.
func (s *BalanceQueryService) ListByItem(ctx context.Context, actor auth.Actor, itemID string) ([]dto.BalanceResponse, error) {
	if err := auth.Authorize(actor, auth.OpLedgerRead); err != nil {
		return nil, err
	}
	if err := s.checkItem(ctx, itemID); err != nil {
		return nil, err
	}
	list, err := s.repos.Balances.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBalanceResponse(b))
	}
	return out, nil
}

// ItemTotals cantidad y valor total de un ítem sumando todas las ubicaciones.
func (s *BalanceQueryService) ItemTotals(ctx context.Context, actor auth.Actor, itemID string) (*dto.ItemTotalResponse, error) {
	byLoc, err := s.ListByItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	qty, value := decimal.Zero, decimal.Zero
	for _, b := range byLoc {
		qty = qty.Add(b.Quantity)
		value = value.Add(b.Value)
	}
	return &dto.ItemTotalResponse{
		ItemID:     itemID,
		Quantity:   qty,
		Value:      inv.RoundTo2(value),
		ByLocation: byLoc,
	}, nil
}

// StockCard kárdex de un par en [from, to]: saldo inicial, entradas, salidas y cierre.
func (s *BalanceQueryService) StockCard(ctx context.Context, actor auth.Actor, itemID, locationID string, from, to time.Time) (*dto.StockCardResponse, error) {
	if err := auth.Authorize(actor, auth.OpLedgerRead); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	if err := s.checkPair(ctx, itemID, locationID); err != nil {
		return nil, err
	}
	totals, err := s.repos.Movements.Totals(ctx, itemID, locationID, from, to)
	if err != nil {
		return nil, err
	}
	movs, err := s.repos.Movements.List(ctx, repository.MovementFilter{
		ItemID:     itemID,
		LocationID: locationID,
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return nil, err
	}
	return &dto.StockCardResponse{
		ItemID:     itemID,
		LocationID: locationID,
		From:       from,
		To:         to,
		Opening:    totals.Opening,
		Purchased:  totals.In,
		Used:       totals.Out,
		Closing:    inv.ClosingBalance(totals.Opening, totals.In, totals.Out),
		Movements:  ToMovementResponses(movs),
	}, nil
}

// MovementQuery filtros de listado expuestos al transporte.
type MovementQuery struct {
	ItemID        string
	LocationID    string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Page          dto.PageRequest
}

// ListMovements lista asientos en orden de fecha efectiva ascendente.
func (s *BalanceQueryService) ListMovements(ctx context.Context, actor auth.Actor, q MovementQuery) (*dto.MovementListResponse, error) {
	if err := auth.Authorize(actor, auth.OpLedgerRead); err != nil {
		return nil, err
	}
	q.Page.DefaultPage()
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.ErrInvalidInput
	}
	list, err := s.repos.Movements.List(ctx, repository.MovementFilter{
		ItemID:        q.ItemID,
		LocationID:    q.LocationID,
		ReferenceType: q.ReferenceType,
		ReferenceID:   q.ReferenceID,
		From:          q.From,
		To:            q.To,
		Limit:         q.Page.Limit,
		Offset:        q.Page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: ToMovementResponses(list),
		Page:  dto.PageResponse{Limit: q.Page.Limit, Offset: q.Page.Offset},
	}, nil
}

func (s *BalanceQueryService) checkItem(ctx context.Context, itemID string) error {
	item, err := s.repos.Items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *BalanceQueryService) checkPair(ctx context.Context, itemID, locationID string) error {
	if err := s.checkItem(ctx, itemID); err != nil {
		return err
	}
	loc, err := s.repos.Locations.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrLocationNotFound
	}
	return nil
}
