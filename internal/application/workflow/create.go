package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	inv "github.com/jhoicas/farmstock-api/internal/domain/inventory"
)

// CreateTransfer registra una solicitud de traslado entre dos ubicaciones. No mueve stock.
func (uc *RequestUseCase) CreateTransfer(ctx context.Context, actor auth.Actor, in dto.CreateTransferRequest) (*dto.RequestResponse, error) {
	if in.SourceLocationID == in.DestinationLocationID {
		return nil, domain.ErrInvalidInput
	}
	req := &entity.Request{
		Kind:                  entity.RequestTransfer,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Note:                  in.Note,
	}
	return uc.create(ctx, actor, req, in.Lines)
}

// CreateIssue registra una solicitud de despacho desde una ubicación hacia un módulo consumidor.
func (uc *RequestUseCase) CreateIssue(ctx context.Context, actor auth.Actor, in dto.CreateIssueRequest) (*dto.RequestResponse, error) {
	if !entity.ValidModule(in.ConsumingModule) || in.ConsumingModule == entity.ModuleStore {
		return nil, domain.ErrInvalidInput
	}
	req := &entity.Request{
		Kind:             entity.RequestIssue,
		SourceLocationID: in.SourceLocationID,
		ConsumingModule:  in.ConsumingModule,
		Note:             in.Note,
	}
	return uc.create(ctx, actor, req, in.Lines)
}

// CreateProcurement registra una solicitud de compra con costos estimados por línea.
func (uc *RequestUseCase) CreateProcurement(ctx context.Context, actor auth.Actor, in dto.CreateProcurementRequest) (*dto.RequestResponse, error) {
	req := &entity.Request{
		Kind:                  entity.RequestProcurement,
		DestinationLocationID: in.DestinationLocationID,
		Supplier:              in.Supplier,
		Note:                  in.Note,
	}
	return uc.create(ctx, actor, req, in.Lines)
}

func (uc *RequestUseCase) create(ctx context.Context, actor auth.Actor, req *entity.Request, lines []dto.RequestLineInput) (out *dto.RequestResponse, err error) {
	defer func() { uc.observer.RequestTransition(req.Kind, "create", err) }()

	if err := auth.Authorize(actor, createOp(req.Kind)); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	req.ID = uuid.New().String()
	req.Status = entity.StatusPending
	req.RequestedBy = actor.UserID
	req.CreatedAt = now
	req.UpdatedAt = now
	for i, in := range lines {
		if !inv.ValidQuantity(in.Quantity) {
			return nil, domain.ErrInvalidQuantity
		}
		line := &entity.RequestLine{
			ID:                uuid.New().String(),
			RequestID:         req.ID,
			LineNo:            i + 1,
			ItemID:            in.ItemID,
			RequestedQuantity: in.Quantity,
		}
		if in.EstimatedUnitCost != nil {
			if req.Kind != entity.RequestProcurement || in.EstimatedUnitCost.IsNegative() {
				return nil, domain.ErrInvalidInput
			}
			line.EstimatedUnitCost = decimal.NewNullDecimal(*in.EstimatedUnitCost)
		}
		req.Lines = append(req.Lines, line)
	}

	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		for _, locID := range []string{req.SourceLocationID, req.DestinationLocationID} {
			if locID == "" {
				continue
			}
			loc, err := repos.Locations.GetByID(ctx, locID)
			if err != nil {
				return err
			}
			if loc == nil {
				return domain.ErrLocationNotFound
			}
		}
		for _, l := range req.Lines {
			item, err := repos.Items.GetByID(ctx, l.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrItemNotFound
			}
		}
		return repos.Requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, actor, audit.ActionRequestCreated, req,
		fmt.Sprintf("solicitud de %s creada con %d líneas", req.Kind, len(req.Lines)), nil)
	resp := toRequestResponse(req)
	return &resp, nil
}
