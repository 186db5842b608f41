package workflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	inv "github.com/jhoicas/farmstock-api/internal/domain/inventory"
)

// Approve PENDING -> APPROVED.
func (uc *RequestUseCase) Approve(ctx context.Context, actor auth.Actor, requestID string) (*dto.RequestResponse, error) {
	req, err := uc.transition(ctx, actor, requestID, inv.TransitionApprove, approveOp, func(req *entity.Request) {
		at := req.UpdatedAt
		req.ApprovedBy = actor.UserID
		req.ApprovedAt = &at
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, actor, audit.ActionRequestApproved, req, fmt.Sprintf("solicitud de %s aprobada", req.Kind), nil)
	out := toRequestResponse(req)
	return &out, nil
}

// Reject PENDING -> REJECTED con motivo.
func (uc *RequestUseCase) Reject(ctx context.Context, actor auth.Actor, requestID, reason string) (*dto.RequestResponse, error) {
	req, err := uc.transition(ctx, actor, requestID, inv.TransitionReject, approveOp, func(req *entity.Request) {
		at := req.UpdatedAt
		req.RejectedBy = actor.UserID
		req.RejectedAt = &at
		req.RejectionReason = reason
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, actor, audit.ActionRequestRejected, req, fmt.Sprintf("solicitud de %s rechazada", req.Kind),
		map[string]any{"reason": reason})
	out := toRequestResponse(req)
	return &out, nil
}

// transition bloquea la cabecera, autoriza según el tipo y cambia de estado sin mover stock.
func (uc *RequestUseCase) transition(
	ctx context.Context,
	actor auth.Actor,
	requestID, transition string,
	opFor func(kind string) string,
	apply func(req *entity.Request),
) (*entity.Request, error) {
	if actor.UserID == "" || actor.Role == "" {
		return nil, domain.ErrUnauthorized
	}
	var req *entity.Request
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		req, err = repos.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := auth.Authorize(actor, opFor(req.Kind)); err != nil {
			return err
		}
		next, err := inv.NextStatus(req, transition)
		if err != nil {
			return err
		}
		req.Status = next
		req.UpdatedAt = uc.now()
		apply(req)
		return repos.Requests.Update(ctx, req)
	})
	kind := ""
	if req != nil {
		kind = req.Kind
	}
	uc.observer.RequestTransition(kind, transition, err)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateReceivedLine edita cantidad y costo recibidos de una línea de compra mientras la solicitud
// está PENDING o APPROVED. Una cantidad recibida 0 hace que la línea no se asiente.
func (uc *RequestUseCase) UpdateReceivedLine(ctx context.Context, actor auth.Actor, requestID, lineID string, in dto.UpdateReceivedLineRequest) (*dto.RequestResponse, error) {
	if err := auth.Authorize(actor, auth.OpProcurementEditLines); err != nil {
		return nil, err
	}
	if in.ReceivedQuantity == nil && in.ReceivedUnitCost == nil {
		return nil, domain.ErrInvalidInput
	}
	if in.ReceivedQuantity != nil && !in.ReceivedQuantity.IsZero() && !inv.ValidQuantity(*in.ReceivedQuantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if in.ReceivedUnitCost != nil && in.ReceivedUnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var req *entity.Request
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		req, err = repos.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Kind != entity.RequestProcurement {
			return domain.ErrInvalidInput
		}
		if _, err := inv.NextStatus(req, inv.TransitionEditLines); err != nil {
			return err
		}
		line := req.Line(lineID)
		if line == nil {
			return domain.ErrNotFound
		}
		if in.ReceivedQuantity != nil {
			line.ReceivedQuantity = decimal.NewNullDecimal(*in.ReceivedQuantity)
		}
		if in.ReceivedUnitCost != nil {
			line.ReceivedUnitCost = decimal.NewNullDecimal(*in.ReceivedUnitCost)
		}
		if err := repos.Requests.UpdateLine(ctx, line); err != nil {
			return err
		}
		req.UpdatedAt = uc.now()
		return repos.Requests.Update(ctx, req)
	})
	uc.observer.RequestTransition(entity.RequestProcurement, inv.TransitionEditLines, err)
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, actor, audit.ActionRequestLineUpdated, req, "línea de compra actualizada",
		map[string]any{"line_id": lineID})
	out := toRequestResponse(req)
	return &out, nil
}
