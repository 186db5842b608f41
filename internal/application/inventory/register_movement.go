package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

// RegisterMovementUseCase registra movimientos directos (producción, ajustes manuales) validando rol
// y emitiendo la bitácora tras el commit.
type RegisterMovementUseCase struct {
	applier *MovementApplier
	sink    audit.Sink
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(applier *MovementApplier, sink audit.Sink) *RegisterMovementUseCase {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &RegisterMovementUseCase{applier: applier, sink: sink}
}

// RegisterMovement aplica un movimiento a nombre del actor.
// Las correcciones que pueden dejar saldo negativo requieren además el permiso de corrección.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, actor auth.Actor, cmd ApplyMovementCommand) (*dto.ApplyMovementResponse, error) {
	if err := auth.Authorize(actor, auth.OpMovementApply); err != nil {
		return nil, err
	}
	if cmd.Correction {
		if err := auth.Authorize(actor, auth.OpMovementCorrection); err != nil {
			return nil, err
		}
	}
	res, err := uc.applier.Apply(ctx, actor.UserID, cmd)
	if err != nil {
		return nil, err
	}
	m := res.Movement
	uc.sink.Emit(ctx, audit.Event{
		Action:      audit.ActionMovementApplied,
		EntityType:  "movement",
		EntityID:    m.ID,
		Description: fmt.Sprintf("%s %s %s de %s en %s", m.Type, m.Direction, m.Quantity.String(), m.ItemID, m.LocationID),
		Metadata: map[string]any{
			"reference_type": m.Reference.Type,
			"reference_id":   m.Reference.ID,
			"total_value":    m.TotalValue.String(),
		},
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		OccurredAt: m.CreatedAt,
	})
	out := &dto.ApplyMovementResponse{
		Movement:   toMovementResponse(m),
		Balance:    toBalanceResponse(res.Balance),
		TotalValue: res.TotalValue,
	}
	return out, nil
}

// RegisterMovementFromRequest adapta el request HTTP al comando del aplicador.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, actor auth.Actor, in dto.ApplyMovementRequest) (*dto.ApplyMovementResponse, error) {
	return uc.RegisterMovement(ctx, actor, CommandFromRequest(in))
}

// CommandFromRequest convierte el DTO de entrada en comando.
func CommandFromRequest(in dto.ApplyMovementRequest) ApplyMovementCommand {
	var effective *time.Time
	if in.EffectiveAt != nil {
		t := in.EffectiveAt.UTC()
		effective = &t
	}
	return ApplyMovementCommand{
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		Type:       in.Type,
		Direction:  in.Direction,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Reference: entity.Reference{
			Type:   in.ReferenceType,
			ID:     in.ReferenceID,
			LineID: in.ReferenceLineID,
		},
		Note:        in.Note,
		EffectiveAt: effective,
		Correction:  in.Correction,
	}
}
