package inventory

import (
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		LocationID:      m.LocationID,
		Type:            m.Type,
		Direction:       m.Direction,
		Quantity:        m.Quantity,
		TotalValue:      m.TotalValue,
		ReferenceType:   m.Reference.Type,
		ReferenceID:     m.Reference.ID,
		ReferenceLineID: m.Reference.LineID,
		ActorID:         m.ActorID,
		Note:            m.Note,
		EffectiveAt:     m.EffectiveAt,
		CreatedAt:       m.CreatedAt,
	}
	if m.UnitCost.Valid {
		c := m.UnitCost.Decimal
		out.UnitCost = &c
	}
	return out
}

func toBalanceResponse(b *entity.Balance) dto.BalanceResponse {
	return dto.BalanceResponse{
		ItemID:      b.ItemID,
		LocationID:  b.LocationID,
		Quantity:    b.Quantity,
		AverageCost: b.AverageCost,
		Value:       b.Value(),
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToMovementResponses mapea asientos a DTO (usado también por los flujos de solicitudes).
func ToMovementResponses(list []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

// ToBalanceResponse mapea un saldo a DTO.
func ToBalanceResponse(b *entity.Balance) dto.BalanceResponse {
	return toBalanceResponse(b)
}
