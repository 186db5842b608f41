package workflow

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
)

func nullPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toRequestResponse(r *entity.Request) dto.RequestResponse {
	lines := make([]dto.RequestLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, dto.RequestLineResponse{
			ID:                l.ID,
			LineNo:            l.LineNo,
			ItemID:            l.ItemID,
			RequestedQuantity: l.RequestedQuantity,
			EstimatedUnitCost: nullPtr(l.EstimatedUnitCost),
			ReceivedQuantity:  nullPtr(l.ReceivedQuantity),
			ReceivedUnitCost:  nullPtr(l.ReceivedUnitCost),
			FulfilledQuantity: nullPtr(l.FulfilledQuantity),
			FulfilledUnitCost: nullPtr(l.FulfilledUnitCost),
		})
	}
	return dto.RequestResponse{
		ID:                    r.ID,
		Kind:                  r.Kind,
		Status:                r.Status,
		SourceLocationID:      r.SourceLocationID,
		DestinationLocationID: r.DestinationLocationID,
		ConsumingModule:       r.ConsumingModule,
		Supplier:              r.Supplier,
		Note:                  r.Note,
		RequestedBy:           r.RequestedBy,
		ApprovedBy:            r.ApprovedBy,
		ApprovedAt:            r.ApprovedAt,
		RejectedBy:            r.RejectedBy,
		RejectedAt:            r.RejectedAt,
		RejectionReason:       r.RejectionReason,
		FulfilledBy:           r.FulfilledBy,
		FulfilledAt:           r.FulfilledAt,
		Lines:                 lines,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
