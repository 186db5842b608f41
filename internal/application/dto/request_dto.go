package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestLineInput línea pedida.
type RequestLineInput struct {
	ItemID            string           `json:"item_id" validate:"required"`
	Quantity          decimal.Decimal  `json:"quantity"`
	EstimatedUnitCost *decimal.Decimal `json:"estimated_unit_cost,omitempty"`
}

// CreateTransferRequest body para POST /api/requests/transfers.
type CreateTransferRequest struct {
	SourceLocationID      string             `json:"source_location_id" validate:"required"`
	DestinationLocationID string             `json:"destination_location_id" validate:"required,nefield=SourceLocationID"`
	Note                  string             `json:"note" validate:"max=500"`
	Lines                 []RequestLineInput `json:"lines" validate:"required,min=1,dive"`
}

// CreateIssueRequest body para POST /api/requests/issues.
type CreateIssueRequest struct {
	SourceLocationID string             `json:"source_location_id" validate:"required"`
	ConsumingModule  string             `json:"consuming_module" validate:"required,oneof=FEED_MILL POULTRY BSF CATFISH"`
	Note             string             `json:"note" validate:"max=500"`
	Lines            []RequestLineInput `json:"lines" validate:"required,min=1,dive"`
}

// CreateProcurementRequest body para POST /api/requests/procurements.
type CreateProcurementRequest struct {
	DestinationLocationID string             `json:"destination_location_id" validate:"required"`
	Supplier              string             `json:"supplier" validate:"max=200"`
	Note                  string             `json:"note" validate:"max=500"`
	Lines                 []RequestLineInput `json:"lines" validate:"required,min=1,dive"`
}

// RejectRequestBody motivo del rechazo.
type RejectRequestBody struct {
	Reason string `json:"reason" validate:"max=500"`
}

// UpdateReceivedLineRequest edición de cantidad/costo recibido de una línea de compra.
type UpdateReceivedLineRequest struct {
	ReceivedQuantity *decimal.Decimal `json:"received_quantity,omitempty"`
	ReceivedUnitCost *decimal.Decimal `json:"received_unit_cost,omitempty"`
}

// RequestLineResponse salida de una línea.
type RequestLineResponse struct {
	ID                string           `json:"id"`
	LineNo            int              `json:"line_no"`
	ItemID            string           `json:"item_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	EstimatedUnitCost *decimal.Decimal `json:"estimated_unit_cost,omitempty"`
	ReceivedQuantity  *decimal.Decimal `json:"received_quantity,omitempty"`
	ReceivedUnitCost  *decimal.Decimal `json:"received_unit_cost,omitempty"`
	FulfilledQuantity *decimal.Decimal `json:"fulfilled_quantity,omitempty"`
	FulfilledUnitCost *decimal.Decimal `json:"fulfilled_unit_cost,omitempty"`
}

// RequestResponse salida de una solicitud con sus líneas.
type RequestResponse struct {
	ID                    string                `json:"id"`
	Kind                  string                `json:"kind"`
	Status                string                `json:"status"`
	SourceLocationID      string                `json:"source_location_id,omitempty"`
	DestinationLocationID string                `json:"destination_location_id,omitempty"`
	ConsumingModule       string                `json:"consuming_module,omitempty"`
	Supplier              string                `json:"supplier,omitempty"`
	Note                  string                `json:"note,omitempty"`
	RequestedBy           string                `json:"requested_by"`
	ApprovedBy            string                `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time            `json:"approved_at,omitempty"`
	RejectedBy            string                `json:"rejected_by,omitempty"`
	RejectedAt            *time.Time            `json:"rejected_at,omitempty"`
	RejectionReason       string                `json:"rejection_reason,omitempty"`
	FulfilledBy           string                `json:"fulfilled_by,omitempty"`
	FulfilledAt           *time.Time            `json:"fulfilled_at,omitempty"`
	Lines                 []RequestLineResponse `json:"lines"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// RequestListResponse lista paginada de solicitudes.
type RequestListResponse struct {
	Items []RequestResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
