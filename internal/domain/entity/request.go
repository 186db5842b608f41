package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de solicitud.
const (
	RequestTransfer    = "TRANSFER"
	RequestIssue       = "ISSUE"
	RequestProcurement = "PROCUREMENT"
)

// Estados del flujo de solicitudes.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED" // traslado
	StatusIssued    = "ISSUED"    // despacho
	StatusReceived  = "RECEIVED"  // compra
)

// Request solicitud de traslado, despacho o compra con sus líneas.
// Solo cambia por las transiciones del flujo; nunca se borra.
type Request struct {
	ID                    string
	Kind                  string
	Status                string
	SourceLocationID      string // TRANSFER, ISSUE
	DestinationLocationID string // TRANSFER, PROCUREMENT
	ConsumingModule       string // ISSUE
	Supplier              string // PROCUREMENT
	Note                  string
	RequestedBy           string
	ApprovedBy            string
	ApprovedAt            *time.Time
	RejectedBy            string
	RejectedAt            *time.Time
	RejectionReason       string
	FulfilledBy           string
	FulfilledAt           *time.Time
	Lines                 []*RequestLine
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RequestLine ítem y cantidad pedida; al completar se anotan cantidad y costo efectivos.
type RequestLine struct {
	ID                string
	RequestID         string
	LineNo            int
	ItemID            string
	RequestedQuantity decimal.Decimal
	EstimatedUnitCost decimal.NullDecimal // compras: costo cotizado
	ReceivedQuantity  decimal.NullDecimal // compras: editable en PENDING/APPROVED
	ReceivedUnitCost  decimal.NullDecimal // compras: editable en PENDING/APPROVED
	FulfilledQuantity decimal.NullDecimal
	FulfilledUnitCost decimal.NullDecimal
}

// Line busca una línea por ID.
func (r *Request) Line(lineID string) *RequestLine {
	for _, l := range r.Lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}

// ReferenceType tipo de referencia que llevan los movimientos de esta solicitud.
func (r *Request) ReferenceType() string {
	switch r.Kind {
	case RequestTransfer:
		return RefTransferRequest
	case RequestIssue:
		return RefIssueRequest
	case RequestProcurement:
		return RefProcurementRequest
	}
	return ""
}
