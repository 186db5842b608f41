package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem.
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"max=1000"`
	Unit        string           `json:"unit" validate:"required,oneof=KG TON LITER BAG BIRD"`
	UnitSizeKg  *decimal.Decimal `json:"unit_size_kg,omitempty"`
	Modules     []string         `json:"modules" validate:"dive,oneof=STORE FEED_MILL POULTRY BSF CATFISH"`
}

// UpdateItemRequest entrada para actualizar un ítem. Unit y UnitSizeKg solo si no tiene movimientos.
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Unit        *string          `json:"unit" validate:"omitempty,oneof=KG TON LITER BAG BIRD"`
	UnitSizeKg  *decimal.Decimal `json:"unit_size_kg,omitempty"`
	Modules     []string         `json:"modules" validate:"omitempty,dive,oneof=STORE FEED_MILL POULTRY BSF CATFISH"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Unit        string           `json:"unit"`
	UnitSizeKg  *decimal.Decimal `json:"unit_size_kg,omitempty"`
	Modules     []string         `json:"modules"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
