package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP del libro: movimientos, saldos y kárdex (protegido).
type InventoryHandler struct {
	uc       *inventory.RegisterMovementUseCase
	balances *inventory.BalanceQueryService
	retry    transientRetry
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, balances *inventory.BalanceQueryService, retries int) *InventoryHandler {
	return &InventoryHandler{uc: uc, balances: balances, retry: newTransientRetry(retries)}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entrada para los módulos de producción y los ajustes manuales. Cada llamada agrega un asiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "item_id, location_id, type, direction, quantity, unit_cost (entradas), referencia"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	var out *dto.ApplyMovementResponse
	err := h.retry.do(c.UserContext(), func(ctx context.Context) (err error) {
		out, err = h.uc.RegisterMovementFromRequest(ctx, actorFrom(c), in)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id         query  string  false  "Ítem"
// @Param        location_id     query  string  false  "Ubicación"
// @Param        reference_type  query  string  false  "Tipo de referencia"
// @Param        reference_id    query  string  false  "ID de referencia"
// @Param        from            query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to              query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c, err)
	}
	if err := dto.Validate(page); err != nil {
		return respondError(c, err)
	}
	from, err := queryTime(c, "from", false)
	if err != nil {
		return respondError(c, err)
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.balances.ListMovements(c.UserContext(), actorFrom(c), inventory.MovementQuery{
		ItemID:        c.Query("item_id"),
		LocationID:    c.Query("location_id"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		From:          from,
		To:            to,
		Page:          page,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Saldo de un ítem en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId      path  string  true  "Ítem"
// @Param        locationId  path  string  true  "Ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{itemId}/{locationId} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	out, err := h.balances.GetBalance(c.UserContext(), actorFrom(c), c.Params("itemId"), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Cantidad disponible para despachar
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId      path  string  true  "Ítem"
// @Param        locationId  path  string  true  "Ubicación"
// @Success      200  {object}  dto.AvailabilityResponse
// @Router       /api/inventory/availability/{itemId}/{locationId} [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	out, err := h.balances.AvailableForIssue(c.UserContext(), actorFrom(c), c.Params("itemId"), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByLocation godoc
// @Summary      Saldos de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        locationId  path  string  true  "Ubicación"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/locations/{locationId}/balances [get]
func (h *InventoryHandler) ListByLocation(c *fiber.Ctx) error {
	out, err := h.balances.ListByLocation(c.UserContext(), actorFrom(c), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByItem godoc
// @Summary      Saldos de un ítem por ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId  path  string  true  "Ítem"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/items/{itemId}/balances [get]
func (h *InventoryHandler) ListByItem(c *fiber.Ctx) error {
	out, err := h.balances.ListByItem(c.UserContext(), actorFrom(c), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ItemTotals godoc
// @Summary      Totales de un ítem en todas las ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId  path  string  true  "Ítem"
// @Success      200  {object}  dto.ItemTotalResponse
// @Router       /api/inventory/items/{itemId}/totals [get]
func (h *InventoryHandler) ItemTotals(c *fiber.Ctx) error {
	out, err := h.balances.ItemTotals(c.UserContext(), actorFrom(c), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StockCard godoc
// @Summary      Kárdex de un ítem en una ubicación
// @Description  Apertura, compras, consumos y cierre en el rango. Por defecto los últimos 30 días.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true   "Ítem"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        from         query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to           query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200  {object}  dto.StockCardResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-card [get]
func (h *InventoryHandler) StockCard(c *fiber.Ctx) error {
	from, err := queryTime(c, "from", false)
	if err != nil {
		return respondError(c, err)
	}
	to, err := queryTime(c, "to", true)
	if err != nil {
		return respondError(c, err)
	}
	end := time.Now().UTC()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	out, err := h.balances.StockCard(c.UserContext(), actorFrom(c), c.Query("item_id"), c.Query("location_id"), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// queryTime acepta RFC3339 o fecha YYYY-MM-DD. Con endOfDay una fecha sola cubre el día completo.
func queryTime(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser RFC3339 o YYYY-MM-DD", domain.ErrInvalidInput, name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
