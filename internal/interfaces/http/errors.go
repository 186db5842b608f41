package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/domain"
)

// respondError traduce errores de dominio a status y cuerpo. El error queda en Locals para el log de acceso.
func respondError(c *fiber.Ctx, err error) error {
	c.Locals(LocalError, err)
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		verr   *dto.ValidationError
		stock  *domain.InsufficientStockError
		trans  *domain.TransitionError
		refErr *domain.ReferenceConflictError
	)
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Fields))
		for k, v := range verr.Fields {
			details[k] = v
		}
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details}
	case errors.As(err, &stock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stock.Error(), Details: map[string]any{
			"item_id":       stock.ItemID,
			"item_name":     stock.ItemName,
			"location_id":   stock.LocationID,
			"location_code": stock.LocationCode,
			"requested":     stock.Requested,
			"available":     stock.Available,
			"shortfall":     stock.Shortfall(),
		}}
	case errors.As(err, &trans):
		code := "INVALID_TRANSITION"
		if trans.Fulfilled {
			code = "ALREADY_FULFILLED"
		}
		return fiber.StatusConflict, dto.ErrorResponse{Code: code, Message: trans.Error(), Details: map[string]any{
			"request_id": trans.RequestID,
			"transition": trans.Transition,
			"from":       trans.From,
		}}
	case errors.As(err, &refErr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "REFERENCE_CONFLICT", Message: refErr.Error(), Details: map[string]any{
			"item_id": refErr.ItemID,
		}}
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrItemNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "ITEM_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrLocationNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "LOCATION_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, domain.ErrTransientStore):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "TRANSIENT", Message: domain.ErrTransientStore.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación excedió el tiempo límite"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func badBody(c *fiber.Ctx, err error) error {
	c.Locals(LocalError, err)
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
