package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/workflow"
)

// RequestHandler solicitudes de traslado, despacho y compra (protegido).
// La autorización por tipo de solicitud la resuelve el caso de uso.
type RequestHandler struct {
	uc    *workflow.RequestUseCase
	retry transientRetry
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *workflow.RequestUseCase, retries int) *RequestHandler {
	return &RequestHandler{uc: uc, retry: newTransientRetry(retries)}
}

// CreateTransfer godoc
// @Summary      Crear solicitud de traslado
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino y líneas"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests/transfers [post]
func (h *RequestHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	return h.create(c, in, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.CreateTransfer(ctx, actorFrom(c), in)
	})
}

// CreateIssue godoc
// @Summary      Crear solicitud de despacho a un módulo
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIssueRequest  true  "Origen, módulo consumidor y líneas"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests/issues [post]
func (h *RequestHandler) CreateIssue(c *fiber.Ctx) error {
	var in dto.CreateIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	return h.create(c, in, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.CreateIssue(ctx, actorFrom(c), in)
	})
}

// CreateProcurement godoc
// @Summary      Crear solicitud de compra
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProcurementRequest  true  "Destino, proveedor y líneas con costo estimado"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests/procurements [post]
func (h *RequestHandler) CreateProcurement(c *fiber.Ctx) error {
	var in dto.CreateProcurementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	return h.create(c, in, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.CreateProcurement(ctx, actorFrom(c), in)
	})
}

func (h *RequestHandler) create(c *fiber.Ctx, in any, fn func(ctx context.Context) (*dto.RequestResponse, error)) error {
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	var out *dto.RequestResponse
	err := h.retry.do(c.UserContext(), func(ctx context.Context) (err error) {
		out, err = fn(ctx)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        kind    query  string  false  "TRANSFER, ISSUE, PROCUREMENT"
// @Param        status  query  string  false  "PENDING, APPROVED, REJECTED, COMPLETED, ISSUED, RECEIVED"
// @Success      200  {object}  dto.RequestListResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c, err)
	}
	if err := dto.Validate(page); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), actorFrom(c), workflow.ListFilter{
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
		Page:   page,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud con sus líneas
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.transition(c, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.Approve(ctx, actorFrom(c), id)
	})
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la solicitud"
// @Param        body  body  dto.RejectRequestBody  false "Motivo"
// @Success      200   {object}  dto.RequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequestBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c, err)
		}
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	id := c.Params("id")
	return h.transition(c, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.Reject(ctx, actorFrom(c), id, in.Reason)
	})
}

// Fulfil godoc
// @Summary      Completar solicitud aprobada
// @Description  Aplica todos los movimientos de la solicitud en una sola transacción. Idempotente: repetir devuelve 409 ALREADY_FULFILLED.
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/fulfil [post]
func (h *RequestHandler) Fulfil(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.transition(c, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.Fulfil(ctx, actorFrom(c), id)
	})
}

// UpdateLine godoc
// @Summary      Editar cantidad o costo recibido de una línea de compra
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                         true  "ID de la solicitud"
// @Param        lineId  path  string                         true  "ID de la línea"
// @Param        body    body  dto.UpdateReceivedLineRequest  true  "received_quantity, received_unit_cost"
// @Success      200     {object}  dto.RequestResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/lines/{lineId} [patch]
func (h *RequestHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.UpdateReceivedLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	id, lineID := c.Params("id"), c.Params("lineId")
	return h.transition(c, func(ctx context.Context) (*dto.RequestResponse, error) {
		return h.uc.UpdateReceivedLine(ctx, actorFrom(c), id, lineID, in)
	})
}

func (h *RequestHandler) transition(c *fiber.Ctx, fn func(ctx context.Context) (*dto.RequestResponse, error)) error {
	var out *dto.RequestResponse
	err := h.retry.do(c.UserContext(), func(ctx context.Context) (err error) {
		out, err = fn(ctx)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
