package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/farmstock-api/internal/application/auth"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/application/usecase"
	"github.com/jhoicas/farmstock-api/internal/application/workflow"
	"github.com/jhoicas/farmstock-api/pkg/logger"
	"github.com/jhoicas/farmstock-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC           *usecase.ItemUseCase
	LocationUC       *usecase.LocationUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Balances         *inventory.BalanceQueryService
	Requests         *workflow.RequestUseCase
	Metrics          *metrics.Registry // opcional
	Log              *logger.Logger
	JWTSecret        string
	JWTIssuer        string
	RequestTimeout   time.Duration
	TransientRetries int
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	if deps.Metrics != nil {
		app.Use(Metrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Use(AccessLog(log.Component("http")))
	app.Use(RequestTimeout(deps.RequestTimeout))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Items
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.TransientRetries)
	items.Post("/", RequireOperation(auth.OpItemManage), itemHandler.Create)
	items.Get("/", RequireOperation(auth.OpItemRead), itemHandler.List)
	items.Get("/:id", RequireOperation(auth.OpItemRead), itemHandler.GetByID)
	items.Put("/:id", RequireOperation(auth.OpItemManage), itemHandler.Update)
	items.Delete("/:id", RequireOperation(auth.OpItemManage), itemHandler.Delete)

	// Locations
	locations := api.Group("/locations", RequireOperation(auth.OpItemRead))
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", locationHandler.List)
	locations.Get("/:code", locationHandler.GetByCode)

	// Inventory ledger
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Balances, deps.TransientRetries)
	inv.Post("/movements", RequireOperation(auth.OpMovementApply), inventoryHandler.RegisterMovement)
	ledgerRead := RequireOperation(auth.OpLedgerRead)
	inv.Get("/movements", ledgerRead, inventoryHandler.ListMovements)
	inv.Get("/balances/:itemId/:locationId", ledgerRead, inventoryHandler.GetBalance)
	inv.Get("/availability/:itemId/:locationId", ledgerRead, inventoryHandler.Availability)
	inv.Get("/locations/:locationId/balances", ledgerRead, inventoryHandler.ListByLocation)
	inv.Get("/items/:itemId/balances", ledgerRead, inventoryHandler.ListByItem)
	inv.Get("/items/:itemId/totals", ledgerRead, inventoryHandler.ItemTotals)
	inv.Get("/stock-card", ledgerRead, inventoryHandler.StockCard)

	// Requests
	requests := api.Group("/requests")
	requestHandler := NewRequestHandler(deps.Requests, deps.TransientRetries)
	requests.Post("/transfers", RequireOperation(auth.OpTransferCreate), requestHandler.CreateTransfer)
	requests.Post("/issues", RequireOperation(auth.OpIssueCreate), requestHandler.CreateIssue)
	requests.Post("/procurements", RequireOperation(auth.OpProcurementCreate), requestHandler.CreateProcurement)
	requests.Get("/", RequireOperation(auth.OpRequestRead), requestHandler.List)
	requests.Get("/:id", RequireOperation(auth.OpRequestRead), requestHandler.GetByID)
	requests.Post("/:id/approve", requestHandler.Approve)
	requests.Post("/:id/reject", requestHandler.Reject)
	requests.Post("/:id/fulfil", requestHandler.Fulfil)
	requests.Patch("/:id/lines/:lineId", requestHandler.UpdateLine)
}
