package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmstock-api/internal/application/audit"
	"github.com/jhoicas/farmstock-api/internal/application/dto"
	"github.com/jhoicas/farmstock-api/internal/application/inventory"
	"github.com/jhoicas/farmstock-api/internal/application/usecase"
	"github.com/jhoicas/farmstock-api/internal/application/workflow"
	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/farmstock-api/internal/infrastructure/telemetry"
	apphttp "github.com/jhoicas/farmstock-api/internal/interfaces/http"
	"github.com/jhoicas/farmstock-api/pkg/metrics"
)

const (
	storeLoc = "loc-store"
	millLoc  = "loc-feed-mill"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
	reg   *metrics.Registry
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	reg := metrics.New("farmstock")
	obs := telemetry.NewObserver(reg)
	repos := store.Repos()

	applier := inventory.NewMovementApplier(store, inventory.ApplierConfig{}).WithObserver(obs)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:           usecase.NewItemUseCase(store, repos.Items, audit.NopSink{}),
		LocationUC:       usecase.NewLocationUseCase(repos.Locations),
		RegisterMovement: inventory.NewRegisterMovementUseCase(applier, audit.NopSink{}),
		Balances:         inventory.NewBalanceQueryService(repos),
		Requests: workflow.NewRequestUseCase(store, repos.Requests, applier, audit.NopSink{},
			workflow.WithTransitionObserver(obs)),
		Metrics:          reg,
		JWTSecret:        testJWTSecret,
		JWTIssuer:        testIssuer,
		TransientRetries: 2,
	})
	return &apiFixture{app: app, store: store, reg: reg}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenFor(t, role+"-user", role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) createItem(t *testing.T, name string) string {
	t.Helper()
	resp := f.call(t, http.MethodPost, "/api/items", entity.RoleAdmin, dto.CreateItemRequest{
		Name:    name,
		Unit:    entity.UnitKG,
		Modules: []string{entity.ModuleStore, entity.ModuleFeedMill},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ItemResponse](t, resp).ID
}

func (f *apiFixture) receive(t *testing.T, itemID, qty, cost string) {
	t.Helper()
	unitCost := decimal.RequireFromString(cost)
	resp := f.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleStoreManager, dto.ApplyMovementRequest{
		ItemID:        itemID,
		LocationID:    storeLoc,
		Type:          entity.MovementReceipt,
		Direction:     entity.DirectionIn,
		Quantity:      decimal.RequireFromString(qty),
		UnitCost:      &unitCost,
		ReferenceType: "SUPPLIER_DELIVERY",
		ReferenceID:   "GRN-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.ApplyMovementResponse](t, resp)
	assert.Equal(t, entity.MovementReceipt, out.Movement.Type)
}

func (f *apiFixture) balance(t *testing.T, itemID, locationID string) dto.BalanceResponse {
	t.Helper()
	resp := f.call(t, http.MethodGet, "/api/inventory/balances/"+itemID+"/"+locationID, entity.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.BalanceResponse](t, resp)
}

func TestAPI_RecepcionYTrasladoCompleto(t *testing.T) {
	f := newAPI(t)
	maize := f.createItem(t, "Maize")
	f.receive(t, maize, "100", "10")
	f.receive(t, maize, "50", "16")

	b := f.balance(t, maize, storeLoc)
	assert.True(t, decimal.NewFromInt(150).Equal(b.Quantity))
	assert.True(t, decimal.NewFromInt(12).Equal(b.AverageCost), "promedio ponderado: %s", b.AverageCost)

	resp := f.call(t, http.MethodPost, "/api/requests/transfers", entity.RoleFeedMillManager, dto.CreateTransferRequest{
		SourceLocationID:      storeLoc,
		DestinationLocationID: millLoc,
		Lines:                 []dto.RequestLineInput{{ItemID: maize, Quantity: decimal.NewFromInt(40)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	req := decode[dto.RequestResponse](t, resp)
	assert.Equal(t, entity.StatusPending, req.Status)

	resp = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", entity.RoleStoreManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/fulfil", entity.RoleStoreManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := decode[dto.RequestResponse](t, resp)
	assert.Equal(t, entity.StatusCompleted, done.Status)
	require.Len(t, done.Lines, 1)
	require.NotNil(t, done.Lines[0].FulfilledUnitCost)
	assert.True(t, decimal.NewFromInt(12).Equal(*done.Lines[0].FulfilledUnitCost))

	assert.True(t, decimal.NewFromInt(110).Equal(f.balance(t, maize, storeLoc).Quantity))
	mill := f.balance(t, maize, millLoc)
	assert.True(t, decimal.NewFromInt(40).Equal(mill.Quantity))
	assert.True(t, decimal.NewFromInt(12).Equal(mill.AverageCost))

	// Repetir el cumplimiento no aplica nada.
	resp = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/fulfil", entity.RoleStoreManager, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "ALREADY_FULFILLED", errBody.Code)
	assert.True(t, decimal.NewFromInt(40).Equal(f.balance(t, maize, millLoc).Quantity))

	resp = f.call(t, http.MethodGet, "/api/inventory/movements?reference_id="+req.ID, entity.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	require.Len(t, list.Items, 2)
	types := []string{list.Items[0].Type, list.Items[1].Type}
	assert.ElementsMatch(t, []string{entity.MovementTransferOut, entity.MovementTransferIn}, types)
}

func TestAPI_DespachoSinStockDevuelveDetalle(t *testing.T) {
	f := newAPI(t)
	soy := f.createItem(t, "Soybean meal")
	f.receive(t, soy, "30", "20")

	resp := f.call(t, http.MethodPost, "/api/requests/issues", entity.RoleFeedMillManager, dto.CreateIssueRequest{
		SourceLocationID: storeLoc,
		ConsumingModule:  entity.ModuleFeedMill,
		Lines:            []dto.RequestLineInput{{ItemID: soy, Quantity: decimal.NewFromInt(45)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	req := decode[dto.RequestResponse](t, resp)

	resp = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", entity.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/fulfil", entity.RoleStoreManager, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, soy, errBody.Details["item_id"])
	assert.Equal(t, "45", errBody.Details["requested"])
	assert.Equal(t, "30", errBody.Details["available"])

	resp = f.call(t, http.MethodGet, "/api/requests/"+req.ID, entity.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.StatusApproved, decode[dto.RequestResponse](t, resp).Status)
	assert.True(t, decimal.NewFromInt(30).Equal(f.balance(t, soy, storeLoc).Quantity))
}

func TestAPI_ValidacionYPermisos(t *testing.T) {
	f := newAPI(t)
	maize := f.createItem(t, "Maize")

	t.Run("cantidad cero", func(t *testing.T) {
		resp := f.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleStoreManager, dto.ApplyMovementRequest{
			ItemID: maize, LocationID: storeLoc, Type: entity.MovementUsage, Direction: entity.DirectionOut,
			Quantity: decimal.Zero, ReferenceType: entity.RefProductionLog, ReferenceID: "log-1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_QUANTITY", decode[dto.ErrorResponse](t, resp).Code)
	})
	t.Run("tipo desconocido", func(t *testing.T) {
		resp := f.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleStoreManager, map[string]any{
			"item_id": maize, "location_id": storeLoc, "type": "GIFT", "direction": "IN",
			"quantity": "1", "reference_type": "X", "reference_id": "1",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[dto.ErrorResponse](t, resp)
		assert.Equal(t, "VALIDATION", body.Code)
		assert.Contains(t, body.Details, "type")
	})
	t.Run("contador no registra movimientos", func(t *testing.T) {
		resp := f.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleAccountant, dto.ApplyMovementRequest{
			ItemID: maize, LocationID: storeLoc, Type: entity.MovementReceipt, Direction: entity.DirectionIn,
			Quantity: decimal.NewFromInt(1), ReferenceType: "X", ReferenceID: "1",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})
	t.Run("jefe de módulo no aprueba traslados", func(t *testing.T) {
		resp := f.call(t, http.MethodPost, "/api/requests/transfers", entity.RoleFeedMillManager, dto.CreateTransferRequest{
			SourceLocationID:      storeLoc,
			DestinationLocationID: millLoc,
			Lines:                 []dto.RequestLineInput{{ItemID: maize, Quantity: decimal.NewFromInt(1)}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		req := decode[dto.RequestResponse](t, resp)

		resp = f.call(t, http.MethodPost, "/api/requests/"+req.ID+"/approve", entity.RoleFeedMillManager, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})
	t.Run("sin token", func(t *testing.T) {
		resp := f.call(t, http.MethodGet, "/api/items", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
	t.Run("ítem inexistente", func(t *testing.T) {
		resp := f.call(t, http.MethodGet, "/api/inventory/balances/no-such-item/"+storeLoc, entity.RoleAccountant, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "ITEM_NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
	})
	t.Run("fecha inválida en kárdex", func(t *testing.T) {
		resp := f.call(t, http.MethodGet, "/api/inventory/stock-card?item_id="+maize+"&location_id="+storeLoc+"&from=ayer", entity.RoleAccountant, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestAPI_ItemConMovimientosNoSeBorra(t *testing.T) {
	f := newAPI(t)
	maize := f.createItem(t, "Maize")
	f.receive(t, maize, "10", "5")

	resp := f.call(t, http.MethodDelete, "/api/items/"+maize, entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "REFERENCE_CONFLICT", decode[dto.ErrorResponse](t, resp).Code)

	other := f.createItem(t, "Premix")
	resp = f.call(t, http.MethodDelete, "/api/items/"+other, entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_TransitorioSeReintentaYLuego503(t *testing.T) {
	f := newAPI(t)
	maize := f.createItem(t, "Maize")

	failures := 0
	f.store.SetFailHook(func(op string, _ any) error {
		if op == memory.OpMovementCreate {
			failures++
			return domain.Transient("movement.create", errors.New("could not serialize access"))
		}
		return nil
	})
	unitCost := decimal.NewFromInt(3)
	resp := f.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleStoreManager, dto.ApplyMovementRequest{
		ItemID: maize, LocationID: storeLoc, Type: entity.MovementReceipt, Direction: entity.DirectionIn,
		Quantity: decimal.NewFromInt(5), UnitCost: &unitCost, ReferenceType: "X", ReferenceID: "1",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "TRANSIENT", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 3, failures, "un intento más los dos reintentos")

	f.store.SetFailHook(nil)
	assert.True(t, f.balance(t, maize, storeLoc).Quantity.IsZero())
}

func TestAPI_MetricasExpuestas(t *testing.T) {
	f := newAPI(t)
	maize := f.createItem(t, "Maize")
	f.receive(t, maize, "10", "5")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `farmstock_ledger_movements_total{direction="IN",type="RECEIPT"} 1`)
	assert.Contains(t, string(body), "farmstock_http_requests_total")
}

func TestAPI_Ubicaciones(t *testing.T) {
	f := newAPI(t)
	resp := f.call(t, http.MethodGet, "/api/locations/FEED_MILL", entity.RolePoultryManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, millLoc, decode[dto.LocationResponse](t, resp).ID)

	resp = f.call(t, http.MethodGet, "/api/locations", entity.RoleAccountant, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.LocationResponse](t, resp), len(entity.DefaultLocations()))
}
