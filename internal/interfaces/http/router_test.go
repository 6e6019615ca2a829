package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/application/inventory"
	"github.com/jhoicas/Inventario-minero/internal/application/usecase"
	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Inventario-minero/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-minero/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	app *fiber.App
}

// newAPI API completa sobre el store en memoria con la empresa de los tokens, bodega w1 y producto p1.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: testCompanyID, Name: "Minera Test", ValuationMethod: entity.ValuationWeightedAverage}))
	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "otra", Name: "Otra", ValuationMethod: entity.ValuationWeightedAverage}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: testCompanyID, Name: "Central", Kind: entity.WarehouseMain}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "w-otra", CompanyID: "otra", Name: "Ajena", Kind: entity.WarehouseMain}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p1", CompanyID: testCompanyID, SKU: "PERNO", Name: "Perno", UnitOfMeasure: "UN"}))

	clock := func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }
	seq := inventory.NewSequencer(store, nil, clock)
	recorder := inventory.NewMovementRecorder(store, inventory.NewLedger(clock), seq, nil, nil, nil, clock)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CompanyUC:   usecase.NewCompanyUseCase(repos.Companies),
		WarehouseUC: usecase.NewWarehouseUseCase(repos.Warehouses),
		ProductUC:   usecase.NewProductUseCase(repos.Products),
		Recorder:    recorder,
		Queries:     inventory.NewQueryService(store, nil),
		Documents:   documents.NewService(store, recorder, seq, documents.NewRoleAuthorizer(), nil, documents.Options{Now: clock}),
		JWTSecret:   testJWTSecret,
	})
	return &apiFixture{app: app}
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.GenerateScoped(testJWTSecret, userID, testCompanyID, role, "", testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *apiFixture) do(t *testing.T, method, path, auth string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func receipt(qty, cost string) map[string]any {
	return map[string]any{
		"direction": "RECEIPT",
		"lines":     []map[string]any{{"product_id": "p1", "warehouse_id": "w1", "quantity": qty, "unit_cost": cost}},
	}
}

func TestAPI_MovimientoManualYSaldo(t *testing.T) {
	f := newAPI(t)
	clerk := bearer(t, "u-bod", domain.RoleBodeguero)

	status, body := f.do(t, http.MethodPost, "/api/inventory/movements", clerk, receipt("10", "5"))
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "RECEIPT", body["direction"])
	assert.NotEmpty(t, body["number"])

	status, body = f.do(t, http.MethodGet, "/api/inventory/balances?product_id=p1&warehouse_id=w1", clerk, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "10", body["quantity"])
	assert.Equal(t, "5", body["average_cost"])

	status, body = f.do(t, http.MethodGet, "/api/inventory/kardex?product_id=p1&warehouse_id=w1", clerk, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["items"], 1)
}

func TestAPI_MovimientoManualSoloAdminOBodeguero(t *testing.T) {
	f := newAPI(t)
	status, body := f.do(t, http.MethodPost, "/api/inventory/movements", bearer(t, "u-sol", domain.RoleSolicitante), receipt("1", "1"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestAPI_StockInsuficienteDevuelveDetalle(t *testing.T) {
	f := newAPI(t)
	clerk := bearer(t, "u-bod", domain.RoleBodeguero)
	status, _ := f.do(t, http.MethodPost, "/api/inventory/movements", clerk, receipt("3", "5"))
	require.Equal(t, http.StatusCreated, status)

	status, body := f.do(t, http.MethodPost, "/api/inventory/movements", clerk, map[string]any{
		"direction": "ISSUE",
		"lines":     []map[string]any{{"product_id": "p1", "warehouse_id": "w1", "quantity": "5"}},
	})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "3", details["available"])
	assert.Equal(t, "2", details["missing"])
}

func TestAPI_ValidacionDelCuerpo(t *testing.T) {
	f := newAPI(t)
	status, body := f.do(t, http.MethodPost, "/api/inventory/movements", bearer(t, "u-bod", domain.RoleBodeguero), map[string]any{
		"direction": "TELEPORT",
		"lines":     []map[string]any{{"product_id": "p1", "warehouse_id": "w1", "quantity": "1"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestAPI_FlujoRequisicion(t *testing.T) {
	f := newAPI(t)
	asker := bearer(t, "u-sol", domain.RoleSolicitante)
	approver := bearer(t, "u-apr", domain.RoleAprobador)

	status, body := f.do(t, http.MethodPost, "/api/requisitions", asker, map[string]any{
		"warehouse_id": "w1",
		"lines":        []map[string]any{{"product_id": "p1", "quantity": "4"}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["id"].(string)
	assert.Equal(t, string(entity.RequisitionDraft), body["status"])
	assert.Contains(t, body["available_transitions"], "submit")

	status, body = f.do(t, http.MethodPost, "/api/documents/requisition/"+id+"/transitions/submit", asker, nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = f.do(t, http.MethodPost, "/api/documents/requisition/"+id+"/transitions/approve", approver, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, string(entity.RequisitionApproved), body["status"])

	// approve desde APPROVED no está permitido
	status, body = f.do(t, http.MethodPost, "/api/documents/requisition/"+id+"/transitions/approve", approver, nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ILLEGAL_TRANSITION", body["code"])

	status, body = f.do(t, http.MethodGet, "/api/documents/requisition/"+id, asker, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(entity.RequisitionApproved), body["status"])
}

func TestAPI_FamiliaDesconocida(t *testing.T) {
	f := newAPI(t)
	status, body := f.do(t, http.MethodGet, "/api/documents/invoice/x", bearer(t, "u-admin", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestAPI_BodegaDeOtraEmpresaNoExiste(t *testing.T) {
	f := newAPI(t)
	status, body := f.do(t, http.MethodGet, "/api/warehouses/w-otra", bearer(t, "u-admin", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestAPI_CatalogoSoloAdmin(t *testing.T) {
	f := newAPI(t)
	req := map[string]any{"sku": "BROCA", "name": "Broca 45mm", "unit_of_measure": "UN"}

	status, _ := f.do(t, http.MethodPost, "/api/products", bearer(t, "u-bod", domain.RoleBodeguero), req)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := f.do(t, http.MethodPost, "/api/products", bearer(t, "u-admin", domain.RoleAdmin), req)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "BROCA", body["sku"])
}

func TestAPI_SinToken(t *testing.T) {
	f := newAPI(t)
	status, body := f.do(t, http.MethodGet, "/api/companies/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}
