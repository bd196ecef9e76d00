package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/csvexport"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/tienda-pos-api/internal/interfaces/http"
)

var apiNow = time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

type fakePDF struct{}

func (fakePDF) GenerateSalesReportPDF(context.Context, string, reporting.Table, dto.SalesReportSummary) ([]byte, error) {
	return []byte("%PDF-1.3 fake"), nil
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.NewStore(time.UTC)
	store.PutProduct(entity.Product{ProductID: "P-001", Name: "Camiseta", Brand: "Marca", Price: decimal.RequireFromString("100.00")})
	store.PutProduct(entity.Product{ProductID: "P-002", Name: "Gorra", Brand: "Otra", Price: decimal.RequireFromString("25.50")})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 10, ReorderPoint: 3})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-002", Stock: 1, ReorderPoint: 3})

	ledger := inventory.NewStockLedgerUseCase(store.TxRunner(), store.Inventory(), store.Transactions(), 10, nil)
	saleUC := sales.NewSaleUseCase(store.TxRunner(), ledger, store.Products(), store.Sales(), time.UTC, nil).
		WithClock(func() time.Time { return apiNow })
	csvw, err := csvexport.New(csvexport.EncodingUTF8)
	require.NoError(t, err)
	reportUC := reporting.NewReportUseCase(store.Reports(), store.Inventory(), fakePDF{}, csvw, -1, time.UTC, nil).
		WithClock(func() time.Time { return apiNow })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		SaleUC:    saleUC,
		LedgerUC:  ledger,
		ReportUC:  reportUC,
		JWTSecret: testJWTSecret,
		Location:  time.UTC,
	})
	return &api{app: app, store: store}
}

func (a *api) do(t *testing.T, method, path, role string, body any) (*http.Response, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (a *api) createSale(t *testing.T, items ...dto.SaleItemRequest) dto.CreateSaleResponse {
	t.Helper()
	resp, env := a.do(t, http.MethodPost, "/api/sales", "cajero", dto.CreateSaleRequest{
		CustomerName: "Ana", Contact: "300123", PaymentMethod: "Efectivo", Items: items,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var out dto.CreateSaleResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (a *api) stock(t *testing.T, productID string) int {
	t.Helper()
	resp, env := a.do(t, http.MethodGet, "/api/inventory/"+productID, "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.InventoryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	return rec.Stock
}

func TestAPI_CreateSale(t *testing.T) {
	a := newAPI(t)

	out := a.createSale(t, dto.SaleItemRequest{ProductID: "P-001", Quantity: 2}, dto.SaleItemRequest{ProductID: "P-002", Quantity: 1})
	assert.Equal(t, "SL250101001", out.SaleNumber)
	assert.True(t, out.Total.Equal(decimal.RequireFromString("225.50")))
	assert.Equal(t, 8, a.stock(t, "P-001"))
	assert.Equal(t, 0, a.stock(t, "P-002"))

	resp, env := a.do(t, http.MethodGet, "/api/sales/"+strconv.FormatInt(out.SaleID, 10), "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, entity.SaleStatusPending, sale.Status)
}

func TestAPI_CreateSale_Errors(t *testing.T) {
	a := newAPI(t)

	resp, env := a.do(t, http.MethodPost, "/api/sales", "cajero", dto.CreateSaleRequest{
		CustomerName: "Ana", PaymentMethod: "Efectivo",
		Items: []dto.SaleItemRequest{{ProductID: "P-002", Quantity: 5}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)
	assert.False(t, env.Success)
	assert.Equal(t, 0, a.store.SaleCount(), "sin venta parcial")

	resp, env = a.do(t, http.MethodPost, "/api/sales", "cajero", dto.CreateSaleRequest{
		CustomerName: "Ana", PaymentMethod: "Efectivo",
		Items: []dto.SaleItemRequest{{ProductID: "NOPE", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)

	resp, env = a.do(t, http.MethodPost, "/api/sales", "cajero", dto.CreateSaleRequest{CustomerName: "Ana"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "cajero"))
	raw, err := a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/sales", "bodeguero", dto.CreateSaleRequest{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/sales", "", dto.CreateSaleRequest{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_UpdateSale_Finalized(t *testing.T) {
	a := newAPI(t)
	out := a.createSale(t, dto.SaleItemRequest{ProductID: "P-001", Quantity: 1})
	path := "/api/sales/" + strconv.FormatInt(out.SaleID, 10)

	completed := entity.SaleStatusCompleted
	resp, env := a.do(t, http.MethodPut, path, "cajero", dto.UpdateSaleRequest{Status: &completed})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.True(t, env.Success)

	name := "Otro"
	resp, env = a.do(t, http.MethodPut, path, "cajero", dto.UpdateSaleRequest{CustomerName: &name})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ORDER_FINALIZED", env.Code)
	assert.Equal(t, 9, a.stock(t, "P-001"), "actualizar no mueve stock")

	resp, env = a.do(t, http.MethodPut, "/api/sales/abc", "cajero", dto.UpdateSaleRequest{CustomerName: &name})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestAPI_DeleteSale(t *testing.T) {
	a := newAPI(t)
	out := a.createSale(t, dto.SaleItemRequest{ProductID: "P-001", Quantity: 4})
	path := "/api/sales/" + strconv.FormatInt(out.SaleID, 10)
	require.Equal(t, 6, a.stock(t, "P-001"))

	resp, _ := a.do(t, http.MethodDelete, path, "cajero", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin elimina ventas")

	resp, env := a.do(t, http.MethodDelete, path, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, 10, a.stock(t, "P-001"))

	resp, env = a.do(t, http.MethodDelete, path, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestAPI_SalesStats(t *testing.T) {
	a := newAPI(t)
	a.createSale(t, dto.SaleItemRequest{ProductID: "P-001", Quantity: 1})
	a.createSale(t, dto.SaleItemRequest{ProductID: "P-001", Quantity: 2})

	resp, env := a.do(t, http.MethodGet, "/api/sales/stats?date_from=2025-01-01&date_to=2025-01-01", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var stats dto.SalesStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalSales)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, stats.TodaySales)

	resp, env = a.do(t, http.MethodGet, "/api/sales/stats?date_from=01-01-2025", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestAPI_InventoryAdjustAndHistory(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.do(t, http.MethodPost, "/api/inventory/P-001/adjust", "cajero", dto.AdjustStockRequest{Quantity: 5})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := a.do(t, http.MethodPost, "/api/inventory/P-001/adjust", "bodeguero", dto.AdjustStockRequest{Quantity: 5, Notes: "conteo"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var rec dto.InventoryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, 15, rec.Stock)
	assert.Equal(t, "Overstock", rec.Status)

	resp, env = a.do(t, http.MethodPost, "/api/inventory/P-002/deduct", "cajero", dto.DeductStockRequest{Quantity: 2})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	resp, env = a.do(t, http.MethodPost, "/api/inventory/NOPE/deduct", "cajero", dto.DeductStockRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)

	resp, env = a.do(t, http.MethodGet, "/api/inventory/P-001/transactions?page=1&limit=5", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist dto.TransactionListResponse
	require.NoError(t, json.Unmarshal(env.Data, &hist))
	require.Len(t, hist.Items, 1)
	assert.Equal(t, entity.TransactionIn, hist.Items[0].Type)
	assert.Equal(t, testUsername, hist.Items[0].CreatedBy)
}

func TestAPI_StockIn(t *testing.T) {
	a := newAPI(t)

	resp, env := a.do(t, http.MethodPost, "/api/inventory/stock-in", "bodeguero", dto.BulkStockInRequest{
		Supplier: "Proveedor S.A.", SerialNumber: "REM-1",
		Items: []dto.BulkStockInLine{{ProductID: "P-001", Quantity: 2}, {ProductID: "P-002", Quantity: 4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var recs []dto.InventoryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, 12, recs[0].Stock)
	assert.Equal(t, 5, recs[1].Stock)

	resp, env = a.do(t, http.MethodPost, "/api/inventory/stock-in", "bodeguero", dto.BulkStockInRequest{
		Supplier: "Proveedor S.A.",
		Items:    []dto.BulkStockInLine{{ProductID: "P-001", Quantity: 0}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 12, a.stock(t, "P-001"))
}

func TestAPI_InventoryReads(t *testing.T) {
	a := newAPI(t)

	resp, env := a.do(t, http.MethodGet, "/api/inventory/low-stock", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var low []dto.StockLevelResponse
	require.NoError(t, json.Unmarshal(env.Data, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "P-002", low[0].ProductID)

	resp, env = a.do(t, http.MethodGet, "/api/inventory/stats", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats dto.InventoryStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 11, stats.TotalUnits)

	resp, env = a.do(t, http.MethodGet, "/api/inventory/status", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status []dto.StockLevelResponse
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Len(t, status, 2)

	resp, _ = a.do(t, http.MethodGet, "/api/inventory/replenishment", "bodeguero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.do(t, http.MethodGet, "/api/inventory/replenishment", "cajero", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_Reports(t *testing.T) {
	a := newAPI(t)
	out := a.createSale(t, dto.SaleItemRequest{ProductID: "P-001", Quantity: 1})
	completed := entity.SaleStatusCompleted
	resp, _ := a.do(t, http.MethodPut, "/api/sales/"+strconv.FormatInt(out.SaleID, 10), "admin", dto.UpdateSaleRequest{Status: &completed})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/reports/sales", "cajero", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := a.do(t, http.MethodGet, "/api/reports/sales?date_from=2025-01-01", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var report dto.SalesReportResponse
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Rows, 1)
	assert.Equal(t, out.SaleNumber, report.Rows[0].SaleNumber)

	resp, env = a.do(t, http.MethodGet, "/api/reports/sales/trend?period=daily7", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trend dto.SalesTrendResponse
	require.NoError(t, json.Unmarshal(env.Data, &trend))
	assert.Len(t, trend.Points, 7)

	resp, env = a.do(t, http.MethodGet, "/api/reports/sales/trend?period=yearly", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestAPI_ReportExports(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/sales/export.csv", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "reporte_ventas_20250101.csv")

	req = httptest.NewRequest(http.MethodGet, "/api/reports/sales/export.pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err = a.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.3 fake", string(body))
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/up", apphttp.HealthHandler("tienda-pos", pinger{}))
	app.Get("/down", apphttp.HealthHandler("tienda-pos", pinger{err: errors.New("conexión rechazada")}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/up", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/down", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
