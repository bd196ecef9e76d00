package reporting_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/csvexport"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/memory"
)

var reportNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type pdfSpy struct {
	title   string
	table   reporting.Table
	summary dto.SalesReportSummary
}

func (p *pdfSpy) GenerateSalesReportPDF(_ context.Context, title string, table reporting.Table, summary dto.SalesReportSummary) ([]byte, error) {
	p.title, p.table, p.summary = title, table, summary
	return []byte("%PDF-1.3"), nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newReport(t *testing.T) (*reporting.ReportUseCase, *memory.Store, *pdfSpy) {
	t.Helper()
	store := memory.NewStore(time.UTC)
	spy := &pdfSpy{}
	uc := reporting.NewReportUseCase(store.Reports(), store.Inventory(), spy, mustCSV(t), -1, time.UTC, nil).
		WithClock(func() time.Time { return reportNow })
	return uc, store, spy
}

func seedSales(store *memory.Store) {
	store.PutSale(entity.Sale{
		SaleNumber: "SL250314001", CustomerName: "Ana", PaymentMethod: "Efectivo", PaymentStatus: entity.PaymentStatusPaid,
		Status: entity.SaleStatusCompleted, Total: money("230.00"), CreatedAt: reportNow.AddDate(0, 0, -1),
	}, []entity.SaleItem{
		{ProductID: "P-001", ProductName: "Camiseta", Brand: "Marca", UnitPrice: money("100.00"), Quantity: 2, Subtotal: money("200.00")},
		{ProductID: "P-002", ProductName: "Gorra", Brand: "Otra", UnitPrice: money("15.00"), Quantity: 2, Subtotal: money("30.00")},
	})
	// Total de cabecera corregido a mano: el reporte usa la suma de líneas.
	store.PutSale(entity.Sale{
		SaleNumber: "SL250315001", CustomerName: "Luis", PaymentMethod: "Tarjeta", PaymentStatus: entity.PaymentStatusUnpaid,
		Status: entity.SaleStatusCompleted, Total: money("90.00"), CreatedAt: reportNow,
	}, []entity.SaleItem{
		{ProductID: "P-001", ProductName: "Camiseta", Brand: "Marca", UnitPrice: money("100.00"), Quantity: 1, Subtotal: money("100.00")},
	})
	store.PutSale(entity.Sale{
		SaleNumber: "SL250315002", CustomerName: "Eva", Status: entity.SaleStatusPending, Total: money("50.00"), CreatedAt: reportNow,
	}, nil)
	store.PutSale(entity.Sale{
		SaleNumber: "SL250315003", CustomerName: "Teo", Status: entity.SaleStatusCancelled, Total: money("70.00"), CreatedAt: reportNow,
	}, nil)
}

func TestSalesReport_OnlyCompletedWithRecomputedTotals(t *testing.T) {
	uc, store, _ := newReport(t)
	seedSales(store)

	resp, err := uc.SalesReport(context.Background(), dto.SalesReportQuery{})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)

	newest := resp.Rows[0]
	assert.Equal(t, "SL250315001", newest.SaleNumber)
	assert.Equal(t, "100.00", newest.Total.StringFixed(2))
	assert.Equal(t, "90.00", newest.StoredTotal.StringFixed(2))
	assert.True(t, newest.TotalMismatch)

	older := resp.Rows[1]
	assert.Equal(t, 4, older.ItemCount)
	assert.Equal(t, "230.00", older.Total.StringFixed(2))
	assert.False(t, older.TotalMismatch)

	assert.Equal(t, 2, resp.Summary.Orders)
	assert.Equal(t, 5, resp.Summary.Units)
	assert.Equal(t, "330.00", resp.Summary.Revenue.StringFixed(2))
	assert.Equal(t, 2, resp.Page.Total)
}

func TestSalesReport_DateFilterAndPaging(t *testing.T) {
	uc, store, _ := newReport(t)
	seedSales(store)
	day := reportNow.AddDate(0, 0, -1)

	resp, err := uc.SalesReport(context.Background(), dto.SalesReportQuery{DateFrom: &day, DateTo: &day})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "SL250314001", resp.Rows[0].SaleNumber)

	resp, err = uc.SalesReport(context.Background(), dto.SalesReportQuery{Page: dto.PageRequest{Page: 2, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "SL250314001", resp.Rows[0].SaleNumber)
	assert.Equal(t, 2, resp.Page.TotalPages)

	later := reportNow
	_, err = uc.SalesReport(context.Background(), dto.SalesReportQuery{DateFrom: &later, DateTo: &day})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrderBlockTable_Layout(t *testing.T) {
	rows := []dto.SaleReportRow{
		{
			SaleNumber: "SL250314001", CustomerName: "Ana", Total: money("230"),
			CreatedAt: reportNow,
			Items: []dto.SaleItemResponse{
				{ProductName: "Camiseta", UnitPrice: money("100"), Quantity: 2, Subtotal: money("200")},
				{ProductName: "Gorra", UnitPrice: money("15"), Quantity: 2, Subtotal: money("30")},
			},
		},
		{SaleNumber: "SL250314002", CustomerName: "Sin líneas", Total: money("0"), CreatedAt: reportNow},
	}

	table := reporting.OrderBlockTable(rows)
	require.Len(t, table.Header, 12)
	require.Len(t, table.Rows, 3)

	first, second, empty := table.Rows[0], table.Rows[1], table.Rows[2]
	assert.Equal(t, "SL250314001", first[0])
	assert.Equal(t, "Camiseta", first[6])
	assert.Equal(t, "230.00", first[11])

	for i := 0; i < 6; i++ {
		assert.Empty(t, second[i], "columna %d", i)
	}
	assert.Equal(t, "Gorra", second[6])
	assert.Equal(t, "2", second[9])
	assert.Empty(t, second[11])

	assert.Equal(t, "SL250314002", empty[0])
	assert.Empty(t, empty[6])
	assert.Equal(t, "0.00", empty[11])
}

func TestExportSalesCSV(t *testing.T) {
	uc, store, _ := newReport(t)
	seedSales(store)

	data, name, err := uc.ExportSalesCSV(context.Background(), dto.SalesReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, "reporte_ventas_20250315.csv", name)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4, "encabezado + 1 línea + 2 líneas")
	assert.Contains(t, lines[0], "N° Venta")
	assert.True(t, strings.HasPrefix(lines[1], "SL250315001"), lines[1])
}

func TestExportSalesPDF(t *testing.T) {
	uc, store, spy := newReport(t)
	seedSales(store)
	from := reportNow.AddDate(0, 0, -7)

	data, name, err := uc.ExportSalesPDF(context.Background(), dto.SalesReportQuery{DateFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, "reporte_ventas_20250315.pdf", name)
	assert.Equal(t, "%PDF-1.3", string(data))
	assert.Equal(t, "Reporte de ventas desde 2025-03-08", spy.title)
	assert.Len(t, spy.table.Rows, 3)
	assert.Equal(t, 2, spy.summary.Orders)
}

func TestSalesTrend_ZeroFilled(t *testing.T) {
	uc, store, _ := newReport(t)
	seedSales(store)
	ctx := context.Background()

	resp, err := uc.SalesTrend(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, dto.TrendDaily7, resp.Period)
	require.Len(t, resp.Points, 7)
	assert.Equal(t, "2025-03-09", resp.Points[0].Period)
	assert.True(t, resp.Points[0].Total.IsZero())

	yesterday, today := resp.Points[5], resp.Points[6]
	assert.Equal(t, "2025-03-14", yesterday.Period)
	assert.Equal(t, "230.00", yesterday.Total.StringFixed(2))
	assert.Equal(t, "2025-03-15", today.Period)
	assert.Equal(t, "140.00", today.Total.StringFixed(2), "pendientes cuentan, canceladas no")
	assert.Equal(t, 2, today.Count)

	monthly, err := uc.SalesTrend(ctx, dto.TrendMonthly12)
	require.NoError(t, err)
	require.Len(t, monthly.Points, 12)
	assert.Equal(t, "2024-04", monthly.Points[0].Period)
	assert.Equal(t, "2025-03", monthly.Points[11].Period)
	assert.Equal(t, "370.00", monthly.Points[11].Total.StringFixed(2))

	daily30, err := uc.SalesTrend(ctx, dto.TrendDaily30)
	require.NoError(t, err)
	assert.Len(t, daily30.Points, 30)

	_, err = uc.SalesTrend(ctx, "weekly")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockStatus(t *testing.T) {
	uc, store, _ := newReport(t)
	store.PutProduct(entity.Product{ProductID: "P-001", Name: "Camiseta", Price: money("100")})
	store.PutProduct(entity.Product{ProductID: "P-002", Name: "Gorra", Price: money("15")})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 30, ReorderPoint: 5})

	list, err := uc.StockStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Overstock", list[0].Status)
	assert.Equal(t, "Out of Stock", list[1].Status)
	assert.Equal(t, 10, list[1].ReorderPoint)
}

func TestStockStatus_ConfiguredDefaultReorderPoint(t *testing.T) {
	store := memory.NewStore(time.UTC)
	store.PutProduct(entity.Product{ProductID: "P-001", Name: "Camiseta", Price: money("100")})
	uc := reporting.NewReportUseCase(store.Reports(), store.Inventory(), &pdfSpy{}, mustCSV(t), 4, time.UTC, nil)

	list, err := uc.StockStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].ReorderPoint)
}

func mustCSV(t *testing.T) *csvexport.Writer {
	t.Helper()
	w, err := csvexport.New(csvexport.EncodingUTF8)
	require.NoError(t, err)
	return w
}
