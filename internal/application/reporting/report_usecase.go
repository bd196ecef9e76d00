package reporting

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
	"github.com/jhoicas/tienda-pos-api/pkg/logger"
)

// ReportUseCase proyecciones de solo lectura sobre ventas e inventario confirmados.
type ReportUseCase struct {
	reportRepo          repository.ReportRepository
	inventoryRepo       repository.InventoryRepository
	pdf                 SalesPDFGenerator
	csv                 TableWriter
	defaultReorderPoint int
	loc                 *time.Location
	now                 func() time.Time
	log                 *logger.Logger
}

// NewReportUseCase construye el caso de uso inyectando todas sus dependencias.
// defaultReorderPoint < 0 usa entity.DefaultReorderPoint.
func NewReportUseCase(
	reportRepo repository.ReportRepository,
	inventoryRepo repository.InventoryRepository,
	pdf SalesPDFGenerator,
	csv TableWriter,
	defaultReorderPoint int,
	loc *time.Location,
	log *logger.Logger,
) *ReportUseCase {
	if defaultReorderPoint < 0 {
		defaultReorderPoint = entity.DefaultReorderPoint
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		reportRepo:          reportRepo,
		inventoryRepo:       inventoryRepo,
		pdf:                 pdf,
		csv:                 csv,
		defaultReorderPoint: defaultReorderPoint,
		loc:                 loc,
		now:                 time.Now,
		log:                 log.Component("reporting"),
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// StockStatus todos los productos con stock, punto de reorden y clasificación.
func (uc *ReportUseCase) StockStatus(ctx context.Context) ([]dto.StockLevelResponse, error) {
	levels, err := uc.inventoryRepo.ListStockLevels(ctx, uc.defaultReorderPoint)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, inventory.ToStockLevelResponse(l))
	}
	return out, nil
}

// SalesReport página de ventas completadas con líneas y totales recalculados desde las líneas.
func (uc *ReportUseCase) SalesReport(ctx context.Context, q dto.SalesReportQuery) (*dto.SalesReportResponse, error) {
	q.Page.DefaultPage()
	rows, total, err := uc.loadRows(ctx, q, q.Page.Limit, q.Page.Offset())
	if err != nil {
		return nil, err
	}
	return &dto.SalesReportResponse{
		Rows:    rows,
		Summary: summarize(rows),
		Page:    dto.NewPageResponse(q.Page, total),
	}, nil
}

// ExportSalesCSV todas las ventas del filtro (sin paginar) en CSV por bloques de orden.
func (uc *ReportUseCase) ExportSalesCSV(ctx context.Context, q dto.SalesReportQuery) ([]byte, string, error) {
	rows, _, err := uc.loadRows(ctx, q, 0, 0)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := uc.csv.WriteTable(&buf, OrderBlockTable(rows)); err != nil {
		return nil, "", fmt.Errorf("exportar csv: %w", err)
	}
	return buf.Bytes(), uc.exportName("csv"), nil
}

// ExportSalesPDF igual que ExportSalesCSV pero como documento PDF.
func (uc *ReportUseCase) ExportSalesPDF(ctx context.Context, q dto.SalesReportQuery) ([]byte, string, error) {
	rows, _, err := uc.loadRows(ctx, q, 0, 0)
	if err != nil {
		return nil, "", err
	}
	title := "Reporte de ventas"
	if label := rangeLabel(q); label != "" {
		title += " " + label
	}
	doc, err := uc.pdf.GenerateSalesReportPDF(ctx, title, OrderBlockTable(rows), summarize(rows))
	if err != nil {
		return nil, "", err
	}
	uc.log.Info().Int("orders", len(rows)).Msg("reporte pdf generado")
	return doc, uc.exportName("pdf"), nil
}

// SalesTrend suma de ventas no canceladas por día (7 o 30 días) o por mes (12 meses), sin huecos.
func (uc *ReportUseCase) SalesTrend(ctx context.Context, period string) (*dto.SalesTrendResponse, error) {
	if period == "" {
		period = dto.TrendDaily7
	}
	today := sales.StartOfDay(uc.now(), uc.loc)

	var (
		bucket string
		since  time.Time
		keys   []time.Time
	)
	switch period {
	case dto.TrendDaily7, dto.TrendDaily30:
		days := 7
		if period == dto.TrendDaily30 {
			days = 30
		}
		bucket = repository.BucketDay
		since = today.AddDate(0, 0, -(days - 1))
		for i := 0; i < days; i++ {
			keys = append(keys, since.AddDate(0, 0, i))
		}
	case dto.TrendMonthly12:
		bucket = repository.BucketMonth
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, uc.loc)
		since = firstOfMonth.AddDate(0, -11, 0)
		for i := 0; i < 12; i++ {
			keys = append(keys, since.AddDate(0, i, 0))
		}
	default:
		return nil, domain.Invalid("período inválido: %s", period)
	}

	points, err := uc.reportRepo.SalesTrend(ctx, bucket, since)
	if err != nil {
		return nil, err
	}
	label := func(t time.Time) string {
		if bucket == repository.BucketMonth {
			return t.In(uc.loc).Format("2006-01")
		}
		return t.In(uc.loc).Format("2006-01-02")
	}
	byKey := make(map[string]repository.TrendPoint, len(points))
	for _, p := range points {
		byKey[label(p.Period)] = p
	}

	resp := &dto.SalesTrendResponse{Period: period, Points: make([]dto.TrendPointResponse, 0, len(keys))}
	for _, k := range keys {
		l := label(k)
		p, ok := byKey[l]
		if !ok {
			p = repository.TrendPoint{Total: decimal.Zero}
		}
		resp.Points = append(resp.Points, dto.TrendPointResponse{Period: l, Total: p.Total, Count: p.Count})
	}
	return resp, nil
}

func (uc *ReportUseCase) loadRows(ctx context.Context, q dto.SalesReportQuery, limit, offset int) ([]dto.SaleReportRow, int, error) {
	r, err := sales.DayRange(q.DateFrom, q.DateTo, uc.loc)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := uc.reportRepo.ListCompletedSales(ctx, repository.SalesFilter{Range: r, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	itemsBySale, err := uc.reportRepo.ItemsForSales(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]dto.SaleReportRow, 0, len(list))
	for _, s := range list {
		items := itemsBySale[s.ID]
		row := dto.SaleReportRow{
			ID:            s.ID,
			SaleNumber:    s.SaleNumber,
			CustomerName:  s.CustomerName,
			Contact:       s.Contact,
			PaymentMethod: s.PaymentMethod,
			PaymentStatus: s.PaymentStatus,
			Status:        s.Status,
			CreatedAt:     s.CreatedAt,
			StoredTotal:   s.Total,
			Total:         decimal.Zero,
			Items:         sales.ToItemResponses(items),
		}
		for _, it := range items {
			row.ItemCount += it.Quantity
			row.Total = row.Total.Add(it.Subtotal)
		}
		row.TotalMismatch = !row.Total.Equal(s.Total)
		if row.TotalMismatch {
			uc.log.Debug().Str("sale_number", s.SaleNumber).
				Str("stored", s.Total.StringFixed(2)).Str("computed", row.Total.StringFixed(2)).
				Msg("total de cabecera difiere de las líneas")
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

func (uc *ReportUseCase) exportName(ext string) string {
	stamp := uc.now().In(uc.loc).Format("20060102")
	return fmt.Sprintf("reporte_ventas_%s.%s", stamp, ext)
}

func summarize(rows []dto.SaleReportRow) dto.SalesReportSummary {
	s := dto.SalesReportSummary{Revenue: decimal.Zero}
	for _, r := range rows {
		s.Orders++
		s.Units += r.ItemCount
		s.Revenue = s.Revenue.Add(r.Total)
	}
	return s
}

func rangeLabel(q dto.SalesReportQuery) string {
	switch {
	case q.DateFrom != nil && q.DateTo != nil:
		return q.DateFrom.Format("2006-01-02") + " a " + q.DateTo.Format("2006-01-02")
	case q.DateFrom != nil:
		return "desde " + q.DateFrom.Format("2006-01-02")
	case q.DateTo != nil:
		return "hasta " + q.DateTo.Format("2006-01-02")
	}
	return ""
}
