package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
)

// ReportHandler reportes y exportaciones (solo admin, salvo el estado de stock).
type ReportHandler struct {
	uc  *reporting.ReportUseCase
	loc *time.Location
	errorResponder
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.ReportUseCase, loc *time.Location, er errorResponder) *ReportHandler {
	return &ReportHandler{uc: uc, loc: loc, errorResponder: er}
}

func (h *ReportHandler) query(c *fiber.Ctx) (dto.SalesReportQuery, error) {
	from, to, err := parseDateRange(c, h.loc)
	if err != nil {
		return dto.SalesReportQuery{}, err
	}
	return dto.SalesReportQuery{DateFrom: from, DateTo: to, Page: parsePage(c)}, nil
}

// StockStatus godoc
// @Summary      Estado de stock de todos los productos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.StockLevelResponse}
// @Router       /api/inventory/status [get]
func (h *ReportHandler) StockStatus(c *fiber.Ctx) error {
	out, err := h.uc.StockStatus(c.Context())
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Sales godoc
// @Summary      Reporte de ventas completadas
// @Description  Totales recalculados desde las líneas; total_mismatch marca diferencias con la cabecera.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        date_from  query     string  false  "YYYY-MM-DD"
// @Param        date_to    query     string  false  "YYYY-MM-DD"
// @Param        page       query     int     false  "Página (desde 1)"
// @Param        limit      query     int     false  "Tamaño de página (máx 100)"
// @Success      200        {object}  dto.Envelope{data=dto.SalesReportResponse}
// @Failure      400        {object}  dto.Envelope
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	q, err := h.query(c)
	if err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.SalesReport(c.Context(), q)
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Trend godoc
// @Summary      Tendencia de ventas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        period  query     string  false  "daily7 (por defecto), daily30 o monthly12"
// @Success      200     {object}  dto.Envelope{data=dto.SalesTrendResponse}
// @Failure      400     {object}  dto.Envelope
// @Router       /api/reports/sales/trend [get]
func (h *ReportHandler) Trend(c *fiber.Ctx) error {
	out, err := h.uc.SalesTrend(c.Context(), c.Query("period"))
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// ExportCSV godoc
// @Summary      Exportar reporte de ventas en CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Success      200        {file}  file
// @Router       /api/reports/sales/export.csv [get]
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	q, err := h.query(c)
	if err != nil {
		return h.respond(c, err)
	}
	data, name, err := h.uc.ExportSalesCSV(c.Context(), q)
	if err != nil {
		return h.respond(c, err)
	}
	return attachment(c, "text/csv", name, data)
}

// ExportPDF godoc
// @Summary      Exportar reporte de ventas en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Success      200        {file}  file
// @Router       /api/reports/sales/export.pdf [get]
func (h *ReportHandler) ExportPDF(c *fiber.Ctx) error {
	q, err := h.query(c)
	if err != nil {
		return h.respond(c, err)
	}
	data, name, err := h.uc.ExportSalesPDF(c.Context(), q)
	if err != nil {
		return h.respond(c, err)
	}
	return attachment(c, "application/pdf", name, data)
}

// attachment responde un archivo descargable (Content-Disposition: attachment).
func attachment(c *fiber.Ctx, contentType, name string, data []byte) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}
