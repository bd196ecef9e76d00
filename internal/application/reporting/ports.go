package reporting

import (
	"context"
	"io"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
)

// SalesPDFGenerator genera el documento PDF del reporte de ventas a partir de la tabla por bloques de orden.
type SalesPDFGenerator interface {
	GenerateSalesReportPDF(ctx context.Context, title string, table Table, summary dto.SalesReportSummary) ([]byte, error)
}

// TableWriter serializa la tabla del reporte como texto (CSV).
type TableWriter interface {
	WriteTable(w io.Writer, table Table) error
}
