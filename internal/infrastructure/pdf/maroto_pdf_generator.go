// Package pdf implementa la exportación PDF del reporte de ventas.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la tienda       │  Título + fecha emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: N° Venta | Fecha | Cliente ... Subtotal | Total     │
//	│         (bloques de orden: datos de la orden en la 1a fila) │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Órdenes / Unidades / Ingresos                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
)

// gridColumns la grilla de maroto tiene 12 columnas: una por columna del reporte.
const gridColumns = 12

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa reporting.SalesPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	storeName string
	now       func() time.Time
}

var _ reporting.SalesPDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador. storeName va en el encabezado.
func NewMarotoPDFGenerator(storeName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{storeName: storeName, now: time.Now}
}

// GenerateSalesReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSalesReportPDF(
	ctx context.Context,
	title string,
	table reporting.Table,
	summary dto.SalesReportSummary,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(table.Header) > gridColumns {
		return nil, fmt.Errorf("pdf: la tabla tiene %d columnas, máximo %d", len(table.Header), gridColumns)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle(title, true).
		WithAuthor(nonEmpty(g.storeName, "Tienda"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(nonEmpty(g.storeName, "Tienda"), title, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow(table.Header))
	m.AddRows(tableBodyRows(table)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(summary))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre de la tienda (izq) y título + fecha de emisión (der).
func headerRow(storeName, title string, issued time.Time) core.Row {
	return row.New(16).Add(
		col.New(6).Add(
			text.New(storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(6).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Emitido: "+issued.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(header []string) core.Row {
	cols := make([]core.Col, 0, len(header))
	for i, h := range header {
		cols = append(cols, col.New(1).Add(text.New(h, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: columnAlign(i),
			Color: colorPrimary, Top: 2, Left: 0.5, Right: 0.5,
		})))
	}
	return row.New(8).Add(cols...)
}

// tableBodyRows: una fila por línea; las filas que abren una orden van sombreadas.
func tableBodyRows(table reporting.Table) []core.Row {
	rows := make([]core.Row, 0, len(table.Rows))
	for _, cells := range table.Rows {
		cols := make([]core.Col, 0, len(cells))
		for i, c := range cells {
			cols = append(cols, col.New(1).Add(text.New(c, props.Text{
				Size: 6.5, Align: columnAlign(i), Top: 1, Left: 0.5, Right: 0.5,
			})))
		}
		r := row.New(6).Add(cols...)
		if len(cells) > 0 && cells[0] != "" {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		rows = append(rows, row.New(10).Add(col.New(gridColumns).Add(
			text.New("Sin ventas en el período", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	return rows
}

// summaryRow: bloque de totales alineado a la derecha.
func summaryRow(s dto.SalesReportSummary) core.Row {
	label := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(v string, top float64) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Órdenes:", 1),
			label("Unidades:", 6),
			label("Ingresos:", 11),
		),
		col.New(3).Add(
			value(strconv.Itoa(s.Orders), 1),
			value(strconv.Itoa(s.Units), 6),
			value("$"+s.Revenue.StringFixed(2), 11),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// columnAlign montos y cantidades a la derecha (columnas 8 en adelante).
func columnAlign(i int) align.Type {
	if i >= 8 {
		return align.Right
	}
	return align.Left
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
