package reporting

import (
	"strconv"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
)

// Table tabla plana de exportación: una fila de encabezado y filas de datos.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columnas del reporte de ventas. Las primeras orderColumns describen la orden.
var salesReportHeader = []string{
	"N° Venta", "Fecha", "Cliente", "Contacto", "Método de pago", "Estado de pago",
	"Producto", "Marca", "Precio unit.", "Cant.", "Subtotal", "Total orden",
}

const orderColumns = 6

// OrderBlockTable arma el layout "bloque de orden": la primera fila de cada venta lleva los datos
// de la orden y el total; las siguientes filas de la misma venta dejan esas celdas en blanco.
// Una venta sin líneas ocupa una sola fila con las celdas de producto vacías.
func OrderBlockTable(rows []dto.SaleReportRow) Table {
	t := Table{Header: append([]string(nil), salesReportHeader...)}
	for _, r := range rows {
		order := []string{
			r.SaleNumber,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.CustomerName,
			r.Contact,
			r.PaymentMethod,
			r.PaymentStatus,
		}
		blank := make([]string, orderColumns)
		if len(r.Items) == 0 {
			t.Rows = append(t.Rows, concat(order, []string{"", "", "", "", "", r.Total.StringFixed(2)}))
			continue
		}
		for i, it := range r.Items {
			lead, total := order, r.Total.StringFixed(2)
			if i > 0 {
				lead, total = blank, ""
			}
			t.Rows = append(t.Rows, concat(lead, []string{
				it.ProductName,
				it.Brand,
				it.UnitPrice.StringFixed(2),
				strconv.Itoa(it.Quantity),
				it.Subtotal.StringFixed(2),
				total,
			}))
		}
	}
	return t
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
