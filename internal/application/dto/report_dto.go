package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Períodos de la tendencia de ventas.
const (
	TrendDaily7    = "daily7"
	TrendDaily30   = "daily30"
	TrendMonthly12 = "monthly12"
)

// SalesReportQuery filtros del reporte de ventas. Fechas inclusivas por día.
type SalesReportQuery struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Page     PageRequest
}

// SaleReportRow venta completada con totales recalculados desde sus líneas.
type SaleReportRow struct {
	ID            int64              `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	CustomerName  string             `json:"customer_name"`
	Contact       string             `json:"contact"`
	PaymentMethod string             `json:"payment"`
	PaymentStatus string             `json:"payment_status"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	StoredTotal   decimal.Decimal    `json:"stored_total"`
	ItemCount     int                `json:"item_count"`
	Total         decimal.Decimal    `json:"total"`
	TotalMismatch bool               `json:"total_mismatch"`
	Items         []SaleItemResponse `json:"items"`
}

// SalesReportSummary totales del conjunto filtrado mostrado.
type SalesReportSummary struct {
	Orders  int             `json:"orders"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesReportResponse página del reporte de ventas.
type SalesReportResponse struct {
	Rows    []SaleReportRow    `json:"rows"`
	Summary SalesReportSummary `json:"summary"`
	Page    PageResponse       `json:"page"`
}

// TrendPointResponse un período de la tendencia.
type TrendPointResponse struct {
	Period string          `json:"period"` // 2006-01-02 o 2006-01
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

// SalesTrendResponse serie completa (sin huecos) del período pedido.
type SalesTrendResponse struct {
	Period string               `json:"period"`
	Points []TrendPointResponse `json:"points"`
}
