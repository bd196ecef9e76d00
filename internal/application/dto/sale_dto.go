package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de la venta solicitada.
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerName  string            `json:"customer_name"`
	Contact       string            `json:"contact"`
	PaymentMethod string            `json:"payment"`
	PaymentStatus string            `json:"payment_status,omitempty"` // Paid | Unpaid (por defecto)
	Address       *string           `json:"address,omitempty"`
	Items         []SaleItemRequest `json:"items"`
}

// CreateSaleResponse resultado de crear una venta.
type CreateSaleResponse struct {
	SaleID     int64           `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Total      decimal.Decimal `json:"total"`
}

// UpdateSaleRequest actualización parcial: solo se aplican los campos presentes.
type UpdateSaleRequest struct {
	CustomerName  *string          `json:"customer_name,omitempty"`
	Contact       *string          `json:"contact,omitempty"`
	PaymentMethod *string          `json:"payment,omitempty"`
	PaymentStatus *string          `json:"payment_status,omitempty"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	Status        *string          `json:"status,omitempty"`
	Address       *string          `json:"address,omitempty"`
}

// SaleItemResponse línea de venta (copia histórica de nombre, marca y precio).
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID            int64              `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	CustomerName  string             `json:"customer_name"`
	Contact       string             `json:"contact"`
	PaymentMethod string             `json:"payment"`
	PaymentStatus string             `json:"payment_status"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	Address       *string            `json:"address,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items"`
}

// SalesStatsResponse agregados de ventas del rango pedido.
type SalesStatsResponse struct {
	TotalSales   int             `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageSale  decimal.Decimal `json:"average_sale"`
	TodaySales   int             `json:"today_sales"`
}
