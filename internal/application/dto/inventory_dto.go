package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/:product_id/adjust.
// Quantity positivo repone, negativo descuenta (el stock no baja de cero).
type AdjustStockRequest struct {
	Quantity     int     `json:"quantity"`
	ReorderPoint *int    `json:"reorder_point,omitempty"`
	SupplierID   *string `json:"supplier_id,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// DeductStockRequest body para POST /api/inventory/:product_id/deduct.
type DeductStockRequest struct {
	Quantity int `json:"quantity"`
}

// BulkStockInLine línea de ingreso masivo.
type BulkStockInLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// BulkStockInRequest body para POST /api/inventory/stock-in.
type BulkStockInRequest struct {
	Supplier     string            `json:"supplier"`
	ReceivedBy   string            `json:"received_by"`
	SerialNumber string            `json:"serial_number"`
	Items        []BulkStockInLine `json:"items"`
}

// InventoryRecordResponse estado de inventario de un producto.
type InventoryRecordResponse struct {
	ProductID     string     `json:"product_id"`
	Stock         int        `json:"stock"`
	ReorderPoint  int        `json:"reorder_point"`
	SupplierID    *string    `json:"supplier_id,omitempty"`
	LastRestocked *time.Time `json:"last_restocked,omitempty"`
	Status        string     `json:"status"`
}

// StockLevelResponse producto con su stock y clasificación.
type StockLevelResponse struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ReorderPoint int             `json:"reorder_point"`
	Status       string          `json:"status"`
}

// InventoryStatsResponse agregados del inventario.
type InventoryStatsResponse struct {
	TotalProducts  int             `json:"total_products"`
	InStock        int             `json:"in_stock"`
	LowStock       int             `json:"low_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	TotalUnits     int             `json:"total_units"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// InventoryTransactionResponse fila del historial de movimientos.
type InventoryTransactionResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// TransactionListResponse historial paginado.
type TransactionListResponse struct {
	Items []InventoryTransactionResponse `json:"items"`
	Page  PageResponse                   `json:"page"`
}
