package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultReorderPoint punto de reorden cuando no se especifica uno.
const DefaultReorderPoint = 10

// InventoryRecord stock actual de un producto (1:1 con products vía product_id).
// Solo lo modifica el libro de stock; Stock nunca es negativo.
type InventoryRecord struct {
	ID            int64
	ProductID     string
	Stock         int
	ReorderPoint  int
	SupplierID    *string
	LastRestocked *time.Time
	UpdatedAt     time.Time
}

// StockLevel fila de lectura: producto + inventario (LEFT JOIN; sin registro = stock 0).
type StockLevel struct {
	ProductID    string
	Name         string
	Brand        string
	Category     string
	Price        decimal.Decimal
	Stock        int
	ReorderPoint int
}
