package entity

import "time"

// Dirección de un movimiento de stock.
const (
	TransactionIn  = "in"
	TransactionOut = "out"
)

// InventoryTransaction fila append-only del historial de stock. Nunca se actualiza ni se borra.
type InventoryTransaction struct {
	ID          string // ver sequence.NewTransactionID
	InventoryID int64
	ProductID   string
	Type        string // in | out
	Quantity    int    // siempre positivo
	Notes       string
	CreatedAt   time.Time
	CreatedBy   string
}
