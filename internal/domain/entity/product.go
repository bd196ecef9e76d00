package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de catálogo de un producto.
const (
	ProductStatusActive   = "Active"
	ProductStatusInactive = "Inactive"
)

// Product representa un artículo del catálogo. La identidad externa es ProductID (código); ID es interno.
// El catálogo se administra fuera de este servicio: aquí solo se lee.
type Product struct {
	ID        int64
	ProductID string // código estable, p. ej. "P-0001"
	Name      string
	Brand     string
	Category  string
	Price     decimal.Decimal // precio de venta vigente
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si el producto está activo en catálogo.
func (p *Product) IsActive() bool {
	return p.Status == "" || p.Status == ProductStatusActive
}
