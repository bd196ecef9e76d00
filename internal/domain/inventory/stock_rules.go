// Package inventory reúne las reglas puras del libro de stock (servicio de dominio).
package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
)

// Clasificación de stock usada en todos los reportes.
const (
	StatusOutOfStock = "Out of Stock"
	StatusLowStock   = "Low Stock"
	StatusInStock    = "In Stock"
	StatusOverstock  = "Overstock"
)

// MaxQuantity tope de cantidades y existencias (columna int4 de PostgreSQL).
const MaxQuantity = math.MaxInt32

// ValidQuantity cantidad de línea o descuento: 0 < q <= MaxQuantity.
func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxQuantity
}

// ValidDelta delta de ajuste manual: distinto de cero y |delta| <= MaxQuantity.
func ValidDelta(delta int) bool {
	return delta != 0 && delta >= -MaxQuantity && delta <= MaxQuantity
}

// Overflows indica si sumar delta a current supera MaxQuantity.
func Overflows(current, delta int) bool {
	return delta > 0 && current > MaxQuantity-delta
}

// LockOrder índices de ids ordenados por código de producto. Las transacciones que bloquean
// varias filas de inventario las recorren en este orden para no cruzarse.
func LockOrder(ids []string) []int {
	idx := make([]int, len(ids))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return ids[idx[a]] < ids[idx[b]] })
	return idx
}

// ApplyDelta calcula el stock resultante de un ajuste manual. Nunca baja de cero.
func ApplyDelta(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// Direction devuelve in para deltas positivos y out en otro caso.
func Direction(delta int) string {
	if delta > 0 {
		return entity.TransactionIn
	}
	return entity.TransactionOut
}

// Abs cantidad registrada en el historial para un delta.
func Abs(delta int) int {
	if delta < 0 {
		return -delta
	}
	return delta
}

// IsLowStock regla canónica: 0 < stock <= punto de reorden.
func IsLowStock(stock, reorderPoint int) bool {
	return stock > 0 && stock <= reorderPoint
}

// Classify asigna el estado de stock de un producto.
// Overstock exige un punto de reorden positivo; con reorden 0 cualquier existencia es In Stock.
func Classify(stock, reorderPoint int) string {
	switch {
	case stock <= 0:
		return StatusOutOfStock
	case IsLowStock(stock, reorderPoint):
		return StatusLowStock
	case reorderPoint > 0 && stock >= 2*reorderPoint:
		return StatusOverstock
	default:
		return StatusInStock
	}
}
