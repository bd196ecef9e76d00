package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOrderFinalized    = errors.New("la orden ya está finalizada")
	ErrUnauthorized      = errors.New("no autorizado")
)

// Variantes de ErrNotFound: errors.Is(err, ErrNotFound) sigue siendo verdadero.
var (
	ErrProductNotFound = fmt.Errorf("producto: %w", ErrNotFound)
	ErrSaleNotFound    = fmt.Errorf("venta: %w", ErrNotFound)
)

// Invalid construye un error de validación con detalle legible.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
