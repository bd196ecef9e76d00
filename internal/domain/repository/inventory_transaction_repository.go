package repository

import (
	"context"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
)

// InventoryTransactionRepository historial append-only de movimientos de stock.
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *entity.InventoryTransaction) error
	// ListByProduct más recientes primero; devuelve también el total sin paginar.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, int, error)
}
