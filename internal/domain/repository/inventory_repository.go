package repository

import (
	"context"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
)

// InventoryRepository define el puerto para consultar/actualizar el registro de inventario de un producto.
// Usado dentro de transacciones para garantizar consistencia.
type InventoryRepository interface {
	// Get devuelve nil, nil si el producto aún no tiene registro.
	Get(ctx context.Context, productID string) (*entity.InventoryRecord, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.InventoryRecord, error)
	// Ensure crea el registro con stock 0 si no existe y lo devuelve bloqueado.
	Ensure(ctx context.Context, productID string, reorderPoint int) (*entity.InventoryRecord, error)
	Update(ctx context.Context, record *entity.InventoryRecord) error
	// ListStockLevels todos los productos con su stock. Sin registro: stock 0 y defaultReorder.
	ListStockLevels(ctx context.Context, defaultReorder int) ([]entity.StockLevel, error)
}
