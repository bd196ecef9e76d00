package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `id, product_id, stock, reorder_point, supplier_id, last_restocked, updated_at`

// Get obtiene el registro de inventario de un producto.
func (r *InventoryRepo) Get(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1`, productID)
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1 FOR UPDATE`, productID)
}

func (r *InventoryRepo) get(ctx context.Context, query, productID string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&rec.ID, &rec.ProductID, &rec.Stock, &rec.ReorderPoint, &rec.SupplierID, &rec.LastRestocked, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &rec, nil
}

// Ensure crea el registro en cero si no existe (dos transacciones concurrentes no duplican: ON CONFLICT)
// y lo devuelve bloqueado.
func (r *InventoryRepo) Ensure(ctx context.Context, productID string, reorderPoint int) (*entity.InventoryRecord, error) {
	query := `
		INSERT INTO inventory (product_id, stock, reorder_point, updated_at)
		VALUES ($1, 0, $2, now())
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, reorderPoint); err != nil {
		return nil, fmt.Errorf("ensure inventory: %w", err)
	}
	rec, err := r.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("ensure inventory: %w: %s", domain.ErrProductNotFound, productID)
	}
	return rec, nil
}

// Update persiste stock, punto de reorden, proveedor y fecha de reabastecimiento.
func (r *InventoryRepo) Update(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory
		SET stock = $2, reorder_point = $3, supplier_id = $4, last_restocked = $5, updated_at = $6
		WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query, rec.ProductID, rec.Stock, rec.ReorderPoint, rec.SupplierID, rec.LastRestocked, rec.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, rec.ProductID)
		}
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update inventory: %w: %s", domain.ErrNotFound, rec.ProductID)
	}
	return nil
}

// ListStockLevels todos los productos con su stock; sin registro = stock 0 y punto de reorden por defecto.
func (r *InventoryRepo) ListStockLevels(ctx context.Context, defaultReorder int) ([]entity.StockLevel, error) {
	query := `
		SELECT p.product_id, p.name, p.brand, p.category, p.price,
		       COALESCE(i.stock, 0), COALESCE(i.reorder_point, $1)
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.product_id
		ORDER BY p.product_id`
	rows, err := r.q.Query(ctx, query, defaultReorder)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()

	var out []entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Brand, &l.Category, &l.Price, &l.Stock, &l.ReorderPoint); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
