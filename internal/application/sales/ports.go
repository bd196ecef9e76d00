package sales

import (
	"context"

	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
)

// SalesRepos repositorios de inventario y ventas atados a una misma transacción.
type SalesRepos struct {
	inventory.LedgerRepos
	Sales     repository.SaleRepository
	Sequences repository.SequenceRepository
}

// SalesTxRunner ejecuta una función dentro de una transacción que incluye repos de inventario y ventas.
type SalesTxRunner interface {
	RunSales(ctx context.Context, fn func(repos SalesRepos) error) error
}

// StockLedger operaciones del libro de stock que la venta ejecuta en su propia transacción.
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type StockLedger interface {
	DeductForSaleInTx(ctx context.Context, repos inventory.LedgerRepos, productID string, quantity int, notes, actor string) (*entity.InventoryRecord, error)
	RestoreForSaleDeletionInTx(ctx context.Context, repos inventory.LedgerRepos, productID string, quantity int, notes, actor string) (*entity.InventoryRecord, error)
}
