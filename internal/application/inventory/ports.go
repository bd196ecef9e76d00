package inventory

import (
	"context"

	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
)

// LedgerRepos repositorios atados a una misma transacción.
type LedgerRepos struct {
	Products     repository.ProductRepository
	Inventory    repository.InventoryRepository
	Transactions repository.InventoryTransactionRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y el error llega al caller sin envolver.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos LedgerRepos) error) error
}
