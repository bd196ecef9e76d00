package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
)

// Ensure TxRunner implements inventory.TxRunner and sales.SalesTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sales.SalesTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.LedgerRepos) error) error {
	return r.within(ctx, func(tx pgx.Tx) error {
		return fn(ledgerRepos(tx))
	})
}

// RunSales igual que Run pero agrega repos de ventas y del consecutivo diario.
func (r *TxRunner) RunSales(ctx context.Context, fn func(repos sales.SalesRepos) error) error {
	return r.within(ctx, func(tx pgx.Tx) error {
		return fn(sales.SalesRepos{
			LedgerRepos: ledgerRepos(tx),
			Sales:       NewSaleRepository(tx),
			Sequences:   NewSequenceRepository(tx),
		})
	})
}

func (r *TxRunner) within(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func ledgerRepos(q Querier) inventory.LedgerRepos {
	return inventory.LedgerRepos{
		Products:     NewProductRepository(q),
		Inventory:    NewInventoryRepository(q),
		Transactions: NewInventoryTransactionRepository(q),
	}
}
