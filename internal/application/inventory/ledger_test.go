package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	stockrules "github.com/jhoicas/tienda-pos-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/memory"
)

func newLedger(t *testing.T) (*inventory.StockLedgerUseCase, *memory.Store) {
	t.Helper()
	return newLedgerWithReorder(t, 10)
}

func newLedgerWithReorder(t *testing.T, defaultReorder int) (*inventory.StockLedgerUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore(time.UTC)
	store.PutProduct(entity.Product{ProductID: "P-001", Name: "Camiseta", Brand: "Marca", Category: "Ropa", Price: decimal.NewFromInt(100)})
	store.PutProduct(entity.Product{ProductID: "P-002", Name: "Gorra", Brand: "Marca", Category: "Accesorios", Price: decimal.NewFromInt(30)})
	uc := inventory.NewStockLedgerUseCase(store.TxRunner(), store.Inventory(), store.Transactions(), defaultReorder, nil)
	return uc, store
}

func intPtr(v int) *int { return &v }

func TestAdjustStock_LowStockThenStrictDeduct(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 5, ReorderPoint: 3})

	rec, err := uc.AdjustStock(ctx, "P-001", -3, inventory.AdjustOptions{CreatedBy: "caja01"})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Stock)
	assert.Equal(t, stockrules.StatusLowStock, stockrules.Classify(rec.Stock, rec.ReorderPoint))

	_, err = uc.DeductForSale(ctx, "P-001", 5, "caja01")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := uc.GetRecord(ctx, "P-001")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock, "un descuento rechazado no modifica el stock")

	txs := store.AllTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionOut, txs[0].Type)
	assert.Equal(t, 3, txs[0].Quantity)
	assert.Equal(t, "caja01", txs[0].CreatedBy)
	assert.Equal(t, "Ajuste manual de stock", txs[0].Notes)
}

func TestAdjustStock_ClampsAtZero(t *testing.T) {
	uc, store := newLedger(t)
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 2, ReorderPoint: 3})

	rec, err := uc.AdjustStock(context.Background(), "P-001", -10, inventory.AdjustOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Stock)

	txs := store.AllTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, 10, txs[0].Quantity)
}

func TestAdjustStock_CreatesRecordWithDefaults(t *testing.T) {
	uc, _ := newLedger(t)
	supplier := "PROV-1"

	rec, err := uc.AdjustStock(context.Background(), "P-002", 7, inventory.AdjustOptions{SupplierID: &supplier})
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Stock)
	assert.Equal(t, 10, rec.ReorderPoint)
	require.NotNil(t, rec.SupplierID)
	assert.Equal(t, "PROV-1", *rec.SupplierID)
	assert.NotNil(t, rec.LastRestocked)
}

func TestAdjustStock_UpdatesReorderPoint(t *testing.T) {
	uc, store := newLedger(t)
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 4, ReorderPoint: 3})

	rec, err := uc.AdjustStock(context.Background(), "P-001", 1, inventory.AdjustOptions{ReorderPoint: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Stock)
	assert.Equal(t, 8, rec.ReorderPoint)
}

func TestAdjustStock_Validation(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, "", 1, inventory.AdjustOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustStock(ctx, "P-001", 0, inventory.AdjustOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustStock(ctx, "P-001", 1, inventory.AdjustOptions{ReorderPoint: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustStock(ctx, "NOPE", 1, inventory.AdjustOptions{})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeductForSale_NoRecordIsInsufficient(t *testing.T) {
	uc, store := newLedger(t)

	_, err := uc.DeductForSale(context.Background(), "P-002", 1, "caja01")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, store.AllTransactions())
}

func TestDeductForSale_Exact(t *testing.T) {
	uc, store := newLedger(t)
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 3, ReorderPoint: 1})

	rec, err := uc.DeductForSale(context.Background(), "P-001", 3, "caja01")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Stock)
	assert.Equal(t, stockrules.StatusOutOfStock, stockrules.Classify(rec.Stock, rec.ReorderPoint))
}

func TestRestoreForSaleDeletion(t *testing.T) {
	uc, store := newLedger(t)
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 1, ReorderPoint: 1})

	rec, err := uc.RestoreForSaleDeletion(context.Background(), "P-001", 4, "admin")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Stock)

	txs := store.AllTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionIn, txs[0].Type)
	assert.Equal(t, "Reverso por eliminación de venta", txs[0].Notes)

	_, err = uc.RestoreForSaleDeletion(context.Background(), "P-001", 0, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConcurrentDeductions_NeverNegative(t *testing.T) {
	uc, store := newLedger(t)
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 10, ReorderPoint: 2})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.DeductForSale(context.Background(), "P-001", 1, "caja"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	rec, err := uc.GetRecord(context.Background(), "P-001")
	require.NoError(t, err)
	assert.Equal(t, 10, success)
	assert.Equal(t, 0, rec.Stock)
	assert.Len(t, store.AllTransactions(), 10)
}

func TestBulkStockIn_AllOrNothing(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 2, ReorderPoint: 3})

	_, err := uc.BulkStockIn(ctx, dto.BulkStockInRequest{
		Supplier:   "Proveedor SA",
		ReceivedBy: "bodega01",
		Items: []dto.BulkStockInLine{
			{ProductID: "P-001", Quantity: 5},
			{ProductID: "NOPE", Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	rec, err := uc.GetRecord(ctx, "P-001")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Stock)
	assert.Empty(t, store.AllTransactions())
}

func TestBulkStockIn_Applies(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()

	records, err := uc.BulkStockIn(ctx, dto.BulkStockInRequest{
		Supplier:     "Proveedor SA",
		ReceivedBy:   "bodega01",
		SerialNumber: "F-778",
		Items: []dto.BulkStockInLine{
			{ProductID: "P-001", Quantity: 5},
			{ProductID: "P-002", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 5, records[0].Stock)
	assert.Equal(t, 2, records[1].Stock)

	txs := store.AllTransactions()
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, entity.TransactionIn, tx.Type)
		assert.Equal(t, "bodega01", tx.CreatedBy)
		assert.Equal(t, "Ingreso de mercancía - Proveedor: Proveedor SA, Serial: F-778, Recibido por: bodega01", tx.Notes)
	}
}

func TestBulkStockIn_Validation(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.BulkStockIn(ctx, dto.BulkStockInRequest{ReceivedBy: "x", Items: []dto.BulkStockInLine{{ProductID: "P-001", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.BulkStockIn(ctx, dto.BulkStockInRequest{Supplier: "s", ReceivedBy: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.BulkStockIn(ctx, dto.BulkStockInRequest{Supplier: "s", ReceivedBy: "x", Items: []dto.BulkStockInLine{{ProductID: "P-001", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetLowStockAndStats(t *testing.T) {
	uc, store := newLedger(t)
	store.PutProduct(entity.Product{ProductID: "P-003", Name: "Bolso", Price: decimal.NewFromInt(50)})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 2, ReorderPoint: 3})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-002", Stock: 0, ReorderPoint: 3})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-003", Stock: 20, ReorderPoint: 3})
	ctx := context.Background()

	low, err := uc.GetLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "P-001", low[0].ProductID)
	assert.Equal(t, stockrules.StatusLowStock, low[0].Status)

	stats, err := uc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, 1, stats.InStock)
	assert.Equal(t, 22, stats.TotalUnits)
	assert.True(t, decimal.NewFromInt(1200).Equal(stats.InventoryValue), stats.InventoryValue.String())
}

func TestReplenishmentList_Ordering(t *testing.T) {
	uc, store := newLedger(t)
	store.PutProduct(entity.Product{ProductID: "P-003", Name: "Bolso", Price: decimal.NewFromInt(50)})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 1, ReorderPoint: 10})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-002", Stock: 0, ReorderPoint: 2})
	store.PutInventory(entity.InventoryRecord{ProductID: "P-003", Stock: 50, ReorderPoint: 5})

	list, err := uc.ReplenishmentList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "P-002", list[0].ProductID)
	assert.Equal(t, 4, list[0].SuggestedQty)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, "P-001", list[1].ProductID)
	assert.Equal(t, 20, list[1].IdealStock)
	assert.Equal(t, 19, list[1].SuggestedQty)
}

func TestListTransactions_NewestFirstPaged(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_, err := uc.AdjustStock(ctx, "P-001", i, inventory.AdjustOptions{})
		require.NoError(t, err)
	}

	resp, err := uc.ListTransactions(ctx, "P-001", dto.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, 3, resp.Page.Total)
	assert.Equal(t, 2, resp.Page.TotalPages)

	_, err = uc.ListTransactions(ctx, "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfiguredDefaultReorderPoint_AppliesToProductsWithoutRecord(t *testing.T) {
	uc, store := newLedgerWithReorder(t, 5)
	store.PutInventory(entity.InventoryRecord{ProductID: "P-002", Stock: 4, ReorderPoint: 5})
	ctx := context.Background()

	rec, err := uc.GetRecord(ctx, "P-001")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.ReorderPoint)

	list, err := uc.ReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "P-001", list[0].ProductID)
	assert.Equal(t, 5, list[0].ReorderPoint)
	assert.Equal(t, 10, list[0].IdealStock)
	assert.Equal(t, 10, list[0].SuggestedQty)

	store.PutInventory(entity.InventoryRecord{ProductID: "P-002", Stock: 8, ReorderPoint: 5})
	low, err := uc.GetLowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	created, err := uc.AdjustStock(ctx, "P-001", 3, inventory.AdjustOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, created.ReorderPoint)
}

func TestDeductForSale_ValidatesBeforeLookup(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()

	_, err := uc.DeductForSale(ctx, "NOPE", 0, "caja01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.DeductForSale(ctx, "", 1, "caja01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.DeductForSale(ctx, "P-001", stockrules.MaxQuantity+1, "caja01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.DeductForSale(ctx, "NOPE", 1, "caja01")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, store.AllTransactions())
}

func TestAdjustStock_QuantityBounds(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.PutInventory(entity.InventoryRecord{ProductID: "P-001", Stock: 4, ReorderPoint: 3})

	_, err := uc.AdjustStock(ctx, "P-001", stockrules.MaxQuantity+1, inventory.AdjustOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AdjustStock(ctx, "P-001", -stockrules.MaxQuantity-1, inventory.AdjustOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustStock(ctx, "P-001", stockrules.MaxQuantity-4, inventory.AdjustOptions{})
	require.NoError(t, err)
	_, err = uc.AdjustStock(ctx, "P-001", 1, inventory.AdjustOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rec, err := uc.GetRecord(ctx, "P-001")
	require.NoError(t, err)
	assert.Equal(t, stockrules.MaxQuantity, rec.Stock, "un ajuste que desborda no modifica el stock")
	assert.Len(t, store.AllTransactions(), 1)

	_, err = uc.BulkStockIn(ctx, dto.BulkStockInRequest{
		Supplier: "s", ReceivedBy: "x",
		Items: []dto.BulkStockInLine{{ProductID: "P-002", Quantity: stockrules.MaxQuantity + 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBulkStockIn_LocksByProductKeepsLineOrder(t *testing.T) {
	uc, store := newLedger(t)

	records, err := uc.BulkStockIn(context.Background(), dto.BulkStockInRequest{
		Supplier:   "Proveedor SA",
		ReceivedBy: "bodega01",
		Items: []dto.BulkStockInLine{
			{ProductID: "P-002", Quantity: 2},
			{ProductID: "P-001", Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "P-002", records[0].ProductID)
	assert.Equal(t, "P-001", records[1].ProductID)

	txs := store.AllTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "P-001", txs[0].ProductID)
	assert.Equal(t, "P-002", txs[1].ProductID)
}
