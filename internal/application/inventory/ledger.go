package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	stockrules "github.com/jhoicas/tienda-pos-api/internal/domain/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
	"github.com/jhoicas/tienda-pos-api/internal/domain/sequence"
	"github.com/jhoicas/tienda-pos-api/pkg/logger"
)

// AdjustOptions opciones de un ajuste de stock. Campos nil se conservan.
type AdjustOptions struct {
	ReorderPoint *int
	SupplierID   *string
	Notes        string
	CreatedBy    string
}

// StockLedgerUseCase libro de stock: único punto que modifica inventory y escribe inventory_transactions.
// Cada mutación bloquea la fila de inventario (SELECT FOR UPDATE) dentro de su transacción.
type StockLedgerUseCase struct {
	txRunner            TxRunner
	inventoryRepo       repository.InventoryRepository
	transactionRepo     repository.InventoryTransactionRepository
	defaultReorderPoint int
	now                 func() time.Time
	log                 *logger.Logger
}

// NewStockLedgerUseCase construye el caso de uso. defaultReorderPoint < 0 usa entity.DefaultReorderPoint.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	inventoryRepo repository.InventoryRepository,
	transactionRepo repository.InventoryTransactionRepository,
	defaultReorderPoint int,
	log *logger.Logger,
) *StockLedgerUseCase {
	if defaultReorderPoint < 0 {
		defaultReorderPoint = entity.DefaultReorderPoint
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedgerUseCase{
		txRunner:            txRunner,
		inventoryRepo:       inventoryRepo,
		transactionRepo:     transactionRepo,
		defaultReorderPoint: defaultReorderPoint,
		now:                 time.Now,
		log:                 log.Component("stock_ledger"),
	}
}

// AdjustStock aplica un ajuste manual en su propia transacción.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, productID string, delta int, opts AdjustOptions) (*entity.InventoryRecord, error) {
	if err := validateAdjust(productID, delta, opts); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos LedgerRepos) error {
		var err error
		rec, err = uc.AdjustInTx(ctx, repos, productID, delta, opts)
		return err
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Int("delta", delta).Msg("ajuste de stock rechazado")
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Int("delta", delta).Int("stock", rec.Stock).Msg("stock ajustado")
	return rec, nil
}

// AdjustInTx ajusta el stock usando los repositorios del caller (misma transacción).
// Crea el registro de inventario si no existe; el resultado nunca es negativo.
func (uc *StockLedgerUseCase) AdjustInTx(ctx context.Context, repos LedgerRepos, productID string, delta int, opts AdjustOptions) (*entity.InventoryRecord, error) {
	if err := validateAdjust(productID, delta, opts); err != nil {
		return nil, err
	}
	product, err := repos.Products.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	rec, err := repos.Inventory.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		reorder := uc.defaultReorderPoint
		if opts.ReorderPoint != nil {
			reorder = *opts.ReorderPoint
		}
		if rec, err = repos.Inventory.Ensure(ctx, productID, reorder); err != nil {
			return nil, err
		}
	}

	if stockrules.Overflows(rec.Stock, delta) {
		return nil, domain.Invalid("%s: el stock resultante supera el máximo (%d)", productID, stockrules.MaxQuantity)
	}

	now := uc.now()
	rec.Stock = stockrules.ApplyDelta(rec.Stock, delta)
	if opts.ReorderPoint != nil {
		rec.ReorderPoint = *opts.ReorderPoint
	}
	if opts.SupplierID != nil {
		rec.SupplierID = opts.SupplierID
	}
	if delta > 0 {
		rec.LastRestocked = &now
	}
	rec.UpdatedAt = now
	if err := repos.Inventory.Update(ctx, rec); err != nil {
		return nil, err
	}

	notes := opts.Notes
	if notes == "" {
		notes = "Ajuste manual de stock"
	}
	if err := uc.appendTransaction(ctx, repos, rec, stockrules.Direction(delta), stockrules.Abs(delta), notes, opts.CreatedBy, now); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeductForSale descuento estricto en su propia transacción.
func (uc *StockLedgerUseCase) DeductForSale(ctx context.Context, productID string, quantity int, actor string) (*entity.InventoryRecord, error) {
	if err := validateDeduct(productID, quantity); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos LedgerRepos) error {
		product, err := repos.Products.GetByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		rec, err = uc.DeductForSaleInTx(ctx, repos, productID, quantity, "Descuento por venta", actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeductForSaleInTx descuenta exactamente quantity o falla con ErrInsufficientStock (sin recortar a cero).
// Un producto sin registro de inventario tiene stock 0.
func (uc *StockLedgerUseCase) DeductForSaleInTx(ctx context.Context, repos LedgerRepos, productID string, quantity int, notes, actor string) (*entity.InventoryRecord, error) {
	if err := validateDeduct(productID, quantity); err != nil {
		return nil, err
	}
	rec, err := repos.Inventory.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s sin registro de inventario", domain.ErrInsufficientStock, productID)
	}
	if rec.Stock < quantity {
		return nil, fmt.Errorf("%w: %s disponible %d, solicitado %d", domain.ErrInsufficientStock, productID, rec.Stock, quantity)
	}

	now := uc.now()
	rec.Stock -= quantity
	rec.UpdatedAt = now
	if err := repos.Inventory.Update(ctx, rec); err != nil {
		return nil, err
	}
	if notes == "" {
		notes = "Descuento por venta"
	}
	if err := uc.appendTransaction(ctx, repos, rec, entity.TransactionOut, quantity, notes, actor, now); err != nil {
		return nil, err
	}
	return rec, nil
}

// RestoreForSaleDeletion devuelve stock en su propia transacción.
func (uc *StockLedgerUseCase) RestoreForSaleDeletion(ctx context.Context, productID string, quantity int, actor string) (*entity.InventoryRecord, error) {
	var rec *entity.InventoryRecord
	err := uc.txRunner.Run(ctx, func(repos LedgerRepos) error {
		var err error
		rec, err = uc.RestoreForSaleDeletionInTx(ctx, repos, productID, quantity, "", actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// RestoreForSaleDeletionInTx equivale a un ajuste positivo de quantity.
func (uc *StockLedgerUseCase) RestoreForSaleDeletionInTx(ctx context.Context, repos LedgerRepos, productID string, quantity int, notes, actor string) (*entity.InventoryRecord, error) {
	if !stockrules.ValidQuantity(quantity) {
		return nil, domain.Invalid("cantidad a restaurar fuera de rango: %d", quantity)
	}
	if notes == "" {
		notes = "Reverso por eliminación de venta"
	}
	return uc.AdjustInTx(ctx, repos, productID, quantity, AdjustOptions{Notes: notes, CreatedBy: actor})
}

// BulkStockIn ingreso masivo de mercancía: todas las líneas o ninguna.
func (uc *StockLedgerUseCase) BulkStockIn(ctx context.Context, in dto.BulkStockInRequest) ([]*entity.InventoryRecord, error) {
	supplier := strings.TrimSpace(in.Supplier)
	receivedBy := strings.TrimSpace(in.ReceivedBy)
	serial := strings.TrimSpace(in.SerialNumber)
	if supplier == "" || receivedBy == "" {
		return nil, domain.Invalid("supplier y received_by son requeridos")
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("el ingreso no tiene líneas")
	}
	ids := make([]string, len(in.Items))
	for i, line := range in.Items {
		ids[i] = strings.TrimSpace(line.ProductID)
		if ids[i] == "" || !stockrules.ValidQuantity(line.Quantity) {
			return nil, domain.Invalid("línea %d: product_id y cantidad entre 1 y %d requeridos", i+1, stockrules.MaxQuantity)
		}
	}

	notes := fmt.Sprintf("Ingreso de mercancía - Proveedor: %s, Serial: %s, Recibido por: %s", supplier, serial, receivedBy)
	// Bloqueo por código de producto; la respuesta conserva el orden de las líneas.
	records := make([]*entity.InventoryRecord, len(in.Items))
	err := uc.txRunner.Run(ctx, func(repos LedgerRepos) error {
		for _, i := range stockrules.LockOrder(ids) {
			rec, err := uc.AdjustInTx(ctx, repos, ids[i], in.Items[i].Quantity, AdjustOptions{
				Notes:     notes,
				CreatedBy: receivedBy,
			})
			if err != nil {
				return err
			}
			records[i] = rec
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("supplier", supplier).Str("serial", serial).Msg("ingreso masivo revertido")
		return nil, err
	}
	uc.log.Info().Str("supplier", supplier).Str("serial", serial).Int("lines", len(records)).Msg("ingreso masivo aplicado")
	return records, nil
}

// GetLowStock productos con 0 < stock <= punto de reorden.
func (uc *StockLedgerUseCase) GetLowStock(ctx context.Context) ([]dto.StockLevelResponse, error) {
	levels, err := uc.inventoryRepo.ListStockLevels(ctx, uc.defaultReorderPoint)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0)
	for _, l := range levels {
		if stockrules.IsLowStock(l.Stock, l.ReorderPoint) {
			out = append(out, ToStockLevelResponse(l))
		}
	}
	return out, nil
}

// GetStats conteos por estado, unidades totales y valor del inventario a precio de venta.
func (uc *StockLedgerUseCase) GetStats(ctx context.Context) (*dto.InventoryStatsResponse, error) {
	levels, err := uc.inventoryRepo.ListStockLevels(ctx, uc.defaultReorderPoint)
	if err != nil {
		return nil, err
	}
	stats := &dto.InventoryStatsResponse{TotalProducts: len(levels), InventoryValue: decimal.Zero}
	for _, l := range levels {
		switch {
		case l.Stock <= 0:
			stats.OutOfStock++
		case stockrules.IsLowStock(l.Stock, l.ReorderPoint):
			stats.LowStock++
		default:
			stats.InStock++
		}
		if l.Stock > 0 {
			stats.TotalUnits += l.Stock
			stats.InventoryValue = stats.InventoryValue.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Stock))))
		}
	}
	return stats, nil
}

// GetRecord estado de inventario de un producto (stock 0 si aún no tiene registro).
func (uc *StockLedgerUseCase) GetRecord(ctx context.Context, productID string) (*dto.InventoryRecordResponse, error) {
	rec, err := uc.inventoryRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &entity.InventoryRecord{ProductID: productID, ReorderPoint: uc.defaultReorderPoint}
	}
	return ToRecordResponse(rec), nil
}

// ListTransactions historial de movimientos de un producto, más recientes primero.
func (uc *StockLedgerUseCase) ListTransactions(ctx context.Context, productID string, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id requerido")
	}
	page.DefaultPage()
	list, total, err := uc.transactionRepo.ListByProduct(ctx, productID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	resp := &dto.TransactionListResponse{
		Items: make([]dto.InventoryTransactionResponse, 0, len(list)),
		Page:  dto.NewPageResponse(page, total),
	}
	for _, t := range list {
		resp.Items = append(resp.Items, dto.InventoryTransactionResponse{
			ID:        t.ID,
			ProductID: t.ProductID,
			Type:      t.Type,
			Quantity:  t.Quantity,
			Notes:     t.Notes,
			CreatedAt: t.CreatedAt,
			CreatedBy: t.CreatedBy,
		})
	}
	return resp, nil
}

func (uc *StockLedgerUseCase) appendTransaction(
	ctx context.Context,
	repos LedgerRepos,
	rec *entity.InventoryRecord,
	direction string, quantity int,
	notes, actor string,
	now time.Time,
) error {
	return repos.Transactions.Create(ctx, &entity.InventoryTransaction{
		ID:          sequence.NewTransactionID(),
		InventoryID: rec.ID,
		ProductID:   rec.ProductID,
		Type:        direction,
		Quantity:    quantity,
		Notes:       notes,
		CreatedAt:   now,
		CreatedBy:   actor,
	})
}

func validateAdjust(productID string, delta int, opts AdjustOptions) error {
	if strings.TrimSpace(productID) == "" {
		return domain.Invalid("product_id requerido")
	}
	if delta == 0 {
		return domain.Invalid("la cantidad del ajuste no puede ser cero")
	}
	if !stockrules.ValidDelta(delta) {
		return domain.Invalid("la cantidad del ajuste supera el máximo (%d)", stockrules.MaxQuantity)
	}
	if opts.ReorderPoint != nil && *opts.ReorderPoint < 0 {
		return domain.Invalid("reorder_point no puede ser negativo")
	}
	return nil
}

func validateDeduct(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" || !stockrules.ValidQuantity(quantity) {
		return domain.Invalid("product_id y cantidad entre 1 y %d requeridos", stockrules.MaxQuantity)
	}
	return nil
}

// ToStockLevelResponse convierte una fila de stock aplicando la clasificación canónica.
func ToStockLevelResponse(l entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:    l.ProductID,
		Name:         l.Name,
		Brand:        l.Brand,
		Category:     l.Category,
		Price:        l.Price,
		Stock:        l.Stock,
		ReorderPoint: l.ReorderPoint,
		Status:       stockrules.Classify(l.Stock, l.ReorderPoint),
	}
}

// ToRecordResponse convierte un registro de inventario.
func ToRecordResponse(rec *entity.InventoryRecord) *dto.InventoryRecordResponse {
	return &dto.InventoryRecordResponse{
		ProductID:     rec.ProductID,
		Stock:         rec.Stock,
		ReorderPoint:  rec.ReorderPoint,
		SupplierID:    rec.SupplierID,
		LastRestocked: rec.LastRestocked,
		Status:        stockrules.Classify(rec.Stock, rec.ReorderPoint),
	}
}
