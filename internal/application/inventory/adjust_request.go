package inventory

import (
	"context"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
)

// AdjustStockFromRequest adapta el request HTTP al caso de uso AdjustStock(ctx, productID, delta, opts).
// actor es el operador autenticado que queda como created_by del movimiento.
func (uc *StockLedgerUseCase) AdjustStockFromRequest(ctx context.Context, actor, productID string, in dto.AdjustStockRequest) (*dto.InventoryRecordResponse, error) {
	rec, err := uc.AdjustStock(ctx, productID, in.Quantity, AdjustOptions{
		ReorderPoint: in.ReorderPoint,
		SupplierID:   in.SupplierID,
		Notes:        in.Notes,
		CreatedBy:    actor,
	})
	if err != nil {
		return nil, err
	}
	return ToRecordResponse(rec), nil
}

// DeductForSaleFromRequest adapta el request HTTP a DeductForSale.
func (uc *StockLedgerUseCase) DeductForSaleFromRequest(ctx context.Context, actor, productID string, in dto.DeductStockRequest) (*dto.InventoryRecordResponse, error) {
	rec, err := uc.DeductForSale(ctx, productID, in.Quantity, actor)
	if err != nil {
		return nil, err
	}
	return ToRecordResponse(rec), nil
}
