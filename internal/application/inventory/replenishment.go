package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	stockrules "github.com/jhoicas/tienda-pos-api/internal/domain/inventory"
)

// ReplenishmentSuggestion producto agotado o bajo punto de reorden con la cantidad sugerida a pedir.
type ReplenishmentSuggestion struct {
	dto.StockLevelResponse
	IdealStock   int `json:"ideal_stock"`   // 2 × punto de reorden (umbral de sobrestock)
	SuggestedQty int `json:"suggested_qty"` // IdealStock - Stock
	Priority     int `json:"priority"`      // 1 = más urgente
}

// ReplenishmentList productos Out of Stock o Low Stock ordenados por urgencia:
// primero agotados, luego mayor déficit respecto al stock ideal.
func (uc *StockLedgerUseCase) ReplenishmentList(ctx context.Context) ([]ReplenishmentSuggestion, error) {
	levels, err := uc.inventoryRepo.ListStockLevels(ctx, uc.defaultReorderPoint)
	if err != nil {
		return nil, err
	}
	out := make([]ReplenishmentSuggestion, 0)
	for _, l := range levels {
		status := stockrules.Classify(l.Stock, l.ReorderPoint)
		if status != stockrules.StatusOutOfStock && status != stockrules.StatusLowStock {
			continue
		}
		stock := l.Stock
		if stock < 0 {
			stock = 0
		}
		ideal := 2 * l.ReorderPoint
		suggested := ideal - stock
		if suggested < 0 {
			suggested = 0
		}
		out = append(out, ReplenishmentSuggestion{
			StockLevelResponse: ToStockLevelResponse(l),
			IdealStock:         ideal,
			SuggestedQty:       suggested,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aOut := a.Status == stockrules.StatusOutOfStock
		bOut := b.Status == stockrules.StatusOutOfStock
		if aOut != bOut {
			return aOut
		}
		if a.SuggestedQty != b.SuggestedQty {
			return a.SuggestedQty > b.SuggestedQty
		}
		return a.ProductID < b.ProductID
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
