package sales

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

// SaleUseCase ciclo de vida de una venta: cabecera + líneas + descuento de stock en una sola transacción.
type SaleUseCase struct {
	txRunner    SalesTxRunner
	ledger      StockLedger
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	loc         *time.Location
	now         func() time.Time
	log         *logger.Logger
}

// NewSaleUseCase construye el caso de uso. loc fija el día contable de los números de venta.
func NewSaleUseCase(
	txRunner SalesTxRunner,
	ledger StockLedger,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	loc *time.Location,
	log *logger.Logger,
) *SaleUseCase {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		loc:         loc,
		now:         time.Now,
		log:         log.Component("sales"),
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *SaleUseCase) WithClock(now func() time.Time) *SaleUseCase {
	uc.now = now
	return uc
}

// CreateSale valida el carrito, congela nombre/marca/precio de cada producto y, en una transacción,
// obtiene el número de venta, inserta cabecera y líneas y descuenta stock por línea.
// Cualquier fallo revierte todo: no queda venta parcial.
func (uc *SaleUseCase) CreateSale(ctx context.Context, actor string, in dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	customer := strings.TrimSpace(in.CustomerName)
	payment := strings.TrimSpace(in.PaymentMethod)
	if customer == "" || payment == "" {
		return nil, domain.Invalid("customer_name y payment son requeridos")
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("la venta no tiene productos")
	}
	paymentStatus := entity.PaymentStatusUnpaid
	if in.PaymentStatus != "" {
		if !entity.ValidPaymentStatus(in.PaymentStatus) {
			return nil, domain.Invalid("payment_status inválido: %s", in.PaymentStatus)
		}
		paymentStatus = in.PaymentStatus
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || !stockrules.ValidQuantity(it.Quantity) {
			return nil, domain.Invalid("línea %d: product_id y cantidad entre 1 y %d requeridos", i+1, stockrules.MaxQuantity)
		}
	}

	// Resolver productos y congelar precios (fuera de la tx, solo lectura)
	items := make([]*entity.SaleItem, 0, len(in.Items))
	total := decimal.Zero
	for _, it := range in.Items {
		productID := strings.TrimSpace(it.ProductID)
		product, err := uc.productRepo.GetByProductID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(subtotal)
		items = append(items, &entity.SaleItem{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Brand:       product.Brand,
			UnitPrice:   product.Price,
			Quantity:    it.Quantity,
			Subtotal:    subtotal,
		})
	}

	now := uc.now().In(uc.loc)
	sale := &entity.Sale{
		CustomerName:  customer,
		Contact:       strings.TrimSpace(in.Contact),
		PaymentMethod: payment,
		PaymentStatus: paymentStatus,
		Total:         total,
		Status:        entity.SaleStatusPending,
		Address:       in.Address,
		CreatedAt:     now,
		CreatedBy:     actor,
	}

	err := uc.txRunner.RunSales(ctx, func(repos SalesRepos) error {
		seq, err := repos.Sequences.NextSaleSequence(ctx, now)
		if err != nil {
			return err
		}
		sale.SaleNumber = sequence.FormatSaleNumber(now, seq)

		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, item := range items {
			item.SaleID = sale.ID
			if err := repos.Sales.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		notes := "Venta " + sale.SaleNumber
		for _, item := range inLockOrder(items) {
			if _, err := uc.ledger.DeductForSaleInTx(ctx, repos.LedgerRepos, item.ProductID, item.Quantity, notes, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("customer", customer).Int("lines", len(items)).Msg("venta revertida")
		return nil, err
	}

	uc.log.Info().
		Str("sale_number", sale.SaleNumber).
		Int64("sale_id", sale.ID).
		Str("total", total.StringFixed(2)).
		Int("lines", len(items)).
		Msg("venta registrada")

	return &dto.CreateSaleResponse{SaleID: sale.ID, SaleNumber: sale.SaleNumber, Total: total}, nil
}

// GetSale obtiene una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	items, err := uc.saleRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale, items), nil
}

// UpdateSale aplica una actualización parcial. Las ventas Completed o Cancelled no se modifican
// (ErrOrderFinalized); la validación ocurre con la fila bloqueada, antes de escribir.
func (uc *SaleUseCase) UpdateSale(ctx context.Context, id int64, in dto.UpdateSaleRequest) (bool, error) {
	upd, err := buildUpdate(in)
	if err != nil {
		return false, err
	}

	err = uc.txRunner.RunSales(ctx, func(repos SalesRepos) error {
		sale, err := repos.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrSaleNotFound
		}
		if sale.IsFinalized() {
			return domain.ErrOrderFinalized
		}
		if upd.Status != nil && !entity.CanTransition(sale.Status, *upd.Status) {
			return domain.Invalid("transición de estado inválida: %s -> %s", sale.Status, *upd.Status)
		}
		ok, err := repos.Sales.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrSaleNotFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	ev := uc.log.Info().Int64("sale_id", id)
	if upd.Status != nil {
		ev = ev.Str("status", *upd.Status)
	}
	ev.Msg("venta actualizada")
	return true, nil
}

// DeleteSale devuelve al inventario la cantidad de cada línea y borra líneas y cabecera.
// Todo o nada: si una restauración falla no se elimina ninguna fila.
func (uc *SaleUseCase) DeleteSale(ctx context.Context, actor string, id int64) (bool, error) {
	var saleNumber string
	err := uc.txRunner.RunSales(ctx, func(repos SalesRepos) error {
		sale, err := repos.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrSaleNotFound
		}
		saleNumber = sale.SaleNumber

		items, err := repos.Sales.ListItems(ctx, id)
		if err != nil {
			return err
		}
		notes := "Reverso de venta " + sale.SaleNumber
		for _, item := range inLockOrder(items) {
			if _, err := uc.ledger.RestoreForSaleDeletionInTx(ctx, repos.LedgerRepos, item.ProductID, item.Quantity, notes, actor); err != nil {
				return err
			}
		}
		if err := repos.Sales.DeleteItems(ctx, id); err != nil {
			return err
		}
		ok, err := repos.Sales.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrSaleNotFound
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Int64("sale_id", id).Msg("eliminación de venta revertida")
		return false, err
	}
	uc.log.Info().Int64("sale_id", id).Str("sale_number", saleNumber).Msg("venta eliminada y stock restaurado")
	return true, nil
}

// GetSalesStats cuenta, suma y promedio de ventas en [dateFrom, dateTo] (días inclusivos) y ventas de hoy.
func (uc *SaleUseCase) GetSalesStats(ctx context.Context, dateFrom, dateTo *time.Time) (*dto.SalesStatsResponse, error) {
	r, err := DayRange(dateFrom, dateTo, uc.loc)
	if err != nil {
		return nil, err
	}
	todayStart := StartOfDay(uc.now(), uc.loc)
	stats, err := uc.saleRepo.Stats(ctx, r, todayStart)
	if err != nil {
		return nil, err
	}
	return &dto.SalesStatsResponse{
		TotalSales:   stats.Count,
		TotalRevenue: stats.Total,
		AverageSale:  stats.Average.Round(2),
		TodaySales:   stats.TodayCount,
	}, nil
}

// inLockOrder líneas ordenadas por producto para bloquear inventario siempre en el mismo orden.
func inLockOrder(items []*entity.SaleItem) []*entity.SaleItem {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	out := make([]*entity.SaleItem, 0, len(items))
	for _, i := range stockrules.LockOrder(ids) {
		out = append(out, items[i])
	}
	return out
}

func buildUpdate(in dto.UpdateSaleRequest) (entity.SaleUpdate, error) {
	var upd entity.SaleUpdate
	if in.CustomerName != nil {
		v := strings.TrimSpace(*in.CustomerName)
		if v == "" {
			return upd, domain.Invalid("customer_name no puede quedar vacío")
		}
		upd.CustomerName = &v
	}
	if in.Contact != nil {
		v := strings.TrimSpace(*in.Contact)
		upd.Contact = &v
	}
	if in.PaymentMethod != nil {
		v := strings.TrimSpace(*in.PaymentMethod)
		if v == "" {
			return upd, domain.Invalid("payment no puede quedar vacío")
		}
		upd.PaymentMethod = &v
	}
	if in.PaymentStatus != nil {
		if !entity.ValidPaymentStatus(*in.PaymentStatus) {
			return upd, domain.Invalid("payment_status inválido: %s", *in.PaymentStatus)
		}
		upd.PaymentStatus = in.PaymentStatus
	}
	if in.Total != nil {
		if in.Total.IsNegative() {
			return upd, domain.Invalid("total no puede ser negativo")
		}
		upd.Total = in.Total
	}
	if in.Status != nil {
		if !entity.ValidSaleStatus(*in.Status) {
			return upd, domain.Invalid("status inválido: %s", *in.Status)
		}
		upd.Status = in.Status
	}
	if in.Address != nil {
		v := strings.TrimSpace(*in.Address)
		upd.Address = &v
	}
	if upd.IsEmpty() {
		return upd, domain.Invalid("no hay campos para actualizar")
	}
	return upd, nil
}

// ToSaleResponse convierte cabecera y líneas.
func ToSaleResponse(sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		SaleNumber:    sale.SaleNumber,
		CustomerName:  sale.CustomerName,
		Contact:       sale.Contact,
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: sale.PaymentStatus,
		Total:         sale.Total,
		Status:        sale.Status,
		Address:       sale.Address,
		CreatedAt:     sale.CreatedAt,
		Items:         ToItemResponses(items),
	}
	return resp
}

// ToItemResponses convierte líneas de venta.
func ToItemResponses(items []*entity.SaleItem) []dto.SaleItemResponse {
	out := make([]dto.SaleItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Brand:       it.Brand,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}
