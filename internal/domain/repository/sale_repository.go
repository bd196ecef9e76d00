package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
)

// SalesStats agregados de ventas para un rango de fechas.
type SalesStats struct {
	Count      int
	Total      decimal.Decimal
	Average    decimal.Decimal
	TodayCount int
}

// DateRange rango [From, To): From incluido, To excluido. Campos nil = sin límite.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// SaleRepository persistencia de cabeceras y líneas de venta (usable con pool o tx).
type SaleRepository interface {
	// Create inserta la cabecera y asigna sale.ID.
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	// GetForUpdate igual que GetByID pero bloquea la fila.
	GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error)
	ListItems(ctx context.Context, saleID int64) ([]*entity.SaleItem, error)
	// Update aplica solo los campos no nil. Devuelve false si no afectó filas.
	Update(ctx context.Context, id int64, upd entity.SaleUpdate) (bool, error)
	DeleteItems(ctx context.Context, saleID int64) error
	Delete(ctx context.Context, id int64) (bool, error)
	// Stats cuenta, suma y promedia en el rango; TodayCount cuenta las ventas desde todayStart.
	Stats(ctx context.Context, r DateRange, todayStart time.Time) (SalesStats, error)
}
