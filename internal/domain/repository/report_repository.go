package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
)

// Granularidad de la tendencia de ventas.
const (
	BucketDay   = "day"
	BucketMonth = "month"
)

// SalesFilter filtro del reporte de ventas completadas. Limit 0 = sin paginar (exportaciones).
type SalesFilter struct {
	Range  DateRange
	Limit  int
	Offset int
}

// TrendPoint suma de ventas no canceladas de un período truncado (día o mes).
type TrendPoint struct {
	Period time.Time
	Total  decimal.Decimal
	Count  int
}

// ReportRepository consultas de solo lectura sobre estado confirmado.
type ReportRepository interface {
	// ListCompletedSales ventas con estado Completed o sin estado, más recientes primero, y total sin paginar.
	ListCompletedSales(ctx context.Context, f SalesFilter) ([]*entity.Sale, int, error)
	// ItemsForSales líneas agrupadas por venta.
	ItemsForSales(ctx context.Context, saleIDs []int64) (map[int64][]*entity.SaleItem, error)
	// SalesTrend agrupa por bucket desde since (incluido).
	SalesTrend(ctx context.Context, bucket string, since time.Time) ([]TrendPoint, error)
}
