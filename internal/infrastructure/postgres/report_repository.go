package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reportes sobre PostgreSQL (solo lectura, usar con pool).
type ReportRepo struct {
	q   Querier
	loc *time.Location
}

// NewReportRepository construye el adaptador. loc define el día/mes de agrupación de la tendencia.
func NewReportRepository(q Querier, loc *time.Location) *ReportRepo {
	if loc == nil {
		loc = time.Local
	}
	return &ReportRepo{q: q, loc: loc}
}

const completedSalesWhere = `
	WHERE (status = 'Completed' OR status IS NULL OR status = '')
	  AND created_at >= COALESCE($1::timestamptz, '-infinity')
	  AND created_at < COALESCE($2::timestamptz, 'infinity')`

// ListCompletedSales ventas completadas (o sin estado) del rango, más recientes primero.
func (r *ReportRepo) ListCompletedSales(ctx context.Context, f repository.SalesFilter) ([]*entity.Sale, int, error) {
	from, to := rangeArgs(f.Range.From, f.Range.To)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+completedSalesWhere, from, to).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count completed sales: %w", err)
	}

	query := `SELECT ` + saleColumns + ` FROM sales` + completedSalesWhere + ` ORDER BY created_at DESC, id DESC`
	args := []any{from, to}
	if f.Limit > 0 {
		query += ` LIMIT $3 OFFSET $4`
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list completed sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// ItemsForSales líneas de varias ventas en una sola consulta.
func (r *ReportRepo) ItemsForSales(ctx context.Context, saleIDs []int64) (map[int64][]*entity.SaleItem, error) {
	out := make(map[int64][]*entity.SaleItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT id, sale_id, product_id, product_name, brand, price, quantity, subtotal
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, id`
	rows, err := r.q.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("items for sales: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.SaleID] = append(out[it.SaleID], it)
	}
	return out, nil
}

// SalesTrend suma de ventas no canceladas agrupadas por día o mes en la zona horaria de la tienda.
func (r *ReportRepo) SalesTrend(ctx context.Context, bucket string, since time.Time) ([]repository.TrendPoint, error) {
	unit := "day"
	if bucket == repository.BucketMonth {
		unit = "month"
	}
	zoneExpr, zoneArg := pgZone(r.loc)
	query := `
		SELECT date_trunc($1::text, created_at AT TIME ZONE ` + zoneExpr + `) AS period,
		       COALESCE(SUM(total), 0), COUNT(*)
		FROM sales
		WHERE created_at >= $3 AND COALESCE(status, '') <> 'Cancelled'
		GROUP BY period
		ORDER BY period`
	rows, err := r.q.Query(ctx, query, unit, zoneArg, since)
	if err != nil {
		return nil, fmt.Errorf("sales trend: %w", err)
	}
	defer rows.Close()

	var out []repository.TrendPoint
	for rows.Next() {
		var (
			wall  time.Time
			total decimal.Decimal
			count int
		)
		if err := rows.Scan(&wall, &total, &count); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		// timestamp sin zona: la hora de pared ya está en la zona de la tienda.
		period := time.Date(wall.Year(), wall.Month(), wall.Day(), 0, 0, 0, 0, r.loc)
		out = append(out, repository.TrendPoint{Period: period, Total: total, Count: count})
	}
	return out, rows.Err()
}

// pgZone expresión y argumento ($2) para AT TIME ZONE. time.Local no tiene nombre IANA válido en
// PostgreSQL: se usa su desfase actual como intervalo (convención ISO, este positivo).
func pgZone(loc *time.Location) (string, any) {
	if loc == nil || loc == time.Local || loc.String() == "Local" {
		_, offset := time.Now().Zone()
		return "make_interval(secs => $2::double precision)", float64(offset)
	}
	return "$2::text", loc.String()
}
