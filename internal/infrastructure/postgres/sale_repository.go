package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, sale_number, customer_name, contact, payment, payment_status, total,
	COALESCE(status, ''), address, created_at, created_by`

// Create inserta la cabecera y asigna sale.ID.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (sale_number, customer_name, contact, payment, payment_status, total, status, address, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		sale.SaleNumber, sale.CustomerName, sale.Contact, sale.PaymentMethod, sale.PaymentStatus,
		sale.Total, sale.Status, sale.Address, sale.CreatedAt, sale.CreatedBy,
	).Scan(&sale.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sale_number %s ya existe", domain.ErrConflict, sale.SaleNumber)
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea y asigna item.ID.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (sale_id, product_id, product_name, brand, price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		item.SaleID, item.ProductID, item.ProductName, item.Brand, item.UnitPrice, item.Quantity, item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera. nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE).
func (r *SaleRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query string, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// ListItems líneas de la venta en orden de inserción.
func (r *SaleRepo) ListItems(ctx context.Context, saleID int64) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, product_name, brand, price, quantity, subtotal
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Update aplica solo los campos presentes en upd.
func (r *SaleRepo) Update(ctx context.Context, id int64, upd entity.SaleUpdate) (bool, error) {
	query, args := buildSaleUpdate(id, upd)
	if query == "" {
		return false, domain.Invalid("no hay campos para actualizar")
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update sale: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteItems borra todas las líneas de la venta.
func (r *SaleRepo) DeleteItems(ctx context.Context, saleID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return nil
}

// Delete borra la cabecera. false si no existía.
func (r *SaleRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete sale: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats agregados del rango [From, To) y conteo del día que empieza en todayStart.
func (r *SaleRepo) Stats(ctx context.Context, rg repository.DateRange, todayStart time.Time) (repository.SalesStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= COALESCE($1::timestamptz, '-infinity') AND created_at < COALESCE($2::timestamptz, 'infinity')),
			COALESCE(SUM(total) FILTER (WHERE created_at >= COALESCE($1::timestamptz, '-infinity') AND created_at < COALESCE($2::timestamptz, 'infinity')), 0),
			COUNT(*) FILTER (WHERE created_at >= $3 AND created_at < $4)
		FROM sales`
	from, to := rangeArgs(rg.From, rg.To)
	stats := repository.SalesStats{Average: decimal.Zero}
	err := r.q.QueryRow(ctx, query, from, to, todayStart, todayStart.AddDate(0, 0, 1)).
		Scan(&stats.Count, &stats.Total, &stats.TodayCount)
	if err != nil {
		return stats, fmt.Errorf("sales stats: %w", err)
	}
	if stats.Count > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Count)))
	}
	return stats, nil
}

// buildSaleUpdate arma el UPDATE con solo las columnas presentes, en orden fijo.
// Devuelve "" si no hay campos.
func buildSaleUpdate(id int64, upd entity.SaleUpdate) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if upd.CustomerName != nil {
		add("customer_name", *upd.CustomerName)
	}
	if upd.Contact != nil {
		add("contact", *upd.Contact)
	}
	if upd.PaymentMethod != nil {
		add("payment", *upd.PaymentMethod)
	}
	if upd.PaymentStatus != nil {
		add("payment_status", *upd.PaymentStatus)
	}
	if upd.Total != nil {
		add("total", *upd.Total)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if len(sets) == 0 {
		return "", nil
	}
	args = append(args, id)
	query := "UPDATE sales SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	return query, args
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.SaleNumber, &s.CustomerName, &s.Contact, &s.PaymentMethod, &s.PaymentStatus, &s.Total,
		&s.Status, &s.Address, &s.CreatedAt, &s.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanItems(rows pgx.Rows) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Brand, &it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
