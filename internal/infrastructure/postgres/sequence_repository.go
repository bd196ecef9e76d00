package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
	"github.com/jhoicas/tienda-pos-api/internal/domain/sequence"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivo diario de ventas en la tabla sale_sequences.
// La fila del día queda bloqueada por el UPSERT hasta el commit: dos ventas concurrentes
// nunca obtienen el mismo número y un rollback devuelve el consecutivo.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Debe recibir la tx de la venta.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// La primera venta del día siembra el contador con el mayor sufijo ya emitido en sales.
const nextSaleSequenceSQL = `
	INSERT INTO sale_sequences (day_prefix, last_value)
	VALUES ($1::text, (
		SELECT COALESCE(MAX(CAST(SUBSTRING(sale_number FROM $2::int) AS INTEGER)), 0)
		FROM sales
		WHERE sale_number LIKE $1::text || '%'
		  AND SUBSTRING(sale_number FROM $2::int) ~ '^[0-9]+$'
	) + 1)
	ON CONFLICT (day_prefix) DO UPDATE SET last_value = sale_sequences.last_value + 1
	RETURNING last_value`

// NextSaleSequence siguiente consecutivo para el día de day (en su zona horaria).
func (r *SequenceRepo) NextSaleSequence(ctx context.Context, day time.Time) (int, error) {
	prefix := sequence.DayPrefix(day)
	var next int
	if err := r.q.QueryRow(ctx, nextSaleSequenceSQL, prefix, len(prefix)+1).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sale sequence: %w", err)
	}
	return next, nil
}
