package repository

import (
	"context"
	"time"
)

// SequenceRepository contador diario de números de venta.
// Debe ejecutarse en la misma transacción que inserta la venta: el consecutivo queda
// bloqueado hasta el commit y se revierte con un rollback.
type SequenceRepository interface {
	NextSaleSequence(ctx context.Context, day time.Time) (int, error)
}
