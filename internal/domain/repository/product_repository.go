package repository

import (
	"context"

	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (el CRUD vive fuera de este servicio).
type ProductRepository interface {
	// GetByProductID devuelve nil, nil si el código no existe.
	GetByProductID(ctx context.Context, productID string) (*entity.Product, error)
}
