package repository

import (
	"context"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia del directorio de ubicaciones (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	// GetByCode devuelve nil, nil si la ubicación no existe.
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Location, error)
}
