package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

// CurrentLocationRepository define el puerto de la proyección de ubicación actual.
// Las operaciones de escritura deben ejecutarse dentro de la transacción abierta por el TxRunner.
type CurrentLocationRepository interface {
	// LockItem bloquea al ítem hasta el fin de la transacción y devuelve sus filas actuales
	// (vacío si aún no existe). Respeta el tiempo máximo de espera de bloqueo configurado.
	LockItem(ctx context.Context, item entity.ItemRef) ([]*entity.CurrentLocation, error)
	// Insert crea una fila nueva; falla si ya existe la pareja (ítem, ubicación).
	Insert(ctx context.Context, row *entity.CurrentLocation) error
	// Relocate cambia en sitio la ubicación de un ítem unique.
	Relocate(ctx context.Context, item entity.ItemRef, toLocation string, at time.Time, by string) error
	// Upsert fija la cantidad absoluta de la fila (ítem, ubicación).
	Upsert(ctx context.Context, row *entity.CurrentLocation) error
	// Delete elimina la fila (ítem, ubicación).
	Delete(ctx context.Context, item entity.ItemRef, locationCode string) error

	ListByItem(ctx context.Context, item entity.ItemRef) ([]*entity.CurrentLocation, error)
	// ListByLocation devuelve todo lo que está físicamente en la ubicación (usa índice por location_code).
	ListByLocation(ctx context.Context, locationCode string) ([]*entity.CurrentLocation, error)
	// ListItems pagina por llave los ítems distintos rastreados, posteriores a after.
	ListItems(ctx context.Context, after entity.ItemRef, limit int) ([]entity.ItemRef, error)
}
