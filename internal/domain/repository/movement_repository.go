package repository

import (
	"context"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

// MovementRepository define el puerto del log de movimientos (solo inserción).
type MovementRepository interface {
	// Append anexa el movimiento y le asigna Seq.
	Append(ctx context.Context, movement *entity.Movement) error
	// ListByItem devuelve movimientos del ítem con Seq < beforeSeq, del más reciente al más antiguo.
	// beforeSeq <= 0 empieza desde el más reciente.
	ListByItem(ctx context.Context, item entity.ItemRef, beforeSeq int64, limit int) ([]*entity.Movement, error)
	// ListRecent devuelve la actividad global ordenada por occurred_at descendente.
	ListRecent(ctx context.Context, limit int) ([]*entity.Movement, error)
	// ListSince devuelve movimientos con Seq > afterSeq en orden ascendente (para seguir el log).
	ListSince(ctx context.Context, afterSeq int64, limit int) ([]*entity.Movement, error)
}
