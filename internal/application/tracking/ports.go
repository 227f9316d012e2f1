package tracking

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; la proyección y el log nunca quedan desincronizados.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		locRepo repository.CurrentLocationRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// LocationDirectory es el directorio de referencia de ubicaciones válidas.
type LocationDirectory interface {
	IsActiveLocation(ctx context.Context, code string) (bool, error)
}

// Publisher entrega eventos de movimiento a los suscriptores (tableros, notificaciones).
type Publisher interface {
	Publish(ctx context.Context, events []MovementEvent) error
}

// LivenessChecker consulta a los catálogos dueños de los ítems cuáles siguen existiendo.
type LivenessChecker interface {
	Alive(ctx context.Context, items []entity.ItemRef) (map[entity.ItemRef]bool, error)
}

// LocationReportGenerator genera el manifiesto PDF de una ubicación.
type LocationReportGenerator interface {
	GenerateLocationReport(ctx context.Context, location *entity.Location, rows []*entity.CurrentLocation, generatedAt time.Time) ([]byte, error)
}

// Observer recibe métricas del coordinador.
type Observer interface {
	MoveCommitted(kind entity.ItemKind, movementType entity.MovementType)
	MoveNoOp(kind entity.ItemKind)
	MoveFailed(kind entity.ItemKind, reason string)
	LockWait(kind entity.ItemKind, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) MoveCommitted(entity.ItemKind, entity.MovementType) {}
func (nopObserver) MoveNoOp(entity.ItemKind)                           {}
func (nopObserver) MoveFailed(entity.ItemKind, string)                 {}
func (nopObserver) LockWait(entity.ItemKind, time.Duration)            {}
