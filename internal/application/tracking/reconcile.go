package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
	"github.com/jhoicas/inventario-tracking/pkg/logger"
)

// Reconciler compara periódicamente los ítems rastreados contra los catálogos dueños
// y retira los que fueron eliminados fuera de banda. Corre fuera del camino de Move.
type Reconciler struct {
	locRepo   repository.CurrentLocationRepository
	checker   LivenessChecker
	coord     *Coordinator
	log       *logger.Logger
	batchSize int
	actor     string
}

// NewReconciler construye el job. actor es quien firma los movimientos deleted.
func NewReconciler(locRepo repository.CurrentLocationRepository, checker LivenessChecker, coord *Coordinator, log *logger.Logger, batchSize int, actor string) *Reconciler {
	if batchSize <= 0 {
		batchSize = 200
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{
		locRepo:   locRepo,
		checker:   checker,
		coord:     coord,
		log:       log.Named("tracking.reconciler"),
		batchSize: batchSize,
		actor:     actor,
	}
}

// ReconcileReport resumen de una pasada.
type ReconcileReport struct {
	Checked int
	Removed int
	Skipped int // ítems que no se pudieron retirar (bloqueados o ya retirados)
}

// RunOnce recorre todos los ítems rastreados por lotes y retira los que ya no existen.
func (r *Reconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	var after entity.ItemRef
	for {
		items, err := r.locRepo.ListItems(ctx, after, r.batchSize)
		if err != nil {
			return report, err
		}
		if len(items) == 0 {
			return report, nil
		}
		alive, err := r.checker.Alive(ctx, items)
		if err != nil {
			return report, err
		}
		for _, item := range items {
			report.Checked++
			if alive[item] {
				continue
			}
			_, err := r.coord.RemoveItem(ctx, RemoveInput{
				Item:   item,
				Actor:  r.actor,
				Reason: "ítem eliminado de su catálogo",
			})
			switch {
			case err == nil:
				report.Removed++
			case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConcurrentModification):
				report.Skipped++
			default:
				return report, err
			}
		}
		if len(items) < r.batchSize {
			return report, nil
		}
		after = items[len(items)-1]
	}
}

// Run ejecuta RunOnce cada interval hasta que ctx se cancele.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := r.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("conciliación interrumpida")
				continue
			}
			r.log.Info().
				Int("checked", report.Checked).
				Int("removed", report.Removed).
				Int("skipped", report.Skipped).
				Msg("conciliación completada")
		}
	}
}
