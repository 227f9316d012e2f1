package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
	"github.com/jhoicas/inventario-tracking/pkg/logger"
)

// MovementEvent hecho publicado por cada movimiento confirmado.
type MovementEvent struct {
	MovementID   string    `json:"movement_id"`
	Seq          int64     `json:"seq"`
	Type         string    `json:"type"`
	ItemKind     string    `json:"item_kind"`
	ItemID       string    `json:"item_id"`
	FromLocation string    `json:"from_location,omitempty"`
	ToLocation   string    `json:"to_location,omitempty"`
	Quantity     int64     `json:"quantity"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewMovementEvent construye el evento a partir del registro del log.
func NewMovementEvent(m *entity.Movement) MovementEvent {
	return MovementEvent{
		MovementID:   m.ID,
		Seq:          m.Seq,
		Type:         string(m.Type),
		ItemKind:     string(m.Item.Kind),
		ItemID:       m.Item.ID,
		FromLocation: m.FromLocation,
		ToLocation:   m.ToLocation,
		Quantity:     m.Quantity,
		Actor:        m.Actor,
		OccurredAt:   m.OccurredAt,
	}
}

// Feed sigue el log de movimientos por Seq y publica los eventos en orden.
// Un Seq ausente puede ser una transacción que aún no confirma: el feed se detiene en el
// hueco y solo lo salta cuando lleva settle sin aparecer (tx revertida). settle debe superar
// la duración máxima de una transacción de movimiento. No es seguro para uso concurrente.
type Feed struct {
	movRepo   repository.MovementRepository
	publisher Publisher
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	settle    time.Duration
	now       func() time.Time

	gapSeq   int64     // primer Seq faltante observado (0 = ninguno)
	gapSince time.Time // cuándo se observó por primera vez
}

// NewFeed construye el seguidor del log.
func NewFeed(movRepo repository.MovementRepository, publisher Publisher, log *logger.Logger, interval time.Duration, batchSize int, settle time.Duration) *Feed {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{
		movRepo:   movRepo,
		publisher: publisher,
		log:       log.Named("tracking.feed"),
		interval:  interval,
		batchSize: batchSize,
		settle:    settle,
		now:       time.Now,
	}
}

// Poll publica un lote posterior a afterSeq y devuelve el nuevo cursor.
// Si la publicación falla el cursor no avanza.
func (f *Feed) Poll(ctx context.Context, afterSeq int64) (int64, error) {
	list, err := f.movRepo.ListSince(ctx, afterSeq, f.batchSize)
	if err != nil {
		return afterSeq, err
	}
	now := f.now()
	events := make([]MovementEvent, 0, len(list))
	next := afterSeq
	for _, m := range list {
		if m.Seq != next+1 {
			if !f.gapExpired(next+1, now) {
				break
			}
			f.log.Warn().Int64("from", next+1).Int64("to", m.Seq-1).Msg("secuencias descartadas (transacciones revertidas)")
		}
		events = append(events, NewMovementEvent(m))
		next = m.Seq
	}
	if len(events) == 0 {
		return afterSeq, nil
	}
	if err := f.publisher.Publish(ctx, events); err != nil {
		return afterSeq, err
	}
	return next, nil
}

// gapExpired registra el hueco que empieza en seq y dice si ya lleva settle sin llenarse.
func (f *Feed) gapExpired(seq int64, now time.Time) bool {
	if f.gapSeq != seq {
		f.gapSeq, f.gapSince = seq, now
	}
	return now.Sub(f.gapSince) >= f.settle
}

// Run sondea el log hasta que ctx se cancele. Devuelve el último cursor publicado.
func (f *Feed) Run(ctx context.Context, afterSeq int64) int64 {
	f.log.Info().Int64("after_seq", afterSeq).Msg("iniciando seguidor de movimientos")
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	cursor := afterSeq
	for {
		next, err := f.Poll(ctx, cursor)
		switch {
		case err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled):
			f.log.Error().Err(err).Int64("after_seq", cursor).Msg("publicar movimientos")
		case next != cursor:
			f.log.Debug().Int64("from", cursor).Int64("to", next).Msg("movimientos publicados")
			cursor = next
			// Puede haber más pendientes; no esperar al siguiente tick.
			continue
		}
		select {
		case <-ctx.Done():
			f.log.Info().Int64("cursor", cursor).Msg("deteniendo seguidor de movimientos")
			return cursor
		case <-ticker.C:
		}
	}
}
