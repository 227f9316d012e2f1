package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
	"github.com/jhoicas/inventario-tracking/pkg/logger"
)

// Coordinator orquesta cada movimiento como una unidad atómica: bloquea las filas del ítem,
// aplica la estrategia de su tipo, anexa exactamente un registro al log y confirma (o revierte todo).
// No guarda estado propio; es seguro usarlo desde varias goroutines e instancias del servicio.
type Coordinator struct {
	txRunner   TxRunner
	directory  LocationDirectory
	log        *logger.Logger
	observer   Observer
	now        func() time.Time
	newID      func() string
	strategies map[entity.ItemKind]placementStrategy
}

// NewCoordinator construye el coordinador. observer puede ser nil.
func NewCoordinator(txRunner TxRunner, directory LocationDirectory, log *logger.Logger, observer Observer) *Coordinator {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator{
		txRunner:  txRunner,
		directory: directory,
		log:       log.Named("tracking.coordinator"),
		observer:  observer,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		strategies: map[entity.ItemKind]placementStrategy{
			entity.ItemKindUnique: uniqueStrategy{},
			entity.ItemKindPooled: pooledStrategy{},
		},
	}
}

// MoveInput entrada de Move.
// Quantity es obligatoria (> 0) para ítems pooled y se ignora para unique.
// Source solo aplica a pooled: reubica Quantity desde Source hacia Destination.
type MoveInput struct {
	Item        entity.ItemRef
	Destination string
	Source      string
	Actor       string
	Reason      string
	Notes       string
	Quantity    int64
	// RejectNoOp convierte el movimiento sin cambios en domain.ErrNoOpMove.
	RejectNoOp bool
}

func (in *MoveInput) normalize() {
	in.Item.ID = strings.TrimSpace(in.Item.ID)
	in.Destination = strings.TrimSpace(in.Destination)
	in.Source = strings.TrimSpace(in.Source)
	in.Actor = strings.TrimSpace(in.Actor)
}

// MoveResult snapshot posterior al movimiento. Si NoOp es true no se escribió nada y Movement es nil.
type MoveResult struct {
	Location *entity.ItemLocation
	Movement *entity.Movement
	NoOp     bool
}

// MovementID devuelve el id del registro creado o "" si fue no-op.
func (r *MoveResult) MovementID() string {
	if r == nil || r.Movement == nil {
		return ""
	}
	return r.Movement.ID
}

// Move mueve el ítem a Destination.
// Errores: ErrInvalidInput, ErrInvalidLocation, ErrInvalidQuantity, ErrConcurrentModification,
// ErrNoOpMove (solo con RejectNoOp) y ErrStorageFailure.
func (c *Coordinator) Move(ctx context.Context, in MoveInput) (*MoveResult, error) {
	in.normalize()
	strategy, ok := c.strategies[in.Item.Kind]
	if !ok || in.Item.ID == "" || in.Actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := strategy.validate(in); err != nil {
		return nil, err
	}
	if err := c.checkDestination(ctx, in.Destination); err != nil {
		return nil, c.fail(in.Item, err)
	}

	at := c.now().UTC()
	var result MoveResult
	err := c.txRunner.Run(ctx, func(
		locRepo repository.CurrentLocationRepository,
		movRepo repository.MovementRepository,
	) error {
		current, err := c.lock(ctx, locRepo, in.Item)
		if err != nil {
			return err
		}
		tr, err := strategy.apply(ctx, locRepo, current, in, at)
		if err != nil {
			return err
		}
		if tr == nil {
			result.NoOp = true
			result.Location = entity.NewItemLocation(in.Item, current)
			return nil
		}
		mov := &entity.Movement{
			ID:           c.newID(),
			Type:         tr.Type,
			Item:         in.Item,
			Quantity:     tr.Quantity,
			FromLocation: tr.From,
			ToLocation:   tr.To,
			Actor:        in.Actor,
			OccurredAt:   at,
			Reason:       in.Reason,
			Notes:        in.Notes,
		}
		if err := c.append(ctx, movRepo, mov); err != nil {
			return err
		}
		after, err := locRepo.ListByItem(ctx, in.Item)
		if err != nil {
			return err
		}
		result.Movement = mov
		result.Location = entity.NewItemLocation(in.Item, after)
		return nil
	})
	if err != nil {
		return nil, c.fail(in.Item, err)
	}

	if result.NoOp {
		c.observer.MoveNoOp(in.Item.Kind)
		c.log.Debug().Str("item", in.Item.String()).Str("destination", in.Destination).Msg("movimiento sin cambios")
		if in.RejectNoOp {
			return &result, domain.ErrNoOpMove
		}
		return &result, nil
	}
	c.observer.MoveCommitted(in.Item.Kind, result.Movement.Type)
	c.log.Debug().
		Str("item", in.Item.String()).
		Str("movement_id", result.Movement.ID).
		Str("type", string(result.Movement.Type)).
		Str("from", result.Movement.FromLocation).
		Str("to", result.Movement.ToLocation).
		Int64("quantity", result.Movement.Quantity).
		Str("actor", in.Actor).
		Msg("movimiento registrado")
	return &result, nil
}

// RemoveInput entrada de RemoveItem. Location no aplica a unique;
// para pooled, vacío elimina todas las filas del ítem.
type RemoveInput struct {
	Item     entity.ItemRef
	Location string
	Actor    string
	Reason   string
	Notes    string
}

// RemoveResult filas eliminadas y los registros deleted anexados (uno por fila).
type RemoveResult struct {
	Removed   []*entity.CurrentLocation
	Movements []*entity.Movement
}

// RemoveItem retira el ítem del rastreo (PRESENT → ABSENT, o una sola ubicación para pooled).
func (c *Coordinator) RemoveItem(ctx context.Context, in RemoveInput) (*RemoveResult, error) {
	in.Item.ID = strings.TrimSpace(in.Item.ID)
	in.Location = strings.TrimSpace(in.Location)
	in.Actor = strings.TrimSpace(in.Actor)
	if !in.Item.Kind.Valid() || in.Item.ID == "" || in.Actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Item.Kind == entity.ItemKindUnique && in.Location != "" {
		return nil, fmt.Errorf("%w: los ítems unique no reciben ubicación al retirarse", domain.ErrInvalidInput)
	}

	at := c.now().UTC()
	var result RemoveResult
	err := c.txRunner.Run(ctx, func(
		locRepo repository.CurrentLocationRepository,
		movRepo repository.MovementRepository,
	) error {
		current, err := c.lock(ctx, locRepo, in.Item)
		if err != nil {
			return err
		}
		targets := current
		if in.Location != "" {
			targets = nil
			for _, r := range current {
				if r.LocationCode == in.Location {
					targets = append(targets, r)
				}
			}
		}
		if len(targets) == 0 {
			return fmt.Errorf("%w: %s no está rastreado en %q", domain.ErrNotFound, in.Item, in.Location)
		}
		for _, r := range targets {
			if err := locRepo.Delete(ctx, in.Item, r.LocationCode); err != nil {
				return err
			}
			mov := &entity.Movement{
				ID:           c.newID(),
				Type:         entity.MovementTypeDeleted,
				Item:         in.Item,
				Quantity:     r.Quantity,
				FromLocation: r.LocationCode,
				Actor:        in.Actor,
				OccurredAt:   at,
				Reason:       in.Reason,
				Notes:        in.Notes,
			}
			if err := c.append(ctx, movRepo, mov); err != nil {
				return err
			}
			result.Removed = append(result.Removed, r)
			result.Movements = append(result.Movements, mov)
		}
		return nil
	})
	if err != nil {
		return nil, c.fail(in.Item, err)
	}
	for _, m := range result.Movements {
		c.observer.MoveCommitted(in.Item.Kind, m.Type)
	}
	c.log.Debug().
		Str("item", in.Item.String()).
		Int("rows", len(result.Removed)).
		Str("actor", in.Actor).
		Msg("ítem retirado del rastreo")
	return &result, nil
}

func (c *Coordinator) checkDestination(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: destino vacío", domain.ErrInvalidLocation)
	}
	active, err := c.directory.IsActiveLocation(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrStorageFailure) {
			return err
		}
		return fmt.Errorf("%w: consultar directorio de ubicaciones: %w", domain.ErrStorageFailure, err)
	}
	if !active {
		return fmt.Errorf("%w: %q", domain.ErrInvalidLocation, code)
	}
	return nil
}

func (c *Coordinator) lock(ctx context.Context, locRepo repository.CurrentLocationRepository, item entity.ItemRef) ([]*entity.CurrentLocation, error) {
	start := time.Now()
	rows, err := locRepo.LockItem(ctx, item)
	c.observer.LockWait(item.Kind, time.Since(start))
	return rows, err
}

func (c *Coordinator) append(ctx context.Context, movRepo repository.MovementRepository, mov *entity.Movement) error {
	if err := mov.Validate(); err != nil {
		return fmt.Errorf("movimiento inconsistente: %w", err)
	}
	return movRepo.Append(ctx, mov)
}

// fail registra la falla y la devuelve sin alterar.
func (c *Coordinator) fail(item entity.ItemRef, err error) error {
	reason := failureReason(err)
	c.observer.MoveFailed(item.Kind, reason)
	switch reason {
	case "storage_failure", "internal":
		c.log.Error().Err(err).Str("item", item.String()).Msg("movimiento revertido")
	case "concurrent_modification":
		c.log.Warn().Err(err).Str("item", item.String()).Msg("tiempo de espera de bloqueo agotado")
	default:
		c.log.Debug().Err(err).Str("item", item.String()).Str("reason", reason).Msg("movimiento rechazado")
	}
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidLocation):
		return "invalid_location"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, domain.ErrStorageFailure):
		return "storage_failure"
	default:
		return "internal"
	}
}
