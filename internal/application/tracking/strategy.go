package tracking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

// transition describe el cambio aplicado por una estrategia; el coordinador lo convierte en Movement.
type transition struct {
	Type     entity.MovementType
	From     string
	To       string
	Quantity int64
}

// placementStrategy encapsula cómo se actualiza la proyección según el tipo de ítem.
// apply recibe las filas ya bloqueadas y devuelve nil cuando el movimiento no cambia nada.
// Toda validación ocurre antes de la primera escritura.
type placementStrategy interface {
	validate(in MoveInput) error
	apply(ctx context.Context, repo repository.CurrentLocationRepository, current []*entity.CurrentLocation, in MoveInput, at time.Time) (*transition, error)
}

// uniqueStrategy: una sola fila por ítem, cantidad implícita 1. Source y Quantity se ignoran.
type uniqueStrategy struct{}

func (uniqueStrategy) validate(MoveInput) error { return nil }

func (uniqueStrategy) apply(
	ctx context.Context,
	repo repository.CurrentLocationRepository,
	current []*entity.CurrentLocation,
	in MoveInput,
	at time.Time,
) (*transition, error) {
	switch len(current) {
	case 0:
		row := &entity.CurrentLocation{
			Item:         in.Item,
			LocationCode: in.Destination,
			Quantity:     1,
			LastMovedAt:  at,
			LastMovedBy:  in.Actor,
		}
		if err := repo.Insert(ctx, row); err != nil {
			return nil, err
		}
		return &transition{Type: entity.MovementTypeCreated, To: in.Destination, Quantity: 1}, nil
	case 1:
		from := current[0].LocationCode
		if from == in.Destination {
			return nil, nil
		}
		if err := repo.Relocate(ctx, in.Item, in.Destination, at, in.Actor); err != nil {
			return nil, err
		}
		return &transition{Type: entity.MovementTypeTransfer, From: from, To: in.Destination, Quantity: 1}, nil
	default:
		return nil, fmt.Errorf("%w: ítem %s tiene %d ubicaciones", domain.ErrStorageFailure, in.Item, len(current))
	}
}

// pooledStrategy: una fila por (ítem, ubicación) con su cantidad; filas en cero se eliminan.
type pooledStrategy struct{}

func (pooledStrategy) validate(in MoveInput) error {
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser positiva, se recibió %d", domain.ErrInvalidQuantity, in.Quantity)
	}
	return nil
}

func (pooledStrategy) apply(
	ctx context.Context,
	repo repository.CurrentLocationRepository,
	current []*entity.CurrentLocation,
	in MoveInput,
	at time.Time,
) (*transition, error) {
	byLocation := make(map[string]*entity.CurrentLocation, len(current))
	for _, r := range current {
		byLocation[r.LocationCode] = r
	}
	dest := byLocation[in.Destination]
	if dest != nil && dest.Quantity > math.MaxInt64-in.Quantity {
		return nil, fmt.Errorf("%w: desbordamiento en %s", domain.ErrInvalidQuantity, in.Destination)
	}

	if in.Source != "" {
		if in.Source == in.Destination {
			return nil, nil
		}
		src := byLocation[in.Source]
		if src == nil || src.Quantity < in.Quantity {
			var have int64
			if src != nil {
				have = src.Quantity
			}
			return nil, fmt.Errorf("%w: %s tiene %d en %s, se pidieron %d",
				domain.ErrInvalidQuantity, in.Item, have, in.Source, in.Quantity)
		}
		if src.Quantity == in.Quantity {
			if err := repo.Delete(ctx, in.Item, in.Source); err != nil {
				return nil, err
			}
		} else {
			remaining := *src
			remaining.Quantity -= in.Quantity
			remaining.LastMovedAt = at
			remaining.LastMovedBy = in.Actor
			if err := repo.Upsert(ctx, &remaining); err != nil {
				return nil, err
			}
		}
		if err := addTo(ctx, repo, dest, in, at); err != nil {
			return nil, err
		}
		return &transition{Type: entity.MovementTypeTransfer, From: in.Source, To: in.Destination, Quantity: in.Quantity}, nil
	}

	if err := addTo(ctx, repo, dest, in, at); err != nil {
		return nil, err
	}
	typ := entity.MovementTypeOther
	if len(current) == 0 {
		typ = entity.MovementTypeCreated
	}
	return &transition{Type: typ, To: in.Destination, Quantity: in.Quantity}, nil
}

func addTo(ctx context.Context, repo repository.CurrentLocationRepository, dest *entity.CurrentLocation, in MoveInput, at time.Time) error {
	if dest == nil {
		return repo.Insert(ctx, &entity.CurrentLocation{
			Item:         in.Item,
			LocationCode: in.Destination,
			Quantity:     in.Quantity,
			LastMovedAt:  at,
			LastMovedBy:  in.Actor,
		})
	}
	next := *dest
	next.Quantity += in.Quantity
	next.LastMovedAt = at
	next.LastMovedBy = in.Actor
	return repo.Upsert(ctx, &next)
}
