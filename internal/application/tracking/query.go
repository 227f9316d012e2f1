package tracking

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

// QueryService expone las lecturas sin efectos secundarios. Nunca toma bloqueos de ítem.
type QueryService struct {
	locRepo     repository.CurrentLocationRepository
	movRepo     repository.MovementRepository
	defaultPage int
	maxRecent   int
}

// NewQueryService construye el servicio con repositorios atados al pool (no a una tx).
func NewQueryService(locRepo repository.CurrentLocationRepository, movRepo repository.MovementRepository, defaultPage, maxRecent int) *QueryService {
	if defaultPage <= 0 {
		defaultPage = 50
	}
	if maxRecent <= 0 {
		maxRecent = 200
	}
	return &QueryService{locRepo: locRepo, movRepo: movRepo, defaultPage: defaultPage, maxRecent: maxRecent}
}

// GetCurrentLocation devuelve dónde está el ítem. Unique: cero o una ubicación; pooled: pares (ubicación, cantidad) y total.
func (s *QueryService) GetCurrentLocation(ctx context.Context, item entity.ItemRef) (*entity.ItemLocation, error) {
	item.ID = strings.TrimSpace(item.ID)
	if !item.Kind.Valid() || item.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	rows, err := s.locRepo.ListByItem(ctx, item)
	if err != nil {
		return nil, err
	}
	return entity.NewItemLocation(item, rows), nil
}

// GetItemsAt devuelve todo lo que está en la ubicación, de todos los tipos de ítem.
func (s *QueryService) GetItemsAt(ctx context.Context, locationCode string) ([]*entity.CurrentLocation, error) {
	locationCode = strings.TrimSpace(locationCode)
	if locationCode == "" {
		return nil, domain.ErrInvalidLocation
	}
	return s.locRepo.ListByLocation(ctx, locationCode)
}

// HistoryPage página del historial de un ítem. NextCursor = 0 indica que no hay más.
type HistoryPage struct {
	Items      []*entity.Movement
	NextCursor int64
}

// GetHistory devuelve una página del historial, del más reciente al más antiguo.
// cursor es el NextCursor de la página anterior (0 para empezar).
func (s *QueryService) GetHistory(ctx context.Context, item entity.ItemRef, cursor int64, limit int) (*HistoryPage, error) {
	item.ID = strings.TrimSpace(item.ID)
	if !item.Kind.Valid() || item.ID == "" || cursor < 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = s.defaultPage
	}
	list, err := s.movRepo.ListByItem(ctx, item, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("historial de %s: %w", item, err)
	}
	page := &HistoryPage{Items: list}
	if len(list) > limit {
		page.Items = list[:limit]
		page.NextCursor = page.Items[limit-1].Seq
	}
	return page, nil
}

// History recorre perezosamente todo el historial del ítem, paginando por cursor.
// La secuencia es finita y puede recorrerse de nuevo; cada recorrido vuelve a consultar desde el inicio.
func (s *QueryService) History(ctx context.Context, item entity.ItemRef, pageSize int) iter.Seq2[*entity.Movement, error] {
	return func(yield func(*entity.Movement, error) bool) {
		var cursor int64
		for {
			page, err := s.GetHistory(ctx, item, cursor, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, m := range page.Items {
				if !yield(m, nil) {
					return
				}
			}
			if page.NextCursor == 0 {
				return
			}
			cursor = page.NextCursor
		}
	}
}

// GetRecent devuelve la actividad global más reciente, limitada a maxRecent.
func (s *QueryService) GetRecent(ctx context.Context, limit int) ([]*entity.Movement, error) {
	if limit <= 0 || limit > s.maxRecent {
		limit = s.maxRecent
	}
	return s.movRepo.ListRecent(ctx, limit)
}
