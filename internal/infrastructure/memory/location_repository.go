package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo directorio de ubicaciones en memoria.
type LocationRepo struct {
	mu    sync.RWMutex
	items map[string]entity.Location
}

// NewLocationRepo construye el directorio vacío.
func NewLocationRepo() *LocationRepo {
	return &LocationRepo{items: make(map[string]entity.Location)}
}

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[location.Code]; ok {
		return domain.ErrDuplicate
	}
	r.items[location.Code] = *location
	return nil
}

func (r *LocationRepo) GetByCode(_ context.Context, code string) (*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[code]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepo) Update(_ context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[location.Code]; !ok {
		return domain.ErrNotFound
	}
	r.items[location.Code] = *location
	return nil
}

func (r *LocationRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*entity.Location, error) {
	r.mu.RLock()
	list := make([]*entity.Location, 0, len(r.items))
	for _, l := range r.items {
		if activeOnly && !l.Active {
			continue
		}
		l := l
		list = append(list, &l)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []*entity.Location{}, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
