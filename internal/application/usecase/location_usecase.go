package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/application/dto"
	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

// LocationUseCase administra el directorio de ubicaciones.
// El motor de rastreo solo lo consulta (IsActiveLocation); el ciclo de vida vive aquí.
type LocationUseCase struct {
	repo repository.LocationRepository
	now  func() time.Time
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo, now: time.Now}
}

// Create registra una nueva ubicación. Los códigos distinguen mayúsculas.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	code := normalizeCode(in.Code)
	if code == "" || len(code) > 64 {
		return nil, domain.ErrInvalidInput
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := uc.now().UTC()
	location := &entity.Location{
		Code:      code,
		Name:      strings.TrimSpace(in.Name),
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByCode obtiene una ubicación; nil si no existe.
func (uc *LocationUseCase) GetByCode(ctx context.Context, code string) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Update renombra o activa/desactiva una ubicación.
// Desactivar no mueve lo que ya está ahí; solo impide nuevos movimientos hacia ella.
func (uc *LocationUseCase) Update(ctx context.Context, code string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		location.Name = strings.TrimSpace(*in.Name)
	}
	if in.Active != nil {
		location.Active = *in.Active
	}
	location.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(ctx context.Context, activeOnly bool, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.repo.List(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func normalizeCode(code string) string {
	return strings.TrimSpace(code)
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		Code:      l.Code,
		Name:      l.Name,
		Active:    l.Active,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
