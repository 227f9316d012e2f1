package tracking

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ LocationDirectory = (*RepositoryDirectory)(nil)

// RepositoryDirectory adapta el repositorio de ubicaciones al contrato IsActiveLocation.
type RepositoryDirectory struct {
	repo repository.LocationRepository
}

// NewRepositoryDirectory construye el adaptador.
func NewRepositoryDirectory(repo repository.LocationRepository) *RepositoryDirectory {
	return &RepositoryDirectory{repo: repo}
}

// IsActiveLocation indica si el código existe en el directorio y está activo.
func (d *RepositoryDirectory) IsActiveLocation(ctx context.Context, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	loc, err := d.repo.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return loc != nil && loc.Active, nil
}
