package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

// ReportUseCase genera el manifiesto PDF de "qué hay en la ubicación".
type ReportUseCase struct {
	locationRepo repository.LocationRepository
	queries      *QueryService
	generator    LocationReportGenerator
	now          func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(locationRepo repository.LocationRepository, queries *QueryService, generator LocationReportGenerator) *ReportUseCase {
	return &ReportUseCase{locationRepo: locationRepo, queries: queries, generator: generator, now: time.Now}
}

// LocationReport devuelve los bytes del PDF. La ubicación debe existir (activa o no).
func (uc *ReportUseCase) LocationReport(ctx context.Context, code string) ([]byte, error) {
	code = strings.TrimSpace(code)
	loc, err := uc.locationRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.queries.GetItemsAt(ctx, code)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateLocationReport(ctx, loc, rows, uc.now())
}
