package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del directorio de ubicaciones sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una nueva ubicación.
func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	query := `
		INSERT INTO locations (code, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		location.Code, location.Name, location.Active, location.CreatedAt, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ubicación %q: %w", location.Code, domain.ErrDuplicate)
		}
		return wrapErr("insert location", err)
	}
	return nil
}

// GetByCode obtiene una ubicación por código; nil, nil si no existe.
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	query := `
		SELECT code, name, active, created_at, updated_at
		FROM locations WHERE code = $1`
	var l entity.Location
	err := r.q.QueryRow(ctx, query, code).Scan(&l.Code, &l.Name, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get location", err)
	}
	return &l, nil
}

// Update actualiza nombre y estado de una ubicación existente.
func (r *LocationRepo) Update(ctx context.Context, location *entity.Location) error {
	query := `
		UPDATE locations SET name = $2, active = $3, updated_at = $4
		WHERE code = $1`
	cmd, err := r.q.Exec(ctx, query, location.Code, location.Name, location.Active, location.UpdatedAt)
	if err != nil {
		return wrapErr("update location", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("ubicación %q: %w", location.Code, domain.ErrNotFound)
	}
	return nil
}

// List lista ubicaciones ordenadas por código con paginación.
func (r *LocationRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Location, error) {
	query := `
		SELECT code, name, active, created_at, updated_at
		FROM locations
		WHERE NOT $1::boolean OR active
		ORDER BY code LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, activeOnly, limit, offset)
	if err != nil {
		return nil, wrapErr("list locations", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.Code, &l.Name, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, wrapErr("scan location", err)
		}
		list = append(list, &l)
	}
	return list, wrapErr("list locations", rows.Err())
}
