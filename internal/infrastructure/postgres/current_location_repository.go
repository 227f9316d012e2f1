package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ repository.CurrentLocationRepository = (*CurrentLocationRepo)(nil)

// CurrentLocationRepo proyección de ubicación actual sobre PostgreSQL (usable con pool o tx).
type CurrentLocationRepo struct {
	q Querier
}

// NewCurrentLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCurrentLocationRepository(q Querier) *CurrentLocationRepo {
	return &CurrentLocationRepo{q: q}
}

const currentLocationColumns = `item_kind, item_id, location_code, quantity, last_moved_at, last_moved_by`

// LockItem toma el bloqueo consultivo del ítem (cubre ítems sin filas todavía) y luego
// bloquea sus filas con SELECT ... FOR UPDATE. Ambos se liberan al terminar la tx.
func (r *CurrentLocationRepo) LockItem(ctx context.Context, item entity.ItemRef) ([]*entity.CurrentLocation, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, item.String()); err != nil {
		return nil, wrapErr("lock item", err)
	}
	query := `SELECT ` + currentLocationColumns + `
		FROM current_locations
		WHERE item_kind = $1 AND item_id = $2
		ORDER BY location_code
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, string(item.Kind), item.ID)
	if err != nil {
		return nil, wrapErr("lock item rows", err)
	}
	return collectCurrentLocations(rows, "lock item rows")
}

// Insert crea la fila (ítem, ubicación). Un duplicado indica que la proyección y el bloqueo se desincronizaron.
func (r *CurrentLocationRepo) Insert(ctx context.Context, row *entity.CurrentLocation) error {
	if row.Quantity <= 0 {
		return fmt.Errorf("insert current location: %w", domain.ErrInvalidQuantity)
	}
	query := `
		INSERT INTO current_locations (` + currentLocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		string(row.Item.Kind), row.Item.ID, row.LocationCode, row.Quantity, row.LastMovedAt, row.LastMovedBy,
	)
	return wrapErr("insert current location", err)
}

// Relocate actualiza en sitio la única fila de un ítem unique.
func (r *CurrentLocationRepo) Relocate(ctx context.Context, item entity.ItemRef, toLocation string, at time.Time, by string) error {
	query := `
		UPDATE current_locations
		SET location_code = $3, last_moved_at = $4, last_moved_by = $5
		WHERE item_kind = $1 AND item_id = $2`
	cmd, err := r.q.Exec(ctx, query, string(item.Kind), item.ID, toLocation, at, by)
	if err != nil {
		return wrapErr("relocate item", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("relocate item %s: %d filas afectadas: %w", item, cmd.RowsAffected(), domain.ErrStorageFailure)
	}
	return nil
}

// Upsert inserta o fija la cantidad absoluta de la fila (ítem, ubicación).
func (r *CurrentLocationRepo) Upsert(ctx context.Context, row *entity.CurrentLocation) error {
	if row.Quantity <= 0 {
		return fmt.Errorf("upsert current location: %w", domain.ErrInvalidQuantity)
	}
	query := `
		INSERT INTO current_locations (` + currentLocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_kind, item_id, location_code)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              last_moved_at = EXCLUDED.last_moved_at,
		              last_moved_by = EXCLUDED.last_moved_by`
	_, err := r.q.Exec(ctx, query,
		string(row.Item.Kind), row.Item.ID, row.LocationCode, row.Quantity, row.LastMovedAt, row.LastMovedBy,
	)
	return wrapErr("upsert current location", err)
}

// Delete elimina la fila (ítem, ubicación).
func (r *CurrentLocationRepo) Delete(ctx context.Context, item entity.ItemRef, locationCode string) error {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM current_locations WHERE item_kind = $1 AND item_id = $2 AND location_code = $3`,
		string(item.Kind), item.ID, locationCode,
	)
	if err != nil {
		return wrapErr("delete current location", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete current location %s@%s: %w", item, locationCode, domain.ErrNotFound)
	}
	return nil
}

// ListByItem lista las filas del ítem sin bloquearlas.
func (r *CurrentLocationRepo) ListByItem(ctx context.Context, item entity.ItemRef) ([]*entity.CurrentLocation, error) {
	query := `SELECT ` + currentLocationColumns + `
		FROM current_locations
		WHERE item_kind = $1 AND item_id = $2
		ORDER BY location_code`
	rows, err := r.q.Query(ctx, query, string(item.Kind), item.ID)
	if err != nil {
		return nil, wrapErr("list by item", err)
	}
	return collectCurrentLocations(rows, "list by item")
}

// ListByLocation usa el índice idx_current_locations_location.
func (r *CurrentLocationRepo) ListByLocation(ctx context.Context, locationCode string) ([]*entity.CurrentLocation, error) {
	query := `SELECT ` + currentLocationColumns + `
		FROM current_locations
		WHERE location_code = $1
		ORDER BY item_kind, item_id`
	rows, err := r.q.Query(ctx, query, locationCode)
	if err != nil {
		return nil, wrapErr("list by location", err)
	}
	return collectCurrentLocations(rows, "list by location")
}

// ListItems pagina por llave (item_kind, item_id) los ítems distintos rastreados.
func (r *CurrentLocationRepo) ListItems(ctx context.Context, after entity.ItemRef, limit int) ([]entity.ItemRef, error) {
	query := `
		SELECT DISTINCT item_kind, item_id
		FROM current_locations
		WHERE (item_kind, item_id) > ($1, $2)
		ORDER BY item_kind, item_id
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, string(after.Kind), after.ID, limit)
	if err != nil {
		return nil, wrapErr("list items", err)
	}
	defer rows.Close()
	var list []entity.ItemRef
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, wrapErr("scan item", err)
		}
		list = append(list, entity.ItemRef{Kind: entity.ItemKind(kind), ID: id})
	}
	return list, wrapErr("list items", rows.Err())
}

func collectCurrentLocations(rows pgx.Rows, op string) ([]*entity.CurrentLocation, error) {
	defer rows.Close()
	var list []*entity.CurrentLocation
	for rows.Next() {
		var c entity.CurrentLocation
		var kind string
		if err := rows.Scan(&kind, &c.Item.ID, &c.LocationCode, &c.Quantity, &c.LastMovedAt, &c.LastMovedBy); err != nil {
			return nil, wrapErr(op, err)
		}
		c.Item.Kind = entity.ItemKind(kind)
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}
