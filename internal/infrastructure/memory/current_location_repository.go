package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ repository.CurrentLocationRepository = (*CurrentLocationRepo)(nil)

// CurrentLocationRepo proyección de ubicación actual. Con tx == nil opera sobre el estado confirmado.
type CurrentLocationRepo struct {
	s  *Store
	tx *memTx
}

func (r *CurrentLocationRepo) LockItem(ctx context.Context, item entity.ItemRef) ([]*entity.CurrentLocation, error) {
	if r.tx == nil {
		return r.ListByItem(ctx, item)
	}
	if err := r.tx.lock(ctx, item); err != nil {
		return nil, err
	}
	return sortedRows(r.tx.rowsOf(item)), nil
}

func (r *CurrentLocationRepo) Insert(ctx context.Context, row *entity.CurrentLocation) error {
	if row.Quantity <= 0 {
		return fmt.Errorf("%w: cantidad %d", domain.ErrInvalidQuantity, row.Quantity)
	}
	return autocommit(r.s, r.tx, func(tx *memTx) error {
		rows, err := tx.stage(ctx, row.Item)
		if err != nil {
			return err
		}
		if _, exists := rows[row.LocationCode]; exists {
			return fmt.Errorf("%w: fila duplicada %s@%s", domain.ErrStorageFailure, row.Item, row.LocationCode)
		}
		if row.Item.Kind == entity.ItemKindUnique && len(rows) > 0 {
			return fmt.Errorf("%w: el ítem %s ya tiene ubicación", domain.ErrStorageFailure, row.Item)
		}
		rows[row.LocationCode] = *row
		return nil
	})
}

func (r *CurrentLocationRepo) Relocate(ctx context.Context, item entity.ItemRef, toLocation string, at time.Time, by string) error {
	return autocommit(r.s, r.tx, func(tx *memTx) error {
		rows, err := tx.stage(ctx, item)
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return fmt.Errorf("%w: %s tiene %d filas", domain.ErrNotFound, item, len(rows))
		}
		var row entity.CurrentLocation
		for code, r := range rows {
			row = r
			delete(rows, code)
		}
		row.LocationCode = toLocation
		row.LastMovedAt = at
		row.LastMovedBy = by
		rows[toLocation] = row
		return nil
	})
}

func (r *CurrentLocationRepo) Upsert(ctx context.Context, row *entity.CurrentLocation) error {
	if row.Quantity <= 0 {
		return fmt.Errorf("%w: cantidad %d", domain.ErrInvalidQuantity, row.Quantity)
	}
	return autocommit(r.s, r.tx, func(tx *memTx) error {
		rows, err := tx.stage(ctx, row.Item)
		if err != nil {
			return err
		}
		rows[row.LocationCode] = *row
		return nil
	})
}

func (r *CurrentLocationRepo) Delete(ctx context.Context, item entity.ItemRef, locationCode string) error {
	return autocommit(r.s, r.tx, func(tx *memTx) error {
		rows, err := tx.stage(ctx, item)
		if err != nil {
			return err
		}
		if _, ok := rows[locationCode]; !ok {
			return fmt.Errorf("%w: %s@%s", domain.ErrNotFound, item, locationCode)
		}
		delete(rows, locationCode)
		return nil
	})
}

func (r *CurrentLocationRepo) ListByItem(_ context.Context, item entity.ItemRef) ([]*entity.CurrentLocation, error) {
	if r.tx != nil {
		return sortedRows(r.tx.rowsOf(item)), nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedRows(r.s.committedRows(item)), nil
}

func (r *CurrentLocationRepo) ListByLocation(_ context.Context, locationCode string) ([]*entity.CurrentLocation, error) {
	var out []*entity.CurrentLocation
	r.s.mu.RLock()
	for item := range r.s.byLocation[locationCode] {
		if r.tx != nil {
			if _, staged := r.tx.staged[item]; staged {
				continue
			}
		}
		row := r.s.rows[item][locationCode]
		out = append(out, &row)
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, rows := range r.tx.staged {
			if row, ok := rows[locationCode]; ok {
				out = append(out, &row)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Less(out[j].Item) })
	return out, nil
}

func (r *CurrentLocationRepo) ListItems(_ context.Context, after entity.ItemRef, limit int) ([]entity.ItemRef, error) {
	r.s.mu.RLock()
	items := make([]entity.ItemRef, 0, len(r.s.rows))
	for item := range r.s.rows {
		if (after == entity.ItemRef{}) || after.Less(item) {
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].Less(items[j]) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func sortedRows(rows itemRows) []*entity.CurrentLocation {
	out := make([]*entity.CurrentLocation, 0, len(rows))
	for _, row := range rows {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationCode < out[j].LocationCode })
	return out
}
