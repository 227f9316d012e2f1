package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos en memoria. No expone ninguna operación de modificación.
type MovementRepo struct {
	s  *Store
	tx *memTx
}

func (r *MovementRepo) Append(_ context.Context, movement *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.appendHook != nil {
		if err := r.s.appendHook(movement); err != nil {
			return err
		}
	}
	// Como un BIGSERIAL: el número se consume aunque la tx se revierta.
	r.s.seq++
	movement.Seq = r.s.seq
	if r.tx != nil {
		r.tx.pending = append(r.tx.pending, *movement)
		return nil
	}
	r.s.insertMovement(*movement)
	return nil
}

func (r *MovementRepo) ListByItem(_ context.Context, item entity.ItemRef, beforeSeq int64, limit int) ([]*entity.Movement, error) {
	list := r.visible(func(m *entity.Movement) bool {
		return m.Item == item && (beforeSeq <= 0 || m.Seq < beforeSeq)
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Seq > list[j].Seq })
	return truncate(list, limit), nil
}

func (r *MovementRepo) ListRecent(_ context.Context, limit int) ([]*entity.Movement, error) {
	list := r.visible(func(*entity.Movement) bool { return true })
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].Seq > list[j].Seq
	})
	return truncate(list, limit), nil
}

func (r *MovementRepo) ListSince(_ context.Context, afterSeq int64, limit int) ([]*entity.Movement, error) {
	list := r.visible(func(m *entity.Movement) bool { return m.Seq > afterSeq })
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
	return truncate(list, limit), nil
}

// visible copia los movimientos confirmados (más los pendientes de la tx) que cumplen keep.
func (r *MovementRepo) visible(keep func(*entity.Movement) bool) []*entity.Movement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Movement
	add := func(ms []entity.Movement) {
		for i := range ms {
			m := ms[i]
			if keep(&m) {
				out = append(out, &m)
			}
		}
	}
	add(r.s.movements)
	if r.tx != nil {
		add(r.tx.pending)
	}
	return out
}

func truncate(list []*entity.Movement, limit int) []*entity.Movement {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
