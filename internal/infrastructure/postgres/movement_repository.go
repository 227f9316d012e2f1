package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `seq, id, movement_type, item_kind, item_id, quantity, from_location, to_location,
	actor, occurred_at, reason, notes`

// Append inserta el movimiento y asigna Seq desde el BIGSERIAL.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, movement_type, item_kind, item_id, quantity, from_location, to_location,
			actor, occurred_at, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, string(m.Type), string(m.Item.Kind), m.Item.ID, m.Quantity,
		nullable(m.FromLocation), nullable(m.ToLocation),
		m.Actor, m.OccurredAt, m.Reason, m.Notes,
	).Scan(&m.Seq)
	return wrapErr("append movement", err)
}

// ListByItem pagina el historial del ítem hacia atrás usando Seq como cursor.
func (r *MovementRepo) ListByItem(ctx context.Context, item entity.ItemRef, beforeSeq int64, limit int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements
		WHERE item_kind = $1 AND item_id = $2 AND ($3::bigint <= 0 OR seq < $3::bigint)
		ORDER BY seq DESC
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, string(item.Kind), item.ID, beforeSeq, limit)
	if err != nil {
		return nil, wrapErr("list movements by item", err)
	}
	return collectMovements(rows, "list movements by item")
}

// ListRecent usa el índice (occurred_at DESC, seq DESC).
func (r *MovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements
		ORDER BY occurred_at DESC, seq DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, wrapErr("list recent movements", err)
	}
	return collectMovements(rows, "list recent movements")
}

func (r *MovementRepo) ListSince(ctx context.Context, afterSeq int64, limit int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements
		WHERE seq > $1
		ORDER BY seq
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, afterSeq, limit)
	if err != nil {
		return nil, wrapErr("list movements since", err)
	}
	return collectMovements(rows, "list movements since")
}

func collectMovements(rows pgx.Rows, op string) ([]*entity.Movement, error) {
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var mtype, kind string
		var from, to *string
		if err := rows.Scan(
			&m.Seq, &m.ID, &mtype, &kind, &m.Item.ID, &m.Quantity, &from, &to,
			&m.Actor, &m.OccurredAt, &m.Reason, &m.Notes,
		); err != nil {
			return nil, wrapErr(op, err)
		}
		m.Type = entity.MovementType(mtype)
		m.Item.Kind = entity.ItemKind(kind)
		m.FromLocation = deref(from)
		m.ToLocation = deref(to)
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

// nullable traduce "" a NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
