package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema crea las tablas del motor de ubicaciones. Es idempotente.
const schema = `
CREATE TABLE IF NOT EXISTS locations (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS current_locations (
	item_kind     TEXT NOT NULL CHECK (item_kind IN ('unique', 'pooled')),
	item_id       TEXT NOT NULL,
	location_code TEXT NOT NULL,
	quantity      BIGINT NOT NULL CHECK (quantity > 0),
	last_moved_at TIMESTAMPTZ NOT NULL,
	last_moved_by TEXT NOT NULL,
	PRIMARY KEY (item_kind, item_id, location_code),
	CHECK (item_kind <> 'unique' OR quantity = 1)
);

-- Un ítem unique vive en exactamente una ubicación.
CREATE UNIQUE INDEX IF NOT EXISTS uq_current_locations_unique_item
	ON current_locations (item_kind, item_id) WHERE item_kind = 'unique';
CREATE INDEX IF NOT EXISTS idx_current_locations_location
	ON current_locations (location_code);

CREATE TABLE IF NOT EXISTS movements (
	seq           BIGSERIAL PRIMARY KEY,
	id            UUID NOT NULL UNIQUE,
	movement_type TEXT NOT NULL CHECK (movement_type IN ('created', 'transfer', 'deleted', 'other')),
	item_kind     TEXT NOT NULL,
	item_id       TEXT NOT NULL,
	quantity      BIGINT NOT NULL CHECK (quantity > 0),
	from_location TEXT,
	to_location   TEXT,
	actor         TEXT NOT NULL,
	occurred_at   TIMESTAMPTZ NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	CHECK (from_location IS NOT NULL OR to_location IS NOT NULL),
	CHECK (movement_type <> 'created' OR from_location IS NULL),
	CHECK (movement_type <> 'deleted' OR to_location IS NULL),
	CHECK (movement_type <> 'transfer' OR (from_location IS NOT NULL AND to_location IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_movements_item
	ON movements (item_kind, item_id, seq DESC);
CREATE INDEX IF NOT EXISTS idx_movements_occurred_at
	ON movements (occurred_at DESC, seq DESC);

CREATE OR REPLACE FUNCTION movements_append_only() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'movements es solo de inserción';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_movements_append_only ON movements;
CREATE TRIGGER trg_movements_append_only
	BEFORE UPDATE OR DELETE ON movements
	FOR EACH ROW EXECUTE FUNCTION movements_append_only();
`

// Migrate aplica el esquema. Sin argumentos pgx usa el protocolo simple, que admite varias sentencias.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return wrapErr("migrate schema", err)
	}
	return nil
}
