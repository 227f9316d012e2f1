package dto

import "time"

// MoveRequest body para POST /api/tracking/moves.
// quantity es obligatoria para item_kind=pooled; source solo aplica a pooled (reubicación).
type MoveRequest struct {
	ItemKind    string `json:"item_kind"`
	ItemID      string `json:"item_id"`
	Destination string `json:"destination"`
	Source      string `json:"source,omitempty"`
	Quantity    int64  `json:"quantity,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Notes       string `json:"notes,omitempty"`
	RejectNoOp  bool   `json:"reject_noop,omitempty"`
}

// PlacementResponse porción de un ítem en una ubicación.
type PlacementResponse struct {
	LocationCode string    `json:"location_code"`
	Quantity     int64     `json:"quantity"`
	LastMovedAt  time.Time `json:"last_moved_at"`
	LastMovedBy  string    `json:"last_moved_by"`
}

// ItemLocationResponse ubicación actual de un ítem.
type ItemLocationResponse struct {
	ItemKind   string              `json:"item_kind"`
	ItemID     string              `json:"item_id"`
	Placements []PlacementResponse `json:"placements"`
	Total      int64               `json:"total"`
}

// MovementResponse registro del log de movimientos.
type MovementResponse struct {
	ID           string    `json:"id"`
	Seq          int64     `json:"seq"`
	Type         string    `json:"type"`
	ItemKind     string    `json:"item_kind"`
	ItemID       string    `json:"item_id"`
	Quantity     int64     `json:"quantity"`
	FromLocation *string   `json:"from_location"`
	ToLocation   *string   `json:"to_location"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
	Reason       string    `json:"reason,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// MoveResponse resultado de un movimiento. movement_id vacío cuando noop=true.
type MoveResponse struct {
	Location   ItemLocationResponse `json:"location"`
	MovementID string               `json:"movement_id,omitempty"`
	NoOp       bool                 `json:"noop"`
}

// RemoveResponse resultado del retiro de un ítem.
type RemoveResponse struct {
	Removed   []PlacementResponse `json:"removed"`
	Movements []MovementResponse  `json:"movements"`
}

// HistoryResponse página del historial. next_cursor = 0 indica fin.
type HistoryResponse struct {
	Items      []MovementResponse `json:"items"`
	NextCursor int64              `json:"next_cursor"`
}

// LocationItemResponse fila de "qué hay en la ubicación".
type LocationItemResponse struct {
	ItemKind    string    `json:"item_kind"`
	ItemID      string    `json:"item_id"`
	Quantity    int64     `json:"quantity"`
	LastMovedAt time.Time `json:"last_moved_at"`
	LastMovedBy string    `json:"last_moved_by"`
}

// LocationItemsResponse contenido de una ubicación.
type LocationItemsResponse struct {
	LocationCode string                 `json:"location_code"`
	Items        []LocationItemResponse `json:"items"`
	Total        int                    `json:"total"`
}
