package http

import (
	"github.com/jhoicas/inventario-tracking/internal/application/dto"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

func toItemLocationResponse(loc *entity.ItemLocation) dto.ItemLocationResponse {
	out := dto.ItemLocationResponse{
		ItemKind:   string(loc.Item.Kind),
		ItemID:     loc.Item.ID,
		Placements: make([]dto.PlacementResponse, 0, len(loc.Placements)),
		Total:      loc.Total,
	}
	for _, p := range loc.Placements {
		out.Placements = append(out.Placements, dto.PlacementResponse{
			LocationCode: p.LocationCode,
			Quantity:     p.Quantity,
			LastMovedAt:  p.LastMovedAt,
			LastMovedBy:  p.LastMovedBy,
		})
	}
	return out
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		Seq:          m.Seq,
		Type:         string(m.Type),
		ItemKind:     string(m.Item.Kind),
		ItemID:       m.Item.ID,
		Quantity:     m.Quantity,
		FromLocation: optional(m.FromLocation),
		ToLocation:   optional(m.ToLocation),
		Actor:        m.Actor,
		OccurredAt:   m.OccurredAt,
		Reason:       m.Reason,
		Notes:        m.Notes,
	}
}

func toMovementResponses(list []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toLocationItemsResponse(code string, rows []*entity.CurrentLocation) dto.LocationItemsResponse {
	out := dto.LocationItemsResponse{
		LocationCode: code,
		Items:        make([]dto.LocationItemResponse, 0, len(rows)),
		Total:        len(rows),
	}
	for _, r := range rows {
		out.Items = append(out.Items, dto.LocationItemResponse{
			ItemKind:    string(r.Item.Kind),
			ItemID:      r.Item.ID,
			Quantity:    r.Quantity,
			LastMovedAt: r.LastMovedAt,
			LastMovedBy: r.LastMovedBy,
		})
	}
	return out
}

// optional traduce "" a null en JSON.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
