package entity

import (
	"sort"
	"time"
)

// CurrentLocation es la proyección "dónde está el ítem ahora" (una fila por ítem+ubicación).
// Para ítems unique existe como máximo una fila con Quantity = 1.
type CurrentLocation struct {
	Item         ItemRef
	LocationCode string
	Quantity     int64
	LastMovedAt  time.Time
	LastMovedBy  string
}

// Placement es una porción del ítem en una ubicación.
type Placement struct {
	LocationCode string
	Quantity     int64
	LastMovedAt  time.Time
	LastMovedBy  string
}

// ItemLocation es la vista agregada de la ubicación actual de un ítem.
// Placements vacío significa que el ítem no está rastreado (estado ABSENT).
type ItemLocation struct {
	Item       ItemRef
	Placements []Placement
	Total      int64
}

// NewItemLocation arma la vista agregada a partir de las filas del ítem, ordenadas por ubicación.
func NewItemLocation(item ItemRef, rows []*CurrentLocation) *ItemLocation {
	out := &ItemLocation{Item: item, Placements: make([]Placement, 0, len(rows))}
	for _, r := range rows {
		out.Placements = append(out.Placements, Placement{
			LocationCode: r.LocationCode,
			Quantity:     r.Quantity,
			LastMovedAt:  r.LastMovedAt,
			LastMovedBy:  r.LastMovedBy,
		})
		out.Total += r.Quantity
	}
	sort.Slice(out.Placements, func(i, j int) bool {
		return out.Placements[i].LocationCode < out.Placements[j].LocationCode
	})
	return out
}

// Present indica si el ítem tiene al menos una ubicación.
func (l *ItemLocation) Present() bool {
	return l != nil && len(l.Placements) > 0
}

// QuantityAt devuelve la cantidad del ítem en la ubicación indicada (0 si no está).
func (l *ItemLocation) QuantityAt(code string) int64 {
	if l == nil {
		return 0
	}
	for _, p := range l.Placements {
		if p.LocationCode == code {
			return p.Quantity
		}
	}
	return 0
}
