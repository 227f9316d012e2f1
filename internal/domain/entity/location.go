package entity

import "time"

// Location representa una ubicación física del directorio de referencia (bodega, estante, laboratorio).
// Solo las ubicaciones activas pueden recibir ítems.
type Location struct {
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
