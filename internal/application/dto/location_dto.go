package dto

import "time"

// CreateLocationRequest entrada para registrar una ubicación en el directorio.
type CreateLocationRequest struct {
	Code   string `json:"code" validate:"required,min=1,max=64"`
	Name   string `json:"name"`
	Active *bool  `json:"active,omitempty"` // por defecto true
}

// UpdateLocationRequest entrada para renombrar o activar/desactivar una ubicación.
type UpdateLocationRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=200"`
	Active *bool   `json:"active"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
