package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")

	// Taxonomía del motor de ubicaciones.
	ErrInvalidLocation        = errors.New("ubicación inválida o inactiva")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrConcurrentModification = errors.New("el ítem está siendo modificado por otra operación")
	ErrNoOpMove               = errors.New("el ítem ya se encuentra en la ubicación destino")
	ErrStorageFailure         = errors.New("fallo del almacenamiento")
)
