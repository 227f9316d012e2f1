package entity

import (
	"fmt"
	"time"
)

// MovementType clasifica una transición de ubicación.
type MovementType string

const (
	MovementTypeCreated  MovementType = "created"  // primera ubicación del ítem
	MovementTypeTransfer MovementType = "transfer" // origen → destino
	MovementTypeDeleted  MovementType = "deleted"  // el ítem deja de rastrearse en una ubicación
	// MovementTypeOther ajuste de cantidad sin origen explícito; incluye las adiciones pooled
	// sin Source, tanto en una ubicación existente como en una nueva.
	MovementTypeOther MovementType = "other"
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeCreated, MovementTypeTransfer, MovementTypeDeleted, MovementTypeOther:
		return true
	}
	return false
}

// Movement es un registro inmutable de auditoría. Nunca se actualiza ni se borra.
// FromLocation / ToLocation vacíos equivalen a NULL.
type Movement struct {
	ID           string
	Seq          int64 // orden total asignado por el log al insertar
	Type         MovementType
	Item         ItemRef
	Quantity     int64
	FromLocation string
	ToLocation   string
	Actor        string
	OccurredAt   time.Time
	Reason       string
	Notes        string
}

// Validate verifica la forma del registro antes de anexarlo al log.
func (m *Movement) Validate() error {
	if !m.Type.Valid() {
		return fmt.Errorf("tipo de movimiento desconocido %q", m.Type)
	}
	if !m.Item.Kind.Valid() || m.Item.ID == "" {
		return fmt.Errorf("referencia de ítem inválida %q", m.Item.String())
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("cantidad de movimiento no positiva: %d", m.Quantity)
	}
	if m.FromLocation == "" && m.ToLocation == "" {
		return fmt.Errorf("movimiento sin origen ni destino")
	}
	switch m.Type {
	case MovementTypeCreated:
		if m.FromLocation != "" {
			return fmt.Errorf("movimiento created con origen %q", m.FromLocation)
		}
	case MovementTypeDeleted:
		if m.ToLocation != "" {
			return fmt.Errorf("movimiento deleted con destino %q", m.ToLocation)
		}
	case MovementTypeTransfer:
		if m.FromLocation == "" || m.ToLocation == "" {
			return fmt.Errorf("movimiento transfer requiere origen y destino")
		}
	}
	return nil
}
