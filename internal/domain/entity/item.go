package entity

import "strings"

// ItemKind define la estrategia con la que se rastrea la ubicación de un ítem.
type ItemKind string

const (
	ItemKindUnique ItemKind = "unique" // calibradores, herramientas: una sola ubicación, cantidad implícita 1
	ItemKindPooled ItemKind = "pooled" // partes: cantidades repartidas en varias ubicaciones
)

// Valid indica si el tipo es uno de los soportados.
func (k ItemKind) Valid() bool {
	return k == ItemKindUnique || k == ItemKindPooled
}

// ParseItemKind convierte el texto recibido (p.ej. desde la URL) en ItemKind.
func ParseItemKind(s string) (ItemKind, bool) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// ItemRef es la referencia polimórfica {kind, identifier} a un ítem de cualquier catálogo.
// El motor no interpreta ID; cada catálogo (calibradores, herramientas, partes) es dueño de su significado.
type ItemRef struct {
	Kind ItemKind
	ID   string
}

// String devuelve "kind:id"; se usa como clave de bloqueo y de partición de eventos.
func (r ItemRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// Less ordena referencias por (kind, id).
func (r ItemRef) Less(o ItemRef) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.ID < o.ID
}
