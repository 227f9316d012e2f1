// Package pdf genera el manifiesto imprimible de una ubicación: qué ítems
// están físicamente en ella y en qué cantidad.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Código + nombre      │  Fecha de generación        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Tipo | Ítem | Cantidad | Último movimiento | Por    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: ítems distintos / unidades        QR de ubicación │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

var _ tracking.LocationReportGenerator = (*LocationReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// LocationReportGenerator implementa tracking.LocationReportGenerator usando Maroto v2.
type LocationReportGenerator struct{}

// NewLocationReportGenerator construye el generador.
func NewLocationReportGenerator() *LocationReportGenerator { return &LocationReportGenerator{} }

// GenerateLocationReport genera el PDF y devuelve sus bytes.
func (g *LocationReportGenerator) GenerateLocationReport(
	_ context.Context,
	location *entity.Location,
	rows []*entity.CurrentLocation,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Manifiesto de ubicación "+location.Code, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(location, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("La ubicación está vacía.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableDetailRows(rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(location, rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar manifiesto: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(location *entity.Location, generatedAt time.Time) core.Row {
	status := "ACTIVA"
	if !location.Active {
		status = "INACTIVA"
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(location.Code, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(location.Name, "-")+"   |   "+status, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("MANIFIESTO DE UBICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Tipo", 2, align.Left),
		h("Ítem", 4, align.Left),
		h("Cantidad", 2, align.Right),
		h("Último movimiento", 2, align.Center),
		h("Por", 2, align.Left),
	)
}

// tableDetailRows: una fila por (ítem, cantidad) en la ubicación.
func tableDetailRows(rows []*entity.CurrentLocation) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(string(r.Item.Kind), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(r.Item.ID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatThousands(r.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(r.LastMovedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(r.LastMovedBy, props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return result
}

// summaryRow: totales a la izquierda y QR con el código de la ubicación para rotular el estante.
func summaryRow(location *entity.Location, rows []*entity.CurrentLocation) core.Row {
	var units int64
	for _, r := range rows {
		units += r.Quantity
	}
	return row.New(40).Add(
		col.New(8).Add(
			text.New("Ítems distintos: "+strconv.Itoa(len(rows)), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 4,
			}),
			text.New("Unidades: "+formatThousands(units), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 11,
			}),
		),
		col.New(4).Add(code.NewQr(location.Code, props.Rect{Percent: 90, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 1000000 → "1.000.000".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + formatThousands(-n)
	}
	l := len(s)
	if l <= 3 {
		return s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
