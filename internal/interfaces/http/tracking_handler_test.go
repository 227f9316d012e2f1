package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tracking/internal/application/dto"
	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/application/usecase"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-tracking/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTrackingApp arma la API completa sobre el almacén en memoria con las
// ubicaciones A1, B2 (activas) y Z9 (inactiva).
func buildTrackingApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore(time.Second)
	ctx := context.Background()
	for _, loc := range []*entity.Location{
		{Code: "A1", Name: "Estante A1", Active: true},
		{Code: "B2", Name: "Estante B2", Active: true},
		{Code: "Z9", Name: "Cuarentena", Active: false},
	} {
		require.NoError(t, store.Locations().Create(ctx, loc))
	}

	queries := tracking.NewQueryService(store.CurrentLocations(), store.Movements(), 2, 100)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Coordinator: tracking.NewCoordinator(store, tracking.NewRepositoryDirectory(store.Locations()), nil, nil),
		Queries:     queries,
		Reports:     tracking.NewReportUseCase(store.Locations(), queries, pdf.NewLocationReportGenerator()),
		LocationUC:  usecase.NewLocationUseCase(store.Locations()),
		JWTSecret:   testJWTSecret,
	})
	return app
}

// call lanza la petición con el rol indicado y decodifica el JSON en out (si no es nil).
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func moveGauge(dest string) dto.MoveRequest {
	return dto.MoveRequest{ItemKind: "unique", ItemID: "G-001", Destination: dest}
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMove_CreaTrasladaYNoOp(t *testing.T) {
	app := buildTrackingApp(t)

	var created dto.MoveResponse
	assert.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("A1"), &created))
	assert.NotEmpty(t, created.MovementID)
	require.Len(t, created.Location.Placements, 1)
	assert.Equal(t, "A1", created.Location.Placements[0].LocationCode)
	assert.Equal(t, testUserID, created.Location.Placements[0].LastMovedBy)

	var moved dto.MoveResponse
	assert.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("B2"), &moved))
	assert.Equal(t, "B2", moved.Location.Placements[0].LocationCode)

	var noop dto.MoveResponse
	assert.Equal(t, http.StatusOK, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("B2"), &noop))
	assert.True(t, noop.NoOp)
	assert.Empty(t, noop.MovementID)

	strict := moveGauge("B2")
	strict.RejectNoOp = true
	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", strict, &errResp))
	assert.Equal(t, "NOOP_MOVE", errResp.Code)

	var history dto.HistoryResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/tracking/items/unique/G-001/history?limit=10", nil, &history))
	require.Len(t, history.Items, 2)
	assert.Equal(t, "transfer", history.Items[0].Type)
	require.NotNil(t, history.Items[0].FromLocation)
	assert.Equal(t, "A1", *history.Items[0].FromLocation)
	assert.Equal(t, "created", history.Items[1].Type)
	assert.Nil(t, history.Items[1].FromLocation)
}

func TestMove_ErroresDeValidacion(t *testing.T) {
	app := buildTrackingApp(t)

	tests := []struct {
		name   string
		body   dto.MoveRequest
		status int
		code   string
	}{
		{"ubicación inactiva", moveGauge("Z9"), http.StatusUnprocessableEntity, "INVALID_LOCATION"},
		{"ubicación inexistente", moveGauge("Q7"), http.StatusUnprocessableEntity, "INVALID_LOCATION"},
		{"pooled sin cantidad", dto.MoveRequest{ItemKind: "pooled", ItemID: "P-1", Destination: "A1"}, http.StatusUnprocessableEntity, "INVALID_QUANTITY"},
		{"pooled cantidad negativa", dto.MoveRequest{ItemKind: "pooled", ItemID: "P-1", Destination: "A1", Quantity: -3}, http.StatusUnprocessableEntity, "INVALID_QUANTITY"},
		{"tipo desconocido", dto.MoveRequest{ItemKind: "pallet", ItemID: "X", Destination: "A1"}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var errResp dto.ErrorResponse
			assert.Equal(t, tc.status, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", tc.body, &errResp))
			assert.Equal(t, tc.code, errResp.Code)
		})
	}

	// Ningún rechazo dejó rastro.
	var recent []dto.MovementResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/tracking/movements/recent", nil, &recent))
	assert.Empty(t, recent)
}

func TestMove_ConsultaNoPuedeMover(t *testing.T) {
	app := buildTrackingApp(t)
	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, call(t, app, "consulta", http.MethodPost, "/api/tracking/moves", moveGauge("A1"), &errResp))
	assert.Equal(t, "FORBIDDEN", errResp.Code)
}

func TestMove_PooledYContenidoDeUbicacion(t *testing.T) {
	app := buildTrackingApp(t)
	part := func(dest, src string, qty int64) dto.MoveRequest {
		return dto.MoveRequest{ItemKind: "pooled", ItemID: "P-10", Destination: dest, Source: src, Quantity: qty}
	}

	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", part("A1", "", 10), nil))
	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("A1"), nil))

	var res dto.MoveResponse
	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", part("B2", "A1", 4), &res))
	assert.Equal(t, int64(10), res.Location.Total)
	require.Len(t, res.Location.Placements, 2)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", part("B2", "A1", 50), &errResp))
	assert.Equal(t, "INVALID_QUANTITY", errResp.Code)

	var at dto.LocationItemsResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/tracking/locations/A1/items", nil, &at))
	require.Equal(t, 2, at.Total)
	assert.Equal(t, "pooled", at.Items[0].ItemKind)
	assert.Equal(t, int64(6), at.Items[0].Quantity)
	assert.Equal(t, "unique", at.Items[1].ItemKind)

	var item dto.ItemLocationResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/tracking/items/pooled/P-10", nil, &item))
	assert.Equal(t, int64(10), item.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Retiro, historial y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestRemove_ItemUnique(t *testing.T) {
	app := buildTrackingApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("A1"), nil))

	var removed dto.RemoveResponse
	assert.Equal(t, http.StatusOK, call(t, app, "bodeguero", http.MethodDelete, "/api/tracking/items/unique/G-001?reason=baja", nil, &removed))
	require.Len(t, removed.Movements, 1)
	assert.Equal(t, "deleted", removed.Movements[0].Type)
	assert.Nil(t, removed.Movements[0].ToLocation)
	assert.Equal(t, "baja", removed.Movements[0].Reason)

	var item dto.ItemLocationResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/tracking/items/unique/G-001", nil, &item))
	assert.Empty(t, item.Placements)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, "bodeguero", http.MethodDelete, "/api/tracking/items/unique/G-001", nil, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestHistory_PaginaConCursor(t *testing.T) {
	app := buildTrackingApp(t)
	for _, dest := range []string{"A1", "B2", "A1"} {
		require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge(dest), nil))
	}

	// Tamaño de página por defecto = 2.
	var first dto.HistoryResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/tracking/items/unique/G-001/history", nil, &first))
	require.Len(t, first.Items, 2)
	require.NotZero(t, first.NextCursor)

	var second dto.HistoryResponse
	path := fmt.Sprintf("/api/tracking/items/unique/G-001/history?cursor=%d", first.NextCursor)
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, path, nil, &second))
	require.Len(t, second.Items, 1)
	assert.Zero(t, second.NextCursor)
	assert.Equal(t, "created", second.Items[0].Type)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, app, "consulta", http.MethodGet, "/api/tracking/items/unique/G-001/history?cursor=abc", nil, &errResp))
	assert.Equal(t, "INVALID_CURSOR", errResp.Code)
}

func TestLocationReport_PDF(t *testing.T) {
	app := buildTrackingApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("A1"), nil))

	req := httptest.NewRequest(http.MethodGet, "/api/tracking/locations/A1/report.pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "consulta"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, "consulta", http.MethodGet, "/api/tracking/locations/NOPE/report.pdf", nil, &errResp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Directorio de ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestLocations_AdminGestionaDirectorio(t *testing.T) {
	app := buildTrackingApp(t)

	var created dto.LocationResponse
	assert.Equal(t, http.StatusCreated, call(t, app, "admin", http.MethodPost, "/api/locations", dto.CreateLocationRequest{Code: "C3", Name: "Estante C3"}, &created))
	assert.True(t, created.Active)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, "admin", http.MethodPost, "/api/locations", dto.CreateLocationRequest{Code: "C3"}, &errResp))
	assert.Equal(t, "DUPLICATE", errResp.Code)

	assert.Equal(t, http.StatusForbidden, call(t, app, "bodeguero", http.MethodPost, "/api/locations", dto.CreateLocationRequest{Code: "D4"}, nil))

	inactive := false
	var updated dto.LocationResponse
	assert.Equal(t, http.StatusOK, call(t, app, "admin", http.MethodPatch, "/api/locations/C3", dto.UpdateLocationRequest{Active: &inactive}, &updated))
	assert.False(t, updated.Active)

	// Una ubicación desactivada deja de aceptar movimientos.
	assert.Equal(t, http.StatusUnprocessableEntity, call(t, app, "bodeguero", http.MethodPost, "/api/tracking/moves", moveGauge("C3"), nil))

	assert.Equal(t, http.StatusNotFound, call(t, app, "admin", http.MethodPatch, "/api/locations/NOPE", dto.UpdateLocationRequest{Active: &inactive}, nil))

	var list dto.LocationListResponse
	assert.Equal(t, http.StatusOK, call(t, app, "consulta", http.MethodGet, "/api/locations?active_only=true", nil, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "A1", list.Items[0].Code)
	assert.Equal(t, "B2", list.Items[1].Code)
}
