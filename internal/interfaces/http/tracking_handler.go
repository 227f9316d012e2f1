package http

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-tracking/internal/application/dto"
	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/domain"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

// TrackingHandler maneja movimientos y consultas de ubicación (protegido).
type TrackingHandler struct {
	coord   *tracking.Coordinator
	queries *tracking.QueryService
	reports *tracking.ReportUseCase
}

// NewTrackingHandler construye el handler.
func NewTrackingHandler(coord *tracking.Coordinator, queries *tracking.QueryService, reports *tracking.ReportUseCase) *TrackingHandler {
	return &TrackingHandler{coord: coord, queries: queries, reports: reports}
}

// Move godoc
// @Summary      Mover un ítem a una ubicación
// @Description  Unique: quantity se ignora. Pooled: quantity obligatoria; con source reubica desde esa ubicación.
// @Tags         tracking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MoveRequest  true  "item_kind, item_id, destination, quantity (pooled), source (pooled)"
// @Success      201   {object}  dto.MoveResponse
// @Success      200   {object}  dto.MoveResponse  "noop: el ítem ya estaba en destino"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/tracking/moves [post]
func (h *TrackingHandler) Move(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MoveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	kind, ok := entity.ParseItemKind(in.ItemKind)
	if !ok || in.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_kind (unique|pooled) e item_id son requeridos"})
	}
	res, err := h.coord.Move(c.Context(), tracking.MoveInput{
		Item:        entity.ItemRef{Kind: kind, ID: in.ItemID},
		Destination: in.Destination,
		Source:      in.Source,
		Quantity:    in.Quantity,
		Actor:       userID,
		Reason:      in.Reason,
		Notes:       in.Notes,
		RejectNoOp:  in.RejectNoOp,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MoveResponse{
		Location:   toItemLocationResponse(res.Location),
		MovementID: res.MovementID(),
		NoOp:       res.NoOp,
	}
	if res.NoOp {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Remove godoc
// @Summary      Retirar un ítem del rastreo
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        kind      path   string  true   "unique | pooled"
// @Param        id        path   string  true   "Identificador del ítem en su catálogo"
// @Param        location  query  string  false  "Solo pooled: retira únicamente esa ubicación"
// @Param        reason    query  string  false  "Motivo"
// @Success      200  {object}  dto.RemoveResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tracking/items/{kind}/{id} [delete]
func (h *TrackingHandler) Remove(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	item, err := itemFromPath(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.coord.RemoveItem(c.Context(), tracking.RemoveInput{
		Item:     item,
		Location: c.Query("location"),
		Actor:    userID,
		Reason:   c.Query("reason"),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.RemoveResponse{
		Removed:   make([]dto.PlacementResponse, 0, len(res.Removed)),
		Movements: toMovementResponses(res.Movements),
	}
	for _, r := range res.Removed {
		out.Removed = append(out.Removed, dto.PlacementResponse{
			LocationCode: r.LocationCode,
			Quantity:     r.Quantity,
			LastMovedAt:  r.LastMovedAt,
			LastMovedBy:  r.LastMovedBy,
		})
	}
	return c.JSON(out)
}

// GetItem godoc
// @Summary      Ubicación actual de un ítem
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "unique | pooled"
// @Param        id    path  string  true  "Identificador del ítem"
// @Success      200  {object}  dto.ItemLocationResponse
// @Router       /api/tracking/items/{kind}/{id} [get]
func (h *TrackingHandler) GetItem(c *fiber.Ctx) error {
	item, err := itemFromPath(c)
	if err != nil {
		return writeError(c, err)
	}
	loc, err := h.queries.GetCurrentLocation(c.Context(), item)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toItemLocationResponse(loc))
}

// History godoc
// @Summary      Historial de movimientos de un ítem
// @Description  Del más reciente al más antiguo. Enviar next_cursor de la respuesta para la página siguiente.
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        kind    path   string  true   "unique | pooled"
// @Param        id      path   string  true   "Identificador del ítem"
// @Param        cursor  query  int     false  "Cursor de paginación"
// @Param        limit   query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/tracking/items/{kind}/{id}/history [get]
func (h *TrackingHandler) History(c *fiber.Ctx) error {
	item, err := itemFromPath(c)
	if err != nil {
		return writeError(c, err)
	}
	var cursor int64
	if raw := c.Query("cursor"); raw != "" {
		cursor, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || cursor < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CURSOR", Message: "cursor inválido"})
		}
	}
	limit := c.QueryInt("limit", 0)
	if limit > 500 {
		limit = 500
	}
	page, err := h.queries.GetHistory(c.Context(), item, cursor, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.HistoryResponse{Items: toMovementResponses(page.Items), NextCursor: page.NextCursor})
}

// ItemsAt godoc
// @Summary      Qué hay en una ubicación
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de ubicación"
// @Success      200  {object}  dto.LocationItemsResponse
// @Router       /api/tracking/locations/{code}/items [get]
func (h *TrackingHandler) ItemsAt(c *fiber.Ctx) error {
	code := pathParam(c, "code")
	rows, err := h.queries.GetItemsAt(c.Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLocationItemsResponse(code, rows))
}

// LocationReport godoc
// @Summary      Manifiesto PDF de una ubicación
// @Tags         tracking
// @Security     Bearer
// @Produce      application/pdf
// @Param        code  path  string  true  "Código de ubicación"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tracking/locations/{code}/report.pdf [get]
func (h *TrackingHandler) LocationReport(c *fiber.Ctx) error {
	code := pathParam(c, "code")
	pdf, err := h.reports.LocationReport(c.Context(), code)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="ubicacion-`+url.PathEscape(code)+`.pdf"`)
	return c.Send(pdf)
}

// Recent godoc
// @Summary      Actividad reciente global
// @Tags         tracking
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de registros"  default(50)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/tracking/movements/recent [get]
func (h *TrackingHandler) Recent(c *fiber.Ctx) error {
	list, err := h.queries.GetRecent(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponses(list))
}

// itemFromPath lee :kind e :id de la ruta.
func itemFromPath(c *fiber.Ctx) (entity.ItemRef, error) {
	kind, ok := entity.ParseItemKind(c.Params("kind"))
	id := pathParam(c, "id")
	if !ok || id == "" {
		return entity.ItemRef{}, errors.Join(domain.ErrInvalidInput, errors.New("kind debe ser unique o pooled e id es requerido"))
	}
	return entity.ItemRef{Kind: kind, ID: id}, nil
}

// pathParam devuelve el parámetro de ruta sin escapes (los ids pueden traer '%2F', espacios, etc.).
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
